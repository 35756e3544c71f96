package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateBuildkitdConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buildkitd.toml")
	content := `debug = true

[registry."docker.io"]
  mirrors = ["mirror.example.com"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := ValidateBuildkitdConfig(path); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestValidateBuildkitdConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buildkitd.toml")
	if err := os.WriteFile(path, []byte("debug = [unclosed"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := ValidateBuildkitdConfig(path); err == nil {
		t.Error("malformed config accepted")
	}
}

func TestValidateBuildkitdConfigMissing(t *testing.T) {
	if err := ValidateBuildkitdConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("missing config accepted")
	}
}
