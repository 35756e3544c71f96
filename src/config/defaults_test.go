package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defaults.yml")
	content := `driver: kubernetes
driver_opts:
  - image=moby/buildkit:master
use: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	d, err := LoadDefaults(path)
	if err != nil {
		t.Fatalf("LoadDefaults: %v", err)
	}
	if d.Driver != "kubernetes" || !d.Use || len(d.DriverOpts) != 1 {
		t.Errorf("got %+v", d)
	}
}

func TestLoadDefaultsMissingFile(t *testing.T) {
	d, err := LoadDefaults(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if !reflect.DeepEqual(d, &Defaults{}) {
		t.Errorf("expected empty defaults, got %+v", d)
	}
}
