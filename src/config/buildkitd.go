package config

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// ValidateBuildkitdConfig fails fast on a malformed buildkitd config file
// before its path is handed to the create command. BuildKit itself only
// reports a bad config after the builder container has already started.
func ValidateBuildkitdConfig(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading buildkitd config: %w", err)
	}

	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing buildkitd config %s: %w", path, err)
	}
	return nil
}
