package config

import (
	"errors"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultsFile = ".buildx-setup.yml"

// Defaults holds file-provided fallback values for runs outside a CI job,
// layered beneath declared inputs.
type Defaults struct {
	Version        string   `yaml:"version"`
	Driver         string   `yaml:"driver"`
	DriverOpts     []string `yaml:"driver_opts"`
	BuildkitdFlags string   `yaml:"buildkitd_flags"`
	Endpoint       string   `yaml:"endpoint"`
	Config         string   `yaml:"config"`
	Use            bool     `yaml:"use"`
	Install        bool     `yaml:"install"`
}

// LoadDefaults reads the defaults file. If path is empty, it tries the
// default file. A missing file yields empty defaults, not an error.
func LoadDefaults(path string) (*Defaults, error) {
	if path == "" {
		path = defaultsFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Defaults{}, nil
		}
		return nil, err
	}

	d := &Defaults{}
	if err := yaml.Unmarshal(data, d); err != nil {
		return nil, err
	}
	return d, nil
}
