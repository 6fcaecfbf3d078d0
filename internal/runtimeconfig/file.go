package runtimeconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	yaml "github.com/goccy/go-yaml"
)

// ErrConfigFileInvalid wraps YAML parse failures with the offending path.
var ErrConfigFileInvalid = errors.New("blog config: config file is invalid")

// LoadFile reads a YAML config file and merges it over the defaults, so a
// site file only needs to state what differs from a conventional layout.
// A missing file is not an error; callers get the defaults back.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("blog config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", ErrConfigFileInvalid, path, err)
	}
	if cfg.Routes == nil {
		cfg.Routes = DefaultRoutes()
	}
	return cfg, nil
}
