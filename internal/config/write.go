package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigExists is returned by WriteDefault when a config file is present
// and overwriting was not requested.
var ErrConfigExists = errors.New("config file already exists")

// Path returns the config file location for a corpus root.
func Path(rootDir string) string {
	return filepath.Join(rootDir, DirName, "config.yml")
}

// WriteDefault writes cfg as YAML to rootDir/.funcscrape/config.yml and
// returns the path written.
func WriteDefault(rootDir string, cfg *Config, force bool) (string, error) {
	path := Path(rootDir)

	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return path, nil
}
