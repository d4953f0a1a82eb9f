package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// NewFileLoader creates a loader that reads exactly configFile instead of
// searching .funcscrape/. A missing file is an error.
func NewFileLoader(configFile string) Loader {
	return &loader{
		configFile: configFile,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (FUNCSCRAPE_*)
// 2. Config file (.funcscrape/config.yml or .funcscrape/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, DirName))
	}

	// FUNCSCRAPE_SCAN_WORKERS overrides scan.workers
	v.SetEnvPrefix("FUNCSCRAPE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Unmarshal only sees AutomaticEnv keys that are bound
	for _, key := range []string{
		"scan.workers",
		"lexer.backend",
		"lexer.cache_size",
		"output.json",
		"output.sqlite",
		"output.index",
		"sample.size",
		"sample.seed",
		"watch.debounce_ms",
	} {
		_ = v.BindEnv(key)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if l.configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("scan.ignore", defaults.Scan.Ignore)
	v.SetDefault("scan.workers", defaults.Scan.Workers)

	v.SetDefault("lexer.backend", defaults.Lexer.Backend)
	v.SetDefault("lexer.cache_size", defaults.Lexer.CacheSize)

	v.SetDefault("output.json", defaults.Output.JSON)
	v.SetDefault("output.sqlite", defaults.Output.SQLite)
	v.SetDefault("output.index", defaults.Output.Index)

	v.SetDefault("sample.size", defaults.Sample.Size)
	v.SetDefault("sample.seed", defaults.Sample.Seed)

	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)
}
