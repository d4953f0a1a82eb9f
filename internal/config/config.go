package config

// DirName is the per-corpus directory holding config.yml and default outputs.
const DirName = ".funcscrape"

// Config represents the complete funcscrape configuration.
// It can be loaded from .funcscrape/config.yml with environment variable overrides.
type Config struct {
	Scan   ScanConfig   `yaml:"scan" mapstructure:"scan"`
	Lexer  LexerConfig  `yaml:"lexer" mapstructure:"lexer"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Sample SampleConfig `yaml:"sample" mapstructure:"sample"`
	Watch  WatchConfig  `yaml:"watch" mapstructure:"watch"`
}

// ScanConfig controls corpus discovery and scanning.
type ScanConfig struct {
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to ignore, relative to the corpus root
	Workers int      `yaml:"workers" mapstructure:"workers"` // files scanned concurrently
}

// LexerConfig selects the lexical backend.
type LexerConfig struct {
	Backend   string `yaml:"backend" mapstructure:"backend"`       // "chroma" or "treesitter"
	CacheSize int    `yaml:"cache_size" mapstructure:"cache_size"` // resolved rulesets kept in memory
}

// OutputConfig names the sinks a scan writes. Empty paths disable a sink.
type OutputConfig struct {
	JSON   string `yaml:"json" mapstructure:"json"`     // (name, text) pairs
	SQLite string `yaml:"sqlite" mapstructure:"sqlite"` // runs + functions tables
	Index  string `yaml:"index" mapstructure:"index"`   // bleve index directory
}

// SampleConfig controls the random sample printed after a scan.
type SampleConfig struct {
	Size int   `yaml:"size" mapstructure:"size"`
	Seed int64 `yaml:"seed" mapstructure:"seed"` // 0 picks a random seed
}

// WatchConfig controls --watch rescans.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			// Every file is a candidate; ignores are opt-in.
			Ignore:  []string{},
			Workers: 1,
		},
		Lexer: LexerConfig{
			Backend:   "chroma",
			CacheSize: 256,
		},
		Output: OutputConfig{
			JSON: "methods.json",
		},
		Sample: SampleConfig{
			Size: 10,
		},
		Watch: WatchConfig{
			DebounceMs: 500,
		},
	}
}
