package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

var (
	// ErrInvalidWorkers indicates a non-positive worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidIgnore indicates an ignore pattern that does not compile
	ErrInvalidIgnore = errors.New("invalid ignore pattern")

	// ErrInvalidBackend indicates an unsupported lexer backend
	ErrInvalidBackend = errors.New("invalid lexer backend")

	// ErrInvalidCacheSize indicates a non-positive ruleset cache size
	ErrInvalidCacheSize = errors.New("invalid cache size")

	// ErrInvalidSampleSize indicates a negative sample size
	ErrInvalidSampleSize = errors.New("invalid sample size")

	// ErrInvalidDebounce indicates a non-positive watch debounce
	ErrInvalidDebounce = errors.New("invalid debounce")
)

// Backends lists the accepted values of lexer.backend.
var Backends = []string{"chroma", "treesitter"}

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateScan(&cfg.Scan); err != nil {
		errs = append(errs, err)
	}

	if err := validateLexer(&cfg.Lexer); err != nil {
		errs = append(errs, err)
	}

	if cfg.Sample.Size < 0 {
		errs = append(errs, fmt.Errorf("%w: size cannot be negative, got %d", ErrInvalidSampleSize, cfg.Sample.Size))
	}

	if cfg.Watch.DebounceMs <= 0 {
		errs = append(errs, fmt.Errorf("%w: debounce_ms must be positive, got %d", ErrInvalidDebounce, cfg.Watch.DebounceMs))
	}

	// Output paths may all be empty; the scrape still prints its summary.

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateScan(cfg *ScanConfig) error {
	var errs []error

	if cfg.Workers <= 0 {
		errs = append(errs, fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidWorkers, cfg.Workers))
	}

	for _, pattern := range cfg.Ignore {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidIgnore, pattern, err))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateLexer(cfg *LexerConfig) error {
	var errs []error

	backend := strings.ToLower(cfg.Backend)
	valid := false
	for _, b := range Backends {
		if backend == b {
			valid = true
		}
	}
	if !valid {
		errs = append(errs, fmt.Errorf("%w: must be one of %s, got '%s'", ErrInvalidBackend, strings.Join(Backends, ", "), cfg.Backend))
	}

	if cfg.CacheSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: cache_size must be positive, got %d", ErrInvalidCacheSize, cfg.CacheSize))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
