package lexer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/maypok86/otter"
)

// KeyFunc derives the cache key for a file name. Two names with the same
// key must resolve to the same ruleset.
type KeyFunc func(filename string) string

// KeyByExtension keys on the lower-cased extension.
func KeyByExtension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// KeyByName keys on the base name, for lexers that match whole-name globs
// like "Makefile" or "CMakeLists.txt".
func KeyByName(filename string) string {
	return filepath.Base(filename)
}

// minCapacity is the smallest capacity otter accepts writes at; below it
// every Set is dropped.
const minCapacity = 10

// cacheEntry is a resolved ruleset, or a nil ruleset for a name known to
// have none.
type cacheEntry struct {
	ruleset Ruleset
}

// CachedLexer memoizes Resolve, including negative results.
type CachedLexer struct {
	next  Lexer
	key   KeyFunc
	cache otter.Cache[string, cacheEntry]
}

// NewCachedLexer wraps next with a bounded cache of size entries.
func NewCachedLexer(next Lexer, size int, key KeyFunc) (*CachedLexer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", size)
	}
	if key == nil {
		key = KeyByName
	}

	cache, err := otter.MustBuilder[string, cacheEntry](max(size, minCapacity)).
		CollectStats().
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build ruleset cache: %w", err)
	}

	return &CachedLexer{next: next, key: key, cache: cache}, nil
}

// Resolve returns the cached ruleset for filename's key, resolving on a miss.
// Only ErrNoRuleset failures are cached.
func (c *CachedLexer) Resolve(filename string) (Ruleset, error) {
	k := c.key(filename)
	if entry, ok := c.cache.Get(k); ok {
		if entry.ruleset == nil {
			return nil, noRuleset(filename)
		}
		return entry.ruleset, nil
	}

	rs, err := c.next.Resolve(filename)
	switch {
	case err == nil:
		c.cache.Set(k, cacheEntry{ruleset: rs})
	case errors.Is(err, ErrNoRuleset):
		c.cache.Set(k, cacheEntry{})
	}
	return rs, err
}

// HitRatio reports the cache hit ratio since creation.
func (c *CachedLexer) HitRatio() float64 {
	return c.cache.Stats().Ratio()
}

// Close releases the cache.
func (c *CachedLexer) Close() {
	c.cache.Close()
}
