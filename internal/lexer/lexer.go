package lexer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mvp-joe/funcscrape/internal/extract"
)

// Supported backends.
const (
	BackendChroma     = "chroma"
	BackendTreeSitter = "treesitter"
)

// ErrNoRuleset is returned by Resolve when no language ruleset matches a file name.
var ErrNoRuleset = errors.New("no lexical ruleset for file")

// Lexer resolves the lexical ruleset for a file name.
type Lexer interface {
	// Resolve returns the ruleset for filename, or an error wrapping
	// ErrNoRuleset if the file is not in a known language.
	Resolve(filename string) (Ruleset, error)
}

// Ruleset tokenizes files of one language.
type Ruleset interface {
	// Name is the lower-case language name, e.g. "python".
	Name() string

	// Bind prepares a tokenizer for one file's source. Backends that lex
	// each line independently may ignore source.
	Bind(source []byte) (extract.LineTokenizer, error)
}

// New creates the lexer for backend, wrapped in a ruleset cache of cacheSize
// entries. The caller should Close it when done.
func New(backend string, cacheSize int) (*CachedLexer, error) {
	var (
		next Lexer
		key  KeyFunc
	)

	switch strings.ToLower(backend) {
	case BackendChroma, "":
		next, key = NewChromaLexer(), KeyByName
	case BackendTreeSitter:
		next, key = NewTreeSitterLexer(), KeyByExtension
	default:
		return nil, fmt.Errorf("unknown lexer backend %q (valid: %s, %s)", backend, BackendChroma, BackendTreeSitter)
	}

	return NewCachedLexer(next, cacheSize, key)
}

func noRuleset(filename string) error {
	return fmt.Errorf("%w: %s", ErrNoRuleset, filename)
}
