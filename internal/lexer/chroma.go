package lexer

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/mvp-joe/funcscrape/internal/extract"
)

// chromaLexer selects pygments-style lexers by file name. Every line is
// lexed on its own, without the state of previous lines.
type chromaLexer struct{}

// NewChromaLexer creates a Lexer backed by the chroma lexer registry.
func NewChromaLexer() Lexer {
	return &chromaLexer{}
}

// Resolve matches filename against the registry's filename globs.
func (c *chromaLexer) Resolve(filename string) (Ruleset, error) {
	l := lexers.Match(filepath.Base(filename))
	if l == nil {
		return nil, noRuleset(filename)
	}
	return &chromaRuleset{lexer: l}, nil
}

type chromaRuleset struct {
	lexer chroma.Lexer
}

func (r *chromaRuleset) Name() string {
	return strings.ToLower(r.lexer.Config().Name)
}

func (r *chromaRuleset) Bind(source []byte) (extract.LineTokenizer, error) {
	return r, nil
}

// Tokens lexes one line. A line the lexer rejects yields no tokens.
func (r *chromaRuleset) Tokens(index int, line string) []extract.Token {
	it, err := r.lexer.Tokenise(nil, line)
	if err != nil {
		return nil
	}

	var tokens []extract.Token
	for tok := it(); tok != chroma.EOF; tok = it() {
		kind := extract.KindOther
		if tok.Type == chroma.NameFunction {
			kind = extract.KindFunctionName
		}
		tokens = append(tokens, extract.Token{Kind: kind, Text: tok.Value})
	}
	return tokens
}
