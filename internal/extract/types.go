package extract

// TokenKind classifies a lexical token. The locator only distinguishes
// function names from everything else.
type TokenKind int

const (
	// KindOther is any token that is not a function name.
	KindOther TokenKind = iota

	// KindFunctionName names a function or method definition.
	KindFunctionName
)

// Token is one unit of a line's lexical analysis.
type Token struct {
	Kind TokenKind
	Text string
}

// LineTokenizer produces the ordered tokens of one line of a file.
// index is the 0-based line number; line includes its trailing newline.
type LineTokenizer interface {
	Tokens(index int, line string) []Token
}

// Record is one extracted function.
type Record struct {
	// Name is the identifier reported by the token stream.
	Name string `json:"name"`

	// Text is the header line plus every consumed body line, braces retained.
	Text string `json:"text"`

	// Line is the 0-based index of the header line.
	Line int `json:"line"`

	// File and Language are filled in by the corpus driver.
	File     string `json:"file,omitempty"`
	Language string `json:"language,omitempty"`
}

// Result is the outcome of scanning one file.
type Result struct {
	Records []Record
	Missed  int
}

// Merge appends other to r.
func (r *Result) Merge(other Result) {
	r.Records = append(r.Records, other.Records...)
	r.Missed += other.Missed
}

// TokenizerFunc adapts a function to LineTokenizer.
type TokenizerFunc func(index int, line string) []Token

// Tokens calls f.
func (f TokenizerFunc) Tokens(index int, line string) []Token {
	return f(index, line)
}
