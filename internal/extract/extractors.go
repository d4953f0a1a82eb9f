package extract

import "strings"

// Shape is the syntactic form of a function header line. Each shape other
// than ShapeNone has exactly one boundary extractor.
type Shape int

const (
	// ShapeNone means no extractor applies; the function counts as missed.
	ShapeNone Shape = iota

	// ShapeCurlyOneLiner is a header whose braces all close on the same line.
	ShapeCurlyOneLiner

	// ShapeCurlyBlock is a header that opens a brace it does not close.
	ShapeCurlyBlock

	// ShapeIndentBlock is a colon-terminated header followed by an indented body.
	ShapeIndentBlock

	// ShapeBareOneLiner is a brace-less single line, usually `f(x) = expr`.
	ShapeBareOneLiner
)

func (s Shape) String() string {
	switch s {
	case ShapeCurlyOneLiner:
		return "curly-oneliner"
	case ShapeCurlyBlock:
		return "curly-block"
	case ShapeIndentBlock:
		return "indent-block"
	case ShapeBareOneLiner:
		return "bare-oneliner"
	default:
		return "none"
	}
}

// Extraction is what a boundary extractor returns.
type Extraction struct {
	// End is the index of the last line consumed by the function.
	End int

	// Text is the header plus consumed body lines.
	Text string

	// Body is the text with the header and enclosing delimiters stripped.
	// An extraction whose Body is blank after trimming is discarded.
	Body string
}

// Empty reports whether the extraction captured no body.
func (e Extraction) Empty() bool {
	return strings.TrimSpace(e.Body) == ""
}

// Classify picks the shape of a header line. The checks run in a fixed
// order and the first that matches wins.
func Classify(header string) Shape {
	if strings.Contains(header, "{") {
		if Balance(header, CurlyPair) == 0 {
			return ShapeCurlyOneLiner
		}
		return ShapeCurlyBlock
	}

	trimmed := strings.TrimSpace(header)
	if strings.HasSuffix(trimmed, ":") {
		return ShapeIndentBlock
	}

	if !strings.HasSuffix(trimmed, ";") &&
		!strings.HasSuffix(trimmed, "...") &&
		Balance(header, ParenPair) == 0 {
		return ShapeBareOneLiner
	}

	return ShapeNone
}

// Extract runs the extractor for s on the header at lines[start].
// ok is false for ShapeNone.
func (s Shape) Extract(lines []string, start int) (ext Extraction, ok bool) {
	switch s {
	case ShapeCurlyOneLiner:
		return ExtractCurlyOneLiner(lines, start), true
	case ShapeCurlyBlock:
		return ExtractCurlyBlock(lines, start), true
	case ShapeIndentBlock:
		return ExtractIndentBlock(lines, start), true
	case ShapeBareOneLiner:
		return ExtractBareOneLiner(lines, start), true
	default:
		return Extraction{End: start}, false
	}
}

// ExtractCurlyOneLiner handles `f() { ... }` on a single line. The body is
// everything between the first '{' and the last '}'.
func ExtractCurlyOneLiner(lines []string, start int) Extraction {
	header := lines[start]

	bodyStart := strings.IndexByte(header, '{') + 1
	bodyEnd := strings.LastIndexByte(header, '}')

	var body string
	if bodyStart > 0 && bodyEnd >= bodyStart {
		body = header[bodyStart:bodyEnd]
	}

	return Extraction{End: start, Text: header, Body: body}
}

// ExtractCurlyBlock follows an unclosed '{' on the header until the running
// brace balance returns to zero at the end of some line. The body drops
// every '}' but keeps '{'.
//
// If the balance never returns to zero the extraction is empty and End is
// the last line of the file.
func ExtractCurlyBlock(lines []string, start int) Extraction {
	header := lines[start]
	balance := Balance(header, CurlyPair)

	for j := start + 1; j < len(lines); j++ {
		balance += Balance(lines[j], CurlyPair)
		if balance != 0 {
			continue
		}

		consumed := strings.Join(lines[start+1:j+1], "")
		return Extraction{
			End:  j,
			Text: header + consumed,
			Body: strings.ReplaceAll(consumed, "}", ""),
		}
	}

	return Extraction{End: len(lines) - 1}
}

// ExtractIndentBlock handles colon-terminated headers. Following lines
// belong to the body while they are indented at least one unit deeper than
// the header; a blank line ends the block.
func ExtractIndentBlock(lines []string, start int) Extraction {
	header := lines[start]
	minIndent := Indent(header) + indentUnit

	end := start
	for end+1 < len(lines) && Indent(lines[end+1]) >= minIndent {
		end++
	}

	consumed := strings.Join(lines[start+1:end+1], "")
	return Extraction{End: end, Text: header + consumed, Body: consumed}
}

// ExtractBareOneLiner handles brace-less one-liners. The body is whatever
// follows the first '='; without one it is the whole line.
func ExtractBareOneLiner(lines []string, start int) Extraction {
	header := lines[start]
	return Extraction{
		End:  start,
		Text: header,
		Body: header[strings.IndexByte(header, '=')+1:],
	}
}
