package extract

import "strings"

// SplitLines splits source into lines the way a text-mode reader does:
// line endings are normalized to "\n", each line keeps its newline and the
// last line may have none.
func SplitLines(source string) []string {
	if source == "" {
		return nil
	}
	source = strings.ReplaceAll(source, "\r\n", "\n")
	source = strings.ReplaceAll(source, "\r", "\n")

	lines := strings.SplitAfter(source, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Locator finds function boundaries in one file.
type Locator struct {
	// OnMiss, if set, is called with the header line of every missed function.
	OnMiss func(index int, header string)
}

// Locate scans lines top to bottom. On each line only the first
// function-name token is considered; after an extraction the scan resumes on
// the line after the extractor's end, so body lines never start a new
// function.
func (l *Locator) Locate(lines []string, tokenizer LineTokenizer) Result {
	var result Result

	for i := 0; i < len(lines); i++ {
		header := lines[i]

		name, found := firstFunctionName(tokenizer.Tokens(i, header))
		if !found {
			continue
		}

		ext, ok := Classify(header).Extract(lines, i)
		if !ok {
			result.Missed++
			if l.OnMiss != nil {
				l.OnMiss(i, header)
			}
			continue
		}

		if !ext.Empty() {
			result.Records = append(result.Records, Record{
				Name: name,
				Text: ext.Text,
				Line: i,
			})
		}
		i = ext.End
	}

	return result
}

// Locate runs a zero-value Locator.
func Locate(lines []string, tokenizer LineTokenizer) Result {
	var l Locator
	return l.Locate(lines, tokenizer)
}

func firstFunctionName(tokens []Token) (string, bool) {
	for _, tok := range tokens {
		if tok.Kind == KindFunctionName {
			return tok.Text, true
		}
	}
	return "", false
}
