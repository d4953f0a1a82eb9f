package extract

// Bracket pairs accepted by Balance.
const (
	CurlyPair = "{}"
	ParenPair = "()"
)

// indentUnit is the indentation step assumed for colon-terminated blocks.
const indentUnit = 4

// Balance returns the number of pair[0] characters minus the number of
// pair[1] characters in line. Characters inside string or comment literals
// are counted like any other.
func Balance(line string, pair string) int {
	if len(pair) != 2 {
		return 0
	}
	open, close := pair[0], pair[1]

	balance := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case open:
			balance++
		case close:
			balance--
		}
	}
	return balance
}

// Indent returns the index of the first non-space character of line, or 0
// if there is none. Only ' ' counts as indentation, so "\n" has indent 0
// while "    \n" has indent 4.
func Indent(line string) int {
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' {
			return i
		}
	}
	return 0
}
