package charset

import (
	"fmt"
	"unicode"
)

var wellKnownControls = map[rune]byte{
	'\t': 't',
	'\n': 'n',
	'\r': 'r',
}

// runeLiteral renders a codepoint the way it would appear inside a
// grammar character class.
func runeLiteral(r rune) string {
	if ctrl, found := wellKnownControls[r]; found {
		return "\\" + string(ctrl)
	}
	if r == '\\' || r == ']' {
		return "\\" + string(r)
	}
	if unicode.IsPrint(r) {
		return string(r)
	}
	return fmt.Sprintf("\\u%04X", r)
}
