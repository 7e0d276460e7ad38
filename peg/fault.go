package peg

import (
	"fmt"
	"strings"
)

// failError builds the report for a parse that failed outright: the
// deepest recorded fault names the rule and the expected expression.
func (x *Execution) failError() *ParseError {
	pos := x.faultPos
	if pos < 0 {
		pos = x.Peak
	}
	line, col := lineCol(x.Input, pos)
	var buf strings.Builder
	expected := ""
	if x.faultRule != "" {
		expected = x.faultExp.String()
		fmt.Fprintf(&buf, "In rule: %s, expected: %s, failed at line: %d.%d\n",
			x.faultRule, expected, line, col)
	} else {
		fmt.Fprintf(&buf, "failed at line: %d.%d\n", line, col)
	}
	buf.WriteString(caretSnippet(x.Input, pos))
	return &ParseError{
		Report:   buf.String(),
		Line:     line,
		Col:      col,
		Rule:     x.faultRule,
		Expected: expected,
	}
}

// fellShortError builds the report for a parse that succeeded at the
// root but left input unconsumed. The peak locates the report: the
// furthest the parse ever reached says more than where the root ended.
func (x *Execution) fellShortError() *ParseError {
	pos := x.Peak
	if pos < x.Pos {
		pos = x.Pos
	}
	line, col := lineCol(x.Input, pos)
	report := fmt.Sprintf("Fell short at line: %d.%d\n%s",
		line, col, caretSnippet(x.Input, pos))
	return &ParseError{Report: report, Line: line, Col: col}
}

// lineCol converts a cursor position to a 1-based line and column.
func lineCol(input []rune, pos int) (line, col int) {
	if pos > len(input) {
		pos = len(input)
	}
	line, col = 1, 1
	for i := 0; i < pos; i++ {
		if input[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// caretSnippet renders the line holding pos with a caret under the
// offending column, plus up to one line of context on either side.
func caretSnippet(input []rune, pos int) string {
	if pos > len(input) {
		pos = len(input)
	}
	lines := strings.Split(string(input), "\n")
	ln, col := lineCol(input, pos)

	var buf strings.Builder
	if ln > 1 {
		fmt.Fprintf(&buf, "%4d | %s\n", ln-1, lines[ln-2])
	}
	fmt.Fprintf(&buf, "%4d | %s\n", ln, lines[ln-1])
	fmt.Fprintf(&buf, "     | %s^\n", strings.Repeat(" ", col-1))
	if ln < len(lines) {
		fmt.Fprintf(&buf, "%4d | %s\n", ln+1, lines[ln])
	}
	return buf.String()
}
