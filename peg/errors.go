package peg

import (
	"github.com/cockroachdb/errors"
)

// Grammar errors abort compilation or the whole parse; they indicate a
// defect in the grammar (or in the engine), never in the input. Each
// error raised by the compiler or the VM is marked with one of these
// sentinels, testable with errors.Is. A syntax fault in the grammar
// text given to Compile carries no sentinel: it is the *ParseError
// from parsing that text, wrapped.
var (
	ErrUndefinedRule    = errors.New("undefined rule")
	ErrDuplicateRule    = errors.New("duplicate rule name")
	ErrMissingExtension = errors.New("missing extension")
	ErrDepthExceeded    = errors.New("recursion depth exceeded")
	ErrBadPtree         = errors.New("malformed parse tree")
)

// ParseError reports a failure of the input, not the grammar: either
// the parse failed outright or it succeeded without consuming all
// input. Error() is the full human-readable report, including the
// line-and-column caret snippet.
type ParseError struct {
	// Report is the full report text.
	Report string

	// Line and Col locate the failure, 1-based.
	Line int
	Col  int

	// Rule is the rule at the deepest recorded fault, or "" when no
	// fault was recorded.
	Rule string

	// Expected is the rendered instruction that failed at the fault
	// point, or "".
	Expected string
}

func (e *ParseError) Error() string { return e.Report }

// Ptree returns the failure in the ["$error", report] wire form.
func (e *ParseError) Ptree() *Ptree { return ErrorNode(e.Report) }
