package peg

import (
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"

	"github.com/pcanz/pPEG/charset"
)

// Execution is the context of a parse-in-progress. One Execution is
// created per Parse call and discarded on return; the Program it runs
// is shared read-only.
//
// The exported fields are the environment that extensions operate on.
// An extension that fails must leave Pos and Tree as it found them.
type Execution struct {
	// P is the program being run.
	P *Program

	// Input is the input string as codepoints. The cursor indexes
	// Input and advances by one per matched codepoint.
	Input []rune

	// Pos is the cursor: the index into Input of the next codepoint.
	Pos int

	// Peak is the high-water cursor, used for diagnostics. Lookahead
	// restores it on exit.
	Peak int

	// Tree is the flat parse-tree builder stack. Rule entry records a
	// mark; rule exit slices-and-wraps the nodes above its mark.
	Tree []*Ptree

	depth    int
	maxDepth int
	rules    []ruleFrame

	faultPos  int
	faultRule string
	faultExp  Op

	ext map[string]Extension

	traceOn   bool
	traceRule string
	hush      int // >0 inside lookahead or whitespace skipping
	log       logr.Logger
}

// ruleFrame records one active rule invocation.
type ruleFrame struct {
	name  string
	mark  int
	start int
}

// RuleName returns the name of the innermost active rule.
func (x *Execution) RuleName() string {
	if len(x.rules) == 0 {
		return ""
	}
	return x.rules[len(x.rules)-1].name
}

// RuleMark returns the Tree length at the innermost rule's entry: the
// nodes from RuleMark onward are the children built so far by the
// current rule.
func (x *Execution) RuleMark() int {
	if len(x.rules) == 0 {
		return 0
	}
	return x.rules[len(x.rules)-1].mark
}

// RuleStart returns the cursor at the innermost rule's entry.
func (x *Execution) RuleStart() int {
	if len(x.rules) == 0 {
		return 0
	}
	return x.rules[len(x.rules)-1].start
}

// Advance moves the cursor forward n codepoints and raises the peak.
func (x *Execution) Advance(n int) {
	x.Pos += n
	if x.Pos > x.Peak {
		x.Peak = x.Pos
	}
}

// eval evaluates one instruction. The bool is the PEG match result;
// the error, when non-nil, is a grammar error that aborts the parse.
func (x *Execution) eval(op Op) (bool, error) {
	if x.tracing(op) {
		return x.evalTraced(op)
	}
	return x.evalOp(op)
}

func (x *Execution) evalOp(op Op) (bool, error) {
	switch v := op.(type) {
	case *ID:
		return x.evalID(v)
	case *Alt:
		return x.evalAlt(v)
	case *Seq:
		return x.evalSeq(v)
	case *Rep:
		return x.evalRep(v)
	case *Pre:
		return x.evalPre(v)
	case *Sq:
		return x.evalSq(v)
	case *Dq:
		return x.evalDq(v)
	case *Chs:
		return x.evalChs(v)
	case *Extn:
		return x.evalExtn(v)
	}
	return false, errors.Mark(errors.Newf("unknown instruction %T", op), ErrBadPtree)
}

func (x *Execution) evalID(op *ID) (bool, error) {
	rule := &x.P.Rules[op.Index]
	start, mark := x.Pos, len(x.Tree)
	x.depth++
	if x.depth > x.maxDepth {
		return false, x.depthError()
	}
	x.rules = append(x.rules, ruleFrame{name: op.Name, mark: mark, start: start})
	ok, err := x.eval(rule.Body)
	x.rules = x.rules[:len(x.rules)-1]
	x.depth--
	if err != nil {
		return false, err
	}
	if !ok {
		// Rule-level fault: deepest rule that failed after consuming
		// input names the report ("In rule: X, expected: Y").
		if x.Pos > start && x.Pos > x.faultPos {
			x.faultPos = x.Pos
			x.faultRule = op.Name
			x.faultExp = rule.Body
		}
		x.Tree = x.Tree[:mark]
		x.Pos = start
		return false, nil
	}
	name := op.Name
	if name[0] == '_' {
		x.Tree = x.Tree[:mark]
		return true, nil
	}
	switch n := len(x.Tree) - mark; {
	case n == 0:
		x.Tree = append(x.Tree, Leaf(name, string(x.Input[start:x.Pos])))
	case n > 1 || name[0] <= 'Z':
		kids := make([]*Ptree, n)
		copy(kids, x.Tree[mark:])
		x.Tree = append(x.Tree[:mark], Branch(name, kids))
	}
	// A single child under a lowercase rule stands in for the rule.
	return true, nil
}

func (x *Execution) evalAlt(op *Alt) (bool, error) {
	start, mark := x.Pos, len(x.Tree)
	guarded := len(op.Guards) == len(op.Subs)
	for i, sub := range op.Subs {
		if guarded && op.Guards[i] != noGuard {
			if x.Pos >= len(x.Input) || x.Input[x.Pos] != op.Guards[i] {
				continue
			}
		}
		ok, err := x.eval(sub)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		x.Pos = start
		x.Tree = x.Tree[:mark]
	}
	return false, nil
}

func (x *Execution) evalSeq(op *Seq) (bool, error) {
	count := 0
	for {
		start, mark := x.Pos, len(x.Tree)
		for _, sub := range op.Subs {
			ok, err := x.eval(sub)
			if err != nil {
				return false, err
			}
			if ok {
				continue
			}
			// Sequence fault: the child that broke a progressing
			// sequence is what the input was expected to match.
			if x.Pos > start && x.Pos > x.faultPos {
				x.faultPos = x.Pos
				x.faultRule = x.RuleName()
				x.faultExp = sub
			}
			x.Tree = x.Tree[:mark]
			if count >= op.Min {
				x.Pos = start
				return true, nil
			}
			// The cursor stays where the child failed: implicit
			// whitespace already consumed is kept (see the DQ
			// contract), and the enclosing ID/ALT/REP restores.
			return false, nil
		}
		count++
		if count == op.Max || x.Pos == start {
			return count >= op.Min, nil
		}
	}
}

func (x *Execution) evalRep(op *Rep) (bool, error) {
	entryPos, entryMark := x.Pos, len(x.Tree)
	count := 0
	for {
		start, mark := x.Pos, len(x.Tree)
		ok, err := x.eval(op.Sub)
		if err != nil {
			return false, err
		}
		if !ok {
			x.Pos = start
			x.Tree = x.Tree[:mark]
			break
		}
		count++
		if x.Pos == start || count == op.Max {
			break
		}
	}
	if count < op.Min {
		x.Pos = entryPos
		x.Tree = x.Tree[:entryMark]
		return false, nil
	}
	return true, nil
}

func (x *Execution) evalPre(op *Pre) (bool, error) {
	start, mark, peak := x.Pos, len(x.Tree), x.Peak
	x.hush++
	ok, err := x.eval(op.Sub)
	x.hush--
	if err != nil {
		return false, err
	}
	// Lookahead never consumes input, never pollutes the tree, and
	// never moves the peak.
	x.Pos, x.Peak = start, peak
	x.Tree = x.Tree[:mark]
	switch op.Sign {
	case '&':
		return ok, nil
	case '!':
		return !ok, nil
	}
	// '~': any one codepoint the inner expression does not match.
	if !ok && x.Pos < len(x.Input) {
		x.Advance(1)
		return true, nil
	}
	return false, nil
}

func (x *Execution) evalSq(op *Sq) (bool, error) {
	for _, c := range op.Lit {
		if x.Pos >= len(x.Input) {
			return false, nil
		}
		r := x.Input[x.Pos]
		if op.ICase {
			r = unicode.ToUpper(r)
		}
		if r != c {
			return false, nil
		}
		x.Advance(1)
	}
	return true, nil
}

func (x *Execution) evalDq(op *Dq) (bool, error) {
	for _, c := range op.Lit {
		if c == ' ' {
			if err := x.skipSpace(); err != nil {
				return false, err
			}
			continue
		}
		if x.Pos >= len(x.Input) {
			return false, nil
		}
		r := x.Input[x.Pos]
		if op.ICase {
			r = unicode.ToUpper(r)
		}
		if r != c {
			// Whitespace skipped by an earlier space in the literal
			// stays consumed.
			return false, nil
		}
		x.Advance(1)
	}
	return true, nil
}

// skipSpace consumes zero or more whitespace codepoints, using the
// grammar's _space_ rule when it defines one.
func (x *Execution) skipSpace() error {
	if x.P.Space >= 0 {
		x.hush++
		defer func() { x.hush-- }()
		op := &ID{Index: x.P.Space, Name: x.P.Rules[x.P.Space].Name}
		for {
			p := x.Pos
			ok, err := x.eval(op)
			if err != nil {
				return err
			}
			if !ok || x.Pos == p {
				return nil
			}
		}
	}
	for x.Pos < len(x.Input) && charset.ASCIISpace.Match(x.Input[x.Pos]) {
		x.Advance(1)
	}
	return nil
}

func (x *Execution) evalChs(op *Chs) (bool, error) {
	count := 0
	for x.Pos < len(x.Input) {
		if op.Max != 0 && count == op.Max {
			break
		}
		if op.Set.Match(x.Input[x.Pos]) == op.Neg {
			break
		}
		x.Advance(1)
		count++
	}
	return count >= op.Min, nil
}

func (x *Execution) evalExtn(op *Extn) (bool, error) {
	args := strings.Fields(op.Spec)
	if len(args) == 0 {
		args = []string{op.Spec}
	}
	fn := x.ext[args[0]]
	if fn == nil {
		fn = builtins[args[0]]
	}
	if fn == nil {
		return false, errors.Mark(errors.Newf("Missing extension: %s", args[0]), ErrMissingExtension)
	}
	return fn(x, args), nil
}

func (x *Execution) depthError() error {
	n := len(x.rules)
	lo := n - 8
	if lo < 0 {
		lo = 0
	}
	names := make([]string, 0, n-lo)
	for i := n - 1; i >= lo; i-- {
		names = append(names, x.rules[i].name)
	}
	return errors.Mark(
		errors.Newf("recursion depth exceeded (max %d) in: %s",
			x.maxDepth, strings.Join(names, " <- ")),
		ErrDepthExceeded)
}
