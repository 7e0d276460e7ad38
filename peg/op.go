package peg

import (
	"fmt"
	"strings"

	"github.com/pcanz/pPEG/charset"
)

// Op is a single compiled grammar instruction. The parser VM evaluates
// an Op tree with a type switch; the String form is the rendering used
// by fault reports and the program listing.
type Op interface {
	fmt.Stringer
	isOp()
}

// noGuard marks an ALT alternative with no first-codepoint guard.
const noGuard rune = -1

// ID invokes rule Index, labelling its product with Name.
type ID struct {
	Index int
	Name  string
}

// Alt is ordered choice. Guards[i] is a first-codepoint predicate for
// Subs[i]: when it is not noGuard and the current input codepoint
// differs, the alternative is skipped without evaluation.
type Alt struct {
	Subs   []Op
	Guards []rune
}

// Seq matches its children in order, Min..Max times. Max == 0 means
// unbounded.
type Seq struct {
	Min  int
	Max  int
	Subs []Op
}

// Rep repeats a single expression Min..Max times. Max == 0 means
// unbounded.
type Rep struct {
	Min int
	Max int
	Sub Op
}

// Pre is a lookahead prefix: '&' (and-predicate), '!' (not-predicate),
// or '~' (match any one codepoint not matched by the inner expression).
type Pre struct {
	Sign byte
	Sub  Op
}

// Sq matches a literal codepoint sequence. If ICase, Lit has been
// upper-cased at compile time and input codepoints are upper-cased
// before comparison.
type Sq struct {
	ICase bool
	Lit   []rune
}

// Dq matches a literal codepoint sequence, except that each space in
// Lit matches zero or more whitespace codepoints in the input.
type Dq struct {
	ICase bool
	Lit   []rune
}

// Chs matches Min..Max codepoints from a character class. Body is the
// class text as written (between the brackets), kept for rendering;
// Set is the compiled matcher. Neg flips membership. Max == 0 means
// unbounded.
type Chs struct {
	Neg  bool
	Min  int
	Max  int
	Body string
	Set  charset.Matcher
}

// Extn invokes a host extension; Spec is the raw text between the
// angle brackets.
type Extn struct {
	Spec string
}

func (*ID) isOp()   {}
func (*Alt) isOp()  {}
func (*Seq) isOp()  {}
func (*Rep) isOp()  {}
func (*Pre) isOp()  {}
func (*Sq) isOp()   {}
func (*Dq) isOp()   {}
func (*Chs) isOp()  {}
func (*Extn) isOp() {}

func (op *ID) String() string { return op.Name }

func (op *Alt) String() string {
	parts := make([]string, len(op.Subs))
	for i, sub := range op.Subs {
		parts[i] = sub.String()
	}
	return "(" + strings.Join(parts, " / ") + ")"
}

func (op *Seq) String() string {
	parts := make([]string, len(op.Subs))
	for i, sub := range op.Subs {
		parts[i] = sub.String()
	}
	return "(" + strings.Join(parts, " ") + ")" + sfxString(op.Min, op.Max)
}

func (op *Rep) String() string {
	return groupString(op.Sub) + sfxString(op.Min, op.Max)
}

func (op *Pre) String() string {
	return string(op.Sign) + groupString(op.Sub)
}

func (op *Sq) String() string {
	return "'" + litString(op.Lit) + "'" + icaseString(op.ICase)
}

func (op *Dq) String() string {
	return `"` + litString(op.Lit) + `"` + icaseString(op.ICase)
}

func (op *Chs) String() string {
	s := "[" + op.Body + "]" + sfxString(op.Min, op.Max)
	if op.Neg {
		return "~" + s
	}
	return s
}

func (op *Extn) String() string { return "<" + op.Spec + ">" }

// groupString parenthesizes prefix expressions, and expressions that
// already carry a prefix or suffix, so that a suffix or prefix applied
// on top reads unambiguously. Alt and a plain Seq render their own
// parentheses.
func groupString(op Op) string {
	switch v := op.(type) {
	case *Pre, *Rep:
		return "(" + op.String() + ")"
	case *Chs:
		if v.Neg || v.Min != 1 || v.Max != 1 {
			return "(" + op.String() + ")"
		}
	case *Seq:
		if v.Min != 1 || v.Max != 1 {
			return "(" + op.String() + ")"
		}
	}
	return op.String()
}

func sfxString(min, max int) string {
	switch {
	case min == 1 && max == 1:
		return ""
	case min == 0 && max == 0:
		return "*"
	case min == 1 && max == 0:
		return "+"
	case min == 0 && max == 1:
		return "?"
	case min == max:
		return fmt.Sprintf("*%d", min)
	case max == 0:
		return fmt.Sprintf("*%d..", min)
	}
	return fmt.Sprintf("*%d..%d", min, max)
}

func icaseString(icase bool) string {
	if icase {
		return "i"
	}
	return ""
}

func litString(lit []rune) string {
	var buf strings.Builder
	for _, r := range lit {
		switch r {
		case '\t':
			buf.WriteString(`\t`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\\':
			buf.WriteString(`\\`)
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
