package peg

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"

	"github.com/pcanz/pPEG/charset"
)

// Rule is one named instruction tree in a Program.
type Rule struct {
	Name string
	Body Op
}

// Program is a grammar compiled to instruction code. A Program is
// immutable after compilation and may be shared read-only across any
// number of concurrent parses.
type Program struct {
	// Rules holds the compiled rules in definition order.
	Rules []Rule

	// Names maps each rule name to its index in Rules.
	Names map[string]int

	// Start is the index of the default entry rule (the first rule).
	Start int

	// Space is the index of the user-defined _space_ rule, or -1. When
	// present it replaces the ASCII whitespace set used by implicit
	// whitespace in "..." literals.
	Space int
}

// compileTree translates a grammar ptree (the result of parsing grammar
// text with the bootstrap program) into a Program.
func compileTree(t *Ptree) (*Program, error) {
	if t == nil || t.IsLeaf() || t.Name != "Peg" || len(t.Kids) == 0 {
		return nil, errors.Mark(errors.New("compile: expected a Peg rule list"), ErrBadPtree)
	}
	p := &Program{Names: make(map[string]int, len(t.Kids)), Space: -1}
	for _, r := range t.Kids {
		if r.IsLeaf() || r.Name != "rule" || len(r.Kids) != 2 || r.Kids[0].Name != "id" {
			return nil, errors.Mark(errors.Newf("compile: expected a rule, got %s", r.Name), ErrBadPtree)
		}
		name := r.Kids[0].Text
		if _, dup := p.Names[name]; dup {
			return nil, errors.Mark(errors.Newf("Duplicate rule definition: %s", name), ErrDuplicateRule)
		}
		p.Names[name] = len(p.Rules)
		p.Rules = append(p.Rules, Rule{Name: name})
	}
	for i, r := range t.Kids {
		body, err := p.emit(r.Kids[1])
		if err != nil {
			return nil, errors.WithMessagef(err, "in rule %s", p.Rules[i].Name)
		}
		p.Rules[i].Body = body
	}
	if i, ok := p.Names["_space_"]; ok {
		p.Space = i
	}
	for i := range p.Rules {
		p.attachGuards(p.Rules[i].Body)
	}
	return p, nil
}

func (p *Program) emit(t *Ptree) (Op, error) {
	switch t.Name {
	case "id":
		idx, ok := p.Names[t.Text]
		if !ok {
			return nil, errors.Mark(errors.Newf("Undefined rule: %s", t.Text), ErrUndefinedRule)
		}
		return &ID{Index: idx, Name: t.Text}, nil

	case "alt":
		subs, err := p.emitAll(t.Kids)
		if err != nil {
			return nil, err
		}
		return &Alt{Subs: subs}, nil

	case "seq":
		subs, err := p.emitAll(t.Kids)
		if err != nil {
			return nil, err
		}
		return &Seq{Min: 1, Max: 1, Subs: subs}, nil

	case "rep":
		if t.IsLeaf() || len(t.Kids) != 2 {
			return nil, errors.Mark(errors.Newf("compile: malformed rep"), ErrBadPtree)
		}
		min, max, err := decodeSfx(t.Kids[1])
		if err != nil {
			return nil, err
		}
		inner, err := p.emit(t.Kids[0])
		if err != nil {
			return nil, err
		}
		return repFold(inner, min, max), nil

	case "pre":
		if t.IsLeaf() || len(t.Kids) != 2 || t.Kids[0].Name != "pfx" {
			return nil, errors.Mark(errors.Newf("compile: malformed pre"), ErrBadPtree)
		}
		sign := t.Kids[0].Text[0]
		inner, err := p.emit(t.Kids[1])
		if err != nil {
			return nil, err
		}
		if sign == '~' {
			if chs, ok := negFold(inner); ok {
				return chs, nil
			}
		}
		return &Pre{Sign: sign, Sub: inner}, nil

	case "sq":
		icase, lit := decodeLit(t.Text)
		return &Sq{ICase: icase, Lit: lit}, nil

	case "dq":
		icase, lit := decodeLit(t.Text)
		return &Dq{ICase: icase, Lit: lit}, nil

	case "chs":
		body := strings.TrimSuffix(strings.TrimPrefix(t.Text, "["), "]")
		return &Chs{Min: 1, Max: 1, Body: body, Set: classSet(body)}, nil

	case "extn":
		spec := strings.TrimSuffix(strings.TrimPrefix(t.Text, "<"), ">")
		return &Extn{Spec: spec}, nil
	}
	return nil, errors.Mark(errors.Newf("compile: unknown expression %s", t.Name), ErrBadPtree)
}

func (p *Program) emitAll(kids []*Ptree) ([]Op, error) {
	subs := make([]Op, len(kids))
	for i, k := range kids {
		sub, err := p.emit(k)
		if err != nil {
			return nil, err
		}
		subs[i] = sub
	}
	return subs, nil
}

// decodeSfx decodes a repeat suffix. The suffix node is a leaf for the
// symbolic forms, a bare num for *N, or a range branch for *N.. and
// *N..M (the single-num range elides to its num child).
func decodeSfx(t *Ptree) (min, max int, err error) {
	switch t.Name {
	case "sfx":
		switch t.Text {
		case "+":
			return 1, 0, nil
		case "?":
			return 0, 1, nil
		case "*":
			return 0, 0, nil
		}
	case "num":
		n, aerr := strconv.Atoi(t.Text)
		if aerr != nil {
			break
		}
		return n, n, nil
	case "range":
		if t.IsLeaf() || len(t.Kids) < 2 || t.Kids[0].Name != "num" {
			break
		}
		n, aerr := strconv.Atoi(t.Kids[0].Text)
		if aerr != nil {
			break
		}
		if len(t.Kids) == 2 {
			return n, 0, nil
		}
		m, aerr := strconv.Atoi(t.Kids[2].Text)
		if aerr != nil {
			break
		}
		return n, m, nil
	}
	return 0, 0, errors.Mark(errors.Newf("compile: malformed repeat suffix %s", t.Name), ErrBadPtree)
}

// repFold applies a repeat count, collapsing the count into the inner
// instruction where the VM can honour it directly: a plain sequence, a
// character class, or a single-codepoint literal.
func repFold(inner Op, min, max int) Op {
	if min == 1 && max == 1 {
		return inner
	}
	switch v := inner.(type) {
	case *Seq:
		if v.Min == 1 && v.Max == 1 {
			return &Seq{Min: min, Max: max, Subs: v.Subs}
		}
	case *Chs:
		if v.Min == 1 && v.Max == 1 {
			return &Chs{Neg: v.Neg, Min: min, Max: max, Body: v.Body, Set: v.Set}
		}
	case *Sq:
		if chs, ok := litClass(v.ICase, v.Lit); ok {
			chs.Min, chs.Max = min, max
			return chs
		}
	case *Dq:
		if chs, ok := litClass(v.ICase, v.Lit); ok {
			chs.Min, chs.Max = min, max
			return chs
		}
	}
	return &Rep{Min: min, Max: max, Sub: inner}
}

// negFold rewrites ~x as a negated character class when x is a class or
// a single-codepoint literal.
func negFold(inner Op) (*Chs, bool) {
	switch v := inner.(type) {
	case *Chs:
		if !v.Neg {
			return &Chs{Neg: true, Min: v.Min, Max: v.Max, Body: v.Body, Set: v.Set}, true
		}
	case *Sq:
		if chs, ok := litClass(v.ICase, v.Lit); ok {
			chs.Neg = true
			return chs, true
		}
	case *Dq:
		if chs, ok := litClass(v.ICase, v.Lit); ok {
			chs.Neg = true
			return chs, true
		}
	}
	return nil, false
}

// litClass turns a single-codepoint case-sensitive literal into a
// one-member class. A lone space is never folded, whichever the quotes:
// a Dq space matches whitespace, not a space codepoint, and an Sq
// holding a single space stays an Sq as well.
func litClass(icase bool, lit []rune) (*Chs, bool) {
	if icase || len(lit) != 1 || lit[0] == ' ' {
		return nil, false
	}
	return &Chs{
		Min:  1,
		Max:  1,
		Body: litString(lit),
		Set:  charset.Exactly(lit[0]),
	}, true
}

// decodeLit strips the quotes and the optional trailing i from a sq or
// dq node's text, decodes escapes, and upper-cases the literal when it
// is case-insensitive.
func decodeLit(text string) (icase bool, lit []rune) {
	rs := []rune(text)
	if len(rs) > 0 && rs[len(rs)-1] == 'i' {
		icase = true
		rs = rs[:len(rs)-1]
	}
	if len(rs) >= 2 {
		rs = rs[1 : len(rs)-1]
	}
	lit = []rune(decodeEscapes(string(rs)))
	if icase {
		for i, r := range lit {
			lit[i] = unicode.ToUpper(r)
		}
	}
	return icase, lit
}

// classSet compiles a class body (the text between the brackets) into a
// matcher. Escapes are decoded first; then every three-codepoint window
// with '-' in the middle is a range, and everything else is a
// singleton.
func classSet(body string) charset.Matcher {
	rs := []rune(decodeEscapes(body))
	var singles []rune
	var ranges []charset.Range
	for i := 0; i < len(rs); {
		if i+2 < len(rs) && rs[i+1] == '-' {
			ranges = append(ranges, charset.Range{Lo: rs[i], Hi: rs[i+2]})
			i += 3
			continue
		}
		singles = append(singles, rs[i])
		i++
	}
	return charset.Union(charset.Set(singles...), charset.Ranges(ranges...)).Optimize()
}

// attachGuards walks a compiled rule body and fills in the ALT guards:
// for each alternative whose first terminal is a known codepoint, the
// VM can skip the alternative when the current input codepoint differs.
func (p *Program) attachGuards(op Op) {
	switch v := op.(type) {
	case *Alt:
		v.Guards = make([]rune, len(v.Subs))
		for i, sub := range v.Subs {
			v.Guards[i] = p.firstRune(sub, make(map[int]bool))
			p.attachGuards(sub)
		}
	case *Seq:
		for _, sub := range v.Subs {
			p.attachGuards(sub)
		}
	case *Rep:
		p.attachGuards(v.Sub)
	case *Pre:
		p.attachGuards(v.Sub)
	}
}

// firstRune derives the first-codepoint predicate for an alternative,
// or noGuard when the first terminal cannot be pinned down. seen breaks
// rule-reference cycles.
func (p *Program) firstRune(op Op, seen map[int]bool) rune {
	switch v := op.(type) {
	case *ID:
		if seen[v.Index] {
			return noGuard
		}
		seen[v.Index] = true
		return p.firstRune(p.Rules[v.Index].Body, seen)
	case *Seq:
		if v.Min >= 1 && len(v.Subs) > 0 {
			return p.firstRune(v.Subs[0], seen)
		}
	case *Sq:
		if !v.ICase && len(v.Lit) > 0 {
			return v.Lit[0]
		}
	case *Dq:
		// A leading space consumes nothing it can be guarded on.
		if !v.ICase && len(v.Lit) > 0 && v.Lit[0] != ' ' {
			return v.Lit[0]
		}
	}
	return noGuard
}

// Listing renders the program one rule per line, in the grammar
// language. The output parses back to an equivalent grammar (modulo
// folded constants), except that a class folded from a ']' literal
// renders as []], which the grammar language cannot read back.
func (p *Program) Listing() string {
	var buf strings.Builder
	for _, r := range p.Rules {
		fmt.Fprintf(&buf, "%s = %s\n", r.Name, bodyString(r.Body))
	}
	return buf.String()
}

// bodyString renders a rule body without the outermost parentheses.
func bodyString(op Op) string {
	switch v := op.(type) {
	case *Seq:
		if v.Min == 1 && v.Max == 1 {
			parts := make([]string, len(v.Subs))
			for i, sub := range v.Subs {
				parts[i] = sub.String()
			}
			return strings.Join(parts, " ")
		}
	case *Alt:
		parts := make([]string, len(v.Subs))
		for i, sub := range v.Subs {
			parts[i] = sub.String()
		}
		return strings.Join(parts, " / ")
	}
	return op.String()
}

// Equal reports structural equality of two programs, including the
// derived ALT guards.
func (p *Program) Equal(o *Program) bool {
	if p.Start != o.Start || p.Space != o.Space || len(p.Rules) != len(o.Rules) {
		return false
	}
	for i := range p.Rules {
		if p.Rules[i].Name != o.Rules[i].Name || !opEqual(p.Rules[i].Body, o.Rules[i].Body) {
			return false
		}
	}
	return true
}

func opEqual(a, b Op) bool {
	switch x := a.(type) {
	case *ID:
		y, ok := b.(*ID)
		return ok && x.Index == y.Index && x.Name == y.Name
	case *Alt:
		y, ok := b.(*Alt)
		if !ok || len(x.Subs) != len(y.Subs) || len(x.Guards) != len(y.Guards) {
			return false
		}
		for i := range x.Guards {
			if x.Guards[i] != y.Guards[i] {
				return false
			}
		}
		return opsEqual(x.Subs, y.Subs)
	case *Seq:
		y, ok := b.(*Seq)
		return ok && x.Min == y.Min && x.Max == y.Max && opsEqual(x.Subs, y.Subs)
	case *Rep:
		y, ok := b.(*Rep)
		return ok && x.Min == y.Min && x.Max == y.Max && opEqual(x.Sub, y.Sub)
	case *Pre:
		y, ok := b.(*Pre)
		return ok && x.Sign == y.Sign && opEqual(x.Sub, y.Sub)
	case *Sq:
		y, ok := b.(*Sq)
		return ok && x.ICase == y.ICase && string(x.Lit) == string(y.Lit)
	case *Dq:
		y, ok := b.(*Dq)
		return ok && x.ICase == y.ICase && string(x.Lit) == string(y.Lit)
	case *Chs:
		y, ok := b.(*Chs)
		return ok && x.Neg == y.Neg && x.Min == y.Min && x.Max == y.Max &&
			x.Set.String() == y.Set.String()
	case *Extn:
		y, ok := b.(*Extn)
		return ok && x.Spec == y.Spec
	}
	return false
}

func opsEqual(a, b []Op) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !opEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
