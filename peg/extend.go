package peg

// Extension is a host function callable from a grammar via <name args>.
// args is the payload of the angle brackets split at spaces; args[0] is
// the extension's own name. The extension has full access to the
// Execution and must honour the engine's invariants: on failure it
// restores the cursor and leaves the tree stack as it found it.
type Extension func(x *Execution, args []string) bool

// builtins are consulted after the user-supplied table.
var builtins = map[string]Extension{
	"?":     traceExt,
	"same":  sameExt,
	"infix": infixExt,
}

// traceExt implements <?>: switch the step trace on from this point of
// the parse. Idempotent if already tracing.
func traceExt(x *Execution, args []string) bool {
	x.traceOn = true
	return true
}

// sameExt implements <same NAME>: the next input must repeat the text
// of the latest sibling node named NAME in the current rule. Used for
// context-sensitive matches such as fenced blocks and XML tag closure.
// With no such sibling there is nothing to compare, and the match
// succeeds without consuming input.
func sameExt(x *Execution, args []string) bool {
	if len(args) < 2 {
		return false
	}
	var prior *Ptree
	for i := len(x.Tree) - 1; i >= x.RuleMark(); i-- {
		if x.Tree[i].Name == args[1] {
			prior = x.Tree[i]
			break
		}
	}
	if prior == nil {
		return true
	}
	want := []rune(prior.Text)
	if !prior.IsLeaf() {
		want = []rune(prior.Flatten())
	}
	if x.Pos+len(want) > len(x.Input) {
		return false
	}
	for i, c := range want {
		if x.Input[x.Pos+i] != c {
			return false
		}
	}
	x.Advance(len(want))
	return true
}

// infixExt implements <infix>: rewrite the current rule's children,
// assumed to be the flat sequence operand (op operand)*, into a
// precedence tree. Binding powers come from the last four characters of
// an operator rule's name: _d__ binds (2d+1, 2d+2) and folds left,
// __d_ binds (2d+2, 2d+1) and folds right. Any other name is an
// operand. The resulting node is labelled with the operator's matched
// text, with the two operands as children.
func infixExt(x *Execution, args []string) bool {
	mark := x.RuleMark()
	if len(x.Tree)-mark < 3 {
		// Nothing to fold; also makes a second <infix> pass a no-op.
		return true
	}
	nodes := make([]*Ptree, len(x.Tree)-mark)
	copy(nodes, x.Tree[mark:])

	next := 0
	var fold func(minBind int) *Ptree
	fold = func(minBind int) *Ptree {
		lhs := nodes[next]
		next++
		for next+1 < len(nodes) {
			op := nodes[next]
			left, right := bindingPowers(op.Name)
			if left <= minBind {
				break
			}
			next++
			rhs := fold(right)
			lhs = Branch(op.Text, []*Ptree{lhs, rhs})
		}
		return lhs
	}
	root := fold(0)
	x.Tree = append(x.Tree[:mark], root)
	return true
}

// bindingPowers decodes an operator rule name's binding powers from its
// last four characters. Operands and unrecognised names bind at zero.
func bindingPowers(name string) (left, right int) {
	if len(name) < 4 {
		return 0, 0
	}
	t := name[len(name)-4:]
	switch {
	case t[0] == '_' && isDigit(t[1]) && t[2] == '_' && t[3] == '_':
		d := int(t[1] - '0')
		return 2*d + 1, 2*d + 2
	case t[0] == '_' && t[1] == '_' && isDigit(t[2]) && t[3] == '_':
		d := int(t[2] - '0')
		return 2*d + 2, 2*d + 1
	}
	return 0, 0
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
