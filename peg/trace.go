package peg

import (
	"fmt"
	"strconv"
	"strings"
)

// tracing reports whether the step trace is live for op. Lookahead and
// whitespace skipping are never traced; with a trace rule configured,
// tracing is live for that rule's invocations and everything within
// them.
func (x *Execution) tracing(op Op) bool {
	if !x.traceOn || x.hush > 0 {
		return false
	}
	if x.traceRule == "" {
		return true
	}
	if id, ok := op.(*ID); ok && id.Name == x.traceRule {
		return true
	}
	for _, f := range x.rules {
		if f.name == x.traceRule {
			return true
		}
	}
	return false
}

// evalTraced evaluates one instruction and emits a trace line for it:
// the line.column where it was attempted, indentation by rule depth,
// the construct, and what happened — "== consumed" on a match,
// "!= remainder" on a miss, "=> node" when a rule produced a tree node.
func (x *Execution) evalTraced(op Op) (bool, error) {
	before, beforeMark := x.Pos, len(x.Tree)
	ok, err := x.evalOp(op)
	if err != nil {
		return false, err
	}
	line, col := lineCol(x.Input, before)
	indent := strings.Repeat("| ", x.depth+1)
	var what string
	switch {
	case !ok:
		what = "!= " + strconv.Quote(clip(string(x.Input[x.Pos:]), 16))
	case isRuleOp(op) && len(x.Tree) > beforeMark:
		what = "=> " + clip(x.Tree[len(x.Tree)-1].String(), 48)
	default:
		what = "== " + strconv.Quote(string(x.Input[before:x.Pos]))
	}
	x.log.Info(fmt.Sprintf("%d.%d %s%s %s", line, col, indent, clip(op.String(), 32), what))
	return ok, nil
}

func isRuleOp(op Op) bool {
	_, ok := op.(*ID)
	return ok
}

func clip(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n]) + "…"
}
