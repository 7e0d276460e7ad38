package peg

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/renstrom/dedent"
)

func TestCompile_Errors(t *testing.T) {
	type testrow struct {
		Grammar  string
		Sentinel error
	}

	data := []testrow{
		testrow{"a = 'x'\na = 'y'", ErrDuplicateRule},
		testrow{"a = b", ErrUndefinedRule},
		testrow{"a = 'x' <nosuch>", ErrMissingExtension},
	}

	for i, row := range data {
		_, err := Compile(row.Grammar)
		if err == nil {
			t.Errorf("%s/%03d: expected error", t.Name(), i)
			continue
		}
		if !errors.Is(err, row.Sentinel) {
			t.Errorf("%s/%03d: expected %v, got %v", t.Name(), i, row.Sentinel, err)
		}
	}
}

func TestCompile_BadGrammarText(t *testing.T) {
	for i, g := range []string{"", "a = ", "= 'x'", "a 'x'"} {
		if _, err := Compile(g); err == nil {
			t.Errorf("%s/%03d: expected error for %q", t.Name(), i, g)
		}
	}
}

func TestCompile_Folds(t *testing.T) {
	// Repeated single-codepoint literals and negated literals fold
	// into character-class instructions; the listing shows the result.
	p := mustCompile(t, `
	S = 'a'*3 / ~'b' / [0-9]+ / ~[x-z]*2 / 'hi' "a b"i
	`)

	expected := dedent.Dedent(`
	S = [a]*3 / ~[b] / [0-9]+ / ~[x-z]*2 / ('hi' "A B"i)
	`)[1:]
	if actual := p.Grammar(); actual != expected {
		t.Errorf("%s: wrong listing:\n%s", t.Name(), diff(expected, actual))
	}
}

func TestCompile_SeqFold(t *testing.T) {
	// A repeated group folds its count into the sequence instruction.
	p := mustCompile(t, `S = ('a' 'b')*2`)

	body, ok := p.Program().Rules[0].Body.(*Seq)
	if !ok {
		t.Fatalf("%s: expected a Seq body, got %T", t.Name(), p.Program().Rules[0].Body)
	}
	if body.Min != 2 || body.Max != 2 || len(body.Subs) != 2 {
		t.Errorf("%s: wrong fold: min=%d max=%d subs=%d", t.Name(), body.Min, body.Max, len(body.Subs))
	}

	runParseTests(t, p, []parseRow{
		parseRow{"abab", `["S","abab"]`},
		parseRow{"ab", ""},
		parseRow{"ababab", ""},
	})
}

func TestCompile_Guards(t *testing.T) {
	p := mustCompile(t, `
	S = 'a' 'x' / 'b' 'y' / [c] 'z' / w
	w = "w"
	`)

	alt, ok := p.Program().Rules[0].Body.(*Alt)
	if !ok {
		t.Fatalf("%s: expected an Alt body, got %T", t.Name(), p.Program().Rules[0].Body)
	}
	expected := []rune{'a', 'b', noGuard, 'w'}
	if len(alt.Guards) != len(expected) {
		t.Fatalf("%s: expected %d guards, got %d", t.Name(), len(expected), len(alt.Guards))
	}
	for i, g := range expected {
		if alt.Guards[i] != g {
			t.Errorf("%s/%03d: expected guard %q, got %q", t.Name(), i, g, alt.Guards[i])
		}
	}

	// Guarded alternatives still parse correctly.
	runParseTests(t, p, []parseRow{
		parseRow{"ax", `["S","ax"]`},
		parseRow{"by", `["S","by"]`},
		parseRow{"cz", `["S","cz"]`},
		parseRow{"w", `["S",[["w","w"]]]`},
		parseRow{"ay", ""},
	})
}

func TestCompile_GuardCycle(t *testing.T) {
	// Mutually recursive rules must not loop the guard derivation.
	p := mustCompile(t, `
	a = b / 'x'
	b = a 'y'
	`)

	alt, ok := p.Program().Rules[0].Body.(*Alt)
	if !ok {
		t.Fatalf("%s: expected an Alt body", t.Name())
	}
	if alt.Guards[0] != noGuard {
		t.Errorf("%s: cyclic alternative should be unguarded, got %q", t.Name(), alt.Guards[0])
	}
}

func TestCompile_SpaceRule(t *testing.T) {
	p := mustCompile(t, `
	S       = "a b"
	_space_ = '-'*
	`)
	if p.Program().Space != 1 {
		t.Fatalf("%s: expected _space_ at index 1, got %d", t.Name(), p.Program().Space)
	}

	runParseTests(t, p, []parseRow{
		parseRow{"a--b", `["S","a--b"]`},
		parseRow{"ab", `["S","ab"]`},
		parseRow{"a b", ""},
	})
}

func TestCompile_Comments(t *testing.T) {
	p := mustCompile(t, `
	# leading comment
	S = 'a'   # trailing comment
	`)

	runParseTests(t, p, []parseRow{
		parseRow{"a", `["S","a"]`},
	})
}
