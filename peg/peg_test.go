package peg

import (
	"regexp"
	"testing"

	"github.com/renstrom/dedent"
	"github.com/sergi/go-diff/diffmatchpatch"
)

var reNL = regexp.MustCompile(`(?m)^`)

func diff(l, r string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(l, r, false)
	pretty := dmp.DiffPrettyText(diffs)
	return reNL.ReplaceAllLiteralString(pretty, "\t")
}

func mustCompile(t *testing.T, grammar string, opts ...Option) *Parser {
	t.Helper()
	p, err := Compile(dedent.Dedent(grammar), opts...)
	if err != nil {
		t.Fatalf("%s: compile error: %v", t.Name(), err)
	}
	return p
}

type parseRow struct {
	Input    string
	Expected string // wire-form ptree, or "" when the parse must fail
}

func runParseTests(t *testing.T, p *Parser, data []parseRow, opts ...Option) {
	t.Helper()
	for i, row := range data {
		tree, err := p.Parse(row.Input, opts...)
		if row.Expected == "" {
			if err == nil {
				t.Errorf("%s/%03d: expected failure, got %s", t.Name(), i, tree.String())
			}
			continue
		}
		if err != nil {
			t.Errorf("%s/%03d: error: %v", t.Name(), i, err)
			continue
		}
		if actual := tree.String(); actual != row.Expected {
			t.Errorf("%s/%03d: wrong output:\n%s", t.Name(), i, diff(row.Expected, actual))
		}
	}
}

func TestDate(t *testing.T) {
	p := mustCompile(t, `
	Date  = year '-' month '-' day
	year  = [0-9]*4
	month = [0-9]*2
	day   = [0-9]*2
	`)

	runParseTests(t, p, []parseRow{
		parseRow{"2021-04-05", `["Date",[["year","2021"],["month","04"],["day","05"]]]`},
		parseRow{"2021-04-5x", ""},
		parseRow{"202-04-05", ""},
	})
}

func TestCSV(t *testing.T) {
	p := mustCompile(t, `
	CSV     = Hdr Row+
	Hdr     = Row
	Row     = field (',' field)* '\r'? '\n'
	field   = _string / _text / ''
	_text   = ~[,\n\r]+
	_string = '"' (~'"' / '""')* '"'
	`)

	runParseTests(t, p, []parseRow{
		parseRow{
			"A,B,C\na1,b1,c1\na2,\"b,2\",c2\n",
			`["CSV",[` +
				`["Hdr",[["Row",[["field","A"],["field","B"],["field","C"]]]]],` +
				`["Row",[["field","a1"],["field","b1"],["field","c1"]]],` +
				`["Row",[["field","a2"],["field","\"b,2\""],["field","c2"]]]]]`,
		},
		parseRow{
			"x,,z\n1,2,3\n",
			`["CSV",[` +
				`["Hdr",[["Row",[["field","x"],["field",""],["field","z"]]]]],` +
				`["Row",[["field","1"],["field","2"],["field","3"]]]]]`,
		},
		parseRow{"no trailing newline", ""},
	})
}

func TestArithmetic(t *testing.T) {
	p := mustCompile(t, `
	exp = add
	add = sub ('+' sub)*
	sub = mul ('-' mul)*
	mul = div ('*' div)*
	div = pow ('/' pow)*
	pow = val ('^' val)*
	val = sym / num / '(' add ')'
	sym = [a-zA-Z]+
	num = [0-9]+
	`)

	runParseTests(t, p, []parseRow{
		parseRow{"1+2*3", `["add",[["num","1"],["mul",[["num","2"],["num","3"]]]]]`},
		parseRow{"x^2^3-1", `["sub",[["pow",[["sym","x"],["num","2"],["num","3"]]],["num","1"]]]`},
		parseRow{"42", `["num","42"]`},
		parseRow{"(1+2)*3", `["mul",[["add",[["num","1"],["num","2"]]],["num","3"]]]`},
		parseRow{"1+", ""},
	})
}

func TestLookahead(t *testing.T) {
	p := mustCompile(t, `S = &'a' [a-z]+`)

	runParseTests(t, p, []parseRow{
		parseRow{"apple", `["S","apple"]`},
		parseRow{"banana", ""},
	})
}

func TestNegatedClass(t *testing.T) {
	p := mustCompile(t, `S = ~[,\n\r]+`)

	// The negated class stops before the comma; Short accepts the
	// partial match.
	runParseTests(t, p, []parseRow{
		parseRow{"hello, world", `["S","hello"]`},
	}, Short(true))

	runParseTests(t, p, []parseRow{
		parseRow{"hello, world", ""},
		parseRow{"hello", `["S","hello"]`},
	})
}

func TestCaseInsensitive(t *testing.T) {
	p := mustCompile(t, `S = 'select'i " " 'from'i`)

	runParseTests(t, p, []parseRow{
		parseRow{"SELECT FROM", `["S","SELECT FROM"]`},
		parseRow{"Select from", `["S","Select from"]`},
		parseRow{"selectfrom", `["S","selectfrom"]`},
		parseRow{"selekt from", ""},
	})
}

func TestImplicitSpaceRule(t *testing.T) {
	// _space_ overrides the whitespace matcher used by "..." literals:
	// here whitespace includes line comments.
	p := mustCompile(t, `
	S       = "a b c"
	_space_ = (';' ~[\n\r]* / [ \t\n\r]+)*
	`)

	runParseTests(t, p, []parseRow{
		parseRow{"abc", `["S","abc"]`},
		parseRow{"a b\tc", `["S","a b\tc"]`},
		parseRow{"a ;note\nb c", `["S","a ;note\nb c"]`},
	})
}

func TestElision(t *testing.T) {
	// _-rules never appear; lowercase single-child rules elide;
	// capitalised rules always wrap.
	p := mustCompile(t, `
	Top   = wrap
	wrap  = _pad word _pad
	word  = [a-z]+
	_pad  = ' '*
	`)

	runParseTests(t, p, []parseRow{
		parseRow{"  hi ", `["Top",[["word","hi"]]]`},
	})
}

func TestRepeatBounds(t *testing.T) {
	p := mustCompile(t, `S = [ab]*2..3`)

	runParseTests(t, p, []parseRow{
		parseRow{"a", ""},
		parseRow{"ab", `["S","ab"]`},
		parseRow{"aba", `["S","aba"]`},
		parseRow{"abab", ""},
	})

	q := mustCompile(t, `S = 'x'*2..`)
	runParseTests(t, q, []parseRow{
		parseRow{"x", ""},
		parseRow{"xx", `["S","xx"]`},
		parseRow{"xxxxx", `["S","xxxxx"]`},
	})
}

func TestProgressGuard(t *testing.T) {
	// A zero-length match inside * must terminate after one iteration.
	p := mustCompile(t, `S = ('x'?)*`)

	runParseTests(t, p, []parseRow{
		parseRow{"xxx", `["S","xxx"]`},
	})

	tree, err := p.Parse("")
	if err != nil {
		t.Fatalf("%s: error: %v", t.Name(), err)
	}
	if tree.String() != `["S",""]` {
		t.Errorf("%s: wrong output: %s", t.Name(), tree.String())
	}
}

func TestCursorDiscipline(t *testing.T) {
	// The failing first alternative consumes "ab" before it fails; the
	// second alternative must start over from the beginning.
	p := mustCompile(t, `S = 'ab' 'cd' / 'abzz'`)

	runParseTests(t, p, []parseRow{
		parseRow{"abcd", `["S","abcd"]`},
		parseRow{"abzz", `["S","abzz"]`},
		parseRow{"abzd", ""},
	})
}

func TestTilde(t *testing.T) {
	// ~x consumes exactly one codepoint when x does not match.
	p := mustCompile(t, `S = ~'a' ~'b'`)

	runParseTests(t, p, []parseRow{
		parseRow{"xy", `["S","xy"]`},
		parseRow{"ay", ""},
		parseRow{"x", ""},
	})
}

func TestUnicodeInput(t *testing.T) {
	// The cursor advances by codepoints, not bytes.
	p := mustCompile(t, "S = _w 'é' _w\n_w = [a-z]*2")

	runParseTests(t, p, []parseRow{
		parseRow{"abécd", `["S","abécd"]`},
		parseRow{"abècd", ""},
	})
}

func TestDeterminism(t *testing.T) {
	p := mustCompile(t, `
	Date  = year '-' month '-' day
	year  = [0-9]*4
	month = [0-9]*2
	day   = [0-9]*2
	`)

	a, err := p.Parse("2021-04-05")
	if err != nil {
		t.Fatalf("%s: error: %v", t.Name(), err)
	}
	b, err := p.Parse("2021-04-05")
	if err != nil {
		t.Fatalf("%s: error: %v", t.Name(), err)
	}
	if a.String() != b.String() {
		t.Errorf("%s: parses differ:\n%s", t.Name(), diff(a.String(), b.String()))
	}
	if !a.Equal(b) {
		t.Errorf("%s: trees not structurally equal", t.Name())
	}
}

func TestStartOption(t *testing.T) {
	p := mustCompile(t, `
	Top   = word (',' word)*
	word  = [a-z]+
	`)

	tree, err := p.Parse("hi", Start("word"))
	if err != nil {
		t.Fatalf("%s: error: %v", t.Name(), err)
	}
	if tree.String() != `["word","hi"]` {
		t.Errorf("%s: wrong output: %s", t.Name(), tree.String())
	}
	if _, err := p.Parse("hi", Start("nosuch")); err == nil {
		t.Errorf("%s: expected undefined-rule error", t.Name())
	}
}
