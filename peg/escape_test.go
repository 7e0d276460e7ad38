package peg

import (
	"testing"
)

func TestDecodeEscapes(t *testing.T) {
	type testrow struct {
		Input    string
		Expected string
	}

	data := []testrow{
		testrow{"", ""},
		testrow{"plain", "plain"},
		testrow{"a\\tb", "a\tb"},
		testrow{"a\\nb", "a\nb"},
		testrow{"a\\rb", "a\rb"},
		testrow{"a\\\\b", "a\\b"},
		testrow{"\\u0041", "A"},
		testrow{"\\u00E9", "é"},
		testrow{"\\u00e9", "é"},
		testrow{"x\\u2713y", "x✓y"},
		// An unrecognised escape keeps its backslash.
		testrow{"a\\qb", "a\\qb"},
		testrow{"\\[", "\\["},
		// A bad \u keeps the backslash and the u.
		testrow{"\\u00zz", "\\u00zz"},
		testrow{"\\u12", "\\u12"},
		testrow{"\\u", "\\u"},
		// A trailing backslash survives.
		testrow{"x\\", "x\\"},
		// \\ wins over a following escape letter.
		testrow{"\\\\n", "\\n"},
	}

	for i, row := range data {
		actual := decodeEscapes(row.Input)
		if actual != row.Expected {
			t.Errorf("%s/%03d: %q: expected %q, got %q", t.Name(), i, row.Input, row.Expected, actual)
		}
	}
}

func TestEscapesInGrammar(t *testing.T) {
	p := mustCompile(t, `S = 'α' [\t\n] '\\'`)

	runParseTests(t, p, []parseRow{
		parseRow{"α\t\\", `["S","α\t\\"]`},
		parseRow{"α\n\\", `["S","α\n\\"]`},
		parseRow{"α \\", ""},
	})
}
