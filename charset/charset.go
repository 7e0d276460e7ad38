// Package charset provides predicates over Unicode codepoints.
//
// The parser engine compiles a grammar's character classes (the text
// between '[' and ']') into Matcher values, and uses a Matcher for the
// default implicit-whitespace set. All sets are immutable once built
// and safe to share between concurrent parses.
package charset

// Matcher is a predicate that returns true for certain codepoints.
//
// For the sake of all that is good and holy, implementations of Matcher
// must *not* change their state on a call to Match.
type Matcher interface {
	// Match returns true iff codepoint r is in the set.
	Match(r rune) bool

	// Optimize returns a Matcher that matches the same set of
	// codepoints, but possibly in a more efficient way. If no better
	// implementation can be found, returns this matcher.
	Optimize() Matcher

	// String returns a string representation of the set.
	String() string
}

// None returns a Matcher that matches no codepoints at all.
func None() Matcher {
	return theNone
}

type mNone struct{}

var theNone Matcher = (*mNone)(nil)

func (m *mNone) Match(r rune) bool { return false }

func (m *mNone) Optimize() Matcher { return m }

func (m *mNone) String() string { return "[]" }

// ASCIISpace matches the default whitespace set used by implicit
// whitespace when a grammar does not define its own "_space_" rule:
// space, tab, carriage return, and line feed.
var ASCIISpace = Ranges(Range{'\t', '\n'}, Range{'\r', '\r'}, Range{' ', ' '})
