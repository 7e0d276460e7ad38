package charset

// Exactly returns a Matcher that matches only the given codepoint.
//
// • Match performance: fast
//
// • Usefulness: narrow
//
// This is the best choice when your set contains exactly one codepoint.
func Exactly(r rune) Matcher {
	return &mExactly{Rune: r}
}

type mExactly struct {
	Rune rune
}

var _ Matcher = (*mExactly)(nil)

func (m *mExactly) Match(r rune) bool {
	return r == m.Rune
}

func (m *mExactly) Optimize() Matcher { return m }

func (m *mExactly) String() string {
	return "[" + runeLiteral(m.Rune) + "]"
}
