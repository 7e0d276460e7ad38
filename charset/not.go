package charset

// Not returns a Matcher that matches any codepoint NOT matched by the
// given Matcher.
func Not(m Matcher) Matcher {
	if mn, ok := m.(*mNot); ok {
		return mn.Matcher
	}
	return &mNot{Matcher: m}
}

type mNot struct {
	Matcher Matcher
}

var _ Matcher = (*mNot)(nil)

func (m *mNot) Match(r rune) bool {
	return !m.Matcher.Match(r)
}

func (m *mNot) Optimize() Matcher {
	inner := m.Matcher.Optimize()
	if inner == m.Matcher {
		return m
	}
	return &mNot{Matcher: inner}
}

func (m *mNot) String() string {
	return "~" + m.Matcher.String()
}
