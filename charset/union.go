package charset

import (
	"strings"
)

// Union returns a Matcher that matches any codepoint matched by at
// least one of the given Matchers.
func Union(ms ...Matcher) Matcher {
	keep := make([]Matcher, 0, len(ms))
	for _, m := range ms {
		if _, isNone := m.(*mNone); isNone || m == nil {
			continue
		}
		keep = append(keep, m)
	}
	switch len(keep) {
	case 0:
		return None()
	case 1:
		return keep[0]
	}
	return &mUnion{Matchers: keep}
}

type mUnion struct {
	Matchers []Matcher
}

var _ Matcher = (*mUnion)(nil)

func (m *mUnion) Match(r rune) bool {
	for _, sub := range m.Matchers {
		if sub.Match(r) {
			return true
		}
	}
	return false
}

func (m *mUnion) Optimize() Matcher {
	opt := make([]Matcher, 0, len(m.Matchers))
	for _, sub := range m.Matchers {
		opt = append(opt, sub.Optimize())
	}
	return Union(opt...)
}

func (m *mUnion) String() string {
	var buf strings.Builder
	buf.WriteByte('[')
	for _, sub := range m.Matchers {
		s := sub.String()
		buf.WriteString(strings.TrimSuffix(strings.TrimPrefix(s, "["), "]"))
	}
	buf.WriteByte(']')
	return buf.String()
}
