package charset

import (
	"sort"
	"strings"
)

// Set returns a Matcher that matches any of the given codepoints.
//
// • Match performance: fast
//
// • Usefulness: broad
//
// This is usually the best choice if your set is small-ish and is
// mostly made of non-consecutive codepoints.
func Set(given ...rune) Matcher {
	set := make(map[rune]struct{}, len(given))
	for _, r := range given {
		set[r] = struct{}{}
	}
	return &mSparse{Set: set}
}

type mSparse struct {
	Set map[rune]struct{}
}

var _ Matcher = (*mSparse)(nil)

func (m *mSparse) Match(r rune) bool {
	_, found := m.Set[r]
	return found
}

func (m *mSparse) Optimize() Matcher {
	if len(m.Set) == 0 {
		return None()
	}
	if len(m.Set) == 1 {
		for r := range m.Set {
			return Exactly(r)
		}
	}
	return m
}

func (m *mSparse) String() string {
	var buf strings.Builder
	buf.WriteByte('[')
	for _, r := range m.sorted() {
		buf.WriteString(runeLiteral(r))
	}
	buf.WriteByte(']')
	return buf.String()
}

func (m *mSparse) sorted() []rune {
	sorted := make([]rune, 0, len(m.Set))
	for r := range m.Set {
		sorted = append(sorted, r)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted
}
