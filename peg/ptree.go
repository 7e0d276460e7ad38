package peg

import (
	"encoding/json"
	"strings"
)

// Ptree is a parse-tree node: either a leaf holding the matched text,
// or a branch holding child nodes in match order.
//
// A node is a branch iff Kids is non-nil; a branch may have zero
// children. The wire form is a two-element JSON array:
//
//	["name", "text"]            leaf
//	["name", [child, ...]]      branch
type Ptree struct {
	Name string
	Text string
	Kids []*Ptree
}

// Leaf returns a leaf node.
func Leaf(name, text string) *Ptree {
	return &Ptree{Name: name, Text: text}
}

// Branch returns a branch node. The children slice is owned by the
// returned node.
func Branch(name string, kids []*Ptree) *Ptree {
	if kids == nil {
		kids = []*Ptree{}
	}
	return &Ptree{Name: name, Kids: kids}
}

// IsLeaf reports whether t is a leaf node.
func (t *Ptree) IsLeaf() bool {
	return t.Kids == nil
}

// MarshalJSON renders the stable two-element array wire form.
func (t *Ptree) MarshalJSON() ([]byte, error) {
	if t.IsLeaf() {
		return json.Marshal([2]interface{}{t.Name, t.Text})
	}
	return json.Marshal([2]interface{}{t.Name, t.Kids})
}

// String renders the wire form as a string.
func (t *Ptree) String() string {
	b, err := json.Marshal(t)
	if err != nil {
		// Ptree marshalling cannot fail: both shapes are plain
		// strings and arrays.
		panic(err)
	}
	return string(b)
}

// Equal reports structural equality of two trees.
func (t *Ptree) Equal(o *Ptree) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Name != o.Name || t.IsLeaf() != o.IsLeaf() {
		return false
	}
	if t.IsLeaf() {
		return t.Text == o.Text
	}
	if len(t.Kids) != len(o.Kids) {
		return false
	}
	for i := range t.Kids {
		if !t.Kids[i].Equal(o.Kids[i]) {
			return false
		}
	}
	return true
}

// Flatten returns the concatenated text of t's leaves, in match order.
func (t *Ptree) Flatten() string {
	if t.IsLeaf() {
		return t.Text
	}
	var buf strings.Builder
	for _, k := range t.Kids {
		buf.WriteString(k.Flatten())
	}
	return buf.String()
}

// ErrorNode wraps a parse-failure report in the ["$error", report] wire
// node used by embedders that keep the array-only protocol.
func ErrorNode(report string) *Ptree {
	return Leaf("$error", report)
}
