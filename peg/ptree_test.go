package peg

import (
	"encoding/json"
	"testing"
)

func TestPtree_String(t *testing.T) {
	type testrow struct {
		Tree     *Ptree
		Expected string
	}

	data := []testrow{
		testrow{Leaf("num", "42"), `["num","42"]`},
		testrow{Leaf("s", "a\"b\n"), `["s","a\"b\n"]`},
		testrow{Branch("Row", nil), `["Row",[]]`},
		testrow{
			Branch("Date", []*Ptree{Leaf("year", "2021"), Leaf("month", "04")}),
			`["Date",[["year","2021"],["month","04"]]]`,
		},
		testrow{ErrorNode("boom"), `["$error","boom"]`},
	}

	for i, row := range data {
		actual := row.Tree.String()
		if actual != row.Expected {
			t.Errorf("%s/%03d: wrong output:\n%s", t.Name(), i, diff(row.Expected, actual))
		}
		// MarshalJSON produces the same bytes as String.
		b, err := json.Marshal(row.Tree)
		if err != nil {
			t.Errorf("%s/%03d: marshal error: %v", t.Name(), i, err)
			continue
		}
		if string(b) != row.Expected {
			t.Errorf("%s/%03d: marshal differs: %s", t.Name(), i, b)
		}
	}
}

func TestPtree_Equal(t *testing.T) {
	a := Branch("Date", []*Ptree{Leaf("year", "2021"), Leaf("month", "04")})
	b := Branch("Date", []*Ptree{Leaf("year", "2021"), Leaf("month", "04")})
	c := Branch("Date", []*Ptree{Leaf("year", "2021"), Leaf("month", "05")})

	if !a.Equal(b) {
		t.Errorf("%s: equal trees compared unequal", t.Name())
	}
	if a.Equal(c) {
		t.Errorf("%s: unequal trees compared equal", t.Name())
	}
	// A leaf and an empty branch of the same name differ.
	if Leaf("x", "").Equal(Branch("x", nil)) {
		t.Errorf("%s: leaf equals empty branch", t.Name())
	}
}

func TestPtree_Flatten(t *testing.T) {
	tree := Branch("Date", []*Ptree{
		Leaf("year", "2021"),
		Branch("md", []*Ptree{Leaf("month", "04"), Leaf("day", "05")}),
	})
	if got := tree.Flatten(); got != "20210405" {
		t.Errorf("%s: expected %q, got %q", t.Name(), "20210405", got)
	}
}
