package model

import "testing"

func num(t *testing.T, name string) *NumberColumn {
	t.Helper()
	return NewNumberColumn(&Descriptor{Type: KindNumber, Column: name})
}

func mean(t *testing.T, children ...Column) *CompositeNumberColumn {
	t.Helper()
	c, err := NewCompositeNumberColumn(&Descriptor{Type: KindMean})
	if err != nil {
		t.Fatalf("NewCompositeNumberColumn: %v", err)
	}
	for _, ch := range children {
		if err := c.Push(ch); err != nil {
			t.Fatalf("Push(%s): %v", ch.ID(), err)
		}
	}
	return c
}

func ids(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.ID()
	}
	return out
}

// treeShape renders the identifiers of a column tree for comparison.
func treeShape(cols []Column) []string {
	var out []string
	var walk func(prefix string, cols []Column)
	walk = func(prefix string, cols []Column) {
		for _, c := range cols {
			out = append(out, prefix+c.ID())
			if g, ok := c.(composite); ok {
				walk(prefix+c.ID()+"/", g.group().children)
			}
		}
	}
	walk("", cols)
	return out
}
