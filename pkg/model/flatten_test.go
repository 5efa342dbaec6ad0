package model

import (
	"reflect"
	"testing"
)

// tree builds a ranking with a three-level composite:
//
//	stack[a, mean[b, c], nested[d]]
func tree(t *testing.T) (*Ranking, *CompositeNumberColumn, *CompositeNumberColumn) {
	t.Helper()
	r := NewRanking(Rows{{"a": 1.0, "b": 2.0, "c": 3.0, "d": 4.0}})
	root, _ := NewCompositeNumberColumn(&Descriptor{Type: KindStack})
	inner := mean(t, num(t, "b"), num(t, "c"))
	for _, c := range []Column{num(t, "a"), inner, mean(t, num(t, "d"))} {
		if err := root.Push(c); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.Push(root); err != nil {
		t.Fatal(err)
	}
	return r, root, inner
}

func TestFlattenWidthSum(t *testing.T) {
	for _, padding := range []float64{0, 2, 5} {
		_, root, inner := tree(t)
		out, total := Flatten(root, padding)
		if len(out) != 4 {
			t.Fatalf("padding %v: %d entries, want 4", padding, len(out))
		}
		var sum float64
		for _, fc := range out {
			sum += fc.Width
		}
		sum += padding * float64(len(out)-1)
		if sum != total {
			t.Errorf("padding %v: widths + padding = %v, total %v", padding, sum, total)
		}
		if root.Width() != total {
			t.Errorf("padding %v: root width %v, total %v", padding, root.Width(), total)
		}
		if inner.Width() != 2*DefaultWidth+padding {
			t.Errorf("padding %v: inner width %v", padding, inner.Width())
		}
		for i := 1; i < len(out); i++ {
			if want := out[i-1].Offset + out[i-1].Width + padding; out[i].Offset != want {
				t.Errorf("entry %d offset = %v, want %v", i, out[i].Offset, want)
			}
		}
	}
}

func TestFlattenDeterministic(t *testing.T) {
	_, root, _ := tree(t)
	first, w1 := Flatten(root, 3)
	second, w2 := Flatten(root, 3)
	if !reflect.DeepEqual(first, second) || w1 != w2 {
		t.Error("flattening twice without mutation should yield identical output")
	}
}

func TestFlattenCollapsedAndCompressed(t *testing.T) {
	_, root, inner := tree(t)

	inner.SetCollapsed(true)
	out, _ := Flatten(root, 0)
	if len(out) != 3 {
		t.Fatalf("collapsed: %d entries, want 3", len(out))
	}
	if out[1].Column != inner || out[1].Depth != 1 {
		t.Errorf("collapsed node should be one entry at depth 1, got %+v", out[1])
	}
	if got := CountMultiLevel(inner); got != 1 {
		t.Errorf("CountMultiLevel of collapsed node = %d, want 1", got)
	}
	// The sibling mean[d] still needs two rows below the root.
	if got := CountMultiLevel(root); got != 3 {
		t.Errorf("CountMultiLevel = %d, want 3", got)
	}

	inner.SetCollapsed(false)
	if got := CountMultiLevel(inner); got != 2 {
		t.Errorf("CountMultiLevel expanded = %d, want 2", got)
	}

	root.SetCompressed(true)
	out, total := Flatten(root, 0)
	if len(out) != 1 || total != CompressedWidth {
		t.Errorf("compressed root: %d entries width %v", len(out), total)
	}
	if got := CountMultiLevel(root); got != 1 {
		t.Errorf("CountMultiLevel compressed = %d, want 1", got)
	}
}

func TestFlattenGroups(t *testing.T) {
	_, root, inner := tree(t)
	out, total := FlattenGroups(root, 1)

	// root, a, inner, b, c, nested-mean, d
	if len(out) != 7 {
		t.Fatalf("%d entries, want 7", len(out))
	}
	if out[0].Column != root || out[0].Width != total {
		t.Errorf("root span = %+v, want width %v", out[0], total)
	}
	if out[2].Column != inner || out[2].Width != out[3].Width+1+out[4].Width {
		t.Errorf("inner span = %+v", out[2])
	}
}

func TestRankingFlatten(t *testing.T) {
	r, root, _ := tree(t)
	extra := num(t, "a")
	hidden := num(t, "b")
	hidden.SetVisible(false)
	_ = r.Push(extra)
	_ = r.Push(hidden)

	out, total := r.Flatten(4)
	if len(out) != 5 {
		t.Fatalf("%d entries, want 5", len(out))
	}
	if want := root.Width() + 4 + extra.Width(); total != want {
		t.Errorf("total = %v, want %v", total, want)
	}
	if r.CountMultiLevel() != 3 {
		t.Errorf("CountMultiLevel = %d, want 3", r.CountMultiLevel())
	}
}
