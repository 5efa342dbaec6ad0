package model

import (
	"slices"
	"testing"

	"github.com/matzehuels/lineup/pkg/errors"
)

func TestCompositeInsertRemoveMove(t *testing.T) {
	a, b, c := num(t, "a"), num(t, "b"), num(t, "c")
	g := NewNestedColumn(nil)

	for _, col := range []Column{a, b} {
		if err := g.Push(col); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}
	if err := g.Insert(c, 0); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if got, want := ids(g.Children()), []string{c.ID(), a.ID(), b.ID()}; !slices.Equal(got, want) {
		t.Fatalf("children = %v, want %v", got, want)
	}
	if a.Parent() != Parent(g) {
		t.Error("child should point back at its composite")
	}

	if err := g.Move(c, 2); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if got, want := ids(g.Children()), []string{a.ID(), b.ID(), c.ID()}; !slices.Equal(got, want) {
		t.Errorf("after move children = %v, want %v", got, want)
	}

	if err := b.RemoveMe(); err != nil {
		t.Fatalf("RemoveMe: %v", err)
	}
	if b.Parent() != nil {
		t.Error("removed column should have no parent")
	}
	if err := g.Remove(b); !errors.Is(err, errors.ErrCodeNotAChild) {
		t.Errorf("Remove of non-member = %v, want NOT_A_CHILD", err)
	}
	if err := b.RemoveMe(); !errors.Is(err, errors.ErrCodeNotAChild) {
		t.Errorf("RemoveMe without parent = %v, want NOT_A_CHILD", err)
	}

	for _, col := range []Column{a, c} {
		if err := g.Remove(col); err != nil {
			t.Fatalf("Remove: %v", err)
		}
	}
	if g.Len() != 0 {
		t.Errorf("Len = %d, want 0", g.Len())
	}
}

func TestCompositeReparent(t *testing.T) {
	a := num(t, "a")
	g1, g2 := NewNestedColumn(nil), NewNestedColumn(nil)
	if err := g1.Push(a); err != nil {
		t.Fatal(err)
	}
	if err := g2.Push(a); err != nil {
		t.Fatal(err)
	}
	if g1.Len() != 0 {
		t.Error("re-parenting should remove the column from its old parent")
	}
	if a.Parent() != Parent(g2) {
		t.Error("parent should be the new composite")
	}
}

func TestCompositeCycleRejected(t *testing.T) {
	r := NewRanking(Rows{{"a": 1.0}})
	outer := NewNestedColumn(nil)
	inner := NewNestedColumn(nil)
	deep := NewNestedColumn(nil)
	for _, link := range []struct {
		parent *NestedColumn
		child  Column
	}{{outer, inner}, {inner, deep}, {deep, num(t, "a")}} {
		if err := link.parent.Push(link.child); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.Push(outer); err != nil {
		t.Fatal(err)
	}
	r.Order()

	before := treeShape(r.Columns())
	version := r.Version()

	tests := []struct {
		name   string
		target *NestedColumn
		col    Column
	}{
		{"self", inner, inner},
		{"parent", inner, outer},
		{"grandparent", deep, outer},
		{"root into itself", outer, outer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.target.Push(tt.col)
			if !errors.Is(err, errors.ErrCodeCycle) {
				t.Fatalf("Push = %v, want CYCLE", err)
			}
			if got := treeShape(r.Columns()); !slices.Equal(got, before) {
				t.Errorf("tree changed:\n got %v\nwant %v", got, before)
			}
			if r.State() != Clean {
				t.Errorf("state = %v, rejected mutation must not dirty the ranking", r.State())
			}
		})
	}
	if r.Version() != version {
		t.Error("rejected mutations must not trigger a recompute")
	}
}

func TestCompositeNumberRejectsIncompatibleChild(t *testing.T) {
	c := mean(t)
	s := NewStringColumn(&Descriptor{Type: KindString, Column: "name"})
	if err := c.Push(s); !errors.Is(err, errors.ErrCodeIncompatibleChild) {
		t.Errorf("Push(string) = %v, want INCOMPATIBLE_CHILD", err)
	}
	if err := c.Push(NewNestedColumn(nil)); !errors.Is(err, errors.ErrCodeIncompatibleChild) {
		t.Errorf("Push(nested) = %v, want INCOMPATIBLE_CHILD", err)
	}
	// Numeric composites nest.
	if err := c.Push(mean(t, num(t, "a"))); err != nil {
		t.Errorf("Push(mean) = %v", err)
	}
}

func TestCompositeWidth(t *testing.T) {
	a, b := num(t, "a"), num(t, "b")
	a.SetWidth(100)
	b.SetWidth(50)
	g := NewNestedColumn(nil)
	_ = g.Push(a)
	_ = g.Push(b)

	if got := g.Width(); got != 150 {
		t.Errorf("Width = %v, want 150", got)
	}

	var widthEvents int
	g.On(EventWidth, func(Event) { widthEvents++ })
	a.SetWidth(120)
	if got := g.Width(); got != 170 {
		t.Errorf("Width after child change = %v, want 170", got)
	}
	if widthEvents != 1 {
		t.Errorf("child width change should propagate once, got %d", widthEvents)
	}

	b.SetVisible(false)
	if got := g.Width(); got != 120 {
		t.Errorf("Width with hidden child = %v, want 120", got)
	}
	b.SetVisible(true)

	g.SetCollapsed(true)
	if got := g.Width(); got != DefaultWidth {
		t.Errorf("collapsed Width = %v, want %v", got, DefaultWidth)
	}
	g.SetCollapsed(false)

	g.SetCompressed(true)
	if got := g.Width(); got != CompressedWidth {
		t.Errorf("compressed Width = %v, want %v", got, CompressedWidth)
	}
	g.SetCompressed(false)

	// Setting the width of an expanded group scales its children.
	g.SetWidth(340)
	if a.Width() != 240 || b.Width() != 100 {
		t.Errorf("children = %v, %v, want 240, 100", a.Width(), b.Width())
	}
	if got := g.Width(); got != 340 {
		t.Errorf("Width = %v, want 340", got)
	}
}

func TestSetWidthClamps(t *testing.T) {
	a := num(t, "a")
	a.SetWidth(-5)
	if a.Width() != MinWidth {
		t.Errorf("Width = %v, want %v", a.Width(), MinWidth)
	}
}

func TestRemoveLastChildKeepsComposite(t *testing.T) {
	r := NewRanking(Rows{{"a": 1.0}})
	a := num(t, "a")
	g := mean(t, a)
	_ = r.Push(g)
	if err := a.RemoveMe(); err != nil {
		t.Fatal(err)
	}
	if g.Ranking() != r {
		t.Error("empty composite should stay in its ranking")
	}
	if got := g.Value(Row{"a": 1.0}, 0); got != 0.0 {
		t.Errorf("empty composite Value = %v, want substitute 0", got)
	}
}

func TestNestedColumn(t *testing.T) {
	a := num(t, "a")
	s := NewStringColumn(&Descriptor{Type: KindString, Column: "s"})
	g := NewNestedColumn(nil)
	_ = g.Push(s)
	_ = g.Push(a)

	row := Row{"a": 2.0, "s": "x"}
	if got := g.Label(row, 0); got != "x; 2" {
		t.Errorf("Label = %q, want %q", got, "x; 2")
	}

	r1, r2 := Row{"s": "a", "a": 2.0}, Row{"s": "a", "a": 1.0}
	if got := g.Compare(r1, r2, 0, 1); got <= 0 {
		t.Errorf("Compare should fall through to the second child, got %d", got)
	}
}
