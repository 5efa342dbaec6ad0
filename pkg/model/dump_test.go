package model

import (
	"math"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/lineup/pkg/errors"
)

var dumpRows = Rows{
	{"score": 10.0, "other": 4.0, "name": "alpha", "url": "a", "tier": "gold", "when": "2024-03-01"},
	{"score": 2.5, "name": "Beta", "tier": "silver", "when": "2023-12-24T10:00:00Z"},
	{"other": 7.0, "name": "", "tier": "bronze", "when": int64(1700000000000)},
	{"score": -1.0, "other": 1.0, "name": "gamma", "tier": "wood", "url": "g"},
}

func dumpRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry(
		&Descriptor{Type: KindNumber, Column: "score", Domain: []float64{-5, 15}},
		&Descriptor{Type: KindNumber, Column: "other", MissingValue: ptr(1.5), NumberFormat: ".2f"},
		&Descriptor{Type: KindString, Column: "name"},
		&Descriptor{Type: KindLink, Column: "url", Pattern: "https://example.com/${value}"},
		&Descriptor{Type: KindCategorical, Column: "tier", Categories: []Category{
			{Name: "gold", Color: "#ffd700"}, {Name: "silver"}, {Name: "bronze", Label: "Bronze"},
		}},
		&Descriptor{Type: KindDate, Column: "when", DateFormat: "Jan 2006"},
	)
	require.NoError(t, err)
	return reg
}

func create(t *testing.T, reg *Registry, ref string) Column {
	t.Helper()
	c, err := reg.New(ref)
	require.NoError(t, err)
	return c
}

func stripIDs(d Dump) Dump {
	d.ID = ""
	for i := range d.Children {
		d.Children[i] = stripIDs(d.Children[i])
	}
	return d
}

func assertSameBehavior(t *testing.T, want, got Column) {
	t.Helper()
	assert.Equal(t, want.Kind(), got.Kind())
	assert.Same(t, want.Desc(), got.Desc(), "clones share the descriptor")
	assert.Equal(t, want.Title(), got.Title())
	assert.Equal(t, want.Width(), got.Width())
	assert.Equal(t, want.Visible(), got.Visible())
	assert.Equal(t, want.Compressed(), got.Compressed())
	assert.Equal(t, want.IsFiltered(), got.IsFiltered())
	for i, a := range dumpRows {
		assert.Equal(t, want.Value(a, i), got.Value(a, i), "value of row %d", i)
		assert.Equal(t, want.Label(a, i), got.Label(a, i), "label of row %d", i)
		assert.Equal(t, want.Filter(a, i), got.Filter(a, i), "filter of row %d", i)
		for j, b := range dumpRows {
			assert.Equal(t, want.Compare(a, b, i, j), got.Compare(a, b, i, j), "compare %d/%d", i, j)
		}
	}
	if wg, ok := want.(composite); ok {
		gg, ok := got.(composite)
		require.True(t, ok)
		assert.Equal(t, wg.group().Collapsed(), gg.group().Collapsed())
		wc, gc := wg.group().Children(), gg.group().Children()
		require.Len(t, gc, len(wc))
		for i := range wc {
			assertSameBehavior(t, wc[i], gc[i])
		}
	}
}

func TestRoundTripEveryKind(t *testing.T) {
	reg := dumpRegistry(t)

	score := create(t, reg, "score").(*NumberColumn)
	score.SetFilter(NumberFilter{Min: 0, Max: math.Inf(1), FilterMissing: true})
	score.SetTitle("Score")

	other := create(t, reg, "other").(*NumberColumn)
	other.SetWidth(42)
	other.SetMapping(Mapping{Domain: [2]float64{0, 10}, Range: [2]float64{1, 0}, Clamp: true})

	name := create(t, reg, "name").(*StringColumn)
	f, err := NewStringFilter("a", false, false)
	require.NoError(t, err)
	name.SetFilter(f)

	link := create(t, reg, "url").(*LinkColumn)
	require.NoError(t, link.SetPattern("https://example.org/item/${value}"))

	tier := create(t, reg, "tier").(*CategoricalColumn)
	tier.SetFilter(CategoricalFilter{Allowed: []string{"gold", "bronze"}})

	when := create(t, reg, "when").(*DateColumn)
	when.SetDateFormat("2006")
	when.SetFilter(DateFilter{After: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)})

	hidden := create(t, reg, "score").(*NumberColumn)
	hidden.SetVisible(false)
	hidden.SetCompressed(true)
	hidden.SetLoaded(false)

	stack := create(t, reg, "stack").(*CompositeNumberColumn)
	require.NoError(t, stack.Push(create(t, reg, "score")))
	require.NoError(t, stack.Push(create(t, reg, "other")))
	stack.SetWeights([]float64{0.3, 0.7})
	stack.SetMissingValue(0.5)
	require.NoError(t, stack.SetNumberFormat(".1f"))

	script := create(t, reg, "script").(*ScriptColumn)
	require.NoError(t, script.SetScript("sum(values) / n"))
	require.NoError(t, script.Push(create(t, reg, "other")))
	require.NoError(t, script.Push(stack))

	median := create(t, reg, "median").(*CompositeNumberColumn)
	require.NoError(t, median.Push(create(t, reg, "score")))
	median.SetCollapsed(true)

	nested := create(t, reg, "nested").(*NestedColumn)
	require.NoError(t, nested.Push(create(t, reg, "name")))
	require.NoError(t, nested.Push(create(t, reg, "tier")))

	rank := create(t, reg, "rank")

	cols := []Column{score, other, name, link, tier, when, hidden, script, median, nested, rank}
	for _, col := range cols {
		t.Run(string(col.Kind())+"/"+col.ID(), func(t *testing.T) {
			d := col.Dump(reg.ToDescRef)
			restored, err := Restore(d, reg)
			require.NoError(t, err)
			assert.NotEqual(t, col.ID(), restored.ID(), "restore assigns fresh ids")
			assertSameBehavior(t, col, restored)
			assert.Equal(t, stripIDs(d), stripIDs(restored.Dump(reg.ToDescRef)))
		})
	}
}

func TestRoundTripRanking(t *testing.T) {
	reg := dumpRegistry(t)
	r := NewRanking(dumpRows)
	stack := create(t, reg, "stack").(*CompositeNumberColumn)
	score := create(t, reg, "score")
	require.NoError(t, stack.Push(score))
	require.NoError(t, stack.Push(create(t, reg, "other")))
	require.NoError(t, r.Push(create(t, reg, "rank")))
	require.NoError(t, r.Push(create(t, reg, "name")))
	require.NoError(t, r.Push(stack))
	require.NoError(t, score.SortByMe(true))

	d := r.Dump(reg.ToDescRef)
	require.NotNil(t, d.SortCriterion)
	assert.Equal(t, score.ID(), d.SortCriterion.Column)

	restored, err := RestoreRanking(d, dumpRows, reg, nil)
	require.NoError(t, err)
	assert.Equal(t, r.ID(), restored.ID())
	assert.Equal(t, r.Order(), restored.Order())

	crit := restored.SortCriterion()
	require.NotNil(t, crit.Column)
	assert.Equal(t, KindNumber, crit.Column.Kind())
	assert.True(t, crit.Ascending)
	assert.NotEqual(t, score.ID(), crit.Column.ID())
	assert.Same(t, restored, crit.Column.Ranking())

	rc := restored.Columns()
	require.Len(t, rc, 3)
	for i, c := range r.Columns() {
		assertSameBehavior(t, c, rc[i])
	}
}

func TestRestoreMalformed(t *testing.T) {
	reg := dumpRegistry(t)
	tests := []struct {
		name string
		dump Dump
		code errors.Code
	}{
		{"unknown type", Dump{Desc: "score", Type: "sparkline"}, errors.ErrCodeUnknownType},
		{"no desc or type", Dump{Width: 10}, errors.ErrCodeInvalidDump},
		{"unresolvable desc", Dump{Desc: "nope", Type: KindNumber}, errors.ErrCodeInvalidDump},
		{"type mismatch", Dump{Desc: "name", Type: KindNumber}, errors.ErrCodeInvalidDump},
		{"bad format", Dump{Desc: "score", Type: KindNumber, NumberFormat: "%d"}, errors.ErrCodeInvalidDump},
		{"bad script", Dump{Desc: "script", Type: KindScript, Script: "max("}, errors.ErrCodeInvalidDump},
		{"incompatible child", Dump{Type: KindStack, Children: []Dump{{Desc: "name", Type: KindString}}}, errors.ErrCodeInvalidDump},
		{"bad child", Dump{Type: KindNested, Children: []Dump{{Desc: "score", Type: "bogus"}}}, errors.ErrCodeUnknownType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Restore(tt.dump, reg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), "got %v, want %s", err, tt.code)
		})
	}
}

func TestRestorePlaceholder(t *testing.T) {
	reg := dumpRegistry(t)
	d := Dump{Type: KindMean, Children: []Dump{
		{Desc: "other", Type: KindNumber},
		{Desc: "vanished", Type: KindNumber, Width: 77},
	}}
	col, err := RestoreWith(d, reg, PlaceholderRecover)
	require.NoError(t, err)

	children := col.(*CompositeNumberColumn).Children()
	require.Len(t, children, 2)
	ph := children[1].(*NumberColumn)
	assert.False(t, ph.IsLoaded())
	assert.Equal(t, 77.0, ph.Width())
	assert.Equal(t, "missing vanished", ph.Title())
	// (4 + 0) / 2 with the placeholder contributing the substitute.
	assert.Equal(t, 2.0, col.Value(dumpRows[0], 0))
}

// encoded sends d through the JSON codec, which drops empty fields.
func encoded(t *testing.T, d Dump) Dump {
	t.Helper()
	data, err := json.Marshal(d)
	require.NoError(t, err)
	var out Dump
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestRoundTripEmptyCategoryFilter(t *testing.T) {
	reg := dumpRegistry(t)

	for _, missing := range []bool{false, true} {
		tier := create(t, reg, "tier").(*CategoricalColumn)
		tier.SetFilter(CategoricalFilter{Allowed: []string{}, FilterMissing: missing})
		require.True(t, tier.IsFiltered())

		restored, err := Restore(encoded(t, tier.Dump(reg.ToDescRef)), reg)
		require.NoError(t, err)
		got := restored.(*CategoricalColumn).CategoricalFilter()
		assert.NotNil(t, got.Allowed, "filterMissing=%v", missing)
		assert.Empty(t, got.Allowed)
		assert.Equal(t, missing, got.FilterMissing)
		for i, row := range dumpRows {
			assert.False(t, restored.Filter(row, i), "row %d admitted", i)
		}
	}
}

func TestRoundTripClearedLinkPattern(t *testing.T) {
	reg := dumpRegistry(t)
	link := create(t, reg, "url").(*LinkColumn)
	require.NoError(t, link.SetPattern(""))
	assert.Equal(t, "a", link.Link(dumpRows[0], 0))

	restored, err := Restore(encoded(t, link.Dump(reg.ToDescRef)), reg)
	require.NoError(t, err)
	rl := restored.(*LinkColumn)
	assert.Equal(t, "", rl.Pattern())
	assert.Equal(t, "a", rl.Link(dumpRows[0], 0))

	require.NoError(t, link.SetPattern("${value}"))
	assert.Equal(t, "", link.Pattern(), "bare placeholder is the empty template")
}

func TestCloneSharesDescriptor(t *testing.T) {
	reg := dumpRegistry(t)
	orig := create(t, reg, "tier")
	c, err := Clone(orig, reg)
	require.NoError(t, err)
	assert.Same(t, orig.Desc(), c.Desc())
	assert.NotEqual(t, orig.ID(), c.ID())
}

func TestRegistry(t *testing.T) {
	reg := dumpRegistry(t)
	assert.Len(t, reg.Descriptors(), 6)

	err := reg.Register(&Descriptor{Type: KindString, Column: "name"})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidDescriptor))

	err = reg.Register(&Descriptor{Type: "sparkline", Column: "x"})
	assert.True(t, errors.Is(err, errors.ErrCodeUnknownType))

	err = reg.Register(&Descriptor{Type: KindNumber})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidDescriptor))

	d1, err := reg.FromDescRef("stack")
	require.NoError(t, err)
	d2, _ := reg.FromDescRef("stack")
	assert.Same(t, d1, d2, "built-in descriptors are shared")

	_, err = reg.FromDescRef("number")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))

	reg.RegisterKind(KindRank, func(d *Descriptor) (Column, error) {
		c := NewRankColumn(d)
		c.SetWidth(33)
		return c, nil
	})
	assert.Equal(t, 33.0, create(t, reg, "rank").Width())
}
