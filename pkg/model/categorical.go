package model

import (
	"cmp"
	"slices"
	"strings"
)

// CategoricalColumn reads a cell naming one of a declared set of
// categories. Rows compare by declaration order.
type CategoricalColumn struct {
	valueBase
	categories []Category
	index      map[string]int
	filter     CategoricalFilter
}

// NewCategoricalColumn creates a categorical column over desc.Categories.
func NewCategoricalColumn(desc *Descriptor) *CategoricalColumn {
	desc = descOf(desc, KindCategorical)
	c := &CategoricalColumn{
		categories: slices.Clone(desc.Categories),
		index:      make(map[string]int, len(desc.Categories)),
	}
	c.columnBase = newColumnBase(c, desc)
	for i, cat := range c.categories {
		c.index[cat.Name] = i
	}
	return c
}

// Categories returns the declared categories in order.
func (c *CategoricalColumn) Categories() []Category { return slices.Clone(c.categories) }

// Category returns the category name of row, empty when missing.
func (c *CategoricalColumn) Category(row Row, _ int) string {
	s, _ := toText(c.raw(row))
	return strings.TrimSpace(s)
}

// Lookup returns the declared category of row.
func (c *CategoricalColumn) Lookup(row Row, index int) (Category, bool) {
	i, ok := c.index[c.Category(row, index)]
	if !ok {
		return Category{}, false
	}
	return c.categories[i], true
}

func (c *CategoricalColumn) Value(row Row, index int) any { return c.Category(row, index) }

// Label is the category label, or the raw name for undeclared categories.
func (c *CategoricalColumn) Label(row Row, index int) string {
	if cat, ok := c.Lookup(row, index); ok {
		return cat.DisplayLabel()
	}
	return c.Category(row, index)
}

// Compare orders declared categories by declaration, then undeclared ones
// by name, then missing values.
func (c *CategoricalColumn) Compare(a, b Row, ia, ib int) int {
	na, nb := c.Category(a, ia), c.Category(b, ib)
	ra, rb := c.rank(na), c.rank(nb)
	if r := cmp.Compare(ra, rb); r != 0 {
		return r
	}
	if ra == len(c.categories) {
		return strings.Compare(na, nb)
	}
	return 0
}

func (c *CategoricalColumn) rank(name string) int {
	if name == "" {
		return len(c.categories) + 1
	}
	if i, ok := c.index[name]; ok {
		return i
	}
	return len(c.categories)
}

func (c *CategoricalColumn) IsFiltered() bool { return c.filter.Active() }

func (c *CategoricalColumn) Filter(row Row, index int) bool {
	return c.filter.admit(c.Category(row, index))
}

// CategoricalFilter returns the current filter.
func (c *CategoricalColumn) CategoricalFilter() CategoricalFilter {
	return CategoricalFilter{Allowed: slices.Clone(c.filter.Allowed), FilterMissing: c.filter.FilterMissing}
}

func (c *CategoricalFilter) equal(o CategoricalFilter) bool {
	return c.FilterMissing == o.FilterMissing && (c.Allowed == nil) == (o.Allowed == nil) && slices.Equal(c.Allowed, o.Allowed)
}

// SetFilter replaces the set of admitted categories. A nil Allowed admits
// every category.
func (c *CategoricalColumn) SetFilter(f CategoricalFilter) {
	if c.filter.equal(f) {
		return
	}
	old := c.filter
	c.filter = CategoricalFilter{Allowed: slices.Clone(f.Allowed), FilterMissing: f.FilterMissing}
	if f.Allowed != nil && c.filter.Allowed == nil {
		c.filter.Allowed = []string{}
	}
	c.emit(Event{Kind: EventFilter, Source: c.self, Old: old, New: c.filter})
}

func (c *CategoricalColumn) ClearFilter() { c.SetFilter(CategoricalFilter{}) }

func (c *CategoricalColumn) Dump(toRef func(*Descriptor) string) Dump {
	d := c.dumpValue(toRef)
	d.Filtered = c.filter.Active()
	d.Filter = c.filter.dump()
	return d
}

func (c *CategoricalColumn) restore(d Dump, _ Factory, _ Recover) error {
	c.restoreValue(d)
	c.filter = CategoricalFilter{}
	if d.Filter != nil {
		c.filter.FilterMissing = d.Filter.FilterMissing
		if len(d.Filter.Categories) > 0 || d.Filter.NoCategories {
			c.filter.Allowed = slices.Clone(d.Filter.Categories)
			if c.filter.Allowed == nil {
				c.filter.Allowed = []string{}
			}
		}
	}
	// Filtered without any filter details can only be an empty admitted set.
	if d.Filtered && c.filter.Allowed == nil && !c.filter.FilterMissing {
		c.filter.Allowed = []string{}
	}
	return nil
}
