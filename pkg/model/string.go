package model

import (
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/matzehuels/lineup/pkg/errors"
)

// StringColumn reads a text cell. Compare uses the collation of the
// descriptor's locale, English by default.
type StringColumn struct {
	valueBase
	collator *collate.Collator
	filter   StringFilter
}

// NewStringColumn creates a string column reading desc.Column.
func NewStringColumn(desc *Descriptor) *StringColumn {
	c := &StringColumn{}
	c.init(c, descOf(desc, KindString))
	return c
}

func (c *StringColumn) init(self Column, desc *Descriptor) {
	c.columnBase = newColumnBase(self, desc)
	c.collator = newCollator(desc.Locale)
}

func newCollator(locale string) *collate.Collator {
	tag := language.English
	if locale != "" {
		if t, err := language.Parse(locale); err == nil {
			tag = t
		}
	}
	return collate.New(tag)
}

// Text returns the cell text, empty when missing.
func (c *StringColumn) Text(row Row, _ int) string {
	s, _ := toText(c.raw(row))
	return s
}

func (c *StringColumn) Value(row Row, index int) any { return c.Text(row, index) }

func (c *StringColumn) Label(row Row, index int) string { return c.Text(row, index) }

// Compare orders by collation. Missing values sort after present ones.
func (c *StringColumn) Compare(a, b Row, ia, ib int) int {
	return compareText(c.collator, c.Text(a, ia), c.Text(b, ib))
}

func compareText(coll *collate.Collator, a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}
	if r := coll.CompareString(a, b); r != 0 {
		return r
	}
	return strings.Compare(a, b)
}

func (c *StringColumn) IsFiltered() bool { return c.filter.Active() }

func (c *StringColumn) Filter(row Row, index int) bool {
	return c.filter.admit(c.Text(row, index))
}

// StringFilter returns the current filter.
func (c *StringColumn) StringFilter() StringFilter { return c.filter }

// SetFilter replaces the text filter.
func (c *StringColumn) SetFilter(f StringFilter) {
	if f.Text == c.filter.Text && f.Regexp == c.filter.Regexp && f.FilterMissing == c.filter.FilterMissing {
		return
	}
	old := c.filter
	c.filter = f
	c.emit(Event{Kind: EventFilter, Source: c.self, Old: old, New: f})
}

func (c *StringColumn) ClearFilter() { c.SetFilter(StringFilter{}) }

func (c *StringColumn) Dump(toRef func(*Descriptor) string) Dump {
	d := c.dumpValue(toRef)
	d.Filtered = c.filter.Active()
	d.Filter = c.filter.dump()
	return d
}

func (c *StringColumn) restore(d Dump, _ Factory, _ Recover) error {
	c.restoreValue(d)
	return c.restoreFilter(d)
}

func (c *StringColumn) restoreFilter(d Dump) error {
	c.filter = StringFilter{}
	if d.Filter == nil {
		return nil
	}
	f, err := NewStringFilter(d.Filter.Text, d.Filter.Regexp, d.Filter.FilterMissing)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDump, err, "string filter")
	}
	c.filter = f
	return nil
}

// LinkColumn is a string column whose cells also expand into a URL.
type LinkColumn struct {
	StringColumn
	pattern string
}

// NewLinkColumn creates a link column. desc.Pattern is the URL template.
func NewLinkColumn(desc *Descriptor) *LinkColumn {
	desc = descOf(desc, KindLink)
	c := &LinkColumn{pattern: desc.Pattern}
	c.init(c, desc)
	return c
}

// Pattern returns the URL template.
func (c *LinkColumn) Pattern() string { return c.pattern }

// SetPattern replaces the URL template. An empty pattern, like the bare
// placeholder, links the cell text itself.
func (c *LinkColumn) SetPattern(pattern string) error {
	if err := errors.ValidateLinkPattern(pattern); err != nil {
		return err
	}
	if pattern == errors.LinkPlaceholder {
		pattern = ""
	}
	if pattern == c.pattern {
		return nil
	}
	old := c.pattern
	c.pattern = pattern
	c.emit(Event{Kind: EventDirtyValues, Source: c.self, Old: old, New: pattern})
	return nil
}

// Link expands the template with the cell text. Without a template the
// text itself is the link; missing cells have no link.
func (c *LinkColumn) Link(row Row, index int) string {
	v := c.Text(row, index)
	if v == "" || c.pattern == "" {
		return v
	}
	return strings.ReplaceAll(c.pattern, errors.LinkPlaceholder, v)
}

func (c *LinkColumn) Dump(toRef func(*Descriptor) string) Dump {
	d := c.StringColumn.Dump(toRef)
	if c.pattern != c.desc.Pattern {
		d.Link = c.pattern
		if d.Link == "" {
			d.Link = errors.LinkPlaceholder
		}
	}
	return d
}

func (c *LinkColumn) restore(d Dump, f Factory, rec Recover) error {
	switch {
	case d.Link == errors.LinkPlaceholder:
		c.pattern = ""
	case d.Link != "":
		if err := errors.ValidateLinkPattern(d.Link); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDump, err, "link column")
		}
		c.pattern = d.Link
	}
	return c.StringColumn.restore(d, f, rec)
}
