package model

import (
	"cmp"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/matzehuels/lineup/pkg/errors"
)

// DefaultDateFormat is the Go layout used for labels.
const DefaultDateFormat = "2006-01-02"

// DateColumn reads a date cell. Strings are parsed with desc.DateParse as
// Go layout when set, otherwise by format detection. Numbers are Unix
// milliseconds.
type DateColumn struct {
	valueBase
	format string
	filter DateFilter
}

// NewDateColumn creates a date column reading desc.Column.
func NewDateColumn(desc *Descriptor) *DateColumn {
	desc = descOf(desc, KindDate)
	c := &DateColumn{format: cmp.Or(desc.DateFormat, DefaultDateFormat)}
	c.columnBase = newColumnBase(c, desc)
	return c
}

// Time returns the parsed date of row.
func (c *DateColumn) Time(row Row, _ int) (time.Time, bool) {
	return parseDate(c.raw(row), c.desc.DateParse)
}

func parseDate(v any, layout string) (time.Time, bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return x, !x.IsZero()
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return *x, !x.IsZero()
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, false
		}
		var (
			t   time.Time
			err error
		)
		if layout != "" {
			t, err = time.ParseInLocation(layout, s, time.UTC)
		} else {
			t, err = dateparse.ParseIn(s, time.UTC)
		}
		return t, err == nil
	}
	if ms, ok := toFloat(v); ok {
		return time.UnixMilli(int64(ms)).UTC(), true
	}
	return time.Time{}, false
}

// Value returns the time, or nil when missing.
func (c *DateColumn) Value(row Row, index int) any {
	t, ok := c.Time(row, index)
	if !ok {
		return nil
	}
	return t
}

func (c *DateColumn) Label(row Row, index int) string {
	t, ok := c.Time(row, index)
	if !ok {
		return ""
	}
	return t.Format(c.format)
}

// Compare orders chronologically. Missing dates sort after present ones.
func (c *DateColumn) Compare(a, b Row, ia, ib int) int {
	ta, oka := c.Time(a, ia)
	tb, okb := c.Time(b, ib)
	switch {
	case !oka && !okb:
		return 0
	case !oka:
		return 1
	case !okb:
		return -1
	}
	return ta.Compare(tb)
}

// DateFormat returns the Go layout used for labels.
func (c *DateColumn) DateFormat() string { return c.format }

// SetDateFormat changes the label layout.
func (c *DateColumn) SetDateFormat(layout string) {
	if layout == "" {
		layout = DefaultDateFormat
	}
	if layout == c.format {
		return
	}
	old := c.format
	c.format = layout
	c.emit(Event{Kind: EventMetadata, Source: c.self, Old: old, New: layout})
}

func (c *DateColumn) IsFiltered() bool { return c.filter.Active() }

func (c *DateColumn) Filter(row Row, index int) bool {
	t, ok := c.Time(row, index)
	return c.filter.admit(t, ok)
}

// DateFilter returns the current filter.
func (c *DateColumn) DateFilter() DateFilter { return c.filter }

// SetFilter replaces the date range filter.
func (c *DateColumn) SetFilter(f DateFilter) {
	if f.After.Equal(c.filter.After) && f.Before.Equal(c.filter.Before) && f.FilterMissing == c.filter.FilterMissing {
		return
	}
	old := c.filter
	c.filter = f
	c.emit(Event{Kind: EventFilter, Source: c.self, Old: old, New: f})
}

func (c *DateColumn) ClearFilter() { c.SetFilter(DateFilter{}) }

func (c *DateColumn) Dump(toRef func(*Descriptor) string) Dump {
	d := c.dumpValue(toRef)
	d.Filtered = c.filter.Active()
	d.Filter = c.filter.dump()
	if c.format != cmp.Or(c.desc.DateFormat, DefaultDateFormat) {
		d.DateFormat = c.format
	}
	return d
}

func (c *DateColumn) restore(d Dump, _ Factory, _ Recover) error {
	c.restoreValue(d)
	if d.DateFormat != "" {
		c.format = d.DateFormat
	}
	c.filter = DateFilter{}
	if d.Filter == nil {
		return nil
	}
	c.filter.FilterMissing = d.Filter.FilterMissing
	for _, b := range []struct {
		src string
		dst *time.Time
	}{{d.Filter.After, &c.filter.After}, {d.Filter.Before, &c.filter.Before}} {
		if b.src == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339Nano, b.src)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDump, err, "date filter bound %q", b.src)
		}
		*b.dst = t
	}
	return nil
}
