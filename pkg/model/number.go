package model

import (
	"cmp"
	"math"

	"github.com/matzehuels/lineup/pkg/errors"
)

// valueBase is shared by the leaf columns that read raw row data.
type valueBase struct {
	columnBase
	unloaded bool
}

// IsLoaded reports whether the column's data is available. Until then every
// value is missing.
func (c *valueBase) IsLoaded() bool { return !c.unloaded }

// SetLoaded marks the column's data as available or pending.
func (c *valueBase) SetLoaded(loaded bool) {
	if loaded == !c.unloaded {
		return
	}
	c.unloaded = !loaded
	c.emit(Event{Kind: EventDirtyValues, Source: c.self, Old: !loaded, New: loaded})
}

// raw returns the cell of row for the descriptor's column, nil while the
// column is not loaded.
func (c *valueBase) raw(row Row) any {
	if c.unloaded || row == nil {
		return nil
	}
	return row[c.desc.Column]
}

func (c *valueBase) dumpValue(toRef func(*Descriptor) string) Dump {
	d := c.dumpBase(toRef)
	if c.unloaded {
		d.Loaded = ptr(false)
	}
	return d
}

func (c *valueBase) restoreValue(d Dump) {
	c.restoreBase(d)
	c.unloaded = d.Loaded != nil && !*d.Loaded
}

// Mapping is a linear scale from a data domain to a score range.
type Mapping struct {
	Domain [2]float64
	Range  [2]float64
	// Clamp limits results to Range.
	Clamp bool
}

// IdentityMapping passes values through unchanged.
func IdentityMapping() Mapping {
	return Mapping{Domain: [2]float64{0, 1}, Range: [2]float64{0, 1}}
}

// IsIdentity reports whether the mapping leaves values unchanged.
func (m Mapping) IsIdentity() bool {
	return m.Domain == m.Range && !m.Clamp
}

// Apply scales v. NaN stays NaN.
func (m Mapping) Apply(v float64) float64 {
	if math.IsNaN(v) || m.IsIdentity() {
		return v
	}
	span := m.Domain[1] - m.Domain[0]
	if span == 0 {
		return m.Range[0]
	}
	t := (v - m.Domain[0]) / span
	if m.Clamp {
		t = math.Max(0, math.Min(1, t))
	}
	return m.Range[0] + t*(m.Range[1]-m.Range[0])
}

func mappingFromDesc(desc *Descriptor) Mapping {
	if len(desc.Domain) != 2 {
		return IdentityMapping()
	}
	m := Mapping{Domain: [2]float64{desc.Domain[0], desc.Domain[1]}, Range: [2]float64{0, 1}, Clamp: true}
	if len(desc.Range) == 2 {
		m.Range = [2]float64{desc.Range[0], desc.Range[1]}
	}
	return m
}

// NumberColumn reads a numeric cell. Number is the mapped score, Raw the
// data value.
type NumberColumn struct {
	valueBase
	mapping      Mapping
	missingValue float64
	format       numberFormat
	filter       NumberFilter
}

// NewNumberColumn creates a number column reading desc.Column.
func NewNumberColumn(desc *Descriptor) *NumberColumn {
	desc = descOf(desc, KindNumber)
	c := &NumberColumn{
		mapping: mappingFromDesc(desc),
		format:  mustNumberFormat(desc.NumberFormat),
		filter:  NoNumberFilter(),
	}
	c.columnBase = newColumnBase(c, desc)
	if desc.MissingValue != nil {
		c.missingValue = sanitize(*desc.MissingValue, 0)
	}
	return c
}

// Raw returns the unmapped value of row, NaN when missing.
func (c *NumberColumn) Raw(row Row, _ int) float64 {
	v, _ := toFloat(c.raw(row))
	return v
}

// Number returns the mapped value of row, NaN when missing.
func (c *NumberColumn) Number(row Row, index int) float64 {
	return c.mapping.Apply(c.Raw(row, index))
}

// Value returns the mapped value with missing values substituted.
func (c *NumberColumn) Value(row Row, index int) any {
	return sanitize(c.Number(row, index), c.missingValue)
}

// Label formats the raw value. Missing values have an empty label.
func (c *NumberColumn) Label(row Row, index int) string {
	return c.format.format(c.Raw(row, index))
}

func (c *NumberColumn) Compare(a, b Row, ia, ib int) int {
	return cmp.Compare(
		sanitize(c.Number(a, ia), c.missingValue),
		sanitize(c.Number(b, ib), c.missingValue),
	)
}

func (c *NumberColumn) DefaultSortAscending() bool { return false }

// Mapping returns the current scale.
func (c *NumberColumn) Mapping() Mapping { return c.mapping }

// SetMapping replaces the scale.
func (c *NumberColumn) SetMapping(m Mapping) {
	if m == c.mapping {
		return
	}
	old := c.mapping
	c.mapping = m
	c.emit(Event{Kind: EventDirtyValues, Source: c.self, Old: old, New: m})
}

// MissingValue is the substitute used when a cell is missing.
func (c *NumberColumn) MissingValue() float64 { return c.missingValue }

// SetMissingValue sets the substitute. NaN resets it to 0.
func (c *NumberColumn) SetMissingValue(v float64) {
	v = sanitize(v, 0)
	if v == c.missingValue {
		return
	}
	old := c.missingValue
	c.missingValue = v
	c.emit(Event{Kind: EventDirtyValues, Source: c.self, Old: old, New: v})
}

// NumberFormat returns the label format rule.
func (c *NumberColumn) NumberFormat() string { return c.format.Spec() }

// SetNumberFormat changes the label format rule.
func (c *NumberColumn) SetNumberFormat(spec string) error {
	f, err := parseNumberFormat(spec)
	if err != nil {
		return err
	}
	if f.Spec() == c.format.Spec() {
		return nil
	}
	old := c.format.Spec()
	c.format = f
	c.emit(Event{Kind: EventMetadata, Source: c.self, Old: old, New: f.Spec()})
	return nil
}

func (c *NumberColumn) IsFiltered() bool { return c.filter.Active() }

func (c *NumberColumn) Filter(row Row, index int) bool {
	return c.filter.admit(c.Raw(row, index))
}

// NumberFilter returns the current filter.
func (c *NumberColumn) NumberFilter() NumberFilter { return c.filter }

// SetFilter replaces the filter on the raw value.
func (c *NumberColumn) SetFilter(f NumberFilter) {
	if f == c.filter {
		return
	}
	old := c.filter
	c.filter = f
	c.emit(Event{Kind: EventFilter, Source: c.self, Old: old, New: f})
}

func (c *NumberColumn) ClearFilter() { c.SetFilter(NoNumberFilter()) }

func (c *NumberColumn) Dump(toRef func(*Descriptor) string) Dump {
	d := c.dumpValue(toRef)
	d.MissingValue = ptr(c.missingValue)
	d.NumberFormat = c.format.Spec()
	d.Filtered = c.filter.Active()
	d.Filter = c.filter.dump()
	if !c.mapping.IsIdentity() {
		d.Mapping = &MappingDump{
			Domain: []float64{c.mapping.Domain[0], c.mapping.Domain[1]},
			Range:  []float64{c.mapping.Range[0], c.mapping.Range[1]},
			Clamp:  c.mapping.Clamp,
		}
	}
	return d
}

func (c *NumberColumn) restore(d Dump, _ Factory, _ Recover) error {
	c.restoreValue(d)
	if d.MissingValue != nil {
		c.missingValue = sanitize(*d.MissingValue, 0)
	}
	if d.NumberFormat != "" {
		f, err := parseNumberFormat(d.NumberFormat)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDump, err, "number column")
		}
		c.format = f
	}
	c.filter = numberFilterFromDump(d.Filter)
	c.mapping = IdentityMapping()
	if m := d.Mapping; m != nil {
		if len(m.Domain) != 2 || len(m.Range) != 2 {
			return errors.New(errors.ErrCodeInvalidDump, "mapping of number column needs two-element domain and range")
		}
		c.mapping = Mapping{
			Domain: [2]float64{m.Domain[0], m.Domain[1]},
			Range:  [2]float64{m.Range[0], m.Range[1]},
			Clamp:  m.Clamp,
		}
	}
	return nil
}
