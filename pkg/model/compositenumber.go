package model

import (
	"cmp"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/matzehuels/lineup/pkg/errors"
)

// Reduction folds the substituted child values of a composite into one
// number. weights is parallel to values. An empty input yields NaN.
type Reduction func(values, weights []float64) float64

// Built-in reductions keyed by kind. min, max and median ignore weights.
var reductions = map[Kind]Reduction{
	KindStack:  reduceStack,
	KindMean:   reduceMean,
	KindMin:    reduceMin,
	KindMax:    reduceMax,
	KindMedian: reduceMedian,
}

func reduceStack(values, weights []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	var sum float64
	for i, v := range values {
		sum += weights[i] * v
	}
	return sum
}

func reduceMean(values, weights []float64) float64 {
	var sum, total float64
	for i, v := range values {
		sum += weights[i] * v
		total += weights[i]
	}
	if total == 0 {
		return math.NaN()
	}
	return sum / total
}

func reduceMin(values, _ []float64) float64 {
	v, err := stats.Min(values)
	if err != nil {
		return math.NaN()
	}
	return v
}

func reduceMax(values, _ []float64) float64 {
	v, err := stats.Max(values)
	if err != nil {
		return math.NaN()
	}
	return v
}

func reduceMedian(values, _ []float64) float64 {
	v, err := stats.Median(values)
	if err != nil {
		return math.NaN()
	}
	return v
}

// CompositeNumberColumn combines the numeric values of its visible children
// with a weighted reduction. Children must be aggregatable number columns.
type CompositeNumberColumn struct {
	compositeBase

	weights      map[Column]float64
	missingValue float64
	format       numberFormat
	filter       NumberFilter
	reduce       Reduction
}

// NewCompositeNumberColumn creates an empty composite. desc.Type selects the
// reduction and must be one of stack, mean, min, max or median.
func NewCompositeNumberColumn(desc *Descriptor) (*CompositeNumberColumn, error) {
	desc = descOf(desc, KindStack)
	reduce, ok := reductions[desc.Type]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownType, "%q is not a numeric reduction", desc.Type)
	}
	c := &CompositeNumberColumn{}
	c.init(c, desc, reduce)
	return c, nil
}

func (c *CompositeNumberColumn) init(self Column, desc *Descriptor, reduce Reduction) {
	c.compositeBase = newCompositeBase(self, desc)
	c.weights = make(map[Column]float64)
	c.format = mustNumberFormat(desc.NumberFormat)
	c.filter = NoNumberFilter()
	c.reduce = reduce
	if desc.MissingValue != nil {
		c.missingValue = sanitize(*desc.MissingValue, 0)
	}
	c.accept = func(col Column) error {
		if _, ok := col.(NumberColumnLike); !ok || !col.Kind().Capabilities().Has(Aggregatable) {
			return errors.New(errors.ErrCodeIncompatibleChild, "%s column %s cannot be aggregated by %s", col.Kind(), col.ID(), c.id)
		}
		return nil
	}
	c.unlinked = func(col Column) { delete(c.weights, col) }
}

// Number reduces the visible children. A missing child value contributes
// the substitute. The result is NaN when nothing can be reduced.
func (c *CompositeNumberColumn) Number(row Row, index int) float64 {
	values, weights := c.terms(row, index)
	return c.reduce(values, weights)
}

func (c *CompositeNumberColumn) terms(row Row, index int) (values, weights []float64) {
	vis := c.visibleChildren()
	values = make([]float64, len(vis))
	weights = make([]float64, len(vis))
	for i, ch := range vis {
		values[i] = sanitize(ch.(NumberColumnLike).Number(row, index), c.missingValue)
		weights[i] = c.Weight(ch)
	}
	return values, weights
}

// Value returns the reduction, or the substitute when it is NaN.
func (c *CompositeNumberColumn) Value(row Row, index int) any {
	return sanitize(c.self.(NumberColumnLike).Number(row, index), c.missingValue)
}

// Label formats the value with the number format. Non-numeric values are
// rendered as is.
func (c *CompositeNumberColumn) Label(row Row, index int) string {
	return labelOf(c.self.Value(row, index), c.format)
}

func labelOf(v any, f numberFormat) string {
	if x, ok := v.(float64); ok {
		return f.format(x)
	}
	return fmt.Sprint(v)
}

func (c *CompositeNumberColumn) Compare(a, b Row, ia, ib int) int {
	va := sanitize(c.self.(NumberColumnLike).Number(a, ia), c.missingValue)
	vb := sanitize(c.self.(NumberColumnLike).Number(b, ib), c.missingValue)
	return cmp.Compare(va, vb)
}

func (c *CompositeNumberColumn) DefaultSortAscending() bool { return false }

// Weight returns the weight of child; children default to 1.
func (c *CompositeNumberColumn) Weight(child Column) float64 {
	if w, ok := c.weights[child]; ok {
		return w
	}
	return 1
}

// Weights returns the weights of all children in child order.
func (c *CompositeNumberColumn) Weights() []float64 {
	out := make([]float64, len(c.children))
	for i, ch := range c.children {
		out[i] = c.Weight(ch)
	}
	return out
}

// SetWeight sets the weight of child. Negative weights are clamped to 0.
func (c *CompositeNumberColumn) SetWeight(child Column, w float64) error {
	if !c.hasChild(child) {
		return errors.New(errors.ErrCodeNotAChild, "%s is not a child of %s", idOf(child), c.id)
	}
	w = clampWeight(w)
	old := c.Weight(child)
	if old == w {
		return nil
	}
	c.weights[child] = w
	c.emit(Event{Kind: EventDirtyValues, Source: c.self, Old: old, New: w})
	return nil
}

// SetWeights assigns weights in child order. Missing trailing entries keep
// their current weight and extra entries are ignored.
func (c *CompositeNumberColumn) SetWeights(ws []float64) {
	old := c.Weights()
	changed := false
	for i, ch := range c.children {
		if i >= len(ws) {
			break
		}
		w := clampWeight(ws[i])
		if c.Weight(ch) != w {
			c.weights[ch] = w
			changed = true
		}
	}
	if changed {
		c.emit(Event{Kind: EventDirtyValues, Source: c.self, Old: old, New: c.Weights()})
	}
}

func clampWeight(w float64) float64 {
	if math.IsNaN(w) || w < 0 {
		return 0
	}
	return w
}

func (c *CompositeNumberColumn) hasChild(col Column) bool {
	for _, ch := range c.children {
		if ch == col {
			return true
		}
	}
	return false
}

// MissingValue is the substitute for missing child values and NaN results.
func (c *CompositeNumberColumn) MissingValue() float64 { return c.missingValue }

// SetMissingValue sets the substitute. NaN resets it to 0.
func (c *CompositeNumberColumn) SetMissingValue(v float64) {
	v = sanitize(v, 0)
	if v == c.missingValue {
		return
	}
	old := c.missingValue
	c.missingValue = v
	c.emit(Event{Kind: EventDirtyValues, Source: c.self, Old: old, New: v})
}

// NumberFormat returns the label format rule.
func (c *CompositeNumberColumn) NumberFormat() string { return c.format.Spec() }

// SetNumberFormat changes the label format rule.
func (c *CompositeNumberColumn) SetNumberFormat(spec string) error {
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

func (c *CompositeNumberColumn) IsFiltered() bool { return c.filter.Active() }

func (c *CompositeNumberColumn) Filter(row Row, index int) bool {
	return c.filter.admit(c.self.(NumberColumnLike).Number(row, index))
}

// NumberFilter returns the current filter.
func (c *CompositeNumberColumn) NumberFilter() NumberFilter { return c.filter }

// SetFilter replaces the filter on the reduced value.
func (c *CompositeNumberColumn) SetFilter(f NumberFilter) {
	if f == c.filter {
		return
	}
	old := c.filter
	c.filter = f
	c.emit(Event{Kind: EventFilter, Source: c.self, Old: old, New: f})
}

func (c *CompositeNumberColumn) ClearFilter() { c.SetFilter(NoNumberFilter()) }

func (c *CompositeNumberColumn) Dump(toRef func(*Descriptor) string) Dump {
	d := c.dumpBase(toRef)
	c.dumpExtras(&d)
	c.dumpChildren(&d, toRef)
	d.Weights = c.Weights()
	return d
}

func (c *CompositeNumberColumn) dumpExtras(d *Dump) {
	d.MissingValue = ptr(c.missingValue)
	d.NumberFormat = c.format.Spec()
	d.Filtered = c.filter.Active()
	d.Filter = c.filter.dump()
}

func (c *CompositeNumberColumn) restore(d Dump, f Factory, rec Recover) error {
	if err := c.restoreExtras(d); err != nil {
		return err
	}
	if err := c.restoreChildren(d, f, rec); err != nil {
		return err
	}
	c.restoreWeights(d)
	return nil
}

func (c *CompositeNumberColumn) restoreExtras(d Dump) error {
	c.restoreBase(d)
	if d.MissingValue != nil {
		c.missingValue = sanitize(*d.MissingValue, 0)
	}
	if d.NumberFormat != "" {
		nf, err := parseNumberFormat(d.NumberFormat)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDump, err, "%s column", d.Type)
		}
		c.format = nf
	}
	c.filter = numberFilterFromDump(d.Filter)
	return nil
}

func (c *CompositeNumberColumn) restoreWeights(d Dump) {
	for i, ch := range c.children {
		if i < len(d.Weights) {
			c.weights[ch] = clampWeight(d.Weights[i])
		}
	}
}

// sanitize replaces NaN and infinities with substitute.
func sanitize(v, substitute float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return substitute
	}
	return v
}
