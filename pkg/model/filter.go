package model

import (
	"math"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/lineup/pkg/errors"
)

// NumberFilter admits rows whose value lies in [Min, Max]. Missing values
// pass unless FilterMissing is set.
type NumberFilter struct {
	Min           float64
	Max           float64
	FilterMissing bool
}

// NoNumberFilter admits every row.
func NoNumberFilter() NumberFilter {
	return NumberFilter{Min: math.Inf(-1), Max: math.Inf(1)}
}

// Active reports whether the filter excludes anything.
func (f NumberFilter) Active() bool {
	return !math.IsInf(f.Min, -1) || !math.IsInf(f.Max, 1) || f.FilterMissing
}

func (f NumberFilter) admit(v float64) bool {
	if math.IsNaN(v) {
		return !f.FilterMissing
	}
	return v >= f.Min && v <= f.Max
}

func (f NumberFilter) dump() *FilterDump {
	if !f.Active() {
		return nil
	}
	d := &FilterDump{FilterMissing: f.FilterMissing}
	if !math.IsInf(f.Min, -1) {
		d.Min = ptr(f.Min)
	}
	if !math.IsInf(f.Max, 1) {
		d.Max = ptr(f.Max)
	}
	return d
}

func numberFilterFromDump(d *FilterDump) NumberFilter {
	f := NoNumberFilter()
	if d == nil {
		return f
	}
	if d.Min != nil {
		f.Min = *d.Min
	}
	if d.Max != nil {
		f.Max = *d.Max
	}
	f.FilterMissing = d.FilterMissing
	return f
}

// StringFilter admits rows whose text contains Text (case-insensitive) or
// matches it as a regular expression when Regexp is set.
type StringFilter struct {
	Text          string
	Regexp        bool
	FilterMissing bool

	re *regexp.Regexp
}

// NewStringFilter builds a filter, compiling text when regex is set.
func NewStringFilter(text string, regex, filterMissing bool) (StringFilter, error) {
	f := StringFilter{Text: text, Regexp: regex, FilterMissing: filterMissing}
	if regex && text != "" {
		re, err := regexp.Compile(text)
		if err != nil {
			return StringFilter{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid filter expression %q", text)
		}
		f.re = re
	}
	return f, nil
}

// Active reports whether the filter excludes anything.
func (f StringFilter) Active() bool { return f.Text != "" || f.FilterMissing }

func (f StringFilter) admit(s string) bool {
	if s == "" {
		return !f.FilterMissing
	}
	if f.Text == "" {
		return true
	}
	if f.re != nil {
		return f.re.MatchString(s)
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(f.Text))
}

func (f StringFilter) dump() *FilterDump {
	if !f.Active() {
		return nil
	}
	return &FilterDump{Text: f.Text, Regexp: f.Regexp, FilterMissing: f.FilterMissing}
}

// CategoricalFilter admits rows whose category is in Allowed. A nil Allowed
// admits every category.
type CategoricalFilter struct {
	Allowed       []string
	FilterMissing bool
}

// Active reports whether the filter excludes anything.
func (f CategoricalFilter) Active() bool { return f.Allowed != nil || f.FilterMissing }

func (f CategoricalFilter) admit(name string) bool {
	if name == "" {
		return !f.FilterMissing
	}
	return f.Allowed == nil || slices.Contains(f.Allowed, name)
}

func (f CategoricalFilter) dump() *FilterDump {
	if !f.Active() {
		return nil
	}
	d := &FilterDump{FilterMissing: f.FilterMissing}
	if f.Allowed != nil {
		d.Categories = slices.Clone(f.Allowed)
		d.NoCategories = len(f.Allowed) == 0
	}
	return d
}

// DateFilter admits rows dated within [After, Before]. Zero bounds are open.
type DateFilter struct {
	After         time.Time
	Before        time.Time
	FilterMissing bool
}

// Active reports whether the filter excludes anything.
func (f DateFilter) Active() bool {
	return !f.After.IsZero() || !f.Before.IsZero() || f.FilterMissing
}

func (f DateFilter) admit(t time.Time, ok bool) bool {
	if !ok {
		return !f.FilterMissing
	}
	if !f.After.IsZero() && t.Before(f.After) {
		return false
	}
	if !f.Before.IsZero() && t.After(f.Before) {
		return false
	}
	return true
}

func (f DateFilter) dump() *FilterDump {
	if !f.Active() {
		return nil
	}
	d := &FilterDump{FilterMissing: f.FilterMissing}
	if !f.After.IsZero() {
		d.After = f.After.Format(time.RFC3339Nano)
	}
	if !f.Before.IsZero() {
		d.Before = f.Before.Format(time.RFC3339Nano)
	}
	return d
}

func ptr[T any](v T) *T { return &v }
