package provider

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"

	"github.com/matzehuels/lineup/pkg/model"
)

// DefaultSampleSize is the number of rows inspected per field when
// inferring column kinds.
const DefaultSampleSize = 1000

// maxCategories bounds the distinct values of a field inferred as
// categorical.
const maxCategories = 24

// InferOptions controls kind inference.
type InferOptions struct {
	// SampleSize limits the rows inspected. Zero means DefaultSampleSize.
	SampleSize int
	// Kinds forces the kind of named fields.
	Kinds map[string]model.Kind
}

// Infer derives a descriptor for each field from the first rows.
//
// A field whose values all parse as numbers is a number column with its
// observed extrema as domain. Fields of dates become date columns and http
// URLs link columns. Text with few distinct, repeated values is
// categorical; everything else is a string column.
func Infer(rows model.Rows, fields []string, opts InferOptions) []*model.Descriptor {
	n := opts.SampleSize
	if n <= 0 {
		n = DefaultSampleSize
	}
	sample := rows[:min(n, len(rows))]

	descs := make([]*model.Descriptor, 0, len(fields))
	for _, f := range fields {
		var values []any
		for _, r := range sample {
			if v, ok := r[f]; ok && v != nil {
				values = append(values, v)
			}
		}
		kind, forced := opts.Kinds[f]
		if !forced {
			kind = inferKind(values)
		}
		descs = append(descs, describe(f, kind, values))
	}
	return descs
}

func inferKind(values []any) model.Kind {
	if len(values) == 0 {
		return model.KindString
	}
	if all(values, isNumber) {
		return model.KindNumber
	}
	if all(values, isDate) {
		return model.KindDate
	}
	if all(values, isURL) {
		return model.KindLink
	}
	distinct := make(map[string]struct{})
	for _, v := range values {
		distinct[text(v)] = struct{}{}
	}
	if len(distinct) <= maxCategories && len(distinct)*2 <= len(values) {
		return model.KindCategorical
	}
	return model.KindString
}

func describe(field string, kind model.Kind, values []any) *model.Descriptor {
	d := &model.Descriptor{Type: kind, Column: field, Label: field}
	switch kind {
	case model.KindNumber:
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, v := range values {
			if f, ok := number(v); ok {
				lo, hi = min(lo, f), max(hi, f)
			}
		}
		if lo < hi {
			d.Domain = []float64{lo, hi}
		}
	case model.KindCategorical:
		var names []string
		for _, v := range values {
			if s := strings.TrimSpace(text(v)); s != "" && !slices.Contains(names, s) {
				names = append(names, s)
			}
		}
		slices.Sort(names)
		for _, name := range names {
			d.Categories = append(d.Categories, model.Category{Name: name})
		}
	}
	return d
}

func all(values []any, pred func(any) bool) bool {
	for _, v := range values {
		if !pred(v) {
			return false
		}
	}
	return true
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x)
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil && !math.IsNaN(f)
	}
	return 0, false
}

func isNumber(v any) bool {
	_, ok := number(v)
	return ok
}

func isDate(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	s = strings.TrimSpace(s)
	// Bare integers parse as dates too; they are numbers.
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return false
	}
	_, err := dateparse.ParseStrict(s)
	return err == nil
}

func isURL(v any) bool {
	s, ok := v.(string)
	return ok && (strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://"))
}

func text(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}
