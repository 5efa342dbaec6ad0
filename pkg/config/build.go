package config

import (
	"strconv"
	"time"

	"github.com/araddon/dateparse"

	"github.com/matzehuels/lineup/pkg/errors"
	"github.com/matzehuels/lineup/pkg/model"
)

func itoa(i int) string { return strconv.Itoa(i) }

// Registry returns a factory holding the file's descriptors followed by
// those of base whose column is not declared in the file.
func (f *File) Registry(base ...*model.Descriptor) (*model.Registry, error) {
	reg, err := model.NewRegistry(f.Columns...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "register columns")
	}
	for _, d := range base {
		if _, ok := reg.Lookup(reg.ToDescRef(d)); ok {
			continue
		}
		if err := reg.Register(d); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "register %s", d.DisplayLabel())
		}
	}
	return reg, nil
}

// Build creates the ranking over rows. Descriptor references resolve
// through reg.
func (f *File) Build(reg *model.Registry, rows model.RowSource, opts ...model.RankingOption) (*model.Ranking, error) {
	r := model.NewRanking(rows, opts...)
	if f.Ranking.Rank {
		if err := r.Push(model.NewRankColumn(nil)); err != nil {
			return nil, err
		}
	}

	specs := f.Ranking.Columns
	if len(specs) == 0 {
		for _, d := range reg.Descriptors() {
			specs = append(specs, ColumnSpec{Ref: reg.ToDescRef(d)})
		}
	}

	var sort *sortChoice
	for i, s := range specs {
		col, err := build(reg, s, &sort)
		if err != nil {
			return nil, errors.Wrap(errors.GetCodeOr(err, errors.ErrCodeInvalidConfig), err, "ranking column %d", i+1)
		}
		if err := r.Push(col); err != nil {
			return nil, err
		}
	}
	if sort != nil {
		asc := sort.col.DefaultSortAscending()
		if sort.ascending != nil {
			asc = *sort.ascending
		}
		if err := r.SortBy(sort.col, asc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "sort by %s", sort.col.Title())
		}
	}
	return r, nil
}

type sortChoice struct {
	col       model.Column
	ascending *bool
}

// group is implemented by composite columns.
type group interface {
	model.Column
	Push(col model.Column) error
	SetCollapsed(collapsed bool)
}

type weighted interface {
	SetWeights(ws []float64)
}

type (
	numberFiltered      interface{ SetFilter(model.NumberFilter) }
	stringFiltered      interface{ SetFilter(model.StringFilter) }
	categoricalFiltered interface{ SetFilter(model.CategoricalFilter) }
	dateFiltered        interface{ SetFilter(model.DateFilter) }
)

func build(reg *model.Registry, s ColumnSpec, sort **sortChoice) (model.Column, error) {
	col, err := create(reg, s)
	if err != nil {
		return nil, err
	}

	if len(s.Children) > 0 {
		g, ok := col.(group)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "%s columns have no children", col.Kind())
		}
		for i, cs := range s.Children {
			child, err := build(reg, cs, sort)
			if err != nil {
				return nil, errors.Wrap(errors.GetCodeOr(err, errors.ErrCodeInvalidConfig), err, "child %d", i+1)
			}
			if err := g.Push(child); err != nil {
				return nil, err
			}
		}
	}
	if len(s.Weights) > 0 {
		w, ok := col.(weighted)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "%s columns have no weights", col.Kind())
		}
		w.SetWeights(s.Weights)
	}

	if s.Label != "" {
		col.SetTitle(s.Label)
	}
	if s.Width > 0 {
		col.SetWidth(s.Width)
	}
	if s.Collapsed {
		if g, ok := col.(group); ok {
			g.SetCollapsed(true)
		}
	}
	if s.Hidden {
		col.SetVisible(false)
	}
	if s.Filter != nil {
		if err := applyFilter(col, s.Filter); err != nil {
			return nil, err
		}
	}
	if s.Sort {
		*sort = &sortChoice{col: col, ascending: s.Ascending}
	}
	return col, nil
}

func create(reg *model.Registry, s ColumnSpec) (model.Column, error) {
	if s.Ref != "" {
		desc, err := reg.FromDescRef(s.Ref)
		if err != nil {
			return nil, err
		}
		if s.Type != "" && s.Type != desc.Type {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "%s is a %s column, not %s", s.Ref, desc.Type, s.Type)
		}
		return reg.Create(desc)
	}
	if s.Type == model.KindScript && s.Script != "" {
		return reg.Create(&model.Descriptor{Type: model.KindScript, Script: s.Script})
	}
	return reg.New(string(s.Type))
}

func applyFilter(col model.Column, fs *FilterSpec) error {
	switch c := col.(type) {
	case numberFiltered:
		c.SetFilter(numberFilter(fs))
	case stringFiltered:
		f, err := model.NewStringFilter(fs.Text, fs.Regexp, fs.FilterMissing)
		if err != nil {
			return err
		}
		c.SetFilter(f)
	case categoricalFiltered:
		c.SetFilter(model.CategoricalFilter{Allowed: fs.Categories, FilterMissing: fs.FilterMissing})
	case dateFiltered:
		f := model.DateFilter{FilterMissing: fs.FilterMissing}
		var err error
		if f.After, err = parseBound(fs.After); err != nil {
			return err
		}
		if f.Before, err = parseBound(fs.Before); err != nil {
			return err
		}
		c.SetFilter(f)
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "%s columns cannot be filtered", col.Kind())
	}
	return nil
}

func numberFilter(fs *FilterSpec) model.NumberFilter {
	f := model.NoNumberFilter()
	if fs.Min != nil {
		f.Min = *fs.Min
	}
	if fs.Max != nil {
		f.Max = *fs.Max
	}
	f.FilterMissing = fs.FilterMissing
	return f
}

func parseBound(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "date bound %q", s)
	}
	return t, nil
}
