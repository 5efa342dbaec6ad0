package model

import (
	"cmp"

	"github.com/matzehuels/lineup/pkg/errors"
)

// Dump is the persisted record of a column. Field names are stable.
type Dump struct {
	ID           string       `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty" bson:"id,omitempty"`
	Desc         string       `json:"desc" yaml:"desc" toml:"desc" bson:"desc"`
	Type         Kind         `json:"type" yaml:"type" toml:"type" bson:"type"`
	Label        string       `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty" bson:"label,omitempty"`
	Width        float64      `json:"width" yaml:"width" toml:"width" bson:"width"`
	Hidden       bool         `json:"hidden,omitempty" yaml:"hidden,omitempty" toml:"hidden,omitempty" bson:"hidden,omitempty"`
	Compressed   bool         `json:"compressed" yaml:"compressed" toml:"compressed" bson:"compressed"`
	Collapsed    bool         `json:"collapsed" yaml:"collapsed" toml:"collapsed" bson:"collapsed"`
	Filtered     bool         `json:"filtered" yaml:"filtered" toml:"filtered" bson:"filtered"`
	Filter       *FilterDump  `json:"filter,omitempty" yaml:"filter,omitempty" toml:"filter,omitempty" bson:"filter,omitempty"`
	MissingValue *float64     `json:"missingValue,omitempty" yaml:"missingValue,omitempty" toml:"missingValue,omitempty" bson:"missingValue,omitempty"`
	NumberFormat string       `json:"numberFormat,omitempty" yaml:"numberFormat,omitempty" toml:"numberFormat,omitempty" bson:"numberFormat,omitempty"`
	Mapping      *MappingDump `json:"mapping,omitempty" yaml:"mapping,omitempty" toml:"mapping,omitempty" bson:"mapping,omitempty"`
	DateFormat   string       `json:"dateFormat,omitempty" yaml:"dateFormat,omitempty" toml:"dateFormat,omitempty" bson:"dateFormat,omitempty"`
	Link         string       `json:"link,omitempty" yaml:"link,omitempty" toml:"link,omitempty" bson:"link,omitempty"`
	Script       string       `json:"script,omitempty" yaml:"script,omitempty" toml:"script,omitempty" bson:"script,omitempty"`
	Loaded       *bool        `json:"loaded,omitempty" yaml:"loaded,omitempty" toml:"loaded,omitempty" bson:"loaded,omitempty"`
	Weights      []float64    `json:"weights,omitempty" yaml:"weights,omitempty" toml:"weights,omitempty" bson:"weights,omitempty"`
	Children     []Dump       `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty" bson:"children,omitempty"`
}

// FilterDump is the persisted filter of any filterable kind. Only the fields
// of the column's kind are set.
type FilterDump struct {
	Min           *float64 `json:"min,omitempty" yaml:"min,omitempty" toml:"min,omitempty" bson:"min,omitempty"`
	Max           *float64 `json:"max,omitempty" yaml:"max,omitempty" toml:"max,omitempty" bson:"max,omitempty"`
	FilterMissing bool     `json:"filterMissing,omitempty" yaml:"filterMissing,omitempty" toml:"filterMissing,omitempty" bson:"filterMissing,omitempty"`
	Text          string   `json:"text,omitempty" yaml:"text,omitempty" toml:"text,omitempty" bson:"text,omitempty"`
	Regexp        bool     `json:"regexp,omitempty" yaml:"regexp,omitempty" toml:"regexp,omitempty" bson:"regexp,omitempty"`
	Categories    []string `json:"categories,omitempty" yaml:"categories,omitempty" toml:"categories,omitempty" bson:"categories,omitempty"`
	NoCategories  bool     `json:"noCategories,omitempty" yaml:"noCategories,omitempty" toml:"noCategories,omitempty" bson:"noCategories,omitempty"`
	After         string   `json:"after,omitempty" yaml:"after,omitempty" toml:"after,omitempty" bson:"after,omitempty"`
	Before        string   `json:"before,omitempty" yaml:"before,omitempty" toml:"before,omitempty" bson:"before,omitempty"`
}

// MappingDump is the persisted linear scale of a number column.
type MappingDump struct {
	Domain []float64 `json:"domain" yaml:"domain" toml:"domain" bson:"domain"`
	Range  []float64 `json:"range" yaml:"range" toml:"range" bson:"range"`
	Clamp  bool      `json:"clamp,omitempty" yaml:"clamp,omitempty" toml:"clamp,omitempty" bson:"clamp,omitempty"`
}

// Recover is consulted when the record of a subtree cannot be restored. It
// may return a replacement column, or an error to abort the restore.
type Recover func(d Dump, err error) (Column, error)

// PlaceholderRecover replaces unrestorable subtrees with an unloaded number
// column titled after the failed record. Its values are always missing.
func PlaceholderRecover(d Dump, _ error) (Column, error) {
	ref := cmp.Or(d.Desc, string(d.Type), "unknown")
	c := NewNumberColumn(&Descriptor{Type: KindNumber, Column: ref, Label: "missing " + ref})
	c.unloaded = true
	if d.Width > 0 {
		c.width = clampWidth(d.Width)
	}
	return c, nil
}

// Restore rebuilds a column from its record. Descriptor references are
// resolved through f. Columns get fresh identifiers.
func Restore(d Dump, f Factory) (Column, error) {
	return restoreColumn(d, f, nil)
}

// RestoreWith is Restore with a recovery policy for malformed subtrees. A
// nil rec aborts on the first error.
func RestoreWith(d Dump, f Factory, rec Recover) (Column, error) {
	return restoreColumn(d, f, rec)
}

func restoreColumn(d Dump, f Factory, rec Recover) (Column, error) {
	col, err := restoreOne(d, f, rec)
	if err != nil && rec != nil {
		return rec(d, err)
	}
	return col, err
}

func restoreOne(d Dump, f Factory, rec Recover) (Column, error) {
	if d.Type != "" && !d.Type.Valid() {
		return nil, errors.New(errors.ErrCodeUnknownType, "unknown column type %q in record %s", d.Type, d.ID)
	}
	ref := cmp.Or(d.Desc, string(d.Type))
	if ref == "" {
		return nil, errors.New(errors.ErrCodeInvalidDump, "record %s has neither desc nor type", d.ID)
	}
	desc, err := f.FromDescRef(ref)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDump, err, "resolve descriptor of record %s", d.ID)
	}
	if d.Type != "" && d.Type != desc.Type {
		return nil, errors.New(errors.ErrCodeInvalidDump, "record %s has type %s but descriptor %q is %s", d.ID, d.Type, ref, desc.Type)
	}
	col, err := f.Create(desc)
	if err != nil {
		return nil, errors.Wrap(errors.GetCodeOr(err, errors.ErrCodeInvalidDump), err, "create %s column", desc.Type)
	}
	if err := col.restore(d, f, rec); err != nil {
		return nil, err
	}
	return col, nil
}

// Clone returns an independent copy of col sharing its descriptors.
func Clone(col Column, f Factory) (Column, error) {
	return Restore(col.Dump(f.ToDescRef), f)
}

// SortDump is the persisted sort criterion of a ranking.
type SortDump struct {
	Column string `json:"column" yaml:"column" toml:"column" bson:"column"`
	Asc    bool   `json:"asc" yaml:"asc" toml:"asc" bson:"asc"`
}

// RankingDump is the persisted record of a ranking.
type RankingDump struct {
	ID            string    `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty" bson:"id,omitempty"`
	Columns       []Dump    `json:"columns" yaml:"columns" toml:"columns" bson:"columns"`
	SortCriterion *SortDump `json:"sortCriterion,omitempty" yaml:"sortCriterion,omitempty" toml:"sortCriterion,omitempty" bson:"sortCriterion,omitempty"`
}

// Dump returns the persisted record of the ranking.
func (r *Ranking) Dump(toRef func(*Descriptor) string) RankingDump {
	d := RankingDump{ID: r.id, Columns: make([]Dump, 0, len(r.columns))}
	for _, c := range r.columns {
		d.Columns = append(d.Columns, c.Dump(toRef))
	}
	if r.sort.Column != nil {
		d.SortCriterion = &SortDump{Column: r.sort.Column.ID(), Asc: r.sort.Ascending}
	}
	return d
}

// RestoreRanking rebuilds a ranking over rows from its record. The sort
// criterion is remapped to the restored column. rec may be nil.
func RestoreRanking(d RankingDump, rows RowSource, f Factory, rec Recover, opts ...RankingOption) (*Ranking, error) {
	r := NewRanking(rows, append([]RankingOption{WithID(d.ID)}, opts...)...)
	ids := make(map[string]Column)
	for i, cd := range d.Columns {
		col, err := restoreColumn(cd, f, rec)
		if err != nil {
			return nil, errors.Wrap(errors.GetCodeOr(err, errors.ErrCodeInvalidDump), err, "column %d of ranking", i)
		}
		mapIDs(cd, col, ids)
		if err := r.Push(col); err != nil {
			return nil, err
		}
	}
	if s := d.SortCriterion; s != nil && s.Column != "" {
		col, ok := ids[s.Column]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidDump, "sort criterion references unknown column %s", s.Column)
		}
		if err := r.SortBy(col, s.Asc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDump, err, "restore sort criterion")
		}
	}
	return r, nil
}

// mapIDs records which restored column replaced each dumped identifier.
func mapIDs(d Dump, col Column, ids map[string]Column) {
	if d.ID != "" {
		ids[d.ID] = col
	}
	g, ok := col.(composite)
	if !ok {
		return
	}
	children := g.group().children
	if len(children) != len(d.Children) {
		return
	}
	for i, cd := range d.Children {
		mapIDs(cd, children[i], ids)
	}
}
