// Package config reads ranking definitions from TOML files.
//
// A definition declares column descriptors and the layout of one ranking:
//
//	[[column]]
//	type = "number"
//	column = "score"
//	domain = [0, 100]
//
//	[[column]]
//	type = "categorical"
//	column = "tier"
//	categories = [{ name = "gold" }, { name = "silver" }]
//
//	[ranking]
//	rank = true
//
//	[[ranking.columns]]
//	type = "mean"
//	label = "Overall"
//	sort = true
//	weights = [0.7, 0.3]
//	children = [{ ref = "score" }, { ref = "age" }]
//
//	[[ranking.columns]]
//	ref = "tier"
//	filter = { categories = ["gold"] }
//
// Column specs reference descriptors by column name (ref) or name a
// composite or rank kind (type). Descriptors declared in the file take
// precedence over descriptors inferred from the data.
package config

import (
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/lineup/pkg/errors"
	"github.com/matzehuels/lineup/pkg/model"
)

// File is a parsed ranking definition.
type File struct {
	Columns []*model.Descriptor `toml:"column"`
	Ranking RankingSpec         `toml:"ranking"`
}

// RankingSpec is the layout of the ranking.
type RankingSpec struct {
	// Rank prepends a rank column.
	Rank bool `toml:"rank"`
	// Columns are the top-level columns. Empty means one column per
	// available descriptor, in declaration order.
	Columns []ColumnSpec `toml:"columns"`
}

// ColumnSpec describes one column of the ranking tree.
type ColumnSpec struct {
	Ref   string     `toml:"ref"`
	Type  model.Kind `toml:"type"`
	Label string     `toml:"label"`
	Width float64    `toml:"width"`

	Hidden    bool `toml:"hidden"`
	Collapsed bool `toml:"collapsed"`

	// Sort makes this column the criterion. Ascending defaults to the
	// column's preferred direction.
	Sort      bool  `toml:"sort"`
	Ascending *bool `toml:"ascending"`

	Weights  []float64    `toml:"weights"`
	Script   string       `toml:"script"`
	Filter   *FilterSpec  `toml:"filter"`
	Children []ColumnSpec `toml:"children"`
}

// FilterSpec is the filter of a column. Only the fields matching the
// column's kind are used.
type FilterSpec struct {
	Min           *float64 `toml:"min"`
	Max           *float64 `toml:"max"`
	Text          string   `toml:"text"`
	Regexp        bool     `toml:"regexp"`
	Categories    []string `toml:"categories"`
	After         string   `toml:"after"`
	Before        string   `toml:"before"`
	FilterMissing bool     `toml:"filter_missing"`
}

// Parse decodes a definition and validates its descriptors.
func Parse(r io.Reader) (*File, error) {
	var f File
	md, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse ranking definition")
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown key %s", keys[0])
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Load reads the definition at path.
func Load(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer file.Close()
	f, err := Parse(file)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return f, nil
}

func (f *File) validate() error {
	for i, d := range f.Columns {
		if err := d.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "column %d", i+1)
		}
	}
	sorts := 0
	var walk func(path string, specs []ColumnSpec) error
	walk = func(path string, specs []ColumnSpec) error {
		for i, s := range specs {
			p := path + "[" + itoa(i) + "]"
			if s.Ref == "" && s.Type == "" {
				return errors.New(errors.ErrCodeInvalidConfig, "%s needs ref or type", p)
			}
			if s.Type != "" && !s.Type.Valid() {
				return errors.New(errors.ErrCodeInvalidConfig, "%s has unknown type %q", p, s.Type)
			}
			if len(s.Children) > 0 && s.Type != "" && !s.Type.IsComposite() {
				return errors.New(errors.ErrCodeInvalidConfig, "%s: %s columns have no children", p, s.Type)
			}
			if len(s.Weights) > 0 && len(s.Weights) != len(s.Children) {
				return errors.New(errors.ErrCodeInvalidConfig, "%s has %d weights for %d children", p, len(s.Weights), len(s.Children))
			}
			if s.Sort {
				sorts++
			}
			if err := walk(p+".children", s.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk("ranking.columns", f.Ranking.Columns); err != nil {
		return err
	}
	if sorts > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "%d columns marked as sort criterion, at most one allowed", sorts)
	}
	return nil
}
