package model

import (
	"github.com/matzehuels/lineup/pkg/errors"
)

// Category is one admissible value of a categorical column.
type Category struct {
	Name  string `json:"name" yaml:"name" toml:"name"`
	Label string `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	Color string `json:"color,omitempty" yaml:"color,omitempty" toml:"color,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the name.
func (c Category) DisplayLabel() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Name
}

// Descriptor is the caller-supplied configuration a column is created from.
// Columns keep a pointer to their descriptor; clones share it.
type Descriptor struct {
	// Type selects the column kind.
	Type Kind `json:"type" yaml:"type" toml:"type"`
	// Column is the row key value columns read.
	Column      string  `json:"column,omitempty" yaml:"column,omitempty" toml:"column,omitempty"`
	Label       string  `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Color       string  `json:"color,omitempty" yaml:"color,omitempty" toml:"color,omitempty"`
	Width       float64 `json:"width,omitempty" yaml:"width,omitempty" toml:"width,omitempty"`

	// number
	Domain       []float64 `json:"domain,omitempty" yaml:"domain,omitempty" toml:"domain,omitempty"`
	Range        []float64 `json:"range,omitempty" yaml:"range,omitempty" toml:"range,omitempty"`
	MissingValue *float64  `json:"missingValue,omitempty" yaml:"missingValue,omitempty" toml:"missingValue,omitempty"`
	NumberFormat string    `json:"numberFormat,omitempty" yaml:"numberFormat,omitempty" toml:"numberFormat,omitempty"`

	// categorical
	Categories []Category `json:"categories,omitempty" yaml:"categories,omitempty" toml:"categories,omitempty"`

	// link
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty" toml:"pattern,omitempty"`

	// date
	DateFormat string `json:"dateFormat,omitempty" yaml:"dateFormat,omitempty" toml:"dateFormat,omitempty"`
	DateParse  string `json:"dateParse,omitempty" yaml:"dateParse,omitempty" toml:"dateParse,omitempty"`

	// string
	Locale string `json:"locale,omitempty" yaml:"locale,omitempty" toml:"locale,omitempty"`

	// script
	Script string `json:"script,omitempty" yaml:"script,omitempty" toml:"script,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the column name, and
// finally the kind.
func (d *Descriptor) DisplayLabel() string {
	switch {
	case d.Label != "":
		return d.Label
	case d.Column != "":
		return d.Column
	default:
		return string(d.Type)
	}
}

// Validate checks that the descriptor can be instantiated.
func (d *Descriptor) Validate() error {
	if !d.Type.Valid() {
		return errors.New(errors.ErrCodeUnknownType, "unknown column type %q", d.Type)
	}
	if d.Type.IsValue() {
		if err := errors.ValidateColumnName(d.Column); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDescriptor, err, "%s column", d.Type)
		}
	}
	if len(d.Domain) != 0 && len(d.Domain) != 2 {
		return errors.New(errors.ErrCodeInvalidDescriptor, "domain of %s needs two bounds, got %d", d.DisplayLabel(), len(d.Domain))
	}
	if len(d.Range) != 0 && len(d.Range) != 2 {
		return errors.New(errors.ErrCodeInvalidDescriptor, "range of %s needs two bounds, got %d", d.DisplayLabel(), len(d.Range))
	}
	if err := errors.ValidateNumberFormat(d.NumberFormat); err != nil {
		return err
	}
	if d.Type == KindLink {
		if err := errors.ValidateLinkPattern(d.Pattern); err != nil {
			return err
		}
	}
	seen := make(map[string]bool, len(d.Categories))
	for _, c := range d.Categories {
		if c.Name == "" {
			return errors.New(errors.ErrCodeInvalidDescriptor, "category of %s has no name", d.DisplayLabel())
		}
		if seen[c.Name] {
			return errors.New(errors.ErrCodeInvalidDescriptor, "duplicate category %q in %s", c.Name, d.DisplayLabel())
		}
		seen[c.Name] = true
	}
	return nil
}

// descOf returns desc, or a fresh descriptor of kind when desc is nil or
// untyped. Typed descriptors are shared as given.
func descOf(desc *Descriptor, kind Kind) *Descriptor {
	if desc == nil {
		return &Descriptor{Type: kind}
	}
	if desc.Type == "" {
		cp := *desc
		cp.Type = kind
		return &cp
	}
	return desc
}
