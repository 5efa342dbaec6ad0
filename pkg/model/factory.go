package model

import (
	"github.com/matzehuels/lineup/pkg/errors"
)

// Factory instantiates columns from descriptors and translates descriptors
// to and from the references stored in dumps.
type Factory interface {
	Create(desc *Descriptor) (Column, error)
	FromDescRef(ref string) (*Descriptor, error)
	ToDescRef(desc *Descriptor) string
}

// Constructor builds a column of one kind.
type Constructor func(desc *Descriptor) (Column, error)

var constructors = map[Kind]Constructor{
	KindNumber:      func(d *Descriptor) (Column, error) { return NewNumberColumn(d), nil },
	KindString:      func(d *Descriptor) (Column, error) { return NewStringColumn(d), nil },
	KindLink:        func(d *Descriptor) (Column, error) { return NewLinkColumn(d), nil },
	KindCategorical: func(d *Descriptor) (Column, error) { return NewCategoricalColumn(d), nil },
	KindDate:        func(d *Descriptor) (Column, error) { return NewDateColumn(d), nil },
	KindRank:        func(d *Descriptor) (Column, error) { return NewRankColumn(d), nil },
	KindNested:      func(d *Descriptor) (Column, error) { return NewNestedColumn(d), nil },
	KindStack:       newCompositeNumber,
	KindMean:        newCompositeNumber,
	KindMin:         newCompositeNumber,
	KindMax:         newCompositeNumber,
	KindMedian:      newCompositeNumber,
	KindScript: func(d *Descriptor) (Column, error) {
		c, err := NewScriptColumn(d)
		if err != nil {
			return nil, err
		}
		return c, nil
	},
}

func newCompositeNumber(d *Descriptor) (Column, error) {
	c, err := NewCompositeNumberColumn(d)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Registry is the default Factory. Registered descriptors are referenced by
// their column name; composite and rank kinds without a registered
// descriptor resolve to a shared built-in descriptor named after the kind.
type Registry struct {
	descs   map[string]*Descriptor
	order   []*Descriptor
	ctors   map[Kind]Constructor
	builtin map[Kind]*Descriptor
}

// NewRegistry creates a registry holding descs.
func NewRegistry(descs ...*Descriptor) (*Registry, error) {
	r := &Registry{
		descs:   make(map[string]*Descriptor),
		ctors:   make(map[Kind]Constructor),
		builtin: make(map[Kind]*Descriptor),
	}
	for _, d := range descs {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds desc. Its reference must be unique.
func (r *Registry) Register(desc *Descriptor) error {
	if desc == nil {
		return errors.New(errors.ErrCodeInvalidDescriptor, "nil descriptor")
	}
	if err := desc.Validate(); err != nil {
		return err
	}
	ref := r.ToDescRef(desc)
	if _, dup := r.descs[ref]; dup {
		return errors.New(errors.ErrCodeInvalidDescriptor, "duplicate descriptor %q", ref)
	}
	r.descs[ref] = desc
	r.order = append(r.order, desc)
	return nil
}

// RegisterKind overrides the constructor of kind.
func (r *Registry) RegisterKind(kind Kind, ctor Constructor) {
	r.ctors[kind] = ctor
}

// Descriptors returns the registered descriptors in registration order.
func (r *Registry) Descriptors() []*Descriptor {
	out := make([]*Descriptor, len(r.order))
	copy(out, r.order)
	return out
}

// Lookup returns the registered descriptor for ref.
func (r *Registry) Lookup(ref string) (*Descriptor, bool) {
	d, ok := r.descs[ref]
	return d, ok
}

// Create validates desc and instantiates a column of its kind.
func (r *Registry) Create(desc *Descriptor) (Column, error) {
	if desc == nil {
		return nil, errors.New(errors.ErrCodeInvalidDescriptor, "nil descriptor")
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	ctor, ok := r.ctors[desc.Type]
	if !ok {
		ctor, ok = constructors[desc.Type]
	}
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownType, "no constructor for column type %q", desc.Type)
	}
	return ctor(desc)
}

// ToDescRef returns the column name of desc, or its kind when it has none.
func (r *Registry) ToDescRef(desc *Descriptor) string {
	if desc.Column != "" {
		return desc.Column
	}
	return string(desc.Type)
}

// FromDescRef resolves a reference written by ToDescRef.
func (r *Registry) FromDescRef(ref string) (*Descriptor, error) {
	if d, ok := r.descs[ref]; ok {
		return d, nil
	}
	kind := Kind(ref)
	if !kind.Valid() {
		return nil, errors.New(errors.ErrCodeNotFound, "no descriptor %q", ref)
	}
	if kind.IsValue() {
		return nil, errors.New(errors.ErrCodeNotFound, "%s columns need a registered descriptor", kind)
	}
	if d, ok := r.builtin[kind]; ok {
		return d, nil
	}
	d := &Descriptor{Type: kind}
	r.builtin[kind] = d
	return d, nil
}

// New creates a column from the descriptor registered under ref.
func (r *Registry) New(ref string) (Column, error) {
	d, err := r.FromDescRef(ref)
	if err != nil {
		return nil, err
	}
	return r.Create(d)
}
