package model

import (
	"math"
	"strconv"
	"sync/atomic"

	"github.com/matzehuels/lineup/pkg/errors"
)

const (
	// DefaultWidth is the width of a column whose descriptor sets none.
	DefaultWidth = 100.0

	// MinWidth is the smallest width a column can be set to.
	MinWidth = 10.0

	// CompressedWidth is the width of a compressed column.
	CompressedWidth = 16.0
)

// Column is a node of the column tree.
//
// The interface is sealed: columns are created by the constructors of this
// package or by a [Factory].
type Column interface {
	// ID is the unique identifier assigned at creation.
	ID() string
	// Kind is the discriminant of the column type.
	Kind() Kind
	// Desc is the descriptor the column was created from. Clones share it.
	Desc() *Descriptor

	Title() string
	SetTitle(title string)
	Description() string
	SetDescription(description string)
	Color() string
	SetColor(color string)

	// Width is the layout width; composites derive it from their children.
	Width() float64
	// SetWidth sets the width, enforcing MinWidth.
	SetWidth(w float64)
	Visible() bool
	SetVisible(visible bool)
	Compressed() bool
	SetCompressed(compressed bool)

	// Parent is the composite or ranking holding this column, or nil.
	Parent() Parent
	// Ranking is the ranking this column belongs to, or nil.
	Ranking() *Ranking

	// Value returns the typed value of row. Missing values are resolved to
	// the column's substitute, never surfaced as NaN.
	Value(row Row, index int) any
	// Label returns the display text of row.
	Label(row Row, index int) string
	// Compare orders two rows ascending. It is a total order.
	Compare(a, b Row, indexA, indexB int) int
	// DefaultSortAscending is the direction used when sorting starts.
	DefaultSortAscending() bool

	// IsFiltered reports whether the column has an active filter.
	IsFiltered() bool
	// Filter reports whether row passes the column's filter.
	Filter(row Row, index int) bool
	// ClearFilter removes the filter.
	ClearFilter()

	// SortByMe makes this column the criterion of its ranking.
	SortByMe(ascending bool) error
	// ToggleMySorting starts sorting by this column or flips the direction.
	ToggleMySorting() error
	// RemoveMe detaches the column from its parent.
	RemoveMe() error

	// On subscribes to events of this column (and, for composites, their
	// descendants). The returned function unsubscribes.
	On(kind EventKind, fn Listener) (off func())

	// Dump returns the persisted record of the column.
	Dump(toRef func(*Descriptor) string) Dump

	restore(d Dump, f Factory, rec Recover) error
	base() *columnBase
}

// Parent is the owner of a column: a composite column or a ranking.
type Parent interface {
	// Remove detaches col; it fails with NOT_A_CHILD for non-members.
	Remove(col Column) error
	childChanged(child Column, ev Event)
	owner() Column
}

var idCounter atomic.Uint64

// nextID returns a fresh column identifier. Identifiers are never reused.
func nextID() string {
	return "col" + strconv.FormatUint(idCounter.Add(1), 10)
}

// columnBase holds the state shared by every column kind.
type columnBase struct {
	id          string
	desc        *Descriptor
	self        Column
	parent      Parent
	title       string
	description string
	color       string
	width       float64
	hidden      bool
	compressed  bool
	events      emitter
}

func newColumnBase(self Column, desc *Descriptor) columnBase {
	if desc == nil {
		desc = &Descriptor{}
	}
	width := desc.Width
	if width <= 0 {
		width = DefaultWidth
	}
	return columnBase{
		id:          nextID(),
		desc:        desc,
		self:        self,
		title:       desc.DisplayLabel(),
		description: desc.Description,
		color:       desc.Color,
		width:       math.Max(width, MinWidth),
	}
}

func (c *columnBase) base() *columnBase { return c }

func (c *columnBase) ID() string        { return c.id }
func (c *columnBase) Kind() Kind        { return c.desc.Type }
func (c *columnBase) Desc() *Descriptor { return c.desc }

func (c *columnBase) Title() string       { return c.title }
func (c *columnBase) Description() string { return c.description }
func (c *columnBase) Color() string       { return c.color }

func (c *columnBase) SetTitle(title string) {
	if title == c.title {
		return
	}
	old := c.title
	c.title = title
	c.emit(Event{Kind: EventMetadata, Source: c.self, Old: old, New: title})
}

func (c *columnBase) SetDescription(description string) {
	if description == c.description {
		return
	}
	old := c.description
	c.description = description
	c.emit(Event{Kind: EventMetadata, Source: c.self, Old: old, New: description})
}

func (c *columnBase) SetColor(color string) {
	if color == c.color {
		return
	}
	old := c.color
	c.color = color
	c.emit(Event{Kind: EventMetadata, Source: c.self, Old: old, New: color})
}

func (c *columnBase) Width() float64 {
	if c.compressed {
		return CompressedWidth
	}
	return c.width
}

func (c *columnBase) SetWidth(w float64) {
	w = clampWidth(w)
	if w == c.width {
		return
	}
	old := c.width
	c.width = w
	c.emit(Event{Kind: EventWidth, Source: c.self, Old: old, New: w})
}

func clampWidth(w float64) float64 {
	if math.IsNaN(w) || w < MinWidth {
		return MinWidth
	}
	return w
}

func (c *columnBase) Visible() bool { return !c.hidden }

// SetVisible shows or hides the column. Composites only reduce visible
// children, so visibility is a value change.
func (c *columnBase) SetVisible(visible bool) {
	if visible == !c.hidden {
		return
	}
	c.hidden = !visible
	c.emit(Event{Kind: EventDirtyValues, Source: c.self, Old: !visible, New: visible})
}

func (c *columnBase) Compressed() bool { return c.compressed }

func (c *columnBase) SetCompressed(compressed bool) {
	if compressed == c.compressed {
		return
	}
	c.compressed = compressed
	c.emit(Event{Kind: EventWidth, Source: c.self, Old: !compressed, New: compressed})
}

func (c *columnBase) Parent() Parent { return c.parent }

func (c *columnBase) Ranking() *Ranking {
	for p := c.parent; p != nil; {
		if r, ok := p.(*Ranking); ok {
			return r
		}
		col := p.owner()
		if col == nil {
			return nil
		}
		p = col.Parent()
	}
	return nil
}

func (c *columnBase) IsFiltered() bool         { return false }
func (c *columnBase) Filter(_ Row, _ int) bool { return true }
func (c *columnBase) ClearFilter()             {}
func (c *columnBase) DefaultSortAscending() bool {
	return true
}

func (c *columnBase) SortByMe(ascending bool) error {
	r := c.Ranking()
	if r == nil {
		return errors.New(errors.ErrCodeNotInRanking, "column %s is not part of a ranking", c.id)
	}
	return r.SortBy(c.self, ascending)
}

func (c *columnBase) ToggleMySorting() error {
	r := c.Ranking()
	if r == nil {
		return errors.New(errors.ErrCodeNotInRanking, "column %s is not part of a ranking", c.id)
	}
	return r.ToggleSorting(c.self)
}

func (c *columnBase) RemoveMe() error {
	if c.parent == nil {
		return errors.New(errors.ErrCodeNotAChild, "column %s has no parent", c.id)
	}
	return c.parent.Remove(c.self)
}

func (c *columnBase) On(kind EventKind, fn Listener) (off func()) {
	return c.events.on(kind, fn)
}

// emit notifies this column's listeners and propagates to the parent.
func (c *columnBase) emit(ev Event) {
	c.events.emit(ev)
	if c.parent != nil {
		c.parent.childChanged(c.self, ev)
	}
}

func (c *columnBase) dumpBase(toRef func(*Descriptor) string) Dump {
	d := Dump{
		ID:         c.id,
		Type:       c.desc.Type,
		Desc:       toRef(c.desc),
		Width:      c.width,
		Hidden:     c.hidden,
		Compressed: c.compressed,
	}
	if c.title != c.desc.DisplayLabel() {
		d.Label = c.title
	}
	return d
}

func (c *columnBase) restoreBase(d Dump) {
	if d.Label != "" {
		c.title = d.Label
	}
	if d.Width > 0 {
		c.width = clampWidth(d.Width)
	}
	c.hidden = d.Hidden
	c.compressed = d.Compressed
}

func (c *columnBase) restore(d Dump, _ Factory, _ Recover) error {
	c.restoreBase(d)
	return nil
}

// NumberColumnLike is implemented by columns with a numeric value that a
// composite can reduce.
type NumberColumnLike interface {
	Column
	// Number returns the numeric value of row, NaN when missing.
	Number(row Row, index int) float64
}

// ancestorOf reports whether a is col itself or one of col's ancestors.
func ancestorOf(a Column, col Column) bool {
	for cur := col; cur != nil; {
		if cur == a {
			return true
		}
		p := cur.Parent()
		if p == nil {
			return false
		}
		cur = p.owner()
	}
	return false
}

// detach unlinks col from its current parent. When notify is false the old
// parent is not told; the caller emits the structural change itself.
func detach(col Column, notify bool) {
	b := col.base()
	p := b.parent
	if p == nil {
		return
	}
	if notify {
		_ = p.Remove(col)
		return
	}
	switch owner := p.(type) {
	case *Ranking:
		owner.unlink(col)
	case composite:
		owner.group().unlink(col)
	}
	b.parent = nil
}

// sameRanking reports whether col currently belongs to r.
func sameRanking(col Column, r *Ranking) bool {
	return r != nil && col.Ranking() == r
}
