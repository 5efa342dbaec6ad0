package model

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/lineup/pkg/errors"
)

// composite is implemented by every column that holds children.
type composite interface {
	Column
	Parent
	group() *compositeBase
}

// compositeBase holds the children of a composite column and implements
// the tree mutations shared by all composite kinds.
type compositeBase struct {
	columnBase
	children  []Column
	collapsed bool
	padding   float64

	// accept vets a child before it is linked.
	accept func(col Column) error
	// linked and unlinked observe membership changes.
	linked   func(col Column)
	unlinked func(col Column)
}

func newCompositeBase(self Column, desc *Descriptor) compositeBase {
	return compositeBase{columnBase: newColumnBase(self, desc)}
}

func (c *compositeBase) group() *compositeBase { return c }

func (c *compositeBase) owner() Column { return c.self }

// Children returns a copy of the child list in order.
func (c *compositeBase) Children() []Column { return slices.Clone(c.children) }

// Len returns the number of children.
func (c *compositeBase) Len() int { return len(c.children) }

// Collapsed reports whether the composite presents as a single unit.
func (c *compositeBase) Collapsed() bool { return c.collapsed }

// SetCollapsed collapses or expands the composite.
func (c *compositeBase) SetCollapsed(collapsed bool) {
	if collapsed == c.collapsed {
		return
	}
	old := c.Width()
	c.collapsed = collapsed
	c.emit(Event{Kind: EventWidth, Source: c.self, Old: old, New: c.Width()})
}

// Push appends col as the last child.
func (c *compositeBase) Push(col Column) error {
	return c.Insert(col, len(c.children))
}

// Insert links col as child at index. Indices out of range append. The
// column is first detached from its previous parent. Inserting the
// composite itself or one of its ancestors fails with CYCLE and leaves the
// tree unchanged.
func (c *compositeBase) Insert(col Column, index int) error {
	if col == nil {
		return errors.New(errors.ErrCodeInvalidInput, "cannot insert nil column into %s", c.id)
	}
	if ancestorOf(col, c.self) {
		return errors.New(errors.ErrCodeCycle, "%s is %s or one of its ancestors", col.ID(), c.id)
	}
	if c.accept != nil {
		if err := c.accept(col); err != nil {
			return err
		}
	}
	if col.Parent() == c.self.(Parent) {
		return c.Move(col, index)
	}

	r := c.Ranking()
	detach(col, !sameRanking(col, r))

	if index < 0 || index > len(c.children) {
		index = len(c.children)
	}
	c.children = slices.Insert(c.children, index, col)
	col.base().parent = c.self.(Parent)
	if c.linked != nil {
		c.linked(col)
	}
	c.emit(Event{Kind: EventStructure, Source: c.self, New: col})
	return nil
}

// Remove detaches col. It fails with NOT_A_CHILD if col is not a child.
// Removing the last child leaves the composite in place.
func (c *compositeBase) Remove(col Column) error {
	if !c.unlink(col) {
		return errors.New(errors.ErrCodeNotAChild, "%s is not a child of %s", idOf(col), c.id)
	}
	col.base().parent = nil
	c.emit(Event{Kind: EventStructure, Source: c.self, Old: col})
	return nil
}

// Move changes the position of a child. Indices out of range move it last.
func (c *compositeBase) Move(col Column, index int) error {
	from := slices.Index(c.children, col)
	if from < 0 {
		return errors.New(errors.ErrCodeNotAChild, "%s is not a child of %s", idOf(col), c.id)
	}
	if index < 0 || index >= len(c.children) {
		index = len(c.children) - 1
	}
	if index == from {
		return nil
	}
	c.children = slices.Delete(c.children, from, from+1)
	c.children = slices.Insert(c.children, index, col)
	c.emit(Event{Kind: EventStructure, Source: c.self, Old: from, New: index})
	return nil
}

// unlink drops col from the child list without notifying anyone.
func (c *compositeBase) unlink(col Column) bool {
	i := slices.Index(c.children, col)
	if i < 0 {
		return false
	}
	c.children = slices.Delete(c.children, i, i+1)
	if c.unlinked != nil {
		c.unlinked(col)
	}
	return true
}

func (c *compositeBase) childChanged(_ Column, ev Event) {
	c.events.emit(ev)
	if c.parent != nil {
		c.parent.childChanged(c.self, ev)
	}
}

func (c *compositeBase) visibleChildren() []Column {
	out := make([]Column, 0, len(c.children))
	for _, ch := range c.children {
		if ch.Visible() {
			out = append(out, ch)
		}
	}
	return out
}

// expanded reports whether the width is derived from the children.
func (c *compositeBase) expanded() bool {
	if c.compressed || c.collapsed {
		return false
	}
	for _, ch := range c.children {
		if ch.Visible() {
			return true
		}
	}
	return false
}

// Width is the sum of the visible children's widths plus padding between
// them. Collapsed composites and those without visible children use their
// own width.
func (c *compositeBase) Width() float64 {
	if c.compressed {
		return CompressedWidth
	}
	if !c.expanded() {
		return c.width
	}
	vis := c.visibleChildren()
	w := c.padding * float64(len(vis)-1)
	for _, ch := range vis {
		w += ch.Width()
	}
	return w
}

// SetWidth on an expanded composite scales the visible children
// proportionally; otherwise it sets the composite's own width.
func (c *compositeBase) SetWidth(w float64) {
	old := c.Width()
	resize(c.self, w)
	if now := c.Width(); now != old {
		c.emit(Event{Kind: EventWidth, Source: c.self, Old: old, New: now})
	}
}

// resize sets the width of col and its descendants without emitting.
func resize(col Column, w float64) {
	w = clampWidth(w)
	cb, ok := col.(composite)
	if !ok || !cb.group().expanded() {
		col.base().width = w
		return
	}
	g := cb.group()
	vis := g.visibleChildren()
	gaps := g.padding * float64(len(vis)-1)
	total := g.Width() - gaps
	for _, ch := range vis {
		share := (w - gaps) / float64(len(vis))
		if total > 0 {
			share = (w - gaps) * ch.Width() / total
		}
		resize(ch, share)
	}
}

// setPadding records the inter-child gap used for width derivation.
func (c *compositeBase) setPadding(p float64) { c.padding = p }

func (c *compositeBase) dumpChildren(d *Dump, toRef func(*Descriptor) string) {
	d.Collapsed = c.collapsed
	d.Children = make([]Dump, 0, len(c.children))
	for _, ch := range c.children {
		d.Children = append(d.Children, ch.Dump(toRef))
	}
}

func (c *compositeBase) restoreChildren(d Dump, f Factory, rec Recover) error {
	c.collapsed = d.Collapsed
	for i, cd := range d.Children {
		ch, err := restoreColumn(cd, f, rec)
		if err != nil {
			return errors.Wrap(errors.GetCodeOr(err, errors.ErrCodeInvalidDump), err, "child %d of %s", i, d.Type)
		}
		if err := c.Push(ch); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDump, err, "child %d of %s", i, d.Type)
		}
	}
	return nil
}

func idOf(col Column) string {
	if col == nil {
		return "<nil>"
	}
	return col.ID()
}

// NestedColumn groups arbitrary columns. Its value is the list of its
// visible children's labels and it compares child by child.
type NestedColumn struct {
	compositeBase
}

// NewNestedColumn creates an empty group.
func NewNestedColumn(desc *Descriptor) *NestedColumn {
	c := &NestedColumn{}
	c.compositeBase = newCompositeBase(c, descOf(desc, KindNested))
	return c
}

func (c *NestedColumn) Value(row Row, index int) any {
	vis := c.visibleChildren()
	out := make([]string, len(vis))
	for i, ch := range vis {
		out[i] = ch.Label(row, index)
	}
	return out
}

func (c *NestedColumn) Label(row Row, index int) string {
	return strings.Join(c.Value(row, index).([]string), "; ")
}

func (c *NestedColumn) Compare(a, b Row, ia, ib int) int {
	for _, ch := range c.visibleChildren() {
		if r := ch.Compare(a, b, ia, ib); r != 0 {
			return r
		}
	}
	return 0
}

func (c *NestedColumn) DefaultSortAscending() bool {
	if vis := c.visibleChildren(); len(vis) > 0 {
		return vis[0].DefaultSortAscending()
	}
	return true
}

func (c *NestedColumn) Dump(toRef func(*Descriptor) string) Dump {
	d := c.dumpBase(toRef)
	c.dumpChildren(&d, toRef)
	return d
}

func (c *NestedColumn) restore(d Dump, f Factory, rec Recover) error {
	c.restoreBase(d)
	return c.restoreChildren(d, f, rec)
}

func (c *NestedColumn) String() string {
	return fmt.Sprintf("nested(%s, %d children)", c.id, len(c.children))
}
