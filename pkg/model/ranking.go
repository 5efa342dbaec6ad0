package model

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/lineup/pkg/errors"
	"github.com/matzehuels/lineup/pkg/observability"
)

// State is the freshness of a ranking's order.
type State int

const (
	// Clean means the order reflects the current column state.
	Clean State = iota
	// Dirty means a column, filter or the structure changed since the last
	// recompute.
	Dirty
	// Recomputing is held while the order is being rebuilt.
	Recomputing
)

func (s State) String() string {
	switch s {
	case Clean:
		return "clean"
	case Dirty:
		return "dirty"
	case Recomputing:
		return "recomputing"
	}
	return "unknown"
}

// SortCriterion is the column a ranking is sorted by and the direction.
// A nil Column means insertion order.
type SortCriterion struct {
	Column    Column
	Ascending bool
}

// Ranking owns a list of top-level columns and derives the order of the
// rows that pass all filters, sorted by a single criterion.
//
// A Ranking and its column tree are not safe for concurrent use.
type Ranking struct {
	id      string
	rows    RowSource
	columns []Column
	sort    SortCriterion

	state   State
	redirty bool
	order   []int
	ranks   []int
	version uint64

	selection map[int]struct{}
	events    emitter
	logger    *log.Logger
}

// RankingOption configures a Ranking.
type RankingOption func(*Ranking)

// WithLogger sets the logger recomputes are reported to.
func WithLogger(l *log.Logger) RankingOption {
	return func(r *Ranking) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithID overrides the generated ranking identifier.
func WithID(id string) RankingOption {
	return func(r *Ranking) {
		if id != "" {
			r.id = id
		}
	}
}

// NewRanking creates an empty ranking over rows.
func NewRanking(rows RowSource, opts ...RankingOption) *Ranking {
	if rows == nil {
		rows = Rows(nil)
	}
	r := &Ranking{
		id:        uuid.NewString(),
		rows:      rows,
		state:     Dirty,
		selection: make(map[int]struct{}),
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ID returns the ranking identifier.
func (r *Ranking) ID() string { return r.id }

// Rows returns the row source.
func (r *Ranking) Rows() RowSource { return r.rows }

// SetRows replaces the row source. The selection is cleared.
func (r *Ranking) SetRows(rows RowSource) {
	if rows == nil {
		rows = Rows(nil)
	}
	r.rows = rows
	r.markDirty()
	if len(r.selection) > 0 {
		r.ClearSelection()
	}
	r.events.emit(Event{Kind: EventDirtyValues})
}

// State returns whether the order is up to date.
func (r *Ranking) State() State { return r.state }

// Version counts recomputes.
func (r *Ranking) Version() uint64 { return r.version }

// =============================================================================
// Structure
// =============================================================================

// Columns returns the top-level columns in order.
func (r *Ranking) Columns() []Column { return slices.Clone(r.columns) }

// Len returns the number of top-level columns.
func (r *Ranking) Len() int { return len(r.columns) }

// Push appends col as the last top-level column.
func (r *Ranking) Push(col Column) error { return r.Insert(col, len(r.columns)) }

// Insert adds col at index, detaching it from its previous parent first.
// Indices out of range append.
func (r *Ranking) Insert(col Column, index int) error {
	if col == nil {
		return errors.New(errors.ErrCodeInvalidInput, "cannot insert nil column into ranking %s", r.id)
	}
	if col.Parent() == Parent(r) {
		return r.Move(col, index)
	}
	detach(col, !sameRanking(col, r))
	if index < 0 || index > len(r.columns) {
		index = len(r.columns)
	}
	r.columns = slices.Insert(r.columns, index, col)
	col.base().parent = r
	r.childChanged(col, Event{Kind: EventStructure, New: col})
	return nil
}

// Remove detaches a top-level column. It fails with NOT_A_CHILD for
// columns that are not top-level members.
func (r *Ranking) Remove(col Column) error {
	if !r.unlink(col) {
		return errors.New(errors.ErrCodeNotAChild, "%s is not a column of ranking %s", idOf(col), r.id)
	}
	col.base().parent = nil
	r.childChanged(col, Event{Kind: EventStructure, Old: col})
	return nil
}

// Move changes the position of a top-level column.
func (r *Ranking) Move(col Column, index int) error {
	from := slices.Index(r.columns, col)
	if from < 0 {
		return errors.New(errors.ErrCodeNotAChild, "%s is not a column of ranking %s", idOf(col), r.id)
	}
	if index < 0 || index >= len(r.columns) {
		index = len(r.columns) - 1
	}
	if index == from {
		return nil
	}
	r.columns = slices.Delete(r.columns, from, from+1)
	r.columns = slices.Insert(r.columns, index, col)
	r.childChanged(col, Event{Kind: EventStructure, Old: from, New: index})
	return nil
}

func (r *Ranking) unlink(col Column) bool {
	i := slices.Index(r.columns, col)
	if i < 0 {
		return false
	}
	r.columns = slices.Delete(r.columns, i, i+1)
	return true
}

func (r *Ranking) owner() Column { return nil }

// childChanged receives every event of the column tree.
func (r *Ranking) childChanged(_ Column, ev Event) {
	switch ev.Kind {
	case EventDirtyValues, EventFilter, EventStructure:
		r.markDirty()
	}
	r.events.emit(ev)
	if ev.Kind == EventStructure && r.sort.Column != nil && r.sort.Column.Ranking() != r {
		old := r.sort
		r.sort = SortCriterion{}
		r.events.emit(Event{Kind: EventSort, Old: old, New: r.sort})
	}
	r.events.emit(Event{Kind: EventDirtyHeader, Source: ev.Source})
}

// Flat returns every column of the tree in depth-first order.
func (r *Ranking) Flat() []Column {
	var out []Column
	var walk func(cols []Column)
	walk = func(cols []Column) {
		for _, c := range cols {
			out = append(out, c)
			if g, ok := c.(composite); ok {
				walk(g.group().children)
			}
		}
	}
	walk(r.columns)
	return out
}

// Find returns the column with id anywhere in the tree.
func (r *Ranking) Find(id string) (Column, bool) {
	for _, c := range r.Flat() {
		if c.ID() == id {
			return c, true
		}
	}
	return nil, false
}

// =============================================================================
// Sorting
// =============================================================================

// SortCriterion returns the current criterion.
func (r *Ranking) SortCriterion() SortCriterion { return r.sort }

// SortBy replaces the criterion. A nil column restores insertion order.
// The column must belong to this ranking and be sortable.
func (r *Ranking) SortBy(col Column, ascending bool) error {
	next := SortCriterion{Column: col, Ascending: ascending}
	if col == nil {
		next.Ascending = false
	} else {
		if col.Ranking() != r {
			return errors.New(errors.ErrCodeNotInRanking, "%s is not part of ranking %s", col.ID(), r.id)
		}
		if !col.Kind().Capabilities().Has(Sortable) {
			return errors.New(errors.ErrCodeUnsupported, "%s column %s is not sortable", col.Kind(), col.ID())
		}
	}
	if next == r.sort {
		return nil
	}
	old := r.sort
	r.sort = next
	r.markDirty()
	r.events.emit(Event{Kind: EventSort, Source: col, Old: old, New: next})
	return nil
}

// ToggleSorting sorts by col in its default direction, or flips the
// direction if col already is the criterion.
func (r *Ranking) ToggleSorting(col Column) error {
	if col != nil && r.sort.Column == col {
		return r.SortBy(col, !r.sort.Ascending)
	}
	if col == nil {
		return r.SortBy(nil, false)
	}
	return r.SortBy(col, col.DefaultSortAscending())
}

// =============================================================================
// Order
// =============================================================================

// Invalidate marks the order stale, e.g. after the row source changed in
// place.
func (r *Ranking) Invalidate() { r.markDirty() }

func (r *Ranking) markDirty() {
	switch r.state {
	case Clean:
		r.state = Dirty
	case Recomputing:
		r.redirty = true
	}
}

// Order returns the indices of the rows passing every filter, sorted by the
// criterion. It recomputes first when the ranking is dirty. During a
// recompute it returns the previous order. The result is a copy.
func (r *Ranking) Order() []int {
	if r.state == Dirty {
		r.Recompute()
	}
	return slices.Clone(r.order)
}

// Recompute rebuilds the order and rank table from the current column
// state and emits an order event. Calls during a recompute are ignored.
func (r *Ranking) Recompute() {
	if r.state == Recomputing {
		return
	}
	r.state = Recomputing
	r.redirty = false
	start := time.Now()
	n := r.rows.RowCount()
	observability.Ranking().OnRecomputeStart(r.id, n)

	var filters []Column
	for _, c := range r.Flat() {
		if c.IsFiltered() {
			filters = append(filters, c)
		}
	}

	rows := make([]Row, n)
	order := make([]int, 0, n)
rowLoop:
	for i := 0; i < n; i++ {
		row := r.rows.Row(i)
		rows[i] = row
		for _, f := range filters {
			if !f.Filter(row, i) {
				continue rowLoop
			}
		}
		order = append(order, i)
	}

	if col := r.sort.Column; col != nil {
		asc := r.sort.Ascending
		slices.SortStableFunc(order, func(a, b int) int {
			c := col.Compare(rows[a], rows[b], a, b)
			if !asc {
				c = -c
			}
			return c
		})
	}

	ranks := make([]int, n)
	for pos, idx := range order {
		ranks[idx] = pos + 1
	}

	old := r.order
	r.order = order
	r.ranks = ranks
	r.version++
	r.state = Clean
	if r.redirty {
		r.state = Dirty
		r.redirty = false
	}

	elapsed := time.Since(start)
	r.logger.Debug("recomputed order", "ranking", r.id, "rows", n, "visible", len(order), "filters", len(filters), "duration", elapsed)
	observability.Ranking().OnRecomputeComplete(r.id, len(order), elapsed)
	r.events.emit(Event{Kind: EventOrder, Old: old, New: slices.Clone(order)})
}

// RankOf returns the 1-based position of the row at index in the current
// order, 0 when the row is filtered out. A dirty ranking is recomputed
// first.
func (r *Ranking) RankOf(index int) int {
	if r.state == Dirty {
		r.Recompute()
	}
	if index < 0 || index >= len(r.ranks) {
		return 0
	}
	return r.ranks[index]
}

// Ranks returns the rank of every row by row index.
func (r *Ranking) Ranks() []int {
	if r.state == Dirty {
		r.Recompute()
	}
	return slices.Clone(r.ranks)
}

// =============================================================================
// Selection
// =============================================================================

// Selection returns the selected row indices in ascending order.
func (r *Ranking) Selection() []int {
	out := make([]int, 0, len(r.selection))
	for i := range r.selection {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

// IsSelected reports whether the row at index is selected.
func (r *Ranking) IsSelected(index int) bool {
	_, ok := r.selection[index]
	return ok
}

// Select adds rows to the selection.
func (r *Ranking) Select(indices ...int) {
	old := r.Selection()
	changed := false
	for _, i := range indices {
		if _, ok := r.selection[i]; !ok {
			r.selection[i] = struct{}{}
			changed = true
		}
	}
	if changed {
		r.events.emit(Event{Kind: EventSelection, Old: old, New: r.Selection()})
	}
}

// Deselect removes rows from the selection.
func (r *Ranking) Deselect(indices ...int) {
	old := r.Selection()
	changed := false
	for _, i := range indices {
		if _, ok := r.selection[i]; ok {
			delete(r.selection, i)
			changed = true
		}
	}
	if changed {
		r.events.emit(Event{Kind: EventSelection, Old: old, New: r.Selection()})
	}
}

// SetSelection replaces the selection.
func (r *Ranking) SetSelection(indices []int) {
	old := r.Selection()
	next := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		next[i] = struct{}{}
	}
	r.selection = next
	if now := r.Selection(); !slices.Equal(old, now) {
		r.events.emit(Event{Kind: EventSelection, Old: old, New: now})
	}
}

// ClearSelection empties the selection.
func (r *Ranking) ClearSelection() { r.SetSelection(nil) }

// On subscribes to events of the ranking and every column in it.
func (r *Ranking) On(kind EventKind, fn Listener) (off func()) {
	return r.events.on(kind, fn)
}
