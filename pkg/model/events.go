package model

import "slices"

// EventKind categorizes change notifications.
type EventKind int

const (
	// EventAll subscribes to every kind. It is never emitted itself.
	EventAll EventKind = iota - 1
	// EventStructure fires when children are added, removed or moved.
	EventStructure
	// EventOrder fires after a ranking recomputed its order.
	EventOrder
	// EventSelection fires when a ranking's selection changes.
	EventSelection
	// EventDirtyHeader fires on a ranking whenever any member column changed.
	EventDirtyHeader
	// EventDirtyValues fires when per-row values of a column changed.
	EventDirtyValues
	// EventWidth fires when the layout width of a column changed.
	EventWidth
	// EventFilter fires when a column's filter changed.
	EventFilter
	// EventSort fires when a ranking's sort criterion changed.
	EventSort
	// EventMetadata fires when display metadata (title, color, ...) changed.
	EventMetadata
)

var eventNames = map[EventKind]string{
	EventAll:         "all",
	EventStructure:   "structure",
	EventOrder:       "order",
	EventSelection:   "selection",
	EventDirtyHeader: "dirtyHeader",
	EventDirtyValues: "dirtyValues",
	EventWidth:       "width",
	EventFilter:      "filter",
	EventSort:        "sort",
	EventMetadata:    "metadata",
}

// String returns the event name.
func (k EventKind) String() string {
	if s, ok := eventNames[k]; ok {
		return s
	}
	return "unknown"
}

// Event is a change notification. Source is the column where the change
// originated; it is nil for ranking-level events (order, sort, selection).
type Event struct {
	Kind   EventKind
	Source Column
	Old    any
	New    any
}

// Listener receives events synchronously.
type Listener func(Event)

type subscription struct {
	id   int
	kind EventKind
	fn   Listener
}

// emitter dispatches events to listeners. Listeners are snapshotted before
// dispatch, so a listener may subscribe, unsubscribe or mutate the tree.
type emitter struct {
	next int
	subs []subscription
}

func (e *emitter) on(kind EventKind, fn Listener) (off func()) {
	id := e.next
	e.next++
	e.subs = append(e.subs, subscription{id: id, kind: kind, fn: fn})
	return func() {
		e.subs = slices.DeleteFunc(e.subs, func(s subscription) bool { return s.id == id })
	}
}

func (e *emitter) emit(ev Event) {
	if len(e.subs) == 0 {
		return
	}
	for _, s := range slices.Clone(e.subs) {
		if s.kind == EventAll || s.kind == ev.Kind {
			s.fn(ev)
		}
	}
}
