package model

// Kind is the discriminant of a column.
type Kind string

// Column kinds.
const (
	KindNumber      Kind = "number"
	KindString      Kind = "string"
	KindCategorical Kind = "categorical"
	KindLink        Kind = "link"
	KindDate        Kind = "date"
	KindStack       Kind = "stack"
	KindMean        Kind = "mean"
	KindMin         Kind = "min"
	KindMax         Kind = "max"
	KindMedian      Kind = "median"
	KindScript      Kind = "script"
	KindNested      Kind = "nested"
	KindRank        Kind = "rank"
)

// Kinds lists every known kind in a stable order.
var Kinds = []Kind{
	KindNumber, KindString, KindCategorical, KindLink, KindDate,
	KindStack, KindMean, KindMin, KindMax, KindMedian, KindScript,
	KindNested, KindRank,
}

// Capability is a bitset describing what a column kind supports.
type Capability uint8

const (
	// Sortable columns can be the sort criterion of a ranking.
	Sortable Capability = 1 << iota
	// Aggregatable columns provide a numeric value a composite can reduce.
	Aggregatable
	// Filterable columns carry a filter applied when computing the order.
	Filterable
	// Nestable columns hold children.
	Nestable
)

// Has reports whether all bits of o are set in c.
func (c Capability) Has(o Capability) bool { return c&o == o }

// Capabilities returns the capability set of k. Unknown kinds have none.
func (k Kind) Capabilities() Capability {
	switch k {
	case KindNumber:
		return Sortable | Aggregatable | Filterable
	case KindString, KindLink, KindCategorical, KindDate:
		return Sortable | Filterable
	case KindStack, KindMean, KindMin, KindMax, KindMedian, KindScript:
		return Sortable | Aggregatable | Filterable | Nestable
	case KindNested:
		return Sortable | Nestable
	case KindRank:
		return 0
	default:
		return 0
	}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindNumber, KindString, KindCategorical, KindLink, KindDate,
		KindStack, KindMean, KindMin, KindMax, KindMedian, KindScript,
		KindNested, KindRank:
		return true
	}
	return false
}

// IsComposite reports whether columns of kind k hold children.
func (k Kind) IsComposite() bool { return k.Capabilities().Has(Nestable) }

// IsValue reports whether columns of kind k read raw row data.
func (k Kind) IsValue() bool {
	switch k {
	case KindNumber, KindString, KindCategorical, KindLink, KindDate:
		return true
	}
	return false
}
