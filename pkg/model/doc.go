// Package model implements the column model and ranking engine of lineup.
//
// A ranking is an ad-hoc ordering over tabular rows, built by composing
// columns. Leaf columns read typed values out of raw rows; composite
// columns combine their children (weighted sums, means, scripted
// combinations, plain groups); a [Ranking] owns a list of top-level
// columns, a single sort criterion and the derived row order.
//
// # Column Kinds
//
// Every column carries a [Kind] discriminant and the capability set of that
// kind ([Sortable], [Aggregatable], [Filterable], [Nestable]):
//
//   - number, string, categorical, link, date: value columns over raw rows
//   - stack, mean, min, max, median, script: weighted numeric composites
//   - nested: plain group of columns
//   - rank: the 1-based position of a row in its ranking's order
//
// # Tree Mutation
//
// Composites and rankings own their children. A column has at most one
// parent; inserting it elsewhere unlinks it first. Inserting a column into
// itself or into one of its descendants is rejected with a CYCLE error and
// leaves the tree untouched.
//
// # Order
//
// A [Ranking] is Clean or Dirty. Value, filter, sort or structure changes
// of any member column mark it Dirty; the next [Ranking.Order] call filters
// all row indices, stable-sorts the survivors by the criterion and returns
// a fresh snapshot. Ties keep the original row order.
//
// # Layout
//
// [Flatten] turns a (possibly nested, collapsible) column tree into a
// linear sequence of (column, offset, width) spans; [CountMultiLevel]
// reports how many header rows a renderer needs.
//
// # Serialization
//
// [Column.Dump] produces a plain [Dump] record and [Restore] rebuilds a
// column from it through a [Factory], which resolves descriptor references.
// Restore(Dump(c)) behaves identically to c for every row.
//
// # Concurrency
//
// The column tree and its rankings are owned by a single goroutine. None of
// the types in this package are safe for concurrent use.
package model
