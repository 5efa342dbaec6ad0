package model

// FlatColumn is one positioned span of a flattened column tree.
type FlatColumn struct {
	Column Column
	Offset float64
	Width  float64
	// Depth is 0 for the column flatten started at.
	Depth int
}

// Flatten lays out col depth first starting at offset 0. See FlattenInto.
func Flatten(col Column, padding float64) ([]FlatColumn, float64) {
	return FlattenInto(nil, col, 0, padding)
}

// FlattenInto appends the layout of col to out, starting at offset, and
// returns the extended slice and the width consumed.
//
// A leaf, or a composite that is collapsed, compressed or has no visible
// children, yields one entry. An expanded composite yields the entries of
// its visible children separated by padding, and its width becomes the sum
// of their widths plus the padding between them.
func FlattenInto(out []FlatColumn, col Column, offset, padding float64) ([]FlatColumn, float64) {
	return flatten(out, col, offset, padding, 0, false)
}

// FlattenGroups is like Flatten but additionally emits an entry for every
// expanded composite, before its children, spanning all of them.
func FlattenGroups(col Column, padding float64) ([]FlatColumn, float64) {
	return flatten(nil, col, 0, padding, 0, true)
}

func flatten(out []FlatColumn, col Column, offset, padding float64, depth int, groups bool) ([]FlatColumn, float64) {
	g, ok := col.(composite)
	if !ok || !g.group().expanded() {
		if ok {
			setPaddingDeep(g, padding)
		}
		w := col.Width()
		return append(out, FlatColumn{Column: col, Offset: offset, Width: w, Depth: depth}), w
	}

	cb := g.group()
	cb.setPadding(padding)
	span := -1
	if groups {
		out = append(out, FlatColumn{Column: col, Offset: offset, Depth: depth})
		span = len(out) - 1
	}
	var total float64
	for i, ch := range cb.visibleChildren() {
		if i > 0 {
			total += padding
		}
		var w float64
		out, w = flatten(out, ch, offset+total, padding, depth+1, groups)
		total += w
	}
	if span >= 0 {
		out[span].Width = total
	}
	return out, total
}

func setPaddingDeep(g composite, padding float64) {
	cb := g.group()
	cb.setPadding(padding)
	for _, ch := range cb.children {
		if sub, ok := ch.(composite); ok {
			setPaddingDeep(sub, padding)
		}
	}
}

// CountMultiLevel returns the number of header rows col needs. Leaves and
// collapsed or compressed composites count 1 regardless of their subtree.
func CountMultiLevel(col Column) int {
	g, ok := col.(composite)
	if !ok || !g.group().expanded() {
		return 1
	}
	deepest := 0
	for _, ch := range g.group().visibleChildren() {
		deepest = max(deepest, CountMultiLevel(ch))
	}
	return 1 + deepest
}

// Flatten lays out the visible top-level columns separated by padding.
func (r *Ranking) Flatten(padding float64) ([]FlatColumn, float64) {
	return r.flatten(padding, false)
}

// FlattenGroups is like Flatten but also emits composite spans.
func (r *Ranking) FlattenGroups(padding float64) ([]FlatColumn, float64) {
	return r.flatten(padding, true)
}

func (r *Ranking) flatten(padding float64, groups bool) ([]FlatColumn, float64) {
	var (
		out   []FlatColumn
		total float64
		first = true
	)
	for _, c := range r.columns {
		if !c.Visible() {
			continue
		}
		if !first {
			total += padding
		}
		first = false
		var w float64
		out, w = flatten(out, c, total, padding, 0, groups)
		total += w
	}
	return out, total
}

// CountMultiLevel returns the header depth over all visible columns.
func (r *Ranking) CountMultiLevel() int {
	depth := 0
	for _, c := range r.columns {
		if c.Visible() {
			depth = max(depth, CountMultiLevel(c))
		}
	}
	return depth
}
