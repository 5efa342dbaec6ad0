package pipeline

import (
	"github.com/matzehuels/lineup/pkg/model"
)

// Table is the ranked rows of a ranking as display text, laid out by
// flattening its visible columns.
type Table struct {
	Columns []TableColumn `json:"columns"`
	Rows    []TableRow    `json:"rows"`
	// Total is the number of rows passing every filter before the limit.
	Total int     `json:"total"`
	Width float64 `json:"width"`
}

// TableColumn is one flattened column.
type TableColumn struct {
	Ref    string     `json:"ref"`
	Title  string     `json:"title"`
	Kind   model.Kind `json:"kind"`
	Offset float64    `json:"offset"`
	Width  float64    `json:"width"`
	Depth  int        `json:"depth,omitempty"`
}

// TableRow is one ranked row.
type TableRow struct {
	Rank  int      `json:"rank"`
	Index int      `json:"index"`
	Cells []string `json:"cells"`
}

// BuildTable computes the order of r and renders the first limit rows. A
// limit of 0 renders every ranked row.
func BuildTable(r *model.Ranking, padding float64, limit int) *Table {
	flat, width := r.Flatten(padding)
	order := r.Order()

	t := &Table{
		Columns: make([]TableColumn, len(flat)),
		Total:   len(order),
		Width:   width,
	}
	for i, fc := range flat {
		t.Columns[i] = TableColumn{
			Ref:    ref(fc.Column),
			Title:  fc.Column.Title(),
			Kind:   fc.Column.Kind(),
			Offset: fc.Offset,
			Width:  fc.Width,
			Depth:  fc.Depth,
		}
	}

	if limit > 0 && limit < len(order) {
		order = order[:limit]
	}
	rows := r.Rows()
	t.Rows = make([]TableRow, len(order))
	for pos, idx := range order {
		row := rows.Row(idx)
		cells := make([]string, len(flat))
		for i, fc := range flat {
			cells[i] = fc.Column.Label(row, idx)
		}
		t.Rows[pos] = TableRow{Rank: pos + 1, Index: idx, Cells: cells}
	}
	return t
}

func ref(c model.Column) string {
	if col := c.Desc().Column; col != "" {
		return col
	}
	return string(c.Kind())
}

// Header returns the column titles.
func (t *Table) Header() []string {
	h := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		h[i] = c.Title
	}
	return h
}
