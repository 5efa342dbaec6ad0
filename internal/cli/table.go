package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/lineup/pkg/model"
	"github.com/matzehuels/lineup/pkg/pipeline"
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Foreground(colorWhite).Padding(0, 1)
	numberStyle  = cellStyle.Foreground(colorCyan).Align(lipgloss.Right)
	missingStyle = cellStyle.Foreground(colorDim)
)

// numeric reports whether cells of kind hold numbers and align right.
func numeric(kind model.Kind) bool {
	switch kind {
	case model.KindNumber, model.KindRank, model.KindScript,
		model.KindStack, model.KindMean, model.KindMin, model.KindMax, model.KindMedian:
		return true
	}
	return false
}

// renderTable draws t as a bordered table. Nested columns are prefixed with
// the title of their group.
func renderTable(t *pipeline.Table) string {
	rows := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		cells := make([]string, len(r.Cells))
		for j, c := range r.Cells {
			if c == "" {
				c = "·"
			}
			cells[j] = c
		}
		rows[i] = cells
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(t.Header()...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row >= 0 && row < len(rows) && rows[row][col] == "·" {
				return missingStyle
			}
			if col < len(t.Columns) && numeric(t.Columns[col].Kind) {
				return numberStyle
			}
			return cellStyle
		})
	return tbl.Render()
}

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// sparkline draws bins as one block character per bin, scaled to the
// fullest bin.
func sparkline(bins []int) string {
	peak := 0
	for _, n := range bins {
		peak = max(peak, n)
	}
	var b strings.Builder
	for _, n := range bins {
		if peak == 0 || n == 0 {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(sparkLevels[(n*(len(sparkLevels)-1)+peak/2)/peak])
	}
	return b.String()
}
