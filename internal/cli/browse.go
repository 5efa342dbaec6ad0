package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lineup/pkg/model"
	"github.com/matzehuels/lineup/pkg/pipeline"
)

// browseCommand creates the interactive browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var flags rankFlags

	cmd := &cobra.Command{
		Use:   "browse [data]",
		Short: "Explore a ranking interactively",
		Long: `Explore a ranking interactively.

  ←/→ h/l   move between columns      s   toggle sorting by column
  ↑/↓ k/j   move between rows         c   collapse or expand group
  x         hide column               a   show all columns
  q         quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBrowse(cmd.Context(), flags.options(args[0]))
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, opts pipeline.Options) error {
	opts.Logger = c.Logger
	result, err := pipeline.Load(ctx, opts)
	if err != nil {
		return err
	}
	m := newBrowseModel(result.Ranking, pipeline.DefaultPadding)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// =============================================================================
// browseModel - Interactive ranking view
// =============================================================================

var (
	browseCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	browseSortStyle   = headerStyle.Foreground(colorCyan)
	browseStatusStyle = lipgloss.NewStyle().Foreground(colorYellow)
)

type browseModel struct {
	ranking *model.Ranking
	padding float64

	cols  []model.FlatColumn
	order []int

	col    int // cursor column in cols
	row    int // cursor position in order
	offset int
	height int
	status string
}

func newBrowseModel(r *model.Ranking, padding float64) *browseModel {
	m := &browseModel{ranking: r, padding: padding, height: 15}
	m.refresh()
	return m
}

// refresh re-reads the layout and order after a change to the ranking.
func (m *browseModel) refresh() {
	m.cols, _ = m.ranking.Flatten(m.padding)
	m.order = m.ranking.Order()
	m.col = clamp(m.col, 0, len(m.cols)-1)
	m.row = clamp(m.row, 0, len(m.order)-1)
	m.scroll()
}

func (m *browseModel) scroll() {
	if m.row < m.offset {
		m.offset = m.row
	}
	if m.row >= m.offset+m.height {
		m.offset = m.row - m.height + 1
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func (m *browseModel) current() model.Column {
	if len(m.cols) == 0 {
		return nil
	}
	return m.cols[m.col].Column
}

func (m *browseModel) Init() tea.Cmd {
	return nil
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.status = ""
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			m.col = max(m.col-1, 0)
		case "right", "l":
			m.col = min(m.col+1, len(m.cols)-1)
		case "up", "k":
			m.row = max(m.row-1, 0)
			m.scroll()
		case "down", "j":
			m.row = min(m.row+1, len(m.order)-1)
			m.scroll()
		case "s":
			m.toggleSort()
		case "c":
			m.toggleCollapse()
		case "x":
			if col := m.current(); col != nil {
				col.SetVisible(false)
				m.refresh()
			}
		case "a":
			for _, col := range m.ranking.Flat() {
				col.SetVisible(true)
			}
			m.refresh()
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
		m.scroll()
	}
	return m, nil
}

func (m *browseModel) toggleSort() {
	col := m.current()
	if col == nil {
		return
	}
	var err error
	if m.ranking.SortCriterion().Column == col {
		err = m.ranking.ToggleSorting(col)
	} else {
		err = m.ranking.SortBy(col, col.DefaultSortAscending())
	}
	if err != nil {
		m.status = err.Error()
	}
	m.refresh()
}

type collapsible interface {
	Collapsed() bool
	SetCollapsed(collapsed bool)
}

// toggleCollapse expands the current column if it is a collapsed group,
// otherwise collapses the group the current column belongs to.
func (m *browseModel) toggleCollapse() {
	col := m.current()
	if col == nil {
		return
	}
	if g, ok := col.(collapsible); ok && g.Collapsed() {
		g.SetCollapsed(false)
	} else if g, ok := col.Parent().(collapsible); ok {
		g.SetCollapsed(true)
	} else {
		m.status = col.Title() + " is not part of a group"
		return
	}
	m.refresh()
}

func (m *browseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Ranking"))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d of %d rows", len(m.order), m.ranking.Rows().RowCount())))
	b.WriteString("\n\n")

	sorted := m.ranking.SortCriterion()
	headers := make([]string, len(m.cols))
	for i, fc := range m.cols {
		h := fc.Column.Title()
		if fc.Column == sorted.Column {
			if sorted.Ascending {
				h += " ▲"
			} else {
				h += " ▼"
			}
		}
		headers[i] = h
	}

	end := min(m.offset+m.height, len(m.order))
	rows := m.ranking.Rows()
	cells := make([][]string, 0, end-m.offset)
	for pos := m.offset; pos < end; pos++ {
		idx := m.order[pos]
		row := rows.Row(idx)
		line := make([]string, len(m.cols))
		for i, fc := range m.cols {
			line[i] = fc.Column.Label(row, idx)
		}
		cells = append(cells, line)
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				switch {
				case col == m.col:
					return browseCursorStyle.Padding(0, 1)
				case m.cols[col].Column == sorted.Column:
					return browseSortStyle
				}
				return headerStyle
			}
			s := cellStyle
			if numeric(m.cols[col].Column.Kind()) {
				s = numberStyle
			}
			if m.offset+row == m.row {
				s = s.Bold(true).Foreground(colorCyan)
			}
			return s
		})

	b.WriteString(tbl.Render())
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(browseStatusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(StyleDim.Render("←/→ column  ↑/↓ row  s sort  c collapse  x hide  a show all  q quit"))
	return b.String()
}
