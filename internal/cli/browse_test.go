package cli

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/lineup/pkg/model"
	"github.com/matzehuels/lineup/pkg/pipeline"
)

func loadRanking(t *testing.T, config string) *model.Ranking {
	t.Helper()
	opts := pipeline.Options{Input: writeFile(t, "scores.csv", scoresCSV)}
	if config != "" {
		opts.Config = writeFile(t, "ranking.toml", config)
	}
	res, err := pipeline.Load(context.Background(), opts)
	require.NoError(t, err)
	return res.Ranking
}

func press(m *browseModel, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m.Update(msg)
	}
}

func titles(m *browseModel) []string {
	out := make([]string, len(m.cols))
	for i, fc := range m.cols {
		out[i] = fc.Column.Title()
	}
	return out
}

func TestBrowseSort(t *testing.T) {
	m := newBrowseModel(loadRanking(t, ""), pipeline.DefaultPadding)
	require.Equal(t, []string{"rank", "name", "score", "bonus"}, titles(m))

	press(m, "right", "right", "s")
	assert.Equal(t, []int{0, 2, 1}, m.order, "first press sorts descending")
	assert.Contains(t, m.View(), "score ▼")

	press(m, "s")
	assert.Equal(t, []int{1, 2, 0}, m.order)
	assert.Contains(t, m.View(), "score ▲")
}

func TestBrowseCursorBounds(t *testing.T) {
	m := newBrowseModel(loadRanking(t, ""), pipeline.DefaultPadding)

	press(m, "left", "h")
	assert.Equal(t, 0, m.col)
	press(m, "right", "right", "right", "right", "right", "l")
	assert.Equal(t, 3, m.col)
	press(m, "down", "down", "down", "j", "j")
	assert.Equal(t, 2, m.row)
}

func TestBrowseHideAndShow(t *testing.T) {
	m := newBrowseModel(loadRanking(t, ""), pipeline.DefaultPadding)

	press(m, "right", "x")
	assert.Equal(t, []string{"rank", "score", "bonus"}, titles(m))
	press(m, "a")
	assert.Len(t, m.cols, 4)
}

func TestBrowseCollapse(t *testing.T) {
	m := newBrowseModel(loadRanking(t, overallTOML), pipeline.DefaultPadding)
	require.Equal(t, []string{"rank", "name", "score", "bonus"}, titles(m))

	press(m, "right", "right", "c")
	assert.Equal(t, []string{"rank", "name", "Overall"}, titles(m))

	press(m, "c")
	assert.Equal(t, []string{"rank", "name", "score", "bonus"}, titles(m))

	press(m, "left", "c")
	assert.Contains(t, m.status, "not part of a group")
}

func TestBrowseQuit(t *testing.T) {
	m := newBrowseModel(loadRanking(t, ""), pipeline.DefaultPadding)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
