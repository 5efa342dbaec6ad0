package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/lineup/pkg/model"
	"github.com/matzehuels/lineup/pkg/provider"
)

const scoresCSV = "name,score,bonus\na,3,10\nb,1,30\nc,2,20\n"

const overallTOML = `
[ranking]
rank = true

[[ranking.columns]]
ref = "name"

[[ranking.columns]]
type = "mean"
label = "Overall"
weights = [0.25, 0.75]
children = [{ ref = "score" }, { ref = "bonus" }]
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// run executes the lineup command line with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv(envRedisURL, "")

	var out bytes.Buffer
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	require.NoError(t, err)
	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".cache", appName), dir)
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")

	dir, err := cacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/custom-cache", appName), dir)
}

func TestParseFormats(t *testing.T) {
	assert.Nil(t, parseFormats(""))
	assert.Equal(t, []string{"json", "csv"}, parseFormats("json, csv"))
}

func TestRankCommandCSV(t *testing.T) {
	input := writeFile(t, "scores.csv", scoresCSV)

	out, err := run(t, "rank", input, "--sort", "score", "-f", "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "rank,rank,name,score,bonus", lines[0])
	for i, name := range []string{"a", "c", "b"} {
		assert.Contains(t, lines[i+1], ","+name+",", "row %d", i+1)
	}
}

func TestRankCommandTable(t *testing.T) {
	input := writeFile(t, "scores.csv", scoresCSV)
	cfg := writeFile(t, "overall.toml", overallTOML)

	out, err := run(t, "rank", input, "-c", cfg, "--sort", "overall", "--limit", "2", "--no-cache")
	require.NoError(t, err)
	assert.Contains(t, out, "name")
	assert.Contains(t, out, "bonus")
}

func TestRankCommandErrors(t *testing.T) {
	input := writeFile(t, "scores.csv", scoresCSV)

	_, err := run(t, "rank", input, "-f", "pdf")
	assert.Error(t, err)
	_, err = run(t, "rank", input, "--asc", "--desc")
	assert.Error(t, err)
	_, err = run(t, "rank", input, "--sort", "ghost")
	assert.Error(t, err)
}

func TestStatsCommand(t *testing.T) {
	input := writeFile(t, "scores.csv", scoresCSV)

	out, err := run(t, "stats", input, "--json", "--bins", "4")
	require.NoError(t, err)
	assert.Contains(t, out, `"title": "score"`)
	assert.Contains(t, out, `"title": "bonus"`)

	out, err = run(t, "stats", input)
	require.NoError(t, err)
	assert.Contains(t, out, "histogram")
	assert.Contains(t, out, "median")
}

func TestDumpAndConvert(t *testing.T) {
	input := writeFile(t, "scores.csv", scoresCSV)
	cfg := writeFile(t, "overall.toml", overallTOML)
	dump := filepath.Join(t.TempDir(), "ranking.yaml")

	_, err := run(t, "dump", input, "-c", cfg, "--sort", "Overall", "-o", dump)
	require.NoError(t, err)
	raw, err := os.ReadFile(dump)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "sortCriterion:")

	out, err := run(t, "convert", dump, "-f", "json", "--data", input, "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, `"sortCriterion"`)
	assert.Contains(t, out, `"weights"`)

	_, err = run(t, "convert", dump, "-f", "bson")
	assert.Error(t, err, "bson must not go to stdout")
}

func TestTreeCommandDOT(t *testing.T) {
	input := writeFile(t, "scores.csv", scoresCSV)
	cfg := writeFile(t, "overall.toml", overallTOML)

	out, err := run(t, "tree", input, "-c", cfg, "--dot")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "digraph Ranking {"))
	assert.Contains(t, out, `[label="0.75"]`)
}

func TestCachePathCommand(t *testing.T) {
	out, err := run(t, "cache", "path")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), appName))
}

func TestPlaceholders(t *testing.T) {
	rows := provider.NewLocal("x", model.Rows{{"v": 1.0}}, &model.Descriptor{Type: model.KindNumber, Column: "v"})
	reg, err := rows.Registry()
	require.NoError(t, err)

	d := model.RankingDump{Columns: []model.Dump{
		{Desc: "v", Type: model.KindNumber},
		{Desc: "ghost", Type: model.KindNumber},
	}}
	r, err := model.RestoreRanking(d, rows, reg, model.PlaceholderRecover)
	require.NoError(t, err)

	ph := placeholders(r)
	require.Len(t, ph, 1)
	assert.Equal(t, "missing ghost", ph[0].Title())
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "▂█ ▅", sparkline([]int{1, 8, 0, 5}))
	assert.Equal(t, "   ", sparkline([]int{0, 0, 0}))
}
