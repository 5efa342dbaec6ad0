package io

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/lineup/pkg/errors"
	"github.com/matzehuels/lineup/pkg/model"
)

func sampleRanking(t *testing.T) (*model.Registry, model.RankingDump) {
	t.Helper()
	missing := 1.5
	reg, err := model.NewRegistry(
		&model.Descriptor{Type: model.KindNumber, Column: "score", Domain: []float64{0, 10}},
		&model.Descriptor{Type: model.KindNumber, Column: "other", MissingValue: &missing},
		&model.Descriptor{Type: model.KindCategorical, Column: "tier", Categories: []model.Category{{Name: "a"}, {Name: "b"}}},
	)
	require.NoError(t, err)

	rows := model.Rows{{"score": 4, "other": 1, "tier": "a"}, {"score": 8, "tier": "b"}}
	r := model.NewRanking(rows)

	score, err := reg.New("score")
	require.NoError(t, err)
	other, err := reg.New("other")
	require.NoError(t, err)
	tier, err := reg.New("tier")
	require.NoError(t, err)

	mean, err := reg.New("mean")
	require.NoError(t, err)
	g := mean.(*model.CompositeNumberColumn)
	require.NoError(t, g.Push(score))
	require.NoError(t, g.Push(other))
	g.SetWeights([]float64{0.25, 0.75})

	require.NoError(t, r.Push(mean))
	require.NoError(t, r.Push(tier))
	tier.(*model.CategoricalColumn).SetFilter(model.CategoricalFilter{Allowed: []string{"a"}})
	score.SetVisible(false)
	require.NoError(t, r.SortBy(mean, false))

	return reg, r.Dump(reg.ToDescRef)
}

func TestRoundTrip(t *testing.T) {
	reg, want := sampleRanking(t)
	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteRanking(&buf, want, f))
			got, err := ReadRanking(&buf, f)
			require.NoError(t, err)
			assert.Equal(t, want, got)

			r, err := model.RestoreRanking(got, model.Rows{{"score": 4, "other": 1, "tier": "a"}, {"score": 8, "tier": "b"}}, reg, nil)
			require.NoError(t, err)
			assert.Equal(t, []int{0}, r.Order())
		})
	}
}

func TestConvert(t *testing.T) {
	_, want := sampleRanking(t)
	var js, yml bytes.Buffer
	require.NoError(t, WriteRanking(&js, want, FormatJSON))
	require.NoError(t, Convert(&js, FormatJSON, &yml, FormatYAML))
	assert.Contains(t, yml.String(), "sortCriterion:")

	got, err := ReadRanking(&yml, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestColumnRecord(t *testing.T) {
	d := model.Dump{Desc: "score", Type: model.KindNumber, Width: 120, NumberFormat: ".2f"}
	var buf bytes.Buffer
	require.NoError(t, WriteColumn(&buf, d, FormatTOML))
	assert.Contains(t, buf.String(), `numberFormat = ".2f"`)

	got, err := ReadColumn(&buf, FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, d, got)
}

func TestDecodeErrors(t *testing.T) {
	_, err := ReadRanking(strings.NewReader("{"), FormatJSON)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidDump))

	_, err = ReadRanking(strings.NewReader("x"), Format("xml"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func TestFormats(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"json", FormatJSON, true},
		{" YAML ", FormatYAML, true},
		{"yml", FormatYAML, true},
		{"toml", FormatTOML, true},
		{"bson", FormatBSON, true},
		{"xml", "", false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.ok {
			assert.NoError(t, err, tt.in)
			assert.Equal(t, tt.want, got)
		} else {
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat), tt.in)
		}
	}

	f, err := FormatFromPath("dir/ranking.YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)
	_, err = FormatFromPath("ranking")
	assert.Error(t, err)
	assert.True(t, FormatBSON.Binary())
	assert.Equal(t, ".toml", FormatTOML.Ext())
}

func TestImportExport(t *testing.T) {
	_, want := sampleRanking(t)
	dir := t.TempDir()
	for _, f := range Formats {
		path := filepath.Join(dir, "ranking"+f.Ext())
		require.NoError(t, ExportRanking(want, path))
		got, err := ImportRanking(path)
		require.NoError(t, err, f)
		assert.Equal(t, want, got, f)
	}

	_, err := ImportRanking(filepath.Join(dir, "missing.json"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}
