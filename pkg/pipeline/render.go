package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"github.com/matzehuels/lineup/pkg/errors"
	"github.com/matzehuels/lineup/pkg/model"
	"github.com/matzehuels/lineup/pkg/observability"
)

// Render encodes t in each of formats. The dot and svg formats draw the
// column tree of r instead of the rows.
func Render(ctx context.Context, t *Table, r *model.Ranking, formats []string) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(formats))
	for _, format := range formats {
		start := time.Now()
		observability.Pipeline().OnRenderStart(ctx, format)
		data, err := render(ctx, t, r, format)
		observability.Pipeline().OnRenderComplete(ctx, format, time.Since(start), err)
		if err != nil {
			return nil, errors.Wrap(errors.GetCodeOr(err, errors.ErrCodeInternal), err, "render %s", format)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func render(ctx context.Context, t *Table, r *model.Ranking, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(t, "", "  ")
	case FormatCSV:
		return RenderCSV(t)
	case FormatDOT:
		return []byte(TreeDOT(r)), nil
	case FormatSVG:
		return RenderSVG(ctx, TreeDOT(r))
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format: %s", format)
}

// RenderCSV writes the rank followed by every cell of each row.
func RenderCSV(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(append([]string{"rank"}, t.Header()...)); err != nil {
		return nil, err
	}
	for _, row := range t.Rows {
		if err := w.Write(append([]string{strconv.Itoa(row.Rank)}, row.Cells...)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
