// Package provider supplies the raw rows a ranking orders.
//
// A [Provider] exposes synchronous row access for the ranking's recompute
// and asynchronous views for consumers that page through an order. [Local]
// is the in-memory implementation; [LoadCSV] and [LoadJSON] build one from
// files and infer a column descriptor for every field.
package provider

import (
	"context"
	"slices"

	"github.com/matzehuels/lineup/pkg/async"
	"github.com/matzehuels/lineup/pkg/errors"
	"github.com/matzehuels/lineup/pkg/model"
	"github.com/matzehuels/lineup/pkg/stats"
)

// Provider owns raw rows. Rankings read them through model.RowSource.
type Provider interface {
	model.RowSource

	// View resolves to the rows at indices, in the given order.
	View(ctx context.Context, indices []int) *async.Deferred[[]model.Row]

	// StatsFor returns a statistics engine bound to r.
	StatsFor(r *model.Ranking, opts ...stats.Option) *stats.Engine
}

// Local is an in-memory Provider.
type Local struct {
	name    string
	rows    model.Rows
	columns []string
	descs   []*model.Descriptor
}

var _ Provider = (*Local)(nil)

// NewLocal wraps rows. descs are the column descriptors offered for the
// data; they may be empty.
func NewLocal(name string, rows model.Rows, descs ...*model.Descriptor) *Local {
	cols := make([]string, 0, len(descs))
	for _, d := range descs {
		if d.Column != "" {
			cols = append(cols, d.Column)
		}
	}
	return &Local{name: name, rows: rows, columns: cols, descs: descs}
}

// Name identifies where the rows came from.
func (p *Local) Name() string { return p.name }

func (p *Local) RowCount() int { return len(p.rows) }

func (p *Local) Row(index int) model.Row { return p.rows[index] }

// Rows returns the underlying rows. They must not be modified.
func (p *Local) Rows() model.Rows { return p.rows }

// Columns returns the field names in file order.
func (p *Local) Columns() []string { return slices.Clone(p.columns) }

// Descriptors returns the descriptors offered for the data.
func (p *Local) Descriptors() []*model.Descriptor { return slices.Clone(p.descs) }

// Registry returns a factory holding the provider's descriptors.
func (p *Local) Registry() (*model.Registry, error) {
	return model.NewRegistry(p.descs...)
}

// View copies the rows at indices on a worker. Out-of-range indices reject
// the view.
func (p *Local) View(ctx context.Context, indices []int) *async.Deferred[[]model.Row] {
	for _, idx := range indices {
		if idx < 0 || idx >= len(p.rows) {
			return async.Rejected[[]model.Row](errors.New(errors.ErrCodeInvalidInput, "row %d out of range [0, %d)", idx, len(p.rows)))
		}
	}
	indices = slices.Clone(indices)
	return async.Go(func() ([]model.Row, error) {
		out := make([]model.Row, len(indices))
		for i, idx := range indices {
			if i%1024 == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			out[i] = p.rows[idx]
		}
		return out, nil
	})
}

func (p *Local) StatsFor(r *model.Ranking, opts ...stats.Option) *stats.Engine {
	return stats.NewEngine(r, opts...)
}
