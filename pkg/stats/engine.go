package stats

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/lineup/pkg/async"
	"github.com/matzehuels/lineup/pkg/errors"
	"github.com/matzehuels/lineup/pkg/model"
	"github.com/matzehuels/lineup/pkg/observability"
)

// Engine computes and caches column summaries for one ranking.
//
// Stats, All, Invalidate and Close must be called from the goroutine that
// owns the ranking. Workers only touch the cache.
type Engine struct {
	ranking *model.Ranking
	bins    int
	logger  *log.Logger
	off     func()

	mu      sync.Mutex
	version uint64
	entries map[string]*entry

	// beforePublish runs on the worker after aggregation. Tests use it to
	// change the order while a summary is in flight.
	beforePublish func()
}

type entry struct {
	version uint64
	result  *async.Deferred[*Summary]
}

// Option configures an Engine.
type Option func(*Engine)

// WithBins sets the histogram resolution. Values below 1 are ignored.
func WithBins(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.bins = n
		}
	}
}

// WithLogger sets the logger stale results are reported to.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine binds an engine to r. The cache is cleared whenever r emits an
// order event.
func NewEngine(r *model.Ranking, opts ...Option) *Engine {
	e := &Engine{
		ranking: r,
		bins:    DefaultBins,
		logger:  log.New(io.Discard),
		version: r.Version(),
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.off = r.On(model.EventOrder, func(model.Event) { e.Invalidate() })
	return e
}

// Close detaches the engine from its ranking.
func (e *Engine) Close() {
	if e.off != nil {
		e.off()
		e.off = nil
	}
}

// Bins returns the histogram resolution.
func (e *Engine) Bins() int { return e.bins }

// Invalidate drops every cached summary. In-flight results are discarded
// when they finish.
func (e *Engine) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.version = e.ranking.Version()
	clear(e.entries)
}

// Cached returns the stored summary handle of col, if any.
func (e *Engine) Cached(col model.Column) (*async.Deferred[*Summary], bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	en, ok := e.entries[col.ID()]
	if !ok || en.version != e.version {
		return nil, false
	}
	return en.result, true
}

// Supported reports whether summaries can be computed for col.
func Supported(col model.Column) bool {
	switch col.(type) {
	case *model.CategoricalColumn, model.NumberColumnLike:
		return true
	}
	return false
}

// Stats returns the summary of col over the ranking's current order,
// computing it when it is not cached. Unsupported columns and columns of
// another ranking yield a rejected handle.
func (e *Engine) Stats(ctx context.Context, col model.Column) *async.Deferred[*Summary] {
	if col == nil || col.Ranking() != e.ranking {
		return async.Rejected[*Summary](errors.New(errors.ErrCodeNotInRanking, "column is not part of ranking %s", e.ranking.ID()))
	}
	if !Supported(col) {
		return async.Rejected[*Summary](errors.New(errors.ErrCodeUnsupported, "no statistics for %s columns", col.Kind()))
	}

	// Order may recompute, which clears the cache through the order event.
	order := e.ranking.Order()
	if d, ok := e.Cached(col); ok {
		return d
	}

	job := e.extract(col, order)
	d := async.New[*Summary]()
	e.mu.Lock()
	version := e.version
	e.entries[col.ID()] = &entry{version: version, result: d}
	e.mu.Unlock()

	go e.run(ctx, job, version, d)
	return d
}

// All computes the summary of every supported column of the ranking,
// nested columns included, and returns them in flat order.
func (e *Engine) All(ctx context.Context) ([]*Summary, error) {
	var (
		cols    []model.Column
		pending []*async.Deferred[*Summary]
	)
	for _, c := range e.ranking.Flat() {
		if Supported(c) {
			cols = append(cols, c)
			pending = append(pending, e.Stats(ctx, c))
		}
	}

	out := make([]*Summary, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	for i, d := range pending {
		g.Go(func() error {
			s, err := d.Wait(gctx)
			if err != nil {
				return errors.Wrap(errors.GetCodeOr(err, errors.ErrCodeInternal), err, "statistics of %s", cols[i].Title())
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// job is a snapshot of the values of one column over one order. It owns its
// slices, so the worker never reads the column tree.
type job struct {
	summary    Summary
	numbers    []float64
	domain     *[2]float64
	names      []string
	categories []category
	bins       int
}

func (e *Engine) extract(col model.Column, order []int) *job {
	rows := e.ranking.Rows()
	j := &job{
		summary: Summary{
			Column:  col.ID(),
			Title:   col.Title(),
			Kind:    string(col.Kind()),
			Version: e.ranking.Version(),
			Order:   Fingerprint(order),
			Rows:    len(order),
		},
		bins: e.bins,
	}
	switch c := col.(type) {
	case *model.CategoricalColumn:
		j.names = make([]string, len(order))
		for i, idx := range order {
			j.names[i] = c.Category(rows.Row(idx), idx)
		}
		for _, cat := range c.Categories() {
			j.categories = append(j.categories, category{name: cat.Name, label: cat.DisplayLabel()})
		}
	case model.NumberColumnLike:
		j.numbers = make([]float64, len(order))
		for i, idx := range order {
			j.numbers[i] = c.Number(rows.Row(idx), idx)
		}
		j.domain = declaredDomain(col)
	}
	return j
}

// declaredDomain returns the score range of a mapped number column. Other
// columns use their observed extrema.
func declaredDomain(col model.Column) *[2]float64 {
	nc, ok := col.(*model.NumberColumn)
	if !ok || nc.Mapping().IsIdentity() {
		return nil
	}
	r := nc.Mapping().Range
	return &r
}

func (j *job) aggregate() *Summary {
	s := j.summary
	if j.numbers != nil {
		s.Number, s.Count = summarizeNumbers(j.numbers, j.domain, j.bins)
	} else {
		s.Categories, s.Missing = countCategories(j.names, j.categories)
		s.Count = s.Rows - s.Missing
	}
	if s.Number != nil {
		s.Missing = s.Rows - s.Count
	}
	return &s
}

func (e *Engine) run(ctx context.Context, j *job, version uint64, d *async.Deferred[*Summary]) {
	if err := ctx.Err(); err != nil {
		e.drop(j.summary.Column, d)
		d.Reject(err)
		return
	}

	start := time.Now()
	s := j.aggregate()
	if e.beforePublish != nil {
		e.beforePublish()
	}

	e.mu.Lock()
	current := e.version
	stale := current != version
	if stale {
		if en, ok := e.entries[s.Column]; ok && en.result == d {
			delete(e.entries, s.Column)
		}
	}
	e.mu.Unlock()

	if stale {
		e.logger.Debug("discarded stale statistics", "column", s.Title, "version", version, "current", current)
		observability.Stats().OnStatsDiscarded(ctx, s.Column, version, current)
	} else {
		observability.Stats().OnStatsComputed(ctx, s.Column, s.Rows, time.Since(start))
	}
	d.Resolve(s)
}

func (e *Engine) drop(id string, d *async.Deferred[*Summary]) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if en, ok := e.entries[id]; ok && en.result == d {
		delete(e.entries, id)
	}
}
