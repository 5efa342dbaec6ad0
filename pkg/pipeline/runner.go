package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	json "github.com/goccy/go-json"

	"github.com/matzehuels/lineup/pkg/cache"
	"github.com/matzehuels/lineup/pkg/stats"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → rank → stats → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	// Stage 1: Load
	result, err := Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	r.Logger.Info("loaded data",
		"rows", result.Stats.Rows,
		"columns", len(result.Data.Columns()),
		"duration", result.Stats.LoadTime)

	// Stage 2: Rank
	rankStart := time.Now()
	table, hit, err := r.RankWithCacheInfo(ctx, result, opts)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}
	result.Table = table
	result.Stats.Ranked = table.Total
	result.Stats.RankTime = time.Since(rankStart)
	result.CacheInfo.RankHit = hit

	r.Logger.Info("ranked rows",
		"ranked", table.Total,
		"shown", len(table.Rows),
		"cached", hit,
		"duration", result.Stats.RankTime)

	// Stage 3: Stats
	if opts.Stats {
		statsStart := time.Now()
		sums, hit, err := r.StatsWithCacheInfo(ctx, result, opts)
		if err != nil {
			return nil, fmt.Errorf("stats: %w", err)
		}
		result.Summaries = sums
		result.Stats.StatsTime = time.Since(statsStart)
		result.CacheInfo.StatsHit = hit

		r.Logger.Info("summarized columns",
			"columns", len(sums),
			"cached", hit,
			"duration", result.Stats.StatsTime)
	}

	// Stage 4: Render
	if len(opts.Formats) > 0 {
		renderStart := time.Now()
		artifacts, err := Render(ctx, table, result.Ranking, opts.Formats)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		result.Artifacts = artifacts
		result.Stats.RenderTime = time.Since(renderStart)

		r.Logger.Info("rendered outputs",
			"formats", opts.Formats,
			"duration", result.Stats.RenderTime)
	}

	return result, nil
}

// RankWithCacheInfo builds the ranked table of res with caching and
// returns cache hit info.
func (r *Runner) RankWithCacheInfo(ctx context.Context, res *Result, opts Options) (*Table, bool, error) {
	if err := opts.ValidateForRank(); err != nil {
		return nil, false, err
	}
	key := r.Keyer.RankingKey(res.DataHash, res.ConfigHash, opts.RankingKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var t Table
			if err := json.Unmarshal(data, &t); err == nil {
				return &t, true, nil
			}
		} else if err != nil {
			r.Logger.Warn("cache read failed", "key", key, "error", err)
		}
	}

	t := BuildTable(res.Ranking, opts.Padding, opts.Limit)
	if data, err := json.Marshal(t); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLRanking); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "error", err)
		}
	}
	return t, false, nil
}

// StatsWithCacheInfo summarizes every supported column of res with caching
// and returns cache hit info. The cache key includes the fingerprint of the
// current order, so a changed filter or sort never reads stale summaries.
func (r *Runner) StatsWithCacheInfo(ctx context.Context, res *Result, opts Options) ([]*stats.Summary, bool, error) {
	if opts.Bins <= 0 {
		opts.Bins = DefaultBins
	}
	order := stats.Fingerprint(res.Ranking.Order())
	key := r.Keyer.StatsKey(res.DataHash, res.ConfigHash, order, opts.Bins)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var sums []*stats.Summary
			if err := json.Unmarshal(data, &sums); err == nil {
				return sums, true, nil
			}
		}
	}

	engine := res.Data.StatsFor(res.Ranking, stats.WithBins(opts.Bins), stats.WithLogger(r.Logger))
	defer engine.Close()
	sums, err := engine.All(ctx)
	if err != nil {
		return nil, false, err
	}
	if data, err := json.Marshal(sums); err == nil {
		_ = r.Cache.Set(ctx, key, data, cache.TTLStats)
	}
	return sums, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
