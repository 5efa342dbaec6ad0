// Package observability provides hooks for metrics, tracing, and logging.
//
// Consumers register hooks at startup to receive events about ranking
// recomputation, statistics aggregation, pipeline stages and cache
// operations, without the library depending on any particular backend.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetRankingHooks(&myRankingHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Ranking().OnRecomputeStart(id, rows)
//	// ... filter and sort ...
//	observability.Ranking().OnRecomputeComplete(id, visible, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Ranking Hooks
// =============================================================================

// RankingHooks receives events from ranking order recomputation. The
// recompute step is synchronous and runs on the ranking's owner, so these
// hooks carry no context.
type RankingHooks interface {
	// OnRecomputeStart records the start of a recompute over rows rows.
	OnRecomputeStart(rankingID string, rows int)

	// OnRecomputeComplete records the number of rows that passed all
	// filters and how long filtering and sorting took.
	OnRecomputeComplete(rankingID string, visible int, duration time.Duration)
}

// =============================================================================
// Stats Hooks
// =============================================================================

// StatsHooks receives events from the statistics engine.
type StatsHooks interface {
	// OnStatsComputed records a summary stored in the cache.
	OnStatsComputed(ctx context.Context, columnID string, rows int, duration time.Duration)

	// OnStatsDiscarded records a summary dropped because the ranking order
	// changed while it was being computed.
	OnStatsDiscarded(ctx context.Context, columnID string, version, current uint64)
}

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the load/rank/render pipeline.
type PipelineHooks interface {
	// Load events
	OnLoadStart(ctx context.Context, source string)
	OnLoadComplete(ctx context.Context, source string, rows int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, format string)
	OnRenderComplete(ctx context.Context, format string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopRankingHooks is a no-op implementation of RankingHooks.
type NoopRankingHooks struct{}

func (NoopRankingHooks) OnRecomputeStart(string, int)                   {}
func (NoopRankingHooks) OnRecomputeComplete(string, int, time.Duration) {}

// NoopStatsHooks is a no-op implementation of StatsHooks.
type NoopStatsHooks struct{}

func (NoopStatsHooks) OnStatsComputed(context.Context, string, int, time.Duration) {}
func (NoopStatsHooks) OnStatsDiscarded(context.Context, string, uint64, uint64)    {}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string)                             {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, time.Duration, error)    {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	rankingHooks  RankingHooks  = NoopRankingHooks{}
	statsHooks    StatsHooks    = NoopStatsHooks{}
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetRankingHooks registers custom ranking hooks.
// This should be called once at application startup before any ranking is used.
func SetRankingHooks(h RankingHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		rankingHooks = h
	}
}

// SetStatsHooks registers custom statistics hooks.
func SetStatsHooks(h StatsHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		statsHooks = h
	}
}

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Ranking returns the registered ranking hooks.
func Ranking() RankingHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return rankingHooks
}

// Stats returns the registered statistics hooks.
func Stats() StatsHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return statsHooks
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	rankingHooks = NoopRankingHooks{}
	statsHooks = NoopStatsHooks{}
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
}
