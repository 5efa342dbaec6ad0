package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lineup/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs the completion of an operation with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time rounded to milliseconds.
// Example output: "Ranked 42 rows (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// logHooks reports pipeline events at debug level.
type logHooks struct {
	observability.NoopRankingHooks
	logger *log.Logger
}

func (h *logHooks) OnRecomputeComplete(ranking string, visible int, d time.Duration) {
	h.logger.Debug("ranking recomputed", "ranking", ranking, "visible", visible, "duration", d)
}

func (h *logHooks) OnStatsComputed(_ context.Context, column string, rows int, d time.Duration) {
	h.logger.Debug("stats computed", "column", column, "rows", rows, "duration", d)
}

func (h *logHooks) OnStatsDiscarded(_ context.Context, column string, version, current uint64) {
	h.logger.Debug("stale stats discarded", "column", column, "version", version, "current", current)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}
