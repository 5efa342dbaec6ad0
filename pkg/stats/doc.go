// Package stats computes per-column summaries over a ranking's current
// order: mean, median and extrema with a histogram for numeric columns, and
// per-category counts for categorical columns.
//
// An [Engine] is bound to one [model.Ranking]. Results are cached by column
// identifier and the whole cache is dropped every time the ranking's order
// changes. Summaries are returned as [async.Deferred] handles: values are
// read from the rows on the caller's goroutine, aggregation runs on a
// worker, and a result that finishes after the order moved on is handed to
// its caller but never stored.
//
//	eng := stats.NewEngine(ranking, stats.WithBins(20))
//	defer eng.Close()
//	sum, err := eng.Stats(ctx, col).Wait(ctx)
package stats
