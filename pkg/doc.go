// Package pkg provides the libraries behind Lineup, a ranking engine for
// tabular data.
//
// # Overview
//
// A ranking is an ordered list of rows computed from a tree of columns.
// Value columns read one field of a row; composite columns combine their
// children into weighted sums and aggregates. Any column can filter rows,
// and one column drives the sort order. The pkg directory is organized as:
//
//  1. [model] - Columns, rankings, descriptors, events and dump/restore
//  2. [stats] - Column summaries computed on worker goroutines
//  3. [provider] - CSV and JSON row sources with descriptor inference
//  4. [config] - TOML ranking definitions
//  5. [io] - Dump codecs (JSON, YAML, TOML, BSON)
//  6. [pipeline] - Orchestration (load → rank → summarize → render)
//  7. [cache] - File, Redis and null caches for pipeline results
//
// # Architecture
//
// The typical data flow through Lineup:
//
//	CSV/JSON file + ranking.toml
//	         ↓
//	    [provider] package (rows + inferred descriptors)
//	         ↓
//	    [config] package (column tree)
//	         ↓
//	    [model] package (filter, sort, rank)
//	         ↓
//	    [stats] package (summaries)
//	         ↓
//	    table/JSON/CSV/DOT/SVG output
//
// # Quick Start
//
//	data, _ := provider.LoadFile("scores.csv", provider.InferOptions{})
//	reg, _ := data.Registry()
//
//	r := model.NewRanking(data)
//	rank, _ := reg.New("rank")
//	score, _ := reg.New("score")
//	r.Push(rank)
//	r.Push(score)
//	r.SortBy(score, false)
//
//	for _, idx := range r.Order() {
//	    fmt.Println(r.RankOf(idx), score.Label(data.Row(idx), idx))
//	}
//
// # Supporting Packages
//
// [async] - Deferred results and a bounded worker pool.
//
// [errors] - Coded errors shared by all packages.
//
// [observability] - Hooks for ranking recomputes, stats, cache and pipeline
// events. All hooks default to no-ops.
//
// [buildinfo] - Version information injected at link time.
//
// [model]: https://pkg.go.dev/github.com/matzehuels/lineup/pkg/model
// [stats]: https://pkg.go.dev/github.com/matzehuels/lineup/pkg/stats
// [provider]: https://pkg.go.dev/github.com/matzehuels/lineup/pkg/provider
// [config]: https://pkg.go.dev/github.com/matzehuels/lineup/pkg/config
// [io]: https://pkg.go.dev/github.com/matzehuels/lineup/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/lineup/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/lineup/pkg/cache
// [async]: https://pkg.go.dev/github.com/matzehuels/lineup/pkg/async
// [errors]: https://pkg.go.dev/github.com/matzehuels/lineup/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/lineup/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/lineup/pkg/buildinfo
package pkg
