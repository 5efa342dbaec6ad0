// Package pipeline provides the load → rank → stats → render pipeline used
// by the lineup CLI.
//
// The pipeline consists of four stages:
//
//  1. Load: read a CSV, TSV or JSON data file and infer column descriptors
//  2. Rank: build the ranking from a definition file and compute its order
//  3. Stats: summarize every column over the ranked rows
//  4. Render: encode the ranked table in the requested formats
//
// Rank and stats results are cached under keys derived from the content
// hashes of the data and definition files.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:   "cars.csv",
//	    Config:  "cars.toml",
//	    Formats: []string{"json"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Stdout.Write(result.Artifacts["json"])
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lineup/pkg/cache"
	"github.com/matzehuels/lineup/pkg/errors"
	"github.com/matzehuels/lineup/pkg/model"
	"github.com/matzehuels/lineup/pkg/provider"
	"github.com/matzehuels/lineup/pkg/stats"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultPadding is the gap between flattened columns.
	DefaultPadding = 5.0

	// DefaultBins is the histogram bin count of number summaries.
	DefaultBins = stats.DefaultBins
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatCSV:  true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// Sort directions.
const (
	DirectionDefault = ""
	DirectionAsc     = "asc"
	DirectionDesc    = "desc"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
type Options struct {
	// Load options
	Input      string `json:"input"`
	SampleSize int    `json:"sample_size,omitempty"`

	// Rank options
	Config    string  `json:"config,omitempty"`
	Sort      string  `json:"sort,omitempty"`      // column name, title or id
	Direction string  `json:"direction,omitempty"` // asc, desc or the column default
	Limit     int     `json:"limit,omitempty"`     // 0 keeps every ranked row
	Padding   float64 `json:"padding,omitempty"`
	Refresh   bool    `json:"refresh,omitempty"`

	// Stats options
	Stats bool `json:"stats,omitempty"`
	Bins  int  `json:"bins,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Data is the loaded row provider.
	Data *provider.Local

	// Ranking is the ranking built over Data.
	Ranking *model.Ranking

	// Registry resolves the descriptors of Ranking.
	Registry *model.Registry

	// DataHash and ConfigHash are the content hashes of the inputs.
	DataHash   string
	ConfigHash string

	// Table holds the ranked rows.
	Table *Table

	// Summaries holds one entry per summarized column when Options.Stats
	// is set.
	Summaries []*stats.Summary

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Rows       int
	Ranked     int
	LoadTime   time.Duration
	RankTime   time.Duration
	StatsTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	RankHit  bool
	StatsHit bool
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(formatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDirection checks that a sort direction is valid.
func ValidateDirection(dir string) error {
	switch dir {
	case DirectionDefault, DirectionAsc, DirectionDesc:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidInput, "invalid direction: %q (must be asc or desc)", dir)
}

func formatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForRank(); err != nil {
		return err
	}
	if o.Bins <= 0 {
		o.Bins = DefaultBins
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks the fields needed to load the data.
func (o *Options) ValidateForLoad() error {
	if o.Input == "" {
		return errors.New(errors.ErrCodeInvalidInput, "input is required")
	}
	if o.SampleSize < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "sample size must not be negative")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ValidateForRank checks the ranking fields and applies their defaults.
func (o *Options) ValidateForRank() error {
	if o.Limit < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "limit must not be negative")
	}
	if o.Padding == 0 {
		o.Padding = DefaultPadding
	}
	if o.Padding < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "padding must not be negative")
	}
	return ValidateDirection(o.Direction)
}

// InferOptions returns the descriptor inference options.
func (o *Options) InferOptions() provider.InferOptions {
	return provider.InferOptions{SampleSize: o.SampleSize}
}

// RankingKeyOpts returns cache key options for the ranked table.
func (o *Options) RankingKeyOpts() cache.RankingKeyOpts {
	return cache.RankingKeyOpts{
		Sort:      o.Sort,
		Direction: o.Direction,
		Limit:     o.Limit,
		Padding:   o.Padding,
	}
}
