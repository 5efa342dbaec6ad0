// Package cli implements the lineup command-line interface.
//
// # Commands
//
//   - rank: rank the rows of a data file and print the table
//   - stats: summarize every column over the ranked rows
//   - dump: write the ranking layout as JSON, YAML, TOML or BSON
//   - convert: re-encode a layout dump, optionally checking it against data
//   - tree: draw the column tree with Graphviz
//   - browse: explore a ranking interactively
//   - cache: manage the result cache
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lineup/pkg/buildinfo"
	"github.com/matzehuels/lineup/pkg/cache"
	"github.com/matzehuels/lineup/pkg/observability"
	"github.com/matzehuels/lineup/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "lineup"

	// envRedisURL selects the Redis cache when --redis is not given.
	envRedisURL = "LINEUP_REDIS_URL"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	redisURL string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level the pipeline
// hooks report to the logger as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		h := &logHooks{logger: c.Logger}
		observability.SetRankingHooks(h)
		observability.SetStatsHooks(h)
		observability.SetCacheHooks(h)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Lineup ranks tabular data by weighted column hierarchies",
		Long:          `Lineup builds rankings over CSV and JSON data from a tree of columns. Numeric columns can be combined into weighted sums and aggregates, filtered, sorted and summarized, and the resulting layout can be stored and restored in several formats.`,
		Version:       buildinfo.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.redisURL, "redis", os.Getenv(envRedisURL), "cache results in Redis at this URL instead of on disk")

	root.AddCommand(c.rankCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.dumpCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache.Instrument(cc), nil, c.Logger), nil
}

func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if c.redisURL != "" {
		return cache.NewRedisCache(cache.RedisConfig{URL: c.redisURL})
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/lineup/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// rankFlags are the flags shared by the commands that build a ranking.
type rankFlags struct {
	config  string
	sort    string
	asc     bool
	desc    bool
	noCache bool
	refresh bool
}

func (f *rankFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "ranking definition file (TOML)")
	cmd.Flags().StringVarP(&f.sort, "sort", "s", "", "sort by column name or title")
	cmd.Flags().BoolVar(&f.asc, "asc", false, "sort ascending")
	cmd.Flags().BoolVar(&f.desc, "desc", false, "sort descending")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute cached results")
	cmd.MarkFlagsMutuallyExclusive("asc", "desc")
}

// options returns pipeline options for input.
func (f *rankFlags) options(input string) pipeline.Options {
	opts := pipeline.Options{
		Input:   input,
		Config:  f.config,
		Sort:    f.sort,
		Refresh: f.refresh,
	}
	switch {
	case f.asc:
		opts.Direction = pipeline.DirectionAsc
	case f.desc:
		opts.Direction = pipeline.DirectionDesc
	}
	return opts
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
