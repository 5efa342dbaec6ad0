package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lineup/pkg/pipeline"
	"github.com/matzehuels/lineup/pkg/stats"
)

// statsCommand creates the stats command.
func (c *CLI) statsCommand() *cobra.Command {
	var (
		flags  rankFlags
		bins   int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "stats [data]",
		Short: "Summarize every column over the ranked rows",
		Long: `Summarize every column over the rows passing the ranking's filters.

Number columns and numeric aggregates report mean, median, extrema and a
histogram over their score range. Categorical columns report the count of
each category.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.options(args[0])
			opts.Stats = true
			opts.Bins = bins
			return c.runStats(cmd.Context(), cmd.OutOrStdout(), opts, asJSON, flags.noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&bins, "bins", pipeline.DefaultBins, "histogram bins")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print summaries as JSON")

	return cmd
}

func (c *CLI) runStats(ctx context.Context, w io.Writer, opts pipeline.Options, asJSON, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}

	if asJSON {
		data, err := json.MarshalIndent(result.Summaries, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}

	for i, s := range result.Summaries {
		if i > 0 {
			fmt.Fprintln(w)
		}
		writeSummary(w, s)
	}
	return nil
}

// writeSummary prints one column summary as aligned key-value lines.
func writeSummary(w io.Writer, s *stats.Summary) {
	fmt.Fprintf(w, "%s %s\n", StyleTitle.Render(s.Title), StyleDim.Render(s.Kind))
	kv := func(k, v string) {
		fmt.Fprintf(w, "  %-10s %s\n", k, StyleValue.Render(v))
	}
	kv("rows", strconv.Itoa(s.Rows))
	kv("missing", strconv.Itoa(s.Missing))

	if n := s.Number; n != nil {
		kv("mean", num(n.Mean))
		kv("median", num(n.Median))
		kv("min", num(n.Min))
		kv("max", num(n.Max))
		kv("stddev", num(n.StdDev))
		if len(n.Edges) > 1 {
			kv("histogram", fmt.Sprintf("%s %s %s", num(n.Edges[0]), StyleNumber.Render(sparkline(n.Bins)), num(n.Edges[len(n.Edges)-1])))
		}
	}
	if len(s.Categories) > 0 {
		parts := make([]string, len(s.Categories))
		for i, cat := range s.Categories {
			parts[i] = fmt.Sprintf("%s=%d", cat.Label, cat.Count)
		}
		kv("categories", strings.Join(parts, "  "))
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}
