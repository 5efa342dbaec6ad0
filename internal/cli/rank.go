package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lineup/pkg/pipeline"
)

const formatTable = "table"

// rankCommand creates the rank command.
func (c *CLI) rankCommand() *cobra.Command {
	var (
		flags  rankFlags
		limit  int
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "rank [data]",
		Short: "Rank the rows of a CSV, TSV or JSON file",
		Long: `Rank the rows of a CSV, TSV or JSON file.

Column types are inferred from the data unless a ranking definition is given
with --config. Without a definition every column is shown in file order
behind a rank column.

Ranked tables are cached locally; --refresh recomputes them.`,
		Example: `  lineup rank cars.csv --sort mpg --limit 10
  lineup rank cars.csv -c cars.toml -f json -o ranked.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.options(args[0])
			opts.Limit = limit
			if format != formatTable {
				if err := pipeline.ValidateFormat(format); err != nil {
					return err
				}
				opts.Formats = []string{format}
			}
			return c.runRank(cmd.Context(), cmd.OutOrStdout(), opts, format, output, flags.noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n rows (0 for all)")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, json, csv")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")

	return cmd
}

func (c *CLI) runRank(ctx context.Context, w io.Writer, opts pipeline.Options, format, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Ranking "+opts.Input+"...")
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Ranked %d of %d rows", result.Stats.Ranked, result.Stats.Rows))

	var data []byte
	if format == formatTable {
		data = []byte(renderTable(result.Table) + "\n")
	} else {
		data = result.Artifacts[format]
	}

	if output == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printSuccess("Ranked %s", opts.Input)
	printRunStats(result.Stats.Rows, result.Stats.Ranked, result.CacheInfo.RankHit)
	printFile(output)
	return nil
}
