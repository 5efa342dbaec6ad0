package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	lio "github.com/matzehuels/lineup/pkg/io"
	"github.com/matzehuels/lineup/pkg/model"
	"github.com/matzehuels/lineup/pkg/pipeline"
)

// dumpCommand creates the dump command.
func (c *CLI) dumpCommand() *cobra.Command {
	var (
		flags  rankFlags
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "dump [data]",
		Short: "Write the ranking layout as JSON, YAML, TOML or BSON",
		Long: `Write the ranking layout built over a data file.

The dump records the column tree with widths, weights, filters and the sort
criterion. It references descriptors by column name and can be restored
against the same data with 'lineup convert --data'.

The format follows the extension of --output unless --format is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := outputFormat(format, output)
			if err != nil {
				return err
			}
			return c.runDump(cmd.Context(), cmd.OutOrStdout(), flags.options(args[0]), f, output)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: json (default), yaml, toml, bson")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")

	return cmd
}

func (c *CLI) runDump(ctx context.Context, w io.Writer, opts pipeline.Options, f lio.Format, output string) error {
	opts.Logger = c.Logger
	result, err := pipeline.Load(ctx, opts)
	if err != nil {
		return err
	}
	d := result.Ranking.Dump(result.Registry.ToDescRef)
	c.Logger.Debug("dumped ranking", "ranking", d.ID, "columns", len(d.Columns))
	if err := writeDump(w, d, f, output); err != nil {
		return err
	}
	if output != "" {
		printNextStep("Restore it with", fmt.Sprintf("lineup convert %s --data %s", output, opts.Input))
	}
	return nil
}

// outputFormat resolves the dump format from the flag or the output path.
func outputFormat(format, output string) (lio.Format, error) {
	switch {
	case format != "":
		return lio.ParseFormat(format)
	case output != "":
		return lio.FormatFromPath(output)
	}
	return lio.FormatJSON, nil
}

func writeDump(w io.Writer, d model.RankingDump, f lio.Format, output string) error {
	if output == "" {
		if f.Binary() {
			return fmt.Errorf("refusing to write %s to stdout, use --output", f)
		}
		return lio.WriteRanking(w, d, f)
	}
	if err := lio.WriteRankingFile(d, output, f); err != nil {
		return err
	}
	printSuccess("Wrote %d columns as %s", len(d.Columns), f)
	printFile(output)
	return nil
}
