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

type convertOpts struct {
	format string
	output string
	data   string
	config string
}

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	var opts convertOpts

	cmd := &cobra.Command{
		Use:   "convert [dump]",
		Short: "Re-encode a ranking dump in another format",
		Long: `Re-encode a ranking dump in another format.

The input format follows the extension of the dump. With --data the dump is
restored against a data file first: columns whose descriptors are missing
from the data are replaced by placeholders and reported, and the restored
layout is written.`,
		Example: `  lineup convert ranking.json -f yaml
  lineup convert ranking.bson -o ranking.toml --data cars.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: json (default), yaml, toml, bson")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().StringVar(&opts.data, "data", "", "restore the dump against this data file")
	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "ranking definition providing extra descriptors (with --data)")

	return cmd
}

func (c *CLI) runConvert(ctx context.Context, w io.Writer, input string, opts convertOpts) error {
	to, err := outputFormat(opts.format, opts.output)
	if err != nil {
		return err
	}
	d, err := lio.ImportRanking(input)
	if err != nil {
		return err
	}

	if opts.data != "" {
		if d, err = c.restore(ctx, d, opts); err != nil {
			return err
		}
	}
	return writeDump(w, d, to, opts.output)
}

// restore rebuilds d over the data file and dumps the result.
func (c *CLI) restore(ctx context.Context, d model.RankingDump, opts convertOpts) (model.RankingDump, error) {
	loaded, err := pipeline.Load(ctx, pipeline.Options{Input: opts.data, Config: opts.config, Logger: c.Logger})
	if err != nil {
		return d, err
	}
	r, err := model.RestoreRanking(d, loaded.Data, loaded.Registry, model.PlaceholderRecover, model.WithLogger(c.Logger))
	if err != nil {
		return d, fmt.Errorf("restore %s: %w", d.ID, err)
	}

	for _, col := range placeholders(r) {
		printWarning("%s could not be restored", col.Title())
	}
	c.Logger.Debug("restored ranking", "ranking", r.ID(), "rows", len(r.Order()))
	return r.Dump(loaded.Registry.ToDescRef), nil
}

// placeholders returns the columns of r standing in for unrestorable ones.
func placeholders(r *model.Ranking) []model.Column {
	var out []model.Column
	for _, col := range r.Flat() {
		if l, ok := col.(interface{ IsLoaded() bool }); ok && !l.IsLoaded() {
			out = append(out, col)
		}
	}
	return out
}
