package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lineup/pkg/pipeline"
)

// treeCommand creates the tree command.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		flags  rankFlags
		output string
		dot    bool
	)

	cmd := &cobra.Command{
		Use:   "tree [data]",
		Short: "Draw the column tree of a ranking",
		Long: `Draw the column tree of a ranking with Graphviz.

Composite columns link to their children, with edge labels for weights.
Hidden columns are dashed and the sort column is bold. The output is SVG
unless --dot is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTree(cmd.Context(), cmd.OutOrStdout(), flags.options(args[0]), output, dot)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&dot, "dot", false, "emit Graphviz DOT instead of SVG")

	return cmd
}

func (c *CLI) runTree(ctx context.Context, w io.Writer, opts pipeline.Options, output string, dot bool) error {
	opts.Logger = c.Logger
	result, err := pipeline.Load(ctx, opts)
	if err != nil {
		return err
	}

	format := pipeline.FormatSVG
	if dot {
		format = pipeline.FormatDOT
	}
	artifacts, err := pipeline.Render(ctx, nil, result.Ranking, []string{format})
	if err != nil {
		return err
	}

	if output == "" {
		_, err := w.Write(artifacts[format])
		return err
	}
	if err := os.WriteFile(output, artifacts[format], 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printSuccess("Drew %d columns", len(result.Ranking.Flat()))
	printFile(output)
	return nil
}
