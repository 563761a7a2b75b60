package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pairtree/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file, derived from the input name when empty
	dot      bool   // write DOT source instead of SVG
	detailed bool   // add depth and child counts to labels
	ids      string
	noCache  bool
}

// renderCommand draws an element records file as a node-link diagram.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <elements-file>",
		Short: "Render a tree to SVG (or DOT)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with .svg or .dot)")
	cmd.Flags().BoolVar(&opts.dot, "dot", false, "write Graphviz DOT source instead of SVG")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show depth and child count in node labels")
	cmd.Flags().StringVar(&opts.ids, "ids", "", "id function the records were exported with: value (default), uuid")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, path string, opts renderOpts) error {
	res, err := c.loadTree(ctx, path, opts.ids)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	ropts := pipeline.RenderOptions{Format: pipeline.FormatSVG, Detailed: opts.detailed}
	if opts.dot {
		ropts.Format = pipeline.FormatDOT
	}

	var (
		data   []byte
		cached bool
	)
	err = withSpinner(ctx, "Rendering "+ropts.Format, func(ctx context.Context) error {
		var err error
		data, cached, err = runner.Render(ctx, res.Tree, ropts)
		return err
	})
	if err != nil {
		return err
	}

	out := opts.output
	if out == "" {
		out = outputPath(path, ropts.Format)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}

	printSuccess("Rendered %s", ropts.Format)
	printStats(res.Stats.NodeCount, len(res.Leaves), cached)
	printFile(out)
	return nil
}

// outputPath replaces the extension of input with format. Stdin renders to
// tree.<format> in the working directory.
func outputPath(input, format string) string {
	if input == "-" {
		return "tree." + format
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
}
