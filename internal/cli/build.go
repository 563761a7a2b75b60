package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pairtree/pkg/pairs"
	"github.com/matzehuels/pairtree/pkg/pipeline"
	"github.com/matzehuels/pairtree/pkg/treeio"
)

// buildOpts holds the command-line flags for the build command.
type buildOpts struct {
	strategy string // closure or direct
	ids      string // id function: value or uuid
	format   string // pair file format, detected from the extension when empty
	output   string // element records file, stdout when empty
	noCache  bool
	refresh  bool
}

// buildCommand creates the build command, which reconstructs a tree from a
// pair file and writes its element records.
func (c *CLI) buildCommand() *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build <pairs-file>",
		Short: "Reconstruct a tree from a pair file",
		Long: `Reconstruct a tree from a pair file and write it as element records.

Pair files are JSON ([{"parent": "A", "child": "B"}]), TOML ([[pair]] tables)
or text (one "A -> B" per line). Use "-" to read text from stdin.

Strategies:
  closure  every ancestor/descendant relationship is listed (default)
  direct   only parent/child edges are listed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.strategy == "" {
				opts.strategy = c.Config.Build.Strategy
			}
			if opts.ids == "" {
				opts.ids = c.Config.Build.IDs
			}
			return c.runBuild(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.strategy, "strategy", "s", "", "reconstruction strategy: closure (default), direct")
	cmd.Flags().StringVar(&opts.ids, "ids", "", "element ids: value (default), uuid")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "pair file format: json, toml, text (default: from extension)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "rebuild even if cached")

	return cmd
}

func (c *CLI) runBuild(ctx context.Context, stdout io.Writer, path string, opts buildOpts) error {
	prog := newProgress(c.Logger)

	ps, err := readPairs(path, opts.format)
	if err != nil {
		return err
	}
	c.Logger.Debug("read pairs", "file", path, "pairs", len(ps))

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := runner.Build(ctx, ps, pipeline.Options{
		Strategy: opts.strategy,
		IDs:      opts.ids,
		Refresh:  opts.refresh,
		Logger:   c.Logger,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built %d nodes from %d pairs", res.Stats.NodeCount, res.Stats.PairCount))

	if opts.output == "" {
		return treeio.WriteJSON(res.Elements, stdout)
	}
	if err := treeio.ExportJSON(res.Elements, opts.output); err != nil {
		return err
	}
	printSuccess("Tree built")
	printStats(res.Stats.NodeCount, len(res.Leaves), res.CacheHit)
	printFile(opts.output)
	printNextStep("Show it", "pairtree show "+opts.output)
	return nil
}

// readPairs reads a pair file; "-" reads text pairs from stdin.
func readPairs(path, format string) ([]pairs.Pair[string], error) {
	if path == "-" {
		if format == "" {
			format = string(pairs.FormatText)
		}
		return pairs.Decode(os.Stdin, pairs.Format(format))
	}
	if format == "" {
		return pairs.Load(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return pairs.Decode(bytes.NewReader(data), pairs.Format(format))
}
