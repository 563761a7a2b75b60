package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pairtree/pkg/pairs"
)

// pairsCommand writes a tree back out as a pair file, either as its direct
// edges or as its full closure.
func (c *CLI) pairsCommand() *cobra.Command {
	var (
		closure bool
		format  string
		output  string
		ids     string
	)

	cmd := &cobra.Command{
		Use:   "pairs <elements-file>",
		Short: "Write a tree as a pair file",
		Long: `Write a tree as a pair file that "pairtree build" reads back.

By default only the parent/child edges are written (build with --strategy
direct). With --closure every ancestor/descendant pair is written (build with
the default closure strategy).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.loadTree(cmd.Context(), args[0], ids)
			if err != nil {
				return err
			}

			ps := pairs.Edges(res.Tree)
			if closure {
				ps = pairs.Closure(res.Tree)
			}

			f := pairs.Format(format)
			if f == "" {
				f = pairs.FormatText
				if output != "" {
					f = pairs.DetectFormat(output)
				}
			}

			var buf bytes.Buffer
			if err := pairs.Encode(&buf, ps, f); err != nil {
				return err
			}
			if output == "" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Wrote %d pairs", len(ps))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().BoolVar(&closure, "closure", false, "write every ancestor/descendant pair")
	cmd.Flags().StringVarP(&format, "format", "f", "", "pair file format: json, toml, text (default: from -o extension, text on stdout)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&ids, "ids", "", "id function the records were exported with: value (default), uuid")
	return cmd
}
