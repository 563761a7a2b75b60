package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/pairtree/pkg/errors"
	"github.com/matzehuels/pairtree/pkg/pipeline"
	"github.com/matzehuels/pairtree/pkg/tree"
	"github.com/matzehuels/pairtree/pkg/treeio"
)

// loadTree imports the element records file at path; "-" reads stdin.
func (c *CLI) loadTree(ctx context.Context, path, ids string) (*pipeline.Result, error) {
	var (
		elements []treeio.Element[string, string]
		err      error
	)
	if path == "-" {
		elements, err = treeio.ReadJSON[string, string](os.Stdin)
	} else {
		elements, err = treeio.ImportJSON[string, string](path)
	}
	if err != nil {
		return nil, err
	}
	if ids == "" {
		ids = c.Config.Build.IDs
	}
	return pipeline.NewRunner(nil, c.Logger).Import(ctx, elements, pipeline.Options{IDs: ids, Logger: c.Logger})
}

// showCommand prints an element records file as a tree.
func (c *CLI) showCommand() *cobra.Command {
	var (
		plain bool
		ids   string
	)

	cmd := &cobra.Command{
		Use:   "show <elements-file>",
		Short: "Print a tree from an element records file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.loadTree(cmd.Context(), args[0], ids)
			if err != nil {
				return err
			}
			return writeTree(cmd.OutOrStdout(), res.Tree, plain)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print one TreeNode[...] line per node")
	cmd.Flags().StringVar(&ids, "ids", "", "id function the records were exported with: value (default), uuid")
	return cmd
}

// leavesCommand prints the bottom-level successors of the root, or of each
// given value in turn, one per line.
func (c *CLI) leavesCommand() *cobra.Command {
	var ids string

	cmd := &cobra.Command{
		Use:   "leaves <elements-file> [value...]",
		Short: "List the leaves below the root or below values",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.loadTree(cmd.Context(), args[0], ids)
			if err != nil {
				return err
			}
			values := args[1:]
			if len(values) == 0 {
				return printLeaves(cmd, res.Tree)
			}

			index := res.Tree.Index()
			nodes := make([]*tree.Node[string], len(values))
			for i, v := range values {
				n, ok := index[v]
				if !ok {
					return errs.New(errs.ErrCodeNotFound, "value %q is not in the tree", v)
				}
				nodes[i] = n
			}
			for _, n := range nodes {
				if err := printLeaves(cmd, n); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&ids, "ids", "", "id function the records were exported with: value (default), uuid")
	return cmd
}

func printLeaves(cmd *cobra.Command, n *tree.Node[string]) error {
	for _, v := range n.AllBottomLevelSuccessors() {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), v); err != nil {
			return err
		}
	}
	return nil
}
