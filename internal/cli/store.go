package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pairtree/pkg/pipeline"
	"github.com/matzehuels/pairtree/pkg/store"
	"github.com/matzehuels/pairtree/pkg/treeio"
)

// storeCommand groups the tree store subcommands.
func (c *CLI) storeCommand() *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Push, pull, list and delete stored trees",
		Long: `Push, pull, list and delete stored trees.

Connection settings come from the config file or from PAIRTREE_MONGO_URI and
PAIRTREE_POSTGRES_URL.`,
	}
	cmd.PersistentFlags().StringVar(&backend, "backend", "", "store backend: mongo, postgres (default from config)")

	open := func(ctx context.Context) (store.Store, error) {
		var s store.Store
		// Connections outlive the spinner, so they get the command context.
		err := withSpinner(ctx, "Connecting to store", func(context.Context) error {
			var err error
			s, err = c.newStore(ctx, backend)
			return err
		})
		return s, err
	}

	cmd.AddCommand(c.storePushCommand(open))
	cmd.AddCommand(c.storePullCommand(open))
	cmd.AddCommand(c.storeDeleteCommand(open))
	cmd.AddCommand(c.storeListCommand(open))
	return cmd
}

type storeOpener func(ctx context.Context) (store.Store, error)

func (c *CLI) storePushCommand(open storeOpener) *cobra.Command {
	var name, ids string

	cmd := &cobra.Command{
		Use:   "push <elements-file>",
		Short: "Save a tree under a name",
		Long:  "Save a tree under a name. Without --name a random name is generated.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			res, err := c.loadTree(ctx, args[0], ids)
			if err != nil {
				return err
			}
			if name == "" {
				name = uuid.NewString()
			}

			s, err := open(ctx)
			if err != nil {
				return err
			}
			defer s.Close(context.WithoutCancel(ctx))

			if err := s.Save(ctx, name, store.FromElements(res.Elements, res.IDs)); err != nil {
				return err
			}
			printSuccess("Stored %s", name)
			printStats(res.Stats.NodeCount, len(res.Leaves), false)
			printNextStep("Fetch it", "pairtree store pull --name "+name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "tree name (default: random UUID)")
	cmd.Flags().StringVar(&ids, "ids", "", "id function the records were exported with: value (default), uuid")
	return cmd
}

func (c *CLI) storePullCommand(open storeOpener) *cobra.Command {
	var name, output string

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Load a stored tree as element records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := open(ctx)
			if err != nil {
				return err
			}
			defer s.Close(context.WithoutCancel(ctx))

			records, err := s.Load(ctx, name)
			if err != nil {
				return fmt.Errorf("load %s: %w", name, err)
			}
			elements := store.ToElements(records)
			if output == "" {
				return treeio.WriteJSON(elements, cmd.OutOrStdout())
			}
			if err := treeio.ExportJSON(elements, output); err != nil {
				return err
			}
			printSuccess("Pulled %s (%d elements)", name, len(elements))
			printFile(output)
			if ids := store.IDs(records); ids != "" && ids != pipeline.IDsValue {
				printNextStep("Show it", fmt.Sprintf("pairtree show %s --ids %s", output, ids))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "tree name")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (c *CLI) storeDeleteCommand(open storeOpener) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a stored tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := open(ctx)
			if err != nil {
				return err
			}
			defer s.Close(context.WithoutCancel(ctx))

			if err := s.Delete(ctx, name); err != nil {
				return fmt.Errorf("delete %s: %w", name, err)
			}
			printSuccess("Deleted %s", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "tree name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (c *CLI) storeListCommand(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored trees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := open(ctx)
			if err != nil {
				return err
			}
			defer s.Close(context.WithoutCancel(ctx))

			names, err := s.List(ctx)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				printInfo("No stored trees")
				return nil
			}

			rows := make([][]string, len(names))
			for i, n := range names {
				rows[i] = []string{strconv.Itoa(i + 1), n}
			}
			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(StyleDim).
				Headers("#", "Name").
				Rows(rows...).
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == -1 {
						return lipgloss.NewStyle().Foreground(colorGray).Bold(true)
					}
					if col == 0 {
						return StyleDim
					}
					return StyleValue
				})
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}
