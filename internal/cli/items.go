package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/meur/tierrank/internal/models"
	"github.com/meur/tierrank/internal/storage"
	"github.com/spf13/cobra"
)

func newItemCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage ranked items",
	}
	cmd.AddCommand(
		newItemAddCmd(app),
		newItemAssignCmd(app),
		newItemRmCmd(app),
		newItemLsCmd(app),
	)
	return cmd
}

func tierFlag(tier string) *string {
	return models.StringPtr(tier)
}

func newItemAddCmd(app *App) *cobra.Command {
	var tier string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an item at the end of a tier, or unassigned",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withStore(cmd, func(ctx context.Context, s *storage.Store) error {
				it, err := s.CreateItem(ctx, args[0], tierFlag(tier))
				if err != nil {
					return err
				}
				return app.print(cmd, it, func(w io.Writer) {
					fmt.Fprintf(w, "added %s at position %d\n", it.Name, *it.Position)
				})
			})
		},
	}
	cmd.Flags().StringVar(&tier, "tier", "", "Tier name (empty = unassigned)")
	return cmd
}

func newItemAssignCmd(app *App) *cobra.Command {
	var tier string
	cmd := &cobra.Command{
		Use:   "assign <name>",
		Short: "Move an item to the end of a tier, or unassigned",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withStore(cmd, func(ctx context.Context, s *storage.Store) error {
				it, err := s.AssignItem(ctx, args[0], tierFlag(tier))
				if err != nil {
					return err
				}
				return app.print(cmd, it, func(w io.Writer) {
					fmt.Fprintf(w, "%s now at position %d in %s\n", it.Name, *it.Position, laneName(it.Tier))
				})
			})
		},
	}
	cmd.Flags().StringVar(&tier, "tier", "", "Tier name (empty = unassigned)")
	return cmd
}

func newItemRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <name>",
		Short:   "Delete an item",
		Aliases: []string{"delete"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withStore(cmd, func(ctx context.Context, s *storage.Store) error {
				changed, err := s.DeleteItem(ctx, args[0])
				if err != nil {
					return err
				}
				return app.print(cmd, map[string]int64{"changed": changed}, func(w io.Writer) {
					fmt.Fprintf(w, "deleted item %s\n", args[0])
				})
			})
		},
	}
}

func newItemLsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Short:   "List items by position",
		Aliases: []string{"list"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withStore(cmd, func(ctx context.Context, s *storage.Store) error {
				items, err := s.ListItems(ctx)
				if err != nil {
					return err
				}
				return app.print(cmd, items, func(w io.Writer) {
					tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "POS\tNAME\tTIER")
					for _, it := range items {
						pos := "-"
						if it.Position != nil {
							pos = fmt.Sprint(*it.Position)
						}
						fmt.Fprintf(tw, "%s\t%s\t%s\n", pos, it.Name, laneName(it.Tier))
					}
					tw.Flush()
				})
			})
		},
	}
}

func laneName(tier *string) string {
	if tier == nil {
		return "(unassigned)"
	}
	return *tier
}
