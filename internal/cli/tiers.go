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

func newTierCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tier",
		Short: "Manage tiers",
	}
	cmd.AddCommand(
		newTierAddCmd(app),
		newTierUpdateCmd(app),
		newTierRmCmd(app),
		newTierMoveCmd(app),
		newTierLsCmd(app),
	)
	return cmd
}

func newTierAddCmd(app *App) *cobra.Command {
	var color string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a tier ranked below every existing tier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withStore(cmd, func(ctx context.Context, s *storage.Store) error {
				t, err := s.CreateTier(ctx, args[0], color)
				if err != nil {
					return err
				}
				return app.print(cmd, t, func(w io.Writer) {
					fmt.Fprintf(w, "created tier %s (rank %d)\n", t.Name, t.Rank)
				})
			})
		},
	}
	cmd.Flags().StringVar(&color, "color", "#ffffff", "Display color as #RRGGBB")
	return cmd
}

func newTierUpdateCmd(app *App) *cobra.Command {
	var name, color string
	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Rename or recolor a tier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withStore(cmd, func(ctx context.Context, s *storage.Store) error {
				current, err := s.GetTier(ctx, args[0])
				if err != nil {
					return err
				}
				newName, newColor := current.Name, current.Color
				if cmd.Flags().Changed("name") {
					newName = name
				}
				if cmd.Flags().Changed("color") {
					newColor = color
				}
				changed, err := s.UpdateTier(ctx, args[0], newName, newColor)
				if err != nil {
					return err
				}
				return app.print(cmd, map[string]int64{"changed": changed}, func(w io.Writer) {
					fmt.Fprintf(w, "updated %d tier\n", changed)
				})
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&color, "color", "", "New color as #RRGGBB")
	return cmd
}

func newTierRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <name>",
		Short:   "Delete a tier (fails while items reference it, unless delete_policy is detach)",
		Aliases: []string{"delete"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withStore(cmd, func(ctx context.Context, s *storage.Store) error {
				changed, err := s.DeleteTier(ctx, args[0])
				if err != nil {
					return err
				}
				return app.print(cmd, map[string]int64{"changed": changed}, func(w io.Writer) {
					fmt.Fprintf(w, "deleted tier %s\n", args[0])
				})
			})
		},
	}
}

func newTierMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "move <name> <up|down>",
		Short:     "Swap a tier with its neighbour above or below",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(models.Up), string(models.Down)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withStore(cmd, func(ctx context.Context, s *storage.Store) error {
				moved, err := s.MoveTier(ctx, args[0], models.Direction(args[1]))
				if err != nil {
					return err
				}
				return app.print(cmd, map[string]bool{"moved": moved}, func(w io.Writer) {
					if moved {
						fmt.Fprintf(w, "moved tier %s %s\n", args[0], args[1])
					} else {
						fmt.Fprintf(w, "tier %s is already at the %s boundary\n", args[0], args[1])
					}
				})
			})
		},
	}
}

func newTierLsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Short:   "List tiers by rank",
		Aliases: []string{"list"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withStore(cmd, func(ctx context.Context, s *storage.Store) error {
				tiers, err := s.ListTiers(ctx)
				if err != nil {
					return err
				}
				return app.print(cmd, tiers, func(w io.Writer) {
					tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "RANK\tNAME\tCOLOR")
					for _, t := range tiers {
						fmt.Fprintf(tw, "%d\t%s\t%s\n", t.Rank, t.Name, t.Color)
					}
					tw.Flush()
				})
			})
		},
	}
}
