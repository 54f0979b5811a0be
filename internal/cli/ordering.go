package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/meur/tierrank/internal/models"
	"github.com/meur/tierrank/internal/storage"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newRecomputeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "recompute",
		Short: "Renumber item positions densely, grouped by tier rank",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withStore(cmd, func(ctx context.Context, s *storage.Store) error {
				n, err := s.RecomputePositions(ctx)
				if err != nil {
					return err
				}
				return app.print(cmd, map[string]int{"items": n}, func(w io.Writer) {
					fmt.Fprintf(w, "renumbered %d items\n", n)
				})
			})
		},
	}
}

func newReorderCmd(app *App) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "reorder",
		Short: "Apply a complete ordering from a YAML or JSON file",
		Long: `Apply a complete ordering in one transaction. The file lists every item:

  assignments:
    - {item: Hades, tier: S, position: 0}
    - {item: Celeste, tier: null, position: 1}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(file) == "" {
				return fmt.Errorf("--file is required")
			}
			req, err := readReorder(file)
			if err != nil {
				return err
			}
			return app.withStore(cmd, func(ctx context.Context, s *storage.Store) error {
				if err := s.ApplyReorder(ctx, req.Assignments); err != nil {
					return err
				}
				return app.print(cmd, map[string]int{"assignments": len(req.Assignments)}, func(w io.Writer) {
					fmt.Fprintf(w, "applied %d assignments\n", len(req.Assignments))
				})
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Reorder file (YAML or JSON)")
	return cmd
}

// readReorder parses a reorder file. JSON is valid YAML, so one decoder covers both.
func readReorder(path string) (*models.Reorder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var req models.Reorder
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &req, nil
}

func newBoardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Show every tier with its items, unassigned last",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withStore(cmd, func(ctx context.Context, s *storage.Store) error {
				board, err := s.Board(ctx)
				if err != nil {
					return err
				}
				return app.print(cmd, board, func(w io.Writer) {
					for _, lane := range board.Lanes {
						label := "(unassigned)"
						if lane.Tier != nil {
							label = lane.Tier.Name
						}
						names := make([]string, len(lane.Items))
						for i, it := range lane.Items {
							names[i] = it.Name
						}
						fmt.Fprintf(w, "%-12s %s\n", label, strings.Join(names, ", "))
					}
				})
			})
		},
	}
}

func newCheckCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify rank and position invariants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withStore(cmd, func(ctx context.Context, s *storage.Store) error {
				report, err := s.Check(ctx)
				if err != nil {
					return err
				}
				if err := app.print(cmd, report, func(w io.Writer) {
					for _, v := range report.Violations {
						fmt.Fprintln(w, v)
					}
					if report.OK() {
						fmt.Fprintf(w, "ok (dense: %t)\n", report.Dense)
					}
				}); err != nil {
					return err
				}
				if !report.OK() {
					return fmt.Errorf("%d violations", len(report.Violations))
				}
				return nil
			})
		},
	}
}
