// Package cli implements the tierctl admin commands on top of the store.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/meur/tierrank/internal/config"
	"github.com/meur/tierrank/internal/storage"
	"github.com/meur/tierrank/pkg/logger"
	"github.com/spf13/cobra"
)

// App carries global flags shared by every subcommand.
type App struct {
	ConfigPath string
	DBPath     string
	JSON       bool
}

// NewRootCmd builds the tierctl command tree.
func NewRootCmd() *cobra.Command {
	app := &App{}
	root := &cobra.Command{
		Use:           "tierctl",
		Short:         "Administer tiers, items and their ordering",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "YAML config file (default $RANKD_CONFIG)")
	root.PersistentFlags().StringVar(&app.DBPath, "db", "", "SQLite database path (overrides config)")
	root.PersistentFlags().BoolVar(&app.JSON, "json", false, "Print JSON instead of text")

	root.AddCommand(
		newTierCmd(app),
		newItemCmd(app),
		newRecomputeCmd(app),
		newReorderCmd(app),
		newBoardCmd(app),
		newCheckCmd(app),
	)
	return root
}

// Execute runs tierctl with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// openStore loads config and opens the store it names.
func (a *App) openStore(ctx context.Context) (*storage.Store, error) {
	cfg, err := config.Load(ctx, a.ConfigPath)
	if err != nil {
		return nil, err
	}
	if a.DBPath != "" {
		cfg.DBPath = a.DBPath
	}
	if err := logger.Init(cfg.LogLevel); err != nil {
		return nil, err
	}
	return storage.New(cfg.DBPath,
		storage.WithLogger(logger.Named("tierctl")),
		storage.WithMaxNameLength(cfg.MaxNameLength),
		storage.WithDeletePolicy(cfg.Tiers.DeletePolicy),
		storage.WithOmittedPolicy(cfg.Reorder.OmittedItems),
	)
}

// withStore opens the store, runs fn, and closes it.
func (a *App) withStore(cmd *cobra.Command, fn func(ctx context.Context, s *storage.Store) error) error {
	ctx := cmd.Context()
	s, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s)
}

// print writes v as JSON when --json is set, otherwise calls text.
func (a *App) print(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	w := cmd.OutOrStdout()
	if a.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
