package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meur/tierrank/internal/api"
	"github.com/meur/tierrank/internal/config"
	"github.com/meur/tierrank/internal/metrics"
	"github.com/meur/tierrank/internal/storage"
	"github.com/meur/tierrank/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "YAML config file (default $RANKD_CONFIG)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := start(ctx, *configPath, os.Stderr)
	stop()
	os.Exit(code)
}

// start runs the server and returns the process exit code. The logger is
// installed before config is read so load errors reach stderr.
func start(ctx context.Context, configPath string, stderr io.Writer) int {
	if err := logger.InitWriter(stderr, "info"); err != nil {
		fmt.Fprintf(stderr, "rankd: %v\n", err)
		return 1
	}
	if err := run(ctx, configPath); err != nil {
		logger.Get().Error(ctx, "rankd stopped", logger.Error(err))
		return 1
	}
	return 0
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}
	log := logger.Named("rankd")
	rec := metrics.New()

	store, err := storage.New(cfg.DBPath,
		storage.WithLogger(logger.Named("store")),
		storage.WithMetrics(rec),
		storage.WithMaxNameLength(cfg.MaxNameLength),
		storage.WithDeletePolicy(cfg.Tiers.DeletePolicy),
		storage.WithOmittedPolicy(cfg.Reorder.OmittedItems),
	)
	if err != nil {
		return err
	}
	defer store.Close()

	r := api.New(store,
		api.WithLogger(logger.Named("http")),
		api.WithMetrics(rec),
		api.WithAllowedOrigins(cfg.CORS.AllowedOrigins),
		api.WithStaticDir(cfg.StaticDir),
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "listening", logger.String("addr", cfg.Addr), logger.String("db", cfg.DBPath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(context.Background(), "shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
