package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/goal-planner/internal/config"
	"github.com/example/goal-planner/internal/logging"
	"github.com/example/goal-planner/internal/persistence/sqlite"
)

// runtime bundles the wiring shared by every command: configuration, the
// reference timezone, the logger and a migrated store.
type runtime struct {
	cfg      config.Config
	location *time.Location
	logger   *slog.Logger
	store    *sqlite.Store
}

func newRuntime(cmd *cobra.Command) (*runtime, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)

	store, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(cmd.Context()); err != nil {
		_ = store.Close()
		return nil, err
	}

	return &runtime{cfg: cfg, location: loc, logger: logger, store: store}, nil
}

func (rt *runtime) close() {
	if err := rt.store.Close(); err != nil {
		rt.logger.Error("failed to close storage", "error", err)
	}
}

// now returns the wall clock in the configured reference timezone.
func (rt *runtime) now() time.Time {
	return time.Now().In(rt.location)
}

func (rt *runtime) ctx(cmd *cobra.Command) context.Context {
	return logging.ContextWithLogger(cmd.Context(), rt.logger)
}
