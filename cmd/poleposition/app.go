package main

import (
	"context"
	"log/slog"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/nvandessel/poleposition/internal/config"
	"github.com/nvandessel/poleposition/internal/logging"
	"github.com/nvandessel/poleposition/internal/query"
	"github.com/nvandessel/poleposition/internal/store"
)

// loadConfig resolves configuration from --config (or the default
// locations), environment variables and --log-level, then validates it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// app is the loaded runtime shared by every command that queries the bundle.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	decisions *logging.DecisionLogger
	engine    *query.Engine
}

// openApp loads configuration and the simulation bundle. At debug level,
// every driver and race resolution is traced to decisions.jsonl.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())

	b, err := store.Load(cmd.Context(), cfg.Data.Sources())
	if err != nil {
		return nil, err
	}
	logger.Info("simulation bundle loaded",
		"drivers", b.NumDrivers(),
		"races", b.NumRounds(),
		"positions", b.NumPositions(),
		"simulations", b.NumSimulations(),
	)
	if cells := b.IncompleteCells(); len(cells) > 0 {
		logger.Debug("position histograms do not sum to the simulation count", "cells", len(cells))
	}

	a := &app{cfg: cfg, logger: logger}
	if cfg.Audit.Dir != "" {
		a.decisions = logging.NewDecisionLogger(cfg.Audit.Dir, cfg.Logging.Level)
	}
	a.engine = query.New(b, query.WithResolutionObserver(func(r query.Resolution) {
		a.decisions.LogResolution(string(r.Kind), r.Query, r.Match, r.Strategy)
	}))
	return a, nil
}

func (a *app) Close() {
	a.decisions.Close()
}

// signalContext is cancelled on the first shutdown signal.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, shutdownSignals...)
}

// runQuery opens the app, runs fn and prints its result as JSON or text.
func runQuery[T any](cmd *cobra.Command, fn func(e *query.Engine) (T, error), text func(cmd *cobra.Command, v T)) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	v, err := fn(a.engine)
	if err != nil {
		return queryError(cmd, err)
	}
	if jsonOutput(cmd) {
		return writeJSON(cmd, v)
	}
	text(cmd, v)
	return nil
}
