// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/trafficinator/internal/backfill"
	"github.com/tomtom215/trafficinator/internal/catalog"
	"github.com/tomtom215/trafficinator/internal/config"
	"github.com/tomtom215/trafficinator/internal/dispatcher"
	"github.com/tomtom215/trafficinator/internal/engine"
	"github.com/tomtom215/trafficinator/internal/logging"
	"github.com/tomtom215/trafficinator/internal/pace"
	"github.com/tomtom215/trafficinator/internal/statusline"
	"github.com/tomtom215/trafficinator/internal/supervisor"
)

// runRun is the "run" subcommand (and the root command's default action):
// live traffic generation, optionally preceded by a one-shot backfill replay
// (spec.md §4.9 "if backfill is enabled it runs once before live generation
// starts"). It mirrors the teacher's cmd/server/main.go shape: build
// dependencies, wire them into a supervisor tree, install signal handling,
// ServeBackground, then wait.
func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatch := dispatcher.New(cfg.Volume.Concurrency)

	if cfg.Backfill.Enabled {
		logging.Info().Msg("backfill enabled, replaying historical window before live generation")
		if err := runBackfillOnce(ctx, cfg, store, dispatch); err != nil {
			return err
		}
		if cfg.Backfill.RunOnce {
			logging.Info().Msg("backfill run_once set, exiting without starting live generation")
			return nil
		}
	}

	pacer := pace.New(float64(cfg.Volume.TargetVisitsPerDay), cfg.Volume.CapMode, cfg.Volume.MaxTotalVisits)
	pool := engine.NewPool(store, pacer, dispatch, poolConfig(cfg))
	reporter := statusline.New(pacer)

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = time.Duration(cfg.Volume.ShutdownGraceSeconds) * time.Second
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), treeCfg)
	if err != nil {
		return err
	}
	tree.AddSessionService(pool)
	tree.AddSessionService(reporter)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("trafficinator starting live traffic generation")
	errCh := tree.ServeBackground(ctx)

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor tree error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("service failed to stop within timeout")
		}
	}

	logging.Info().Int64("lifetime_visits", pool.LifetimeVisits()).Msg("trafficinator stopped")
	return nil
}

// runBackfillOnce resolves and runs the configured historical window
// synchronously, used both by "run" (pre-live-generation) and by the
// standalone "backfill" subcommand.
func runBackfillOnce(ctx context.Context, cfg *config.Config, store *catalog.Store, dispatch *dispatcher.Dispatcher) error {
	bfCfg, err := backfillRunnerConfig(cfg)
	if err != nil {
		return err
	}
	runner := backfill.NewRunner(store, dispatch, bfCfg)
	return runner.Serve(ctx)
}
