// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomtom215/trafficinator/internal/dispatcher"
	"github.com/tomtom215/trafficinator/internal/logging"
)

// runBackfill is the standalone "backfill" subcommand: replay the
// configured historical window once and exit, ignoring live-generation
// settings entirely (spec.md §4.9).
func runBackfill(cmd *cobra.Command, args []string) error {
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

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal, aborting backfill")
		cancel()
	}()

	dispatch := dispatcher.New(cfg.Volume.Concurrency)

	logging.Info().Msg("trafficinator starting backfill replay")
	err = runBackfillOnce(ctx, cfg, store, dispatch)
	if err != nil {
		return err
	}

	logging.Info().Msg("trafficinator backfill complete")
	return nil
}
