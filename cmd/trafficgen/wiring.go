// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package main

import (
	"fmt"
	"time"

	"github.com/tomtom215/trafficinator/internal/backfill"
	"github.com/tomtom215/trafficinator/internal/catalog"
	"github.com/tomtom215/trafficinator/internal/config"
	"github.com/tomtom215/trafficinator/internal/engine"
	"github.com/tomtom215/trafficinator/internal/identity"
	"github.com/tomtom215/trafficinator/internal/logging"
	"github.com/tomtom215/trafficinator/internal/planner"
	"github.com/tomtom215/trafficinator/internal/trackbuilder"
)

// loadConfig loads and validates configuration and initializes the zerolog
// logger from it, mirroring the teacher's cmd/server/main.go startup order
// ("load configuration first to get logging settings").
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	return cfg, nil
}

// loadCatalog loads the catalog store, wrapping any failure with context.
// catalog.Load reports its failures as *catalog.CatalogError, and the %w
// wrap keeps that error reachable through errors.As for exit-code mapping.
func loadCatalog(cfg *config.Config) (*catalog.Store, error) {
	store, err := catalog.Load(catalog.SourceDirs{
		DataDir:  cfg.Catalog.DataDir,
		MountDir: cfg.Catalog.MountDir,
	})
	if err != nil {
		return nil, fmt.Errorf("trafficgen: load catalog: %w", err)
	}
	return store, nil
}

// trackConfig narrows cfg down to the fields internal/trackbuilder needs.
func trackConfig(cfg *config.Config) trackbuilder.Config {
	return trackbuilder.Config{
		TrackingURL:        cfg.Matomo.URL,
		SiteID:             cfg.Matomo.SiteID,
		TokenAuth:          cfg.Matomo.TokenAuth,
		Lang:               cfg.Behavior.Lang,
		Resolution:         cfg.Behavior.Resolution,
		RandomizeCountries: cfg.Behavior.RandomizeVisitorCountries,
	}
}

// identOpts narrows cfg down to the fields internal/identity needs.
func identOpts(cfg *config.Config) identity.Options {
	return identity.Options{
		RandomizeCountries: cfg.Behavior.RandomizeVisitorCountries,
		Lang:               cfg.Behavior.Lang,
		Resolution:         cfg.Behavior.Resolution,
		Timezone:           cfg.Timezone,
		HasTokenAuth:       cfg.Matomo.TokenAuth != "",
	}
}

// probabilities narrows cfg down to the action-mix probabilities
// internal/planner needs.
func probabilities(cfg *config.Config) planner.Probabilities {
	return planner.Probabilities{
		SiteSearch:  cfg.Behavior.SiteSearchProbability,
		Outlink:     cfg.Behavior.OutlinksProbability,
		Download:    cfg.Behavior.DownloadsProbability,
		ClickEvent:  cfg.Behavior.ClickEventsProbability,
		RandomEvent: cfg.Behavior.RandomEventsProbability,
		Ecommerce:   cfg.Behavior.EcommerceProbability,
	}
}

// poolConfig builds the live engine.PoolConfig from cfg.
func poolConfig(cfg *config.Config) engine.PoolConfig {
	return engine.PoolConfig{
		Concurrency:        cfg.Volume.Concurrency,
		AutoStopAfterHours: cfg.Volume.AutoStopAfterHours,
		CapMode:            cfg.Volume.CapMode,
		MaxTotalVisits:     cfg.Volume.MaxTotalVisits,
		PagesMin:           cfg.Volume.PageviewsMin,
		PagesMax:           cfg.Volume.PageviewsMax,
		PauseMin:           cfg.Volume.PauseBetweenPVsMin,
		PauseMax:           cfg.Volume.PauseBetweenPVsMax,
		Probs:              probabilities(cfg),
		IdentOpts:          identOpts(cfg),
		Track:              trackConfig(cfg),
		Timezone:           cfg.Timezone,
		VisitDurationMin:   cfg.Volume.VisitDurationMin,
		VisitDurationMax:   cfg.Volume.VisitDurationMax,
	}
}

// backfillRunnerConfig resolves cfg.Backfill into a backfill.Config, ready
// to hand to backfill.NewRunner.
func backfillRunnerConfig(cfg *config.Config) (backfill.Config, error) {
	window, err := backfill.ResolveWindow(cfg.Backfill, cfg.Timezone, time.Now())
	if err != nil {
		return backfill.Config{}, err
	}

	return backfill.Config{
		Window:    window,
		MaxPerDay: cfg.Backfill.MaxPerDay,
		MaxTotal:  cfg.Backfill.MaxTotal,
		RPSLimit:  cfg.Backfill.RPSLimit,
		Seed:      cfg.Backfill.Seed,
		HasSeed:   cfg.Backfill.HasSeed,

		IdentOpts: identOpts(cfg),
		Track:     trackConfig(cfg),
		Probs:     probabilities(cfg),
		PagesMin:         cfg.Volume.PageviewsMin,
		PagesMax:         cfg.Volume.PageviewsMax,
		PauseMin:         cfg.Volume.PauseBetweenPVsMin,
		PauseMax:         cfg.Volume.PauseBetweenPVsMax,
		VisitDurationMin: cfg.Volume.VisitDurationMin,
		VisitDurationMax: cfg.Volume.VisitDurationMax,
	}, nil
}
