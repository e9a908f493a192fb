// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

// Package config loads and validates the immutable configuration snapshot
// the core consumes at start (spec §6). Configuration is layered: built-in
// defaults, an optional config file, then environment variables (highest
// priority), mirroring the catalog's own three-source resolution order.
package config

import (
	"time"

	"github.com/tomtom215/trafficinator/internal/model"
)

// Config is the full, immutable configuration snapshot (spec §6).
type Config struct {
	Matomo     MatomoConfig    `koanf:"matomo"`
	Volume     VolumeConfig    `koanf:"volume"`
	Behavior   BehaviorConfig  `koanf:"behavior"`
	Ecommerce  EcommerceConfig `koanf:"ecommerce"`
	Timezone   string `koanf:"timezone" validate:"required"`
	Catalog    CatalogPaths    `koanf:"catalog"`
	Backfill   BackfillConfig  `koanf:"backfill"`
	Logging    LoggingConfig   `koanf:"logging"`
}

// MatomoConfig is the Matomo tracking endpoint and auth (spec §6).
type MatomoConfig struct {
	URL       string `koanf:"url" validate:"required,url"`
	SiteID    int    `koanf:"site_id" validate:"required,min=1"`
	TokenAuth string `koanf:"token_auth"`
}

// VolumeConfig governs rate, concurrency, and visit shape (spec §6).
type VolumeConfig struct {
	TargetVisitsPerDay    int           `koanf:"target_visits_per_day" validate:"required,min=1"`
	PageviewsMin          int           `koanf:"pageviews_min" validate:"min=1,max=50"`
	PageviewsMax          int           `koanf:"pageviews_max" validate:"min=1,max=50"`
	Concurrency           int           `koanf:"concurrency" validate:"min=1,max=1000"`
	PauseBetweenPVsMin    time.Duration `koanf:"pause_between_pvs_min_s"`
	PauseBetweenPVsMax    time.Duration `koanf:"pause_between_pvs_max_s"`
	VisitDurationMin      time.Duration `koanf:"visit_duration_min_m"`
	VisitDurationMax      time.Duration `koanf:"visit_duration_max_m"`
	AutoStopAfterHours    float64       `koanf:"auto_stop_after_hours"`
	MaxTotalVisits        int           `koanf:"max_total_visits"`
	CapMode               model.CapMode `koanf:"-"`
	CapModeRaw            string        `koanf:"cap_mode"`
	ShutdownGraceSeconds  int           `koanf:"shutdown_grace_seconds"`
}

// BehaviorConfig holds the action-mix probabilities (spec §6, all in [0,1]).
type BehaviorConfig struct {
	SiteSearchProbability    float64 `koanf:"sitesearch_probability" validate:"min=0,max=1"`
	OutlinksProbability      float64 `koanf:"outlinks_probability" validate:"min=0,max=1"`
	DownloadsProbability     float64 `koanf:"downloads_probability" validate:"min=0,max=1"`
	ClickEventsProbability   float64 `koanf:"click_events_probability" validate:"min=0,max=1"`
	RandomEventsProbability  float64 `koanf:"random_events_probability" validate:"min=0,max=1"`
	DirectTrafficProbability float64 `koanf:"direct_traffic_probability" validate:"min=0,max=1"`
	EcommerceProbability     float64 `koanf:"ecommerce_probability" validate:"min=0,max=1"`
	RandomizeVisitorCountries bool   `koanf:"randomize_visitor_countries"`
	Lang                      string `koanf:"lang"`
	Resolution                string `koanf:"resolution"`
}

// EcommerceConfig configures synthetic order value generation (spec §6).
type EcommerceConfig struct {
	OrderValueMin float64 `koanf:"ecommerce_order_value_min"`
	OrderValueMax float64 `koanf:"ecommerce_order_value_max"`
	Currency      string  `koanf:"ecommerce_currency" validate:"len=3"`
}

// CatalogPaths locates catalog input files (spec §4.1, §6).
type CatalogPaths struct {
	DataDir  string `koanf:"data_dir"`
	MountDir string `koanf:"mount_dir"`
}

// BackfillConfig configures the historical replay run (spec §4.9, §6).
type BackfillConfig struct {
	Enabled        bool    `koanf:"enabled"`
	StartDate      string  `koanf:"start_date"`
	EndDate        string  `koanf:"end_date"`
	DaysBack       int     `koanf:"days_back"`
	DurationDays   int     `koanf:"duration_days"`
	MaxPerDay      int     `koanf:"max_visits_per_day"`
	MaxTotal       int     `koanf:"max_visits_total"`
	RPSLimit       float64 `koanf:"rps_limit"`
	Seed           int64   `koanf:"seed,omitempty"`
	HasSeed        bool    `koanf:"-"`
	RunOnce        bool    `koanf:"run_once"`
	HourlyWeights  []float64 `koanf:"hourly_weights"` // accepted, not applied (spec §9)
}

// LoggingConfig configures the zerolog-based logger (ambient stack).
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Default returns a Config populated with the defaults documented in spec §6.
func Default() Config {
	return Config{
		Volume: VolumeConfig{
			PageviewsMin:         1,
			PageviewsMax:         5,
			Concurrency:          20,
			PauseBetweenPVsMin:   5 * time.Second,
			PauseBetweenPVsMax:   30 * time.Second,
			VisitDurationMin:     2 * time.Minute,
			VisitDurationMax:     10 * time.Minute,
			ShutdownGraceSeconds: 10,
			CapModeRaw:           "off",
		},
		Behavior: BehaviorConfig{
			SiteSearchProbability:     0.10,
			OutlinksProbability:       0.05,
			DownloadsProbability:      0.03,
			ClickEventsProbability:    0.10,
			RandomEventsProbability:   0.05,
			DirectTrafficProbability:  0.30,
			EcommerceProbability:      0.02,
			RandomizeVisitorCountries: false,
		},
		Ecommerce: EcommerceConfig{
			OrderValueMin: 100,
			OrderValueMax: 2000,
			Currency:      "SEK",
		},
		Timezone: "CET",
		Backfill: BackfillConfig{
			RunOnce: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
