// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/trafficinator/internal/model"
)

// DefaultConfigPaths lists the paths where a config file is searched, in
// order of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/trafficinator/config.yaml",
	"/etc/trafficinator/config.yml",
}

// ConfigPathEnvVar overrides the config file search with an explicit path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds a Config from three layered sources, in increasing priority
// (spec §6): built-in defaults, an optional YAML config file, then
// environment variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := Default()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	capMode, err := parseCapMode(cfg.Volume.CapModeRaw)
	if err != nil {
		return nil, err
	}
	cfg.Volume.CapMode = capMode

	if raw := k.String("backfill.seed"); raw != "" {
		cfg.Backfill.HasSeed = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseCapMode(raw string) (model.CapMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "off":
		return model.CapOff, nil
	case "lifetime":
		return model.CapLifetime, nil
	case "rolling24h", "rolling_24h", "rolling":
		return model.CapRolling24h, nil
	default:
		return model.CapOff, newConfigError("cap_mode", fmt.Sprintf("unknown cap mode %q, want off|lifetime|rolling24h", raw), nil)
	}
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc maps the flat environment variable names documented in
// spec §6 onto the nested koanf config paths. Unmapped variables are
// ignored rather than polluting the configuration tree.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	mappings := map[string]string{
		"matomo_url":        "matomo.url",
		"matomo_site_id":    "matomo.site_id",
		"matomo_token_auth": "matomo.token_auth",

		"target_visits_per_day":   "volume.target_visits_per_day",
		"pageviews_min":           "volume.pageviews_min",
		"pageviews_max":           "volume.pageviews_max",
		"concurrency":             "volume.concurrency",
		"pause_between_pvs_min":   "volume.pause_between_pvs_min_s",
		"pause_between_pvs_max":   "volume.pause_between_pvs_max_s",
		"visit_duration_min":      "volume.visit_duration_min_m",
		"visit_duration_max":      "volume.visit_duration_max_m",
		"auto_stop_after_hours":   "volume.auto_stop_after_hours",
		"max_total_visits":        "volume.max_total_visits",
		"cap_mode":                "volume.cap_mode",
		"shutdown_grace_seconds":  "volume.shutdown_grace_seconds",

		"sitesearch_probability":      "behavior.sitesearch_probability",
		"outlinks_probability":        "behavior.outlinks_probability",
		"downloads_probability":       "behavior.downloads_probability",
		"click_events_probability":    "behavior.click_events_probability",
		"random_events_probability":   "behavior.random_events_probability",
		"direct_traffic_probability":  "behavior.direct_traffic_probability",
		"ecommerce_probability":       "behavior.ecommerce_probability",
		"randomize_visitor_countries": "behavior.randomize_visitor_countries",
		"lang":                        "behavior.lang",
		"resolution":                  "behavior.resolution",

		"ecommerce_order_value_min": "ecommerce.ecommerce_order_value_min",
		"ecommerce_order_value_max": "ecommerce.ecommerce_order_value_max",
		"ecommerce_currency":        "ecommerce.ecommerce_currency",

		"timezone": "timezone",
		"data_dir":  "catalog.data_dir",
		"mount_dir": "catalog.mount_dir",

		"backfill_enabled":           "backfill.enabled",
		"backfill_start_date":        "backfill.start_date",
		"backfill_end_date":          "backfill.end_date",
		"backfill_days_back":         "backfill.days_back",
		"backfill_duration_days":     "backfill.duration_days",
		"backfill_max_visits_per_day": "backfill.max_visits_per_day",
		"backfill_max_visits_total":  "backfill.max_visits_total",
		"backfill_rps_limit":         "backfill.rps_limit",
		"backfill_seed":              "backfill.seed",
		"backfill_run_once":          "backfill.run_once",

		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := mappings[key]; ok {
		return mapped
	}
	return ""
}
