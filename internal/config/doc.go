// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

// Package config loads, layers and validates the Config snapshot consumed
// by the rest of Trafficinator.
//
// # Loading
//
// Load() layers three sources in increasing priority:
//
//  1. Built-in defaults (Default())
//  2. An optional YAML config file (config.yaml, or $CONFIG_PATH)
//  3. Environment variables (MATOMO_URL, TARGET_VISITS_PER_DAY, ...)
//
// The resulting Config is validated before Load returns; an invalid
// configuration is a *ConfigError and fatal to process start (exit code 2).
//
// # Validation
//
// Simple per-field rules (ranges, required-ness) are expressed as
// validator.v10 struct tags. Rules spanning more than one field - the
// pageviews_min/max ordering, the cap_mode/max_total_visits pairing, the
// backfill window shape - are hand-written, one method per concern.
package config
