// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

// Package main is the entry point for the Trafficinator traffic generator.
//
// Trafficinator drives synthetic, behaviorally plausible visit traffic at a
// Matomo tracking endpoint: sessions of pageviews interleaved with site
// search, outlinks, downloads, events and ecommerce orders, optionally
// following scripted conversion funnels, at a configured target rate.
//
// # Configuration
//
// All configuration is environment-variable or config-file driven (Koanf
// v2, env overrides file overrides built-in defaults); see internal/config
// for the full set of recognized options.
//
// # Commands
//
//	trafficgen run        Start live traffic generation (the default when
//	                       no subcommand is given). If backfill is also
//	                       enabled in config, the historical window replays
//	                       first; BACKFILL_RUN_ONCE controls whether the
//	                       process then exits or continues into live
//	                       generation.
//	trafficgen backfill    Replay the configured historical window once and
//	                       exit, ignoring live-generation settings entirely.
//
// # Signal handling
//
// SIGINT and SIGTERM trigger cooperative shutdown: in-flight sessions are
// allowed to finish their current suspension point, counters are flushed to
// a final status line, and the process exits 0.
//
// # Exit codes
//
// 0 clean shutdown; 2 configuration error; 3 catalog load error; 4 backfill
// aborted; 1 any other fatal error (spec.md §6).
package main
