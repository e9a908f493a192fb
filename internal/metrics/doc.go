// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

/*
Package metrics provides Prometheus instrumentation for the visit engine,
pace controller, HTTP dispatcher, and backfill engine.

# Overview

The package exposes package-level collectors covering:
  - Visit lifecycle: started, completed, duration, active count
  - Action delivery: emitted actions by kind, funnel entry/completion
  - Pace control: tokens issued, pauses, current cap-window count
  - HTTP dispatch: requests by outcome, retries by reason, latency
  - Circuit breaker: state and transitions
  - Backfill: visits generated per day, days processed, errors by stage

There is no owned HTTP server in this process (the control/REST surface is
out of scope), so nothing here registers a /metrics handler. A caller that
wants a scrape target registers these collectors - which are created via
promauto and therefore already live on the default registry - on its own
promhttp.Handler(). For callers that just want a cheap read-back without
standing up an HTTP server, ReadSnapshot returns the handful of counters
most useful for a periodic status-line log.

# Usage

	metrics.VisitsStarted.Inc()
	metrics.RecordDispatch("POST", "success", elapsed)
	snap := metrics.ReadSnapshot()
	logging.Info().Float64("active_visits", snap.ActiveVisits).Msg("status")

# Thread Safety

All collectors are safe for concurrent use; the Prometheus client library
handles synchronization internally.
*/
package metrics
