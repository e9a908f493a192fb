// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

// Package statusline periodically logs a structured summary of the running
// generator (spec.md §7 "Periodic structured status lines (>= every 30s)").
package statusline

import (
	"context"
	"time"

	"github.com/tomtom215/trafficinator/internal/logging"
	"github.com/tomtom215/trafficinator/internal/metrics"
	"github.com/tomtom215/trafficinator/internal/pace"
)

// DefaultInterval is the spec's minimum reporting cadence.
const DefaultInterval = 30 * time.Second

// Reporter is a suture.Service that logs a metrics.Snapshot on a fixed
// interval, plus a final summary line when its context is canceled
// (spec.md §7 "On graceful shutdown, a final summary line is emitted").
type Reporter struct {
	pacer    *pace.Controller
	interval time.Duration
}

// New builds a Reporter. pacer may be nil when there is no live pace
// controller to report token-bucket fill from (e.g. a backfill-only run).
func New(pacer *pace.Controller) *Reporter {
	return &Reporter{pacer: pacer, interval: DefaultInterval}
}

// Serve implements suture.Service.
func (r *Reporter) Serve(ctx context.Context) error {
	interval := r.interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logSnapshot("final summary")
			return ctx.Err()
		case <-ticker.C:
			r.logSnapshot("status")
		}
	}
}

func (r *Reporter) logSnapshot(event string) {
	snap := metrics.ReadSnapshot()
	e := logging.Info().
		Str("event", event).
		Float64("visits_started", snap.VisitsStarted).
		Float64("active_visits", snap.ActiveVisits).
		Float64("dispatch_success", snap.DispatchSuccess).
		Float64("dispatch_failed", snap.DispatchFailed).
		Float64("pace_pauses", snap.PacePauses)
	if r.pacer != nil {
		e = e.Float64("pace_tokens_available", r.pacer.TokensAvailable())
	}
	e.Msg("traffic generator status")
}

// String names the service for supervisor logging.
func (r *Reporter) String() string { return "status-reporter" }
