// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

// Package engine runs one complete visit end to end (spec.md §4.7) and
// supervises a fixed pool of worker slots that repeatedly do so (C7). The
// single-visit logic in this file is also reused by internal/backfill (C9),
// which substitutes a synthetic, non-sleeping Clock/Sleep pair for the live
// wall-clock ones.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/tomtom215/trafficinator/internal/catalog"
	"github.com/tomtom215/trafficinator/internal/funnel"
	"github.com/tomtom215/trafficinator/internal/identity"
	"github.com/tomtom215/trafficinator/internal/logging"
	"github.com/tomtom215/trafficinator/internal/metrics"
	"github.com/tomtom215/trafficinator/internal/model"
	"github.com/tomtom215/trafficinator/internal/planner"
	"github.com/tomtom215/trafficinator/internal/trackbuilder"
)

// VisitDeps collects everything one visit needs, decoupled from whether the
// caller is the live worker pool or the backfill replay loop.
type VisitDeps struct {
	Store     *catalog.Store
	Allocator *identity.Allocator
	IdentOpts identity.Options
	Dispatch  funnel.DispatchFunc
	Sleep     funnel.SleepFunc
	Clock     model.Clock
	Track     trackbuilder.Config
	Probs     planner.Probabilities
	PagesMin  int
	PagesMax  int
	PauseMin  time.Duration
	PauseMax  time.Duration
	// VisitDurationMin/Max bound the random-browsing visit's total
	// elapsed time. Pauses between actions take precedence; these only
	// pad the final think-time when the plan underflows VisitDurationMin
	// (spec.md §9 open question resolution). Zero disables padding.
	VisitDurationMin time.Duration
	VisitDurationMax time.Duration
	Rand             *rand.Rand
}

// VisitResult summarizes one completed visit for counters/status lines.
type VisitResult struct {
	ActionsEmitted int
	FunnelUsed     string
}

// RunVisit allocates an identity, selects a funnel (or falls back to random
// browsing), and emits its actions in order (spec.md §4.7 "Active -> Emitting
// -> Paused" cycle). It returns once the session terminates or ctx is
// canceled.
func RunVisit(ctx context.Context, deps VisitDeps) (VisitResult, error) {
	visitor, err := deps.Allocator.Allocate(deps.IdentOpts)
	if err != nil {
		return VisitResult{}, fmt.Errorf("engine: allocate identity: %w", err)
	}

	session := &model.Session{Visitor: visitor, StartWallclock: deps.Clock.Now()}
	metrics.ActiveVisits.Inc()
	defer metrics.ActiveVisits.Dec()
	defer func() {
		metrics.VisitDuration.Observe(deps.Clock.Now().Sub(session.StartWallclock).Seconds())
	}()
	metrics.VisitsStarted.Inc()

	result := VisitResult{}

	if def, ok := funnel.Select(deps.Rand, deps.Store.Funnels); ok {
		result.FunnelUsed = def.ID
		exec := &funnel.Executor{
			Dispatch: deps.Dispatch,
			Sleep:    deps.Sleep,
			Clock:    deps.Clock,
			Products: deps.Store.Products,
			Track:    deps.Track,
		}
		metrics.FunnelsEntered.WithLabelValues(def.ID).Inc()
		fr, err := exec.Run(ctx, session, visitor, def, deps.Rand)
		if err != nil {
			metrics.VisitsCompleted.WithLabelValues("aborted").Inc()
			logging.Err(err).Str("funnel", def.ID).Msg("funnel execution aborted")
			return result, err
		}
		metrics.FunnelsCompleted.WithLabelValues(def.ID).Inc()
		recordActionMetrics(session)
		if fr.ExitSession {
			result.ActionsEmitted = session.ActionIndex
			metrics.VisitsCompleted.WithLabelValues("completed").Inc()
			return result, nil
		}
	}

	plan := planner.Plan(deps.Rand, deps.PagesMin, deps.PagesMax, deps.Probs)
	session.Plan = plan

	for {
		if err := ctx.Err(); err != nil {
			result.ActionsEmitted = session.ActionIndex
			return result, err
		}

		kind, ok := planner.Next(session, plan)
		if !ok {
			if err := padVisitDuration(ctx, deps, session); err != nil {
				result.ActionsEmitted = session.ActionIndex
				return result, err
			}
			break
		}

		if session.ActionIndex > 0 {
			pause := samplePause(deps.Rand, deps.PauseMin, deps.PauseMax)
			if err := deps.Sleep(ctx, pause); err != nil {
				result.ActionsEmitted = session.ActionIndex
				return result, err
			}
		}

		action := buildRandomAction(deps.Store, deps.Rand, kind, session)
		session.CurrentURL = model.URL{Href: action.URL}
		cdt := trackbuilder.FormatCDT(deps.Clock.Now())
		req := trackbuilder.Build(action, session, visitor, cdt, deps.Track)
		if err := deps.Dispatch(ctx, req); err != nil {
			result.ActionsEmitted = session.ActionIndex
			metrics.VisitsCompleted.WithLabelValues("aborted").Inc()
			logging.Err(err).Str("kind", kind.String()).Msg("random browsing dispatch failed")
			return result, err
		}
		session.RecordAction(action)
		metrics.ActionsEmitted.WithLabelValues(action.Kind.String()).Inc()
	}

	result.ActionsEmitted = session.ActionIndex
	metrics.VisitsCompleted.WithLabelValues("completed").Inc()
	return result, nil
}

func recordActionMetrics(session *model.Session) {
	for _, kind := range session.ActionsEmitted {
		metrics.ActionsEmitted.WithLabelValues(kind.String()).Inc()
	}
}

// padVisitDuration sleeps out the remainder of VisitDurationMin if the
// random-browsing plan finished before that floor was reached. Pauses
// between actions take precedence (spec.md §9): this only fires when the
// plan underflows, and never extends a visit past VisitDurationMax.
func padVisitDuration(ctx context.Context, deps VisitDeps, session *model.Session) error {
	if deps.VisitDurationMin <= 0 {
		return nil
	}
	elapsed := deps.Clock.Now().Sub(session.StartWallclock)
	if elapsed >= deps.VisitDurationMin {
		return nil
	}
	pad := deps.VisitDurationMin - elapsed
	if deps.VisitDurationMax > 0 && elapsed+pad > deps.VisitDurationMax {
		pad = deps.VisitDurationMax - elapsed
	}
	if pad <= 0 {
		return nil
	}
	return deps.Sleep(ctx, pad)
}

// samplePause draws a think-time duration uniformly from [min, max], padding
// up to min if the window is degenerate (spec.md §6 "soft bounds used to pad
// think-times if plan underflows").
func samplePause(rng *rand.Rand, minD, maxD time.Duration) time.Duration {
	if maxD <= minD {
		return minD
	}
	span := maxD - minD
	return minD + time.Duration(rng.Int63n(int64(span)))
}

// WallSleep is the live-generation SleepFunc: real wall-clock sleep,
// cancelable by ctx (spec.md §5 "cooperative... observable from every
// suspension point").
func WallSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
