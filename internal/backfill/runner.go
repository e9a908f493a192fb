// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package backfill

import (
	"context"
	"math"
	"math/rand"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/trafficinator/internal/catalog"
	"github.com/tomtom215/trafficinator/internal/dispatcher"
	"github.com/tomtom215/trafficinator/internal/engine"
	"github.com/tomtom215/trafficinator/internal/identity"
	"github.com/tomtom215/trafficinator/internal/logging"
	"github.com/tomtom215/trafficinator/internal/metrics"
	"github.com/tomtom215/trafficinator/internal/planner"
	"github.com/tomtom215/trafficinator/internal/trackbuilder"
)

// maxConsecutiveFailures aborts the run once this many visits in a row end
// in error (spec.md §4.9 "N=5 by default").
const maxConsecutiveFailures = 5

// Config configures one backfill run (spec.md §4.9, §6).
type Config struct {
	Window    Window
	MaxPerDay int
	MaxTotal  int // 0 means unbounded
	RPSLimit  float64
	Seed      int64
	HasSeed   bool

	IdentOpts                          identity.Options
	Track                              trackbuilder.Config
	Probs                              planner.Probabilities
	PagesMin, PagesMax                 int
	PauseMin, PauseMax                 time.Duration
	VisitDurationMin, VisitDurationMax time.Duration
}

// DaySummary reports one day's replay outcome (spec.md §4.9 step 6).
type DaySummary struct {
	Day       time.Time
	Planned   int
	Emitted   int
	Succeeded int
	Failed    int
}

// Runner executes one backfill window (C9). It implements suture.Service
// so it can be supervised alongside the live engine, but unlike Pool it is
// a one-shot run: Serve returns nil once the window is fully replayed or
// the total budget is exhausted, and a non-nil error only for a genuine
// abort condition or context cancellation.
type Runner struct {
	store    *catalog.Store
	dispatch *dispatcher.Dispatcher
	cfg      Config
	limiter  *rate.Limiter

	consecutiveFailures int
	Summaries           []DaySummary
}

// NewRunner builds a Runner. dispatch is the shared C8 dispatcher; when
// cfg.RPSLimit > 0 an independent token bucket throttles every request this
// runner issues, separate from C6's live-generation pace controller.
func NewRunner(store *catalog.Store, dispatch *dispatcher.Dispatcher, cfg Config) *Runner {
	r := &Runner{store: store, dispatch: dispatch, cfg: cfg}
	if cfg.RPSLimit > 0 {
		capacity := int(math.Ceil(cfg.RPSLimit))
		if capacity < 1 {
			capacity = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(cfg.RPSLimit), capacity)
	}
	return r
}

// Serve implements suture.Service: replays every day in the configured
// window, in order, stopping early and cleanly once the total visit budget
// is exhausted (spec.md §4.9 "clean termination, not an error").
func (r *Runner) Serve(ctx context.Context) error {
	days := r.cfg.Window.Days()
	unlimitedTotal := r.cfg.MaxTotal <= 0
	remaining := r.cfg.MaxTotal

	var seedBytes []byte
	if r.cfg.HasSeed {
		seedBytes = seedBytesFrom(r.cfg.Seed)
	}

	for _, day := range days {
		if err := ctx.Err(); err != nil {
			return err
		}

		n := r.cfg.MaxPerDay
		if !unlimitedTotal && remaining < n {
			n = remaining
		}
		if n <= 0 {
			logging.Info().Time("day", day).Msg("backfill total budget exhausted before window end")
			return nil
		}

		summary, err := r.runDay(ctx, day, n, seedBytes)
		r.Summaries = append(r.Summaries, summary)
		metrics.BackfillDaysProcessed.Inc()
		metrics.BackfillVisitsGenerated.WithLabelValues(day.Format(dateLayout)).Add(float64(summary.Succeeded))
		if err != nil {
			metrics.BackfillErrors.WithLabelValues("run_day").Inc()
		}
		logging.Info().
			Time("day", summary.Day).
			Int("planned", summary.Planned).
			Int("emitted", summary.Emitted).
			Int("succeeded", summary.Succeeded).
			Int("failed", summary.Failed).
			Msg("backfill day complete")
		if err != nil {
			return err
		}

		if !unlimitedTotal {
			remaining -= n
		}
	}

	return nil
}

func (r *Runner) runDay(ctx context.Context, day time.Time, n int, seedBytes []byte) (DaySummary, error) {
	var rng *rand.Rand
	if seedBytes != nil {
		rng = daySeededRand(seedBytes, day)
	} else {
		rng = rand.New(rand.NewSource(day.UnixNano()))
	}

	starts := distributeStartTimes(rng, day, n)
	summary := DaySummary{Day: day, Planned: n}
	allocator := identity.New(r.store, rng)

	for _, start := range starts {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		clock := newSyntheticClock(start)
		deps := engine.VisitDeps{
			Store:     r.store,
			Allocator: allocator,
			IdentOpts: r.cfg.IdentOpts,
			Dispatch:  r.throttledDispatch,
			Sleep:     clock.Sleep,
			Clock:     clock,
			Track:     r.cfg.Track,
			Probs:     r.cfg.Probs,
			PagesMin:  r.cfg.PagesMin,
			PagesMax:  r.cfg.PagesMax,
			PauseMin:  r.cfg.PauseMin,
			PauseMax:  r.cfg.PauseMax,

			VisitDurationMin: r.cfg.VisitDurationMin,
			VisitDurationMax: r.cfg.VisitDurationMax,
			Rand:             rng,
		}

		_, err := engine.RunVisit(ctx, deps)
		if err != nil && ctx.Err() != nil {
			return summary, ctx.Err()
		}

		summary.Emitted++
		if err != nil {
			summary.Failed++
			r.consecutiveFailures++
			if r.consecutiveFailures >= maxConsecutiveFailures {
				return summary, &BackfillError{Reason: "aborting after too many consecutive failures"}
			}
			continue
		}

		summary.Succeeded++
		r.consecutiveFailures = 0
	}

	return summary, nil
}

// throttledDispatch applies the optional rps_limit bucket before delegating
// to the shared C8 dispatcher (spec.md §5 suspension point "(d) backfill
// rps throttle").
func (r *Runner) throttledDispatch(ctx context.Context, req trackbuilder.Request) error {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	return r.dispatch.Dispatch(ctx, req)
}
