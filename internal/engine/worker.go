// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package engine

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/trafficinator/internal/catalog"
	"github.com/tomtom215/trafficinator/internal/dispatcher"
	"github.com/tomtom215/trafficinator/internal/identity"
	"github.com/tomtom215/trafficinator/internal/logging"
	"github.com/tomtom215/trafficinator/internal/model"
	"github.com/tomtom215/trafficinator/internal/pace"
	"github.com/tomtom215/trafficinator/internal/planner"
	"github.com/tomtom215/trafficinator/internal/trackbuilder"
)

// PoolConfig configures the live worker pool (C7, spec.md §4.7 "Active ->
// Emitting -> Paused" lifecycle and §4.6 auto-stop conditions).
type PoolConfig struct {
	Concurrency                        int
	AutoStopAfterHours                 float64
	CapMode                            model.CapMode
	MaxTotalVisits                     int
	PagesMin, PagesMax                 int
	PauseMin, PauseMax                 time.Duration
	VisitDurationMin, VisitDurationMax time.Duration
	Probs                              planner.Probabilities
	IdentOpts                          identity.Options
	Track                              trackbuilder.Config
	Timezone                           string
}

// Pool supervises a fixed number of concurrent visit-launching goroutines,
// gated by a pace.Controller, as a single suture.Service (spec.md §5 "a
// pool of worker goroutines bounded by CONCURRENCY").
type Pool struct {
	store    *catalog.Store
	pacer    *pace.Controller
	dispatch *dispatcher.Dispatcher
	cfg      PoolConfig
	clock    model.Clock

	lifetimeVisits int64
}

// NewPool builds a Pool. store must already be loaded; pacer and dispatch
// are shared across every worker slot. The session clock resolves "now" in
// cfg.Timezone (spec.md §4.2/§6 "cdt ... in the configured zone"), not the
// host process's local zone.
func NewPool(store *catalog.Store, pacer *pace.Controller, dispatch *dispatcher.Dispatcher, cfg PoolConfig) *Pool {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Pool{store: store, pacer: pacer, dispatch: dispatch, cfg: cfg, clock: identity.WallClock(cfg.Timezone)}
}

// LifetimeVisits reports the cumulative number of visits launched since the
// pool started, for status reporting and the CapLifetime auto-stop check.
func (p *Pool) LifetimeVisits() int64 {
	return atomic.LoadInt64(&p.lifetimeVisits)
}

// Serve implements suture.Service. It runs cfg.Concurrency worker
// goroutines until ctx is canceled, the configured auto-stop duration
// elapses, or (under CapLifetime) the cumulative launch cap is reached.
func (p *Pool) Serve(ctx context.Context) error {
	logging.Info().Int("concurrency", p.cfg.Concurrency).Msg("visit engine worker pool starting")

	runCtx := ctx
	var cancel context.CancelFunc
	if p.cfg.AutoStopAfterHours > 0 {
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(p.cfg.AutoStopAfterHours*float64(time.Hour)))
		defer cancel()
	}

	var wg sync.WaitGroup
	wg.Add(p.cfg.Concurrency)
	for i := 0; i < p.cfg.Concurrency; i++ {
		seed := time.Now().UnixNano() ^ int64(i)*2654435761
		rng := rand.New(rand.NewSource(seed))
		go func() {
			defer wg.Done()
			p.workerLoop(runCtx, rng)
		}()
	}
	wg.Wait()

	logging.Info().Msg("visit engine worker pool stopped")
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

func (p *Pool) workerLoop(ctx context.Context, rng *rand.Rand) {
	allocator := identity.New(p.store, rng)

	for {
		if p.cfg.CapMode == model.CapLifetime && p.cfg.MaxTotalVisits > 0 {
			if atomic.LoadInt64(&p.lifetimeVisits) >= int64(p.cfg.MaxTotalVisits) {
				return
			}
		}

		if err := p.pacer.Acquire(ctx); err != nil {
			return
		}

		atomic.AddInt64(&p.lifetimeVisits, 1)

		deps := VisitDeps{
			Store:     p.store,
			Allocator: allocator,
			IdentOpts: p.cfg.IdentOpts,
			Dispatch:  p.dispatch.Dispatch,
			Sleep:     WallSleep,
			Clock:     p.clock,
			Track:     p.cfg.Track,
			Probs:     p.cfg.Probs,
			PagesMin:  p.cfg.PagesMin,
			PagesMax:  p.cfg.PagesMax,
			PauseMin:  p.cfg.PauseMin,
			PauseMax:  p.cfg.PauseMax,

			VisitDurationMin: p.cfg.VisitDurationMin,
			VisitDurationMax: p.cfg.VisitDurationMax,
			Rand:             rng,
		}

		if _, err := RunVisit(ctx, deps); err != nil && ctx.Err() != nil {
			return
		}
	}
}
