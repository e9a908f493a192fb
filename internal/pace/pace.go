// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

// Package pace converts a target visit rate into a session-launch cadence
// and enforces the optional rolling-24h daily cap (spec.md §4.6).
package pace

import (
	"context"
	"math"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/trafficinator/internal/logging"
	"github.com/tomtom215/trafficinator/internal/metrics"
	"github.com/tomtom215/trafficinator/internal/model"
)

// minResumeLogInterval bounds how often the controller logs remaining wait
// while suspended on the daily cap (spec.md §4.6 "periodically, >= every 60s").
const minResumeLogInterval = 60 * time.Second

// Controller is the rate/pace controller (C6): a token bucket sized from
// the configured target rate, optionally gated by a rolling-24h cap.
type Controller struct {
	limiter *rate.Limiter
	counter *model.DailyCounter
	capMode model.CapMode
	maxTotal int
	clock    func() time.Time
}

// New builds a Controller. targetVisitsPerDay must be > 0. capMode/maxTotal
// mirror model.CapMode's resolution of the MAX_TOTAL_VISITS open question.
func New(targetVisitsPerDay float64, capMode model.CapMode, maxTotal int) *Controller {
	r := targetVisitsPerDay / 86400
	capacity := int(math.Ceil(r))
	if capacity < 1 {
		capacity = 1
	}

	return &Controller{
		limiter:  rate.NewLimiter(rate.Limit(r), capacity),
		counter:  model.NewDailyCounter(time.Now()),
		capMode:  capMode,
		maxTotal: maxTotal,
		clock:    time.Now,
	}
}

// Acquire blocks until a launch token is available and, when the rolling
// cap applies, until the daily window has room. It returns an error only if
// ctx is canceled while waiting.
func (c *Controller) Acquire(ctx context.Context) error {
	if c.capMode == model.CapRolling24h {
		if err := c.waitForWindow(ctx); err != nil {
			return err
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	metrics.PaceTokensIssued.Inc()
	return nil
}

func (c *Controller) waitForWindow(ctx context.Context) error {
	var lastLog time.Time
	for {
		now := c.clock()
		ok, resumeAfter := c.counter.TryIncrement(now, c.maxTotal)
		if ok {
			_, inWindow := c.counter.Snapshot()
			metrics.PaceCapWindowVisits.Set(float64(inWindow))
			return nil
		}

		metrics.PacePauses.Inc()
		wait := resumeAfter.Sub(now)
		if wait <= 0 {
			continue
		}
		if now.Sub(lastLog) >= minResumeLogInterval {
			logging.Warn().
				Dur("resume_in", wait).
				Time("resume_at", resumeAfter).
				Msg("pace controller paused: rolling daily cap reached")
			lastLog = now
		}

		timer := time.NewTimer(minDuration(wait, minResumeLogInterval))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

// TokensAvailable reports the current bucket fill for status reporting.
func (c *Controller) TokensAvailable() float64 {
	return c.limiter.Tokens()
}
