// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package backfill

import (
	"context"
	"time"
)

// syntheticClock is a per-visit model.Clock whose Now() advances only when
// Sleep is called, by exactly the requested duration (spec.md §4.9 step 4:
// "each subsequent action's cdt advanced by its real think-time duration,
// simulated, not slept in wall-clock"). It is not safe for concurrent use;
// each visit gets its own instance.
type syntheticClock struct {
	current time.Time
}

func newSyntheticClock(start time.Time) *syntheticClock {
	return &syntheticClock{current: start}
}

// Now implements model.Clock.
func (c *syntheticClock) Now() time.Time {
	return c.current
}

// Sleep implements funnel.SleepFunc/engine's injected SleepFunc: it advances
// the synthetic clock instead of blocking, still honoring ctx cancellation.
func (c *syntheticClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.current = c.current.Add(d)
	return nil
}
