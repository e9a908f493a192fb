// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package model

import (
	"sync"
	"time"
)

// CapMode resolves the spec §9 open question of whether MAX_TOTAL_VISITS is
// a lifetime cap or a rolling-24h cap, as an explicit enum rather than an
// implicit inference from other fields.
type CapMode int

const (
	// CapOff disables the total-visits cap entirely.
	CapOff CapMode = iota
	// CapLifetime treats MAX_TOTAL_VISITS as a cumulative, never-reset cap
	// on launches since engine start (spec §4.7 auto-stop condition b).
	CapLifetime
	// CapRolling24h treats MAX_TOTAL_VISITS as a per-rolling-24h-window cap
	// that pauses launches and resets the window once it elapses (spec §4.6).
	CapRolling24h
)

// String returns the lowercase config-file spelling of the mode.
func (m CapMode) String() string {
	switch m {
	case CapLifetime:
		return "lifetime"
	case CapRolling24h:
		return "rolling24h"
	default:
		return "off"
	}
}

// DailyCounter is the process-wide rolling-24h launch counter (spec §3,
// §4.6). It is mutated only by the pace controller under mu, satisfying the
// "single critical section per acquire" resource-model requirement (spec §5).
type DailyCounter struct {
	mu             sync.Mutex
	windowStart    time.Time
	visitsInWindow int
}

// NewDailyCounter creates a counter with its window starting at now.
func NewDailyCounter(now time.Time) *DailyCounter {
	return &DailyCounter{windowStart: now}
}

// TryIncrement attempts to record one more launch against maxTotal (0 means
// unbounded). It returns ok=false without mutating state if the window is at
// capacity and has not yet elapsed 24h; the caller is expected to wait until
// resumeAfter before retrying.
func (c *DailyCounter) TryIncrement(now time.Time, maxTotal int) (ok bool, resumeAfter time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.windowStart.IsZero() {
		c.windowStart = now
	}

	if maxTotal > 0 && c.visitsInWindow >= maxTotal {
		windowEnd := c.windowStart.Add(24 * time.Hour)
		if now.Before(windowEnd) {
			return false, windowEnd
		}
		// 24h elapsed: slide the window forward and reset.
		c.windowStart = now
		c.visitsInWindow = 0
	}

	c.visitsInWindow++
	return true, time.Time{}
}

// Snapshot returns the current window state for status reporting.
func (c *DailyCounter) Snapshot() (windowStart time.Time, visitsInWindow int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.windowStart, c.visitsInWindow
}
