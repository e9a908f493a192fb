// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package backfill

import (
	"math/rand"
	"sort"
	"time"
)

// distributeStartTimes draws n session-start timestamps uniformly over
// day's 24 hours (spec.md §4.9 step 3: "hourly weights accepted, not
// applied" per the open-question resolution), returned in ascending order
// so the per-day replay proceeds in a sensible timeline.
func distributeStartTimes(rng *rand.Rand, day time.Time, n int) []time.Time {
	times := make([]time.Time, n)
	for i := 0; i < n; i++ {
		offset := time.Duration(rng.Int63n(int64(24 * time.Hour)))
		times[i] = day.Add(offset)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	return times
}
