// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

// Package funnel selects and executes pre-authored user journeys (spec
// §4.5). Selection picks at most one funnel per session; execution walks
// its steps in order, sleeping the configured think-time before each and
// emitting exactly one tracking request per step.
package funnel

import (
	"math/rand"
	"sort"

	"github.com/tomtom215/trafficinator/internal/model"
)

// Select implements spec §4.5 "Selection": funnels are filtered to enabled,
// sorted by priority ascending (ties broken by definition order), then
// walked in order; the first one whose independent Bernoulli(probability)
// draw lands heads is returned. Returns ok=false if none is selected, in
// which case the caller falls back to random browsing (spec §4.4).
func Select(rng *rand.Rand, funnels []model.FunnelDef) (model.FunnelDef, bool) {
	candidates := make([]model.FunnelDef, 0, len(funnels))
	for _, f := range funnels {
		if f.Enabled {
			candidates = append(candidates, f)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority < candidates[j].Priority
		}
		return candidates[i].Order() < candidates[j].Order()
	})

	for _, f := range candidates {
		if rng.Float64() < f.Probability {
			return f, true
		}
	}
	return model.FunnelDef{}, false
}
