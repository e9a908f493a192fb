// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

// Package planner decides, for a session not currently inside a funnel, how
// many pageviews a visit will have and which "special" action kinds occur,
// then produces the next ActionKind on demand (spec §4.4).
package planner

import (
	"math/rand"

	"github.com/tomtom215/trafficinator/internal/model"
)

// Probabilities holds the independent per-kind occurrence probabilities
// (spec §4.4 "p_search, p_outlink, p_download, p_click_event,
// p_random_event, p_ecommerce").
type Probabilities struct {
	SiteSearch  float64
	Outlink     float64
	Download    float64
	ClickEvent  float64
	RandomEvent float64
	Ecommerce   float64
}

// specialKinds lists every ActionKind eligible for pre-planning, in a fixed
// order so tests are deterministic for a given Rand source.
var specialKinds = []model.ActionKind{
	model.ActionSiteSearch,
	model.ActionOutlink,
	model.ActionDownload,
	model.ActionClickEvent,
	model.ActionRandomEvent,
	model.ActionEcommerceOrder,
}

func probabilityFor(p Probabilities, kind model.ActionKind) float64 {
	switch kind {
	case model.ActionSiteSearch:
		return p.SiteSearch
	case model.ActionOutlink:
		return p.Outlink
	case model.ActionDownload:
		return p.Download
	case model.ActionClickEvent:
		return p.ClickEvent
	case model.ActionRandomEvent:
		return p.RandomEvent
	case model.ActionEcommerceOrder:
		return p.Ecommerce
	default:
		return 0
	}
}

// Plan performs the pre-planning step (spec §4.4 "Pre-planning"): it picks
// a pageview count uniformly from [pagesMin, pagesMax] and, for each special
// kind, an independent coin flip decides whether it occurs this visit; if
// so it is scheduled at a uniformly random non-first action slot. Slot 0 is
// always the mandatory first pageview (rule 1), so no special kind can ever
// land there.
func Plan(rng *rand.Rand, pagesMin, pagesMax int, probs Probabilities) model.Plan {
	pagesPlanned := pagesMin
	if pagesMax > pagesMin {
		pagesPlanned = pagesMin + rng.Intn(pagesMax-pagesMin+1)
	}
	if pagesPlanned < 1 {
		pagesPlanned = 1
	}

	slots := map[model.ActionKind]int{}
	if pagesPlanned > 1 {
		for _, kind := range specialKinds {
			p := probabilityFor(probs, kind)
			if p <= 0 {
				continue
			}
			if rng.Float64() < p {
				slots[kind] = 1 + rng.Intn(pagesPlanned-1)
			}
		}
	}

	return model.Plan{PagesPlanned: pagesPlanned, SpecialSlot: slots}
}

// Next returns the next action kind the session should take, or ok=false if
// the plan is exhausted (spec §4.4 rule 4). pageview slots are always
// emitted in order 0..PagesPlanned-1; a special scheduled at slot i is
// emitted immediately after pageview i.
func Next(session *model.Session, plan model.Plan) (kind model.ActionKind, ok bool) {
	if session.FirstActionOfVisit() {
		return model.ActionPageview, true
	}

	pendingSpecial, hasPending := pendingSpecialAt(session, plan)
	if hasPending {
		return pendingSpecial, true
	}

	if session.PageIndex < plan.PagesPlanned {
		return model.ActionPageview, true
	}

	return model.ActionPageview, false
}

// pendingSpecialAt reports a special action scheduled for the pageview
// index the session just reached, if it has not already been emitted.
func pendingSpecialAt(session *model.Session, plan model.Plan) (model.ActionKind, bool) {
	currentSlot := session.PageIndex - 1 // index of the pageview just emitted
	if currentSlot < 0 {
		return 0, false
	}
	for kind, slot := range plan.SpecialSlot {
		if slot != currentSlot {
			continue
		}
		if alreadyEmitted(session, kind) {
			continue
		}
		return kind, true
	}
	return 0, false
}

func alreadyEmitted(session *model.Session, kind model.ActionKind) bool {
	for _, emitted := range session.ActionsEmitted {
		if emitted == kind {
			return true
		}
	}
	return false
}
