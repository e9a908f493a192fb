// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package model

import "time"

// URL is one entry of the catalog's page hierarchy (spec §3).
type URL struct {
	Href        string
	Title       string
	Category    string
	Subcategory string
}

// Plan records the per-visit pre-planning decisions made once at session
// start (spec §4.4 "Pre-planning"): which special action kinds will occur
// this visit, and at which zero-based action slot.
type Plan struct {
	PagesPlanned int
	// SpecialSlot maps an ActionKind to the action index it is scheduled at.
	// A kind absent from the map does not occur this visit.
	SpecialSlot map[ActionKind]int
}

// Occurs reports whether kind is scheduled to occur this visit.
func (p Plan) Occurs(kind ActionKind) bool {
	_, ok := p.SpecialSlot[kind]
	return ok
}

// Session is one simulated visitor's browsing sequence (spec §3).
type Session struct {
	Visitor Visitor
	Plan    Plan

	PageIndex      int // number of pageviews emitted so far
	ActionIndex    int // number of actions emitted so far (any kind)
	ActionsEmitted []ActionKind

	StartWallclock  time.Time
	CurrentURL      URL
	LastPageviewURL URL
	HasPageview     bool

	// FunnelID is set once a funnel is selected for this session, empty for
	// random browsing.
	FunnelID string
}

// FirstActionOfVisit reports whether the next action would be the first one
// emitted (spec §4.4 rule 1).
func (s *Session) FirstActionOfVisit() bool {
	return s.ActionIndex == 0
}

// RecordAction updates session bookkeeping after an action has been built
// and dispatched. Must be called exactly once per emitted action, in order.
func (s *Session) RecordAction(a Action) {
	s.ActionsEmitted = append(s.ActionsEmitted, a.Kind)
	s.ActionIndex++
	if a.Kind == ActionPageview {
		s.PageIndex++
		s.HasPageview = true
		s.LastPageviewURL = s.CurrentURL
	}
}
