// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package planner

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/trafficinator/internal/model"
)

func TestPlan_NeverSchedulesSpecialAtFirstSlot(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	probs := Probabilities{SiteSearch: 1, Outlink: 1, Download: 1, ClickEvent: 1, RandomEvent: 1, Ecommerce: 1}

	for i := 0; i < 200; i++ {
		plan := Plan(rng, 2, 8, probs)
		for kind, slot := range plan.SpecialSlot {
			assert.NotZero(t, slot, "kind %v scheduled at first slot", kind)
			assert.Less(t, slot, plan.PagesPlanned)
		}
	}
}

func TestPlan_SinglePageviewNeverSchedulesSpecials(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	probs := Probabilities{SiteSearch: 1, Outlink: 1, Download: 1, ClickEvent: 1, RandomEvent: 1, Ecommerce: 1}

	plan := Plan(rng, 1, 1, probs)
	assert.Equal(t, 1, plan.PagesPlanned)
	assert.Empty(t, plan.SpecialSlot)
}

func TestNext_FirstActionIsAlwaysPageview(t *testing.T) {
	session := &model.Session{}
	plan := model.Plan{PagesPlanned: 3}

	kind, ok := Next(session, plan)
	require.True(t, ok)
	assert.Equal(t, model.ActionPageview, kind)
}

func TestNext_EmitsScheduledSpecialAfterItsPageview(t *testing.T) {
	session := &model.Session{}
	plan := model.Plan{PagesPlanned: 3, SpecialSlot: map[model.ActionKind]int{model.ActionSiteSearch: 1}}

	session.RecordAction(model.Action{Kind: model.ActionPageview})
	kind, ok := Next(session, plan)
	require.True(t, ok)
	assert.Equal(t, model.ActionPageview, kind, "slot 0 pageview already recorded, next pageview due before slot-1 special")

	session.RecordAction(model.Action{Kind: model.ActionPageview})
	kind, ok = Next(session, plan)
	require.True(t, ok)
	assert.Equal(t, model.ActionSiteSearch, kind)
}

func TestNext_PlanExhaustedTerminatesSession(t *testing.T) {
	session := &model.Session{}
	plan := model.Plan{PagesPlanned: 1}

	session.RecordAction(model.Action{Kind: model.ActionPageview})
	_, ok := Next(session, plan)
	assert.False(t, ok)
}
