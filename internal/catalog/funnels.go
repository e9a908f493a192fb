// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package catalog

import (
	"io"

	"github.com/goccy/go-json"

	"github.com/tomtom215/trafficinator/internal/model"
)

type stepWire struct {
	Type          string   `json:"type"`
	URL           string   `json:"url,omitempty"`
	ActionName    string   `json:"action_name,omitempty"`
	SearchTerm    string   `json:"search_term,omitempty"`
	SearchCat     string   `json:"search_cat,omitempty"`
	EventCategory string   `json:"event_category,omitempty"`
	EventAction   string   `json:"event_action,omitempty"`
	EventName     string   `json:"event_name,omitempty"`
	EventValue    *float64 `json:"event_value,omitempty"`
	Revenue       *float64 `json:"revenue,omitempty"`
	DelayMinS     float64  `json:"delay_min_s"`
	DelayMaxS     float64  `json:"delay_max_s"`
}

type funnelWire struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Probability         float64    `json:"probability"`
	Priority            int        `json:"priority"`
	Enabled             bool       `json:"enabled"`
	ExitAfterCompletion bool       `json:"exit_after_completion"`
	Steps               []stepWire `json:"steps"`
}

type funnelsWire struct {
	Funnels []funnelWire `json:"funnels"`
}

var stepTypeByName = map[string]model.StepType{
	"pageview":        model.StepPageview,
	"sitesearch":      model.StepSiteSearch,
	"site_search":     model.StepSiteSearch,
	"outlink":         model.StepOutlink,
	"download":        model.StepDownload,
	"click_event":     model.StepClickEvent,
	"random_event":    model.StepRandomEvent,
	"ecommerce_order": model.StepEcommerceOrder,
	"ecommerce":       model.StepEcommerceOrder,
}

// ParseFunnels parses funnels.json (spec §3, §6). Fails with CatalogError on
// a malformed document or an invariant violation (empty step list, or
// delay_max_s < delay_min_s).
func ParseFunnels(r io.Reader) ([]model.FunnelDef, error) {
	var wire funnelsWire
	dec := json.NewDecoder(r)
	if err := dec.Decode(&wire); err != nil {
		return nil, newCatalogError("funnels.json", "schema validation failed", err)
	}

	defs := make([]model.FunnelDef, 0, len(wire.Funnels))
	for i, fw := range wire.Funnels {
		if len(fw.Steps) == 0 {
			return nil, newCatalogError("funnels.json", "funnel "+fw.ID+" has no steps", nil)
		}
		if fw.Probability < 0 || fw.Probability > 1 {
			return nil, newCatalogError("funnels.json", "funnel "+fw.ID+" probability out of [0,1]", nil)
		}

		steps := make([]model.Step, 0, len(fw.Steps))
		for _, sw := range fw.Steps {
			if sw.DelayMaxS < sw.DelayMinS || sw.DelayMinS < 0 {
				return nil, newCatalogError("funnels.json", "funnel "+fw.ID+" has delay_max_s < delay_min_s", nil)
			}
			st, ok := stepTypeByName[sw.Type]
			if !ok {
				return nil, newCatalogError("funnels.json", "funnel "+fw.ID+" has unknown step type "+sw.Type, nil)
			}
			step := model.Step{
				Type:       st,
				URL:        sw.URL,
				ActionName: sw.ActionName,
				SearchTerm: sw.SearchTerm,
				SearchCat:  sw.SearchCat,
				EventCategory: sw.EventCategory,
				EventAction:   sw.EventAction,
				EventName:     sw.EventName,
				DelayMinS:  sw.DelayMinS,
				DelayMaxS:  sw.DelayMaxS,
			}
			if sw.EventValue != nil {
				step.EventValue = *sw.EventValue
				step.HasEventValue = true
			}
			if sw.Revenue != nil {
				step.RevenueOverride = *sw.Revenue
				step.HasRevenueOverride = true
			}
			steps = append(steps, step)
		}

		def := model.FunnelDef{
			ID:                  fw.ID,
			Name:                fw.Name,
			Probability:         fw.Probability,
			Priority:            fw.Priority,
			Enabled:             fw.Enabled,
			ExitAfterCompletion: fw.ExitAfterCompletion,
			Steps:               steps,
		}
		def.SetOrder(i)
		defs = append(defs, def)
	}
	return defs, nil
}
