// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package catalog

import (
	"io"

	"github.com/goccy/go-json"
)

// eventDefWire is the on-disk shape of one EventDef entry in events.json.
type eventDefWire struct {
	Kind     string   `json:"kind"`
	Category string   `json:"category"`
	Action   string   `json:"action"`
	Name     *string  `json:"name,omitempty"`
	Value    *float64 `json:"value,omitempty"`
}

// eventsWire is the on-disk shape of events.json (spec §6).
type eventsWire struct {
	ClickEvents             []eventDefWire `json:"click_events"`
	RandomEvents            []eventDefWire `json:"random_events"`
	ClickEventsProbability  *float64       `json:"click_events_probability"`
	RandomEventsProbability *float64       `json:"random_events_probability"`
}

// ParseEvents parses events.json (spec §6). Fails with CatalogError if the
// document does not match the expected schema.
func ParseEvents(r io.Reader) (EventCatalog, error) {
	var wire eventsWire
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&wire); err != nil {
		return EventCatalog{}, newCatalogError("events.json", "schema validation failed", err)
	}

	cat := EventCatalog{
		ClickEvents:  make([]EventDef, 0, len(wire.ClickEvents)),
		RandomEvents: make([]EventDef, 0, len(wire.RandomEvents)),
	}
	for _, w := range wire.ClickEvents {
		def, err := wire.toDef(w, "click")
		if err != nil {
			return EventCatalog{}, err
		}
		cat.ClickEvents = append(cat.ClickEvents, def)
	}
	for _, w := range wire.RandomEvents {
		def, err := wire.toDef(w, "random")
		if err != nil {
			return EventCatalog{}, err
		}
		cat.RandomEvents = append(cat.RandomEvents, def)
	}
	if wire.ClickEventsProbability != nil {
		cat.ClickEventsProbability = *wire.ClickEventsProbability
	}
	if wire.RandomEventsProbability != nil {
		cat.RandomEventsProbability = *wire.RandomEventsProbability
	}
	return cat, nil
}

func (eventsWire) toDef(w eventDefWire, expectedKind string) (EventDef, error) {
	if w.Category == "" || w.Action == "" {
		return EventDef{}, newCatalogError("events.json", "event missing category/action", nil)
	}
	def := EventDef{Kind: expectedKind, Category: w.Category, Action: w.Action}
	if w.Name != nil {
		def.Name = *w.Name
		def.HasName = true
	}
	if w.Value != nil {
		def.Value = *w.Value
		def.HasValue = true
	}
	return def, nil
}
