// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package catalog

import (
	"net"

	"github.com/tomtom215/trafficinator/internal/model"
)

// WeightedUserAgent is one entry of the user-agent catalog (spec §3).
type WeightedUserAgent struct {
	UserAgent string
	Weight    float64
}

// ReferrerWeights configures the default mix of referrer kinds (spec §3).
// Weights are normalized by the identity allocator, they need not sum to 1.
type ReferrerWeights struct {
	Search   float64
	Social   float64
	Referral float64
	Direct   float64
}

// DefaultReferrerWeights matches spec §3's documented defaults.
func DefaultReferrerWeights() ReferrerWeights {
	return ReferrerWeights{Search: 0.35, Social: 0.15, Referral: 0.20, Direct: 0.30}
}

// ReferrerCatalog holds sample search/social/referral sources used to build
// a concrete Referrer once a kind has been chosen by weighted draw.
type ReferrerCatalog struct {
	SearchEngines []SearchEngine
	SocialSites   []string
	ReferralSites []string
}

// SearchEngine is a sample search referrer with representative query terms.
type SearchEngine struct {
	URL   string
	Terms []string
}

// CountryEntry is one row of the country-IP table (spec §3).
type CountryEntry struct {
	CountryCode  string
	Weight       float64
	CIDRs        []*net.IPNet
	TimezoneHint string
}

// EventDef describes a click or random custom event (spec §3).
type EventDef struct {
	Kind     string // "click" or "random"
	Category string
	Action   string
	Name     string
	HasName  bool
	Value    float64
	HasValue bool
}

// EventCatalog is the parsed contents of events.json (spec §6).
type EventCatalog struct {
	ClickEvents            []EventDef
	RandomEvents           []EventDef
	ClickEventsProbability float64
	RandomEventsProbability float64
}

// Product is one entry of the product catalog used for ecommerce orders
// (spec §3).
type Product struct {
	SKU             string
	Name            string
	Category        string
	PriceMin        float64
	PriceMax        float64
	CurrencyDefault string
}

// StructureSummary aggregates per-category/per-subcategory URL counts, used
// for the Control UI's preview and for tests (spec §4.1).
type StructureSummary struct {
	TotalURLs      int
	PerCategory    map[string]int
	PerSubcategory map[string]int // "category/subcategory" -> count
}

// URLTable is the loaded set of URLs plus its structure summary.
type URLTable struct {
	URLs    []model.URL
	Summary StructureSummary
}
