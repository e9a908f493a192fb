// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package engine

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/tomtom215/trafficinator/internal/catalog"
	"github.com/tomtom215/trafficinator/internal/model"
)

// buildRandomAction materializes a concrete model.Action for kind during
// random browsing (spec.md §4.4), drawing its URL/search term/event fields/
// ecommerce basket from the catalog. Pageview URLs are drawn uniformly from
// the full URL table; SiteSearch/Outlink/ClickEvent/RandomEvent/Ecommerce
// draw from the catalog's dedicated sub-lists.
func buildRandomAction(store *catalog.Store, rng *rand.Rand, kind model.ActionKind, session *model.Session) model.Action {
	switch kind {
	case model.ActionPageview:
		return model.Action{Kind: model.ActionPageview, URL: pickURL(store, rng), ActionName: pickTitle(store, rng)}

	case model.ActionSiteSearch:
		term, cat := pickSearchTerm(store, rng)
		return model.Action{Kind: model.ActionSiteSearch, URL: session.CurrentURL.Href, SearchTerm: term, SearchCat: cat}

	case model.ActionOutlink:
		target := pickExternalSite(store, rng)
		return model.Action{Kind: model.ActionOutlink, URL: session.CurrentURL.Href, TargetURL: target}

	case model.ActionDownload:
		target := pickURL(store, rng) + ".pdf"
		return model.Action{Kind: model.ActionDownload, URL: session.CurrentURL.Href, TargetURL: target}

	case model.ActionClickEvent:
		return buildEventAction(model.ActionClickEvent, store.Events.ClickEvents, rng, session)

	case model.ActionRandomEvent:
		return buildEventAction(model.ActionRandomEvent, store.Events.RandomEvents, rng, session)

	case model.ActionEcommerceOrder:
		return buildEcommerceAction(store.Products, rng, session)

	default:
		return model.Action{Kind: model.ActionPageview, URL: pickURL(store, rng)}
	}
}

func pickURL(store *catalog.Store, rng *rand.Rand) string {
	if len(store.URLs) == 0 {
		return "https://example.com/"
	}
	return store.URLs[rng.Intn(len(store.URLs))].Href
}

func pickTitle(store *catalog.Store, rng *rand.Rand) string {
	if len(store.URLs) == 0 {
		return "Home"
	}
	title := store.URLs[rng.Intn(len(store.URLs))].Title
	if title == "" {
		return "Untitled"
	}
	return title
}

func pickSearchTerm(store *catalog.Store, rng *rand.Rand) (term, category string) {
	engines := store.Referrers.SearchEngines
	if len(engines) == 0 {
		return "search", ""
	}
	engine := engines[rng.Intn(len(engines))]
	if len(engine.Terms) == 0 {
		return "search", ""
	}
	return engine.Terms[rng.Intn(len(engine.Terms))], ""
}

func pickExternalSite(store *catalog.Store, rng *rand.Rand) string {
	candidates := append(append([]string{}, store.Referrers.SocialSites...), store.Referrers.ReferralSites...)
	if len(candidates) == 0 {
		return "https://partner.example.com/"
	}
	return candidates[rng.Intn(len(candidates))]
}

func buildEventAction(kind model.ActionKind, defs []catalog.EventDef, rng *rand.Rand, session *model.Session) model.Action {
	if len(defs) == 0 {
		return model.Action{Kind: kind, URL: session.CurrentURL.Href, EventCategory: "engagement", EventAction: "interact"}
	}
	d := defs[rng.Intn(len(defs))]
	return model.Action{
		Kind:          kind,
		URL:           session.CurrentURL.Href,
		EventCategory: d.Category,
		EventAction:   d.Action,
		EventName:     d.Name,
		EventValue:    d.Value,
		HasEventValue: d.HasValue,
	}
}

func buildEcommerceAction(products []catalog.Product, rng *rand.Rand, session *model.Session) model.Action {
	if len(products) == 0 {
		return model.Action{Kind: model.ActionEcommerceOrder, URL: session.CurrentURL.Href, OrderID: uuid.New().String()}
	}

	n := 1 + rng.Intn(3)
	items := make([]model.EcommerceItem, 0, n)
	total := 0.0
	for i := 0; i < n; i++ {
		p := products[rng.Intn(len(products))]
		price := p.PriceMin + rng.Float64()*(p.PriceMax-p.PriceMin)
		qty := 1 + rng.Intn(3)
		items = append(items, model.EcommerceItem{SKU: p.SKU, Name: p.Name, Category: p.Category, Price: roundCents(price), Quantity: qty})
		total += price * float64(qty)
	}

	return model.Action{
		Kind:    model.ActionEcommerceOrder,
		URL:     session.CurrentURL.Href,
		OrderID: uuid.New().String(),
		Items:   items,
		Revenue: roundCents(total),
	}
}

func roundCents(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
