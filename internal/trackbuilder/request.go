// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

// Package trackbuilder turns one planned Action into a Matomo Tracking API
// request (spec §4.2). Build does no I/O and does not modify its inputs:
// apart from the rand cache-buster, which is drawn fresh on every call, the
// same action, session, visitor, cdt and config give the same request. The
// dispatcher retries the built request as is, so a retry carries the
// original parameters, cdt included (spec §5).
package trackbuilder

import (
	"math/rand"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/trafficinator/internal/model"
)

// cdtLayout is the Matomo cdt parameter format (spec §4.2).
const cdtLayout = "2006-01-02 15:04:05"

// FormatCDT renders t in the wire format Matomo expects for cdt. The caller
// is responsible for t already being in the session's configured zone.
func FormatCDT(t time.Time) string {
	return t.Format(cdtLayout)
}

// maxGetPayloadBytes is the threshold past which Build selects POST instead
// of GET (spec §4.8, rare: only ecommerce orders with many items).
const maxGetPayloadBytes = 2048

// Method is the HTTP method the dispatcher should use for a Request.
type Method string

const (
	MethodGet  Method = "GET"
	MethodPost Method = "POST"
)

// Request is the fully-built, ready-to-send tracking request.
type Request struct {
	Method     Method
	Endpoint   string
	QueryParams url.Values
}

// Config is the subset of configuration Build needs, kept narrow so this
// package has no dependency on internal/config.
type Config struct {
	TrackingURL        string
	SiteID             int
	TokenAuth          string
	Lang               string
	Resolution         string
	RandomizeCountries bool
}

// Build constructs the tracking request for one action (spec §4.2). The
// caller is responsible for having already called session.RecordAction
// *after* this returns, not before - Build reads LastPageviewURL/CurrentURL
// as they stood before the action being built.
func Build(action model.Action, session *model.Session, visitor model.Visitor, cdt string, cfg Config) Request {
	q := url.Values{}
	q.Set("idsite", strconv.Itoa(cfg.SiteID))
	q.Set("rec", "1")
	q.Set("apiv", "1")
	q.Set("rand", strconv.FormatInt(rand.Int63(), 10))
	q.Set("_id", visitor.VisitorID)
	q.Set("ua", visitor.UserAgent)
	q.Set("cdt", cdt)
	if cfg.Lang != "" {
		q.Set("lang", cfg.Lang)
	}
	if cfg.Resolution != "" {
		q.Set("res", cfg.Resolution)
	}

	applyGeolocation(q, visitor, cfg)
	q.Set("url", action.URL)
	applyActionParams(q, action, session, visitor)

	payloadSize := len(q.Encode())
	method := MethodGet
	if payloadSize > maxGetPayloadBytes {
		method = MethodPost
	}

	return Request{Method: method, Endpoint: cfg.TrackingURL, QueryParams: q}
}

func applyGeolocation(q url.Values, visitor model.Visitor, cfg Config) {
	if !cfg.RandomizeCountries || cfg.TokenAuth == "" {
		return
	}
	q.Set("cip", visitor.IP)
	q.Set("country", visitor.Country)
	q.Set("token_auth", cfg.TokenAuth)
}

func applyActionParams(q url.Values, action model.Action, session *model.Session, visitor model.Visitor) {
	switch action.Kind {
	case model.ActionPageview:
		q.Set("action_name", action.ActionName)
		q.Set("urlref", referrerForPageview(visitor, session))

	case model.ActionSiteSearch:
		q.Set("search", action.SearchTerm)
		if action.SearchCat != "" {
			q.Set("search_cat", action.SearchCat)
		}
		if action.HasCount {
			q.Set("search_count", strconv.Itoa(action.SearchCount))
		}

	case model.ActionOutlink:
		q.Set("link", action.TargetURL)
		q.Set("urlref", session.LastPageviewURL.Href)

	case model.ActionDownload:
		q.Set("download", action.TargetURL)
		q.Set("urlref", session.LastPageviewURL.Href)

	case model.ActionClickEvent, model.ActionRandomEvent:
		q.Set("e_c", action.EventCategory)
		q.Set("e_a", action.EventAction)
		if action.EventName != "" {
			q.Set("e_n", action.EventName)
		}
		if action.HasEventValue {
			q.Set("e_v", strconv.FormatFloat(action.EventValue, 'f', -1, 64))
		}

	case model.ActionEcommerceOrder:
		applyEcommerceParams(q, action)
	}
}

// referrerForPageview implements the §4.2 rule: external referrer on the
// first pageview of the visit, the previous pageview URL otherwise.
func referrerForPageview(visitor model.Visitor, session *model.Session) string {
	if !session.HasPageview {
		return visitor.Referrer.URL
	}
	return session.LastPageviewURL.Href
}

func applyEcommerceParams(q url.Values, action model.Action) {
	q.Set("idgoal", "0")
	q.Set("ec_id", action.OrderID)
	q.Set("revenue", strconv.FormatFloat(action.Revenue, 'f', -1, 64))
	if action.HasSubTotal {
		q.Set("ec_st", strconv.FormatFloat(action.SubTotal, 'f', -1, 64))
	}
	if action.HasTax {
		q.Set("ec_tx", strconv.FormatFloat(action.Tax, 'f', -1, 64))
	}
	if action.HasShipping {
		q.Set("ec_sh", strconv.FormatFloat(action.Shipping, 'f', -1, 64))
	}
	if action.Currency != "" {
		q.Set("currency", action.Currency)
	}
	items := make([][5]any, 0, len(action.Items))
	for _, it := range action.Items {
		items = append(items, [5]any{it.SKU, it.Name, it.Category, it.Price, it.Quantity})
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		// Items are always built from the catalog's own Product rows; a
		// marshal failure here means a non-finite float slipped through.
		encoded = []byte("[]")
	}
	q.Set("ec_items", string(encoded))
}
