// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package trackbuilder

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/trafficinator/internal/model"
)

func testVisitor() model.Visitor {
	return model.Visitor{
		VisitorID: "0123456789abcdef",
		UserAgent: "test-agent",
		Country:   "SE",
		IP:        "192.0.2.10",
		Referrer:  model.Referrer{Kind: model.ReferrerSearch, URL: "https://www.google.com/search", SearchTerms: "buy stuff"},
		Timezone:  "CET",
	}
}

func testConfig() Config {
	return Config{TrackingURL: "https://matomo.example.com/matomo.php", SiteID: 7}
}

func TestBuild_Pageview_FirstActionUsesExternalReferrer(t *testing.T) {
	session := &model.Session{}
	visitor := testVisitor()
	action := model.Action{Kind: model.ActionPageview, URL: "https://shop.example.com/", ActionName: "Home"}

	req := Build(action, session, visitor, "2026-07-30 10:00:00", testConfig())

	assert.Equal(t, MethodGet, req.Method)
	assert.Equal(t, "1", req.QueryParams.Get("rec"))
	assert.Equal(t, "7", req.QueryParams.Get("idsite"))
	assert.Equal(t, "Home", req.QueryParams.Get("action_name"))
	assert.Equal(t, visitor.Referrer.URL, req.QueryParams.Get("urlref"))
	assert.Equal(t, visitor.VisitorID, req.QueryParams.Get("_id"))

	randParam := req.QueryParams.Get("rand")
	n, err := strconv.ParseInt(randParam, 10, 64)
	require.NoError(t, err, "rand must be a positive integer, not a UUID")
	assert.Greater(t, n, int64(0))
}

func TestBuild_RandIsRefreshedPerRequest(t *testing.T) {
	session := &model.Session{}
	visitor := testVisitor()
	action := model.Action{Kind: model.ActionPageview, URL: "https://shop.example.com/", ActionName: "Home"}

	first := Build(action, session, visitor, "2026-07-30 10:00:00", testConfig())
	second := Build(action, session, visitor, "2026-07-30 10:00:00", testConfig())

	assert.NotEqual(t, first.QueryParams.Get("rand"), second.QueryParams.Get("rand"))
}

func TestBuild_Pageview_SubsequentUsesLastPageviewURL(t *testing.T) {
	session := &model.Session{
		HasPageview:     true,
		LastPageviewURL: model.URL{Href: "https://shop.example.com/category/shoes"},
	}
	visitor := testVisitor()
	action := model.Action{Kind: model.ActionPageview, URL: "https://shop.example.com/product/42", ActionName: "Product 42"}

	req := Build(action, session, visitor, "2026-07-30 10:01:00", testConfig())

	assert.Equal(t, "https://shop.example.com/category/shoes", req.QueryParams.Get("urlref"))
}

func TestBuild_Outlink(t *testing.T) {
	session := &model.Session{HasPageview: true, LastPageviewURL: model.URL{Href: "https://shop.example.com/"}}
	action := model.Action{Kind: model.ActionOutlink, URL: "https://shop.example.com/", TargetURL: "https://partner.example.com/"}

	req := Build(action, session, testVisitor(), "2026-07-30 10:02:00", testConfig())

	assert.Equal(t, "https://partner.example.com/", req.QueryParams.Get("link"))
	assert.Equal(t, "https://shop.example.com/", req.QueryParams.Get("urlref"))
}

func TestBuild_EcommerceOrder(t *testing.T) {
	session := &model.Session{HasPageview: true}
	action := model.Action{
		Kind:     model.ActionEcommerceOrder,
		URL:      "https://shop.example.com/cart",
		OrderID:  "ORD-1",
		Revenue:  129.50,
		Currency: "SEK",
		Items: []model.EcommerceItem{
			{SKU: "SKU-1001", Name: "Wireless Headphones", Category: "electronics", Price: 129.50, Quantity: 1},
		},
	}

	req := Build(action, session, testVisitor(), "2026-07-30 10:03:00", testConfig())

	assert.Equal(t, "0", req.QueryParams.Get("idgoal"))
	assert.Equal(t, "ORD-1", req.QueryParams.Get("ec_id"))
	assert.Equal(t, "129.5", req.QueryParams.Get("revenue"))
	assert.Equal(t, "SEK", req.QueryParams.Get("currency"))
	require.Contains(t, req.QueryParams.Get("ec_items"), "SKU-1001")
}

func TestBuild_GeolocationOverride_RequiresTokenAuth(t *testing.T) {
	session := &model.Session{}
	visitor := testVisitor()
	action := model.Action{Kind: model.ActionPageview, URL: "https://shop.example.com/", ActionName: "Home"}

	cfg := testConfig()
	cfg.RandomizeCountries = true
	req := Build(action, session, visitor, "2026-07-30 10:00:00", cfg)
	assert.Empty(t, req.QueryParams.Get("cip"), "no token_auth configured, override must be omitted")

	cfg.TokenAuth = "deadbeefdeadbeefdeadbeefdeadbeef"
	req = Build(action, session, visitor, "2026-07-30 10:00:00", cfg)
	assert.Equal(t, visitor.IP, req.QueryParams.Get("cip"))
	assert.Equal(t, visitor.Country, req.QueryParams.Get("country"))
	assert.Equal(t, cfg.TokenAuth, req.QueryParams.Get("token_auth"))
}

func TestBuild_LargeEcommercePayloadUsesPost(t *testing.T) {
	session := &model.Session{HasPageview: true}
	items := make([]model.EcommerceItem, 0, 200)
	for i := 0; i < 200; i++ {
		items = append(items, model.EcommerceItem{SKU: "SKU-LONGSKUNAME-0000000000", Name: "A reasonably long product name", Category: "electronics", Price: 19.99, Quantity: 2})
	}
	action := model.Action{Kind: model.ActionEcommerceOrder, URL: "https://shop.example.com/cart", OrderID: "ORD-2", Revenue: 3998.0, Items: items}

	req := Build(action, session, testVisitor(), "2026-07-30 10:04:00", testConfig())

	assert.Equal(t, MethodPost, req.Method)
}
