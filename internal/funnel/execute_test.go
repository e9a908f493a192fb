// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package funnel

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/trafficinator/internal/catalog"
	"github.com/tomtom215/trafficinator/internal/model"
	"github.com/tomtom215/trafficinator/internal/trackbuilder"
)

func fixedClock(t time.Time) model.Clock {
	return model.ClockFunc(func() time.Time { return t })
}

func testProducts() []catalog.Product {
	return []catalog.Product{
		{SKU: "SKU-1", Name: "Widget", Category: "Widgets", PriceMin: 10, PriceMax: 20},
	}
}

func newRecordingExecutor(products []catalog.Product) (*Executor, *[]trackbuilder.Request, *[]time.Duration) {
	var dispatched []trackbuilder.Request
	var slept []time.Duration

	e := &Executor{
		Dispatch: func(ctx context.Context, req trackbuilder.Request) error {
			dispatched = append(dispatched, req)
			return nil
		},
		Sleep: func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
		Clock:    fixedClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)),
		Products: products,
		Track:    trackbuilder.Config{TrackingURL: "https://matomo.example/matomo.php", SiteID: 1},
	}
	return e, &dispatched, &slept
}

func TestRun_InjectsSyntheticOpeningPageviewWhenFirstStepIsNotPageview(t *testing.T) {
	e, dispatched, _ := newRecordingExecutor(nil)
	session := &model.Session{}
	visitor := model.Visitor{VisitorID: "abc"}
	def := model.FunnelDef{
		ID: "checkout",
		Steps: []model.Step{
			{Type: model.StepSiteSearch, URL: "https://example.com/search", SearchTerm: "shoes"},
		},
	}

	result, err := e.Run(context.Background(), session, visitor, def, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.False(t, result.ExitSession)

	require.Len(t, *dispatched, 2)
	assert.Equal(t, "Landing", (*dispatched)[0].QueryParams.Get("action_name"))
	assert.Equal(t, "shoes", (*dispatched)[1].QueryParams.Get("search"))
	assert.Equal(t, 1, session.PageIndex, "synthetic opening pageview must advance PageIndex")
}

func TestRun_NoSyntheticPageviewWhenFirstStepIsPageview(t *testing.T) {
	e, dispatched, _ := newRecordingExecutor(nil)
	session := &model.Session{}
	visitor := model.Visitor{VisitorID: "abc"}
	def := model.FunnelDef{
		ID: "landing-only",
		Steps: []model.Step{
			{Type: model.StepPageview, URL: "https://example.com/landing", ActionName: "Landing"},
		},
	}

	_, err := e.Run(context.Background(), session, visitor, def, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, *dispatched, 1)
}

func TestRun_SleepsBeforeEachStepWithinConfiguredWindow(t *testing.T) {
	e, _, slept := newRecordingExecutor(nil)
	session := &model.Session{}
	visitor := model.Visitor{VisitorID: "abc"}
	def := model.FunnelDef{
		ID: "two-step",
		Steps: []model.Step{
			{Type: model.StepPageview, URL: "https://example.com/a", DelayMinS: 1, DelayMaxS: 2},
			{Type: model.StepPageview, URL: "https://example.com/b", DelayMinS: 3, DelayMaxS: 3},
		},
	}

	_, err := e.Run(context.Background(), session, visitor, def, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	require.Len(t, *slept, 2)
	assert.GreaterOrEqual(t, (*slept)[0], time.Second)
	assert.LessOrEqual(t, (*slept)[0], 2*time.Second)
	assert.Equal(t, 3*time.Second, (*slept)[1])
}

func TestRun_EcommerceStepDrawsFromProductCatalog(t *testing.T) {
	e, dispatched, _ := newRecordingExecutor(testProducts())
	session := &model.Session{}
	visitor := model.Visitor{VisitorID: "abc"}
	def := model.FunnelDef{
		ID: "buy",
		Steps: []model.Step{
			{Type: model.StepPageview, URL: "https://example.com/cart"},
			{Type: model.StepEcommerceOrder, URL: "https://example.com/checkout"},
		},
	}

	_, err := e.Run(context.Background(), session, visitor, def, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	require.Len(t, *dispatched, 2)
	assert.NotEmpty(t, (*dispatched)[1].QueryParams.Get("ec_items"))
	assert.NotEmpty(t, (*dispatched)[1].QueryParams.Get("revenue"))
}

func TestRun_EcommerceStepWithoutCatalogFails(t *testing.T) {
	e, _, _ := newRecordingExecutor(nil)
	session := &model.Session{}
	visitor := model.Visitor{VisitorID: "abc"}
	def := model.FunnelDef{
		ID: "buy",
		Steps: []model.Step{
			{Type: model.StepEcommerceOrder, URL: "https://example.com/checkout"},
		},
	}

	_, err := e.Run(context.Background(), session, visitor, def, rand.New(rand.NewSource(3)))
	require.Error(t, err)
}

func TestRun_ExitAfterCompletionIsCarriedThrough(t *testing.T) {
	e, _, _ := newRecordingExecutor(nil)
	session := &model.Session{}
	visitor := model.Visitor{VisitorID: "abc"}
	def := model.FunnelDef{
		ID:                  "exit",
		ExitAfterCompletion: true,
		Steps:               []model.Step{{Type: model.StepPageview, URL: "https://example.com/x"}},
	}

	result, err := e.Run(context.Background(), session, visitor, def, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.True(t, result.ExitSession)
}

func TestRun_OutlinkStepKeepsURLAsContainingPageAndTargetURLAsLink(t *testing.T) {
	e, dispatched, _ := newRecordingExecutor(nil)
	session := &model.Session{}
	visitor := model.Visitor{VisitorID: "abc"}
	def := model.FunnelDef{
		ID: "outlink",
		Steps: []model.Step{
			{Type: model.StepPageview, URL: "https://shop.example.com/product/42", ActionName: "Product 42"},
			{Type: model.StepOutlink, URL: "https://partner.example.com/deal"},
		},
	}

	_, err := e.Run(context.Background(), session, visitor, def, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, *dispatched, 2)

	outlinkReq := (*dispatched)[1]
	assert.Equal(t, "https://shop.example.com/product/42", outlinkReq.QueryParams.Get("url"),
		"url must remain the page that contained the link, not the outlink target")
	assert.Equal(t, "https://partner.example.com/deal", outlinkReq.QueryParams.Get("link"))
}

func TestRun_DownloadStepResolvesRelativeURLAgainstLastPageview(t *testing.T) {
	e, dispatched, _ := newRecordingExecutor(nil)
	session := &model.Session{}
	visitor := model.Visitor{VisitorID: "abc"}
	def := model.FunnelDef{
		ID: "download",
		Steps: []model.Step{
			{Type: model.StepPageview, URL: "https://shop.example.com/docs/index.html", ActionName: "Docs"},
			{Type: model.StepDownload, URL: "/files/manual.pdf"},
		},
	}

	_, err := e.Run(context.Background(), session, visitor, def, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, *dispatched, 2)

	downloadReq := (*dispatched)[1]
	assert.Equal(t, "https://shop.example.com/docs/index.html", downloadReq.QueryParams.Get("url"),
		"url must remain the page that contained the link, not the download target")
	assert.Equal(t, "https://shop.example.com/files/manual.pdf", downloadReq.QueryParams.Get("download"),
		"relative download path must be resolved to an absolute URL")
}

func TestRun_DownloadStepLeavesAbsoluteURLUnchanged(t *testing.T) {
	e, dispatched, _ := newRecordingExecutor(nil)
	session := &model.Session{}
	visitor := model.Visitor{VisitorID: "abc"}
	def := model.FunnelDef{
		ID: "download",
		Steps: []model.Step{
			{Type: model.StepPageview, URL: "https://shop.example.com/docs/index.html", ActionName: "Docs"},
			{Type: model.StepDownload, URL: "https://cdn.example.com/manual.pdf"},
		},
	}

	_, err := e.Run(context.Background(), session, visitor, def, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, *dispatched, 2)

	assert.Equal(t, "https://cdn.example.com/manual.pdf", (*dispatched)[1].QueryParams.Get("download"))
}

func TestRun_DispatchErrorAbortsFunnel(t *testing.T) {
	e, _, _ := newRecordingExecutor(nil)
	e.Dispatch = func(ctx context.Context, req trackbuilder.Request) error {
		return errors.New("boom")
	}
	session := &model.Session{}
	visitor := model.Visitor{VisitorID: "abc"}
	def := model.FunnelDef{
		ID: "two-step",
		Steps: []model.Step{
			{Type: model.StepPageview, URL: "https://example.com/a"},
			{Type: model.StepPageview, URL: "https://example.com/b"},
		},
	}

	_, err := e.Run(context.Background(), session, visitor, def, rand.New(rand.NewSource(1)))
	require.Error(t, err)
}
