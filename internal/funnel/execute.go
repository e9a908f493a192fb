// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package funnel

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/trafficinator/internal/catalog"
	"github.com/tomtom215/trafficinator/internal/model"
	"github.com/tomtom215/trafficinator/internal/trackbuilder"
)

// DispatchFunc sends a built request to Matomo. Implementations live in
// internal/dispatcher; this package only depends on the function shape.
type DispatchFunc func(ctx context.Context, req trackbuilder.Request) error

// SleepFunc suspends for d. The live engine sleeps in wall-clock time; the
// backfill engine advances a synthetic clock and returns immediately
// (spec §4.9 "simulated, not slept in wall-clock").
type SleepFunc func(ctx context.Context, d time.Duration) error

// Executor runs one selected funnel's steps to completion (spec §4.5
// "Execution").
type Executor struct {
	Dispatch DispatchFunc
	Sleep    SleepFunc
	Clock    model.Clock
	Products []catalog.Product
	Track    trackbuilder.Config
}

// Result reports what the session should do once the funnel finishes.
type Result struct {
	ExitSession bool // true if exit_after_completion: the session ends now
}

// Run executes def's steps in order against session/visitor (spec §4.5).
// Before each step it sleeps a uniform random duration in
// [delay_min_s, delay_max_s]. If the first step is not a pageview, a
// synthetic opening pageview is injected first so the visit still opens
// with a Pageview (spec §4.4 rule 1).
func (e *Executor) Run(ctx context.Context, session *model.Session, visitor model.Visitor, def model.FunnelDef, rng *rand.Rand) (Result, error) {
	session.FunnelID = def.ID

	if len(def.Steps) > 0 && def.Steps[0].Type != model.StepPageview {
		opening := model.Action{
			Kind:       model.ActionPageview,
			URL:        def.Steps[0].URL,
			ActionName: "Landing",
		}
		if err := e.emit(ctx, session, visitor, opening); err != nil {
			return Result{}, fmt.Errorf("funnel %s: synthetic opening pageview: %w", def.ID, err)
		}
	}

	for i, step := range def.Steps {
		delay := sampleDelay(rng, step.DelayMinS, step.DelayMaxS)
		if err := e.Sleep(ctx, delay); err != nil {
			return Result{}, err
		}

		action, err := e.buildAction(rng, step, session)
		if err != nil {
			return Result{}, fmt.Errorf("funnel %s step %d: %w", def.ID, i, err)
		}
		if err := e.emit(ctx, session, visitor, action); err != nil {
			return Result{}, fmt.Errorf("funnel %s step %d: %w", def.ID, i, err)
		}
	}

	return Result{ExitSession: def.ExitAfterCompletion}, nil
}

func (e *Executor) emit(ctx context.Context, session *model.Session, visitor model.Visitor, action model.Action) error {
	session.CurrentURL = model.URL{Href: action.URL}
	cdt := trackbuilder.FormatCDT(e.Clock.Now())
	req := trackbuilder.Build(action, session, visitor, cdt, e.Track)
	if err := e.Dispatch(ctx, req); err != nil {
		return err
	}
	session.RecordAction(action)
	return nil
}

func sampleDelay(rng *rand.Rand, minS, maxS float64) time.Duration {
	if maxS <= minS {
		return time.Duration(minS * float64(time.Second))
	}
	d := minS + rng.Float64()*(maxS-minS)
	return time.Duration(d * float64(time.Second))
}

// buildAction converts a funnel Step into an Action, drawing an ecommerce
// basket from the product catalog when the step does not otherwise specify
// one. For Outlink/Download steps, step.URL is the link's *target*, not the
// page the action is recorded against: url stays the page that contained
// the link (spec §4.2), so those two cases read session.CurrentURL instead
// of step.URL for the Action's URL field.
func (e *Executor) buildAction(rng *rand.Rand, step model.Step, session *model.Session) (model.Action, error) {
	switch step.Type {
	case model.StepPageview:
		return model.Action{Kind: model.ActionPageview, URL: step.URL, ActionName: step.ActionName}, nil
	case model.StepSiteSearch:
		return model.Action{Kind: model.ActionSiteSearch, URL: step.URL, SearchTerm: step.SearchTerm, SearchCat: step.SearchCat}, nil
	case model.StepOutlink:
		return model.Action{Kind: model.ActionOutlink, URL: session.CurrentURL.Href, TargetURL: step.URL}, nil
	case model.StepDownload:
		return model.Action{Kind: model.ActionDownload, URL: session.CurrentURL.Href, TargetURL: resolveDownloadURL(session, step.URL)}, nil
	case model.StepClickEvent:
		return model.Action{Kind: model.ActionClickEvent, URL: step.URL, EventCategory: step.EventCategory, EventAction: step.EventAction, EventName: step.EventName, EventValue: step.EventValue, HasEventValue: step.HasEventValue}, nil
	case model.StepRandomEvent:
		return model.Action{Kind: model.ActionRandomEvent, URL: step.URL, EventCategory: step.EventCategory, EventAction: step.EventAction, EventName: step.EventName, EventValue: step.EventValue, HasEventValue: step.HasEventValue}, nil
	case model.StepEcommerceOrder:
		return e.buildEcommerceAction(rng, step)
	default:
		return model.Action{}, fmt.Errorf("unknown step type %v", step.Type)
	}
}

// resolveDownloadURL absolutizes a relative download target against the
// session's last pageview URL (spec §4.2 "relative download paths MUST be
// resolved ... to absolute URLs", §8.4). raw is returned unchanged if it is
// already absolute or fails to parse.
func resolveDownloadURL(session *model.Session, raw string) string {
	ref, err := url.Parse(raw)
	if err != nil || ref.IsAbs() {
		return raw
	}
	base, err := url.Parse(session.LastPageviewURL.Href)
	if err != nil || !base.IsAbs() {
		return raw
	}
	return base.ResolveReference(ref).String()
}

func (e *Executor) buildEcommerceAction(rng *rand.Rand, step model.Step) (model.Action, error) {
	if len(e.Products) == 0 {
		return model.Action{}, fmt.Errorf("ecommerce step requires a non-empty product catalog")
	}
	n := 1 + rng.Intn(3)
	items := make([]model.EcommerceItem, 0, n)
	total := 0.0
	for i := 0; i < n; i++ {
		p := e.Products[rng.Intn(len(e.Products))]
		price := p.PriceMin + rng.Float64()*(p.PriceMax-p.PriceMin)
		qty := 1 + rng.Intn(3)
		items = append(items, model.EcommerceItem{SKU: p.SKU, Name: p.Name, Category: p.Category, Price: roundCents(price), Quantity: qty})
		total += price * float64(qty)
	}

	revenue := roundCents(total)
	if step.HasRevenueOverride {
		revenue = step.RevenueOverride
	}

	return model.Action{
		Kind:    model.ActionEcommerceOrder,
		URL:     step.URL,
		OrderID: uuid.New().String(),
		Items:   items,
		Revenue: revenue,
	}, nil
}

func roundCents(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
