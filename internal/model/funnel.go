// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package model

// StepType tags the kind of tracking request a funnel Step emits.
type StepType int

const (
	StepPageview StepType = iota
	StepSiteSearch
	StepOutlink
	StepDownload
	StepClickEvent
	StepRandomEvent
	StepEcommerceOrder
)

// Step is one entry of a FunnelDef's scripted journey (spec §3).
type Step struct {
	Type StepType

	URL        string // pageview/outlink/download target
	ActionName string

	SearchTerm string
	SearchCat  string

	EventCategory string
	EventAction   string
	EventName     string
	EventValue    float64
	HasEventValue bool

	// EcommerceOrder overrides; zero value means "let the planner's default
	// ecommerce randomization apply".
	RevenueOverride    float64
	HasRevenueOverride bool

	// DelayMinS/DelayMaxS is the think-time sampled uniformly *before* this
	// step runs (spec §4.5, §9 "before the step, not after the previous").
	DelayMinS float64
	DelayMaxS float64
}

// FunnelDef is a pre-authored, ordered, probability-weighted user journey
// (spec §3, §4.5).
type FunnelDef struct {
	ID                 string
	Name               string
	Probability        float64
	Priority           int
	Enabled            bool
	ExitAfterCompletion bool
	Steps              []Step

	// order is the definition order, used as the priority tie-break.
	order int
}

// SetOrder records the funnel's position in its source file, used to break
// priority ties deterministically (spec §4.5 "tie-break by definition order").
func (f *FunnelDef) SetOrder(i int) { f.order = i }

// Order returns the definition-order tie-break key.
func (f *FunnelDef) Order() int { return f.order }
