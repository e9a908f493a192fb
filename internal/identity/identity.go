// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

// Package identity allocates a fresh Visitor for each session (spec §4.3):
// a visitor_id, a weighted user-agent, a weighted country with a sampled IP
// from its CIDR union, a referrer, and the session clock.
package identity

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	mrand "math/rand"
	"net"
	"sync"
	"time"

	"github.com/tomtom215/trafficinator/internal/catalog"
	"github.com/tomtom215/trafficinator/internal/logging"
	"github.com/tomtom215/trafficinator/internal/model"
)

// Allocator draws visitor identities against a loaded catalog. Its Rand
// field is exported so callers inject the source: the backfill engine passes
// an HMAC-seeded, per-day deterministic one (spec §4.9) and the live worker
// pool a per-worker one. A nil Rand falls back to the process-global source.
type Allocator struct {
	Store *catalog.Store
	Rand  *mrand.Rand

	warnOnce sync.Once
}

// Options narrows the configuration fields the allocator needs.
type Options struct {
	RandomizeCountries bool
	Lang               string
	Resolution         string
	Timezone           string
	HasTokenAuth       bool
}

// New builds an Allocator over store. rng may be nil to use the process
// global math/rand source.
func New(store *catalog.Store, rng *mrand.Rand) *Allocator {
	return &Allocator{Store: store, Rand: rng}
}

// Allocate draws a fresh Visitor (spec §4.3).
func (a *Allocator) Allocate(opts Options) (model.Visitor, error) {
	visitorID, err := randomHexID()
	if err != nil {
		return model.Visitor{}, fmt.Errorf("identity: generate visitor_id: %w", err)
	}

	v := model.Visitor{
		VisitorID: visitorID,
		UserAgent: a.drawUserAgent(),
		Timezone:  opts.Timezone,
		Lang:      opts.Lang,
	}

	country := a.drawCountry()
	v.Country = country.CountryCode
	v.IP = a.drawIPFromCountry(country, opts)

	v.Referrer = a.drawReferrer()

	return v, nil
}

func (a *Allocator) float64() float64 {
	if a.Rand != nil {
		return a.Rand.Float64()
	}
	return mrand.Float64()
}

func (a *Allocator) intn(n int) int {
	if n <= 0 {
		return 0
	}
	if a.Rand != nil {
		return a.Rand.Intn(n)
	}
	return mrand.Intn(n)
}

func (a *Allocator) drawUserAgent() string {
	uas := a.Store.UserAgents
	if len(uas) == 0 {
		return "Mozilla/5.0"
	}
	total := 0.0
	for _, ua := range uas {
		total += ua.Weight
	}
	if total <= 0 {
		return uas[a.intn(len(uas))].UserAgent
	}
	r := a.float64() * total
	for _, ua := range uas {
		r -= ua.Weight
		if r <= 0 {
			return ua.UserAgent
		}
	}
	return uas[len(uas)-1].UserAgent
}

func (a *Allocator) drawCountry() catalog.CountryEntry {
	countries := a.Store.Countries
	total := 0.0
	for _, c := range countries {
		total += c.Weight
	}
	if total <= 0 {
		return countries[a.intn(len(countries))]
	}
	r := a.float64() * total
	for _, c := range countries {
		r -= c.Weight
		if r <= 0 {
			return c
		}
	}
	return countries[len(countries)-1]
}

// drawIPFromCountry samples an IP uniformly from the union of the selected
// country's CIDRs. When geolocation overrides are disabled or the Matomo
// token is missing, the sampled IP is still used as the session's logical
// source IP (for catalog/IP consistency in logs); it simply never reaches
// the wire as cip= (spec §4.2 "without token_auth, overrides MUST be
// omitted").
func (a *Allocator) drawIPFromCountry(c catalog.CountryEntry, opts Options) string {
	if len(c.CIDRs) == 0 {
		return "0.0.0.0"
	}
	if opts.RandomizeCountries && !opts.HasTokenAuth {
		a.warnOnce.Do(func() {
			logging.Warn().Msg("randomize_visitor_countries is enabled but matomo_token_auth is empty; geolocation overrides will be omitted from every request")
		})
	}
	cidr := c.CIDRs[a.intn(len(c.CIDRs))]
	return randomIPIn(cidr, a)
}

func randomIPIn(n *net.IPNet, a *Allocator) string {
	ones, bits := n.Mask.Size()
	hostBits := bits - ones
	if hostBits <= 0 {
		return n.IP.String()
	}
	ip := make(net.IP, len(n.IP))
	copy(ip, n.IP)
	for i := 0; i < hostBits; i++ {
		if a.intn(2) == 1 {
			byteIdx := len(ip) - 1 - i/8
			bitIdx := uint(i % 8)
			ip[byteIdx] |= 1 << bitIdx
		}
	}
	return ip.String()
}

func (a *Allocator) drawReferrer() model.Referrer {
	weights := catalog.DefaultReferrerWeights()
	total := weights.Search + weights.Social + weights.Referral + weights.Direct
	r := a.float64() * total

	switch {
	case r < weights.Search:
		return a.searchReferrer()
	case r < weights.Search+weights.Social:
		return a.pickSiteReferrer(model.ReferrerSocial, a.Store.Referrers.SocialSites)
	case r < weights.Search+weights.Social+weights.Referral:
		return a.pickSiteReferrer(model.ReferrerReferral, a.Store.Referrers.ReferralSites)
	default:
		return model.Referrer{Kind: model.ReferrerDirect}
	}
}

func (a *Allocator) searchReferrer() model.Referrer {
	engines := a.Store.Referrers.SearchEngines
	if len(engines) == 0 {
		return model.Referrer{Kind: model.ReferrerDirect}
	}
	engine := engines[a.intn(len(engines))]
	term := ""
	if len(engine.Terms) > 0 {
		term = engine.Terms[a.intn(len(engine.Terms))]
	}
	return model.Referrer{Kind: model.ReferrerSearch, URL: engine.URL, SearchTerms: term}
}

func (a *Allocator) pickSiteReferrer(kind model.ReferrerKind, sites []string) model.Referrer {
	if len(sites) == 0 {
		return model.Referrer{Kind: model.ReferrerDirect}
	}
	return model.Referrer{Kind: kind, URL: sites[a.intn(len(sites))]}
}

// randomHexID returns 16 lowercase hex characters (spec §3, §4.3).
func randomHexID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// WallClock resolves "now" in the given IANA zone for live generation
// (spec §4.3). Falls back to UTC if the zone name does not load.
func WallClock(zone string) model.Clock {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		loc = time.UTC
	}
	return model.ClockFunc(func() time.Time {
		return time.Now().In(loc)
	})
}
