// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package catalog

import (
	"io"
	"net"

	"github.com/goccy/go-json"
)

type countryEntryWire struct {
	CountryCode  string   `json:"country_code"`
	Weight       float64  `json:"weight"`
	CIDRs        []string `json:"cidrs"`
	TimezoneHint string   `json:"timezone_hint,omitempty"`
}

// ParseCountryTable parses an overriding country/IP JSON document (spec §3,
// §6). The default table is provided by DefaultCountryTable when no override
// file is found.
func ParseCountryTable(r io.Reader) ([]CountryEntry, error) {
	var wire []countryEntryWire
	dec := json.NewDecoder(r)
	if err := dec.Decode(&wire); err != nil {
		return nil, newCatalogError("countries.json", "schema validation failed", err)
	}

	entries := make([]CountryEntry, 0, len(wire))
	for _, w := range wire {
		if w.CountryCode == "" || len(w.CIDRs) == 0 {
			return nil, newCatalogError("countries.json", "entry missing country_code or cidrs", nil)
		}
		nets := make([]*net.IPNet, 0, len(w.CIDRs))
		for _, cidr := range w.CIDRs {
			_, ipnet, err := net.ParseCIDR(cidr)
			if err != nil {
				return nil, newCatalogError("countries.json", "invalid CIDR "+cidr, err)
			}
			nets = append(nets, ipnet)
		}
		entries = append(entries, CountryEntry{
			CountryCode:  w.CountryCode,
			Weight:       w.Weight,
			CIDRs:        nets,
			TimezoneHint: w.TimezoneHint,
		})
	}
	if len(entries) == 0 {
		return nil, newCatalogError("countries.json", "country table is empty", nil)
	}
	return entries, nil
}
