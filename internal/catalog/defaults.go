// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package catalog

import "net"

// DefaultUserAgents is the baked-in fallback weighted user-agent list
// (spec §4.1 source (c) "baked-in default"), a small representative sample
// of desktop/mobile/tablet browsers.
func DefaultUserAgents() []WeightedUserAgent {
	return []WeightedUserAgent{
		{UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36", Weight: 0.30},
		{UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15", Weight: 0.18},
		{UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0", Weight: 0.12},
		{UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1", Weight: 0.20},
		{UserAgent: "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Mobile Safari/537.36", Weight: 0.15},
		{UserAgent: "Mozilla/5.0 (iPad; CPU OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1", Weight: 0.05},
	}
}

// DefaultReferrerCatalog is the baked-in fallback referrer source catalog.
func DefaultReferrerCatalog() ReferrerCatalog {
	return ReferrerCatalog{
		SearchEngines: []SearchEngine{
			{URL: "https://www.google.com/search", Terms: []string{"buy online", "best deals", "product review", "how to"}},
			{URL: "https://www.bing.com/search", Terms: []string{"compare prices", "near me", "discount code"}},
			{URL: "https://duckduckgo.com/", Terms: []string{"privacy friendly", "alternative to"}},
		},
		SocialSites: []string{
			"https://www.facebook.com/",
			"https://www.instagram.com/",
			"https://twitter.com/",
			"https://www.linkedin.com/",
		},
		ReferralSites: []string{
			"https://news.ycombinator.com/",
			"https://www.reddit.com/",
			"https://partner-blog.example.com/",
		},
	}
}

// DefaultProducts is a small baked-in product catalog for ecommerce orders.
func DefaultProducts() []Product {
	return []Product{
		{SKU: "SKU-1001", Name: "Wireless Headphones", Category: "electronics", PriceMin: 39.0, PriceMax: 129.0, CurrencyDefault: "SEK"},
		{SKU: "SKU-1002", Name: "Running Shoes", Category: "apparel", PriceMin: 59.0, PriceMax: 179.0, CurrencyDefault: "SEK"},
		{SKU: "SKU-1003", Name: "Coffee Grinder", Category: "home", PriceMin: 29.0, PriceMax: 89.0, CurrencyDefault: "SEK"},
		{SKU: "SKU-1004", Name: "Desk Lamp", Category: "home", PriceMin: 19.0, PriceMax: 59.0, CurrencyDefault: "SEK"},
		{SKU: "SKU-1005", Name: "Backpack", Category: "apparel", PriceMin: 49.0, PriceMax: 149.0, CurrencyDefault: "SEK"},
	}
}

// DefaultCountryTable is the baked-in fallback country/IP table (spec §3).
// CIDRs are illustrative documentation ranges, not real geolocation data.
func DefaultCountryTable() []CountryEntry {
	mustCIDR := func(s string) *net.IPNet {
		_, n, err := net.ParseCIDR(s)
		if err != nil {
			panic("catalog: invalid baked-in CIDR " + s + ": " + err.Error())
		}
		return n
	}
	return []CountryEntry{
		{CountryCode: "SE", Weight: 0.30, TimezoneHint: "Europe/Stockholm", CIDRs: []*net.IPNet{mustCIDR("192.0.2.0/24")}},
		{CountryCode: "US", Weight: 0.25, TimezoneHint: "America/New_York", CIDRs: []*net.IPNet{mustCIDR("198.51.100.0/24")}},
		{CountryCode: "DE", Weight: 0.15, TimezoneHint: "Europe/Berlin", CIDRs: []*net.IPNet{mustCIDR("203.0.113.0/24")}},
		{CountryCode: "GB", Weight: 0.15, TimezoneHint: "Europe/London", CIDRs: []*net.IPNet{mustCIDR("198.51.100.128/25")}},
		{CountryCode: "NO", Weight: 0.15, TimezoneHint: "Europe/Oslo", CIDRs: []*net.IPNet{mustCIDR("203.0.113.128/25")}},
	}
}
