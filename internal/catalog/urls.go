// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package catalog

import (
	"bufio"
	"io"
	"net/url"
	"strings"

	"github.com/tomtom215/trafficinator/internal/logging"
	"github.com/tomtom215/trafficinator/internal/model"
)

// minURLsWarning is the threshold below which a non-empty catalog still
// loads, but emits a warning (spec §4.1 "warning-level at 2").
const minURLsWarning = 2

// ParseURLList parses urls.txt content (spec §6): UTF-8, LF or CRLF, one URL
// per line, optional "URL\tTitle", "#"-prefixed comments and blank lines
// ignored. Returns CatalogError if the result is empty or a line is
// malformed.
func ParseURLList(r io.Reader) (URLTable, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	summary := StructureSummary{
		PerCategory:    map[string]int{},
		PerSubcategory: map[string]int{},
	}
	var urls []model.URL

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		href := trimmed
		title := ""
		if idx := strings.IndexByte(trimmed, '\t'); idx >= 0 {
			href = strings.TrimSpace(trimmed[:idx])
			title = strings.TrimSpace(trimmed[idx+1:])
		}

		u, err := parseAbsoluteHTTPURL(href)
		if err != nil {
			return URLTable{}, newCatalogError("urls.txt", "malformed URL line", err)
		}

		category, subcategory := deriveCategories(u.Path)
		entry := model.URL{
			Href:        href,
			Title:       title,
			Category:    category,
			Subcategory: subcategory,
		}
		urls = append(urls, entry)

		summary.TotalURLs++
		summary.PerCategory[category]++
		summary.PerSubcategory[category+"/"+subcategory]++
	}
	if err := scanner.Err(); err != nil {
		return URLTable{}, newCatalogError("urls.txt", "read failed", err)
	}

	if len(urls) == 0 {
		return URLTable{}, newCatalogError("urls.txt", "catalog is empty", nil)
	}
	if len(urls) < minURLsWarning {
		logging.Warn().Int("count", len(urls)).Msg("catalog has fewer than the recommended minimum URLs")
	}

	return URLTable{URLs: urls, Summary: summary}, nil
}

// parseAbsoluteHTTPURL validates that href is an absolute http(s) URL
// (spec §4.1 invariant i).
func parseAbsoluteHTTPURL(href string) (*url.URL, error) {
	u, err := url.Parse(href)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &CatalogError{Source: "urls.txt", Message: "not an absolute http(s) URL: " + href}
	}
	if u.Host == "" {
		return nil, &CatalogError{Source: "urls.txt", Message: "missing host: " + href}
	}
	return u, nil
}

// deriveCategories extracts the category and subcategory from a URL path of
// the form /{category}/{subcategory}/{page} (spec §3). Paths with fewer
// segments degrade gracefully to "root" placeholders rather than failing.
func deriveCategories(path string) (category, subcategory string) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	segments = filterEmpty(segments)

	switch len(segments) {
	case 0:
		return "root", "root"
	case 1:
		return segments[0], "root"
	default:
		return segments[0], segments[1]
	}
}

func filterEmpty(segments []string) []string {
	out := segments[:0]
	for _, s := range segments {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
