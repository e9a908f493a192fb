// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package catalog

import (
	"io"
	"os"
	"path/filepath"

	"github.com/tomtom215/trafficinator/internal/logging"
	"github.com/tomtom215/trafficinator/internal/model"
)

// SourceDirs configures the three resolvable input locations for catalog
// files, searched in order (spec §4.1): a writable data directory, a mount
// directory, then the baked-in default.
type SourceDirs struct {
	DataDir  string
	MountDir string
}

// Store is the in-memory, read-only catalog shared by the request builder,
// visitor identity, action planner and funnel executor (spec §4.1, C1).
// Once loaded it is never mutated, so no synchronization is required for
// readers (spec §5 "Catalog: shared-immutable, no guard required").
type Store struct {
	URLs      []model.URL
	Summary   StructureSummary
	UserAgents []WeightedUserAgent
	Referrers ReferrerCatalog
	Countries []CountryEntry
	Events    EventCatalog
	Products  []Product
	Funnels   []model.FunnelDef
}

// Load resolves and parses every catalog input per the three-tier source
// order in SourceDirs, falling back to baked-in defaults for anything not
// found in a data/mount directory. urls.txt has no baked-in default: a
// missing or empty URL list is always a fatal CatalogError (spec §4.1).
func Load(dirs SourceDirs) (*Store, error) {
	s := &Store{
		Referrers: DefaultReferrerCatalog(),
		Countries: DefaultCountryTable(),
		Products:  DefaultProducts(),
	}

	urlsFile, err := resolveFile(dirs, "urls.txt")
	if err != nil {
		return nil, err
	}
	if urlsFile == "" {
		return nil, newCatalogError("urls.txt", "not found in data dir, mount dir, or defaults", nil)
	}
	urlTable, err := parseFile(urlsFile, ParseURLList)
	if err != nil {
		return nil, err
	}
	s.URLs = urlTable.URLs
	s.Summary = urlTable.Summary

	if eventsFile, err := resolveFile(dirs, "events.json"); err != nil {
		return nil, err
	} else if eventsFile != "" {
		events, err := parseFile(eventsFile, ParseEvents)
		if err != nil {
			return nil, err
		}
		s.Events = events
	}

	if funnelsFile, err := resolveFile(dirs, "funnels.json"); err != nil {
		return nil, err
	} else if funnelsFile != "" {
		funnels, err := parseFile(funnelsFile, ParseFunnels)
		if err != nil {
			return nil, err
		}
		s.Funnels = funnels
	}

	if countriesFile, err := resolveFile(dirs, "countries.json"); err != nil {
		return nil, err
	} else if countriesFile != "" {
		countries, err := parseFile(countriesFile, ParseCountryTable)
		if err != nil {
			return nil, err
		}
		s.Countries = countries
	}

	if len(s.UserAgents) == 0 {
		s.UserAgents = DefaultUserAgents()
	}

	logging.Info().
		Int("urls", len(s.URLs)).
		Int("funnels", len(s.Funnels)).
		Int("countries", len(s.Countries)).
		Msg("catalog loaded")

	return s, nil
}

// resolveFile returns the first existing path for name across the data dir,
// the mount dir, in that order, or "" if neither has it (meaning: use the
// baked-in default).
func resolveFile(dirs SourceDirs, name string) (string, error) {
	for _, dir := range []string{dirs.DataDir, dirs.MountDir} {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", newCatalogError(name, "stat failed", err)
		}
	}
	return "", nil
}

func parseFile[T any](path string, parse func(r io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, newCatalogError(filepath.Base(path), "open failed", err)
	}
	defer f.Close()
	return parse(f)
}
