// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package main

import (
	"context"
	"errors"

	"github.com/tomtom215/trafficinator/internal/backfill"
	"github.com/tomtom215/trafficinator/internal/catalog"
	"github.com/tomtom215/trafficinator/internal/config"
)

// exitCodeFor maps a run/backfill error to the process exit code documented
// in spec.md §6. A context.Canceled error means the run stopped on signal,
// which is a clean shutdown, not a failure.
func exitCodeFor(err error) int {
	if err == nil || errors.Is(err, context.Canceled) {
		return 0
	}

	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		return 2
	}

	var catErr *catalog.CatalogError
	if errors.As(err, &catErr) {
		return 3
	}

	var bfErr *backfill.BackfillError
	if errors.As(err, &bfErr) {
		return 4
	}

	return 1
}
