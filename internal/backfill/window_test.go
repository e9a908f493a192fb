// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package backfill

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/trafficinator/internal/config"
)

func TestResolveWindow_AbsoluteWindowParsesInclusive(t *testing.T) {
	now := time.Date(2026, 7, 30, 10, 0, 0, 0, time.UTC)
	w, err := ResolveWindow(config.BackfillConfig{StartDate: "2024-10-01", EndDate: "2024-10-03"}, "UTC", now)
	require.NoError(t, err)
	assert.Len(t, w.Days(), 3)
	assert.Equal(t, "2024-10-01", w.Start.Format(dateLayout))
	assert.Equal(t, "2024-10-03", w.End.Format(dateLayout))
}

func TestResolveWindow_RelativeWindowUsesDaysBackAndDuration(t *testing.T) {
	now := time.Date(2026, 7, 30, 10, 0, 0, 0, time.UTC)
	w, err := ResolveWindow(config.BackfillConfig{DaysBack: 5, DurationDays: 3}, "UTC", now)
	require.NoError(t, err)
	assert.Equal(t, "2026-07-25", w.End.Format(dateLayout))
	assert.Equal(t, "2026-07-23", w.Start.Format(dateLayout))
}

func TestResolveWindow_RejectsFutureEndDate(t *testing.T) {
	now := time.Date(2026, 7, 30, 10, 0, 0, 0, time.UTC)
	_, err := ResolveWindow(config.BackfillConfig{StartDate: "2026-08-01", EndDate: "2026-08-05"}, "UTC", now)
	require.Error(t, err)
	var bfErr *BackfillError
	assert.ErrorAs(t, err, &bfErr)
}

func TestResolveWindow_RejectsWindowOver180Days(t *testing.T) {
	now := time.Date(2026, 7, 30, 10, 0, 0, 0, time.UTC)
	_, err := ResolveWindow(config.BackfillConfig{StartDate: "2026-01-01", EndDate: "2026-07-01"}, "UTC", now)
	require.Error(t, err)
}

func TestResolveWindow_InvalidDateFormatIsBackfillError(t *testing.T) {
	now := time.Date(2026, 7, 30, 10, 0, 0, 0, time.UTC)
	_, err := ResolveWindow(config.BackfillConfig{StartDate: "not-a-date", EndDate: "2026-07-01"}, "UTC", now)
	require.Error(t, err)
	var bfErr *BackfillError
	assert.ErrorAs(t, err, &bfErr)
}

func TestResolveWindow_DefaultsToOneDayDurationWhenUnset(t *testing.T) {
	now := time.Date(2026, 7, 30, 10, 0, 0, 0, time.UTC)
	w, err := ResolveWindow(config.BackfillConfig{DaysBack: 0, DurationDays: 0}, "UTC", now)
	require.NoError(t, err)
	assert.Len(t, w.Days(), 1)
	assert.Equal(t, "2026-07-30", w.Start.Format(dateLayout))
}
