// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

// Package backfill replays historical traffic over a past date window
// (spec.md §4.9, C9), reusing internal/engine's single-visit orchestration
// with a synthetic, non-sleeping clock in place of live wall-clock waits.
package backfill

import (
	"fmt"
	"time"

	"github.com/tomtom215/trafficinator/internal/config"
)

// maxWindowDays bounds how far back a backfill run may reach (spec.md
// §4.9 "window exceeds 180 days").
const maxWindowDays = 180

const dateLayout = "2006-01-02"

// BackfillError is fatal to the backfill run only (spec.md §7, exit code 4).
type BackfillError struct {
	Reason string
	Cause  error
}

func (e *BackfillError) Error() string {
	if e.Cause != nil {
		return "backfill error: " + e.Reason + ": " + e.Cause.Error()
	}
	return "backfill error: " + e.Reason
}

func (e *BackfillError) Unwrap() error { return e.Cause }

// Window is the resolved, inclusive day range a backfill run replays, each
// entry at local midnight in the configured zone.
type Window struct {
	Loc   *time.Location
	Start time.Time
	End   time.Time
}

// Days returns every day in the window, inclusive, in ascending order.
func (w Window) Days() []time.Time {
	days := make([]time.Time, 0, int(w.End.Sub(w.Start).Hours()/24)+1)
	for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// ResolveWindow implements spec.md §4.9's window resolution: exactly one of
// the absolute (start_date/end_date) or relative (days_back/duration_days)
// modes, validated against the 180-day bound and the "end date in the
// future" abort condition. now is injected for deterministic tests.
func ResolveWindow(cfg config.BackfillConfig, zone string, now time.Time) (Window, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		loc = time.UTC
	}
	now = now.In(loc)
	today := truncateToDay(now, loc)

	var start, end time.Time
	if cfg.StartDate != "" || cfg.EndDate != "" {
		start, err = time.ParseInLocation(dateLayout, cfg.StartDate, loc)
		if err != nil {
			return Window{}, &BackfillError{Reason: "invalid start_date", Cause: err}
		}
		end, err = time.ParseInLocation(dateLayout, cfg.EndDate, loc)
		if err != nil {
			return Window{}, &BackfillError{Reason: "invalid end_date", Cause: err}
		}
	} else {
		end = today.AddDate(0, 0, -cfg.DaysBack)
		days := cfg.DurationDays
		if days < 1 {
			days = 1
		}
		start = end.AddDate(0, 0, -(days - 1))
	}

	if end.After(today) {
		return Window{}, &BackfillError{Reason: "end date is in the future"}
	}
	if start.After(end) {
		return Window{}, &BackfillError{Reason: "start date is after end date"}
	}

	totalDays := int(end.Sub(start).Hours()/24) + 1
	if totalDays > maxWindowDays {
		return Window{}, &BackfillError{Reason: fmt.Sprintf("window spans %d days, exceeds the %d-day bound", totalDays, maxWindowDays)}
	}

	return Window{Loc: loc, Start: start, End: end}, nil
}

func truncateToDay(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
