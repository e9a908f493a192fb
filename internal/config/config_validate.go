// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package config

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/trafficinator/internal/model"
)

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that the loaded configuration is complete and internally
// consistent, returning the first violation as a *ConfigError (spec §7).
// Simple per-field range/presence rules are covered by struct tags; rules
// spanning more than one field are hand-written, one method per concern,
// mirroring the catalog's own source-specific validators.
func (c *Config) Validate() error {
	if err := structValidator.Struct(c); err != nil {
		return newConfigError("struct", "field validation failed", err)
	}

	if err := c.validatePageviews(); err != nil {
		return err
	}
	if err := c.validatePauseWindow(); err != nil {
		return err
	}
	if err := c.validateVisitDuration(); err != nil {
		return err
	}
	if err := c.validateCapMode(); err != nil {
		return err
	}
	if err := c.validateEcommerce(); err != nil {
		return err
	}
	if err := c.validateGeolocationOverride(); err != nil {
		return err
	}
	if err := c.validateTimezone(); err != nil {
		return err
	}
	return c.validateBackfill()
}

func (c *Config) validatePageviews() error {
	if c.Volume.PageviewsMin > c.Volume.PageviewsMax {
		return newConfigError("pageviews_min", "must be <= pageviews_max", nil)
	}
	return nil
}

func (c *Config) validatePauseWindow() error {
	if c.Volume.PauseBetweenPVsMin < 0 || c.Volume.PauseBetweenPVsMax < 0 {
		return newConfigError("pause_between_pvs", "must be non-negative", nil)
	}
	if c.Volume.PauseBetweenPVsMin > c.Volume.PauseBetweenPVsMax {
		return newConfigError("pause_between_pvs_min", "must be <= pause_between_pvs_max", nil)
	}
	return nil
}

func (c *Config) validateVisitDuration() error {
	if c.Volume.VisitDurationMin <= 0 || c.Volume.VisitDurationMax <= 0 {
		return newConfigError("visit_duration", "must be positive", nil)
	}
	if c.Volume.VisitDurationMin > c.Volume.VisitDurationMax {
		return newConfigError("visit_duration_min", "must be <= visit_duration_max", nil)
	}
	return nil
}

// validateCapMode rejects the ambiguous configuration the open question in
// spec §9 calls out: a positive MAX_TOTAL_VISITS with CAP_MODE left at its
// "off" default is very likely an oversight, not an intentional unbounded run.
func (c *Config) validateCapMode() error {
	if c.Volume.MaxTotalVisits > 0 && c.Volume.CapMode == model.CapOff && strings.EqualFold(c.Volume.CapModeRaw, "off") {
		return newConfigError("cap_mode", "max_total_visits is set but cap_mode is off; set cap_mode to lifetime or rolling24h", nil)
	}
	if c.Volume.MaxTotalVisits <= 0 && c.Volume.CapMode != model.CapOff {
		return newConfigError("cap_mode", "cap_mode requires a positive max_total_visits", nil)
	}
	return nil
}

func (c *Config) validateEcommerce() error {
	if c.Ecommerce.OrderValueMin < 0 || c.Ecommerce.OrderValueMax < 0 {
		return newConfigError("ecommerce_order_value", "must be non-negative", nil)
	}
	if c.Ecommerce.OrderValueMin > c.Ecommerce.OrderValueMax {
		return newConfigError("ecommerce_order_value_min", "must be <= ecommerce_order_value_max", nil)
	}
	cur := strings.ToUpper(c.Ecommerce.Currency)
	if len(cur) != 3 {
		return newConfigError("ecommerce_currency", "must be a 3-letter ISO 4217 code", nil)
	}
	c.Ecommerce.Currency = cur
	return nil
}

// validateGeolocationOverride enforces that a Matomo auth token is present
// whenever RANDOMIZE_VISITOR_COUNTRIES requests the cip/country override
// params (spec §4.2, §6): Matomo silently ignores those params without it,
// which would make the feature a no-op rather than an error.
func (c *Config) validateGeolocationOverride() error {
	if c.Behavior.RandomizeVisitorCountries && c.Matomo.TokenAuth == "" {
		return newConfigError("matomo_token_auth", "required when randomize_visitor_countries is enabled", nil)
	}
	return nil
}

func (c *Config) validateTimezone() error {
	if strings.TrimSpace(c.Timezone) == "" {
		return newConfigError("timezone", "must not be empty", nil)
	}
	return nil
}

func (c *Config) validateBackfill() error {
	b := c.Backfill
	if !b.Enabled {
		return nil
	}
	hasAbsolute := b.StartDate != "" || b.EndDate != ""
	hasRelative := b.DaysBack > 0 || b.DurationDays > 0
	if hasAbsolute && hasRelative {
		return newConfigError("backfill", "specify either an absolute window (start/end date) or a relative one (days_back/duration_days), not both", nil)
	}
	if !hasAbsolute && !hasRelative {
		return newConfigError("backfill", "enabled but no window specified", nil)
	}
	if hasAbsolute && (b.StartDate == "" || b.EndDate == "") {
		return newConfigError("backfill", "absolute window requires both start_date and end_date", nil)
	}
	if b.RPSLimit < 0 {
		return newConfigError("backfill_rps_limit", "must be non-negative", nil)
	}
	if b.MaxPerDay < 0 || b.MaxTotal < 0 {
		return newConfigError("backfill_max_visits", "must be non-negative", nil)
	}
	if b.MaxPerDay <= 0 {
		return newConfigError("backfill_max_visits_per_day", "required when backfill is enabled", nil)
	}
	if b.MaxPerDay > 10000 {
		return newConfigError("backfill_max_visits_per_day", "must be <= 10000", nil)
	}
	if b.MaxTotal > 0 && b.MaxTotal < b.MaxPerDay {
		return newConfigError("backfill_max_visits_total", "must be >= max_visits_per_day when set", nil)
	}
	return nil
}
