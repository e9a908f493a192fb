// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/trafficinator/internal/model"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MATOMO_URL", "https://matomo.example.com/matomo.php")
	t.Setenv("MATOMO_SITE_ID", "7")
	t.Setenv("TARGET_VISITS_PER_DAY", "5000")
	t.Setenv("CONFIG_PATH", "/nonexistent/trafficinator-config-test.yaml")
}

func TestLoad_PopulatesFromEnvironmentOverDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PAGEVIEWS_MIN", "2")
	t.Setenv("PAGEVIEWS_MAX", "8")
	t.Setenv("LANG", "sv")
	t.Setenv("RESOLUTION", "1920x1080")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://matomo.example.com/matomo.php", cfg.Matomo.URL)
	assert.Equal(t, 7, cfg.Matomo.SiteID)
	assert.Equal(t, 5000, cfg.Volume.TargetVisitsPerDay)
	assert.Equal(t, 2, cfg.Volume.PageviewsMin)
	assert.Equal(t, 8, cfg.Volume.PageviewsMax)
	assert.Equal(t, "sv", cfg.Behavior.Lang)
	assert.Equal(t, "1920x1080", cfg.Behavior.Resolution)
}

func TestLoad_DefaultsSurviveWithoutOverride(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Volume.PageviewsMin)
	assert.Equal(t, 5, cfg.Volume.PageviewsMax)
	assert.Equal(t, 20, cfg.Volume.Concurrency)
	assert.Equal(t, "SEK", cfg.Ecommerce.Currency)
}

func TestLoad_ReturnsConfigErrorOnValidationFailure(t *testing.T) {
	t.Setenv("MATOMO_URL", "https://matomo.example.com/matomo.php")
	t.Setenv("MATOMO_SITE_ID", "7")
	t.Setenv("CONFIG_PATH", "/nonexistent/trafficinator-config-test.yaml")
	// TARGET_VISITS_PER_DAY intentionally left unset; its zero value fails
	// the "required" validator tag.

	_, err := Load()
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoad_SeedPresenceSetsHasSeed(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BACKFILL_SEED", "42")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.Backfill.Seed)
	assert.True(t, cfg.Backfill.HasSeed)
}

func TestLoad_NoSeedLeavesHasSeedFalse(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Backfill.HasSeed)
}

func TestParseCapMode(t *testing.T) {
	cases := []struct {
		raw  string
		want model.CapMode
	}{
		{"", model.CapOff},
		{"off", model.CapOff},
		{"OFF", model.CapOff},
		{"lifetime", model.CapLifetime},
		{"rolling24h", model.CapRolling24h},
		{"rolling_24h", model.CapRolling24h},
		{"rolling", model.CapRolling24h},
	}
	for _, tc := range cases {
		got, err := parseCapMode(tc.raw)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}
}

func TestParseCapMode_RejectsUnknownValue(t *testing.T) {
	_, err := parseCapMode("sometimes")
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestEnvTransformFunc_MapsKnownKeys(t *testing.T) {
	assert.Equal(t, "matomo.url", envTransformFunc("MATOMO_URL"))
	assert.Equal(t, "behavior.lang", envTransformFunc("LANG"))
	assert.Equal(t, "behavior.resolution", envTransformFunc("RESOLUTION"))
	assert.Equal(t, "behavior.randomize_visitor_countries", envTransformFunc("RANDOMIZE_VISITOR_COUNTRIES"))
	assert.Equal(t, "backfill.max_visits_per_day", envTransformFunc("BACKFILL_MAX_VISITS_PER_DAY"))
}

func TestEnvTransformFunc_IgnoresUnknownKeys(t *testing.T) {
	assert.Equal(t, "", envTransformFunc("SOME_UNRELATED_HOST_ENV_VAR"))
}
