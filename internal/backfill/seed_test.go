// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package backfill

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaySeededRand_IsDeterministicForSameDay(t *testing.T) {
	day := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	seed := seedBytesFrom(42)

	r1 := daySeededRand(seed, day)
	r2 := daySeededRand(seed, day)

	for i := 0; i < 10; i++ {
		assert.Equal(t, r1.Float64(), r2.Float64())
	}
}

func TestDaySeededRand_DiffersAcrossDays(t *testing.T) {
	seed := seedBytesFrom(42)
	day1 := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 10, 2, 0, 0, 0, 0, time.UTC)

	r1 := daySeededRand(seed, day1)
	r2 := daySeededRand(seed, day2)

	assert.NotEqual(t, r1.Float64(), r2.Float64())
}

func TestDaySeededRand_DiffersAcrossSeeds(t *testing.T) {
	day := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	r1 := daySeededRand(seedBytesFrom(1), day)
	r2 := daySeededRand(seedBytesFrom(2), day)

	assert.NotEqual(t, r1.Float64(), r2.Float64())
}
