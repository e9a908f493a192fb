// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package pace

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/trafficinator/internal/model"
)

func TestNew_CapacityIsAtLeastOne(t *testing.T) {
	c := New(1, model.CapOff, 0)
	assert.GreaterOrEqual(t, c.limiter.Burst(), 1)
}

func TestAcquire_SucceedsWithoutCap(t *testing.T) {
	c := New(864000, model.CapOff, 0) // 10 visits/sec
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Acquire(ctx))
	}
}

func TestAcquire_RollingCapBlocksUntilWindowSlides(t *testing.T) {
	c := New(864000, model.CapRolling24h, 1)
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.clock = func() time.Time { return fixed }

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	require.NoError(t, c.Acquire(ctx))

	err := c.Acquire(ctx)
	assert.Error(t, err, "second launch must block until the window slides, context should time out first")
}

func TestAcquire_ContextCancellationPropagates(t *testing.T) {
	c := New(1, model.CapOff, 0)
	// Drain the single-token burst capacity first.
	ctx := context.Background()
	require.NoError(t, c.Acquire(ctx))

	cancelCtx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Acquire(cancelCtx)
	assert.Error(t, err)
}

func TestTokensAvailable_ReflectsBucketFill(t *testing.T) {
	c := New(86400, model.CapOff, 0) // 1 visit/sec
	assert.GreaterOrEqual(t, c.TokensAvailable(), 0.0)
}
