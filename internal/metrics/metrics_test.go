// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordDispatch(t *testing.T) {
	before := testutil.ToFloat64(DispatchRequestsTotal.WithLabelValues("POST", "success"))

	RecordDispatch("POST", "success", 42*time.Millisecond)

	after := testutil.ToFloat64(DispatchRequestsTotal.WithLabelValues("POST", "success"))
	assert.Equal(t, before+1, after)
}

func TestRecordCircuitBreakerTransition(t *testing.T) {
	RecordCircuitBreakerTransition("matomo", "closed", "open")
	assert.Equal(t, float64(2), testutil.ToFloat64(CircuitBreakerState.WithLabelValues("matomo")))

	RecordCircuitBreakerTransition("matomo", "open", "half-open")
	assert.Equal(t, float64(1), testutil.ToFloat64(CircuitBreakerState.WithLabelValues("matomo")))

	RecordCircuitBreakerTransition("matomo", "half-open", "closed")
	assert.Equal(t, float64(0), testutil.ToFloat64(CircuitBreakerState.WithLabelValues("matomo")))
}

func TestReadSnapshot(t *testing.T) {
	before := ReadSnapshot()

	VisitsStarted.Inc()
	PaceTokensIssued.Inc()
	ActiveVisits.Set(before.ActiveVisits + 3)

	after := ReadSnapshot()
	require.Equal(t, before.VisitsStarted+1, after.VisitsStarted)
	require.Equal(t, before.PaceTokens+1, after.PaceTokens)
	require.Equal(t, before.ActiveVisits+3, after.ActiveVisits)
}

func TestStateValue(t *testing.T) {
	assert.Equal(t, float64(0), stateValue("closed"))
	assert.Equal(t, float64(1), stateValue("half-open"))
	assert.Equal(t, float64(2), stateValue("open"))
	assert.Equal(t, float64(0), stateValue("unknown"))
}
