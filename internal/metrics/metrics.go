// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package metrics

import (
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// This package instruments the visit engine, the HTTP dispatcher, the pace
// controller, and the backfill engine. There is no owned HTTP endpoint to
// serve /metrics (the control/REST surface is out of scope); callers that
// want a Prometheus scrape target can register these collectors on their
// own registry, or call ReadSnapshot for a point-in-time read usable in a
// status-line log.

var (
	// Visit Engine Metrics

	VisitsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trafficinator_visits_started_total",
			Help: "Total number of visits launched by the engine",
		},
	)

	VisitsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trafficinator_visits_completed_total",
			Help: "Total number of visits that reached a terminal outcome",
		},
		[]string{"outcome"}, // "completed", "aborted"
	)

	VisitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trafficinator_visit_duration_seconds",
			Help:    "Wall-clock duration of a single visit",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
	)

	ActiveVisits = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trafficinator_active_visits",
			Help: "Current number of visits in progress",
		},
	)

	ActionsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trafficinator_actions_emitted_total",
			Help: "Total number of actions successfully delivered to Matomo",
		},
		[]string{"kind"},
	)

	FunnelsEntered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trafficinator_funnels_entered_total",
			Help: "Total number of visits that entered a funnel",
		},
		[]string{"funnel_id"},
	)

	FunnelsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trafficinator_funnels_completed_total",
			Help: "Total number of visits that completed every step of a funnel",
		},
		[]string{"funnel_id"},
	)

	// Pace Controller Metrics

	PaceTokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trafficinator_pace_tokens_issued_total",
			Help: "Total number of launch tokens issued by the pace controller",
		},
	)

	PacePauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trafficinator_pace_pauses_total",
			Help: "Total number of times the pace controller paused launches due to the daily cap",
		},
	)

	PaceCapWindowVisits = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trafficinator_pace_cap_window_visits",
			Help: "Current number of visits counted in the active cap window",
		},
	)

	// HTTP Dispatcher Metrics

	DispatchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trafficinator_dispatch_requests_total",
			Help: "Total number of tracking requests sent to Matomo",
		},
		[]string{"method", "outcome"}, // outcome: "success", "retried", "failed"
	)

	DispatchRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trafficinator_dispatch_request_duration_seconds",
			Help:    "Duration of a single HTTP round-trip to Matomo",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	DispatchRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trafficinator_dispatch_retries_total",
			Help: "Total number of retried tracking requests",
		},
		[]string{"reason"}, // "connection_error", "server_error", "rate_limited"
	)

	// Circuit Breaker Metrics (adapted from the general circuit-breaker shape)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trafficinator_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trafficinator_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Backfill Engine Metrics

	BackfillVisitsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trafficinator_backfill_visits_generated_total",
			Help: "Total number of historical visits generated by the backfill engine",
		},
		[]string{"day"},
	)

	BackfillDaysProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trafficinator_backfill_days_processed_total",
			Help: "Total number of calendar days processed by the backfill engine",
		},
	)

	BackfillErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trafficinator_backfill_errors_total",
			Help: "Total number of backfill errors",
		},
		[]string{"stage"},
	)
)

// RecordDispatch records the outcome of one dispatched tracking request.
func RecordDispatch(method, outcome string, duration time.Duration) {
	DispatchRequestsTotal.WithLabelValues(method, outcome).Inc()
	DispatchRequestDuration.Observe(duration.Seconds())
}

// RecordCircuitBreakerTransition mirrors a gobreaker OnStateChange callback
// into both the transition counter and the current-state gauge.
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
}

func stateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

// Snapshot is a point-in-time read of the counters most useful for a
// periodic status-line log line, since CounterVec/GaugeVec values are not
// otherwise cheaply readable back by calling code.
type Snapshot struct {
	VisitsStarted   float64
	ActiveVisits    float64
	PaceTokens      float64
	PacePauses      float64
	DispatchSuccess float64
	DispatchFailed  float64
}

// ReadSnapshot gathers the current values of the package-level collectors.
// It is safe to call from any goroutine.
func ReadSnapshot() Snapshot {
	return Snapshot{
		VisitsStarted:   counterValue(VisitsStarted),
		ActiveVisits:    gaugeValue(ActiveVisits),
		PaceTokens:      counterValue(PaceTokensIssued),
		PacePauses:      counterValue(PacePauses),
		DispatchSuccess: counterVecValue(DispatchRequestsTotal, "POST", "success") + counterVecValue(DispatchRequestsTotal, "GET", "success"),
		DispatchFailed:  counterVecValue(DispatchRequestsTotal, "POST", "failed") + counterVecValue(DispatchRequestsTotal, "GET", "failed"),
	}
}

func counterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(g prometheus.Gauge) float64 {
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		return 0
	}
	return m.GetGauge().GetValue()
}

func counterVecValue(vec *prometheus.CounterVec, labels ...string) float64 {
	c, err := vec.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0
	}
	return counterValue(c)
}
