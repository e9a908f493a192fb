// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

// Package dispatcher sends built tracking requests to Matomo over a shared,
// pooled HTTP client with a retry policy and a per-target circuit breaker
// (spec.md §4.8).
package dispatcher

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/trafficinator/internal/logging"
	"github.com/tomtom215/trafficinator/internal/metrics"
	"github.com/tomtom215/trafficinator/internal/trackbuilder"
)

const (
	requestTimeout = 10 * time.Second
	connectTimeout = 3 * time.Second
	maxRetries     = 2
	maxRetryAfter  = 10 * time.Second
)

// retryBackoff is the exponential backoff schedule for connection errors and
// 5xx responses (spec.md §4.8: "0.5s, 1.0s").
var retryBackoff = []time.Duration{500 * time.Millisecond, 1 * time.Second}

// TransientError wraps a per-request failure that was retried and ultimately
// exhausted its retry budget (network error or repeated 5xx/429).
type TransientError struct {
	StatusCode int
	Cause      error
}

func (e *TransientError) Error() string {
	if e.Cause != nil {
		return "transient tracking error: " + e.Cause.Error()
	}
	return "transient tracking error: status " + strconv.Itoa(e.StatusCode)
}

func (e *TransientError) Unwrap() error { return e.Cause }

// PermanentError wraps a per-request 4xx failure. Never retried.
type PermanentError struct {
	StatusCode int
}

func (e *PermanentError) Error() string {
	return "permanent tracking error: status " + strconv.Itoa(e.StatusCode)
}

// Dispatcher issues Matomo tracking requests built by internal/trackbuilder.
type Dispatcher struct {
	client *http.Client
	cb     *gobreaker.CircuitBreaker[struct{}]
	name   string
}

// New builds a Dispatcher. concurrency sizes the pooled transport's idle
// connections so it never has to dial fresh per request under normal load
// (spec.md §4.8 "pooled keep-alive connections... sized to at least
// concurrency").
func New(concurrency int) *Dispatcher {
	if concurrency < 1 {
		concurrency = 1
	}

	transport := &http.Transport{
		MaxIdleConns:        concurrency * 2,
		MaxIdleConnsPerHost: concurrency * 2,
		MaxConnsPerHost:     concurrency * 2,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout: connectTimeout,
		}).DialContext,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   requestTimeout,
	}

	name := "matomo-tracking"
	metrics.RecordCircuitBreakerTransition(name, "closed", "closed")

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		OnStateChange: func(n string, from, to gobreaker.State) {
			metrics.RecordCircuitBreakerTransition(n, stateToString(from), stateToString(to))
			logging.Warn().Str("from", stateToString(from)).Str("to", stateToString(to)).Msg("dispatcher circuit breaker state transition")
		},
	})

	return &Dispatcher{client: client, cb: cb, name: name}
}

// Dispatch sends req, retrying per spec.md §4.8's policy. The retried
// request always carries the same parameters, so the wire-level cdt is
// never mutated across attempts (spec.md §5 ordering guarantee).
func (d *Dispatcher) Dispatch(ctx context.Context, req trackbuilder.Request) error {
	_, err := d.cb.Execute(func() (struct{}, error) {
		return struct{}{}, d.attempt(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordDispatch(string(req.Method), "circuit_open", 0)
		}
		return err
	}
	return nil
}

func (d *Dispatcher) attempt(ctx context.Context, req trackbuilder.Request) error {
	var lastErr error

	for try := 0; try <= maxRetries; try++ {
		start := time.Now()
		statusCode, retryAfter, err := d.send(ctx, req)
		elapsed := time.Since(start)

		if err != nil {
			lastErr = err
			metrics.RecordDispatch(string(req.Method), "network_error", elapsed)
			if !sleepBackoff(ctx, try) {
				return lastErr
			}
			continue
		}

		switch {
		case statusCode >= 200 && statusCode < 300:
			metrics.RecordDispatch(string(req.Method), "success", elapsed)
			return nil

		case statusCode == 429:
			metrics.RecordDispatch(string(req.Method), "rate_limited", elapsed)
			lastErr = &TransientError{StatusCode: statusCode}
			if try >= 1 {
				return lastErr
			}
			if !sleepFor(ctx, boundRetryAfter(retryAfter)) {
				return lastErr
			}

		case statusCode >= 500:
			metrics.RecordDispatch(string(req.Method), "server_error", elapsed)
			lastErr = &TransientError{StatusCode: statusCode}
			if !sleepBackoff(ctx, try) {
				return lastErr
			}

		default:
			metrics.RecordDispatch(string(req.Method), "client_error", elapsed)
			return &PermanentError{StatusCode: statusCode}
		}
	}

	return lastErr
}

// send issues one HTTP attempt and returns the response status code (or an
// error for connection-level failures) plus any Retry-After duration.
func (d *Dispatcher) send(ctx context.Context, req trackbuilder.Request) (statusCode int, retryAfter time.Duration, err error) {
	httpReq, err := buildHTTPRequest(ctx, req)
	if err != nil {
		return 0, 0, err
	}

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	return resp.StatusCode, parseRetryAfter(resp.Header.Get("Retry-After")), nil
}

func buildHTTPRequest(ctx context.Context, req trackbuilder.Request) (*http.Request, error) {
	if req.Method == trackbuilder.MethodPost {
		body := strings.NewReader(req.QueryParams.Encode())
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.Endpoint, body)
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return httpReq, nil
	}

	u, err := url.Parse(req.Endpoint)
	if err != nil {
		return nil, err
	}
	u.RawQuery = req.QueryParams.Encode()
	return http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return 0
}

func boundRetryAfter(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Second
	}
	if d > maxRetryAfter {
		return maxRetryAfter
	}
	return d
}

// sleepBackoff sleeps the exponential backoff for retry attempt try (0-based),
// returning false if ctx was canceled or no more backoff steps remain.
func sleepBackoff(ctx context.Context, try int) bool {
	if try >= len(retryBackoff) {
		return false
	}
	return sleepFor(ctx, retryBackoff[try])
}

func sleepFor(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
