// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package dispatcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/trafficinator/internal/trackbuilder"
)

func newTestRequest(endpoint string) trackbuilder.Request {
	q := url.Values{}
	q.Set("idsite", "1")
	return trackbuilder.Request{Method: trackbuilder.MethodGet, Endpoint: endpoint, QueryParams: q}
}

func TestDispatch_SuccessOnFirstAttempt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := New(4)
	err := d.Dispatch(context.Background(), newTestRequest(srv.URL))
	require.NoError(t, err)
}

func TestDispatch_PermanentErrorOn4xxNeverRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	d := New(4)
	err := d.Dispatch(context.Background(), newTestRequest(srv.URL))
	require.Error(t, err)
	var permErr *PermanentError
	assert.ErrorAs(t, err, &permErr)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDispatch_RetriesOn5xxThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := New(4)
	err := d.Dispatch(context.Background(), newTestRequest(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDispatch_ExhaustsRetriesOnPersistent5xx(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := New(4)
	err := d.Dispatch(context.Background(), newTestRequest(srv.URL))
	require.Error(t, err)
	var transientErr *TransientError
	assert.ErrorAs(t, err, &transientErr)
	assert.Equal(t, int32(1+maxRetries), atomic.LoadInt32(&calls))
}

func TestDispatch_429RetriedOnlyOnce(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	d := New(4)
	start := time.Now()
	err := d.Dispatch(context.Background(), newTestRequest(srv.URL))
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestBoundRetryAfter_ClampsToMax(t *testing.T) {
	assert.Equal(t, maxRetryAfter, boundRetryAfter(1*time.Hour))
	assert.Equal(t, time.Second, boundRetryAfter(0))
}

func TestParseRetryAfter_InvalidHeaderYieldsZero(t *testing.T) {
	assert.Equal(t, time.Duration(0), parseRetryAfter("not-a-number"))
	assert.Equal(t, 5*time.Second, parseRetryAfter("5"))
}
