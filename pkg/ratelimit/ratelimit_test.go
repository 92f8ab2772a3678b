// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-keytool.
//
// go-keytool is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledAllowsEverything(t *testing.T) {
	l := New(nil)
	defer l.Stop()
	assert.False(t, l.IsEnabled())
	for i := 0; i < 100; i++ {
		require.True(t, l.Allow("client"))
	}
	assert.NoError(t, l.Wait(context.Background(), "client"))
	assert.Zero(t, l.ActiveClients())
}

func TestBurstThenLimited(t *testing.T) {
	l := New(&Config{Enabled: true, RequestsPerMinute: 60, Burst: 3})
	defer l.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("a"), "request %d", i)
	}
	assert.False(t, l.Allow("a"))

	// Buckets are per client.
	assert.True(t, l.Allow("b"))
	assert.Equal(t, 2, l.ActiveClients())
}

func TestBurstDefaultsToRate(t *testing.T) {
	l := New(&Config{Enabled: true, RequestsPerMinute: 2})
	defer l.Stop()
	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
}

func TestWaitHonoursContext(t *testing.T) {
	l := New(&Config{Enabled: true, RequestsPerMinute: 1, Burst: 1})
	defer l.Stop()
	require.True(t, l.Allow("a"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx, "a"))
}

func TestCleanupRemovesIdleClients(t *testing.T) {
	l := New(&Config{Enabled: true, RequestsPerMinute: 60, MaxIdle: time.Minute})
	defer l.Stop()
	l.Allow("idle")

	l.cleanup(time.Now())
	assert.Equal(t, 1, l.ActiveClients())

	l.cleanup(time.Now().Add(2 * time.Minute))
	assert.Zero(t, l.ActiveClients())
}

func TestStopIsIdempotent(t *testing.T) {
	l := New(&Config{Enabled: true, RequestsPerMinute: 60})
	l.Stop()
	assert.NotPanics(t, l.Stop)
}

func TestMiddleware(t *testing.T) {
	l := New(&Config{Enabled: true, RequestsPerMinute: 60, Burst: 1})
	defer l.Stop()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("DefaultReject", func(t *testing.T) {
		h := Middleware(l, nil)(next)
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("CustomReject", func(t *testing.T) {
		h := Middleware(l, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})(next)
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "10.0.0.2:1234"

		h.ServeHTTP(httptest.NewRecorder(), req)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"RemoteAddr", nil, "192.0.2.1:5555", "192.0.2.1"},
		{"RemoteAddrNoPort", nil, "192.0.2.1", "192.0.2.1"},
		{"ForwardedFor", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.1:1", "203.0.113.7"},
		{"RealIP", map[string]string{"X-Real-IP": "203.0.113.9"}, "10.0.0.1:1", "203.0.113.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(r))
		})
	}
}
