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

package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-keytool/pkg/types"
)

func TestObserveSuccess(t *testing.T) {
	Enable()
	before := testutil.ToFloat64(OperationsTotal.WithLabelValues(OpParse, StatusSuccess))

	Observe(OpParse, time.Now(), nil)

	assert.Equal(t, before+1, testutil.ToFloat64(OperationsTotal.WithLabelValues(OpParse, StatusSuccess)))
}

func TestObserveErrorRecordsKind(t *testing.T) {
	Enable()
	kind := ErrorsTotal.WithLabelValues(OpECIES, "AuthenticationFailed")
	status := OperationsTotal.WithLabelValues(OpECIES, StatusError)
	beforeKind, beforeStatus := testutil.ToFloat64(kind), testutil.ToFloat64(status)

	Observe(OpECIES, time.Now(), fmt.Errorf("decrypt: %w", types.ErrAuthenticationFailed))

	assert.Equal(t, beforeKind+1, testutil.ToFloat64(kind))
	assert.Equal(t, beforeStatus+1, testutil.ToFloat64(status))
}

func TestDisabledRecordsNothing(t *testing.T) {
	Disable()
	defer Enable()
	assert.False(t, IsEnabled())

	counter := OperationsTotal.WithLabelValues(OpConvert, StatusError)
	before := testutil.ToFloat64(counter)
	Observe(OpConvert, time.Now(), errors.New("boom"))
	assert.Equal(t, before, testutil.ToFloat64(counter))
}

func TestHTTPMiddlewareUsesRoutePattern(t *testing.T) {
	Enable()
	r := chi.NewRouter()
	r.Use(HTTPMiddleware)
	r.Get("/api/v1/enums/{name}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	counter := HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/enums/{name}", "418")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/enums/curves", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))

	unmatched := HTTPRequestsTotal.WithLabelValues("GET", unmatchedRoute, "404")
	before = testutil.ToFloat64(unmatched)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/nope", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(unmatched))
}

func TestResponseWriterDefaultsTo200(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}
	_, err := rw.Write([]byte("ok"))
	require.NoError(t, err)
	rw.WriteHeader(http.StatusInternalServerError)
	assert.Equal(t, http.StatusOK, rw.statusCode)
}

func TestHandlerExposesNamespace(t *testing.T) {
	Enable()
	Observe(OpEnumerations, time.Now(), nil)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "keytool_operations_total"))
}

func TestResourceCollector(t *testing.T) {
	Enable()
	Goroutines.Set(0)

	ctx, cancel := context.WithCancel(context.Background())
	collector := StartResourceCollector(ctx, 10*time.Millisecond)
	defer collector.Stop()

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(Goroutines) > 0
	}, time.Second, 5*time.Millisecond)
	assert.Greater(t, testutil.ToFloat64(MemoryAllocBytes), float64(0))

	cancel()
}
