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

// Package metrics provides Prometheus instrumentation for keytool operations.
// It exposes operation counters, latency histograms, error counters by
// error kind, HTTP request metrics and process resource gauges.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jeremyhahn/go-keytool/pkg/types"
)

const (
	// Namespace is the Prometheus namespace for all keytool metrics
	Namespace = "keytool"

	// Label names
	LabelOperation  = "operation"
	LabelStatus     = "status"
	LabelKind       = "kind"
	LabelMethod     = "method"
	LabelRoute      = "route"
	LabelStatusCode = "status_code"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Operation names
	OpSymmetricKey   = "symmetric_key"
	OpIV             = "iv"
	OpAESCrypto      = "aes_crypto"
	OpGenerateKey    = "generate_key"
	OpDerivePublic   = "derive_public"
	OpConvert        = "convert"
	OpParse          = "parse"
	OpProtect        = "protect"
	OpUnprotect      = "unprotect"
	OpECIES          = "ecies"
	OpRSACrypto      = "rsa_crypto"
	OpJWKEmit        = "jwk_emit"
	OpJWKGenerate    = "jwk_generate"
	OpJWKThumbprint  = "jwk_thumbprint"
	OpEnumerations   = "enumerations"
)

var (
	// OperationsTotal tracks the total number of operations by type and status.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Total number of keytool operations by type and status",
		},
		[]string{LabelOperation, LabelStatus},
	)

	// OperationDuration tracks the duration of operations in seconds.
	// RSA generation dominates the upper buckets.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of keytool operations in seconds",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{LabelOperation},
	)

	// ErrorsTotal tracks failures by operation and error kind (MalformedKey,
	// AuthenticationFailed, ...).
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "errors_total",
			Help:      "Total number of errors by operation and error kind",
		},
		[]string{LabelOperation, LabelKind},
	)

	// HTTPRequestsTotal tracks the total number of HTTP requests by method, route and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route and status code",
		},
		[]string{LabelMethod, LabelRoute, LabelStatusCode},
	)

	// HTTPRequestDuration tracks the duration of HTTP requests in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelMethod, LabelRoute},
	)

	// HTTPActiveRequests tracks in-flight HTTP requests.
	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "active_requests",
			Help:      "Number of in-flight HTTP requests",
		},
	)

	// Goroutines tracks the current number of goroutines.
	// Updated periodically by the resource collector.
	Goroutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "goroutines",
			Help:      "Current number of goroutines",
		},
	)

	// MemoryAllocBytes tracks the current bytes of allocated heap objects.
	MemoryAllocBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "memory_alloc_bytes",
			Help:      "Current bytes of allocated heap objects",
		},
	)

	// ServerUptime tracks the server uptime in seconds since startup.
	ServerUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "server_uptime_seconds",
			Help:      "Server uptime in seconds since startup",
		},
	)

	// enabled tracks whether metrics collection is enabled
	enabled atomic.Bool
)

func init() {
	// Metrics are enabled by default
	enabled.Store(true)
}

// RecordOperation records an operation with its duration and status.
func RecordOperation(operation, status string, duration float64) {
	if !enabled.Load() {
		return
	}
	OperationsTotal.WithLabelValues(operation, status).Inc()
	OperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordError records a failed operation by error kind.
func RecordError(operation, kind string) {
	if !enabled.Load() {
		return
	}
	ErrorsTotal.WithLabelValues(operation, kind).Inc()
}

// Observe records the outcome of an operation that started at start.
//
// Example:
//
//	start := time.Now()
//	out, err := ecies.Encrypt(key, params, plaintext)
//	metrics.Observe(metrics.OpECIES, start, err)
func Observe(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	if err != nil {
		RecordOperation(operation, StatusError, duration)
		RecordError(operation, types.ErrorKind(err))
		return
	}
	RecordOperation(operation, StatusSuccess, duration)
}

// RecordHTTPRequest records an HTTP request with its duration and status.
func RecordHTTPRequest(method, route, statusCode string, duration float64) {
	if !enabled.Load() {
		return
	}
	HTTPRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration)
}

// Enable enables metrics collection.
func Enable() {
	enabled.Store(true)
}

// Disable disables metrics collection.
func Disable() {
	enabled.Store(false)
}

// IsEnabled returns whether metrics collection is currently enabled.
func IsEnabled() bool {
	return enabled.Load()
}
