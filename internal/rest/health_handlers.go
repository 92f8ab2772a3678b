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

package rest

import (
	"net/http"

	"github.com/jeremyhahn/go-keytool/pkg/health"
)

// HealthHandler handles GET /health. It reports the aggregated readiness
// status together with the build version.
func (h *HandlerContext) HealthHandler(w http.ResponseWriter, r *http.Request) {
	resp := HealthCheckResponse{
		Status:  health.StatusHealthy,
		Version: h.version,
	}
	if h.HealthChecker != nil {
		resp.Status = health.AggregateStatus(h.HealthChecker.Ready(r.Context()))
	}
	writeJSON(w, resp, statusCodeFor(resp.Status))
}

// LivenessHandler handles GET /health/live requests.
//
// Liveness probes determine if the service is alive and should be restarted.
// This endpoint should ONLY fail if the service is in an unrecoverable state.
func (h *HandlerContext) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	if h.HealthChecker == nil {
		writeJSON(w, HealthCheckResponse{Status: health.StatusHealthy, Message: "Service is alive"}, http.StatusOK)
		return
	}

	result := h.HealthChecker.Live(r.Context())
	resp := HealthCheckResponse{
		Status:  result.Status,
		Message: result.Message,
	}
	writeJSON(w, resp, statusCodeFor(result.Status))
}

// ReadinessHandler handles GET /health/ready requests.
//
// Readiness runs the registered self tests: the random source and a known
// answer cipher check. A degraded service still accepts traffic.
func (h *HandlerContext) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	if h.HealthChecker == nil {
		writeJSON(w, HealthCheckResponse{Status: health.StatusHealthy, Message: "Service is ready"}, http.StatusOK)
		return
	}

	results := h.HealthChecker.Ready(r.Context())
	overallStatus := health.AggregateStatus(results)

	resp := HealthCheckResponse{
		Status: overallStatus,
		Checks: results,
	}
	switch overallStatus {
	case health.StatusHealthy:
		resp.Message = "All checks passed"
	case health.StatusDegraded:
		resp.Message = "Service is degraded"
	case health.StatusUnhealthy:
		resp.Message = "One or more checks failed"
	}
	writeJSON(w, resp, statusCodeFor(overallStatus))
}

// StartupHandler handles GET /health/startup requests. It fails until the
// server has marked itself started.
func (h *HandlerContext) StartupHandler(w http.ResponseWriter, r *http.Request) {
	if h.HealthChecker == nil {
		writeJSON(w, HealthCheckResponse{Status: health.StatusHealthy, Message: "Service has started"}, http.StatusOK)
		return
	}

	result := h.HealthChecker.Startup(r.Context())
	resp := HealthCheckResponse{
		Status:  result.Status,
		Message: result.Message,
	}
	writeJSON(w, resp, statusCodeFor(result.Status))
}

func statusCodeFor(status health.Status) int {
	if status == health.StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}
