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
	"encoding/json"

	"github.com/jeremyhahn/go-keytool/pkg/health"
	"github.com/jeremyhahn/go-keytool/pkg/keytool"
)

// ValueResponse carries a single encoded result.
type ValueResponse struct {
	Result keytool.Value `json:"result"`
}

// ParseKeyRequest is the body of POST /api/v1/keys/parse.
type ParseKeyRequest struct {
	Key keytool.Value `json:"key"`
}

// ECIESResponse carries an ECIES result and the final pipeline state.
type ECIESResponse struct {
	Result keytool.Value `json:"result"`
	State  string        `json:"state"`
}

// JWKResponse embeds the JWK as a JSON object rather than a string.
type JWKResponse struct {
	JWK json.RawMessage `json:"jwk"`
}

// ThumbprintResponse carries a base64url RFC 7638 thumbprint.
type ThumbprintResponse struct {
	Thumbprint string `json:"thumbprint"`
}

// EnumResponse is one named value list.
type EnumResponse struct {
	Name   string `json:"name"`
	Values any    `json:"values"`
}

// VersionResponse reports the build version.
type VersionResponse struct {
	Version string `json:"version"`
}

// HealthCheckResponse represents the response for health check endpoints.
type HealthCheckResponse struct {
	// Status is the overall health status
	Status health.Status `json:"status"`
	// Message provides additional context
	Message string `json:"message,omitempty"`
	// Version is set by GET /health
	Version string `json:"version,omitempty"`
	// Checks contains individual check results (for readiness)
	Checks []health.CheckResult `json:"checks,omitempty"`
}
