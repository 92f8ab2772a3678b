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

package correlation

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// CorrelationIDKey is the context key for storing correlation IDs
	CorrelationIDKey contextKey = "correlation-id"

	// RequestIDHeader is the HTTP header for request IDs
	RequestIDHeader = "X-Request-ID"

	// CorrelationIDHeader is the HTTP header for correlation IDs
	CorrelationIDHeader = "X-Correlation-ID"

	// maxIDLength bounds caller supplied IDs echoed back in responses
	maxIDLength = 128
)

// WithCorrelationID adds a correlation ID to the context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// GetCorrelationID retrieves the correlation ID from context.
// Returns an empty string if no correlation ID is found.
func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}

// NewID generates a new UUID v4 correlation ID.
func NewID() string {
	return uuid.New().String()
}

// GetOrGenerate retrieves an existing correlation ID from context
// or generates a new one if none exists.
func GetOrGenerate(ctx context.Context) string {
	if id := GetCorrelationID(ctx); id != "" {
		return id
	}
	return NewID()
}

// FromRequest returns the caller supplied ID from X-Request-ID or
// X-Correlation-ID, or a new one when neither is usable.
func FromRequest(r *http.Request) string {
	for _, h := range []string{RequestIDHeader, CorrelationIDHeader} {
		if id := strings.TrimSpace(r.Header.Get(h)); id != "" && len(id) <= maxIDLength && printable(id) {
			return id
		}
	}
	return NewID()
}

func printable(s string) bool {
	for _, r := range s {
		if r < 0x21 || r > 0x7e {
			return false
		}
	}
	return true
}
