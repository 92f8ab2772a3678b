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

	"github.com/jeremyhahn/go-keytool/pkg/correlation"
)

// CorrelationMiddleware extracts or generates a correlation ID for request
// tracing. X-Request-ID wins over X-Correlation-ID; a new UUID is generated
// when neither carries a usable value.
//
// The ID is stored in the request context and echoed in both response
// headers.
func (s *Server) CorrelationMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			correlationID := correlation.FromRequest(r)

			ctx := correlation.WithCorrelationID(r.Context(), correlationID)
			r = r.WithContext(ctx)

			w.Header().Set(correlation.CorrelationIDHeader, correlationID)
			w.Header().Set(correlation.RequestIDHeader, correlationID)

			next.ServeHTTP(w, r)
		})
	}
}
