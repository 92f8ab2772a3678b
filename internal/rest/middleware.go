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
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/jeremyhahn/go-keytool/pkg/logging"
)

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// WriteHeader captures the status code.
func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

// Write ensures WriteHeader is called.
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// LoggingMiddleware logs one line per request. Bodies are never logged.
func (s *Server) LoggingMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := newResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			fields := []logging.Field{
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.Int("status", wrapped.statusCode),
				logging.String("duration", time.Since(start).String()),
				logging.String("remote_addr", r.RemoteAddr),
			}
			// Use context-aware logging to include correlation ID
			if slogAdapter, ok := s.logger.(*logging.SlogAdapter); ok {
				slogAdapter.InfoContext(r.Context(), "Request completed", fields...)
				return
			}
			s.logger.Info("Request completed", fields...)
		})
	}
}

// RecoveryMiddleware recovers from panics and returns a 500 error.
func (s *Server) RecoveryMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					s.logger.Error("Panic recovered",
						logging.String("method", r.Method),
						logging.String("path", r.URL.Path),
						logging.Any("error", rec))
					handleError(w, r, fmt.Errorf("panic: %v", rec))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// BodyLimitMiddleware caps request bodies at limit bytes. Zero disables
// the cap.
func BodyLimitMiddleware(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// JSONContentMiddleware rejects request bodies that declare a content type
// other than application/json. An absent Content-Type is accepted.
func JSONContentMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "" {
			mediaType, _, err := mime.ParseMediaType(ct)
			if err != nil || mediaType != "application/json" {
				handleError(w, r, fmt.Errorf("%w: expected application/json, got %q", ErrUnsupportedMedia, ct))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// CORSMiddleware adds CORS headers to responses.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID, X-Correlation-ID")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, X-Correlation-ID")
		w.Header().Set("Access-Control-Max-Age", "3600")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// rateLimited is the reject handler for the rate limiter.
func rateLimited(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "60")
	handleError(w, r, fmt.Errorf("%w: too many requests", ErrRateLimited))
}
