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
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jeremyhahn/go-keytool/pkg/keytool"
	"github.com/jeremyhahn/go-keytool/pkg/logging"
	"github.com/jeremyhahn/go-keytool/pkg/metrics"
	"github.com/jeremyhahn/go-keytool/pkg/ratelimit"
)

// Server represents the REST API server
type Server struct {
	server      *http.Server
	handlers    *HandlerContext
	tlsConfig   *tls.Config
	logger      logging.Logger
	rateLimiter *ratelimit.Limiter
	maxBody     int64
	metricsPath string
}

// Config contains REST server configuration
type Config struct {
	// Service performs the operations. Required.
	Service *keytool.Service

	// Address is the listen address, e.g. "127.0.0.1:8080".
	Address string

	// Version is reported by /health and /api/v1/version.
	Version string

	// TLSConfig enables HTTPS when set.
	TLSConfig *tls.Config

	// Logger for request logging. Defaults to a text logger on stderr.
	Logger logging.Logger

	// HealthChecker backs the /health endpoints. Nil reports healthy.
	HealthChecker HealthChecker

	// RateLimiter limits requests per client IP. Nil disables limiting.
	RateLimiter *ratelimit.Limiter

	// MaxBodyBytes caps request bodies. Zero disables the cap.
	MaxBodyBytes int64

	// MetricsPath serves the Prometheus scrape endpoint when non-empty.
	MetricsPath string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// NewServer creates a new REST API server
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Service == nil {
		return nil, fmt.Errorf("service is required")
	}

	if cfg.Address == "" {
		cfg.Address = "127.0.0.1:8080"
	}
	if cfg.Version == "" {
		cfg.Version = keytool.Version()
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 60 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 120 * time.Second
	}

	log := cfg.Logger
	if log == nil {
		adapter, err := logging.NewSlogAdapter(&logging.SlogConfig{Level: logging.LevelInfo})
		if err != nil {
			return nil, err
		}
		log = adapter
	}

	handlers := NewHandlerContext(cfg.Service, cfg.Version)
	handlers.SetHealthChecker(cfg.HealthChecker)

	server := &Server{
		handlers:    handlers,
		tlsConfig:   cfg.TLSConfig,
		logger:      log,
		rateLimiter: cfg.RateLimiter,
		maxBody:     cfg.MaxBodyBytes,
		metricsPath: cfg.MetricsPath,
	}

	server.server = &http.Server{
		Addr:              cfg.Address,
		Handler:           server.setupRouter(),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		TLSConfig:         cfg.TLSConfig,
	}

	return server, nil
}

// setupRouter configures the HTTP router with all endpoints
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(s.RecoveryMiddleware())
	r.Use(s.CorrelationMiddleware()) // Add correlation ID before logging
	r.Use(s.LoggingMiddleware())
	r.Use(metrics.HTTPMiddleware)
	r.Use(CORSMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handleError(w, r, fmt.Errorf("%w: %s %s", ErrNotFound, r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handleError(w, r, fmt.Errorf("%w: %s %s", ErrMethodNotAllowed, r.Method, r.URL.Path))
	})

	r.Get("/health", s.handlers.HealthHandler)
	r.Head("/health", s.handlers.HealthHandler)
	r.Get("/health/live", s.handlers.LivenessHandler)
	r.Get("/health/ready", s.handlers.ReadinessHandler)
	r.Get("/health/startup", s.handlers.StartupHandler)

	if s.metricsPath != "" {
		r.Method(http.MethodGet, s.metricsPath, metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		if s.rateLimiter != nil {
			r.Use(ratelimit.Middleware(s.rateLimiter, rateLimited))
		}

		r.Get("/enums", s.handlers.ListEnumsHandler)
		r.Get("/enums/{name}", s.handlers.GetEnumHandler)
		r.Get("/version", s.handlers.VersionHandler)

		r.Group(func(r chi.Router) {
			r.Use(BodyLimitMiddleware(s.maxBody))
			r.Use(JSONContentMiddleware)

			r.Post("/symmetric/key", s.handlers.SymmetricKeyHandler)
			r.Post("/symmetric/iv", s.handlers.IVHandler)
			r.Post("/symmetric/crypto", s.handlers.AESHandler)

			r.Post("/asymmetric/generate", s.handlers.GenerateKeyHandler)
			r.Post("/asymmetric/derive", s.handlers.DerivePublicKeyHandler)

			r.Post("/keys/convert", s.handlers.ConvertKeyHandler)
			r.Post("/keys/parse", s.handlers.ParseKeyHandler)
			r.Post("/keys/protect", s.handlers.ProtectKeyHandler)
			r.Post("/keys/unprotect", s.handlers.UnprotectKeyHandler)

			r.Post("/ecies", s.handlers.ECIESHandler)
			r.Post("/rsa/crypto", s.handlers.RSAHandler)

			r.Post("/jwk/emit", s.handlers.EmitJWKHandler)
			r.Post("/jwk/generate", s.handlers.GenerateJWKHandler)
			r.Post("/jwk/thumbprint", s.handlers.ThumbprintHandler)
		})
	})

	return r
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start listens on the configured address and serves until Stop is called.
// It blocks.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}
	return s.Serve(ln)
}

// Serve serves on ln, wrapping it in TLS when a TLS config is set.
func (s *Server) Serve(ln net.Listener) error {
	scheme := "HTTP"
	if s.tlsConfig != nil {
		scheme = "HTTPS"
		ln = tls.NewListener(ln, s.tlsConfig)
	}
	s.logger.Info("Starting "+scheme+" server",
		logging.String("address", ln.Addr().String()),
		logging.Bool("rate_limit", s.rateLimiter != nil),
		logging.Bool("metrics", s.metricsPath != ""))

	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start %s server: %w", scheme, err)
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server")

	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error("Failed to shutdown server", logging.Err(err))
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("Server stopped")
	return nil
}
