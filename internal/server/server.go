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

// Package server assembles the keytool HTTP process from a configuration:
// logger, service, health checks, rate limiter, metrics and the REST server.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jeremyhahn/go-keytool/internal/config"
	"github.com/jeremyhahn/go-keytool/internal/rest"
	"github.com/jeremyhahn/go-keytool/pkg/health"
	"github.com/jeremyhahn/go-keytool/pkg/keytool"
	"github.com/jeremyhahn/go-keytool/pkg/logging"
	"github.com/jeremyhahn/go-keytool/pkg/metrics"
	"github.com/jeremyhahn/go-keytool/pkg/ratelimit"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// Server owns every long lived component of the HTTP process.
type Server struct {
	config *config.Config
	logger *logging.SlogAdapter

	service       *keytool.Service
	restServer    *rest.Server
	healthChecker *health.Checker
	rateLimiter   *ratelimit.Limiter

	metricsCollector *metrics.ResourceCollector

	mu       sync.Mutex
	listener net.Listener
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	errCh    chan error
}

// New builds the server described by cfg. Logs are written to out.
func New(cfg *config.Config, out io.Writer) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger, err := cfg.Logging.NewLogger(out)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	tlsConfig, err := cfg.TLS.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS configuration: %w", err)
	}

	service, err := keytool.New(&keytool.Config{
		Logger:           logger,
		TextEncoding:     types.TextEncoding(cfg.Defaults.TextEncoding),
		PBKDF2Iterations: cfg.Defaults.PBKDF2Iterations,
		ScryptN:          cfg.Defaults.ScryptN,
		ScryptR:          cfg.Defaults.ScryptR,
		ScryptP:          cfg.Defaults.ScryptP,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:        cfg,
		logger:        logger,
		service:       service,
		healthChecker: health.NewDefaultChecker(),
		ctx:           ctx,
		cancel:        cancel,
		errCh:         make(chan error, 1),
	}

	if cfg.RateLimit.Enabled {
		s.rateLimiter = ratelimit.New(&ratelimit.Config{
			Enabled:           true,
			RequestsPerMinute: cfg.RateLimit.RequestsPerMin,
			Burst:             cfg.RateLimit.Burst,
		})
	}

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metrics.Enable()
		metricsPath = cfg.Metrics.Path
	} else {
		metrics.Disable()
	}

	s.restServer, err = rest.NewServer(&rest.Config{
		Service:       service,
		Address:       cfg.Server.Address(),
		Version:       keytool.Version(),
		TLSConfig:     tlsConfig,
		Logger:        logger,
		HealthChecker: s.healthChecker,
		RateLimiter:   s.rateLimiter,
		MaxBodyBytes:  cfg.Server.MaxBodyBytes,
		MetricsPath:   metricsPath,
		ReadTimeout:   cfg.Server.ReadTimeout,
		WriteTimeout:  cfg.Server.WriteTimeout,
		IdleTimeout:   cfg.Server.IdleTimeout,
	})
	if err != nil {
		cancel()
		s.stopLimiter()
		return nil, fmt.Errorf("failed to create REST server: %w", err)
	}

	return s, nil
}

// Start binds the listen address and serves in the background. Serve
// failures are reported on Errors.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return fmt.Errorf("server already started")
	}

	ln, err := net.Listen("tcp", s.config.Server.Address())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Server.Address(), err)
	}
	s.listener = ln

	if s.config.Metrics.Enabled {
		s.metricsCollector = metrics.StartResourceCollector(s.ctx, 30*time.Second)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.restServer.Serve(ln); err != nil {
			s.errCh <- err
		}
	}()

	s.healthChecker.MarkStarted()
	s.logger.Info("Server started",
		logging.String("address", ln.Addr().String()),
		logging.String("version", keytool.Version()),
		logging.Bool("tls", s.config.TLS.Enabled))
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Errors delivers a serve failure, at most once.
func (s *Server) Errors() <-chan error {
	return s.errCh
}

// Shutdown stops accepting requests and waits for in-flight requests until
// ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	s.healthChecker.MarkNotStarted()

	if s.metricsCollector != nil {
		s.metricsCollector.Stop()
	}
	s.cancel()

	var err error
	if s.Addr() != nil {
		err = s.restServer.Stop(ctx)
	}
	s.stopLimiter()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Info("Server shutdown complete")
	case <-ctx.Done():
		s.logger.Warn("Shutdown timeout exceeded, forcing stop")
	}
	return err
}

// Run starts the server and blocks until ctx is cancelled or serving
// fails, then shuts down within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}

	var serveErr error
	select {
	case <-ctx.Done():
		s.logger.Info("Shutdown signal received")
	case serveErr = <-s.errCh:
		s.logger.Error("Server error", logging.Err(serveErr))
	}

	timeout := s.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return errors.Join(serveErr, s.Shutdown(shutdownCtx))
}

func (s *Server) stopLimiter() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

// SetupSignalHandler returns a child of parent cancelled on SIGINT or SIGTERM.
func SetupSignalHandler(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
