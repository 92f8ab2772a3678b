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

// Package ratelimit provides per-client token bucket rate limiting for the
// HTTP surface.
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter implements a token bucket rate limiter with per-client tracking.
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	rate     rate.Limit
	burst    int
	enabled  bool

	// Cleanup settings
	cleanupInterval time.Duration
	maxIdle         time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
}

// Config holds rate limiter configuration.
type Config struct {
	// Enabled controls whether rate limiting is active.
	Enabled bool

	// RequestsPerMinute sets the sustained rate limit.
	RequestsPerMinute int

	// Burst allows short bursts above the sustained rate.
	// If not set, defaults to RequestsPerMinute.
	Burst int

	// CleanupInterval controls how often to remove idle clients.
	// Defaults to 10 minutes.
	CleanupInterval time.Duration

	// MaxIdle is how long a client can be idle before cleanup.
	// Defaults to 30 minutes.
	MaxIdle time.Duration
}

// New creates a new rate limiter with the given configuration. A disabled
// limiter allows everything and starts no goroutine.
func New(config *Config) *Limiter {
	if config == nil {
		config = &Config{}
	}

	burst := config.Burst
	if burst == 0 {
		burst = config.RequestsPerMinute
	}

	cleanupInterval := config.CleanupInterval
	if cleanupInterval == 0 {
		cleanupInterval = 10 * time.Minute
	}

	maxIdle := config.MaxIdle
	if maxIdle == 0 {
		maxIdle = 30 * time.Minute
	}

	l := &Limiter{
		limiters:        make(map[string]*rate.Limiter),
		lastSeen:        make(map[string]time.Time),
		rate:            rate.Limit(float64(config.RequestsPerMinute) / 60.0),
		burst:           burst,
		enabled:         config.Enabled,
		cleanupInterval: cleanupInterval,
		maxIdle:         maxIdle,
		stopCleanup:     make(chan struct{}),
	}

	if l.enabled {
		go l.cleanupWorker()
	}
	return l
}

func (l *Limiter) getLimiter(clientID string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.limiters[clientID]
	if !exists {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters[clientID] = limiter
	}
	l.lastSeen[clientID] = time.Now()
	return limiter
}

// Allow reports whether a request from clientID is within its limit.
func (l *Limiter) Allow(clientID string) bool {
	if !l.enabled {
		return true
	}
	return l.getLimiter(clientID).Allow()
}

// Wait blocks until clientID may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context, clientID string) error {
	if !l.enabled {
		return nil
	}
	return l.getLimiter(clientID).Wait(ctx)
}

func (l *Limiter) cleanupWorker() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup(time.Now())
		case <-l.stopCleanup:
			return
		}
	}
}

// cleanup removes clients idle for longer than maxIdle at now.
func (l *Limiter) cleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for clientID, lastSeen := range l.lastSeen {
		if now.Sub(lastSeen) > l.maxIdle {
			delete(l.limiters, clientID)
			delete(l.lastSeen, clientID)
		}
	}
}

// Stop stops the cleanup worker. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCleanup) })
}

// ActiveClients returns the number of tracked clients.
func (l *Limiter) ActiveClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// IsEnabled returns whether rate limiting is enabled.
func (l *Limiter) IsEnabled() bool {
	return l.enabled
}

// Middleware returns an HTTP middleware that enforces rate limiting keyed
// by client IP. reject writes the response for limited requests; nil
// writes a plain 429.
func Middleware(limiter *Limiter, reject http.HandlerFunc) func(http.Handler) http.Handler {
	if reject == nil {
		reject = func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(ClientIP(r)) {
				reject(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP extracts the client IP from the request. X-Forwarded-For (first
// entry) and X-Real-IP take precedence for proxied requests.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
