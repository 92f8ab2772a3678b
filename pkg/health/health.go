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

// Package health reports liveness, readiness and startup state. Readiness
// runs registered checks, including known-answer self tests of the random
// source and the symmetric cipher.
package health

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jeremyhahn/go-keytool/pkg/crypto/aes"
	"github.com/jeremyhahn/go-keytool/pkg/crypto/rand"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// Status represents the health status of a component.
type Status string

const (
	// StatusHealthy indicates the component is operating normally.
	StatusHealthy Status = "healthy"
	// StatusUnhealthy indicates the component is not functioning.
	StatusUnhealthy Status = "unhealthy"
	// StatusDegraded indicates the component is functioning but with reduced capacity.
	StatusDegraded Status = "degraded"
)

// CheckResult represents the result of a single health check.
type CheckResult struct {
	Name    string        `json:"name"`
	Status  Status        `json:"status"`
	Message string        `json:"message,omitempty"`
	Latency time.Duration `json:"latency"`
	Error   string        `json:"error,omitempty"`
}

// CheckFunc is a function that performs a health check.
// It should return quickly and indicate component health.
type CheckFunc func(ctx context.Context) CheckResult

// Checker manages health checks following Kubernetes probe semantics.
type Checker struct {
	mu        sync.RWMutex
	started   bool
	startTime time.Time
	checks    map[string]CheckFunc
}

// NewChecker creates a new health checker.
func NewChecker() *Checker {
	return &Checker{
		checks:    make(map[string]CheckFunc),
		startTime: time.Now(),
	}
}

// NewDefaultChecker returns a checker with the random source and cipher
// self tests registered.
func NewDefaultChecker() *Checker {
	c := NewChecker()
	c.RegisterCheck("random", RandomSourceCheck)
	c.RegisterCheck("cipher", CipherSelfTestCheck)
	return c
}

// RegisterCheck adds a health check with the given name.
// If a check with this name already exists, it will be replaced.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	if check == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// MarkStarted marks the service as fully started and ready.
func (c *Checker) MarkStarted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = true
}

// MarkNotStarted marks the service as not started, e.g. during shutdown.
func (c *Checker) MarkNotStarted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = false
}

// Live reports that the process is running.
func (c *Checker) Live(ctx context.Context) CheckResult {
	return CheckResult{Name: "liveness", Status: StatusHealthy, Message: "Service is alive"}
}

// Ready runs every registered check, sorted by name.
func (c *Checker) Ready(ctx context.Context) []CheckResult {
	c.mu.RLock()
	names := make([]string, 0, len(c.checks))
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		names = append(names, name)
		checks[name] = check
	}
	c.mu.RUnlock()
	sort.Strings(names)

	if len(names) == 0 {
		return []CheckResult{{Name: "default", Status: StatusHealthy, Message: "No readiness checks configured"}}
	}

	results := make([]CheckResult, 0, len(names))
	for _, name := range names {
		start := time.Now()
		result := checks[name](ctx)
		result.Latency = time.Since(start)
		if result.Name == "" {
			result.Name = name
		}
		results = append(results, result)
	}
	return results
}

// Startup fails until MarkStarted is called.
func (c *Checker) Startup(ctx context.Context) CheckResult {
	c.mu.RLock()
	started := c.started
	startTime := c.startTime
	c.mu.RUnlock()

	if !started {
		return CheckResult{Name: "startup", Status: StatusUnhealthy, Message: "Service initialization not complete"}
	}
	return CheckResult{
		Name:    "startup",
		Status:  StatusHealthy,
		Message: fmt.Sprintf("Service fully initialized (uptime: %s)", time.Since(startTime).Round(time.Second)),
	}
}

// IsStarted returns true if the service has been marked as started.
func (c *Checker) IsStarted() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.started
}

// Uptime returns how long the service has been running.
func (c *Checker) Uptime() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Since(c.startTime)
}

// AggregateStatus returns unhealthy if any result is unhealthy, degraded if
// any is degraded, and healthy otherwise.
func AggregateStatus(results []CheckResult) Status {
	status := StatusHealthy
	for _, result := range results {
		switch result.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}

// RandomSourceCheck draws from the process random source and fails on a
// read error or an all-zero block.
func RandomSourceCheck(ctx context.Context) CheckResult {
	b, err := rand.Bytes(32)
	if err != nil {
		return CheckResult{Name: "random", Status: StatusUnhealthy, Error: err.Error()}
	}
	if bytes.Equal(b, make([]byte, 32)) {
		return CheckResult{Name: "random", Status: StatusUnhealthy, Message: "random source returned zeros"}
	}
	return CheckResult{Name: "random", Status: StatusHealthy}
}

// NIST SP 800-38A F.1.5 ECB-AES256, first block.
var (
	kaKey, _        = hex.DecodeString("603deb1015ca71be2b73aef0857d77811f352c073b6108d72d9810a30914dff4")
	kaPlaintext, _  = hex.DecodeString("6bc1bee22e409f96e93d7e117393172a")
	kaCiphertext, _ = hex.DecodeString("f3eed1bdb5d2a03c064b5a7e3db181f8")
)

// CipherSelfTestCheck runs an AES-256 known answer test.
func CipherSelfTestCheck(ctx context.Context) CheckResult {
	spec := types.CipherSpec{KeySizeBits: 256, Mode: types.ModeECB, Padding: types.PaddingNone}
	out, err := aes.Encrypt(spec, kaKey, nil, nil, kaPlaintext)
	if err != nil {
		return CheckResult{Name: "cipher", Status: StatusUnhealthy, Error: err.Error()}
	}
	if !bytes.Equal(out, kaCiphertext) {
		return CheckResult{Name: "cipher", Status: StatusUnhealthy, Message: "AES known answer mismatch"}
	}
	return CheckResult{Name: "cipher", Status: StatusHealthy}
}
