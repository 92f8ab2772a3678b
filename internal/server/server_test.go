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

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-keytool/internal/config"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Defaults.PBKDF2Iterations = 1000
	cfg.Defaults.ScryptN = 1024
	return cfg
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(nil, io.Discard)
	assert.Error(t, err)

	cfg := testConfig()
	cfg.Logging.Level = "chatty"
	_, err = New(cfg, io.Discard)
	assert.ErrorContains(t, err, "logger")

	cfg = testConfig()
	cfg.Defaults.TextEncoding = "base32"
	_, err = New(cfg, io.Discard)
	assert.ErrorContains(t, err, "service")

	cfg = testConfig()
	cfg.TLS = config.TLSConfig{Enabled: true, CertFile: "missing.pem", KeyFile: "missing.pem"}
	_, err = New(cfg, io.Discard)
	assert.ErrorContains(t, err, "TLS")
}

func TestRunServesUntilCancelled(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Enabled = true
	var logs bytes.Buffer
	srv, err := New(cfg, &logs)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	require.Eventually(t, func() bool { return srv.Addr() != nil }, 5*time.Second, 10*time.Millisecond)
	base := "http://" + srv.Addr().String()

	resp, err := http.Get(base + "/health/startup")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(base+"/api/v1/symmetric/key", "application/json", strings.NewReader(`{"key_size_bits":128}`))
	require.NoError(t, err)
	var body map[string]map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, "base64", body["result"]["encoding"])

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Contains(t, logs.String(), "Server shutdown complete")
	assert.NotContains(t, logs.String(), "key_size_bits\":128")
}

func TestStartTwice(t *testing.T) {
	srv, err := New(testConfig(), io.Discard)
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	assert.ErrorContains(t, srv.Start(), "already started")
}
