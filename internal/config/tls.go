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

package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strings"
)

// TLSConfig controls TLS for the HTTP server
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`

	// CAFile verifies client certificates when ClientAuth asks for them.
	CAFile string `yaml:"ca_file"`

	// ClientAuth is none, request, require, verify or require_and_verify.
	ClientAuth string `yaml:"client_auth"`

	// MinVersion is TLS1.2 (default) or TLS1.3.
	MinVersion string `yaml:"min_version"`
}

// Load builds a tls.Config. It returns nil when TLS is disabled.
func (cfg *TLSConfig) Load() (*tls.Config, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load server certificate: %w", err)
	}

	minVersion, err := parseTLSVersion(cfg.MinVersion)
	if err != nil {
		return nil, err
	}

	// #nosec G402 - MinVersion defaults to TLS 1.2
	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   minVersion,
	}

	tlsConfig.ClientAuth, err = parseClientAuthType(cfg.ClientAuth)
	if err != nil {
		return nil, err
	}
	if cfg.CAFile != "" {
		// #nosec G304 - CA file path from trusted config
		pem, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file %s: %w", cfg.CAFile, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("failed to parse CA certificate from %s", cfg.CAFile)
		}
		tlsConfig.ClientCAs = pool
	}
	return tlsConfig, nil
}

func parseTLSVersion(version string) (uint16, error) {
	switch strings.ToUpper(strings.ReplaceAll(strings.ToLower(version), "v", "")) {
	case "", "TLS1.2":
		return tls.VersionTLS12, nil
	case "TLS1.3":
		return tls.VersionTLS13, nil
	}
	return 0, fmt.Errorf("unsupported TLS min_version %q (must be TLS1.2 or TLS1.3)", version)
}

func parseClientAuthType(authType string) (tls.ClientAuthType, error) {
	switch strings.ToLower(authType) {
	case "", "none":
		return tls.NoClientCert, nil
	case "request":
		return tls.RequestClientCert, nil
	case "require":
		return tls.RequireAnyClientCert, nil
	case "verify":
		return tls.VerifyClientCertIfGiven, nil
	case "require_and_verify":
		return tls.RequireAndVerifyClientCert, nil
	}
	return tls.NoClientCert, fmt.Errorf("invalid client_auth value %q", authType)
}
