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
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jeremyhahn/go-keytool/pkg/adapters/kdf"
	"github.com/jeremyhahn/go-keytool/pkg/logging"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "KEYTOOL_"

// Config represents the complete keytool configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	TLS       TLSConfig       `yaml:"tls"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Defaults  DefaultsConfig  `yaml:"defaults"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxBodyBytes bounds request bodies.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// Address returns host:port.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// NewLogger builds the slog adapter described by the logging section.
func (l LoggingConfig) NewLogger(out io.Writer) (*logging.SlogAdapter, error) {
	level, err := logging.ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewSlogAdapter(&logging.SlogConfig{
		Level:  level,
		Format: l.Format,
		Output: out,
	})
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// RateLimitConfig controls per-client rate limiting
type RateLimitConfig struct {
	Enabled        bool `yaml:"enabled"`
	RequestsPerMin int  `yaml:"requests_per_min"`
	Burst          int  `yaml:"burst"`
}

// DefaultsConfig holds operation defaults applied when a request leaves a
// value unset.
type DefaultsConfig struct {
	TextEncoding     string `yaml:"text_encoding"`
	PBKDF2Iterations int    `yaml:"pbkdf2_iterations"`
	ScryptN          int    `yaml:"scrypt_n"`
	ScryptR          int    `yaml:"scrypt_r"`
	ScryptP          int    `yaml:"scrypt_p"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: logging.FormatText,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		RateLimit: RateLimitConfig{
			RequestsPerMin: 600,
		},
		Defaults: DefaultsConfig{
			TextEncoding:     string(types.TextBase64),
			PBKDF2Iterations: 210000,
			ScryptN:          1 << 15,
			ScryptR:          8,
			ScryptP:          1,
		},
	}
}

// Load reads configuration from a YAML file over the defaults and applies
// environment variable overrides. An empty path loads only the defaults and
// the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		// #nosec G304 - Config file path is provided by admin/user
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies KEYTOOL_* environment variables to the configuration
func applyEnvOverrides(cfg *Config) {
	// Server settings
	if host := os.Getenv(EnvPrefix + "HOST"); host != "" {
		cfg.Server.Host = host
	}
	envInt(EnvPrefix+"PORT", &cfg.Server.Port)

	// Logging
	if level := os.Getenv(EnvPrefix + "LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv(EnvPrefix + "LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}

	// TLS
	envBool(EnvPrefix+"TLS_ENABLED", &cfg.TLS.Enabled)
	if certFile := os.Getenv(EnvPrefix + "TLS_CERT_FILE"); certFile != "" {
		cfg.TLS.CertFile = certFile
	}
	if keyFile := os.Getenv(EnvPrefix + "TLS_KEY_FILE"); keyFile != "" {
		cfg.TLS.KeyFile = keyFile
	}

	// Metrics and rate limiting
	envBool(EnvPrefix+"METRICS_ENABLED", &cfg.Metrics.Enabled)
	envBool(EnvPrefix+"RATELIMIT_ENABLED", &cfg.RateLimit.Enabled)
	envInt(EnvPrefix+"RATELIMIT_RPM", &cfg.RateLimit.RequestsPerMin)
	envInt(EnvPrefix+"RATELIMIT_BURST", &cfg.RateLimit.Burst)

	// Operation defaults
	if enc := os.Getenv(EnvPrefix + "TEXT_ENCODING"); enc != "" {
		cfg.Defaults.TextEncoding = enc
	}
	envInt(EnvPrefix+"PBKDF2_ITERATIONS", &cfg.Defaults.PBKDF2Iterations)
	envInt(EnvPrefix+"SCRYPT_N", &cfg.Defaults.ScryptN)
	envInt(EnvPrefix+"SCRYPT_R", &cfg.Defaults.ScryptR)
	envInt(EnvPrefix+"SCRYPT_P", &cfg.Defaults.ScryptP)
}

func envInt(name string, dst *int) {
	raw := os.Getenv(name)
	if raw == "" {
		return
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value %q, using %d: %v", name, raw, *dst, err)
		return
	}
	*dst = v
}

func envBool(name string, dst *bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value %q, using %t: %v", name, raw, *dst, err)
		return
	}
	*dst = v
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("max_body_bytes must not be negative")
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn or error)", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Logging.Format)
	}

	if c.TLS.Enabled {
		if c.TLS.CertFile == "" {
			return fmt.Errorf("TLS cert_file is required when TLS is enabled")
		}
		if c.TLS.KeyFile == "" {
			return fmt.Errorf("TLS key_file is required when TLS is enabled")
		}
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must start with '/': %q", c.Metrics.Path)
	}

	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMin < 1 {
		return fmt.Errorf("ratelimit requests_per_min must be positive when enabled")
	}
	if c.RateLimit.Burst < 0 {
		return fmt.Errorf("ratelimit burst must not be negative")
	}

	if _, err := types.ParseTextEncoding(c.Defaults.TextEncoding); err != nil {
		return fmt.Errorf("invalid default text encoding: %w", err)
	}
	if err := kdf.CheckPBKDF2Iterations(c.Defaults.PBKDF2Iterations); err != nil {
		return fmt.Errorf("invalid pbkdf2_iterations: %w", err)
	}
	d := c.Defaults
	if err := kdf.CheckScryptCost(d.ScryptN, d.ScryptR, d.ScryptP); err != nil {
		return fmt.Errorf("invalid scrypt_n/scrypt_r/scrypt_p (%d/%d/%d): %w", d.ScryptN, d.ScryptR, d.ScryptP, err)
	}
	return nil
}
