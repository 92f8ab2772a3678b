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

// Package logging is the structured logging interface used across the
// toolkit, with a log/slog backed implementation.
package logging

import (
	"fmt"
	"strings"

	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// Level represents the log level
type Level int

const (
	// LevelDebug is for detailed debugging information
	LevelDebug Level = iota
	// LevelInfo is for general informational messages
	LevelInfo
	// LevelWarn is for warning messages
	LevelWarn
	// LevelError is for error messages
	LevelError
)

// String returns the string representation of the log level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses "debug", "info", "warn" or "error". Empty means info.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("%w: log level %q", types.ErrMalformedInput, s)
}

// Logger is the interface for logging adapters
type Logger interface {
	// Debug logs a debug message with optional fields
	Debug(msg string, fields ...Field)

	// Info logs an informational message with optional fields
	Info(msg string, fields ...Field)

	// Warn logs a warning message with optional fields
	Warn(msg string, fields ...Field)

	// Error logs an error message with optional fields
	Error(msg string, fields ...Field)

	// With creates a child logger with the given fields
	With(fields ...Field) Logger

	// WithError creates a child logger with an error field
	WithError(err error) Logger
}

// Field represents a structured logging field
type Field struct {
	Key   string
	Value any
}

// String creates a string field
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Stringer creates a string field from a fmt.Stringer
func Stringer(key string, value fmt.Stringer) Field {
	return Field{Key: key, Value: value.String()}
}

// Int creates an int field
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates an int64 field
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Float64 creates a float64 field
func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a bool field
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

// Any creates a field with any value
func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Strings creates a string slice field
func Strings(key string, values []string) Field {
	return Field{Key: key, Value: values}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...Field) {}
func (nopLogger) Info(string, ...Field) {}
func (nopLogger) Warn(string, ...Field) {}
func (nopLogger) Error(string, ...Field) {}
func (n nopLogger) With(...Field) Logger { return n }
func (n nopLogger) WithError(error) Logger { return n }
