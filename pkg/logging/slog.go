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

package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jeremyhahn/go-keytool/pkg/correlation"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// SlogAdapter wraps a slog.Logger to implement the Logger interface
type SlogAdapter struct {
	logger *slog.Logger
	fields []Field
}

// SlogConfig configures the slog adapter
type SlogConfig struct {
	// Logger is the underlying slog logger
	// If nil, a new logger will be created
	Logger *slog.Logger

	// Level is the minimum log level to output
	Level Level

	// Format selects the handler when Logger and Handler are nil: "text"
	// (default) or "json".
	Format string

	// Output is where the handler writes. Defaults to os.Stderr.
	Output io.Writer

	// Handler is the slog handler to use
	Handler slog.Handler

	// AddSource adds source code position to log records
	AddSource bool
}

// NewSlogAdapter creates a new slog adapter
func NewSlogAdapter(config *SlogConfig) (*SlogAdapter, error) {
	if config == nil {
		config = &SlogConfig{}
	}

	logger := config.Logger
	if logger == nil {
		handler := config.Handler
		if handler == nil {
			out := config.Output
			if out == nil {
				out = os.Stderr
			}
			opts := &slog.HandlerOptions{
				Level:     levelToSlogLevel(config.Level),
				AddSource: config.AddSource,
			}
			switch strings.ToLower(config.Format) {
			case "", FormatText:
				handler = slog.NewTextHandler(out, opts)
			case FormatJSON:
				handler = slog.NewJSONHandler(out, opts)
			default:
				return nil, fmt.Errorf("%w: log format %q", types.ErrMalformedInput, config.Format)
			}
		}
		logger = slog.New(handler)
	}

	return &SlogAdapter{logger: logger}, nil
}

// Debug logs a debug message
func (l *SlogAdapter) Debug(msg string, fields ...Field) {
	l.log(context.Background(), slog.LevelDebug, msg, fields...)
}

// Info logs an informational message
func (l *SlogAdapter) Info(msg string, fields ...Field) {
	l.log(context.Background(), slog.LevelInfo, msg, fields...)
}

// Warn logs a warning message
func (l *SlogAdapter) Warn(msg string, fields ...Field) {
	l.log(context.Background(), slog.LevelWarn, msg, fields...)
}

// Error logs an error message
func (l *SlogAdapter) Error(msg string, fields ...Field) {
	l.log(context.Background(), slog.LevelError, msg, fields...)
}

// InfoContext logs an informational message with correlation ID from context
func (l *SlogAdapter) InfoContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelInfo, msg, addCorrelationID(ctx, fields)...)
}

// ErrorContext logs an error message with correlation ID from context
func (l *SlogAdapter) ErrorContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelError, msg, addCorrelationID(ctx, fields)...)
}

// addCorrelationID adds correlation ID from context to log fields if present
func addCorrelationID(ctx context.Context, fields []Field) []Field {
	if correlationID := correlation.GetCorrelationID(ctx); correlationID != "" {
		fields = append(fields, String("correlation_id", correlationID))
	}
	return fields
}

// With creates a child logger with the given fields
func (l *SlogAdapter) With(fields ...Field) Logger {
	attrs := make([]any, 0, len(fields))
	for _, f := range fields {
		attrs = append(attrs, fieldToAttr(f))
	}

	allFields := make([]Field, 0, len(l.fields)+len(fields))
	allFields = append(allFields, l.fields...)
	allFields = append(allFields, fields...)

	return &SlogAdapter{
		logger: l.logger.With(attrs...),
		fields: allFields,
	}
}

// WithError creates a child logger with an error field
func (l *SlogAdapter) WithError(err error) Logger {
	return l.With(Err(err))
}

// Fields returns the fields bound with With.
func (l *SlogAdapter) Fields() []Field {
	return append([]Field(nil), l.fields...)
}

func (l *SlogAdapter) log(ctx context.Context, level slog.Level, msg string, fields ...Field) {
	attrs := make([]slog.Attr, 0, len(fields))
	for _, f := range fields {
		attrs = append(attrs, fieldToAttr(f))
	}
	l.logger.LogAttrs(ctx, level, msg, attrs...)
}

// fieldToAttr converts a Field to slog.Attr
func fieldToAttr(field Field) slog.Attr {
	switch v := field.Value.(type) {
	case string:
		return slog.String(field.Key, v)
	case int:
		return slog.Int(field.Key, v)
	case int64:
		return slog.Int64(field.Key, v)
	case float64:
		return slog.Float64(field.Key, v)
	case bool:
		return slog.Bool(field.Key, v)
	case error:
		return slog.String(field.Key, v.Error())
	default:
		return slog.Any(field.Key, v)
	}
}

// levelToSlogLevel converts our Level to slog.Level
func levelToSlogLevel(level Level) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
