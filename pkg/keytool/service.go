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

package keytool

import (
	"context"
	"fmt"
	"time"

	"github.com/jeremyhahn/go-keytool/pkg/adapters/kdf"
	"github.com/jeremyhahn/go-keytool/pkg/correlation"
	"github.com/jeremyhahn/go-keytool/pkg/logging"
	"github.com/jeremyhahn/go-keytool/pkg/metrics"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// Config configures a Service.
type Config struct {
	// Logger receives one line per operation. Nil discards.
	Logger logging.Logger

	// TextEncoding renders binary outputs when a request names none.
	// Empty means base64.
	TextEncoding types.TextEncoding

	// PBKDF2Iterations and the scrypt costs replace zero cost parameters in
	// ECIES and key protection requests. Zero keeps the library defaults.
	PBKDF2Iterations int
	ScryptN          int
	ScryptR          int
	ScryptP          int
}

// Service implements the keytool operations. It holds no mutable state and
// is safe for concurrent use.
type Service struct {
	logger   logging.Logger
	encoding types.TextEncoding
	costs    costs
}

type costs struct {
	iterations int
	scryptN    int
	scryptR    int
	scryptP    int
}

// New creates a Service from config. A nil config uses the defaults.
func New(config *Config) (*Service, error) {
	if config == nil {
		config = &Config{}
	}

	logger := config.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	enc := types.TextBase64
	if config.TextEncoding != "" {
		var err error
		if enc, err = types.ParseTextEncoding(string(config.TextEncoding)); err != nil {
			return nil, err
		}
	}

	for name, v := range map[string]int{
		"pbkdf2 iterations": config.PBKDF2Iterations,
		"scrypt N":          config.ScryptN,
		"scrypt r":          config.ScryptR,
		"scrypt p":          config.ScryptP,
	} {
		if v < 0 {
			return nil, fmt.Errorf("%w: %s must not be negative", types.ErrMalformedInput, name)
		}
	}

	c := costs{
		iterations: orDefault(config.PBKDF2Iterations, kdf.DefaultPBKDF2Iterations),
		scryptN:    orDefault(config.ScryptN, kdf.DefaultScryptN),
		scryptR:    orDefault(config.ScryptR, kdf.DefaultScryptR),
		scryptP:    orDefault(config.ScryptP, kdf.DefaultScryptP),
	}
	if err := kdf.CheckPBKDF2Iterations(c.iterations); err != nil {
		return nil, err
	}
	if err := kdf.CheckScryptCost(c.scryptN, c.scryptR, c.scryptP); err != nil {
		return nil, err
	}

	return &Service{logger: logger, encoding: enc, costs: c}, nil
}

// TextEncoding returns the default output encoding.
func (s *Service) TextEncoding() types.TextEncoding {
	return s.encoding
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// output picks the encoding for a binary result.
func (s *Service) output(requested types.TextEncoding) types.TextEncoding {
	if requested != "" {
		return requested
	}
	return s.encoding
}

// keyOutput picks the encoding for key bytes stored in d. PEM is text, so
// it defaults to UTF-8.
func (s *Service) keyOutput(d types.KeyContainerDescriptor, requested types.TextEncoding) types.TextEncoding {
	switch {
	case requested != "":
		return requested
	case d.Text != "":
		return d.Text
	case d.Encoding == types.PEM:
		return types.TextUTF8
	}
	return s.encoding
}

// finish records the outcome of an operation. Callers pass only parameters,
// never key material or data.
func (s *Service) finish(ctx context.Context, op string, start time.Time, err error, fields ...logging.Field) {
	metrics.Observe(op, start, err)

	fields = append(fields,
		logging.String("operation", op),
		logging.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	if id := correlation.GetCorrelationID(ctx); id != "" {
		fields = append(fields, logging.String("correlation_id", id))
	}

	if err != nil {
		fields = append(fields, logging.String("kind", types.ErrorKind(err)), logging.Err(err))
		s.logger.Warn("operation failed", fields...)
		return
	}
	s.logger.Info("operation completed", fields...)
}
