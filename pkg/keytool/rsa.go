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

	"github.com/jeremyhahn/go-keytool/pkg/asymmetric"
	"github.com/jeremyhahn/go-keytool/pkg/logging"
	"github.com/jeremyhahn/go-keytool/pkg/metrics"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// RSARequest is one RSA encryption or decryption. Digest is required for
// OAEP and ignored for PKCS#1 v1.5.
type RSARequest struct {
	Direction types.Direction    `json:"direction"`
	Key       Value              `json:"key"`
	Padding   types.RSAPadding   `json:"padding"`
	Digest    types.Digest       `json:"digest,omitempty"`
	Input     Value              `json:"input"`
	Output    types.TextEncoding `json:"output,omitempty"`
}

// RSACrypto encrypts to a public key or decrypts with a private key.
func (s *Service) RSACrypto(ctx context.Context, req RSARequest) (out Value, err error) {
	start := time.Now()
	defer func() {
		s.finish(ctx, metrics.OpRSACrypto, start, err,
			logging.String("direction", string(req.Direction)),
			logging.String("padding", string(req.Padding)),
			logging.String("digest", string(req.Digest)))
	}()

	key, err := req.Key.keyBytes()
	if err != nil {
		return Value{}, fmt.Errorf("key: %w", err)
	}
	defer clear(key)
	input, err := req.Input.Bytes()
	if err != nil {
		return Value{}, fmt.Errorf("input: %w", err)
	}

	switch req.Direction {
	case types.Encrypt:
		ct, err := asymmetric.RSAEncrypt(key, req.Padding, req.Digest, input)
		if err != nil {
			return Value{}, err
		}
		return NewValue(s.output(req.Output), ct)
	case types.Decrypt:
		pt, err := asymmetric.RSADecrypt(key, req.Padding, req.Digest, input)
		if err != nil {
			return Value{}, err
		}
		defer clear(pt)
		return NewValue(s.plaintextOutput(req.Output, pt), pt)
	case "":
		return Value{}, fmt.Errorf("%w: direction is required", types.ErrMalformedInput)
	default:
		return Value{}, fmt.Errorf("%w: direction %q", types.ErrMalformedInput, req.Direction)
	}
}
