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
	"unicode/utf8"

	"github.com/jeremyhahn/go-keytool/pkg/crypto/aes"
	"github.com/jeremyhahn/go-keytool/pkg/logging"
	"github.com/jeremyhahn/go-keytool/pkg/metrics"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// SymmetricKeyRequest asks for a random AES key.
type SymmetricKeyRequest struct {
	KeySizeBits int                `json:"key_size_bits"`
	Output      types.TextEncoding `json:"output,omitempty"`
}

// IVRequest asks for a random IV or nonce sized for Mode.
type IVRequest struct {
	Mode   types.CipherMode   `json:"mode"`
	Output types.TextEncoding `json:"output,omitempty"`
}

// AESRequest is one AES encryption or decryption.
type AESRequest struct {
	Direction types.Direction    `json:"direction"`
	Spec      types.CipherSpec   `json:"spec"`
	Key       Value              `json:"key"`
	IV        Value              `json:"iv,omitempty"`
	AAD       Value              `json:"aad,omitempty"`
	Input     Value              `json:"input"`
	Output    types.TextEncoding `json:"output,omitempty"`
}

// GenerateSymmetricKey returns KeySizeBits of random key material.
func (s *Service) GenerateSymmetricKey(ctx context.Context, req SymmetricKeyRequest) (out Value, err error) {
	start := time.Now()
	defer func() {
		s.finish(ctx, metrics.OpSymmetricKey, start, err, logging.Int("key_size_bits", req.KeySizeBits))
	}()

	key, err := aes.GenerateKey(req.KeySizeBits)
	if err != nil {
		return Value{}, err
	}
	defer clear(key)
	return NewValue(s.output(req.Output), key)
}

// GenerateIV returns a random IV for CBC or a nonce for GCM.
func (s *Service) GenerateIV(ctx context.Context, req IVRequest) (out Value, err error) {
	start := time.Now()
	defer func() {
		s.finish(ctx, metrics.OpIV, start, err, logging.String("mode", string(req.Mode)))
	}()

	iv, err := aes.GenerateIV(req.Mode)
	if err != nil {
		return Value{}, err
	}
	return NewValue(s.output(req.Output), iv)
}

// AESCrypto encrypts or decrypts Input. Ciphertext defaults to the service
// encoding; plaintext defaults to UTF-8 when it is valid UTF-8.
func (s *Service) AESCrypto(ctx context.Context, req AESRequest) (out Value, err error) {
	start := time.Now()
	defer func() {
		s.finish(ctx, metrics.OpAESCrypto, start, err,
			logging.String("direction", string(req.Direction)),
			logging.Stringer("cipher", req.Spec),
			logging.Bool("aad", !req.AAD.IsZero()))
	}()

	key, err := req.Key.Bytes()
	if err != nil {
		return Value{}, fmt.Errorf("key: %w", err)
	}
	defer clear(key)
	iv, err := req.IV.optional()
	if err != nil {
		return Value{}, fmt.Errorf("iv: %w", err)
	}
	aad, err := req.AAD.optional()
	if err != nil {
		return Value{}, fmt.Errorf("aad: %w", err)
	}
	input, err := req.Input.Bytes()
	if err != nil {
		return Value{}, fmt.Errorf("input: %w", err)
	}

	switch req.Direction {
	case types.Encrypt:
		ct, err := aes.Encrypt(req.Spec, key, iv, aad, input)
		if err != nil {
			return Value{}, err
		}
		return NewValue(s.output(req.Output), ct)
	case types.Decrypt:
		pt, err := aes.Decrypt(req.Spec, key, iv, aad, input)
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

func (s *Service) plaintextOutput(requested types.TextEncoding, pt []byte) types.TextEncoding {
	if requested == "" && utf8.Valid(pt) {
		return types.TextUTF8
	}
	return s.output(requested)
}
