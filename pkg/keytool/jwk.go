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

	"github.com/jeremyhahn/go-keytool/pkg/encoding/jwk"
	"github.com/jeremyhahn/go-keytool/pkg/logging"
	"github.com/jeremyhahn/go-keytool/pkg/metrics"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// EmitJWKRequest renders an existing key as a JWK.
type EmitJWKRequest struct {
	Key       Value                 `json:"key"`
	Algorithm types.AlgorithmFamily `json:"algorithm"`
	Metadata  jwk.Metadata          `json:"metadata"`
}

// CreateJWKRequest asks for a fresh JWK for a JOSE algorithm.
type CreateJWKRequest struct {
	Algorithm string `json:"alg"`
	KeyID     string `json:"kid,omitempty"`
}

// ThumbprintRequest computes an RFC 7638 thumbprint of a JWK or key.
type ThumbprintRequest struct {
	Key    Value        `json:"key"`
	Digest types.Digest `json:"digest,omitempty"`
}

// GenerateJWK emits the key in req as JWK JSON.
func (s *Service) GenerateJWK(ctx context.Context, req EmitJWKRequest) (out string, err error) {
	start := time.Now()
	defer func() {
		s.finish(ctx, metrics.OpJWKEmit, start, err,
			logging.Stringer("algorithm", req.Algorithm),
			logging.String("alg", req.Metadata.Algorithm),
			logging.String("kid", req.Metadata.KeyID))
	}()

	key, err := req.Key.keyBytes()
	if err != nil {
		return "", fmt.Errorf("key: %w", err)
	}
	defer clear(key)
	return jwk.Emit(key, req.Algorithm, req.Metadata)
}

// CreateJWK generates a new private JWK for req.Algorithm.
func (s *Service) CreateJWK(ctx context.Context, req CreateJWKRequest) (out string, err error) {
	start := time.Now()
	kid := req.KeyID
	defer func() {
		s.finish(ctx, metrics.OpJWKGenerate, start, err,
			logging.String("alg", req.Algorithm),
			logging.String("kid", kid))
	}()

	key, err := jwk.Generate(req.Algorithm, req.KeyID)
	if err != nil {
		return "", err
	}
	kid = key.Kid
	data, err := key.Marshal()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Thumbprint returns the base64url thumbprint of a JWK or key. The digest
// defaults to SHA-256.
func (s *Service) Thumbprint(ctx context.Context, req ThumbprintRequest) (out string, err error) {
	start := time.Now()
	digest := req.Digest
	if digest == "" {
		digest = types.DigestSHA256
	}
	defer func() {
		s.finish(ctx, metrics.OpJWKThumbprint, start, err, logging.String("digest", string(digest)))
	}()

	data, err := req.Key.keyBytes()
	if err != nil {
		return "", fmt.Errorf("key: %w", err)
	}
	defer clear(data)
	return jwk.Thumbprint(data, digest)
}
