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

	"github.com/jeremyhahn/go-keytool/pkg/crypto/ecies"
	"github.com/jeremyhahn/go-keytool/pkg/logging"
	"github.com/jeremyhahn/go-keytool/pkg/metrics"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// ECIESRequest is one ECIES encryption or decryption. Salt and Info are
// decoded per their own encodings.
type ECIESRequest struct {
	Direction     types.Direction      `json:"direction"`
	Key           Value                `json:"key"`
	Curve         types.EllipticCurve  `json:"curve,omitempty"`
	KDF           types.KDF            `json:"kdf"`
	Digest        types.Digest         `json:"digest,omitempty"`
	Salt          Value                `json:"salt,omitempty"`
	Info          Value                `json:"info,omitempty"`
	Iterations    int                  `json:"iterations,omitempty"`
	ScryptN       int                  `json:"scrypt_n,omitempty"`
	ScryptR       int                  `json:"scrypt_r,omitempty"`
	ScryptP       int                  `json:"scrypt_p,omitempty"`
	EncryptionAlg types.EciesAlgorithm `json:"encryption_alg"`
	Input         Value                `json:"input"`
	Output        types.TextEncoding   `json:"output,omitempty"`
}

// ECIES runs the hybrid encryption state machine. The returned State is the
// last state reached; on failure it is the state whose step failed.
func (s *Service) ECIES(ctx context.Context, req ECIESRequest) (out Value, state ecies.State, err error) {
	start := time.Now()
	defer func() {
		s.finish(ctx, metrics.OpECIES, start, err,
			logging.String("direction", string(req.Direction)),
			logging.String("curve", string(req.Curve)),
			logging.String("kdf", string(req.KDF)),
			logging.String("digest", string(req.Digest)),
			logging.String("encryption_alg", string(req.EncryptionAlg)),
			logging.Stringer("state", state))
	}()

	params, err := s.eciesParameters(req)
	if err != nil {
		return Value{}, ecies.StatePending, err
	}
	key, err := req.Key.keyBytes()
	if err != nil {
		return Value{}, ecies.StatePending, fmt.Errorf("key: %w", err)
	}
	defer clear(key)
	input, err := req.Input.Bytes()
	if err != nil {
		return Value{}, ecies.StatePending, fmt.Errorf("input: %w", err)
	}

	op := ecies.NewOperation(req.Direction, params)
	result, err := op.Run(key, input)
	if err != nil {
		return Value{}, op.FailedIn(), err
	}
	defer clear(result)

	enc := s.output(req.Output)
	if req.Direction == types.Decrypt {
		enc = s.plaintextOutput(req.Output, result)
	}
	out, err = NewValue(enc, result)
	return out, op.State(), err
}

func (s *Service) eciesParameters(req ECIESRequest) (types.EciesParameters, error) {
	salt, err := req.Salt.optional()
	if err != nil {
		return types.EciesParameters{}, fmt.Errorf("salt: %w", err)
	}
	info, err := req.Info.optional()
	if err != nil {
		return types.EciesParameters{}, fmt.Errorf("info: %w", err)
	}
	return types.EciesParameters{
		Curve:         req.Curve,
		KDF:           req.KDF,
		Digest:        req.Digest,
		Salt:          salt,
		Info:          info,
		Iterations:    orDefault(req.Iterations, s.costs.iterations),
		ScryptN:       orDefault(req.ScryptN, s.costs.scryptN),
		ScryptR:       orDefault(req.ScryptR, s.costs.scryptR),
		ScryptP:       orDefault(req.ScryptP, s.costs.scryptP),
		EncryptionAlg: req.EncryptionAlg,
	}, nil
}
