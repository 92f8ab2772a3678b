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
	"github.com/jeremyhahn/go-keytool/pkg/convert"
	"github.com/jeremyhahn/go-keytool/pkg/encoding"
	"github.com/jeremyhahn/go-keytool/pkg/logging"
	"github.com/jeremyhahn/go-keytool/pkg/metrics"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// GenerateKeyRequest asks for a new key pair.
type GenerateKeyRequest struct {
	Algorithm types.AlgorithmFamily        `json:"algorithm"`
	Container types.KeyContainerDescriptor `json:"container"`
	Output    types.TextEncoding           `json:"output,omitempty"`
}

// KeyPairResult carries both halves of a generated key.
type KeyPairResult struct {
	PrivateKey Value                        `json:"private_key"`
	PublicKey  Value                        `json:"public_key"`
	Container  types.KeyContainerDescriptor `json:"container"`
	Algorithm  types.AlgorithmFamily        `json:"algorithm"`
}

// DerivePublicKeyRequest asks for the public half of PrivateKey.
type DerivePublicKeyRequest struct {
	PrivateKey Value                        `json:"private_key"`
	Algorithm  types.AlgorithmFamily        `json:"algorithm"`
	Container  types.KeyContainerDescriptor `json:"container"`
	Output     types.TextEncoding           `json:"output,omitempty"`
}

// TransferKeyRequest re-encodes Key from one container to another.
type TransferKeyRequest struct {
	Key       Value                        `json:"key"`
	Algorithm types.AlgorithmFamily        `json:"algorithm"`
	From      types.KeyContainerDescriptor `json:"from"`
	To        types.KeyContainerDescriptor `json:"to"`
	IsPublic  bool                         `json:"is_public"`
	Output    types.TextEncoding           `json:"output,omitempty"`
}

// ProtectKeyRequest wraps a private key in a password protected PKCS#8
// container. Zero cost parameters use the service defaults.
type ProtectKeyRequest struct {
	Key         Value              `json:"key"`
	Password    string             `json:"password"`
	KDF         types.KDF          `json:"kdf,omitempty"`
	Iterations  int                `json:"iterations,omitempty"`
	ScryptN     int                `json:"scrypt_n,omitempty"`
	ScryptR     int                `json:"scrypt_r,omitempty"`
	ScryptP     int                `json:"scrypt_p,omitempty"`
	KeySizeBits int                `json:"key_size_bits,omitempty"`
	Encoding    types.KeyEncoding  `json:"encoding"`
	Output      types.TextEncoding `json:"output,omitempty"`
}

// UnprotectKeyRequest decrypts a password protected PKCS#8 key into To.
type UnprotectKeyRequest struct {
	Key      Value                        `json:"key"`
	Password string                       `json:"password"`
	To       types.KeyContainerDescriptor `json:"to"`
	Output   types.TextEncoding           `json:"output,omitempty"`
}

// GenerateAsymmetricKey creates a key pair. The private key is stored in
// Container; the public key uses the matching public container.
func (s *Service) GenerateAsymmetricKey(ctx context.Context, req GenerateKeyRequest) (out *KeyPairResult, err error) {
	start := time.Now()
	defer func() {
		s.finish(ctx, metrics.OpGenerateKey, start, err,
			logging.Stringer("algorithm", req.Algorithm),
			logging.Stringer("container", req.Container))
	}()

	pair, err := asymmetric.Generate(req.Algorithm, req.Container)
	if err != nil {
		return nil, err
	}
	defer clear(pair.PrivateKey)

	priv, err := NewValue(s.keyOutput(req.Container, req.Output), pair.PrivateKey)
	if err != nil {
		return nil, err
	}
	pub, err := NewValue(s.keyOutput(asymmetric.PublicContainer(req.Container), req.Output), pair.PublicKey)
	if err != nil {
		return nil, err
	}
	return &KeyPairResult{
		PrivateKey: priv,
		PublicKey:  pub,
		Container:  pair.Container,
		Algorithm:  pair.Algorithm,
	}, nil
}

// DerivePublicKey returns the public key of a private key.
func (s *Service) DerivePublicKey(ctx context.Context, req DerivePublicKeyRequest) (out Value, err error) {
	start := time.Now()
	defer func() {
		s.finish(ctx, metrics.OpDerivePublic, start, err,
			logging.Stringer("algorithm", req.Algorithm),
			logging.Stringer("container", req.Container))
	}()

	key, err := req.PrivateKey.keyBytes()
	if err != nil {
		return Value{}, fmt.Errorf("private key: %w", err)
	}
	defer clear(key)

	pub, err := asymmetric.DerivePublicKey(key, req.Algorithm, req.Container)
	if err != nil {
		return Value{}, err
	}
	return NewValue(s.keyOutput(asymmetric.PublicContainer(req.Container), req.Output), pub)
}

// TransferKeyFormat converts a key between containers.
func (s *Service) TransferKeyFormat(ctx context.Context, req TransferKeyRequest) (out Value, err error) {
	start := time.Now()
	defer func() {
		s.finish(ctx, metrics.OpConvert, start, err,
			logging.Stringer("algorithm", req.Algorithm),
			logging.Stringer("from", req.From),
			logging.Stringer("to", req.To),
			logging.Bool("public", req.IsPublic))
	}()

	key, err := req.Key.keyBytes()
	if err != nil {
		return Value{}, fmt.Errorf("key: %w", err)
	}
	defer clear(key)

	converted, err := convert.Convert(key, req.Algorithm, req.From, req.To, req.IsPublic)
	if err != nil {
		return Value{}, err
	}
	return NewValue(s.keyOutput(req.To, req.Output), converted)
}

// ParseKey identifies the algorithm and container of a key.
func (s *Service) ParseKey(ctx context.Context, key Value) (out *types.ParsedKey, err error) {
	start := time.Now()
	defer func() {
		fields := []logging.Field{}
		if out != nil {
			fields = append(fields,
				logging.Stringer("algorithm", out.Algorithm),
				logging.Stringer("container", out.Container),
				logging.Bool("private", out.IsPrivate))
		}
		s.finish(ctx, metrics.OpParse, start, err, fields...)
	}()

	data, err := key.keyBytes()
	if err != nil {
		return nil, fmt.Errorf("key: %w", err)
	}
	defer clear(data)

	parsed, err := asymmetric.Parse(data)
	if err != nil {
		return nil, err
	}
	if key.Encoding != "" {
		parsed.Container.Text = key.Encoding
	}
	return parsed, nil
}

// ProtectKey encrypts a private key under a password.
func (s *Service) ProtectKey(ctx context.Context, req ProtectKeyRequest) (out Value, err error) {
	start := time.Now()
	defer func() {
		s.finish(ctx, metrics.OpProtect, start, err,
			logging.String("kdf", string(req.KDF)),
			logging.String("encoding", string(req.Encoding)))
	}()

	key, err := req.Key.keyBytes()
	if err != nil {
		return Value{}, fmt.Errorf("key: %w", err)
	}
	defer clear(key)

	opts := encoding.ProtectOptions{
		KDF:         req.KDF,
		Iterations:  orDefault(req.Iterations, s.costs.iterations),
		ScryptN:     orDefault(req.ScryptN, s.costs.scryptN),
		ScryptR:     orDefault(req.ScryptR, s.costs.scryptR),
		ScryptP:     orDefault(req.ScryptP, s.costs.scryptP),
		KeySizeBits: req.KeySizeBits,
	}
	protected, err := convert.Protect(key, []byte(req.Password), opts, req.Encoding)
	if err != nil {
		return Value{}, err
	}
	return NewValue(s.keyOutput(types.Container(types.PKCS8, req.Encoding), req.Output), protected)
}

// UnprotectKey decrypts a password protected key.
func (s *Service) UnprotectKey(ctx context.Context, req UnprotectKeyRequest) (out Value, err error) {
	start := time.Now()
	defer func() {
		s.finish(ctx, metrics.OpUnprotect, start, err, logging.Stringer("to", req.To))
	}()

	data, err := req.Key.keyBytes()
	if err != nil {
		return Value{}, fmt.Errorf("key: %w", err)
	}

	plain, err := convert.Unprotect(data, []byte(req.Password), req.To)
	if err != nil {
		return Value{}, err
	}
	defer clear(plain)
	return NewValue(s.keyOutput(req.To, req.Output), plain)
}
