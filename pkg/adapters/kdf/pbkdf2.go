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

package kdf

import (
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/jeremyhahn/go-keytool/pkg/types"
)

const (
	// MinPBKDF2Iterations is the lowest iteration count accepted
	MinPBKDF2Iterations = 1000

	// MaxPBKDF2Iterations is the highest iteration count accepted
	MaxPBKDF2Iterations = 10_000_000

	// DefaultPBKDF2Iterations is used when no iteration count is configured
	DefaultPBKDF2Iterations = 210000
)

// PBKDF2Adapter implements the KDFAdapter interface using PBKDF2 (RFC 8018)
type PBKDF2Adapter struct{}

// NewPBKDF2Adapter creates a new PBKDF2 adapter
func NewPBKDF2Adapter() *PBKDF2Adapter {
	return &PBKDF2Adapter{}
}

// DeriveKey derives a key using PBKDF2
func (p *PBKDF2Adapter) DeriveKey(ikm []byte, params *KDFParams) ([]byte, error) {
	if err := p.ValidateParams(params); err != nil {
		return nil, err
	}

	if len(ikm) == 0 {
		return nil, ErrInvalidIKM
	}

	h, _ := HashFunc(params.Digest)
	return pbkdf2.Key(ikm, params.Salt, params.Iterations, params.KeyLength, h), nil
}

// Algorithm returns the KDF algorithm
func (p *PBKDF2Adapter) Algorithm() types.KDF {
	return types.KDFPBKDF2
}

// ValidateParams validates PBKDF2 parameters. The salt is optional.
func (p *PBKDF2Adapter) ValidateParams(params *KDFParams) error {
	if err := validateCommon(params, types.KDFPBKDF2); err != nil {
		return err
	}

	if err := CheckPBKDF2Iterations(params.Iterations); err != nil {
		return err
	}

	_, err := HashFunc(params.Digest)
	return err
}

// CheckPBKDF2Iterations reports whether iterations lies within
// [MinPBKDF2Iterations, MaxPBKDF2Iterations].
func CheckPBKDF2Iterations(iterations int) error {
	if iterations < MinPBKDF2Iterations {
		return ErrInvalidIterations
	}
	if iterations > MaxPBKDF2Iterations {
		return fmt.Errorf("%w: %d exceeds %d", ErrInvalidIterations, iterations, MaxPBKDF2Iterations)
	}
	return nil
}
