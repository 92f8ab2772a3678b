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

	"golang.org/x/crypto/scrypt"

	"github.com/jeremyhahn/go-keytool/pkg/types"
)

const (
	DefaultScryptN = 1 << 15
	DefaultScryptR = 8
	DefaultScryptP = 1

	// MaxScryptN is the largest accepted cost parameter.
	MaxScryptN = 1 << 20

	// MaxScryptP is the largest accepted parallelization parameter.
	MaxScryptP = 16

	// MaxScryptMemory caps the 128*N*r bytes one derivation allocates.
	MaxScryptMemory = 1 << 30
)

// ScryptAdapter implements the KDFAdapter interface using scrypt (RFC 7914).
// The digest parameter is ignored.
type ScryptAdapter struct{}

// NewScryptAdapter creates a new scrypt adapter
func NewScryptAdapter() *ScryptAdapter {
	return &ScryptAdapter{}
}

// DeriveKey derives a key using scrypt
func (s *ScryptAdapter) DeriveKey(ikm []byte, params *KDFParams) ([]byte, error) {
	if err := s.ValidateParams(params); err != nil {
		return nil, err
	}

	if len(ikm) == 0 {
		return nil, ErrInvalidIKM
	}

	key, err := scrypt.Key(ikm, params.Salt, params.N, params.R, params.P, params.KeyLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCost, err)
	}
	return key, nil
}

// Algorithm returns the KDF algorithm
func (s *ScryptAdapter) Algorithm() types.KDF {
	return types.KDFScrypt
}

// ValidateParams validates scrypt parameters
func (s *ScryptAdapter) ValidateParams(params *KDFParams) error {
	if err := validateCommon(params, types.KDFScrypt); err != nil {
		return err
	}

	return CheckScryptCost(params.N, params.R, params.P)
}

// CheckScryptCost reports whether N, r and p are valid scrypt parameters
// within MaxScryptN, MaxScryptP and MaxScryptMemory.
func CheckScryptCost(n, r, p int) error {
	if n <= 1 || n&(n-1) != 0 {
		return ErrInvalidCost
	}
	if r <= 0 || p <= 0 || uint64(r)*uint64(p) >= 1<<30 {
		return ErrInvalidCost
	}
	if n > MaxScryptN {
		return fmt.Errorf("%w: N=%d exceeds %d", ErrInvalidCost, n, MaxScryptN)
	}
	if p > MaxScryptP {
		return fmt.Errorf("%w: p=%d exceeds %d", ErrInvalidCost, p, MaxScryptP)
	}
	if mem := 128 * uint64(n) * uint64(r); mem > MaxScryptMemory {
		return fmt.Errorf("%w: N=%d r=%d needs %d bytes, limit %d", ErrInvalidCost, n, r, mem, MaxScryptMemory)
	}
	return nil
}
