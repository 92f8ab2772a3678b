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

	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// KDFParams contains parameters for key derivation
type KDFParams struct {
	// Algorithm specifies which KDF algorithm to use
	Algorithm types.KDF

	// Salt is the optional salt. ConcatKDF uses it as PartyUInfo.
	Salt []byte

	// Info is optional context information. ConcatKDF uses it as PartyVInfo.
	Info []byte

	// Iterations specifies the number of iterations (PBKDF2 only)
	Iterations int

	// N, R and P are the scrypt cost, block size and parallelization parameters
	N int
	R int
	P int

	// AlgorithmID is the ConcatKDF AlgorithmID field
	AlgorithmID []byte

	// KeyLength is the desired output key length in bytes
	KeyLength int

	// Digest is the hash function (PBKDF2, HKDF and ConcatKDF)
	Digest types.Digest
}

// KDFAdapter is the interface for key derivation function adapters
type KDFAdapter interface {
	// DeriveKey derives a key from the input key material using the specified parameters
	DeriveKey(ikm []byte, params *KDFParams) ([]byte, error)

	// Algorithm returns the KDF algorithm this adapter implements
	Algorithm() types.KDF

	// ValidateParams validates the KDF parameters for this algorithm
	ValidateParams(params *KDFParams) error
}

// Common errors
var (
	// ErrInvalidKeyLength indicates the requested key length is invalid
	ErrInvalidKeyLength = fmt.Errorf("kdf: invalid key length: %w", types.ErrInvalidInputLength)

	// ErrInvalidIterations indicates the iteration count is invalid
	ErrInvalidIterations = fmt.Errorf("kdf: invalid iterations: %w", types.ErrMalformedInput)

	// ErrInvalidCost indicates the scrypt cost parameters are invalid
	ErrInvalidCost = fmt.Errorf("kdf: invalid scrypt cost: %w", types.ErrMalformedInput)

	// ErrInvalidHash indicates the hash function is invalid or not supported
	ErrInvalidHash = fmt.Errorf("kdf: invalid or unsupported hash function: %w", types.ErrUnsupportedAlgorithm)

	// ErrMissingHash indicates a digest was required but not given
	ErrMissingHash = fmt.Errorf("kdf: digest is required: %w", types.ErrMalformedInput)

	// ErrInvalidIKM indicates the input key material is invalid
	ErrInvalidIKM = fmt.Errorf("kdf: invalid input key material: %w", types.ErrMalformedInput)

	// ErrUnsupportedAlgorithm indicates the algorithm is not supported by this adapter
	ErrUnsupportedAlgorithm = fmt.Errorf("kdf: unsupported algorithm: %w", types.ErrUnsupportedAlgorithm)
)

// DefaultParams returns recommended default parameters for each KDF algorithm
func DefaultParams(algorithm types.KDF) *KDFParams {
	switch algorithm {
	case types.KDFHKDF:
		return &KDFParams{
			Algorithm: types.KDFHKDF,
			KeyLength: 32,
			Digest:    types.DigestSHA256,
		}
	case types.KDFPBKDF2:
		return &KDFParams{
			Algorithm:  types.KDFPBKDF2,
			Iterations: DefaultPBKDF2Iterations,
			KeyLength:  32,
			Digest:     types.DigestSHA256,
		}
	case types.KDFScrypt:
		return &KDFParams{
			Algorithm: types.KDFScrypt,
			N:         DefaultScryptN,
			R:         DefaultScryptR,
			P:         DefaultScryptP,
			KeyLength: 32,
		}
	case types.KDFConcat:
		return &KDFParams{
			Algorithm: types.KDFConcat,
			KeyLength: 32,
			Digest:    types.DigestSHA256,
		}
	default:
		return nil
	}
}

// New returns the adapter for algorithm.
func New(algorithm types.KDF) (KDFAdapter, error) {
	switch algorithm {
	case types.KDFPBKDF2:
		return NewPBKDF2Adapter(), nil
	case types.KDFScrypt:
		return NewScryptAdapter(), nil
	case types.KDFHKDF:
		return NewHKDFAdapter(), nil
	case types.KDFConcat:
		return NewConcatKDFAdapter(), nil
	case "":
		return nil, fmt.Errorf("%w: kdf is required", types.ErrMalformedInput)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, algorithm)
	}
}

// Derive runs the adapter named by params.Algorithm.
func Derive(ikm []byte, params *KDFParams) ([]byte, error) {
	if params == nil {
		return nil, fmt.Errorf("%w: kdf parameters are required", types.ErrMalformedInput)
	}
	adapter, err := New(params.Algorithm)
	if err != nil {
		return nil, err
	}
	return adapter.DeriveKey(ikm, params)
}

func validateCommon(params *KDFParams, algorithm types.KDF) error {
	if params == nil {
		return ErrInvalidKeyLength
	}
	if params.Algorithm != algorithm {
		return ErrUnsupportedAlgorithm
	}
	if params.KeyLength <= 0 {
		return ErrInvalidKeyLength
	}
	return nil
}
