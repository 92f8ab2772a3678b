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
	"encoding/binary"
	"io"

	josecipher "github.com/go-jose/go-jose/v4/cipher"

	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// ConcatKDFAdapter implements the NIST SP 800-56A single-step KDF as used by
// JOSE ECDH-ES. Salt and Info become PartyUInfo and PartyVInfo, and the
// SuppPubInfo is the output length in bits.
type ConcatKDFAdapter struct{}

// NewConcatKDFAdapter creates a new ConcatKDF adapter
func NewConcatKDFAdapter() *ConcatKDFAdapter {
	return &ConcatKDFAdapter{}
}

// DeriveKey derives a key using ConcatKDF
func (c *ConcatKDFAdapter) DeriveKey(ikm []byte, params *KDFParams) ([]byte, error) {
	if err := c.ValidateParams(params); err != nil {
		return nil, err
	}

	if len(ikm) == 0 {
		return nil, ErrInvalidIKM
	}

	hash, _ := CryptoHash(params.Digest)
	supPubInfo := make([]byte, 4)
	binary.BigEndian.PutUint32(supPubInfo, uint32(params.KeyLength)*8)

	reader := josecipher.NewConcatKDF(hash, ikm, params.AlgorithmID, params.Salt, params.Info, supPubInfo, nil)
	key := make([]byte, params.KeyLength)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

// Algorithm returns the KDF algorithm
func (c *ConcatKDFAdapter) Algorithm() types.KDF {
	return types.KDFConcat
}

// ValidateParams validates ConcatKDF parameters
func (c *ConcatKDFAdapter) ValidateParams(params *KDFParams) error {
	if err := validateCommon(params, types.KDFConcat); err != nil {
		return err
	}
	if params.KeyLength > 1<<20 {
		return ErrInvalidKeyLength
	}
	_, err := CryptoHash(params.Digest)
	return err
}
