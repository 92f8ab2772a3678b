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
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// HKDFAdapter implements the KDFAdapter interface using HKDF (RFC 5869)
// HKDF is suitable for deriving keys from high-entropy sources like
// shared secrets from key exchange protocols (ECDH, etc.)
type HKDFAdapter struct{}

// NewHKDFAdapter creates a new HKDF adapter
func NewHKDFAdapter() *HKDFAdapter {
	return &HKDFAdapter{}
}

// DeriveKey derives a key using HKDF
func (h *HKDFAdapter) DeriveKey(ikm []byte, params *KDFParams) ([]byte, error) {
	if err := h.ValidateParams(params); err != nil {
		return nil, err
	}

	if len(ikm) == 0 {
		return nil, ErrInvalidIKM
	}

	hash, _ := HashFunc(params.Digest)
	kdf := hkdf.New(hash, ikm, params.Salt, params.Info)

	key := make([]byte, params.KeyLength)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, err
	}

	return key, nil
}

// Algorithm returns the KDF algorithm
func (h *HKDFAdapter) Algorithm() types.KDF {
	return types.KDFHKDF
}

// ValidateParams validates HKDF parameters
func (h *HKDFAdapter) ValidateParams(params *KDFParams) error {
	if err := validateCommon(params, types.KDFHKDF); err != nil {
		return err
	}

	hash, err := HashFunc(params.Digest)
	if err != nil {
		return err
	}

	// HKDF output is limited to 255 blocks of the hash
	if params.KeyLength > 255*hash().Size() {
		return ErrInvalidKeyLength
	}

	return nil
}
