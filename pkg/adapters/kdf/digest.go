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
	"crypto"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"

	"golang.org/x/crypto/sha3"

	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// HashFunc returns the constructor for a digest.
func HashFunc(d types.Digest) (func() hash.Hash, error) {
	switch d {
	case types.DigestSHA1:
		return sha1.New, nil
	case types.DigestSHA256:
		return sha256.New, nil
	case types.DigestSHA384:
		return sha512.New384, nil
	case types.DigestSHA512:
		return sha512.New, nil
	case types.DigestSHA3_256:
		return sha3.New256, nil
	case types.DigestSHA3_384:
		return sha3.New384, nil
	case types.DigestSHA3_512:
		return sha3.New512, nil
	case "":
		return nil, ErrMissingHash
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidHash, d)
	}
}

// CryptoHash maps a digest to its crypto.Hash identifier.
func CryptoHash(d types.Digest) (crypto.Hash, error) {
	var h crypto.Hash
	switch d {
	case types.DigestSHA1:
		h = crypto.SHA1
	case types.DigestSHA256:
		h = crypto.SHA256
	case types.DigestSHA384:
		h = crypto.SHA384
	case types.DigestSHA512:
		h = crypto.SHA512
	case types.DigestSHA3_256:
		h = crypto.SHA3_256
	case types.DigestSHA3_384:
		h = crypto.SHA3_384
	case types.DigestSHA3_512:
		h = crypto.SHA3_512
	case "":
		return 0, ErrMissingHash
	default:
		return 0, fmt.Errorf("%w: %s", ErrInvalidHash, d)
	}
	if !h.Available() {
		return 0, fmt.Errorf("%w: %s is not linked", ErrInvalidHash, d)
	}
	return h, nil
}
