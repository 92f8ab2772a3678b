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

package x25519

import (
	"crypto/sha512"
	"crypto/subtle"
	"fmt"
	"io"

	"filippo.io/edwards25519"
	"github.com/cloudflare/circl/dh/x25519"

	"github.com/jeremyhahn/go-keytool/pkg/crypto/rand"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// KeySize is the length of X25519 scalars, public keys and shared secrets.
const KeySize = x25519.Size

// KeyPair represents an X25519 key pair.
type KeyPair struct {
	PrivateKey []byte
	PublicKey  []byte
}

// KeyAgreement provides X25519 Diffie-Hellman key agreement operations.
//
// X25519 is related to Ed25519 but serves a different purpose: Ed25519 keys
// sign, X25519 keys agree. Ed25519 keys are mapped to X25519 with
// FromEd25519PrivateKey and FromEd25519PublicKey before use here.
type KeyAgreement interface {
	// GenerateKey generates a new X25519 key pair.
	GenerateKey() (*KeyPair, error)

	// DeriveSharedSecret performs X25519 key agreement between a private key
	// and a peer's public key. The result must go through a KDF before use.
	DeriveSharedSecret(privateKey, peerPublicKey []byte) ([]byte, error)
}

type x25519KeyAgreement struct {
	random io.Reader
}

// New creates a new X25519 key agreement instance drawing randomness from the
// process-wide source.
func New() KeyAgreement {
	return &x25519KeyAgreement{random: rand.Reader}
}

// GenerateKey generates a new X25519 key pair.
func (ka *x25519KeyAgreement) GenerateKey() (*KeyPair, error) {
	var secret, public x25519.Key
	if _, err := io.ReadFull(ka.random, secret[:]); err != nil {
		return nil, fmt.Errorf("%w: X25519 scalar: %v", types.ErrGenerationFailed, err)
	}
	x25519.KeyGen(&public, &secret)

	return &KeyPair{
		PrivateKey: secret[:],
		PublicKey:  public[:],
	}, nil
}

// DeriveSharedSecret performs X25519 ECDH. Low-order peer points, which give
// an all-zero secret, are rejected.
func (ka *x25519KeyAgreement) DeriveSharedSecret(privateKey, peerPublicKey []byte) ([]byte, error) {
	if len(privateKey) != KeySize {
		return nil, fmt.Errorf("%w: X25519 private key must be %d bytes, got %d",
			types.ErrMalformedKey, KeySize, len(privateKey))
	}
	if len(peerPublicKey) != KeySize {
		return nil, fmt.Errorf("%w: X25519 public key must be %d bytes, got %d",
			types.ErrMalformedKey, KeySize, len(peerPublicKey))
	}

	var secret, public, shared x25519.Key
	copy(secret[:], privateKey)
	copy(public[:], peerPublicKey)
	defer clear(secret[:])

	if !x25519.Shared(&shared, &secret, &public) {
		return nil, fmt.Errorf("%w: X25519 peer key has low order", types.ErrMalformedKey)
	}
	return shared[:], nil
}

// PublicKey computes the X25519 public key for a 32-byte scalar.
func PublicKey(privateKey []byte) ([]byte, error) {
	if len(privateKey) != KeySize {
		return nil, fmt.Errorf("%w: X25519 private key must be %d bytes, got %d",
			types.ErrMalformedKey, KeySize, len(privateKey))
	}
	var secret, public x25519.Key
	copy(secret[:], privateKey)
	defer clear(secret[:])
	x25519.KeyGen(&public, &secret)
	return public[:], nil
}

// FromEd25519PrivateKey maps an Ed25519 seed to the X25519 scalar used by the
// same key (RFC 8032 section 5.1.5, first half of SHA-512 of the seed).
func FromEd25519PrivateKey(seed []byte) ([]byte, error) {
	if len(seed) != 32 {
		return nil, fmt.Errorf("%w: Ed25519 seed must be 32 bytes, got %d", types.ErrMalformedKey, len(seed))
	}
	digest := sha512.Sum512(seed)
	defer clear(digest[:])

	scalar := make([]byte, KeySize)
	copy(scalar, digest[:KeySize])
	scalar[0] &= 248
	scalar[31] &= 127
	scalar[31] |= 64
	return scalar, nil
}

// FromEd25519PublicKey maps an Ed25519 public key to its Montgomery u
// coordinate (RFC 7748 birational map).
func FromEd25519PublicKey(publicKey []byte) ([]byte, error) {
	p, err := new(edwards25519.Point).SetBytes(publicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: Ed25519 public key: %v", types.ErrMalformedKey, err)
	}
	if p.Equal(edwards25519.NewIdentityPoint()) == 1 {
		return nil, fmt.Errorf("%w: Ed25519 public key is the identity", types.ErrMalformedKey)
	}
	return p.BytesMontgomery(), nil
}

// Equal reports whether two keys are identical in constant time.
func Equal(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
