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

// Package ecdh provides Elliptic Curve Diffie-Hellman (ECDH) key agreement
// across every supported curve family.
//
// Short Weierstrass curves (P-256, P-384, P-521, secp256k1, SM2) agree on
// big-endian scalars and SEC1 points. Edwards keys agree over X25519: callers
// map Ed25519 keys with the x25519 package first, and the ephemeral keys
// generated here for the Edwards family are X25519 keys.
//
// Example usage:
//
//	family := types.EC(types.CurveP256)
//	alicePriv, alicePub, _ := ecdh.GenerateEphemeral(family)
//	bobPriv, bobPub, _ := ecdh.GenerateEphemeral(family)
//
//	aliceSecret, _ := ecdh.DeriveSharedSecret(family, alicePriv, bobPub)
//	bobSecret, _ := ecdh.DeriveSharedSecret(family, bobPriv, alicePub)
//
//	// aliceSecret == bobSecret; run it through a kdf adapter before use
package ecdh

import (
	"fmt"

	"github.com/jeremyhahn/go-keytool/pkg/crypto/curves"
	"github.com/jeremyhahn/go-keytool/pkg/crypto/rand"
	"github.com/jeremyhahn/go-keytool/pkg/crypto/x25519"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// GenerateEphemeral generates a fresh key pair on the agreement curve for
// family. The public key is a SEC1 uncompressed point, or a 32-byte X25519
// u-coordinate for the Edwards family.
func GenerateEphemeral(family types.AlgorithmFamily) (privateKey, publicKey []byte, err error) {
	switch {
	case family.IsEC():
		c, err := curves.Lookup(family.Curve)
		if err != nil {
			return nil, nil, err
		}
		scalar, err := c.GenerateScalar(rand.Reader)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s ephemeral key: %v", types.ErrGenerationFailed, c.Name(), err)
		}
		point, err := c.PublicPoint(scalar)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s ephemeral key: %v", types.ErrGenerationFailed, c.Name(), err)
		}
		return scalar, point, nil

	case family.IsEdwards():
		if family.Curve != types.CurveCurve25519 {
			return nil, nil, fmt.Errorf("%w: edwards curve %q", types.ErrUnsupportedAlgorithm, family.Curve)
		}
		kp, err := x25519.New().GenerateKey()
		if err != nil {
			return nil, nil, err
		}
		return kp.PrivateKey, kp.PublicKey, nil
	}
	return nil, nil, fmt.Errorf("%w: %s has no key agreement", types.ErrUnsupportedAlgorithm, family)
}

// ParsePublicKey validates a peer public key for family and returns its
// canonical form (uncompressed point, or the X25519 key unchanged).
func ParsePublicKey(family types.AlgorithmFamily, publicKey []byte) ([]byte, error) {
	switch {
	case family.IsEC():
		c, err := curves.Lookup(family.Curve)
		if err != nil {
			return nil, err
		}
		return c.ParsePoint(publicKey)
	case family.IsEdwards():
		if len(publicKey) != x25519.KeySize {
			return nil, fmt.Errorf("%w: X25519 public key must be %d bytes, got %d",
				types.ErrMalformedKey, x25519.KeySize, len(publicKey))
		}
		return publicKey, nil
	}
	return nil, fmt.Errorf("%w: %s has no key agreement", types.ErrUnsupportedAlgorithm, family)
}

// DeriveSharedSecret performs ECDH key agreement between a private key and
// a peer public key, both on the agreement curve for family.
//
// The shared secret is the raw x-coordinate (or X25519 output). For actual
// encryption keys, pass it through a KDF.
func DeriveSharedSecret(family types.AlgorithmFamily, privateKey, peerPublicKey []byte) ([]byte, error) {
	if len(privateKey) == 0 {
		return nil, fmt.Errorf("%w: private key cannot be empty", types.ErrMalformedKey)
	}
	if len(peerPublicKey) == 0 {
		return nil, fmt.Errorf("%w: peer public key cannot be empty", types.ErrMalformedKey)
	}

	switch {
	case family.IsEC():
		c, err := curves.Lookup(family.Curve)
		if err != nil {
			return nil, err
		}
		return c.ECDH(privateKey, peerPublicKey)
	case family.IsEdwards():
		if family.Curve != types.CurveCurve25519 {
			return nil, fmt.Errorf("%w: edwards curve %q", types.ErrUnsupportedAlgorithm, family.Curve)
		}
		return x25519.New().DeriveSharedSecret(privateKey, peerPublicKey)
	}
	return nil, fmt.Errorf("%w: %s has no key agreement", types.ErrUnsupportedAlgorithm, family)
}
