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
	"crypto/ecdh"
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-keytool/pkg/types"
)

func TestGenerateKey(t *testing.T) {
	ka := New()

	t.Run("successful generation", func(t *testing.T) {
		keyPair, err := ka.GenerateKey()
		require.NoError(t, err)
		assert.Len(t, keyPair.PrivateKey, KeySize)
		assert.Len(t, keyPair.PublicKey, KeySize)

		pub, err := PublicKey(keyPair.PrivateKey)
		require.NoError(t, err)
		assert.Equal(t, keyPair.PublicKey, pub)
	})

	t.Run("generates unique keys", func(t *testing.T) {
		kp1, err := ka.GenerateKey()
		require.NoError(t, err)
		kp2, err := ka.GenerateKey()
		require.NoError(t, err)
		assert.NotEqual(t, kp1.PrivateKey, kp2.PrivateKey)
	})
}

func TestDeriveSharedSecret(t *testing.T) {
	ka := New()
	alice, err := ka.GenerateKey()
	require.NoError(t, err)
	bob, err := ka.GenerateKey()
	require.NoError(t, err)

	s1, err := ka.DeriveSharedSecret(alice.PrivateKey, bob.PublicKey)
	require.NoError(t, err)
	s2, err := ka.DeriveSharedSecret(bob.PrivateKey, alice.PublicKey)
	require.NoError(t, err)
	assert.True(t, Equal(s1, s2))
	assert.Len(t, s1, KeySize)
}

func TestRFC7748Vector(t *testing.T) {
	// RFC 7748 section 6.1
	alicePriv, _ := hex.DecodeString("77076d0a7318a57d3c16c17251b26645df4c2f87ebc0992ab177fba51db92c2a")
	bobPub, _ := hex.DecodeString("de9edb7d7b7dc1b4d35b61c2ece435373f8343c85b78674dadfc7e146f882b4f")
	alicePub, _ := hex.DecodeString("8520f0098930a754748b7ddcb43ef75a0dbf3a0d26381af4eba4a98eaa9b4e6a")

	pub, err := PublicKey(alicePriv)
	require.NoError(t, err)
	assert.Equal(t, alicePub, pub)

	shared, err := New().DeriveSharedSecret(alicePriv, bobPub)
	require.NoError(t, err)
	assert.Equal(t, "4a5d9d5ba4ce2de1728e3bf480350f25e07e21c947d19e3376f09b3c1e161742", hex.EncodeToString(shared))
}

func TestDeriveSharedSecretErrors(t *testing.T) {
	ka := New()
	kp, err := ka.GenerateKey()
	require.NoError(t, err)

	_, err = ka.DeriveSharedSecret(kp.PrivateKey[:31], kp.PublicKey)
	assert.ErrorIs(t, err, types.ErrMalformedKey)

	_, err = ka.DeriveSharedSecret(kp.PrivateKey, kp.PublicKey[:16])
	assert.ErrorIs(t, err, types.ErrMalformedKey)

	zero := make([]byte, KeySize)
	_, err = ka.DeriveSharedSecret(kp.PrivateKey, zero)
	assert.True(t, errors.Is(err, types.ErrMalformedKey), "low order point must be rejected")
}

func TestEd25519Mapping(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	xPriv, err := FromEd25519PrivateKey(priv.Seed())
	require.NoError(t, err)
	xPub, err := FromEd25519PublicKey(pub)
	require.NoError(t, err)

	derived, err := PublicKey(xPriv)
	require.NoError(t, err)
	assert.Equal(t, xPub, derived)

	// The mapped scalar must interoperate with the standard library.
	stdPriv, err := ecdh.X25519().NewPrivateKey(xPriv)
	require.NoError(t, err)
	assert.Equal(t, xPub, stdPriv.PublicKey().Bytes())
}

func TestEd25519MappingErrors(t *testing.T) {
	_, err := FromEd25519PrivateKey(make([]byte, 31))
	assert.ErrorIs(t, err, types.ErrMalformedKey)

	_, err = FromEd25519PublicKey(make([]byte, 31))
	assert.ErrorIs(t, err, types.ErrMalformedKey)

	identity := make([]byte, 32)
	identity[0] = 1
	_, err = FromEd25519PublicKey(identity)
	assert.ErrorIs(t, err, types.ErrMalformedKey)
}
