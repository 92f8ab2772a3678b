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

package aes

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-keytool/pkg/types"
)

func spec(bits int, mode types.CipherMode, padding types.Padding) types.CipherSpec {
	return types.CipherSpec{KeySizeBits: bits, Mode: mode, Padding: padding}
}

func mustIV(t *testing.T, mode types.CipherMode) []byte {
	t.Helper()
	if mode == types.ModeECB {
		return nil
	}
	iv, err := GenerateIV(mode)
	require.NoError(t, err)
	return iv
}

// TestAES256CBCGoldenVector tests a fixed key/iv/plaintext triple against a
// known ciphertext.
func TestAES256CBCGoldenVector(t *testing.T) {
	key := make([]byte, 32)
	iv := make([]byte, 16)
	s := spec(256, types.ModeCBC, types.PaddingPKCS7)

	ciphertext, err := Encrypt(s, key, iv, nil, []byte("hello"))
	require.NoError(t, err)
	assert.Len(t, ciphertext, 16)
	assert.Equal(t, "wjXeJNI54DzI43fGBPymew==", base64.StdEncoding.EncodeToString(ciphertext))

	plaintext, err := Decrypt(s, key, iv, nil, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(plaintext))
}

func TestAES128ECBGoldenVector(t *testing.T) {
	key, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	s := spec(128, types.ModeECB, types.PaddingPKCS7)

	ciphertext, err := Encrypt(s, key, nil, nil, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "5d8749e2af7531b2bf6661e9e5daf012", hex.EncodeToString(ciphertext))
}

// TestRoundTrip tests every mode and padding combination across the
// plaintext lengths that the padding allows.
func TestRoundTrip(t *testing.T) {
	lengths := []int{0, 1, 15, 16, 17, 4096}
	specs := []types.CipherSpec{
		spec(128, types.ModeECB, types.PaddingPKCS7),
		spec(256, types.ModeECB, types.PaddingNone),
		spec(128, types.ModeCBC, types.PaddingPKCS7),
		spec(256, types.ModeCBC, types.PaddingNone),
		spec(128, types.ModeGCM, types.PaddingNone),
		spec(256, types.ModeGCM, ""),
	}

	for _, s := range specs {
		key, err := GenerateKey(s.KeySizeBits)
		require.NoError(t, err)

		for _, n := range lengths {
			if s.Padding == types.PaddingNone && s.Mode != types.ModeGCM && n%BlockSize != 0 {
				continue
			}
			t.Run(fmt.Sprintf("%s/%d", s, n), func(t *testing.T) {
				iv := mustIV(t, s.Mode)
				plaintext := bytes.Repeat([]byte{0x5a}, n)

				ciphertext, err := Encrypt(s, key, iv, nil, plaintext)
				require.NoError(t, err)

				decrypted, err := Decrypt(s, key, iv, nil, ciphertext)
				require.NoError(t, err)
				assert.Equal(t, plaintext, decrypted)
			})
		}
	}
}

func TestEmptyPlaintextPKCS7IsOneBlock(t *testing.T) {
	key := make([]byte, 16)
	ciphertext, err := Encrypt(spec(128, types.ModeECB, types.PaddingPKCS7), key, nil, nil, nil)
	require.NoError(t, err)
	assert.Len(t, ciphertext, BlockSize)

	ciphertext, err = Encrypt(spec(128, types.ModeCBC, types.PaddingPKCS7), key, make([]byte, 16), nil, []byte{})
	require.NoError(t, err)
	assert.Len(t, ciphertext, BlockSize)
}

func TestNoPaddingRequiresBlockMultiple(t *testing.T) {
	key := make([]byte, 32)
	for _, mode := range []types.CipherMode{types.ModeECB, types.ModeCBC} {
		_, err := Encrypt(spec(256, mode, types.PaddingNone), key, mustIV(t, mode), nil, make([]byte, 17))
		assert.ErrorIs(t, err, types.ErrInvalidInputLength, mode)
	}
}

// TestGCMTamperDetection flips every bit of a GCM ciphertext and tag in turn
// and checks that decryption fails closed.
func TestGCMTamperDetection(t *testing.T) {
	s := spec(256, types.ModeGCM, types.PaddingNone)
	key, err := GenerateKey(256)
	require.NoError(t, err)
	iv := mustIV(t, types.ModeGCM)
	aad := []byte("header")

	ciphertext, err := Encrypt(s, key, iv, aad, []byte("attack at dawn"))
	require.NoError(t, err)
	require.Len(t, ciphertext, 14+GCMTagSize)

	for i := 0; i < len(ciphertext)*8; i++ {
		tampered := append([]byte(nil), ciphertext...)
		tampered[i/8] ^= 1 << (i % 8)
		plaintext, err := Decrypt(s, key, iv, aad, tampered)
		require.ErrorIs(t, err, types.ErrAuthenticationFailed, "bit %d", i)
		require.Nil(t, plaintext)
	}

	_, err = Decrypt(s, key, iv, []byte("other"), ciphertext)
	assert.ErrorIs(t, err, types.ErrAuthenticationFailed)

	_, err = Decrypt(s, key, iv, aad, ciphertext[:GCMTagSize-1])
	assert.ErrorIs(t, err, types.ErrInvalidInputLength)
}

// TestKeyLengthBoundary tests keys one byte short, exact and one byte long.
func TestKeyLengthBoundary(t *testing.T) {
	for _, bits := range []int{128, 256} {
		s := spec(bits, types.ModeCBC, types.PaddingPKCS7)
		iv := make([]byte, 16)
		n := bits / 8

		_, err := Encrypt(s, make([]byte, n-1), iv, nil, []byte("x"))
		assert.ErrorIs(t, err, types.ErrInvalidInputLength)

		_, err = Encrypt(s, make([]byte, n+1), iv, nil, []byte("x"))
		assert.ErrorIs(t, err, types.ErrInvalidInputLength)

		_, err = Encrypt(s, make([]byte, n), iv, nil, []byte("x"))
		assert.NoError(t, err)
	}

	// A 24-byte key is valid AES-192 but not the requested AES-256.
	_, err := Encrypt(spec(256, types.ModeECB, types.PaddingPKCS7), make([]byte, 24), nil, nil, []byte("x"))
	assert.ErrorIs(t, err, types.ErrInvalidInputLength)
}

func TestIVValidation(t *testing.T) {
	key := make([]byte, 16)

	_, err := Encrypt(spec(128, types.ModeCBC, types.PaddingPKCS7), key, nil, nil, []byte("x"))
	assert.ErrorIs(t, err, types.ErrInvalidInputLength)

	_, err = Encrypt(spec(128, types.ModeCBC, types.PaddingPKCS7), key, make([]byte, 12), nil, []byte("x"))
	assert.ErrorIs(t, err, types.ErrInvalidInputLength)

	_, err = Encrypt(spec(128, types.ModeGCM, types.PaddingNone), key, make([]byte, 16), nil, []byte("x"))
	assert.ErrorIs(t, err, types.ErrInvalidInputLength)

	_, err = Encrypt(spec(128, types.ModeECB, types.PaddingPKCS7), key, make([]byte, 16), nil, []byte("x"))
	assert.ErrorIs(t, err, types.ErrInvalidInputLength)
}

func TestSpecValidation(t *testing.T) {
	tests := []struct {
		name string
		spec types.CipherSpec
		err  error
	}{
		{"GCMWithPKCS7", spec(256, types.ModeGCM, types.PaddingPKCS7), types.ErrMalformedInput},
		{"MissingMode", spec(256, "", types.PaddingPKCS7), types.ErrMalformedInput},
		{"UnknownMode", spec(256, "CTR", types.PaddingNone), types.ErrUnsupportedAlgorithm},
		{"MissingPadding", spec(256, types.ModeCBC, ""), types.ErrMalformedInput},
		{"UnknownPadding", spec(256, types.ModeCBC, "ISO10126"), types.ErrUnsupportedAlgorithm},
		{"AES192", spec(192, types.ModeCBC, types.PaddingPKCS7), types.ErrInvalidInputLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateSpec(tt.spec), tt.err)
		})
	}

	_, err := Encrypt(spec(128, types.ModeCBC, types.PaddingPKCS7), make([]byte, 16), make([]byte, 16), []byte("aad"), []byte("x"))
	assert.ErrorIs(t, err, types.ErrMalformedInput)
}

func TestBadPadding(t *testing.T) {
	key := make([]byte, 16)
	s := spec(128, types.ModeECB, types.PaddingNone)
	raw, err := Encrypt(s, key, nil, nil, bytes.Repeat([]byte{0x00}, 16))
	require.NoError(t, err)

	_, err = Decrypt(spec(128, types.ModeECB, types.PaddingPKCS7), key, nil, nil, raw)
	assert.ErrorIs(t, err, types.ErrMalformedInput)

	_, err = Decrypt(spec(128, types.ModeECB, types.PaddingPKCS7), key, nil, nil, raw[:15])
	assert.ErrorIs(t, err, types.ErrInvalidInputLength)
}

func TestGenerateKeyAndIV(t *testing.T) {
	for _, bits := range []int{128, 256} {
		key, err := GenerateKey(bits)
		require.NoError(t, err)
		assert.Len(t, key, bits/8)
	}
	_, err := GenerateKey(64)
	assert.ErrorIs(t, err, types.ErrInvalidInputLength)

	iv, err := GenerateIV(types.ModeCBC)
	require.NoError(t, err)
	assert.Len(t, iv, 16)

	iv, err = GenerateIV(types.ModeGCM)
	require.NoError(t, err)
	assert.Len(t, iv, 12)

	_, err = GenerateIV(types.ModeECB)
	assert.ErrorIs(t, err, types.ErrInvalidInputLength)
}
