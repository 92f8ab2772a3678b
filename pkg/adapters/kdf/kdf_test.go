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
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-keytool/pkg/types"
)

func TestNew(t *testing.T) {
	for _, alg := range types.KDFs() {
		adapter, err := New(alg)
		require.NoError(t, err, alg)
		assert.Equal(t, alg, adapter.Algorithm())
		require.NotNil(t, DefaultParams(alg))
	}

	_, err := New("")
	assert.ErrorIs(t, err, types.ErrMalformedInput)

	_, err = New("Argon2id")
	assert.ErrorIs(t, err, types.ErrUnsupportedAlgorithm)

	assert.Nil(t, DefaultParams("bcrypt"))
}

func TestDeriveAllAlgorithmsAndDigests(t *testing.T) {
	ikm := []byte("shared secret material")
	for _, alg := range types.KDFs() {
		for _, digest := range types.Digests() {
			t.Run(string(alg)+"/"+string(digest), func(t *testing.T) {
				params := DefaultParams(alg)
				params.Digest = digest
				params.Salt = []byte("salt")
				params.Info = []byte("info")
				params.KeyLength = 44
				if alg == types.KDFPBKDF2 {
					params.Iterations = MinPBKDF2Iterations
				}
				if alg == types.KDFScrypt {
					params.N = 1024
				}

				k1, err := Derive(ikm, params)
				require.NoError(t, err)
				assert.Len(t, k1, 44)

				k2, err := Derive(ikm, params)
				require.NoError(t, err)
				assert.Equal(t, k1, k2)

				params.Salt = []byte("other")
				k3, err := Derive(ikm, params)
				require.NoError(t, err)
				assert.NotEqual(t, k1, k3)
			})
		}
	}
}

func TestPBKDF2KnownAnswer(t *testing.T) {
	// RFC 6070 test vector 2
	params := &KDFParams{
		Algorithm:  types.KDFPBKDF2,
		Salt:       []byte("salt"),
		Iterations: 4096,
		KeyLength:  20,
		Digest:     types.DigestSHA1,
	}
	key, err := NewPBKDF2Adapter().DeriveKey([]byte("password"), params)
	require.NoError(t, err)
	assert.Equal(t, "4b007901b765489abead49d926f721d065a429c1", hex.EncodeToString(key))
}

func TestHKDFKnownAnswer(t *testing.T) {
	// RFC 5869 test case 1
	ikm, _ := hex.DecodeString("0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b")
	salt, _ := hex.DecodeString("000102030405060708090a0b0c")
	info, _ := hex.DecodeString("f0f1f2f3f4f5f6f7f8f9")
	params := &KDFParams{
		Algorithm: types.KDFHKDF,
		Salt:      salt,
		Info:      info,
		KeyLength: 42,
		Digest:    types.DigestSHA256,
	}
	key, err := NewHKDFAdapter().DeriveKey(ikm, params)
	require.NoError(t, err)
	assert.Equal(t,
		"3cb25f25faacd57a90434f64d0362f2a2d2d0a90cf1a5a4c5db02d56ecc4c5bf34007208d5b887185865",
		hex.EncodeToString(key))
}

func TestScryptKnownAnswer(t *testing.T) {
	// RFC 7914 section 12, second vector
	params := &KDFParams{
		Algorithm: types.KDFScrypt,
		Salt:      []byte("NaCl"),
		N:         1024,
		R:         8,
		P:         16,
		KeyLength: 64,
	}
	key, err := NewScryptAdapter().DeriveKey([]byte("password"), params)
	require.NoError(t, err)
	assert.Equal(t,
		"fdbabe1c9d3472007856e7190d01e9fe7c6ad7cbc8237830e77376634b373162"+
			"2eaf30d92e22a3886ff109279d9830dac727afb94a83ee6d8360cbdfa2cc0640",
		hex.EncodeToString(key))
}

func TestValidateParams(t *testing.T) {
	tests := []struct {
		name   string
		params *KDFParams
		err    error
	}{
		{"Nil", nil, types.ErrInvalidInputLength},
		{"ZeroLength", &KDFParams{Algorithm: types.KDFHKDF, Digest: types.DigestSHA256}, types.ErrInvalidInputLength},
		{"HKDFTooLong", &KDFParams{Algorithm: types.KDFHKDF, Digest: types.DigestSHA256, KeyLength: 255*32 + 1}, types.ErrInvalidInputLength},
		{"HKDFMissingDigest", &KDFParams{Algorithm: types.KDFHKDF, KeyLength: 32}, types.ErrMalformedInput},
		{"HKDFBadDigest", &KDFParams{Algorithm: types.KDFHKDF, KeyLength: 32, Digest: "MD5"}, types.ErrUnsupportedAlgorithm},
		{"PBKDF2LowIterations", &KDFParams{Algorithm: types.KDFPBKDF2, KeyLength: 32, Digest: types.DigestSHA256, Iterations: 10}, types.ErrMalformedInput},
		{"ScryptNNotPowerOfTwo", &KDFParams{Algorithm: types.KDFScrypt, KeyLength: 32, N: 1000, R: 8, P: 1}, types.ErrMalformedInput},
		{"ScryptNOne", &KDFParams{Algorithm: types.KDFScrypt, KeyLength: 32, N: 1, R: 8, P: 1}, types.ErrMalformedInput},
		{"ScryptZeroR", &KDFParams{Algorithm: types.KDFScrypt, KeyLength: 32, N: 1024, P: 1}, types.ErrMalformedInput},
		{"ScryptHugeN", &KDFParams{Algorithm: types.KDFScrypt, KeyLength: 32, N: 1 << 40, R: 8, P: 1}, types.ErrMalformedInput},
		{"PBKDF2HugeIterations", &KDFParams{Algorithm: types.KDFPBKDF2, KeyLength: 32, Digest: types.DigestSHA256, Iterations: 1<<31 - 1}, types.ErrMalformedInput},
		{"ConcatMissingDigest", &KDFParams{Algorithm: types.KDFConcat, KeyLength: 32}, types.ErrMalformedInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alg := types.KDFHKDF
			if tt.params != nil {
				alg = tt.params.Algorithm
			}
			adapter, err := New(alg)
			require.NoError(t, err)
			assert.ErrorIs(t, adapter.ValidateParams(tt.params), tt.err)
		})
	}
}

func TestCostCeilings(t *testing.T) {
	assert.NoError(t, CheckPBKDF2Iterations(MaxPBKDF2Iterations))
	assert.ErrorIs(t, CheckPBKDF2Iterations(MaxPBKDF2Iterations+1), types.ErrMalformedInput)

	tests := []struct {
		name    string
		n, r, p int
		ok      bool
	}{
		{"MaxN", MaxScryptN, 8, 1, true},
		{"AboveMaxN", MaxScryptN * 2, 1, 1, false},
		{"MaxP", 1024, 8, MaxScryptP, true},
		{"AboveMaxP", 1024, 8, MaxScryptP + 1, false},
		{"AtMemoryLimit", 1 << 15, MaxScryptMemory / (128 << 15), 1, true},
		{"AboveMemoryLimit", MaxScryptN, 9, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckScryptCost(tt.n, tt.r, tt.p)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidCost)
			assert.ErrorIs(t, err, types.ErrMalformedInput)
		})
	}
}

func TestAdapterRejectsForeignParams(t *testing.T) {
	params := DefaultParams(types.KDFHKDF)
	_, err := NewPBKDF2Adapter().DeriveKey([]byte("x"), params)
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestEmptyIKM(t *testing.T) {
	for _, alg := range types.KDFs() {
		params := DefaultParams(alg)
		if alg == types.KDFScrypt {
			params.N = 1024
		}
		_, err := Derive(nil, params)
		assert.ErrorIs(t, err, ErrInvalidIKM, alg)
	}
	_, err := Derive([]byte("x"), nil)
	assert.ErrorIs(t, err, types.ErrMalformedInput)
}

func TestConcatKDFBindsOtherInfo(t *testing.T) {
	ikm := []byte("z")
	params := DefaultParams(types.KDFConcat)
	params.AlgorithmID = []byte("A256GCM")

	k1, err := Derive(ikm, params)
	require.NoError(t, err)

	params.AlgorithmID = []byte("A128GCM")
	k2, err := Derive(ikm, params)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)

	params.KeyLength = 16
	k3, err := Derive(ikm, params)
	require.NoError(t, err)
	assert.NotEqual(t, k2[:16], k3, "output length is part of SuppPubInfo")
}

func TestCryptoHash(t *testing.T) {
	for _, d := range types.Digests() {
		h, err := CryptoHash(d)
		require.NoError(t, err, d)
		fn, err := HashFunc(d)
		require.NoError(t, err)
		assert.Equal(t, h.Size(), fn().Size())
	}
}
