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

package ecies

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-keytool/pkg/asymmetric"
	"github.com/jeremyhahn/go-keytool/pkg/encoding"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// fastParams keeps the password-based KDFs cheap for tests.
func fastParams(k types.KDF) types.EciesParameters {
	return types.EciesParameters{
		KDF:           k,
		Digest:        types.DigestSHA256,
		Salt:          []byte("ecies-test-salt"),
		Iterations:    1000,
		ScryptN:       1024,
		ScryptR:       8,
		ScryptP:       1,
		EncryptionAlg: types.EciesAES256GCM,
	}
}

func generate(t *testing.T, family types.AlgorithmFamily, d types.KeyContainerDescriptor) *types.KeyPair {
	t.Helper()
	kp, err := asymmetric.Generate(family, d)
	require.NoError(t, err)
	return kp
}

func TestEncryptDecryptSecp256k1(t *testing.T) {
	kp := generate(t, types.EC(types.CurveSecp256k1), types.PKCS8PEM)
	params := types.EciesParameters{
		Curve:         types.CurveSecp256k1,
		KDF:           types.KDFPBKDF2,
		Digest:        types.DigestSHA256,
		Iterations:    1000,
		EncryptionAlg: types.EciesAES256GCM,
	}

	ciphertext, err := Encrypt(kp.PublicKey, params, []byte("secret"))
	require.NoError(t, err)

	// 1-byte length prefix, 65-byte uncompressed point, 6-byte body, 16-byte tag
	assert.Len(t, ciphertext, 1+65+6+tagSize)
	assert.Equal(t, byte(65), ciphertext[0])
	assert.Equal(t, byte(0x04), ciphertext[1])

	plaintext, err := Decrypt(kp.PrivateKey, params, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), plaintext)
}

func TestEncryptDecryptAllCurvesAndKDFs(t *testing.T) {
	for _, curve := range types.Curves() {
		kp := generate(t, types.EC(curve), types.SEC1DER)
		pub, err := asymmetric.DerivePublicKey(kp.PrivateKey, kp.Algorithm, types.SEC1DER)
		require.NoError(t, err)

		for _, k := range types.KDFs() {
			t.Run(string(curve)+"/"+string(k), func(t *testing.T) {
				params := fastParams(k)
				msg := []byte("The quick brown fox jumps over the lazy dog")

				ciphertext, err := Encrypt(pub, params, msg)
				require.NoError(t, err)

				plaintext, err := Decrypt(kp.PrivateKey, params, ciphertext)
				require.NoError(t, err)
				assert.Equal(t, msg, plaintext)
			})
		}
	}
}

func TestEncryptDecryptEdwards(t *testing.T) {
	for _, d := range []types.KeyContainerDescriptor{types.PKCS8PEM, types.PKCS8DER} {
		t.Run(d.String(), func(t *testing.T) {
			kp := generate(t, types.Edwards(types.CurveCurve25519), d)
			params := fastParams(types.KDFHKDF)

			ciphertext, err := Encrypt(kp.PublicKey, params, []byte("edwards"))
			require.NoError(t, err)
			assert.Equal(t, byte(32), ciphertext[0])

			plaintext, err := Decrypt(kp.PrivateKey, params, ciphertext)
			require.NoError(t, err)
			assert.Equal(t, []byte("edwards"), plaintext)
		})
	}
}

func TestEncryptToPrivateKey(t *testing.T) {
	kp := generate(t, types.EC(types.CurveP384), types.PKCS8PEM)
	params := fastParams(types.KDFConcat)

	ciphertext, err := Encrypt(kp.PrivateKey, params, []byte("self"))
	require.NoError(t, err)

	plaintext, err := Decrypt(kp.PrivateKey, params, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, []byte("self"), plaintext)
}

func TestAES128GCM(t *testing.T) {
	kp := generate(t, types.EC(types.CurveP256), types.PKCS8PEM)
	params := fastParams(types.KDFHKDF)
	params.EncryptionAlg = types.EciesAES128GCM

	ciphertext, err := Encrypt(kp.PublicKey, params, []byte("short key"))
	require.NoError(t, err)

	plaintext, err := Decrypt(kp.PrivateKey, params, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, []byte("short key"), plaintext)

	// The algorithm feeds the KDF, so decrypting as AES-256 fails.
	params.EncryptionAlg = types.EciesAES256GCM
	_, err = Decrypt(kp.PrivateKey, params, ciphertext)
	assert.ErrorIs(t, err, types.ErrAuthenticationFailed)
}

func TestEmptyPlaintext(t *testing.T) {
	kp := generate(t, types.EC(types.CurveP256), types.PKCS8PEM)
	params := fastParams(types.KDFHKDF)

	ciphertext, err := Encrypt(kp.PublicKey, params, nil)
	require.NoError(t, err)
	assert.Len(t, ciphertext, 1+65+tagSize)

	plaintext, err := Decrypt(kp.PrivateKey, params, ciphertext)
	require.NoError(t, err)
	assert.Empty(t, plaintext)
}

func TestCiphertextsDiffer(t *testing.T) {
	kp := generate(t, types.EC(types.CurveP256), types.PKCS8PEM)
	params := fastParams(types.KDFHKDF)

	a, err := Encrypt(kp.PublicKey, params, []byte("same"))
	require.NoError(t, err)
	b, err := Encrypt(kp.PublicKey, params, []byte("same"))
	require.NoError(t, err)
	assert.False(t, bytes.Equal(a, b), "ephemeral keys must differ")
}

func TestTamperDetection(t *testing.T) {
	kp := generate(t, types.EC(types.CurveP256), types.PKCS8PEM)
	params := fastParams(types.KDFHKDF)

	ciphertext, err := Encrypt(kp.PublicKey, params, []byte("do not modify"))
	require.NoError(t, err)

	// Flipping body or tag bytes must fail authentication.
	for _, i := range []int{1 + 65, len(ciphertext) - 1} {
		tampered := bytes.Clone(ciphertext)
		tampered[i] ^= 0x01
		_, err := Decrypt(kp.PrivateKey, params, tampered)
		assert.ErrorIs(t, err, types.ErrAuthenticationFailed, "byte %d", i)
	}

	// A corrupted ephemeral point is rejected as a key.
	tampered := bytes.Clone(ciphertext)
	tampered[10] ^= 0xff
	_, err = Decrypt(kp.PrivateKey, params, tampered)
	assert.Error(t, err)

	// A different salt derives a different key.
	other := params
	other.Salt = []byte("another salt")
	_, err = Decrypt(kp.PrivateKey, other, ciphertext)
	assert.ErrorIs(t, err, types.ErrAuthenticationFailed)
}

func TestWrongRecipient(t *testing.T) {
	alice := generate(t, types.EC(types.CurveP256), types.PKCS8PEM)
	bob := generate(t, types.EC(types.CurveP256), types.PKCS8PEM)
	params := fastParams(types.KDFHKDF)

	ciphertext, err := Encrypt(alice.PublicKey, params, []byte("for alice"))
	require.NoError(t, err)

	_, err = Decrypt(bob.PrivateKey, params, ciphertext)
	assert.ErrorIs(t, err, types.ErrAuthenticationFailed)
}

func TestTruncatedCiphertext(t *testing.T) {
	kp := generate(t, types.EC(types.CurveP256), types.PKCS8PEM)
	params := fastParams(types.KDFHKDF)

	ciphertext, err := Encrypt(kp.PublicKey, params, []byte("x"))
	require.NoError(t, err)

	for _, n := range []int{0, 1, 30, 1 + 65, 1 + 65 + tagSize - 1} {
		op := NewOperation(types.Decrypt, params)
		_, err := op.Run(kp.PrivateKey, ciphertext[:n])
		assert.ErrorIs(t, err, types.ErrInvalidInputLength, "length %d", n)
		assert.Equal(t, StateFailed, op.State())
		assert.Equal(t, StateSharedSecretDerived, op.FailedIn())
	}

	_, err = Decrypt(kp.PrivateKey, params, []byte{0x00, 0x01, 0x02})
	assert.ErrorIs(t, err, types.ErrInvalidInputLength)
}

func TestCurveMismatch(t *testing.T) {
	kp := generate(t, types.EC(types.CurveP256), types.PKCS8PEM)
	params := fastParams(types.KDFHKDF)
	params.Curve = types.CurveP384

	_, err := Encrypt(kp.PublicKey, params, []byte("x"))
	assert.ErrorIs(t, err, types.ErrMalformedKey)
}

func TestSEC1WithoutCurveParameters(t *testing.T) {
	kp := generate(t, types.EC(types.CurveP256), types.SEC1DER)
	pub, err := asymmetric.DerivePublicKey(kp.PrivateKey, kp.Algorithm, types.PKCS8PEM)
	require.NoError(t, err)

	sec1, err := encoding.ParseECPrivateKey(kp.PrivateKey)
	require.NoError(t, err)
	sec1.NamedCurve = nil
	bare, err := sec1.Marshal()
	require.NoError(t, err)

	params := fastParams(types.KDFHKDF)
	ciphertext, err := Encrypt(pub, params, []byte("no params"))
	require.NoError(t, err)

	_, err = Decrypt(bare, params, ciphertext)
	assert.ErrorIs(t, err, types.ErrMalformedInput)

	params.Curve = types.CurveP256
	plaintext, err := Decrypt(bare, params, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, []byte("no params"), plaintext)

	pemBare, err := encoding.EncodePEM("EC PRIVATE KEY", bare)
	require.NoError(t, err)
	plaintext, err = Decrypt(pemBare, params, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, []byte("no params"), plaintext)
}

func TestDecryptRequiresPrivateKey(t *testing.T) {
	kp := generate(t, types.EC(types.CurveP256), types.PKCS8PEM)
	params := fastParams(types.KDFHKDF)

	ciphertext, err := Encrypt(kp.PublicKey, params, []byte("x"))
	require.NoError(t, err)

	_, err = Decrypt(kp.PublicKey, params, ciphertext)
	assert.ErrorIs(t, err, types.ErrMalformedKey)
}

func TestRSAKeyUnsupported(t *testing.T) {
	kp := generate(t, types.RSA(2048), types.PKCS8PEM)
	_, err := Encrypt(kp.PublicKey, fastParams(types.KDFHKDF), []byte("x"))
	assert.ErrorIs(t, err, types.ErrUnsupportedAlgorithm)
}

func TestParameterValidation(t *testing.T) {
	kp := generate(t, types.EC(types.CurveP256), types.PKCS8PEM)

	tests := []struct {
		name   string
		mutate func(*types.EciesParameters)
		err    error
	}{
		{"MissingKDF", func(p *types.EciesParameters) { p.KDF = "" }, types.ErrMalformedInput},
		{"UnknownKDF", func(p *types.EciesParameters) { p.KDF = "Argon2" }, types.ErrUnsupportedAlgorithm},
		{"MissingAlgorithm", func(p *types.EciesParameters) { p.EncryptionAlg = "" }, types.ErrMalformedInput},
		{"UnknownAlgorithm", func(p *types.EciesParameters) { p.EncryptionAlg = "ChaCha20" }, types.ErrUnsupportedAlgorithm},
		{"MissingDigest", func(p *types.EciesParameters) { p.Digest = "" }, types.ErrMalformedInput},
		{"ScryptNotPowerOfTwo", func(p *types.EciesParameters) { p.KDF = types.KDFScrypt; p.ScryptN = 1000 }, types.ErrMalformedInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := fastParams(types.KDFPBKDF2)
			tt.mutate(&params)
			_, err := Encrypt(kp.PublicKey, params, []byte("x"))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestMalformedKey(t *testing.T) {
	_, err := Encrypt([]byte("not a key"), fastParams(types.KDFHKDF), []byte("x"))
	assert.ErrorIs(t, err, types.ErrMalformedKey)
}

func TestOperationStates(t *testing.T) {
	kp := generate(t, types.EC(types.CurveP256), types.PKCS8PEM)
	params := fastParams(types.KDFHKDF)

	op := NewOperation(types.Encrypt, params)
	assert.Equal(t, StatePending, op.State())

	out, err := op.Run(kp.PublicKey, []byte("hello"))
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Equal(t, StateDone, op.State())
	assert.NoError(t, op.Err())

	_, err = op.Run(kp.PublicKey, []byte("again"))
	assert.ErrorIs(t, err, ErrOperationUsed)

	failed := NewOperation(types.Decrypt, params)
	out, err = failed.Run(kp.PrivateKey, append(bytes.Clone(out[:len(out)-1]), out[len(out)-1]^1))
	assert.Nil(t, out)
	assert.ErrorIs(t, err, types.ErrAuthenticationFailed)
	assert.Equal(t, StateFailed, failed.State())
	assert.Equal(t, StateCiphered, failed.FailedIn())
	assert.Equal(t, err, failed.Err())

	keyFailure := NewOperation(types.Encrypt, params)
	_, err = keyFailure.Run([]byte("garbage"), []byte("x"))
	assert.Error(t, err)
	assert.Equal(t, StateKeyParsed, keyFailure.FailedIn())
}

func TestRunDispatch(t *testing.T) {
	kp := generate(t, types.EC(types.CurveSM2), types.PKCS8PEM)
	params := fastParams(types.KDFScrypt)

	ciphertext, err := Run(types.Encrypt, kp.PublicKey, params, []byte("sm2"))
	require.NoError(t, err)
	plaintext, err := Run(types.Decrypt, kp.PrivateKey, params, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, []byte("sm2"), plaintext)

	_, err = Run("sideways", kp.PrivateKey, params, ciphertext)
	assert.ErrorIs(t, err, types.ErrMalformedInput)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "SymmetricKeyDerived", StateSymmetricKeyDerived.String())
	assert.Equal(t, "State(42)", State(42).String())
}
