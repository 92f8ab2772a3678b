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

package asymmetric

import (
	"crypto/rsa"
	"fmt"

	"github.com/jeremyhahn/go-keytool/pkg/adapters/kdf"
	"github.com/jeremyhahn/go-keytool/pkg/crypto/rand"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// pkcs1v15Overhead is the minimum PKCS#1 v1.5 encryption padding length.
const pkcs1v15Overhead = 11

// RSAEncrypt encrypts plaintext to an RSA key in any supported container. A
// private key is accepted and its public half used. digest selects the OAEP
// hash and is ignored for PKCS#1 v1.5.
func RSAEncrypt(key []byte, padding types.RSAPadding, digest types.Digest, plaintext []byte) ([]byte, error) {
	k, _, err := Detect(key)
	if err != nil {
		return nil, err
	}
	defer k.Zero()
	if !k.Family.IsRSA() {
		return nil, fmt.Errorf("%w: RSA encryption with a %s key", types.ErrUnsupportedAlgorithm, k.Family)
	}
	pub, err := k.RSAPublicKey()
	if err != nil {
		return nil, err
	}

	var ciphertext []byte
	switch padding {
	case types.RSAPaddingPKCS1v15:
		if limit := pub.Size() - pkcs1v15Overhead; len(plaintext) > limit {
			return nil, fmt.Errorf("%w: plaintext is %d bytes, limit is %d", types.ErrInvalidInputLength, len(plaintext), limit)
		}
		ciphertext, err = rsa.EncryptPKCS1v15(rand.Reader, pub, plaintext)
	case types.RSAPaddingOAEP:
		newHash, herr := kdf.HashFunc(digest)
		if herr != nil {
			return nil, herr
		}
		h := newHash()
		if limit := pub.Size() - 2*h.Size() - 2; len(plaintext) > limit {
			return nil, fmt.Errorf("%w: plaintext is %d bytes, limit is %d", types.ErrInvalidInputLength, len(plaintext), limit)
		}
		ciphertext, err = rsa.EncryptOAEP(h, rand.Reader, pub, plaintext, nil)
	case "":
		return nil, fmt.Errorf("%w: RSA padding is required", types.ErrMalformedInput)
	default:
		return nil, fmt.Errorf("%w: RSA padding %q", types.ErrUnsupportedAlgorithm, padding)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: RSA encryption: %v", types.ErrGenerationFailed, err)
	}
	return ciphertext, nil
}

// RSADecrypt decrypts ciphertext with an RSA private key in any supported
// container. A padding check failure is ErrAuthenticationFailed.
func RSADecrypt(key []byte, padding types.RSAPadding, digest types.Digest, ciphertext []byte) ([]byte, error) {
	k, _, err := Detect(key)
	if err != nil {
		return nil, err
	}
	defer k.Zero()
	if !k.Family.IsRSA() {
		return nil, fmt.Errorf("%w: RSA decryption with a %s key", types.ErrUnsupportedAlgorithm, k.Family)
	}
	if !k.Private {
		return nil, fmt.Errorf("%w: RSA decryption requires a private key", types.ErrMalformedKey)
	}
	priv, err := k.RSAPrivateKey()
	if err != nil {
		return nil, err
	}
	if len(ciphertext) != priv.Size() {
		return nil, fmt.Errorf("%w: ciphertext is %d bytes, want %d", types.ErrInvalidInputLength, len(ciphertext), priv.Size())
	}

	var plaintext []byte
	switch padding {
	case types.RSAPaddingPKCS1v15:
		plaintext, err = rsa.DecryptPKCS1v15(nil, priv, ciphertext)
	case types.RSAPaddingOAEP:
		newHash, herr := kdf.HashFunc(digest)
		if herr != nil {
			return nil, herr
		}
		plaintext, err = rsa.DecryptOAEP(newHash(), nil, priv, ciphertext, nil)
	case "":
		return nil, fmt.Errorf("%w: RSA padding is required", types.ErrMalformedInput)
	default:
		return nil, fmt.Errorf("%w: RSA padding %q", types.ErrUnsupportedAlgorithm, padding)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: RSA decryption: %v", types.ErrAuthenticationFailed, err)
	}
	return plaintext, nil
}
