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

package encoding

import (
	"crypto"
	"crypto/x509"
	"encoding/asn1"
	"fmt"
	"strings"

	"github.com/youmark/pkcs8"
	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/jeremyhahn/go-keytool/pkg/adapters/kdf"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// ProtectOptions selects the PBES2 parameters for password protection.
type ProtectOptions struct {
	// KDF is PBKDF2 or Scrypt. Empty means PBKDF2.
	KDF types.KDF

	// Iterations is the PBKDF2 iteration count.
	Iterations int

	// ScryptN, ScryptR and ScryptP are the scrypt cost parameters.
	ScryptN int
	ScryptR int
	ScryptP int

	// KeySizeBits selects AES-128-CBC or AES-256-CBC. Zero means 256.
	KeySizeBits int
}

// DefaultProtectOptions returns PBKDF2-HMAC-SHA256 with AES-256-CBC.
func DefaultProtectOptions() ProtectOptions {
	return ProtectOptions{
		KDF:         types.KDFPBKDF2,
		Iterations:  210000,
		ScryptN:     1 << 15,
		ScryptR:     8,
		ScryptP:     1,
		KeySizeBits: 256,
	}
}

func (o ProtectOptions) toPKCS8() (*pkcs8.Opts, error) {
	def := DefaultProtectOptions()
	opts := &pkcs8.Opts{Cipher: pkcs8.AES256CBC}
	switch o.KeySizeBits {
	case 0, 256:
	case 128:
		opts.Cipher = pkcs8.AES128CBC
	default:
		return nil, fmt.Errorf("%w: AES-%d", types.ErrUnsupportedAlgorithm, o.KeySizeBits)
	}

	switch o.KDF {
	case "", types.KDFPBKDF2:
		iterations := o.Iterations
		if iterations == 0 {
			iterations = def.Iterations
		}
		if err := kdf.CheckPBKDF2Iterations(iterations); err != nil {
			return nil, err
		}
		opts.KDFOpts = pkcs8.PBKDF2Opts{SaltSize: 16, IterationCount: iterations, HMACHash: crypto.SHA256}
	case types.KDFScrypt:
		n, r, p := o.ScryptN, o.ScryptR, o.ScryptP
		if n == 0 {
			n = def.ScryptN
		}
		if r == 0 {
			r = def.ScryptR
		}
		if p == 0 {
			p = def.ScryptP
		}
		if err := kdf.CheckScryptCost(n, r, p); err != nil {
			return nil, err
		}
		opts.KDFOpts = pkcs8.ScryptOpts{SaltSize: 16, CostParameter: n, BlockSize: r, ParallelizationParameter: p}
	default:
		return nil, fmt.Errorf("%w: %s cannot protect PKCS#8", types.ErrUnsupportedAlgorithm, o.KDF)
	}
	return opts, nil
}

// EncryptPKCS8 encrypts a DER PKCS#8 private key under password, producing an
// EncryptedPrivateKeyInfo. Keys on curves unknown to crypto/x509 (secp256k1,
// SM2) are rejected with ErrUnsupportedAlgorithm.
//
// Example:
//
//	der, err := encoding.EncryptPKCS8(pkcs8DER, []byte("mypassword"), encoding.DefaultProtectOptions())
func EncryptPKCS8(der, password []byte, opts ProtectOptions) ([]byte, error) {
	if len(password) == 0 {
		return nil, ErrPasswordRequired
	}
	if _, err := ParsePrivateKeyInfo(der); err != nil {
		return nil, err
	}

	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrUnsupportedAlgorithm, err)
	}

	pkcs8Opts, err := opts.toPKCS8()
	if err != nil {
		return nil, err
	}

	encrypted, err := pkcs8.MarshalPrivateKey(key, password, pkcs8Opts)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal PKCS#8: %w", err)
	}
	return encrypted, nil
}

// DecryptPKCS8 decrypts an EncryptedPrivateKeyInfo and returns the plain DER
// PKCS#8 private key.
func DecryptPKCS8(der, password []byte) ([]byte, error) {
	if len(der) == 0 {
		return nil, ErrInvalidData
	}
	if len(password) == 0 {
		return nil, ErrPasswordRequired
	}
	if err := checkPBES2Cost(der); err != nil {
		return nil, err
	}

	key, err := pkcs8.ParsePKCS8PrivateKey(der, password)
	if err != nil {
		if isPasswordError(err) {
			return nil, ErrInvalidPassword
		}
		return nil, fmt.Errorf("%w: failed to parse PKCS#8: %v", types.ErrMalformedKey, err)
	}

	plain, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrUnsupportedAlgorithm, err)
	}
	return plain, nil
}

// checkPBES2Cost rejects an EncryptedPrivateKeyInfo whose PBES2 key
// derivation parameters exceed the kdf ceilings. Structures it cannot read
// are left for the decryptor to report.
func checkPBES2Cost(der []byte) error {
	input := cryptobyte.String(der)
	var info, alg, params, kdfAlg, kdfParams, salt cryptobyte.String
	var oid asn1.ObjectIdentifier
	if !input.ReadASN1(&info, cbasn1.SEQUENCE) ||
		!info.ReadASN1(&alg, cbasn1.SEQUENCE) ||
		!alg.ReadASN1ObjectIdentifier(&oid) ||
		!oid.Equal(OIDPBES2) {
		return nil
	}
	if !alg.ReadASN1(&params, cbasn1.SEQUENCE) ||
		!params.ReadASN1(&kdfAlg, cbasn1.SEQUENCE) ||
		!kdfAlg.ReadASN1ObjectIdentifier(&oid) ||
		!kdfAlg.ReadASN1(&kdfParams, cbasn1.SEQUENCE) ||
		!kdfParams.ReadASN1(&salt, cbasn1.OCTET_STRING) {
		return nil
	}

	switch {
	case oid.Equal(OIDPBKDF2):
		var iterations int64
		if kdfParams.ReadASN1Integer(&iterations) && iterations > kdf.MaxPBKDF2Iterations {
			return fmt.Errorf("%w: %d exceeds %d", kdf.ErrInvalidIterations, iterations, kdf.MaxPBKDF2Iterations)
		}
	case oid.Equal(OIDScrypt):
		var n, r, p int64
		if !kdfParams.ReadASN1Integer(&n) || !kdfParams.ReadASN1Integer(&r) || !kdfParams.ReadASN1Integer(&p) {
			return nil
		}
		if n > kdf.MaxScryptN || r > kdf.MaxScryptMemory || p > kdf.MaxScryptP {
			return fmt.Errorf("%w: N=%d r=%d p=%d", kdf.ErrInvalidCost, n, r, p)
		}
		return kdf.CheckScryptCost(int(n), int(r), int(p))
	}
	return nil
}

// isPasswordError checks if an error is related to an incorrect password.
// A wrong key usually surfaces as bad padding and then as garbage ASN.1.
func isPasswordError(err error) bool {
	msg := err.Error()
	for _, s := range []string{"incorrect password", "asn1: structure error", "tags don't match", "padding"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
