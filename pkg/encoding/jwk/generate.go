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

package jwk

import (
	"fmt"

	"github.com/go-jose/go-jose/v4"
	"github.com/google/uuid"

	"github.com/jeremyhahn/go-keytool/pkg/asymmetric"
	"github.com/jeremyhahn/go-keytool/pkg/crypto/rand"
	"github.com/jeremyhahn/go-keytool/pkg/crypto/x25519"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// ES256K is the RFC 8812 secp256k1 signature algorithm, which go-jose does
// not define.
const ES256K = "ES256K"

// Key uses
const (
	UseSignature  = "sig"
	UseEncryption = "enc"
)

type algorithmClass struct {
	alg string
	use string

	// Exactly one of the following selects the key material.
	octBytes int
	family   types.AlgorithmFamily
	x25519   bool
}

var algorithmTable = []algorithmClass{
	{alg: string(jose.HS256), use: UseSignature, octBytes: 32},
	{alg: string(jose.HS384), use: UseSignature, octBytes: 48},
	{alg: string(jose.HS512), use: UseSignature, octBytes: 64},

	{alg: string(jose.RS256), use: UseSignature, family: types.RSA(2048)},
	{alg: string(jose.RS384), use: UseSignature, family: types.RSA(2048)},
	{alg: string(jose.RS512), use: UseSignature, family: types.RSA(2048)},
	{alg: string(jose.PS256), use: UseSignature, family: types.RSA(2048)},
	{alg: string(jose.PS384), use: UseSignature, family: types.RSA(2048)},
	{alg: string(jose.PS512), use: UseSignature, family: types.RSA(2048)},

	{alg: string(jose.ES256), use: UseSignature, family: types.EC(types.CurveP256)},
	{alg: string(jose.ES384), use: UseSignature, family: types.EC(types.CurveP384)},
	{alg: string(jose.ES512), use: UseSignature, family: types.EC(types.CurveP521)},
	{alg: ES256K, use: UseSignature, family: types.EC(types.CurveSecp256k1)},
	{alg: string(jose.EdDSA), use: UseSignature, family: types.Edwards(types.CurveCurve25519)},

	{alg: string(jose.RSA1_5), use: UseEncryption, family: types.RSA(2048)},
	{alg: string(jose.RSA_OAEP), use: UseEncryption, family: types.RSA(2048)},
	{alg: string(jose.RSA_OAEP_256), use: UseEncryption, family: types.RSA(2048)},

	{alg: string(jose.A128KW), use: UseEncryption, octBytes: 16},
	{alg: string(jose.A192KW), use: UseEncryption, octBytes: 24},
	{alg: string(jose.A256KW), use: UseEncryption, octBytes: 32},
	{alg: string(jose.A128GCMKW), use: UseEncryption, octBytes: 16},
	{alg: string(jose.A192GCMKW), use: UseEncryption, octBytes: 24},
	{alg: string(jose.A256GCMKW), use: UseEncryption, octBytes: 32},

	{alg: string(jose.A128GCM), use: UseEncryption, octBytes: 16},
	{alg: string(jose.A192GCM), use: UseEncryption, octBytes: 24},
	{alg: string(jose.A256GCM), use: UseEncryption, octBytes: 32},
	{alg: string(jose.A128CBC_HS256), use: UseEncryption, octBytes: 32},
	{alg: string(jose.A192CBC_HS384), use: UseEncryption, octBytes: 48},
	{alg: string(jose.A256CBC_HS512), use: UseEncryption, octBytes: 64},

	{alg: string(jose.ECDH_ES), use: UseEncryption, x25519: true},
	{alg: string(jose.ECDH_ES_A128KW), use: UseEncryption, x25519: true},
	{alg: string(jose.ECDH_ES_A192KW), use: UseEncryption, x25519: true},
	{alg: string(jose.ECDH_ES_A256KW), use: UseEncryption, x25519: true},
}

// Algorithms returns the JOSE algorithms Generate accepts.
func Algorithms() []string {
	out := make([]string, len(algorithmTable))
	for i, c := range algorithmTable {
		out[i] = c.alg
	}
	return out
}

func lookupAlgorithm(alg string) (algorithmClass, error) {
	if alg == "" {
		return algorithmClass{}, fmt.Errorf("%w: JWK algorithm is required", types.ErrMalformedInput)
	}
	for _, c := range algorithmTable {
		if c.alg == alg {
			return c, nil
		}
	}
	return algorithmClass{}, fmt.Errorf("%w: JWK algorithm %q", types.ErrUnsupportedAlgorithm, alg)
}

// Generate creates a fresh private JWK suitable for alg. An empty kid is
// replaced by a random UUID.
//
// Example:
//
//	key, err := jwk.Generate("ES256", "")
//	json, _ := key.Marshal()
func Generate(alg, kid string) (*JWK, error) {
	class, err := lookupAlgorithm(alg)
	if err != nil {
		return nil, err
	}
	if kid == "" {
		kid = uuid.NewString()
	}

	var jwk *JWK
	switch {
	case class.octBytes > 0:
		jwk, err = generateOct(class.octBytes)
	case class.x25519:
		jwk, err = generateX25519()
	default:
		jwk, err = generateAsymmetric(class.family)
	}
	if err != nil {
		return nil, err
	}

	jwk.SetMetadata(Metadata{KeyID: kid, Algorithm: class.alg, Use: class.use})
	return jwk, nil
}

func generateOct(size int) (*JWK, error) {
	k, err := rand.Bytes(size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrGenerationFailed, err)
	}
	defer clear(k)
	return FromSymmetricKey(k)
}

func generateX25519() (*JWK, error) {
	kp, err := x25519.New().GenerateKey()
	if err != nil {
		return nil, err
	}
	defer clear(kp.PrivateKey)
	return &JWK{
		Kty: string(KeyTypeOKP),
		Crv: string(CurveX25519),
		X:   b64.EncodeToString(kp.PublicKey),
		D:   b64.EncodeToString(kp.PrivateKey),
	}, nil
}

func generateAsymmetric(family types.AlgorithmFamily) (*JWK, error) {
	kp, err := asymmetric.Generate(family, types.PKCS8DER)
	if err != nil {
		return nil, err
	}
	defer clear(kp.PrivateKey)

	k, err := asymmetric.DecodeDER(kp.PrivateKey, types.PKCS8, true, family)
	if err != nil {
		return nil, err
	}
	defer k.Zero()
	return FromKey(k)
}

// FromSymmetricKey creates an oct JWK from raw key material.
func FromSymmetricKey(key []byte) (*JWK, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: symmetric key cannot be empty", types.ErrInvalidInputLength)
	}
	return &JWK{
		Kty: string(KeyTypeOct),
		K:   b64.EncodeToString(key),
	}, nil
}
