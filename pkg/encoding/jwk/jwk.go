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
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/jeremyhahn/go-keytool/pkg/asymmetric"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// JWK represents a JSON Web Key as defined in RFC 7517.
// It supports RSA, EC, OKP (Ed25519, X25519) and symmetric (oct) key types.
type JWK struct {
	// Common fields (all key types)
	Kty    string   `json:"kty"`               // Key Type (required)
	Use    string   `json:"use,omitempty"`     // Public Key Use (sig, enc)
	KeyOps []string `json:"key_ops,omitempty"` // Key Operations
	Alg    string   `json:"alg,omitempty"`     // Algorithm
	Kid    string   `json:"kid,omitempty"`     // Key ID

	// RSA public key fields (RFC 7518 Section 6.3.1)
	N string `json:"n,omitempty"` // Modulus (base64url)
	E string `json:"e,omitempty"` // Exponent (base64url)

	// RSA private key fields (RFC 7518 Section 6.3.2)
	D  string `json:"d,omitempty"`  // Private Exponent, or EC/OKP private key
	P  string `json:"p,omitempty"`  // First Prime Factor
	Q  string `json:"q,omitempty"`  // Second Prime Factor
	DP string `json:"dp,omitempty"` // First Factor CRT Exponent
	DQ string `json:"dq,omitempty"` // Second Factor CRT Exponent
	QI string `json:"qi,omitempty"` // First CRT Coefficient

	// EC and OKP fields (RFC 7518 Section 6.2.1, RFC 8037)
	Crv string `json:"crv,omitempty"` // Curve
	X   string `json:"x,omitempty"`   // X Coordinate or OKP public key (base64url)
	Y   string `json:"y,omitempty"`   // Y Coordinate (base64url)

	// Symmetric key field (RFC 7518 Section 6.4)
	K string `json:"k,omitempty"` // Key Value (base64url)
}

// KeyType represents the key type (kty) parameter values
type KeyType string

const (
	KeyTypeRSA KeyType = "RSA"
	KeyTypeEC  KeyType = "EC"
	KeyTypeOKP KeyType = "OKP" // Octet Key Pair (Ed25519, X25519)
	KeyTypeOct KeyType = "oct" // Symmetric key
)

// Curve represents JOSE curve names
type Curve string

const (
	CurveP256      Curve = "P-256"
	CurveP384      Curve = "P-384"
	CurveP521      Curve = "P-521"
	CurveSecp256k1 Curve = "secp256k1" // RFC 8812
	CurveEd25519   Curve = "Ed25519"
	CurveX25519    Curve = "X25519"
)

// Metadata is copied verbatim into an emitted JWK.
type Metadata struct {
	KeyID      string   `json:"kid,omitempty"`
	Algorithm  string   `json:"alg,omitempty"`
	Use        string   `json:"use,omitempty"`
	Operations []string `json:"key_ops,omitempty"`
}

var b64 = base64.RawURLEncoding

// Emit parses key bytes in any supported container, checks the parsed key
// belongs to family and serializes it with meta as JWK JSON. Private keys
// include their private members.
func Emit(key []byte, family types.AlgorithmFamily, meta Metadata) (string, error) {
	if err := family.Validate(); err != nil {
		return "", err
	}
	k, _, err := asymmetric.Detect(key)
	if err != nil {
		return "", err
	}
	defer k.Zero()

	if k.Family != family {
		return "", fmt.Errorf("%w: key is %s, expected %s", types.ErrMalformedKey, k.Family, family)
	}

	jwk, err := FromKey(k)
	if err != nil {
		return "", err
	}
	jwk.SetMetadata(meta)

	out, err := jwk.Marshal()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// SetMetadata copies meta onto the key.
func (jwk *JWK) SetMetadata(meta Metadata) {
	jwk.Kid = meta.KeyID
	jwk.Alg = meta.Algorithm
	jwk.Use = meta.Use
	jwk.KeyOps = meta.Operations
}

// FromKey maps a decoded key onto JOSE members.
func FromKey(k *asymmetric.Key) (*JWK, error) {
	switch {
	case k.Family.IsRSA():
		return fromRSA(k)
	case k.Family.IsEC():
		return fromEC(k)
	case k.Family.IsEdwards():
		return fromEdwards(k)
	}
	return nil, fmt.Errorf("%w: no JWK mapping for %s", types.ErrUnsupportedAlgorithm, k.Family)
}

func fromRSA(k *asymmetric.Key) (*JWK, error) {
	if !k.Private {
		pub, err := k.RSAPublicKey()
		if err != nil {
			return nil, err
		}
		return &JWK{
			Kty: string(KeyTypeRSA),
			N:   b64.EncodeToString(pub.N.Bytes()),
			E:   b64.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}, nil
	}

	key, err := k.RSAPrivateKey()
	if err != nil {
		return nil, err
	}
	// Ensure CRT values are precomputed
	if key.Precomputed.Dp == nil {
		key.Precompute()
	}
	if len(key.Primes) != 2 {
		return nil, fmt.Errorf("%w: multi-prime RSA has no JWK mapping", types.ErrUnsupportedAlgorithm)
	}

	return &JWK{
		Kty: string(KeyTypeRSA),
		N:   b64.EncodeToString(key.N.Bytes()),
		E:   b64.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		D:   b64.EncodeToString(key.D.Bytes()),
		P:   b64.EncodeToString(key.Primes[0].Bytes()),
		Q:   b64.EncodeToString(key.Primes[1].Bytes()),
		DP:  b64.EncodeToString(key.Precomputed.Dp.Bytes()),
		DQ:  b64.EncodeToString(key.Precomputed.Dq.Bytes()),
		QI:  b64.EncodeToString(key.Precomputed.Qinv.Bytes()),
	}, nil
}

func fromEC(k *asymmetric.Key) (*JWK, error) {
	crv, err := CurveName(k.Family.Curve)
	if err != nil {
		return nil, err
	}
	point, err := k.Point()
	if err != nil {
		return nil, err
	}
	// Uncompressed SEC1: 0x04 || X || Y, coordinates padded to the field size
	size := (len(point) - 1) / 2
	jwk := &JWK{
		Kty: string(KeyTypeEC),
		Crv: string(crv),
		X:   b64.EncodeToString(point[1 : 1+size]),
		Y:   b64.EncodeToString(point[1+size:]),
	}
	if k.Private {
		scalar, err := k.Scalar()
		if err != nil {
			return nil, err
		}
		defer clear(scalar)
		jwk.D = b64.EncodeToString(scalar)
	}
	return jwk, nil
}

func fromEdwards(k *asymmetric.Key) (*JWK, error) {
	if k.Family.Curve != types.CurveCurve25519 {
		return nil, fmt.Errorf("%w: no JWK mapping for %s", types.ErrUnsupportedAlgorithm, k.Family)
	}
	jwk := &JWK{
		Kty: string(KeyTypeOKP),
		Crv: string(CurveEd25519),
		X:   b64.EncodeToString(k.EdwardsPublicKey()),
	}
	if k.Private {
		seed := k.Seed()
		defer clear(seed)
		jwk.D = b64.EncodeToString(seed)
	}
	return jwk, nil
}

// CurveName returns the JOSE name of an elliptic curve. SM2 has no
// registered JOSE curve.
func CurveName(c types.EllipticCurve) (Curve, error) {
	switch c {
	case types.CurveP256:
		return CurveP256, nil
	case types.CurveP384:
		return CurveP384, nil
	case types.CurveP521:
		return CurveP521, nil
	case types.CurveSecp256k1:
		return CurveSecp256k1, nil
	}
	return "", fmt.Errorf("%w: no JOSE curve for %s", types.ErrUnsupportedAlgorithm, c)
}

// Marshal returns the JSON encoding of the JWK.
func (jwk *JWK) Marshal() ([]byte, error) {
	return json.Marshal(jwk)
}

// MarshalIndent returns the indented JSON encoding of the JWK.
func (jwk *JWK) MarshalIndent(prefix, indent string) ([]byte, error) {
	return json.MarshalIndent(jwk, prefix, indent)
}

// Unmarshal parses the JSON-encoded data and stores the result in a JWK.
func Unmarshal(data []byte) (*JWK, error) {
	var jwk JWK
	if err := json.Unmarshal(data, &jwk); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal JWK: %v", types.ErrMalformedKey, err)
	}
	if jwk.Kty == "" {
		return nil, fmt.Errorf("%w: JWK missing required field: kty", types.ErrMalformedKey)
	}
	return &jwk, nil
}

// IsPrivate returns true if the JWK contains private key parameters.
func (jwk *JWK) IsPrivate() bool {
	return jwk.D != "" || jwk.K != ""
}

// Public returns a copy of the JWK without private members.
func (jwk *JWK) Public() *JWK {
	pub := *jwk
	pub.D, pub.P, pub.Q, pub.DP, pub.DQ, pub.QI, pub.K = "", "", "", "", "", "", ""
	return &pub
}
