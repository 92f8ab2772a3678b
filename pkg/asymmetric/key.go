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
	"bytes"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"fmt"

	"filippo.io/edwards25519"

	"github.com/jeremyhahn/go-keytool/pkg/container"
	"github.com/jeremyhahn/go-keytool/pkg/crypto/curves"
	"github.com/jeremyhahn/go-keytool/pkg/encoding"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// Key is the algorithm-tagged intermediate form of a decoded key. The
// family-specific payload is kept exactly as it appeared in its container so
// re-encoding copies key material instead of recomputing it.
type Key struct {
	Family  types.AlgorithmFamily
	Private bool

	rsa   []byte                 // PKCS#1 RSAPrivateKey or RSAPublicKey
	ec    *encoding.ECPrivateKey // NamedCurve is always nil
	point []byte                 // EC public point as stored
	seed  []byte                 // Ed25519 private seed
	edPub []byte                 // Ed25519 public key
}

// Load decodes key bytes stored in container d. The key must be of the
// stated family; a mismatch (including a different RSA size or curve) is
// ErrMalformedKey.
func Load(data []byte, d types.KeyContainerDescriptor, private bool, family types.AlgorithmFamily) (*Key, error) {
	der, err := Unframe(data, d, private)
	if err != nil {
		return nil, err
	}
	k, err := DecodeDER(der, d.Pkcs, private, family)
	if err != nil {
		return nil, err
	}
	if k.Family != family {
		return nil, fmt.Errorf("%w: key is %s, not %s", types.ErrMalformedKey, k.Family, family)
	}
	return k, nil
}

// DecodeDER parses a DER key stored in the given PKCS family. hint names the
// curve for SEC1 structures that do not carry one and may be the zero value.
func DecodeDER(der []byte, pkcs types.PkcsFamily, private bool, hint types.AlgorithmFamily) (*Key, error) {
	if len(der) == 0 {
		return nil, fmt.Errorf("%w: empty key", types.ErrMalformedKey)
	}
	switch {
	case pkcs == types.PKCS1 && private:
		return decodePKCS1Private(der)
	case pkcs == types.PKCS1:
		return decodePKCS1Public(der)
	case pkcs == types.PKCS8 && private:
		return decodePKCS8Private(der)
	case pkcs == types.PKCS8:
		return decodeSPKI(der)
	case pkcs == types.SEC1 && private:
		return decodeSEC1Private(der, hint)
	case pkcs == types.SEC1:
		return decodeSEC1Public(der, hint)
	}
	return nil, fmt.Errorf("%w: pkcs family %q", types.ErrUnsupportedContainer, pkcs)
}

func decodePKCS1Private(der []byte) (*Key, error) {
	priv, err := x509.ParsePKCS1PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: PKCS#1 private key: %v", types.ErrMalformedKey, err)
	}
	return &Key{Family: types.RSA(priv.N.BitLen()), Private: true, rsa: bytes.Clone(der)}, nil
}

func decodePKCS1Public(der []byte) (*Key, error) {
	pub, err := x509.ParsePKCS1PublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: PKCS#1 public key: %v", types.ErrMalformedKey, err)
	}
	return &Key{Family: types.RSA(pub.N.BitLen()), rsa: bytes.Clone(der)}, nil
}

func decodePKCS8Private(der []byte) (*Key, error) {
	info, err := encoding.ParsePrivateKeyInfo(der)
	if err != nil {
		return nil, err
	}

	alg := info.Algorithm.Algorithm
	switch {
	case alg.Equal(encoding.OIDPublicKeyRSA):
		return decodePKCS1Private(info.PrivateKey)

	case alg.Equal(encoding.OIDPublicKeyECDSA):
		oid, err := info.Algorithm.NamedCurve()
		if err != nil {
			return nil, err
		}
		c, err := curves.ByOID(oid)
		if err != nil {
			return nil, err
		}
		ec, err := encoding.ParseECPrivateKey(info.PrivateKey)
		if err != nil {
			return nil, err
		}
		if ec.NamedCurve != nil && !ec.NamedCurve.Equal(oid) {
			return nil, fmt.Errorf("%w: inner curve %s does not match %s", types.ErrMalformedKey, ec.NamedCurve, oid)
		}
		return newECPrivate(c, ec)

	case alg.Equal(encoding.OIDPublicKeyEd25519):
		seed, err := encoding.ParseEd25519PrivateKey(info.PrivateKey)
		if err != nil {
			return nil, err
		}
		if len(seed) != ed25519.SeedSize {
			return nil, fmt.Errorf("%w: Ed25519 seed is %d bytes", types.ErrMalformedKey, len(seed))
		}
		return &Key{Family: types.Edwards(types.CurveCurve25519), Private: true, seed: seed}, nil
	}
	return nil, fmt.Errorf("%w: PKCS#8 algorithm %s", types.ErrUnsupportedAlgorithm, alg)
}

func decodeSPKI(der []byte) (*Key, error) {
	spki, err := encoding.ParseSubjectPublicKeyInfo(der)
	if err != nil {
		return nil, err
	}

	alg := spki.Algorithm.Algorithm
	switch {
	case alg.Equal(encoding.OIDPublicKeyRSA):
		return decodePKCS1Public(spki.PublicKey)

	case alg.Equal(encoding.OIDPublicKeyECDSA):
		oid, err := spki.Algorithm.NamedCurve()
		if err != nil {
			return nil, err
		}
		c, err := curves.ByOID(oid)
		if err != nil {
			return nil, err
		}
		if _, err := c.ParsePoint(spki.PublicKey); err != nil {
			return nil, err
		}
		return &Key{Family: types.EC(c.Name()), point: spki.PublicKey}, nil

	case alg.Equal(encoding.OIDPublicKeyEd25519):
		if _, err := new(edwards25519.Point).SetBytes(spki.PublicKey); err != nil {
			return nil, fmt.Errorf("%w: Ed25519 public key: %v", types.ErrMalformedKey, err)
		}
		return &Key{Family: types.Edwards(types.CurveCurve25519), edPub: spki.PublicKey}, nil
	}
	return nil, fmt.Errorf("%w: SPKI algorithm %s", types.ErrUnsupportedAlgorithm, alg)
}

func decodeSEC1Private(der []byte, hint types.AlgorithmFamily) (*Key, error) {
	ec, err := encoding.ParseECPrivateKey(der)
	if err != nil {
		return nil, err
	}

	var c curves.Curve
	switch {
	case ec.NamedCurve != nil:
		c, err = curves.ByOID(ec.NamedCurve)
	case hint.IsEC() && hint.Curve != "":
		c, err = curves.Lookup(hint.Curve)
	default:
		return nil, fmt.Errorf("%w: SEC1 key does not name its curve", types.ErrMalformedKey)
	}
	if err != nil {
		return nil, err
	}
	return newECPrivate(c, ec)
}

func decodeSEC1Public(point []byte, hint types.AlgorithmFamily) (*Key, error) {
	if hint.IsEC() && hint.Curve != "" {
		c, err := curves.Lookup(hint.Curve)
		if err != nil {
			return nil, err
		}
		if _, err := c.ParsePoint(point); err != nil {
			return nil, err
		}
		return &Key{Family: types.EC(c.Name()), point: bytes.Clone(point)}, nil
	}

	for _, c := range curves.All() {
		if _, err := c.ParsePoint(point); err == nil {
			return &Key{Family: types.EC(c.Name()), point: bytes.Clone(point)}, nil
		}
	}
	return nil, fmt.Errorf("%w: not a point on any supported curve", types.ErrMalformedKey)
}

// newECPrivate checks the scalar against the curve and, when the structure
// embeds a public key, that it belongs to the scalar.
func newECPrivate(c curves.Curve, ec *encoding.ECPrivateKey) (*Key, error) {
	scalar, err := curves.NormalizeScalar(c, ec.PrivateKey)
	if err != nil {
		return nil, err
	}
	defer clear(scalar)

	derived, err := c.PublicPoint(scalar)
	if err != nil {
		return nil, err
	}
	if ec.PublicKey != nil {
		embedded, err := c.ParsePoint(ec.PublicKey)
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(embedded, derived) {
			return nil, fmt.Errorf("%w: embedded public key does not match the private scalar", types.ErrMalformedKey)
		}
	}

	return &Key{
		Family:  types.EC(c.Name()),
		Private: true,
		ec: &encoding.ECPrivateKey{
			PrivateKey: bytes.Clone(ec.PrivateKey),
			PublicKey:  bytes.Clone(ec.PublicKey),
		},
	}, nil
}

// Encode serializes the key into container d.
func (k *Key) Encode(d types.KeyContainerDescriptor) ([]byte, error) {
	check := container.RequirePublic
	if k.Private {
		check = container.Require
	}
	if err := check(d, k.Family); err != nil {
		return nil, err
	}

	der, err := k.marshalDER(d.Pkcs)
	if err != nil {
		return nil, err
	}
	if d.Encoding == types.PEM {
		defer clear(der)
	}
	return Frame(der, d, k.Private)
}

func (k *Key) marshalDER(pkcs types.PkcsFamily) ([]byte, error) {
	switch {
	case k.Family.IsRSA():
		if pkcs == types.PKCS1 {
			return bytes.Clone(k.rsa), nil
		}
		if k.Private {
			info := &encoding.PrivateKeyInfo{Algorithm: encoding.RSAAlgorithm(), PrivateKey: k.rsa}
			return info.Marshal()
		}
		spki := &encoding.SubjectPublicKeyInfo{Algorithm: encoding.RSAAlgorithm(), PublicKey: k.rsa}
		return spki.Marshal()

	case k.Family.IsEC():
		c, err := curves.Lookup(k.Family.Curve)
		if err != nil {
			return nil, err
		}
		if k.Private {
			if pkcs == types.SEC1 {
				sec1 := *k.ec
				sec1.NamedCurve = c.OID()
				return sec1.Marshal()
			}
			inner, err := k.ec.Marshal()
			if err != nil {
				return nil, err
			}
			info := &encoding.PrivateKeyInfo{Algorithm: encoding.NamedCurveAlgorithm(c.OID()), PrivateKey: inner}
			return info.Marshal()
		}
		if pkcs == types.SEC1 {
			return bytes.Clone(k.point), nil
		}
		spki := &encoding.SubjectPublicKeyInfo{Algorithm: encoding.NamedCurveAlgorithm(c.OID()), PublicKey: k.point}
		return spki.Marshal()

	case k.Family.IsEdwards():
		if k.Private {
			inner, err := encoding.MarshalEd25519PrivateKey(k.seed)
			if err != nil {
				return nil, err
			}
			info := &encoding.PrivateKeyInfo{Algorithm: encoding.Ed25519Algorithm(), PrivateKey: inner}
			return info.Marshal()
		}
		spki := &encoding.SubjectPublicKeyInfo{Algorithm: encoding.Ed25519Algorithm(), PublicKey: k.edPub}
		return spki.Marshal()
	}
	return nil, fmt.Errorf("%w: %s", types.ErrUnsupportedAlgorithm, k.Family)
}

// Public returns the public half of the key. It is deterministic and returns
// k itself for public keys.
func (k *Key) Public() (*Key, error) {
	if !k.Private {
		return k, nil
	}
	switch {
	case k.Family.IsRSA():
		priv, err := k.RSAPrivateKey()
		if err != nil {
			return nil, err
		}
		return &Key{Family: k.Family, rsa: x509.MarshalPKCS1PublicKey(&priv.PublicKey)}, nil
	case k.Family.IsEC():
		point, err := k.Point()
		if err != nil {
			return nil, err
		}
		return &Key{Family: k.Family, point: point}, nil
	case k.Family.IsEdwards():
		return &Key{Family: k.Family, edPub: k.EdwardsPublicKey()}, nil
	}
	return nil, fmt.Errorf("%w: %s", types.ErrUnsupportedAlgorithm, k.Family)
}

// RSAPrivateKey returns the RSA private key.
func (k *Key) RSAPrivateKey() (*rsa.PrivateKey, error) {
	if !k.Family.IsRSA() || !k.Private {
		return nil, fmt.Errorf("%w: not an RSA private key", types.ErrMalformedKey)
	}
	priv, err := x509.ParsePKCS1PrivateKey(k.rsa)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedKey, err)
	}
	return priv, nil
}

// RSAPublicKey returns the RSA public key of a public or private key.
func (k *Key) RSAPublicKey() (*rsa.PublicKey, error) {
	if k.Private {
		priv, err := k.RSAPrivateKey()
		if err != nil {
			return nil, err
		}
		return &priv.PublicKey, nil
	}
	if !k.Family.IsRSA() {
		return nil, fmt.Errorf("%w: not an RSA key", types.ErrMalformedKey)
	}
	pub, err := x509.ParsePKCS1PublicKey(k.rsa)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedKey, err)
	}
	return pub, nil
}

// Curve returns the curve backend of an EC key.
func (k *Key) Curve() (curves.Curve, error) {
	if !k.Family.IsEC() {
		return nil, fmt.Errorf("%w: %s is not an elliptic curve key", types.ErrMalformedKey, k.Family)
	}
	return curves.Lookup(k.Family.Curve)
}

// Scalar returns the fixed-length private scalar of an EC key.
func (k *Key) Scalar() ([]byte, error) {
	c, err := k.Curve()
	if err != nil {
		return nil, err
	}
	if !k.Private {
		return nil, fmt.Errorf("%w: public key has no scalar", types.ErrMalformedKey)
	}
	return curves.NormalizeScalar(c, k.ec.PrivateKey)
}

// Point returns the uncompressed public point of an EC key.
func (k *Key) Point() ([]byte, error) {
	c, err := k.Curve()
	if err != nil {
		return nil, err
	}
	if !k.Private {
		return c.ParsePoint(k.point)
	}
	scalar, err := k.Scalar()
	if err != nil {
		return nil, err
	}
	defer clear(scalar)
	return c.PublicPoint(scalar)
}

// Seed returns the Ed25519 private seed, or nil for public keys.
func (k *Key) Seed() []byte {
	return bytes.Clone(k.seed)
}

// EdwardsPublicKey returns the Ed25519 public key.
func (k *Key) EdwardsPublicKey() []byte {
	if k.Private {
		priv := ed25519.NewKeyFromSeed(k.seed)
		defer clear(priv)
		return bytes.Clone(priv[ed25519.SeedSize:])
	}
	return bytes.Clone(k.edPub)
}

// Zero overwrites the private material held by the key.
func (k *Key) Zero() {
	if !k.Private {
		return
	}
	clear(k.rsa)
	clear(k.seed)
	if k.ec != nil {
		clear(k.ec.PrivateKey)
	}
}

// Unframe removes the PEM armor required by d and returns the DER payload.
// The PEM label must match the PKCS family and key visibility.
func Unframe(data []byte, d types.KeyContainerDescriptor, private bool) ([]byte, error) {
	if d.Encoding == types.PEM {
		label := container.Label(d.Pkcs, private)
		if label == "" {
			return nil, fmt.Errorf("%w: %s public keys have no PEM form", types.ErrUnsupportedContainer, d.Pkcs)
		}
		return encoding.DecodePEMLabel(data, label)
	}
	if encoding.IsPEM(data) {
		return nil, fmt.Errorf("%w: expected DER, found PEM armor", types.ErrMalformedKey)
	}
	return data, nil
}

// Frame wraps a DER payload in the PEM armor of d, or returns it unchanged
// for DER containers. der is never modified.
func Frame(der []byte, d types.KeyContainerDescriptor, private bool) ([]byte, error) {
	if d.Encoding == types.DER {
		return der, nil
	}
	return encoding.EncodePEM(container.Label(d.Pkcs, private), der)
}
