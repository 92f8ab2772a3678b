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
	"encoding/asn1"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

var (
	tagECParameters = cbasn1.Tag(0).Constructed().ContextSpecific()
	tagECPublicKey  = cbasn1.Tag(1).Constructed().ContextSpecific()
)

// AlgorithmIdentifier is the algorithm of a PKCS#8 or SubjectPublicKeyInfo
// structure. Parameters holds the complete DER element (tag included) or nil
// when the parameters are absent, so re-encoding reproduces the input.
type AlgorithmIdentifier struct {
	Algorithm  asn1.ObjectIdentifier
	Parameters []byte
}

// NamedCurveAlgorithm returns an id-ecPublicKey identifier for the curve OID.
func NamedCurveAlgorithm(curve asn1.ObjectIdentifier) AlgorithmIdentifier {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1ObjectIdentifier(curve)
	return AlgorithmIdentifier{Algorithm: OIDPublicKeyECDSA, Parameters: b.BytesOrPanic()}
}

// RSAAlgorithm returns the rsaEncryption identifier with NULL parameters.
func RSAAlgorithm() AlgorithmIdentifier {
	return AlgorithmIdentifier{Algorithm: OIDPublicKeyRSA, Parameters: []byte{0x05, 0x00}}
}

// Ed25519Algorithm returns the id-Ed25519 identifier, which has no parameters.
func Ed25519Algorithm() AlgorithmIdentifier {
	return AlgorithmIdentifier{Algorithm: OIDPublicKeyEd25519}
}

// NamedCurve returns the curve OID carried in the parameters.
func (a AlgorithmIdentifier) NamedCurve() (asn1.ObjectIdentifier, error) {
	params := cryptobyte.String(a.Parameters)
	var oid asn1.ObjectIdentifier
	if !params.ReadASN1ObjectIdentifier(&oid) || !params.Empty() {
		return nil, ErrUnsupportedParameters
	}
	return oid, nil
}

func readAlgorithmIdentifier(s *cryptobyte.String) (AlgorithmIdentifier, bool) {
	var seq cryptobyte.String
	var alg AlgorithmIdentifier
	if !s.ReadASN1(&seq, cbasn1.SEQUENCE) || !seq.ReadASN1ObjectIdentifier(&alg.Algorithm) {
		return alg, false
	}
	if !seq.Empty() {
		var params cryptobyte.String
		var tag cbasn1.Tag
		if !seq.ReadAnyASN1Element(&params, &tag) || !seq.Empty() {
			return alg, false
		}
		alg.Parameters = append([]byte(nil), params...)
	}
	return alg, true
}

func addAlgorithmIdentifier(b *cryptobyte.Builder, alg AlgorithmIdentifier) {
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1ObjectIdentifier(alg.Algorithm)
		if len(alg.Parameters) > 0 {
			b.AddBytes(alg.Parameters)
		}
	})
}

// PrivateKeyInfo is a PKCS#8 (RFC 5208 / RFC 5958) private key. PrivateKey is
// the content of the privateKey OCTET STRING. Trailing keeps any attributes or
// v2 public key fields verbatim.
type PrivateKeyInfo struct {
	Version    int64
	Algorithm  AlgorithmIdentifier
	PrivateKey []byte
	Trailing   []byte
}

// ParsePrivateKeyInfo parses a DER PKCS#8 PrivateKeyInfo.
func ParsePrivateKeyInfo(der []byte) (*PrivateKeyInfo, error) {
	input := cryptobyte.String(der)
	var seq cryptobyte.String
	if !input.ReadASN1(&seq, cbasn1.SEQUENCE) || !input.Empty() {
		return nil, fmt.Errorf("%w: PKCS#8 is not a single SEQUENCE", ErrInvalidData)
	}

	info := &PrivateKeyInfo{}
	if !seq.ReadASN1Int64WithTag(&info.Version, cbasn1.INTEGER) || info.Version < 0 || info.Version > 1 {
		return nil, fmt.Errorf("%w: PKCS#8 version", ErrInvalidData)
	}
	var ok bool
	if info.Algorithm, ok = readAlgorithmIdentifier(&seq); !ok {
		return nil, fmt.Errorf("%w: PKCS#8 algorithm identifier", ErrInvalidData)
	}
	var key cryptobyte.String
	if !seq.ReadASN1(&key, cbasn1.OCTET_STRING) {
		return nil, fmt.Errorf("%w: PKCS#8 private key", ErrInvalidData)
	}
	info.PrivateKey = append([]byte(nil), key...)
	if !seq.Empty() {
		info.Trailing = append([]byte(nil), seq...)
	}
	return info, nil
}

// Marshal encodes the PrivateKeyInfo as DER.
func (info *PrivateKeyInfo) Marshal() ([]byte, error) {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1Int64(info.Version)
		addAlgorithmIdentifier(b, info.Algorithm)
		b.AddASN1OctetString(info.PrivateKey)
		b.AddBytes(info.Trailing)
	})
	return b.Bytes()
}

// SubjectPublicKeyInfo is an X.509 public key. PublicKey is the content of
// the subjectPublicKey BIT STRING.
type SubjectPublicKeyInfo struct {
	Algorithm AlgorithmIdentifier
	PublicKey []byte
}

// ParseSubjectPublicKeyInfo parses a DER SubjectPublicKeyInfo.
func ParseSubjectPublicKeyInfo(der []byte) (*SubjectPublicKeyInfo, error) {
	input := cryptobyte.String(der)
	var seq cryptobyte.String
	if !input.ReadASN1(&seq, cbasn1.SEQUENCE) || !input.Empty() {
		return nil, fmt.Errorf("%w: SPKI is not a single SEQUENCE", ErrInvalidData)
	}

	spki := &SubjectPublicKeyInfo{}
	var ok bool
	if spki.Algorithm, ok = readAlgorithmIdentifier(&seq); !ok {
		return nil, fmt.Errorf("%w: SPKI algorithm identifier", ErrInvalidData)
	}
	if !seq.ReadASN1BitStringAsBytes(&spki.PublicKey) || !seq.Empty() {
		return nil, fmt.Errorf("%w: SPKI public key", ErrInvalidData)
	}
	return spki, nil
}

// Marshal encodes the SubjectPublicKeyInfo as DER.
func (spki *SubjectPublicKeyInfo) Marshal() ([]byte, error) {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		addAlgorithmIdentifier(b, spki.Algorithm)
		b.AddASN1BitString(spki.PublicKey)
	})
	return b.Bytes()
}

// ECPrivateKey is a SEC1 (RFC 5915) elliptic curve private key. NamedCurve
// and PublicKey are nil when the optional fields are absent.
type ECPrivateKey struct {
	PrivateKey []byte
	NamedCurve asn1.ObjectIdentifier
	PublicKey  []byte
}

// ParseECPrivateKey parses a DER SEC1 ECPrivateKey.
func ParseECPrivateKey(der []byte) (*ECPrivateKey, error) {
	input := cryptobyte.String(der)
	var seq cryptobyte.String
	if !input.ReadASN1(&seq, cbasn1.SEQUENCE) || !input.Empty() {
		return nil, fmt.Errorf("%w: SEC1 is not a single SEQUENCE", ErrInvalidData)
	}

	var version int64
	if !seq.ReadASN1Int64WithTag(&version, cbasn1.INTEGER) || version != 1 {
		return nil, fmt.Errorf("%w: SEC1 version", ErrInvalidData)
	}

	key := &ECPrivateKey{}
	var scalar cryptobyte.String
	if !seq.ReadASN1(&scalar, cbasn1.OCTET_STRING) || len(scalar) == 0 {
		return nil, fmt.Errorf("%w: SEC1 private key", ErrInvalidData)
	}
	key.PrivateKey = append([]byte(nil), scalar...)

	var params cryptobyte.String
	var present bool
	if !seq.ReadOptionalASN1(&params, &present, tagECParameters) {
		return nil, fmt.Errorf("%w: SEC1 parameters", ErrInvalidData)
	}
	if present {
		if !params.ReadASN1ObjectIdentifier(&key.NamedCurve) || !params.Empty() {
			return nil, ErrUnsupportedParameters
		}
	}

	var pub cryptobyte.String
	if !seq.ReadOptionalASN1(&pub, &present, tagECPublicKey) {
		return nil, fmt.Errorf("%w: SEC1 public key", ErrInvalidData)
	}
	if present {
		if !pub.ReadASN1BitStringAsBytes(&key.PublicKey) || !pub.Empty() {
			return nil, fmt.Errorf("%w: SEC1 public key", ErrInvalidData)
		}
	}

	if !seq.Empty() {
		return nil, fmt.Errorf("%w: trailing data in SEC1 key", ErrInvalidData)
	}
	return key, nil
}

// Marshal encodes the ECPrivateKey as DER.
func (k *ECPrivateKey) Marshal() ([]byte, error) {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1Int64(1)
		b.AddASN1OctetString(k.PrivateKey)
		if k.NamedCurve != nil {
			b.AddASN1(tagECParameters, func(b *cryptobyte.Builder) {
				b.AddASN1ObjectIdentifier(k.NamedCurve)
			})
		}
		if k.PublicKey != nil {
			b.AddASN1(tagECPublicKey, func(b *cryptobyte.Builder) {
				b.AddASN1BitString(k.PublicKey)
			})
		}
	})
	return b.Bytes()
}

// ParseEd25519PrivateKey unwraps the CurvePrivateKey OCTET STRING (RFC 8410)
// found inside a PKCS#8 privateKey field.
func ParseEd25519PrivateKey(inner []byte) ([]byte, error) {
	input := cryptobyte.String(inner)
	var seed cryptobyte.String
	if !input.ReadASN1(&seed, cbasn1.OCTET_STRING) || !input.Empty() {
		return nil, fmt.Errorf("%w: Ed25519 private key", ErrInvalidData)
	}
	return append([]byte(nil), seed...), nil
}

// MarshalEd25519PrivateKey wraps an Ed25519 seed as a CurvePrivateKey.
func MarshalEd25519PrivateKey(seed []byte) ([]byte, error) {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1OctetString(seed)
	return b.Bytes()
}
