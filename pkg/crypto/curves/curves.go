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

// Package curves provides the short Weierstrass curves behind one interface
// so the key engine, converter and ECIES orchestrator never branch on the
// backing library. Scalars are fixed-length big-endian byte strings and
// points are SEC1 uncompressed encodings.
package curves

import (
	"encoding/asn1"
	"fmt"
	"io"

	"github.com/jeremyhahn/go-keytool/pkg/encoding"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// Curve is a named elliptic curve.
type Curve interface {
	// Name returns the curve name.
	Name() types.EllipticCurve

	// OID returns the named curve object identifier.
	OID() asn1.ObjectIdentifier

	// ScalarSize returns the private scalar length in bytes.
	ScalarSize() int

	// PointSize returns the uncompressed public point length in bytes.
	PointSize() int

	// GenerateScalar draws a uniformly random scalar in [1, n-1] from rand.
	GenerateScalar(rand io.Reader) ([]byte, error)

	// PublicPoint computes the uncompressed public point for a scalar.
	PublicPoint(scalar []byte) ([]byte, error)

	// ParsePoint validates a compressed or uncompressed point and returns the
	// uncompressed encoding.
	ParsePoint(point []byte) ([]byte, error)

	// ECDH returns the x-coordinate of scalar * point.
	ECDH(scalar, point []byte) ([]byte, error)
}

// Lookup returns the curve with the given name.
func Lookup(name types.EllipticCurve) (Curve, error) {
	switch name {
	case types.CurveP256:
		return newNIST(types.CurveP256, encoding.OIDNamedCurveP256), nil
	case types.CurveP384:
		return newNIST(types.CurveP384, encoding.OIDNamedCurveP384), nil
	case types.CurveP521:
		return newNIST(types.CurveP521, encoding.OIDNamedCurveP521), nil
	case types.CurveSecp256k1:
		return secp256k1Curve{}, nil
	case types.CurveSM2:
		return newSM2(), nil
	case "":
		return nil, fmt.Errorf("%w: curve name is required", types.ErrMalformedInput)
	default:
		return nil, fmt.Errorf("%w: elliptic curve %q", types.ErrUnsupportedAlgorithm, name)
	}
}

// ByOID returns the curve with the given named curve OID.
func ByOID(oid asn1.ObjectIdentifier) (Curve, error) {
	for _, name := range types.Curves() {
		c, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		if c.OID().Equal(oid) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: named curve %s", types.ErrUnsupportedAlgorithm, oid)
}

// All returns every supported curve in parse order.
func All() []Curve {
	names := types.Curves()
	out := make([]Curve, 0, len(names))
	for _, name := range names {
		c, _ := Lookup(name)
		out = append(out, c)
	}
	return out
}

// NormalizeScalar left-pads a scalar to the curve size. Some encoders strip
// leading zero bytes from the SEC1 privateKey field.
func NormalizeScalar(c Curve, scalar []byte) ([]byte, error) {
	size := c.ScalarSize()
	if len(scalar) > size {
		return nil, fmt.Errorf("%w: %s scalar is %d bytes, want %d", types.ErrMalformedKey, c.Name(), len(scalar), size)
	}
	out := make([]byte, size)
	copy(out[size-len(scalar):], scalar)
	return out, nil
}
