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

package curves

import (
	"crypto/ecdh"
	"crypto/elliptic"
	"encoding/asn1"
	"fmt"
	"io"

	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// nistCurve backs P-256, P-384 and P-521 with crypto/ecdh. crypto/elliptic is
// only used to decompress points, which crypto/ecdh does not accept.
type nistCurve struct {
	name  types.EllipticCurve
	oid   asn1.ObjectIdentifier
	curve ecdh.Curve
	ec    elliptic.Curve
}

func newNIST(name types.EllipticCurve, oid asn1.ObjectIdentifier) nistCurve {
	c := nistCurve{name: name, oid: oid}
	switch name {
	case types.CurveP256:
		c.curve, c.ec = ecdh.P256(), elliptic.P256()
	case types.CurveP384:
		c.curve, c.ec = ecdh.P384(), elliptic.P384()
	case types.CurveP521:
		c.curve, c.ec = ecdh.P521(), elliptic.P521()
	}
	return c
}

func (c nistCurve) Name() types.EllipticCurve  { return c.name }
func (c nistCurve) OID() asn1.ObjectIdentifier { return c.oid }
func (c nistCurve) ScalarSize() int            { return (c.ec.Params().BitSize + 7) / 8 }
func (c nistCurve) PointSize() int             { return 1 + 2*c.ScalarSize() }

func (c nistCurve) GenerateScalar(rand io.Reader) ([]byte, error) {
	priv, err := c.curve.GenerateKey(rand)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrGenerationFailed, c.name, err)
	}
	return priv.Bytes(), nil
}

func (c nistCurve) privateKey(scalar []byte) (*ecdh.PrivateKey, error) {
	priv, err := c.curve.NewPrivateKey(scalar)
	if err != nil {
		return nil, fmt.Errorf("%w: %s scalar: %v", types.ErrMalformedKey, c.name, err)
	}
	return priv, nil
}

func (c nistCurve) PublicPoint(scalar []byte) ([]byte, error) {
	priv, err := c.privateKey(scalar)
	if err != nil {
		return nil, err
	}
	return priv.PublicKey().Bytes(), nil
}

func (c nistCurve) ParsePoint(point []byte) ([]byte, error) {
	size := c.ScalarSize()
	uncompressed := point
	if len(point) == 1+size && (point[0] == 2 || point[0] == 3) {
		x, y := elliptic.UnmarshalCompressed(c.ec, point)
		if x == nil {
			return nil, fmt.Errorf("%w: %s point is not on the curve", types.ErrMalformedKey, c.name)
		}
		uncompressed = marshalUncompressed(size, x, y)
	}
	pub, err := c.curve.NewPublicKey(uncompressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %s point: %v", types.ErrMalformedKey, c.name, err)
	}
	return pub.Bytes(), nil
}

func (c nistCurve) ECDH(scalar, point []byte) ([]byte, error) {
	priv, err := c.privateKey(scalar)
	if err != nil {
		return nil, err
	}
	uncompressed, err := c.ParsePoint(point)
	if err != nil {
		return nil, err
	}
	pub, err := c.curve.NewPublicKey(uncompressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %s point: %v", types.ErrMalformedKey, c.name, err)
	}
	shared, err := priv.ECDH(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %s key agreement: %v", types.ErrMalformedKey, c.name, err)
	}
	return shared, nil
}
