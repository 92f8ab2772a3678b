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
	"crypto/elliptic"
	"encoding/asn1"
	"fmt"
	"io"
	"math/big"

	"github.com/emmansun/gmsm/sm2"

	"github.com/jeremyhahn/go-keytool/pkg/encoding"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// sm2Curve drives the sm2p256v1 curve through the generic elliptic.Curve
// interface exported by gmsm.
type sm2Curve struct {
	curve elliptic.Curve
}

func newSM2() sm2Curve {
	return sm2Curve{curve: sm2.P256()}
}

func (sm2Curve) Name() types.EllipticCurve  { return types.CurveSM2 }
func (sm2Curve) OID() asn1.ObjectIdentifier { return encoding.OIDNamedCurveSM2 }
func (c sm2Curve) ScalarSize() int          { return (c.curve.Params().BitSize + 7) / 8 }
func (c sm2Curve) PointSize() int           { return 1 + 2*c.ScalarSize() }

func (c sm2Curve) GenerateScalar(rand io.Reader) ([]byte, error) {
	n := c.curve.Params().N
	for i := 0; i < maxScalarAttempts; i++ {
		b := make([]byte, c.ScalarSize())
		if _, err := io.ReadFull(rand, b); err != nil {
			return nil, fmt.Errorf("%w: SM2: %v", types.ErrGenerationFailed, err)
		}
		k := new(big.Int).SetBytes(b)
		if k.Sign() == 0 || k.Cmp(n) >= 0 {
			continue
		}
		return b, nil
	}
	return nil, fmt.Errorf("%w: SM2: no valid scalar", types.ErrGenerationFailed)
}

func (c sm2Curve) checkScalar(scalar []byte) error {
	if len(scalar) != c.ScalarSize() {
		return fmt.Errorf("%w: SM2 scalar is %d bytes", types.ErrMalformedKey, len(scalar))
	}
	k := new(big.Int).SetBytes(scalar)
	if k.Sign() == 0 || k.Cmp(c.curve.Params().N) >= 0 {
		return fmt.Errorf("%w: SM2 scalar out of range", types.ErrMalformedKey)
	}
	return nil
}

func (c sm2Curve) PublicPoint(scalar []byte) ([]byte, error) {
	if err := c.checkScalar(scalar); err != nil {
		return nil, err
	}
	x, y := c.curve.ScalarBaseMult(scalar)
	return marshalUncompressed(c.ScalarSize(), x, y), nil
}

func (c sm2Curve) parsePoint(point []byte) (x, y *big.Int, err error) {
	size := c.ScalarSize()
	switch {
	case len(point) == 1+2*size && point[0] == 4:
		x = new(big.Int).SetBytes(point[1 : 1+size])
		y = new(big.Int).SetBytes(point[1+size:])
		p := c.curve.Params().P
		if x.Cmp(p) >= 0 || y.Cmp(p) >= 0 || !c.curve.IsOnCurve(x, y) {
			return nil, nil, fmt.Errorf("%w: SM2 point is not on the curve", types.ErrMalformedKey)
		}
	case len(point) == 1+size && (point[0] == 2 || point[0] == 3):
		// sm2p256v1 has a = -3, so the generic decompression applies.
		x, y = elliptic.UnmarshalCompressed(c.curve, point)
		if x == nil {
			return nil, nil, fmt.Errorf("%w: SM2 point is not on the curve", types.ErrMalformedKey)
		}
	default:
		return nil, nil, fmt.Errorf("%w: SM2 point has invalid length %d", types.ErrMalformedKey, len(point))
	}
	return x, y, nil
}

func (c sm2Curve) ParsePoint(point []byte) ([]byte, error) {
	x, y, err := c.parsePoint(point)
	if err != nil {
		return nil, err
	}
	return marshalUncompressed(c.ScalarSize(), x, y), nil
}

func (c sm2Curve) ECDH(scalar, point []byte) ([]byte, error) {
	if err := c.checkScalar(scalar); err != nil {
		return nil, err
	}
	px, py, err := c.parsePoint(point)
	if err != nil {
		return nil, err
	}
	x, y := c.curve.ScalarMult(px, py, scalar)
	if x.Sign() == 0 && y.Sign() == 0 {
		return nil, fmt.Errorf("%w: SM2 key agreement produced the point at infinity", types.ErrMalformedKey)
	}
	return x.FillBytes(make([]byte, c.ScalarSize())), nil
}

func marshalUncompressed(size int, x, y *big.Int) []byte {
	out := make([]byte, 1+2*size)
	out[0] = 4
	x.FillBytes(out[1 : 1+size])
	y.FillBytes(out[1+size:])
	return out
}
