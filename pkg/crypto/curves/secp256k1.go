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
	"encoding/asn1"
	"fmt"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/jeremyhahn/go-keytool/pkg/encoding"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

const maxScalarAttempts = 64

type secp256k1Curve struct{}

func (secp256k1Curve) Name() types.EllipticCurve  { return types.CurveSecp256k1 }
func (secp256k1Curve) OID() asn1.ObjectIdentifier { return encoding.OIDNamedCurveSecp256k1 }
func (secp256k1Curve) ScalarSize() int            { return secp256k1.PrivKeyBytesLen }
func (secp256k1Curve) PointSize() int             { return secp256k1.PubKeyBytesLenUncompressed }

func (secp256k1Curve) GenerateScalar(rand io.Reader) ([]byte, error) {
	for i := 0; i < maxScalarAttempts; i++ {
		b := make([]byte, secp256k1.PrivKeyBytesLen)
		if _, err := io.ReadFull(rand, b); err != nil {
			return nil, fmt.Errorf("%w: secp256k1: %v", types.ErrGenerationFailed, err)
		}
		var s secp256k1.ModNScalar
		if overflow := s.SetByteSlice(b); overflow || s.IsZero() {
			continue
		}
		return b, nil
	}
	return nil, fmt.Errorf("%w: secp256k1: no valid scalar", types.ErrGenerationFailed)
}

func (secp256k1Curve) privateKey(scalar []byte) (*secp256k1.PrivateKey, error) {
	if len(scalar) != secp256k1.PrivKeyBytesLen {
		return nil, fmt.Errorf("%w: secp256k1 scalar is %d bytes", types.ErrMalformedKey, len(scalar))
	}
	var s secp256k1.ModNScalar
	if overflow := s.SetByteSlice(scalar); overflow || s.IsZero() {
		return nil, fmt.Errorf("%w: secp256k1 scalar out of range", types.ErrMalformedKey)
	}
	return secp256k1.NewPrivateKey(&s), nil
}

func (c secp256k1Curve) PublicPoint(scalar []byte) ([]byte, error) {
	priv, err := c.privateKey(scalar)
	if err != nil {
		return nil, err
	}
	return priv.PubKey().SerializeUncompressed(), nil
}

func (secp256k1Curve) ParsePoint(point []byte) ([]byte, error) {
	pub, err := secp256k1.ParsePubKey(point)
	if err != nil {
		return nil, fmt.Errorf("%w: secp256k1 point: %v", types.ErrMalformedKey, err)
	}
	return pub.SerializeUncompressed(), nil
}

func (c secp256k1Curve) ECDH(scalar, point []byte) ([]byte, error) {
	priv, err := c.privateKey(scalar)
	if err != nil {
		return nil, err
	}
	pub, err := secp256k1.ParsePubKey(point)
	if err != nil {
		return nil, fmt.Errorf("%w: secp256k1 point: %v", types.ErrMalformedKey, err)
	}
	return secp256k1.GenerateSharedSecret(priv, pub), nil
}
