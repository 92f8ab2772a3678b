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

package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-keytool/pkg/types"
)

func TestDescribe(t *testing.T) {
	for _, pkcs := range []types.PkcsFamily{types.PKCS1, types.PKCS8, types.SEC1} {
		for _, enc := range []types.KeyEncoding{types.PEM, types.DER} {
			d, err := Describe(pkcs, enc)
			require.NoError(t, err)
			assert.Equal(t, pkcs, d.Pkcs)
			assert.Equal(t, enc, d.Encoding)
		}
	}

	_, err := Describe("pkcs12", types.DER)
	assert.ErrorIs(t, err, types.ErrUnsupportedContainer)
	_, err = Describe(types.PKCS8, "jwk")
	assert.ErrorIs(t, err, types.ErrUnsupportedContainer)
}

func TestLegalFor(t *testing.T) {
	rsa := types.RSA(2048)
	ec := types.EC(types.CurveP256)
	ed := types.Edwards(types.CurveCurve25519)

	tests := []struct {
		d      types.KeyContainerDescriptor
		family types.AlgorithmFamily
		legal  bool
	}{
		{types.PKCS1PEM, rsa, true},
		{types.PKCS1DER, rsa, true},
		{types.PKCS8PEM, rsa, true},
		{types.SEC1PEM, rsa, false},
		{types.PKCS1PEM, ec, false},
		{types.PKCS8DER, ec, true},
		{types.SEC1DER, ec, true},
		{types.PKCS8PEM, ed, true},
		{types.PKCS1DER, ed, false},
		{types.SEC1PEM, ed, false},
	}

	for _, tt := range tests {
		t.Run(tt.d.String()+"/"+tt.family.String(), func(t *testing.T) {
			assert.Equal(t, tt.legal, LegalFor(tt.d, tt.family))
			err := Require(tt.d, tt.family)
			if tt.legal {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, types.ErrUnsupportedContainer)
			}
		})
	}
}

func TestRequirePublic(t *testing.T) {
	ec := types.EC(types.CurveSecp256k1)
	assert.NoError(t, RequirePublic(types.SEC1DER, ec))
	assert.ErrorIs(t, RequirePublic(types.SEC1PEM, ec), types.ErrUnsupportedContainer)
	assert.NoError(t, RequirePublic(types.PKCS8PEM, ec))
	assert.NoError(t, RequirePublic(types.PKCS1PEM, types.RSA(2048)))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "RSA PRIVATE KEY", Label(types.PKCS1, true))
	assert.Equal(t, "RSA PUBLIC KEY", Label(types.PKCS1, false))
	assert.Equal(t, "PRIVATE KEY", Label(types.PKCS8, true))
	assert.Equal(t, "PUBLIC KEY", Label(types.PKCS8, false))
	assert.Equal(t, "EC PRIVATE KEY", Label(types.SEC1, true))
	assert.Empty(t, Label(types.SEC1, false))
}

func TestLookup(t *testing.T) {
	tests := []struct {
		label   string
		pkcs    types.PkcsFamily
		private bool
		ok      bool
	}{
		{LabelRSAPrivateKey, types.PKCS1, true, true},
		{LabelRSAPublicKey, types.PKCS1, false, true},
		{LabelPrivateKey, types.PKCS8, true, true},
		{LabelPublicKey, types.PKCS8, false, true},
		{LabelECPrivateKey, types.SEC1, true, true},
		{"CERTIFICATE", "", false, false},
		{"", "", false, false},
	}
	for _, tt := range tests {
		pkcs, private, ok := Lookup(tt.label)
		assert.Equal(t, tt.ok, ok, tt.label)
		assert.Equal(t, tt.pkcs, pkcs, tt.label)
		assert.Equal(t, tt.private, private, tt.label)
	}
}

func TestEntriesIsCopy(t *testing.T) {
	entries := Entries()
	require.Len(t, entries, 6)
	entries[0].Families[0] = types.KindEdwardsCurve
	assert.True(t, LegalFor(types.PKCS1PEM, types.RSA(2048)))
}
