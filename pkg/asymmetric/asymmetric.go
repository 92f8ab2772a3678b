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

// Package asymmetric generates RSA, elliptic curve and Edwards key pairs,
// derives public keys and identifies unknown key bytes.
//
// Every operation validates the algorithm family and container legality
// before any key material is generated or parsed.
package asymmetric

import (
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"fmt"

	"github.com/jeremyhahn/go-keytool/pkg/container"
	"github.com/jeremyhahn/go-keytool/pkg/crypto/curves"
	"github.com/jeremyhahn/go-keytool/pkg/crypto/rand"
	"github.com/jeremyhahn/go-keytool/pkg/encoding"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// Generate creates a key pair for family. The private key is encoded per d.
// The public key uses PKCS#1 when d is PKCS#1 and SubjectPublicKeyInfo
// otherwise, in the same key encoding.
func Generate(family types.AlgorithmFamily, d types.KeyContainerDescriptor) (*types.KeyPair, error) {
	if err := family.Validate(); err != nil {
		return nil, err
	}
	if err := container.Require(d, family); err != nil {
		return nil, err
	}

	key, err := generate(family)
	if err != nil {
		return nil, err
	}
	defer key.Zero()

	priv, err := key.Encode(d)
	if err != nil {
		return nil, err
	}
	pubKey, err := key.Public()
	if err != nil {
		return nil, err
	}
	pub, err := pubKey.Encode(PublicContainer(d))
	if err != nil {
		return nil, err
	}

	return &types.KeyPair{
		PrivateKey: priv,
		PublicKey:  pub,
		Container:  d,
		Algorithm:  family,
	}, nil
}

func generate(family types.AlgorithmFamily) (*Key, error) {
	switch {
	case family.IsRSA():
		priv, err := rsa.GenerateKey(rand.Reader, family.RSABits)
		if err != nil {
			return nil, fmt.Errorf("%w: RSA-%d: %v", types.ErrGenerationFailed, family.RSABits, err)
		}
		return &Key{Family: family, Private: true, rsa: x509.MarshalPKCS1PrivateKey(priv)}, nil

	case family.IsEC():
		c, err := curves.Lookup(family.Curve)
		if err != nil {
			return nil, err
		}
		scalar, err := c.GenerateScalar(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", types.ErrGenerationFailed, c.Name(), err)
		}
		point, err := c.PublicPoint(scalar)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", types.ErrGenerationFailed, c.Name(), err)
		}
		return &Key{
			Family:  family,
			Private: true,
			ec:      &encoding.ECPrivateKey{PrivateKey: scalar, PublicKey: point},
		}, nil

	case family.IsEdwards():
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("%w: Ed25519: %v", types.ErrGenerationFailed, err)
		}
		defer clear(priv)
		return &Key{Family: family, Private: true, seed: priv.Seed()}, nil
	}
	return nil, fmt.Errorf("%w: %s", types.ErrUnsupportedAlgorithm, family)
}

// DerivePublicKey computes the public key for a private key stored in d.
// The result is PKCS#1 "RSA PUBLIC KEY" for PKCS#1 input and
// SubjectPublicKeyInfo otherwise, in the encoding of d.
func DerivePublicKey(privateKey []byte, family types.AlgorithmFamily, d types.KeyContainerDescriptor) ([]byte, error) {
	if err := family.Validate(); err != nil {
		return nil, err
	}
	if err := container.Require(d, family); err != nil {
		return nil, err
	}

	key, err := Load(privateKey, d, true, family)
	if err != nil {
		return nil, err
	}
	defer key.Zero()

	pub, err := key.Public()
	if err != nil {
		return nil, err
	}
	return pub.Encode(PublicContainer(d))
}

// PublicContainer returns the container public keys are emitted in for a
// private key container.
func PublicContainer(d types.KeyContainerDescriptor) types.KeyContainerDescriptor {
	if d.Pkcs == types.PKCS1 {
		return d
	}
	out := d
	out.Pkcs = types.PKCS8
	return out
}

// derProbes is the order DER input is tried in when the container is unknown.
var derProbes = [...]struct {
	pkcs    types.PkcsFamily
	private bool
}{
	{types.PKCS8, true},
	{types.PKCS8, false},
	{types.PKCS1, true},
	{types.PKCS1, false},
	{types.SEC1, true},
	{types.SEC1, false},
}

// Detect decodes key bytes whose container is unknown. PEM input is routed
// by its label; DER input is tried against each container in turn.
func Detect(data []byte) (*Key, types.KeyContainerDescriptor, error) {
	if encoding.IsPEM(data) {
		block, err := encoding.DecodePEM(data)
		if err != nil {
			return nil, types.KeyContainerDescriptor{}, err
		}
		if block.Type == container.LabelEncryptedPrivateKey {
			return nil, types.KeyContainerDescriptor{}, fmt.Errorf(
				"%w: password protected key must be unprotected first", types.ErrUnsupportedContainer)
		}
		pkcs, private, ok := container.Lookup(block.Type)
		if !ok {
			return nil, types.KeyContainerDescriptor{}, fmt.Errorf("%w: PEM label %q", types.ErrMalformedKey, block.Type)
		}
		key, err := DecodeDER(block.Bytes, pkcs, private, types.AlgorithmFamily{})
		if err != nil {
			return nil, types.KeyContainerDescriptor{}, err
		}
		return key, types.Container(pkcs, types.PEM), nil
	}

	for _, probe := range derProbes {
		key, err := DecodeDER(data, probe.pkcs, probe.private, types.AlgorithmFamily{})
		if err == nil {
			return key, types.Container(probe.pkcs, types.DER), nil
		}
		if errors.Is(err, types.ErrUnsupportedAlgorithm) {
			return nil, types.KeyContainerDescriptor{}, err
		}
	}
	return nil, types.KeyContainerDescriptor{}, fmt.Errorf("%w: no known container matches", types.ErrMalformedKey)
}

// Parse identifies the algorithm and container of unknown key bytes.
func Parse(data []byte) (*types.ParsedKey, error) {
	key, d, err := Detect(data)
	if err != nil {
		return nil, err
	}
	defer key.Zero()
	return &types.ParsedKey{Algorithm: key.Family, Container: d, IsPrivate: key.Private}, nil
}
