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

// Package container is the registry of key containers: each PKCS family
// crossed with PEM or DER, the PEM labels it uses, and the algorithm
// families allowed inside it.
package container

import (
	"fmt"

	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// PEM block labels.
const (
	LabelRSAPrivateKey       = "RSA PRIVATE KEY"
	LabelRSAPublicKey        = "RSA PUBLIC KEY"
	LabelPrivateKey          = "PRIVATE KEY"
	LabelPublicKey           = "PUBLIC KEY"
	LabelECPrivateKey        = "EC PRIVATE KEY"
	LabelEncryptedPrivateKey = "ENCRYPTED PRIVATE KEY"
)

// Entry is one row of the registry.
type Entry struct {
	Descriptor types.KeyContainerDescriptor `json:"descriptor"`

	// PrivateLabel is the PEM label for private keys.
	PrivateLabel string `json:"private_label"`

	// PublicLabel is the PEM label for public keys. Empty means public keys
	// in this family have no PEM form.
	PublicLabel string `json:"public_label,omitempty"`

	// Families lists the algorithm kinds that may be stored in the container.
	Families []types.AlgorithmKind `json:"families"`
}

var registry = [...]Entry{
	{types.PKCS1PEM, LabelRSAPrivateKey, LabelRSAPublicKey, []types.AlgorithmKind{types.KindRSA}},
	{types.PKCS1DER, LabelRSAPrivateKey, LabelRSAPublicKey, []types.AlgorithmKind{types.KindRSA}},
	{types.PKCS8PEM, LabelPrivateKey, LabelPublicKey, []types.AlgorithmKind{types.KindRSA, types.KindEllipticCurve, types.KindEdwardsCurve}},
	{types.PKCS8DER, LabelPrivateKey, LabelPublicKey, []types.AlgorithmKind{types.KindRSA, types.KindEllipticCurve, types.KindEdwardsCurve}},
	{types.SEC1PEM, LabelECPrivateKey, "", []types.AlgorithmKind{types.KindEllipticCurve}},
	{types.SEC1DER, LabelECPrivateKey, "", []types.AlgorithmKind{types.KindEllipticCurve}},
}

// Entries returns a copy of the registry.
func Entries() []Entry {
	out := make([]Entry, len(registry))
	for i, e := range registry {
		e.Families = append([]types.AlgorithmKind(nil), e.Families...)
		out[i] = e
	}
	return out
}

func lookup(d types.KeyContainerDescriptor) (Entry, bool) {
	for _, e := range registry {
		if e.Descriptor.SameContainer(d) {
			return e, true
		}
	}
	return Entry{}, false
}

// Describe returns the descriptor for a pkcs/encoding pair.
func Describe(pkcs types.PkcsFamily, encoding types.KeyEncoding) (types.KeyContainerDescriptor, error) {
	e, ok := lookup(types.Container(pkcs, encoding))
	if !ok {
		return types.KeyContainerDescriptor{}, fmt.Errorf("%w: %s-%s", types.ErrUnsupportedContainer, pkcs, encoding)
	}
	return e.Descriptor, nil
}

// LegalFor reports whether keys of the given family may be stored in d.
func LegalFor(d types.KeyContainerDescriptor, family types.AlgorithmFamily) bool {
	e, ok := lookup(d)
	if !ok {
		return false
	}
	for _, k := range e.Families {
		if k == family.Kind {
			return true
		}
	}
	return false
}

// Require returns ErrUnsupportedContainer when d is not legal for family.
func Require(d types.KeyContainerDescriptor, family types.AlgorithmFamily) error {
	if !LegalFor(d, family) {
		return fmt.Errorf("%w: %s cannot hold %s keys", types.ErrUnsupportedContainer, d, family)
	}
	return nil
}

// RequirePublic is Require for public keys: in addition, a PEM container
// must have a public key label.
func RequirePublic(d types.KeyContainerDescriptor, family types.AlgorithmFamily) error {
	if err := Require(d, family); err != nil {
		return err
	}
	if d.Encoding == types.PEM && PublicLabel(d.Pkcs) == "" {
		return fmt.Errorf("%w: %s public keys have no PEM form", types.ErrUnsupportedContainer, d.Pkcs)
	}
	return nil
}

// PrivateLabel returns the PEM label for private keys in the family.
func PrivateLabel(pkcs types.PkcsFamily) string {
	e, _ := lookup(types.Container(pkcs, types.PEM))
	return e.PrivateLabel
}

// PublicLabel returns the PEM label for public keys in the family.
func PublicLabel(pkcs types.PkcsFamily) string {
	e, _ := lookup(types.Container(pkcs, types.PEM))
	return e.PublicLabel
}

// Label returns the PEM label for a private or public key in the family.
func Label(pkcs types.PkcsFamily, private bool) string {
	if private {
		return PrivateLabel(pkcs)
	}
	return PublicLabel(pkcs)
}

// Lookup maps a PEM label back to its PKCS family and whether it carries a
// private key.
func Lookup(label string) (pkcs types.PkcsFamily, private bool, ok bool) {
	for _, e := range registry {
		if e.Descriptor.Encoding != types.PEM {
			continue
		}
		switch label {
		case e.PrivateLabel:
			return e.Descriptor.Pkcs, true, true
		case e.PublicLabel:
			if label != "" {
				return e.Descriptor.Pkcs, false, true
			}
		}
	}
	return "", false, false
}
