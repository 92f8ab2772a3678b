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

// Package convert re-encodes keys between PKCS#1, PKCS#8 and SEC1 containers
// and between PEM and DER without changing key material.
package convert

import (
	"fmt"

	"github.com/jeremyhahn/go-keytool/pkg/asymmetric"
	"github.com/jeremyhahn/go-keytool/pkg/container"
	"github.com/jeremyhahn/go-keytool/pkg/encoding"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// Convert re-encodes key from container from to container to.
//
// Identical containers return key unchanged without parsing it. A change of
// encoding within one PKCS family only swaps the PEM armor; the DER payload is
// validated but never rebuilt. A change of PKCS family re-wraps the algorithm
// identifier around the inner key bytes, which are copied verbatim.
func Convert(key []byte, family types.AlgorithmFamily, from, to types.KeyContainerDescriptor, isPublic bool) ([]byte, error) {
	if err := family.Validate(); err != nil {
		return nil, err
	}
	check := container.Require
	if isPublic {
		check = container.RequirePublic
	}
	if err := check(from, family); err != nil {
		return nil, err
	}
	if err := check(to, family); err != nil {
		return nil, err
	}

	if from.SameContainer(to) {
		return key, nil
	}

	parsed, err := asymmetric.Load(key, from, !isPublic, family)
	if err != nil {
		return nil, err
	}
	defer parsed.Zero()

	if from.Pkcs == to.Pkcs {
		der, err := asymmetric.Unframe(key, from, !isPublic)
		if err != nil {
			return nil, err
		}
		return asymmetric.Frame(der, to, !isPublic)
	}
	return parsed.Encode(to)
}

// Protect encrypts a private key held in any supported container into a
// password protected PKCS#8 EncryptedPrivateKeyInfo, framed per enc.
func Protect(key, password []byte, opts encoding.ProtectOptions, enc types.KeyEncoding) ([]byte, error) {
	parsed, _, err := asymmetric.Detect(key)
	if err != nil {
		return nil, err
	}
	defer parsed.Zero()
	if !parsed.Private {
		return nil, fmt.Errorf("%w: only private keys can be protected", types.ErrMalformedKey)
	}

	der, err := parsed.Encode(types.PKCS8DER)
	if err != nil {
		return nil, err
	}
	defer clear(der)

	encrypted, err := encoding.EncryptPKCS8(der, password, opts)
	if err != nil {
		return nil, err
	}
	return frameEncrypted(encrypted, enc)
}

// Unprotect decrypts a password protected PKCS#8 key, PEM or DER, and encodes
// the private key per to.
func Unprotect(data, password []byte, to types.KeyContainerDescriptor) ([]byte, error) {
	der := data
	if encoding.IsPEM(data) {
		var err error
		der, err = encoding.DecodePEMLabel(data, container.LabelEncryptedPrivateKey)
		if err != nil {
			return nil, err
		}
	}

	plain, err := encoding.DecryptPKCS8(der, password)
	if err != nil {
		return nil, err
	}
	defer clear(plain)

	parsed, err := asymmetric.DecodeDER(plain, types.PKCS8, true, types.AlgorithmFamily{})
	if err != nil {
		return nil, err
	}
	defer parsed.Zero()
	return parsed.Encode(to)
}

func frameEncrypted(der []byte, enc types.KeyEncoding) ([]byte, error) {
	switch enc {
	case types.DER:
		return der, nil
	case types.PEM:
		return encoding.EncodePEM(container.LabelEncryptedPrivateKey, der)
	case "":
		return nil, fmt.Errorf("%w: key encoding is required", types.ErrMalformedInput)
	}
	return nil, fmt.Errorf("%w: key encoding %q", types.ErrUnsupportedContainer, enc)
}
