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

package keytool

import (
	"strings"

	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// ParseAlgorithm builds an AlgorithmFamily from its text form as used by the
// CLI flags and the HTTP requests: kind is rsa, ecc or edwards; curve is
// required for ecc and edwards; rsaBits is required for rsa.
func ParseAlgorithm(kind, curve string, rsaBits int) (types.AlgorithmFamily, error) {
	k, err := types.ParseAlgorithmKind(kind)
	if err != nil {
		return types.AlgorithmFamily{}, err
	}

	var family types.AlgorithmFamily
	switch k {
	case types.KindRSA:
		family = types.RSA(rsaBits)
	case types.KindEllipticCurve, types.KindEdwardsCurve:
		c, err := types.ParseCurve(curve)
		if err != nil {
			return types.AlgorithmFamily{}, err
		}
		family = types.AlgorithmFamily{Kind: k, Curve: c}
	}
	if err := family.Validate(); err != nil {
		return types.AlgorithmFamily{}, err
	}
	return family, nil
}

// ParseCipherSpec builds a CipherSpec from its text form.
func ParseCipherSpec(keySizeBits int, mode, padding string) (types.CipherSpec, error) {
	m, err := types.ParseCipherMode(mode)
	if err != nil {
		return types.CipherSpec{}, err
	}
	p, err := types.ParsePadding(padding)
	if err != nil {
		return types.CipherSpec{}, err
	}
	return types.CipherSpec{KeySizeBits: keySizeBits, Mode: m, Padding: p}, nil
}

// ParseOptional parses s with parse, mapping blank input to the zero value.
func ParseOptional[T ~string](s string, parse func(string) (T, error)) (T, error) {
	if strings.TrimSpace(s) == "" {
		var zero T
		return zero, nil
	}
	return parse(s)
}
