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

package types

import "errors"

// Error taxonomy shared by every package in the module. Packages wrap these
// sentinels with fmt.Errorf("%w: ...") so callers can test with errors.Is.
var (
	// ErrMalformedInput is returned when text cannot be decoded or a required
	// parameter is missing or inconsistent.
	ErrMalformedInput = errors.New("malformed input")

	// ErrInvalidEncoding is returned when bytes cannot be rendered in the
	// requested text encoding (for example non UTF-8 bytes as UTF8).
	ErrInvalidEncoding = errors.New("invalid encoding")

	// ErrUnsupportedContainer is returned for an illegal pkcs/encoding/algorithm combination.
	ErrUnsupportedContainer = errors.New("unsupported container")

	// ErrMalformedKey is returned when key bytes do not parse for the stated family.
	ErrMalformedKey = errors.New("malformed key")

	// ErrInvalidInputLength is returned when a key, IV or payload length violates the cipher spec.
	ErrInvalidInputLength = errors.New("invalid input length")

	// ErrAuthenticationFailed is returned when AEAD tag verification fails.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrGenerationFailed is returned when key material could not be generated.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrUnsupportedAlgorithm is returned when an algorithm, curve or KDF has no implementation.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrInvalidEncoding, "InvalidEncoding"},
	{ErrMalformedInput, "MalformedInput"},
	{ErrUnsupportedContainer, "UnsupportedContainer"},
	{ErrMalformedKey, "MalformedKey"},
	{ErrInvalidInputLength, "InvalidInputLength"},
	{ErrAuthenticationFailed, "AuthenticationFailed"},
	{ErrGenerationFailed, "GenerationFailed"},
	{ErrUnsupportedAlgorithm, "UnsupportedAlgorithm"},
}

// ErrorKind returns the taxonomy name of err, or "Internal" when err does not
// wrap one of the package sentinels.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "Internal"
}
