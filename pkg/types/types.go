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

import (
	"fmt"
	"strings"
)

// KeyContainerDescriptor is a PKCS family paired with a key encoding. Text is
// only used when the container bytes travel through a text field.
type KeyContainerDescriptor struct {
	Pkcs     PkcsFamily   `json:"pkcs"`
	Encoding KeyEncoding  `json:"encoding"`
	Text     TextEncoding `json:"text,omitempty"`
}

// Container builds a descriptor without a text encoding.
func Container(pkcs PkcsFamily, encoding KeyEncoding) KeyContainerDescriptor {
	return KeyContainerDescriptor{Pkcs: pkcs, Encoding: encoding}
}

// Commonly used descriptors.
var (
	PKCS1PEM = Container(PKCS1, PEM)
	PKCS1DER = Container(PKCS1, DER)
	PKCS8PEM = Container(PKCS8, PEM)
	PKCS8DER = Container(PKCS8, DER)
	SEC1PEM  = Container(SEC1, PEM)
	SEC1DER  = Container(SEC1, DER)
)

// SameContainer reports whether two descriptors name the same pkcs/encoding
// pair. The text encoding does not change the container bytes.
func (d KeyContainerDescriptor) SameContainer(other KeyContainerDescriptor) bool {
	return d.Pkcs == other.Pkcs && d.Encoding == other.Encoding
}

// String returns the descriptor as "pkcs8-pem".
func (d KeyContainerDescriptor) String() string {
	return fmt.Sprintf("%s-%s", d.Pkcs, d.Encoding)
}

// ParseContainer parses "pkcs8-pem", "PKCS8_PEM" or "pkcs8/pem".
func ParseContainer(s string) (KeyContainerDescriptor, error) {
	parts := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return r == '-' || r == '_' || r == '/' || r == ' '
	})
	if len(parts) != 2 {
		if s == "" {
			return KeyContainerDescriptor{}, fmt.Errorf("%w: container is required", ErrMalformedInput)
		}
		return KeyContainerDescriptor{}, fmt.Errorf("%w: container %q", ErrUnsupportedContainer, s)
	}
	pkcs, err := ParsePkcsFamily(parts[0])
	if err != nil {
		return KeyContainerDescriptor{}, err
	}
	enc, err := ParseKeyEncoding(parts[1])
	if err != nil {
		return KeyContainerDescriptor{}, err
	}
	return Container(pkcs, enc), nil
}

// CipherSpec describes an AES operation.
type CipherSpec struct {
	KeySizeBits int        `json:"key_size_bits"`
	Mode        CipherMode `json:"mode"`
	Padding     Padding    `json:"padding"`
}

// String formats the cipher as "AES-256-CBC/PKCS7".
func (s CipherSpec) String() string {
	return fmt.Sprintf("AES-%d-%s/%s", s.KeySizeBits, s.Mode, s.Padding)
}

// KeyPair holds both halves of a generated key, each encoded per Container.
// Callers own the slices.
type KeyPair struct {
	PrivateKey []byte                 `json:"private_key"`
	PublicKey  []byte                 `json:"public_key"`
	Container  KeyContainerDescriptor `json:"container"`
	Algorithm  AlgorithmFamily        `json:"algorithm"`
}

// ParsedKey is the result of introspecting unknown key bytes.
type ParsedKey struct {
	Algorithm AlgorithmFamily        `json:"algorithm"`
	Container KeyContainerDescriptor `json:"container"`
	IsPrivate bool                   `json:"is_private"`
}

// EciesParameters configures one ECIES operation. Curve is optional when the
// key itself names its curve; when set it must match the key.
type EciesParameters struct {
	Curve         EllipticCurve  `json:"curve,omitempty"`
	KDF           KDF            `json:"kdf"`
	Digest        Digest         `json:"digest,omitempty"`
	Salt          []byte         `json:"salt,omitempty"`
	Info          []byte         `json:"info,omitempty"`
	Iterations    int            `json:"iterations,omitempty"`
	ScryptN       int            `json:"scrypt_n,omitempty"`
	ScryptR       int            `json:"scrypt_r,omitempty"`
	ScryptP       int            `json:"scrypt_p,omitempty"`
	EncryptionAlg EciesAlgorithm `json:"encryption_alg"`
}
