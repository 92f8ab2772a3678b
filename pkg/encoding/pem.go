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

package encoding

import (
	"bytes"
	"encoding/pem"
	"fmt"
)

var pemPrefix = []byte("-----BEGIN ")

// IsPEM reports whether data starts with PEM armor.
func IsPEM(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimSpace(data), pemPrefix)
}

// EncodePEM frames a DER payload in a PEM block. The payload is not inspected.
//
// Example:
//
//	pemData, err := encoding.EncodePEM("PRIVATE KEY", der)
func EncodePEM(label string, der []byte) ([]byte, error) {
	if len(der) == 0 {
		return nil, ErrInvalidData
	}

	var buf bytes.Buffer
	if err := pem.Encode(&buf, &pem.Block{Type: label, Bytes: der}); err != nil {
		return nil, fmt.Errorf("failed to encode PEM: %w", err)
	}

	return buf.Bytes(), nil
}

// DecodePEM returns the first PEM block in data.
func DecodePEM(data []byte) (*pem.Block, error) {
	if len(data) == 0 {
		return nil, ErrInvalidData
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrInvalidPEMEncoding
	}
	if len(block.Headers) != 0 {
		// Legacy OpenSSL encryption (Proc-Type/DEK-Info) is not supported.
		return nil, fmt.Errorf("%w: PEM headers are not supported", ErrInvalidPEMEncoding)
	}

	return block, nil
}

// DecodePEMLabel decodes the first PEM block and checks its label.
func DecodePEMLabel(data []byte, label string) ([]byte, error) {
	block, err := DecodePEM(data)
	if err != nil {
		return nil, err
	}
	if block.Type != label {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrUnexpectedPEMLabel, block.Type, label)
	}
	return block.Bytes, nil
}
