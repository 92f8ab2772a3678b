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
	"fmt"

	"github.com/jeremyhahn/go-keytool/pkg/types"
)

var (
	// ErrInvalidData is returned when data is nil, empty, or not valid ASN.1 for the structure
	ErrInvalidData = fmt.Errorf("encoding: invalid data: %w", types.ErrMalformedKey)

	// ErrInvalidPEMEncoding is returned when PEM decoding fails
	ErrInvalidPEMEncoding = fmt.Errorf("encoding: invalid PEM encoding: %w", types.ErrMalformedKey)

	// ErrUnexpectedPEMLabel is returned when a PEM block carries a label other than the expected one
	ErrUnexpectedPEMLabel = fmt.Errorf("encoding: unexpected PEM label: %w", types.ErrMalformedKey)

	// ErrUnsupportedParameters is returned for algorithm parameters other than a named curve or NULL
	ErrUnsupportedParameters = fmt.Errorf("encoding: unsupported algorithm parameters: %w", types.ErrMalformedKey)

	// ErrInvalidPassword is returned when a password is incorrect
	ErrInvalidPassword = fmt.Errorf("encoding: invalid password: %w", types.ErrAuthenticationFailed)

	// ErrPasswordRequired is returned when a password is required but not provided
	ErrPasswordRequired = fmt.Errorf("encoding: password required: %w", types.ErrMalformedInput)
)
