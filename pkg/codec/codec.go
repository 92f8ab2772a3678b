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

// Package codec converts between raw bytes and their textual renderings.
// Every function is pure and safe for concurrent use.
package codec

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jeremyhahn/go-keytool/pkg/types"
)

var base64Encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// Options selects the rendering variant of Base64 and Hex output. The zero
// value is padded standard base64 and lowercase hex. Decode accepts every
// variant regardless.
type Options struct {
	// Uppercase renders hex digits A-F in upper case.
	Uppercase bool

	// URLSafe uses the RFC 4648 URL and filename safe base64 alphabet.
	URLSafe bool

	// Unpadded omits base64 '=' padding.
	Unpadded bool
}

func (o Options) base64() *base64.Encoding {
	switch {
	case o.URLSafe && o.Unpadded:
		return base64.RawURLEncoding
	case o.URLSafe:
		return base64.URLEncoding
	case o.Unpadded:
		return base64.RawStdEncoding
	}
	return base64.StdEncoding
}

// Encode renders b as text in the given encoding.
func Encode(enc types.TextEncoding, b []byte) (string, error) {
	return EncodeWith(enc, b, Options{})
}

// EncodeWith renders b as text in the given encoding and variant.
func EncodeWith(enc types.TextEncoding, b []byte, opts Options) (string, error) {
	switch enc {
	case types.TextUTF8:
		if !utf8.Valid(b) {
			return "", fmt.Errorf("%w: bytes are not valid UTF-8", types.ErrInvalidEncoding)
		}
		return string(b), nil
	case types.TextBase64:
		return opts.base64().EncodeToString(b), nil
	case types.TextHex:
		if opts.Uppercase {
			return strings.ToUpper(hex.EncodeToString(b)), nil
		}
		return hex.EncodeToString(b), nil
	default:
		return "", fmt.Errorf("%w: unknown text encoding %q", types.ErrMalformedInput, enc)
	}
}

// Decode parses text in the given encoding back into bytes.
func Decode(enc types.TextEncoding, s string) ([]byte, error) {
	switch enc {
	case types.TextUTF8:
		return []byte(s), nil
	case types.TextBase64:
		return decodeBase64(s)
	case types.TextHex:
		return decodeHex(s)
	default:
		return nil, fmt.Errorf("%w: unknown text encoding %q", types.ErrMalformedInput, enc)
	}
}

// Convert re-renders text from one encoding to another.
func Convert(from, to types.TextEncoding, s string) (string, error) {
	if from == to {
		return s, nil
	}
	b, err := Decode(from, s)
	if err != nil {
		return "", err
	}
	return Encode(to, b)
}

// Detect guesses the encoding of key text: PEM armor is UTF8, an even run
// of hex digits is Hex, anything else that decodes as base64 is Base64, and
// everything else is UTF8. DER in base64 always starts with "M", so it is
// never mistaken for hex.
func Detect(s string) types.TextEncoding {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "-----BEGIN ") {
		return types.TextUTF8
	}
	if trimmed == "" {
		return types.TextUTF8
	}
	if isHex(trimmed) {
		return types.TextHex
	}
	if _, err := decodeBase64(trimmed); err == nil {
		return types.TextBase64
	}
	return types.TextUTF8
}

func isHex(s string) bool {
	cleaned := strings.TrimPrefix(stripWhitespace(s), "0x")
	if cleaned == "" || len(cleaned)%2 != 0 {
		return false
	}
	for _, r := range cleaned {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

func decodeBase64(s string) ([]byte, error) {
	cleaned := stripWhitespace(s)
	for _, enc := range base64Encodings {
		if b, err := enc.DecodeString(cleaned); err == nil {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: invalid base64", types.ErrMalformedInput)
}

func decodeHex(s string) ([]byte, error) {
	cleaned := strings.TrimPrefix(stripWhitespace(s), "0x")
	if len(cleaned)%2 != 0 {
		return nil, fmt.Errorf("%w: hex string has odd length %d", types.ErrMalformedInput, len(cleaned))
	}
	b, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid hex: %v", types.ErrMalformedInput, err)
	}
	return b, nil
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)
}
