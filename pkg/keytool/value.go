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
	"github.com/jeremyhahn/go-keytool/pkg/codec"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// Value is a byte string carried as text. An empty Encoding means UTF-8 for
// data and is detected for keys (PEM armor is UTF-8, even hex digits are hex,
// otherwise base64).
type Value struct {
	Data     string             `json:"data"`
	Encoding types.TextEncoding `json:"encoding,omitempty"`
}

// Text returns a UTF-8 Value.
func Text(s string) Value {
	return Value{Data: s, Encoding: types.TextUTF8}
}

// NewValue renders b in enc.
func NewValue(enc types.TextEncoding, b []byte) (Value, error) {
	s, err := codec.Encode(enc, b)
	if err != nil {
		return Value{}, err
	}
	return Value{Data: s, Encoding: enc}, nil
}

// Bytes decodes the value. An empty encoding is UTF-8.
func (v Value) Bytes() ([]byte, error) {
	enc := v.Encoding
	if enc == "" {
		enc = types.TextUTF8
	}
	return codec.Decode(enc, v.Data)
}

// Render re-encodes a Base64 or Hex value in the variant selected by opts.
// UTF-8 values are returned unchanged.
func (v Value) Render(opts codec.Options) (Value, error) {
	if opts == (codec.Options{}) || (v.Encoding != types.TextBase64 && v.Encoding != types.TextHex) {
		return v, nil
	}
	b, err := v.Bytes()
	if err != nil {
		return Value{}, err
	}
	defer clear(b)
	s, err := codec.EncodeWith(v.Encoding, b, opts)
	if err != nil {
		return Value{}, err
	}
	return Value{Data: s, Encoding: v.Encoding}, nil
}

// IsZero reports whether the value carries no data.
func (v Value) IsZero() bool {
	return v.Data == ""
}

func (v Value) keyBytes() ([]byte, error) {
	enc := v.Encoding
	if enc == "" {
		enc = codec.Detect(v.Data)
	}
	return codec.Decode(enc, v.Data)
}

// optional decodes v, mapping an empty value to nil.
func (v Value) optional() ([]byte, error) {
	if v.IsZero() {
		return nil, nil
	}
	return v.Bytes()
}
