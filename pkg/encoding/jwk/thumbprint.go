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

package jwk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jeremyhahn/go-keytool/pkg/adapters/kdf"
	"github.com/jeremyhahn/go-keytool/pkg/asymmetric"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// Thumbprint computes the RFC 7638 thumbprint of data, which is either JWK
// JSON or key bytes in any supported container. Private keys and public
// keys of the same pair share a thumbprint.
//
// The thumbprint is computed from the required members of a JWK representing
// the key, in lexicographic order, with no whitespace or line breaks.
//
// For RSA keys: {"e":"...","kty":"RSA","n":"..."}
// For EC keys: {"crv":"...","kty":"EC","x":"...","y":"..."}
// For OKP keys: {"crv":"...","kty":"OKP","x":"..."}
// For oct keys: {"k":"...","kty":"oct"}
func Thumbprint(data []byte, digest types.Digest) (string, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		jwk, err := Unmarshal(trimmed)
		if err != nil {
			return "", err
		}
		return jwk.Thumbprint(digest)
	}

	k, _, err := asymmetric.Detect(data)
	if err != nil {
		return "", err
	}
	defer k.Zero()

	jwk, err := FromKey(k)
	if err != nil {
		return "", err
	}
	return jwk.Thumbprint(digest)
}

// Thumbprint computes the JWK thumbprint for this key using the specified digest.
// This method can be called on both public and private keys.
func (jwk *JWK) Thumbprint(digest types.Digest) (string, error) {
	newHash, err := kdf.HashFunc(digest)
	if err != nil {
		return "", err
	}

	requiredFields, err := jwk.requiredThumbprintFields()
	if err != nil {
		return "", err
	}

	h := newHash()
	h.Write(serializeForThumbprint(requiredFields))
	return b64.EncodeToString(h.Sum(nil)), nil
}

// ThumbprintSHA256 is a convenience method that computes the SHA-256 thumbprint.
func (jwk *JWK) ThumbprintSHA256() (string, error) {
	return jwk.Thumbprint(types.DigestSHA256)
}

// requiredThumbprintFields returns the required members per RFC 7638 Section 3.2.
func (jwk *JWK) requiredThumbprintFields() (map[string]string, error) {
	var required []string
	switch jwk.Kty {
	case string(KeyTypeRSA):
		required = []string{"e", "n"}
	case string(KeyTypeEC):
		required = []string{"crv", "x", "y"}
	case string(KeyTypeOKP):
		required = []string{"crv", "x"}
	case string(KeyTypeOct):
		required = []string{"k"}
	default:
		return nil, fmt.Errorf("%w: key type %q has no thumbprint", types.ErrUnsupportedAlgorithm, jwk.Kty)
	}

	values := map[string]string{
		"crv": jwk.Crv, "e": jwk.E, "k": jwk.K, "n": jwk.N, "x": jwk.X, "y": jwk.Y,
	}
	fields := map[string]string{"kty": jwk.Kty}
	var missing []string
	for _, name := range required {
		if values[name] == "" {
			missing = append(missing, name)
			continue
		}
		fields[name] = values[name]
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s JWK missing %s", types.ErrMalformedKey, jwk.Kty, strings.Join(missing, ", "))
	}
	return fields, nil
}

// serializeForThumbprint writes the members sorted by name with no
// whitespace.
func serializeForThumbprint(fields map[string]string) []byte {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		// Marshalling a string cannot fail
		k, _ := json.Marshal(key)
		v, _ := json.Marshal(fields[key])
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes()
}
