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

// Package rand is the process-wide source of randomness for key, IV and
// ephemeral key material. No other package reads crypto/rand directly.
//
// # Usage
//
//	key, err := rand.Bytes(32)
//
// Components that need an io.Reader (RSA generation, ECDH key generation)
// use rand.Reader.
//
// # Thread Safety
//
// The default resolver is safe for concurrent use. Replacing it with
// SetResolver is intended for process start-up and tests only.
package rand

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// Resolver produces cryptographically secure random bytes.
type Resolver interface {
	io.Reader

	// Rand returns n random bytes.
	Rand(n int) ([]byte, error)
}

// softwareResolver reads from the operating system CSPRNG.
type softwareResolver struct{}

// NewSoftwareResolver returns a Resolver backed by crypto/rand.
func NewSoftwareResolver() Resolver {
	return softwareResolver{}
}

func (softwareResolver) Read(p []byte) (int, error) {
	return rand.Read(p)
}

func (r softwareResolver) Rand(n int) ([]byte, error) {
	return readN(r, n)
}

var current atomic.Value

func init() {
	current.Store(resolverBox{NewSoftwareResolver()})
}

// resolverBox keeps atomic.Value stores of one concrete type.
type resolverBox struct {
	Resolver
}

// SetResolver replaces the process-wide resolver and returns the previous one.
func SetResolver(r Resolver) Resolver {
	prev := current.Swap(resolverBox{r}).(resolverBox)
	return prev.Resolver
}

// Default returns the process-wide resolver.
func Default() Resolver {
	return current.Load().(resolverBox).Resolver
}

// Reader is an io.Reader over the process-wide resolver.
var Reader io.Reader = reader{}

type reader struct{}

func (reader) Read(p []byte) (int, error) {
	return Default().Read(p)
}

// Bytes returns n random bytes from the process-wide resolver. Failures are
// reported as types.ErrGenerationFailed.
func Bytes(n int) ([]byte, error) {
	return readN(Default(), n)
}

func readN(r io.Reader, n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: requested %d random bytes", types.ErrInvalidInputLength, n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrGenerationFailed, err)
	}
	return b, nil
}
