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

package rand

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-keytool/pkg/types"
)

type failingResolver struct{}

func (failingResolver) Read(p []byte) (int, error) { return 0, errors.New("entropy exhausted") }
func (f failingResolver) Rand(n int) ([]byte, error) {
	return readN(f, n)
}

func TestBytes(t *testing.T) {
	a, err := Bytes(32)
	require.NoError(t, err)
	assert.Len(t, a, 32)

	b, err := Bytes(32)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	_, err = Bytes(0)
	assert.ErrorIs(t, err, types.ErrInvalidInputLength)
}

func TestSetResolver(t *testing.T) {
	prev := SetResolver(failingResolver{})
	defer SetResolver(prev)

	_, err := Bytes(16)
	assert.ErrorIs(t, err, types.ErrGenerationFailed)

	buf := make([]byte, 4)
	_, err = Reader.Read(buf)
	assert.Error(t, err)
}

func TestSoftwareResolver(t *testing.T) {
	r := NewSoftwareResolver()
	b, err := r.Rand(12)
	require.NoError(t, err)
	assert.Len(t, b, 12)
}
