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

package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-keytool/pkg/crypto/rand"
)

type failingResolver struct{}

func (failingResolver) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }
func (failingResolver) Rand(int) ([]byte, error) { return nil, errors.New("entropy exhausted") }

func TestDefaultCheckerReady(t *testing.T) {
	c := NewDefaultChecker()
	results := c.Ready(context.Background())
	require.Len(t, results, 2)
	assert.Equal(t, "cipher", results[0].Name)
	assert.Equal(t, "random", results[1].Name)
	assert.Equal(t, StatusHealthy, AggregateStatus(results))
}

func TestReadyWithoutChecks(t *testing.T) {
	results := NewChecker().Ready(context.Background())
	require.Len(t, results, 1)
	assert.Equal(t, "default", results[0].Name)
	assert.Equal(t, StatusHealthy, results[0].Status)
}

func TestReadyFillsName(t *testing.T) {
	c := NewChecker()
	c.RegisterCheck("custom", func(context.Context) CheckResult { return CheckResult{Status: StatusDegraded} })
	c.RegisterCheck("ignored", nil)

	results := c.Ready(context.Background())
	require.Len(t, results, 1)
	assert.Equal(t, "custom", results[0].Name)
	assert.Equal(t, StatusDegraded, AggregateStatus(results))
}

func TestRandomSourceFailure(t *testing.T) {
	prev := rand.SetResolver(failingResolver{})
	defer rand.SetResolver(prev)

	result := RandomSourceCheck(context.Background())
	assert.Equal(t, StatusUnhealthy, result.Status)
	assert.Contains(t, result.Error, "entropy exhausted")
}

func TestCipherSelfTest(t *testing.T) {
	assert.Equal(t, StatusHealthy, CipherSelfTestCheck(context.Background()).Status)
}

func TestStartup(t *testing.T) {
	c := NewChecker()
	assert.Equal(t, StatusUnhealthy, c.Startup(context.Background()).Status)
	assert.False(t, c.IsStarted())

	c.MarkStarted()
	assert.Equal(t, StatusHealthy, c.Startup(context.Background()).Status)
	assert.True(t, c.IsStarted())

	c.MarkNotStarted()
	assert.False(t, c.IsStarted())
	assert.Equal(t, StatusHealthy, c.Live(context.Background()).Status)
	assert.Greater(t, int64(c.Uptime()), int64(0))
}

func TestAggregateStatus(t *testing.T) {
	tests := []struct {
		name    string
		results []CheckResult
		want    Status
	}{
		{"Empty", nil, StatusHealthy},
		{"AllHealthy", []CheckResult{{Status: StatusHealthy}, {Status: StatusHealthy}}, StatusHealthy},
		{"Degraded", []CheckResult{{Status: StatusHealthy}, {Status: StatusDegraded}}, StatusDegraded},
		{"UnhealthyWins", []CheckResult{{Status: StatusDegraded}, {Status: StatusUnhealthy}}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AggregateStatus(tt.results))
		})
	}
}
