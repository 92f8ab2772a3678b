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

package correlation

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestWithAndGetCorrelationID(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "abc")
	assert.Equal(t, "abc", GetCorrelationID(ctx))
	assert.Equal(t, "", GetCorrelationID(context.Background()))

	//nolint:staticcheck // nil context is handled
	assert.Equal(t, "", GetCorrelationID(nil))
	//nolint:staticcheck
	assert.Equal(t, "x", GetCorrelationID(WithCorrelationID(nil, "x")))
}

func TestGetOrGenerate(t *testing.T) {
	assert.Equal(t, "abc", GetOrGenerate(WithCorrelationID(context.Background(), "abc")))

	id := GetOrGenerate(context.Background())
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.NotEqual(t, id, GetOrGenerate(context.Background()))
}

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name      string
		requestID string
		corrID    string
		want      string
	}{
		{"RequestID", "req-1", "", "req-1"},
		{"CorrelationIDFallback", "", "corr-1", "corr-1"},
		{"RequestIDWins", "req-1", "corr-1", "req-1"},
		{"TrimmedWhitespace", "  req-2  ", "", "req-2"},
		{"ControlCharactersRejected", "bad\x01id", "", ""},
		{"TooLongRejected", strings.Repeat("a", 200), "", ""},
		{"Missing", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if tt.requestID != "" {
				r.Header.Set(RequestIDHeader, tt.requestID)
			}
			if tt.corrID != "" {
				r.Header.Set(CorrelationIDHeader, tt.corrID)
			}

			got := FromRequest(r)
			if tt.want != "" {
				assert.Equal(t, tt.want, got)
				return
			}
			_, err := uuid.Parse(got)
			assert.NoError(t, err, "generated id expected, got %q", got)
		})
	}
}
