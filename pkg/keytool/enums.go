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
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jeremyhahn/go-keytool/pkg/container"
	"github.com/jeremyhahn/go-keytool/pkg/encoding/jwk"
	"github.com/jeremyhahn/go-keytool/pkg/logging"
	"github.com/jeremyhahn/go-keytool/pkg/metrics"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// Enumeration names accepted by Enumeration.
const (
	EnumCurves          = "curves"
	EnumEdwardsCurves   = "edwards-curves"
	EnumDigests         = "digests"
	EnumKDFs            = "kdfs"
	EnumPaddings        = "paddings"
	EnumModes           = "modes"
	EnumAESKeySizes     = "aes-key-sizes"
	EnumRSAKeySizes     = "rsa-key-sizes"
	EnumRSAPaddings     = "rsa-paddings"
	EnumEciesAlgorithms = "ecies-algorithms"
	EnumTextEncodings   = "text-encodings"
	EnumContainers      = "containers"
	EnumJWKAlgorithms   = "jwk-algorithms"
)

var enumerations = map[string]func() any{
	EnumCurves:          func() any { return types.Curves() },
	EnumEdwardsCurves:   func() any { return types.EdwardsCurves() },
	EnumDigests:         func() any { return types.Digests() },
	EnumKDFs:            func() any { return types.KDFs() },
	EnumPaddings:        func() any { return types.Paddings() },
	EnumModes:           func() any { return types.CipherModes() },
	EnumAESKeySizes:     func() any { return types.AESKeySizes() },
	EnumRSAKeySizes:     func() any { return types.RSAKeySizes() },
	EnumRSAPaddings:     func() any { return types.RSAPaddings() },
	EnumEciesAlgorithms: func() any { return types.EciesAlgorithms() },
	EnumTextEncodings:   func() any { return types.TextEncodings() },
	EnumContainers:      func() any { return container.Entries() },
	EnumJWKAlgorithms:   func() any { return jwk.Algorithms() },
}

// EnumerationNames returns the known enumeration names in sorted order.
func EnumerationNames() []string {
	names := make([]string, 0, len(enumerations))
	for name := range enumerations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Enumerations returns every supported value list keyed by name.
func (s *Service) Enumerations(ctx context.Context) map[string]any {
	start := time.Now()
	out := make(map[string]any, len(enumerations))
	for name, list := range enumerations {
		out[name] = list()
	}
	s.finish(ctx, metrics.OpEnumerations, start, nil, logging.String("name", "all"))
	return out
}

// Enumeration returns one value list. Underscores are accepted in place of
// hyphens.
func (s *Service) Enumeration(ctx context.Context, name string) (out any, err error) {
	start := time.Now()
	defer func() {
		s.finish(ctx, metrics.OpEnumerations, start, err, logging.String("name", name))
	}()

	list, ok := enumerations[strings.ToLower(strings.ReplaceAll(name, "_", "-"))]
	if !ok {
		return nil, fmt.Errorf("%w: enumeration %q", types.ErrMalformedInput, name)
	}
	return list(), nil
}
