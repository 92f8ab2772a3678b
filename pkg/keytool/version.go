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
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// BuildVersion is set at link time with
// -ldflags "-X github.com/jeremyhahn/go-keytool/pkg/keytool.BuildVersion=v1.2.3".
var BuildVersion string

// Version returns the build version. Without a link time version it is read
// from the VERSION file in the project root, and is "unknown" when that file
// is missing or empty.
func Version() string {
	if v := strings.TrimSpace(BuildVersion); v != "" {
		return v
	}

	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "unknown"
	}

	// pkg/keytool/ -> project root
	versionFile := filepath.Join(filepath.Dir(filename), "..", "..", "VERSION")

	// #nosec G304 - Reading fixed VERSION file from project root
	data, err := os.ReadFile(versionFile)
	if err != nil {
		return "unknown"
	}

	version := strings.TrimSpace(string(data))
	if version == "" {
		return "unknown"
	}
	return version
}
