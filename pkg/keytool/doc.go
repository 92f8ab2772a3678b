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

// Package keytool is the call surface shared by the CLI and the HTTP server.
//
// Every operation takes and returns text-encoded values so that callers never
// handle raw key bytes. A Value pairs the text with its encoding:
//
//	svc, _ := keytool.New(&keytool.Config{Logger: logger})
//	key, err := svc.GenerateSymmetricKey(ctx, keytool.SymmetricKeyRequest{
//		KeySizeBits: 256,
//		Output:      types.TextHex,
//	})
//
// Each call emits one log line with the algorithm parameters and records the
// operation in the Prometheus collectors of pkg/metrics. Key material,
// passwords and plaintext are never logged.
//
// Errors wrap the sentinels in pkg/types; use types.ErrorKind to obtain the
// taxonomy name.
package keytool
