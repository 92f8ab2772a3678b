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

package ecdh_test

import (
	"fmt"

	"github.com/jeremyhahn/go-keytool/pkg/crypto/ecdh"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// Example demonstrates basic ECDH key agreement between Alice and Bob
func Example() {
	family := types.EC(types.CurveSecp256k1)

	alicePriv, alicePub, _ := ecdh.GenerateEphemeral(family)
	bobPriv, bobPub, _ := ecdh.GenerateEphemeral(family)

	aliceSecret, _ := ecdh.DeriveSharedSecret(family, alicePriv, bobPub)
	bobSecret, _ := ecdh.DeriveSharedSecret(family, bobPriv, alicePub)

	fmt.Printf("Secrets match: %v\n", string(aliceSecret) == string(bobSecret))
	fmt.Printf("Secret length: %d bytes\n", len(aliceSecret))

	// Output:
	// Secrets match: true
	// Secret length: 32 bytes
}
