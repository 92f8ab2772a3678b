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

package jwk_test

import (
	"fmt"
	"log"

	"github.com/jeremyhahn/go-keytool/pkg/encoding/jwk"
)

func ExampleGenerate() {
	key, err := jwk.Generate("ES256", "signing-key")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(key.Kty, key.Crv, key.Use, key.Kid)
	// Output: EC P-256 sig signing-key
}

func ExampleJWK_Thumbprint() {
	key := &jwk.JWK{Kty: "OKP", Crv: "Ed25519", X: "11qYAYKxCrfVS_7TyWQHOg7hcvPapiMlrwIaaPcHURo"}
	tp, err := key.ThumbprintSHA256()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(tp)
	// Output: kPrK_qmxVWaYVA9wwBF6Iuo3vVzz7TxHCTwXBygrS4k
}
