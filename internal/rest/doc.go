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

// Package rest exposes the keytool service over HTTP.
//
// Every operation is a POST under /api/v1 taking and returning JSON. Request
// bodies use the keytool request types directly; enumeration values are the
// canonical names listed by GET /api/v1/enums.
//
// # Server Setup
//
//	svc, _ := keytool.New(&keytool.Config{Logger: log})
//	server, _ := rest.NewServer(&rest.Config{
//	    Service: svc,
//	    Logger:  log,
//	    Address: "127.0.0.1:8080",
//	})
//
//	go server.Start()
//
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//	server.Stop(ctx)
//
// # API Endpoints
//
// Symmetric:
//   - POST /api/v1/symmetric/key - Random AES key
//   - POST /api/v1/symmetric/iv - Random IV or nonce
//   - POST /api/v1/symmetric/crypto - AES encrypt or decrypt
//
// Asymmetric keys:
//   - POST /api/v1/asymmetric/generate - Generate a key pair
//   - POST /api/v1/asymmetric/derive - Derive a public key
//   - POST /api/v1/keys/convert - Re-encode a key into another container
//   - POST /api/v1/keys/parse - Detect a key's algorithm and container
//   - POST /api/v1/keys/protect - Password protect a private key
//   - POST /api/v1/keys/unprotect - Remove password protection
//
// Hybrid and RSA encryption:
//   - POST /api/v1/ecies - ECIES encrypt or decrypt
//   - POST /api/v1/rsa/crypto - RSA encrypt or decrypt
//
// JWK:
//   - POST /api/v1/jwk/emit - Render a key as a JWK
//   - POST /api/v1/jwk/generate - Generate a JWK for a JOSE algorithm
//   - POST /api/v1/jwk/thumbprint - RFC 7638 thumbprint
//
// Discovery:
//   - GET /api/v1/enums - All supported value lists
//   - GET /api/v1/enums/{name} - One value list
//   - GET /api/v1/version - Build version
//
// Health:
//   - GET /health, /health/live, /health/ready, /health/startup
//
// Errors are returned as {"error": kind, "message": ..., "correlation_id": ...}
// where kind is the error kind name, e.g. MalformedInput.
package rest
