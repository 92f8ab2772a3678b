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

package cli

import (
	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-keytool/pkg/encoding/jwk"
	"github.com/jeremyhahn/go-keytool/pkg/keytool"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

func newJWKCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jwk",
		Short: "JSON Web Key emission, generation and thumbprints",
	}
	cmd.AddCommand(
		newJWKEmitCommand(opts),
		newJWKGenerateCommand(opts),
		newJWKThumbprintCommand(opts),
	)
	return cmd
}

func newJWKEmitCommand(opts *globalOptions) *cobra.Command {
	var meta jwk.Metadata
	cmd := &cobra.Command{
		Use:     "emit",
		Short:   "Render an existing key as a JWK",
		Example: `  keytool jwk emit --key-file key.pem --algorithm ecc --curve P-256 --kid signing-1 --use sig`,
		Args:    requireNoArgs,
	}
	key := addValueInput(cmd, "key", "key to render (any supported container)")
	alg := addAlgorithmFlags(cmd, string(types.KindEllipticCurve))

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		family, err := alg.family()
		if err != nil {
			return err
		}
		k, err := key.required(cmd)
		if err != nil {
			return err
		}
		out, err := opts.service.GenerateJWK(cmd.Context(), keytool.EmitJWKRequest{
			Key:       k,
			Algorithm: family,
			Metadata:  meta,
		})
		if err != nil {
			return err
		}
		return opts.printer.PrintJWK(out)
	}

	cmd.Flags().StringVar(&meta.KeyID, "kid", "", "key ID")
	cmd.Flags().StringVar(&meta.Algorithm, "alg", "", "JOSE algorithm")
	cmd.Flags().StringVar(&meta.Use, "use", "", "public key use (sig, enc)")
	cmd.Flags().StringSliceVar(&meta.Operations, "key-ops", nil, "key operations")
	return cmd
}

func newJWKGenerateCommand(opts *globalOptions) *cobra.Command {
	var req keytool.CreateJWKRequest
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new JWK for a JOSE algorithm",
		Example: `  keytool jwk generate --alg ES256 --kid k1
  keytool jwk generate --alg A256KW`,
		Args: requireNoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := opts.service.CreateJWK(cmd.Context(), req)
			if err != nil {
				return err
			}
			return opts.printer.PrintJWK(out)
		},
	}
	cmd.Flags().StringVar(&req.Algorithm, "alg", "ES256", "JOSE algorithm (see keytool enums jwk-algorithms)")
	cmd.Flags().StringVar(&req.KeyID, "kid", "", "key ID")
	return cmd
}

func newJWKThumbprintCommand(opts *globalOptions) *cobra.Command {
	var digest string
	cmd := &cobra.Command{
		Use:   "thumbprint",
		Short: "Compute the RFC 7638 thumbprint of a JWK or key",
		Args:  requireNoArgs,
	}
	key := addValueInput(cmd, "key", "JWK JSON or key")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		d, err := keytool.ParseOptional(digest, types.ParseDigest)
		if err != nil {
			return err
		}
		k, err := key.required(cmd)
		if err != nil {
			return err
		}
		out, err := opts.service.Thumbprint(cmd.Context(), keytool.ThumbprintRequest{Key: k, Digest: d})
		if err != nil {
			return err
		}
		return opts.printer.PrintThumbprint(out)
	}
	cmd.Flags().StringVar(&digest, "digest", string(types.DigestSHA256), "thumbprint digest")
	return cmd
}
