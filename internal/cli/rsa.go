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

	"github.com/jeremyhahn/go-keytool/pkg/keytool"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

func newRSACommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rsa",
		Short: "RSA encryption with PKCS#1 v1.5 or OAEP padding",
	}
	cmd.AddCommand(
		newRSACryptCommand(opts, types.Encrypt),
		newRSACryptCommand(opts, types.Decrypt),
	)
	return cmd
}

func newRSACryptCommand(opts *globalOptions, direction types.Direction) *cobra.Command {
	var padding, digest, output string
	keyUsage := "RSA public key"
	if direction == types.Decrypt {
		keyUsage = "RSA private key"
	}
	cmd := &cobra.Command{
		Use:   string(direction),
		Short: "RSA " + string(direction) + " --input",
		Args:  requireNoArgs,
	}
	key := addValueInput(cmd, "key", keyUsage)
	input := addValueInput(cmd, "input", "data to "+string(direction))

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		p, err := types.ParseRSAPadding(padding)
		if err != nil {
			return err
		}
		d, err := keytool.ParseOptional(digest, types.ParseDigest)
		if err != nil {
			return err
		}
		enc, err := outputEncoding(output)
		if err != nil {
			return err
		}
		k, err := key.required(cmd)
		if err != nil {
			return err
		}
		in, err := input.required(cmd)
		if err != nil {
			return err
		}
		v, err := opts.service.RSACrypto(cmd.Context(), keytool.RSARequest{
			Direction: direction,
			Key:       k,
			Padding:   p,
			Digest:    d,
			Input:     in,
			Output:    enc,
		})
		if err != nil {
			return err
		}
		return opts.printer.PrintValue(v)
	}

	cmd.Flags().StringVar(&padding, "padding", string(types.RSAPaddingOAEP), "padding (pkcs1-v1_5, oaep)")
	cmd.Flags().StringVar(&digest, "digest", string(types.DigestSHA256), "OAEP digest")
	addOutputFlag(cmd, &output)
	return cmd
}
