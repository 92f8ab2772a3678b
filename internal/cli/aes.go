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

func newAESCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aes",
		Short: "Symmetric key generation and AES encryption",
	}
	cmd.AddCommand(
		newAESKeygenCommand(opts),
		newAESIVCommand(opts),
		newAESCryptCommand(opts, types.Encrypt),
		newAESCryptCommand(opts, types.Decrypt),
	)
	return cmd
}

func newAESKeygenCommand(opts *globalOptions) *cobra.Command {
	var (
		size   int
		output string
	)
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a random AES key",
		Example: `  keytool aes keygen --size 256
  keytool aes keygen --size 128 --out-encoding hex`,
		Args: requireNoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc, err := outputEncoding(output)
			if err != nil {
				return err
			}
			v, err := opts.service.GenerateSymmetricKey(cmd.Context(), keytool.SymmetricKeyRequest{
				KeySizeBits: size,
				Output:      enc,
			})
			if err != nil {
				return err
			}
			return opts.printer.PrintValue(v)
		},
	}
	cmd.Flags().IntVar(&size, "size", 256, "key size in bits (128, 192, 256)")
	addOutputFlag(cmd, &output)
	return cmd
}

func newAESIVCommand(opts *globalOptions) *cobra.Command {
	var mode, output string
	cmd := &cobra.Command{
		Use:   "iv",
		Short: "Generate a random IV (CBC) or nonce (GCM)",
		Args:  requireNoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := types.ParseCipherMode(mode)
			if err != nil {
				return err
			}
			enc, err := outputEncoding(output)
			if err != nil {
				return err
			}
			v, err := opts.service.GenerateIV(cmd.Context(), keytool.IVRequest{Mode: m, Output: enc})
			if err != nil {
				return err
			}
			return opts.printer.PrintValue(v)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(types.ModeGCM), "cipher mode (CBC, GCM)")
	addOutputFlag(cmd, &output)
	return cmd
}

func newAESCryptCommand(opts *globalOptions, direction types.Direction) *cobra.Command {
	var (
		size          int
		mode, padding string
		output        string
	)
	cmd := &cobra.Command{
		Use:   string(direction),
		Short: "AES " + string(direction) + " --input with --key",
		Args:  requireNoArgs,
	}
	key := addValueInput(cmd, "key", "AES key")
	iv := addValueInput(cmd, "iv", "IV (CBC) or nonce (GCM); omit for ECB")
	aad := addValueInput(cmd, "aad", "additional authenticated data (GCM)")
	input := addValueInput(cmd, "input", "data to "+string(direction))

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		spec, err := keytool.ParseCipherSpec(size, mode, padding)
		if err != nil {
			return err
		}
		enc, err := outputEncoding(output)
		if err != nil {
			return err
		}
		req := keytool.AESRequest{Direction: direction, Spec: spec, Output: enc}
		if req.Key, err = key.required(cmd); err != nil {
			return err
		}
		if req.IV, err = iv.value(cmd); err != nil {
			return err
		}
		if req.AAD, err = aad.value(cmd); err != nil {
			return err
		}
		if req.Input, err = input.required(cmd); err != nil {
			return err
		}
		v, err := opts.service.AESCrypto(cmd.Context(), req)
		if err != nil {
			return err
		}
		return opts.printer.PrintValue(v)
	}

	cmd.Flags().IntVar(&size, "size", 256, "key size in bits (128, 192, 256)")
	cmd.Flags().StringVar(&mode, "mode", string(types.ModeGCM), "cipher mode (ECB, CBC, GCM)")
	cmd.Flags().StringVar(&padding, "padding", string(types.PaddingNone), "padding (PKCS7, None)")
	addOutputFlag(cmd, &output)
	return cmd
}
