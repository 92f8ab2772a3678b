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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-keytool/pkg/keytool"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

func newECIESCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ecies",
		Short: "Hybrid encryption with an elliptic curve key agreement",
		Long: `ECIES encrypts to an ecc or edwards public key with an ephemeral key
agreement, a key derivation function and AES-GCM. The ciphertext is
ephemeral public point || nonce || ciphertext || tag.`,
	}
	cmd.AddCommand(
		newECIESCryptCommand(opts, types.Encrypt),
		newECIESCryptCommand(opts, types.Decrypt),
	)
	return cmd
}

func newECIESCryptCommand(opts *globalOptions, direction types.Direction) *cobra.Command {
	var (
		curve, kdf, digest string
		alg, output        string
		iterations         int
		scryptN, scryptR   int
		scryptP            int
	)
	keyUsage := "recipient public key"
	if direction == types.Decrypt {
		keyUsage = "recipient private key"
	}
	cmd := &cobra.Command{
		Use:   string(direction),
		Short: "ECIES " + string(direction) + " --input",
		Example: `  keytool ecies encrypt --key-file pub.pem --kdf HKDF --digest SHA-256 --input "hello"
  keytool ecies decrypt --key-file key.pem --kdf HKDF --digest SHA-256 --input-encoding base64 --input "..."`,
		Args: requireNoArgs,
	}
	key := addValueInput(cmd, "key", keyUsage)
	salt := addValueInput(cmd, "salt", "KDF salt")
	info := addValueInput(cmd, "info", "KDF context info")
	input := addValueInput(cmd, "input", "data to "+string(direction))

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		req := keytool.ECIESRequest{
			Direction:  direction,
			Iterations: iterations,
			ScryptN:    scryptN,
			ScryptR:    scryptR,
			ScryptP:    scryptP,
		}
		var err error
		if req.Curve, err = keytool.ParseOptional(curve, types.ParseCurve); err != nil {
			return err
		}
		if req.KDF, err = types.ParseKDF(kdf); err != nil {
			return err
		}
		if req.Digest, err = keytool.ParseOptional(digest, types.ParseDigest); err != nil {
			return err
		}
		if req.EncryptionAlg, err = types.ParseEciesAlgorithm(alg); err != nil {
			return err
		}
		if req.Output, err = outputEncoding(output); err != nil {
			return err
		}
		if req.Key, err = key.required(cmd); err != nil {
			return err
		}
		if req.Salt, err = salt.value(cmd); err != nil {
			return err
		}
		if req.Info, err = info.value(cmd); err != nil {
			return err
		}
		if req.Input, err = input.required(cmd); err != nil {
			return err
		}

		v, state, err := opts.service.ECIES(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("ecies %s stopped at %s: %w", direction, state, err)
		}
		return opts.printer.PrintECIES(v, state)
	}

	cmd.Flags().StringVar(&curve, "curve", "", "curve of the key; detected from the key when omitted")
	cmd.Flags().StringVar(&kdf, "kdf", string(types.KDFHKDF), "key derivation function (PBKDF2, Scrypt, HKDF, ConcatKDF)")
	cmd.Flags().StringVar(&digest, "digest", string(types.DigestSHA256), "KDF digest")
	cmd.Flags().StringVar(&alg, "cipher", string(types.EciesAES256GCM), "symmetric algorithm (AES-128-GCM, AES-256-GCM)")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "PBKDF2 iterations (0 uses the default)")
	cmd.Flags().IntVar(&scryptN, "n", 0, "scrypt cost N (0 uses the default)")
	cmd.Flags().IntVar(&scryptR, "r", 0, "scrypt block size r (0 uses the default)")
	cmd.Flags().IntVar(&scryptP, "p", 0, "scrypt parallelism p (0 uses the default)")
	addOutputFlag(cmd, &output)
	return cmd
}
