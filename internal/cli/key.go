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

// algorithmFlags selects an AlgorithmFamily.
type algorithmFlags struct {
	kind  string
	curve string
	bits  int
}

func addAlgorithmFlags(cmd *cobra.Command, defaultKind string) *algorithmFlags {
	a := &algorithmFlags{}
	cmd.Flags().StringVar(&a.kind, "algorithm", defaultKind, "key algorithm (rsa, ecc, edwards)")
	cmd.Flags().StringVar(&a.curve, "curve", "", "curve for ecc (P-256, P-384, P-521, secp256k1, SM2) or edwards (Curve25519)")
	cmd.Flags().IntVar(&a.bits, "bits", 2048, "RSA modulus size (2048, 3072, 4096)")
	return a
}

func (a *algorithmFlags) family() (types.AlgorithmFamily, error) {
	return keytool.ParseAlgorithm(a.kind, a.curve, a.bits)
}

// parseContainer parses "pkcs8-pem" plus an optional text encoding for the
// container bytes.
func parseContainer(s, text string) (types.KeyContainerDescriptor, error) {
	d, err := types.ParseContainer(s)
	if err != nil {
		return d, err
	}
	if d.Text, err = keytool.ParseOptional(text, types.ParseTextEncoding); err != nil {
		return d, err
	}
	return d, nil
}

func newKeyCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Asymmetric key generation, conversion and protection",
	}
	cmd.AddCommand(
		newKeyGenerateCommand(opts),
		newKeyDeriveCommand(opts),
		newKeyConvertCommand(opts),
		newKeyParseCommand(opts),
		newKeyProtectCommand(opts),
		newKeyUnprotectCommand(opts),
	)
	return cmd
}

func newKeyGenerateCommand(opts *globalOptions) *cobra.Command {
	var (
		container, text       string
		privateOut, publicOut string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an asymmetric key pair",
		Example: `  keytool key generate --algorithm rsa --bits 3072 --container pkcs1-pem
  keytool key generate --algorithm ecc --curve P-256 --container sec1-der --text hex
  keytool key generate --algorithm edwards --curve Curve25519 --private-out key.pem --public-out pub.pem`,
		Args: requireNoArgs,
	}
	alg := addAlgorithmFlags(cmd, string(types.KindEllipticCurve))

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		family, err := alg.family()
		if err != nil {
			return err
		}
		d, err := parseContainer(container, text)
		if err != nil {
			return err
		}
		pair, err := opts.service.GenerateAsymmetricKey(cmd.Context(), keytool.GenerateKeyRequest{
			Algorithm: family,
			Container: d,
		})
		if err != nil {
			return err
		}

		if privateOut != "" {
			if err := writeValue(privateOut, pair.PrivateKey); err != nil {
				return err
			}
		}
		if publicOut != "" {
			if err := writeValue(publicOut, pair.PublicKey); err != nil {
				return err
			}
		}
		if privateOut != "" || publicOut != "" {
			return opts.printer.PrintParsedKey(&types.ParsedKey{
				Algorithm: pair.Algorithm,
				Container: pair.Container,
				IsPrivate: true,
			})
		}
		return opts.printer.PrintKeyPair(pair)
	}

	cmd.Flags().StringVar(&container, "container", "pkcs8-pem", "private key container (pkcs1-pem, pkcs8-der, sec1-pem, ...)")
	cmd.Flags().StringVar(&text, "text", "", "text encoding for DER output (base64, hex)")
	cmd.Flags().StringVar(&privateOut, "private-out", "", "write the private key to this file")
	cmd.Flags().StringVar(&publicOut, "public-out", "", "write the public key to this file")
	return cmd
}

func newKeyDeriveCommand(opts *globalOptions) *cobra.Command {
	var container, output string
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive the public key of a private key",
		Args:  requireNoArgs,
	}
	key := addValueInput(cmd, "key", "private key")
	alg := addAlgorithmFlags(cmd, string(types.KindEllipticCurve))

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		family, err := alg.family()
		if err != nil {
			return err
		}
		d, err := types.ParseContainer(container)
		if err != nil {
			return err
		}
		enc, err := outputEncoding(output)
		if err != nil {
			return err
		}
		priv, err := key.required(cmd)
		if err != nil {
			return err
		}
		v, err := opts.service.DerivePublicKey(cmd.Context(), keytool.DerivePublicKeyRequest{
			PrivateKey: priv,
			Algorithm:  family,
			Container:  d,
			Output:     enc,
		})
		if err != nil {
			return err
		}
		return opts.printer.PrintValue(v)
	}

	cmd.Flags().StringVar(&container, "container", "pkcs8-pem", "container of the private key")
	addOutputFlag(cmd, &output)
	return cmd
}

func newKeyConvertCommand(opts *globalOptions) *cobra.Command {
	var (
		from, to, toText string
		public           bool
		output           string
	)
	cmd := &cobra.Command{
		Use:     "convert",
		Short:   "Re-encode a key into another container",
		Example: `  keytool key convert --algorithm rsa --key-file key.pem --from pkcs1-pem --to pkcs8-der --to-text base64`,
		Args:    requireNoArgs,
	}
	key := addValueInput(cmd, "key", "key to convert")
	alg := addAlgorithmFlags(cmd, string(types.KindEllipticCurve))

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		family, err := alg.family()
		if err != nil {
			return err
		}
		src, err := types.ParseContainer(from)
		if err != nil {
			return err
		}
		dst, err := parseContainer(to, toText)
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
		v, err := opts.service.TransferKeyFormat(cmd.Context(), keytool.TransferKeyRequest{
			Key:       k,
			Algorithm: family,
			From:      src,
			To:        dst,
			IsPublic:  public,
			Output:    enc,
		})
		if err != nil {
			return err
		}
		return opts.printer.PrintValue(v)
	}

	cmd.Flags().StringVar(&from, "from", "", "source container")
	cmd.Flags().StringVar(&to, "to", "", "target container")
	cmd.Flags().StringVar(&toText, "to-text", "", "text encoding of a DER target (base64, hex)")
	cmd.Flags().BoolVar(&public, "public", false, "the key is a public key")
	addOutputFlag(cmd, &output)
	return cmd
}

func newKeyParseCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Detect the algorithm and container of a key",
		Long: `Detect the algorithm and container of a key given with --key, --key-file
or as a file argument. Detection tries PEM first, then DER in every
supported container.`,
		Args: cobra.MaximumNArgs(1),
	}
	key := addValueInput(cmd, "key", "key to inspect")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			if key.set() {
				return fmt.Errorf("%w: give the key as an argument or a flag, not both", types.ErrMalformedInput)
			}
			key.file = args[0]
		}
		k, err := key.required(cmd)
		if err != nil {
			return err
		}
		parsed, err := opts.service.ParseKey(cmd.Context(), k)
		if err != nil {
			return err
		}
		return opts.printer.PrintParsedKey(parsed)
	}
	return cmd
}

func newKeyProtectCommand(opts *globalOptions) *cobra.Command {
	var (
		password, kdf, encoding string
		iterations              int
		scryptN, scryptR        int
		scryptP, keySize        int
		output                  string
	)
	cmd := &cobra.Command{
		Use:   "protect",
		Short: "Encrypt a private key into a password protected PKCS#8 container",
		Long: `Encrypt a private key into a password protected PKCS#8 container
(PBES2 with AES-CBC). The password is read from --password or the
KEYTOOL_PASSWORD environment variable.`,
		Args: requireNoArgs,
	}
	key := addValueInput(cmd, "key", "private key (PEM, or DER with --key-encoding)")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		pw, err := opts.passwordFor(password)
		if err != nil {
			return err
		}
		k, err := keytool.ParseOptional(kdf, types.ParseKDF)
		if err != nil {
			return err
		}
		e, err := types.ParseKeyEncoding(encoding)
		if err != nil {
			return err
		}
		enc, err := outputEncoding(output)
		if err != nil {
			return err
		}
		priv, err := key.required(cmd)
		if err != nil {
			return err
		}
		v, err := opts.service.ProtectKey(cmd.Context(), keytool.ProtectKeyRequest{
			Key:         priv,
			Password:    pw,
			KDF:         k,
			Iterations:  iterations,
			ScryptN:     scryptN,
			ScryptR:     scryptR,
			ScryptP:     scryptP,
			KeySizeBits: keySize,
			Encoding:    e,
			Output:      enc,
		})
		if err != nil {
			return err
		}
		return opts.printer.PrintValue(v)
	}

	cmd.Flags().StringVar(&password, "password", "", "protection password")
	cmd.Flags().StringVar(&kdf, "kdf", string(types.KDFPBKDF2), "key derivation function (PBKDF2, Scrypt)")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "PBKDF2 iterations (0 uses the default)")
	cmd.Flags().IntVar(&scryptN, "n", 0, "scrypt cost N (0 uses the default)")
	cmd.Flags().IntVar(&scryptR, "r", 0, "scrypt block size r (0 uses the default)")
	cmd.Flags().IntVar(&scryptP, "p", 0, "scrypt parallelism p (0 uses the default)")
	cmd.Flags().IntVar(&keySize, "cipher-bits", 256, "AES-CBC key size (128, 192, 256)")
	cmd.Flags().StringVar(&encoding, "encoding", string(types.PEM), "output container encoding (pem, der)")
	addOutputFlag(cmd, &output)
	return cmd
}

func newKeyUnprotectCommand(opts *globalOptions) *cobra.Command {
	var password, to, text, output string
	cmd := &cobra.Command{
		Use:   "unprotect",
		Short: "Decrypt a password protected PKCS#8 key",
		Args:  requireNoArgs,
	}
	key := addValueInput(cmd, "key", "encrypted PKCS#8 key")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		pw, err := opts.passwordFor(password)
		if err != nil {
			return err
		}
		d, err := parseContainer(to, text)
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
		v, err := opts.service.UnprotectKey(cmd.Context(), keytool.UnprotectKeyRequest{
			Key:      k,
			Password: pw,
			To:       d,
			Output:   enc,
		})
		if err != nil {
			return err
		}
		return opts.printer.PrintValue(v)
	}

	cmd.Flags().StringVar(&password, "password", "", "protection password")
	cmd.Flags().StringVar(&to, "to", "pkcs8-pem", "container for the decrypted key")
	cmd.Flags().StringVar(&text, "text", "", "text encoding of a DER result (base64, hex)")
	addOutputFlag(cmd, &output)
	return cmd
}
