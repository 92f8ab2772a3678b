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
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-keytool/internal/config"
	"github.com/jeremyhahn/go-keytool/pkg/keytool"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// valueInput binds --NAME, --NAME-file and --NAME-encoding to one
// keytool.Value.
type valueInput struct {
	name     string
	data     string
	file     string
	encoding string
}

func addValueInput(cmd *cobra.Command, name, usage string) *valueInput {
	in := &valueInput{name: name}
	flags := cmd.Flags()
	flags.StringVar(&in.data, name, "", usage)
	flags.StringVar(&in.file, name+"-file", "", fmt.Sprintf("read %s from a file (- for stdin)", name))
	flags.StringVar(&in.encoding, name+"-encoding", "", fmt.Sprintf("encoding of %s (utf8, base64, hex)", name))
	return in
}

func (in *valueInput) set() bool {
	return in.data != "" || in.file != ""
}

// value resolves the input. File content that is not valid UTF-8 is
// carried as base64 regardless of --NAME-encoding.
func (in *valueInput) value(cmd *cobra.Command) (keytool.Value, error) {
	enc, err := keytool.ParseOptional(in.encoding, types.ParseTextEncoding)
	if err != nil {
		return keytool.Value{}, err
	}
	if in.data != "" && in.file != "" {
		return keytool.Value{}, fmt.Errorf("%w: --%s and --%s-file are mutually exclusive", types.ErrMalformedInput, in.name, in.name)
	}
	if in.file == "" {
		return keytool.Value{Data: in.data, Encoding: enc}, nil
	}

	raw, err := readInput(cmd, in.file)
	if err != nil {
		return keytool.Value{}, fmt.Errorf("%w: --%s-file: %v", types.ErrMalformedInput, in.name, err)
	}
	if !utf8.Valid(raw) {
		return keytool.Value{Data: base64.StdEncoding.EncodeToString(raw), Encoding: types.TextBase64}, nil
	}
	return keytool.Value{Data: string(raw), Encoding: enc}, nil
}

// required is value that rejects an unset input.
func (in *valueInput) required(cmd *cobra.Command) (keytool.Value, error) {
	if !in.set() {
		return keytool.Value{}, fmt.Errorf("%w: --%s or --%s-file is required", types.ErrMalformedInput, in.name, in.name)
	}
	return in.value(cmd)
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	// #nosec G304 - Input path is provided by the user
	return os.ReadFile(path)
}

// writeValue stores the decoded bytes of v at path with owner-only
// permissions.
func writeValue(path string, v keytool.Value) error {
	b, err := v.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// passwordFor returns --password, falling back to KEYTOOL_PASSWORD.
func (o *globalOptions) passwordFor(flag string) (string, error) {
	password := flag
	if password == "" {
		password = o.v.GetString("password")
	}
	if password == "" {
		return "", fmt.Errorf("%w: --password or %sPASSWORD is required", types.ErrMalformedInput, config.EnvPrefix)
	}
	return password, nil
}

func outputEncoding(s string) (types.TextEncoding, error) {
	return keytool.ParseOptional(s, types.ParseTextEncoding)
}

func addOutputFlag(cmd *cobra.Command, dst *string) {
	cmd.Flags().StringVar(dst, "out-encoding", "", "encoding of the result (utf8, base64, hex); defaults per operation")
}
