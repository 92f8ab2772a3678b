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
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jeremyhahn/go-keytool/pkg/codec"
	"github.com/jeremyhahn/go-keytool/pkg/crypto/ecies"
	"github.com/jeremyhahn/go-keytool/pkg/encoding/jwk"
	"github.com/jeremyhahn/go-keytool/pkg/keytool"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// Printer handles formatted output
type Printer struct {
	format  OutputFormat
	writer  io.Writer
	variant codec.Options
}

// NewPrinter creates a new Printer
func NewPrinter(format string, writer io.Writer) *Printer {
	return &Printer{
		format: OutputFormat(strings.ToLower(format)),
		writer: writer,
	}
}

func (p *Printer) validate() error {
	switch p.format {
	case OutputFormatText, OutputFormatJSON:
		return nil
	}
	return fmt.Errorf("%w: unknown output format %q (must be text or json)", types.ErrMalformedInput, p.format)
}

// PrintValue prints a single encoded result. Text output is the bare data
// so it can be piped.
func (p *Printer) PrintValue(v keytool.Value) error {
	v, err := v.Render(p.variant)
	if err != nil {
		return err
	}
	if p.format == OutputFormatJSON {
		return p.printJSON(map[string]any{"result": v})
	}
	return p.printData(v.Data)
}

// PrintKeyPair prints both halves of a generated key.
func (p *Printer) PrintKeyPair(pair *keytool.KeyPairResult) error {
	if p.format == OutputFormatJSON {
		return p.printJSON(pair)
	}
	fmt.Fprintf(p.writer, "# %s private key (%s, %s)\n", pair.Algorithm, pair.Container, pair.PrivateKey.Encoding)
	if err := p.printData(pair.PrivateKey.Data); err != nil {
		return err
	}
	fmt.Fprintf(p.writer, "# %s public key (%s)\n", pair.Algorithm, pair.PublicKey.Encoding)
	return p.printData(pair.PublicKey.Data)
}

// PrintParsedKey prints what was detected about a key.
func (p *Printer) PrintParsedKey(k *types.ParsedKey) error {
	if p.format == OutputFormatJSON {
		return p.printJSON(k)
	}
	kind := "public"
	if k.IsPrivate {
		kind = "private"
	}
	fmt.Fprintf(p.writer, "Key Information:\n")
	fmt.Fprintf(p.writer, "  Algorithm: %s\n", k.Algorithm)
	fmt.Fprintf(p.writer, "  Container: %s\n", k.Container)
	if k.Container.Text != "" {
		fmt.Fprintf(p.writer, "  Text:      %s\n", k.Container.Text)
	}
	fmt.Fprintf(p.writer, "  Type:      %s\n", kind)
	return nil
}

// PrintECIES prints an ECIES result. The final state appears only in JSON.
func (p *Printer) PrintECIES(v keytool.Value, state ecies.State) error {
	v, err := v.Render(p.variant)
	if err != nil {
		return err
	}
	if p.format == OutputFormatJSON {
		return p.printJSON(map[string]any{"result": v, "state": state.String()})
	}
	return p.printData(v.Data)
}

// PrintJWK prints JWK JSON, indented in text mode.
func (p *Printer) PrintJWK(raw string) error {
	if p.format == OutputFormatJSON {
		return p.printJSON(map[string]any{"jwk": json.RawMessage(raw)})
	}
	key, err := jwk.Unmarshal([]byte(raw))
	if err != nil {
		return err
	}
	indented, err := key.MarshalIndent("", "  ")
	if err != nil {
		return err
	}
	return p.printData(string(indented))
}

// PrintThumbprint prints an RFC 7638 thumbprint.
func (p *Printer) PrintThumbprint(thumbprint string) error {
	if p.format == OutputFormatJSON {
		return p.printJSON(map[string]any{"thumbprint": thumbprint})
	}
	return p.printData(thumbprint)
}

// PrintEnumerations prints every value list, sorted by name.
func (p *Printer) PrintEnumerations(all map[string]any) error {
	if p.format == OutputFormatJSON {
		return p.printJSON(all)
	}
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(p.writer, "%s:\n", name)
		p.printList(all[name])
	}
	return nil
}

// PrintEnumeration prints one value list.
func (p *Printer) PrintEnumeration(name string, values any) error {
	if p.format == OutputFormatJSON {
		return p.printJSON(map[string]any{"name": name, "values": values})
	}
	p.printList(values)
	return nil
}

// PrintVersion prints build information.
func (p *Printer) PrintVersion(info map[string]string) error {
	if p.format == OutputFormatJSON {
		return p.printJSON(info)
	}
	fmt.Fprintf(p.writer, "keytool version %s\n", info["version"])
	fmt.Fprintf(p.writer, "Go version: %s\n", info["go_version"])
	fmt.Fprintf(p.writer, "OS/Arch: %s/%s\n", info["os"], info["arch"])
	return nil
}

// PrintError prints an error with its kind.
func (p *Printer) PrintError(err error) error {
	kind := types.ErrorKind(err)
	if p.format == OutputFormatJSON {
		return p.printJSON(map[string]any{
			"error":   kind,
			"message": err.Error(),
		})
	}
	_, werr := fmt.Fprintf(p.writer, "Error (%s): %v\n", kind, err)
	return werr
}

func (p *Printer) printList(values any) {
	raw, err := json.Marshal(values)
	if err != nil {
		fmt.Fprintf(p.writer, "  %v\n", values)
		return
	}
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		fmt.Fprintf(p.writer, "  %v\n", values)
		return
	}
	for _, item := range items {
		fmt.Fprintf(p.writer, "  - %v\n", item)
	}
}

// printData writes data followed by exactly one newline.
func (p *Printer) printData(data string) error {
	_, err := fmt.Fprintln(p.writer, strings.TrimRight(data, "\n"))
	return err
}

// printJSON prints data as indented JSON
func (p *Printer) printJSON(data any) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
