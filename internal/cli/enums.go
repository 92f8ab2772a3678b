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
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-keytool/pkg/keytool"
)

func newEnumsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "enums [name]",
		Short: "List supported curves, digests, containers and other values",
		Long: "List every supported value list, or one of: " +
			strings.Join(keytool.EnumerationNames(), ", "),
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: keytool.EnumerationNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return opts.printer.PrintEnumerations(opts.service.Enumerations(cmd.Context()))
			}
			values, err := opts.service.Enumeration(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return opts.printer.PrintEnumeration(args[0], values)
		},
	}
}
