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

	"github.com/jeremyhahn/go-keytool/internal/server"
)

func newServeCommand(opts *globalOptions) *cobra.Command {
	var (
		host  string
		port  int
		noTLS bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve every operation over HTTP",
		Long: `Serve every keytool operation as a JSON API under /api/v1, with health
probes under /health and Prometheus metrics at /metrics.

Settings come from --config and KEYTOOL_* environment variables; the flags
below override both.`,
		Args: requireNoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.config
			flags := cmd.Flags()
			if flags.Changed("host") {
				cfg.Server.Host = host
			}
			if flags.Changed("port") {
				cfg.Server.Port = port
			}
			if noTLS {
				cfg.TLS.Enabled = false
			}
			if flags.Changed("log-level") {
				cfg.Logging.Level = opts.v.GetString("log-level")
			}
			if flags.Changed("log-format") {
				cfg.Logging.Format = opts.v.GetString("log-format")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			srv, err := server.New(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx, stop := server.SetupSignalHandler(cmd.Context())
			defer stop()
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host")
	cmd.Flags().IntVar(&port, "port", 0, "listen port")
	cmd.Flags().BoolVar(&noTLS, "no-tls", false, "serve plain HTTP even when TLS is configured")
	return cmd
}
