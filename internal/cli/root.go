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
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jeremyhahn/go-keytool/internal/config"
	"github.com/jeremyhahn/go-keytool/pkg/codec"
	"github.com/jeremyhahn/go-keytool/pkg/keytool"
	"github.com/jeremyhahn/go-keytool/pkg/logging"
	"github.com/jeremyhahn/go-keytool/pkg/types"
)

// globalOptions is shared by every command in one tree.
type globalOptions struct {
	v          *viper.Viper
	configFile string

	config  *config.Config
	service *keytool.Service
	printer *Printer
}

// NewRootCommand builds the keytool command tree.
//
// Settings resolve in viper order: flag, KEYTOOL_* environment variable,
// the defaults section of --config, built-in default.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "keytool",
		Short: "keytool - cryptographic key and data transformation toolkit",
		Long: `keytool generates, converts and inspects cryptographic keys and runs
symmetric, hybrid (ECIES) and RSA encryption from the command line.

Binary values are passed as text with an explicit encoding (utf8, base64
or hex). Keys may be given inline or read from files; PEM files need no
encoding flag.

Every command is also available over HTTP through "keytool serve".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
	}

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", types.ErrMalformedInput, err)
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (YAML); its defaults section seeds operation defaults")
	flags.StringP("output", "o", string(OutputFormatText), "output format (text, json)")
	flags.String("text-encoding", "", "encoding for binary results when a command names none (utf8, base64, hex)")
	flags.Int("pbkdf2-iterations", 0, "default PBKDF2 iteration count")
	flags.Int("scrypt-n", 0, "default scrypt cost N")
	flags.Int("scrypt-r", 0, "default scrypt block size r")
	flags.Int("scrypt-p", 0, "default scrypt parallelism p")
	flags.Bool("hex-upper", false, "render hex results in upper case")
	flags.Bool("base64-url", false, "render base64 results in the URL-safe alphabet")
	flags.Bool("base64-unpadded", false, "omit base64 padding from results")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("log-format", logging.FormatText, "log format (text, json)")

	_ = opts.v.BindPFlags(flags)
	opts.v.SetEnvPrefix(strings.TrimSuffix(config.EnvPrefix, "_"))
	opts.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	opts.v.AutomaticEnv()
	_ = opts.v.BindEnv("password")

	rootCmd.AddCommand(
		newAESCommand(opts),
		newKeyCommand(opts),
		newECIESCommand(opts),
		newRSACommand(opts),
		newJWKCommand(opts),
		newEnumsCommand(opts),
		newVersionCommand(opts),
		newServeCommand(opts),
	)
	return rootCmd
}

// setup loads configuration and builds the service and printer for the
// command about to run.
func (o *globalOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return err
	}
	o.config = cfg

	o.v.SetDefault("text-encoding", cfg.Defaults.TextEncoding)
	o.v.SetDefault("pbkdf2-iterations", cfg.Defaults.PBKDF2Iterations)
	o.v.SetDefault("scrypt-n", cfg.Defaults.ScryptN)
	o.v.SetDefault("scrypt-r", cfg.Defaults.ScryptR)
	o.v.SetDefault("scrypt-p", cfg.Defaults.ScryptP)

	o.printer = NewPrinter(o.v.GetString("output"), cmd.OutOrStdout())
	if err := o.printer.validate(); err != nil {
		return err
	}
	o.printer.variant = codec.Options{
		Uppercase: o.v.GetBool("hex-upper"),
		URLSafe:   o.v.GetBool("base64-url"),
		Unpadded:  o.v.GetBool("base64-unpadded"),
	}

	level, err := logging.ParseLevel(o.v.GetString("log-level"))
	if err != nil {
		return err
	}
	logger, err := logging.NewSlogAdapter(&logging.SlogConfig{
		Level:  level,
		Format: o.v.GetString("log-format"),
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	o.service, err = keytool.New(&keytool.Config{
		Logger:           logger,
		TextEncoding:     types.TextEncoding(o.v.GetString("text-encoding")),
		PBKDF2Iterations: o.v.GetInt("pbkdf2-iterations"),
		ScryptN:          o.v.GetInt("scrypt-n"),
		ScryptR:          o.v.GetInt("scrypt-r"),
		ScryptP:          o.v.GetInt("scrypt-p"),
	})
	return err
}

// Execute runs the command tree and returns the process exit code. Errors
// are printed to stderr in the selected output format.
func Execute() int {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		format, _ := rootCmd.PersistentFlags().GetString("output")
		_ = NewPrinter(format, os.Stderr).PrintError(err)
		return 1
	}
	return 0
}

func requireNoArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: %s takes no arguments, got %q", types.ErrMalformedInput, cmd.CommandPath(), args)
	}
	return nil
}
