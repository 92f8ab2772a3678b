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

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jeremyhahn/go-keytool/internal/config"
	"github.com/jeremyhahn/go-keytool/internal/server"
	"github.com/jeremyhahn/go-keytool/pkg/keytool"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("keytool REST server\n")
		fmt.Printf("  Version: %s\n", keytool.Version())
		os.Exit(0)
	}

	// Check for config file override via environment
	if envConfig := os.Getenv(config.EnvPrefix + "CONFIG"); envConfig != "" && *configPath == "" {
		*configPath = envConfig
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	srv, err := server.New(cfg, os.Stderr)
	if err != nil {
		slog.Error("Failed to create server", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := server.SetupSignalHandler(context.Background())
	defer stop()

	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", slog.Any("error", err))
		stop()
		os.Exit(1)
	}
}
