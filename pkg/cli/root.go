/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/gpu-provisioner/pkg/logging"
)

const (
	name           = "gpuprov"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

func rootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "GPU driver provisioning for fresh compute nodes",
		Version:               version,
		EnableShellCompletion: true,
		Description: fmt.Sprintf(`gpuprov - GPU node provisioner

Version: %s
Commit:  %s
Built:   %s

Provisions NVIDIA GPU drivers on a freshly created compute node:

install - detects the host environment, resolves configuration from
          instance metadata, installs the driver stack via the selected
          strategy, and optionally deploys a GPU metrics agent.
probe   - reports the detected OS family, release codename, and GPU
          presence without changing the host.
resolve - reports the configuration snapshot that an install run would
          use, without changing the host.`, version, commit, date),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Sources: cli.EnvVars("GPUPROV_LOG_LEVEL"),
				Value:   "info",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefaultStructuredLoggerWithLevel(name, version, cmd.String("log-level"))
			slog.Debug("starting",
				"name", name,
				"version", version,
				"commit", commit,
				"date", date)
			return ctx, nil
		},
		Commands: []*cli.Command{
			installCmd(),
			probeCmd(),
			resolveCmd(),
		},
	}
}

// Execute runs the root command. It is called by main.main() and only
// needs to happen once.
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down gracefully...")
		cancel()
	}()

	if err := rootCmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
