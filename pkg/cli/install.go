/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/gpu-provisioner/pkg/agent"
	"github.com/NVIDIA/gpu-provisioner/pkg/config"
	"github.com/NVIDIA/gpu-provisioner/pkg/driver"
	"github.com/NVIDIA/gpu-provisioner/pkg/fetch"
	"github.com/NVIDIA/gpu-provisioner/pkg/host"
	"github.com/NVIDIA/gpu-provisioner/pkg/metadata"
	"github.com/NVIDIA/gpu-provisioner/pkg/provision"
	"github.com/NVIDIA/gpu-provisioner/pkg/retry"
	"github.com/NVIDIA/gpu-provisioner/pkg/runner"
	"github.com/NVIDIA/gpu-provisioner/pkg/systemd"
)

// installPlan is what a dry run reports instead of mutating the host.
type installPlan struct {
	Profile     host.Profile    `json:"profile" yaml:"profile"`
	Config      config.Config   `json:"config" yaml:"config"`
	Provider    config.Provider `json:"provider,omitempty" yaml:"provider,omitempty"`
	WouldRun    bool            `json:"wouldRun" yaml:"wouldRun"`
	SkipReason  string          `json:"skipReason,omitempty" yaml:"skipReason,omitempty"`
	DeployAgent bool            `json:"deployAgent" yaml:"deployAgent"`
}

func installCmd() *cli.Command {
	return &cli.Command{
		Name:                  "install",
		EnableShellCompletion: true,
		Usage:                 "Provision GPU drivers on this host",
		Description: `Run the full provisioning sequence on this host:
  1. Detect OS family, release codename, and GPU presence
  2. Resolve configuration from instance metadata attributes
  3. Install the driver stack via the resolved strategy (NVIDIA or OS)
  4. Optionally deploy the GPU utilization metrics agent

A host without a GPU is skipped (exit 0, nothing changed). An
unsupported OS family or unknown driver provider fails before any
host mutation. The run outcome is written in JSON, YAML, or table
format.

# Examples

Provision using instance metadata:
  gpuprov install

Preview what a run would do without changing the host:
  gpuprov install --dry-run

Write the outcome to a file as JSON:
  gpuprov install --output outcome.json --format json`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Resolve the environment and configuration without mutating the host",
			},
			outputFlag,
			formatFlag,
			metadataEndpointFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := parseOutputFormat(cmd); err != nil {
				return err
			}

			meta := newMetadataAccessor(cmd)
			run := runner.New()
			prober := host.NewProber(run)

			if cmd.Bool("dry-run") {
				return dryRun(ctx, cmd, prober, meta)
			}

			sysd, err := systemd.NewDBusManager(ctx)
			if err != nil {
				return fmt.Errorf("failed to connect to service manager: %w", err)
			}
			defer sysd.Close()

			deps := driver.Deps{
				Runner:     run,
				Downloader: fetch.New(),
				Retry:      retry.New(retry.DefaultPolicy()),
				Systemd:    sysd,
				Paths:      driver.DefaultPaths(),
			}

			orch := provision.New(
				prober,
				meta,
				func(p config.Provider) (driver.Installer, error) {
					return driver.ForProvider(p, deps)
				},
				agent.NewDeployer(deps.Runner, deps.Downloader, deps.Retry, deps.Systemd),
			)

			out := orch.Run(ctx)
			if err := writeResult(cmd, out); err != nil {
				return err
			}

			if out.Status == provision.StatusFailed {
				return cli.Exit(fmt.Sprintf("provisioning failed: %s", out.Reason), out.ExitCode())
			}
			return nil
		},
	}
}

// dryRun resolves everything an install run would act on, without
// touching the host.
func dryRun(ctx context.Context, cmd *cli.Command, prober *host.Prober, meta metadata.Accessor) error {
	profile, err := prober.Detect(ctx)
	if err != nil {
		return err
	}

	cfg := config.Resolve(ctx, meta)
	plan := installPlan{
		Profile:     profile,
		Config:      cfg,
		DeployAgent: cfg.InstallAgent,
	}

	switch {
	case !profile.Supported():
		plan.SkipReason = fmt.Sprintf("os family %q is not supported", profile.Family)
	case !profile.HasGPU:
		plan.SkipReason = "no GPU detected on this host"
	case !cfg.DriverProvider.Known():
		plan.SkipReason = fmt.Sprintf("unknown driver provider %q", cfg.DriverProvider)
	default:
		plan.Provider = cfg.DriverProvider
		plan.WouldRun = true
	}

	return writeResult(cmd, plan)
}
