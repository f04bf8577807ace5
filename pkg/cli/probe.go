/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/gpu-provisioner/pkg/host"
	"github.com/NVIDIA/gpu-provisioner/pkg/runner"
)

func probeCmd() *cli.Command {
	return &cli.Command{
		Name:                  "probe",
		EnableShellCompletion: true,
		Usage:                 "Report the detected host environment",
		Description: `Detect and report the host environment an install run would act on:
  - OS family (debian, ubuntu) and release codename
  - NVIDIA GPU presence on the PCI bus

The probe never mutates the host.

# Examples

  gpuprov probe
  gpuprov probe --format json`,
		Flags: []cli.Flag{
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := parseOutputFormat(cmd); err != nil {
				return err
			}

			profile, err := host.NewProber(runner.New()).Detect(ctx)
			if err != nil {
				return err
			}
			return writeResult(cmd, profile)
		},
	}
}
