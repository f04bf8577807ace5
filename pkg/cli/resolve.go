/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/gpu-provisioner/pkg/config"
)

func resolveCmd() *cli.Command {
	return &cli.Command{
		Name:                  "resolve",
		EnableShellCompletion: true,
		Usage:                 "Report the resolved provisioning configuration",
		Description: `Resolve the configuration snapshot an install run would use, from
instance metadata attributes with documented defaults for anything
absent. Resolution never fails and never mutates the host.

# Examples

  gpuprov resolve
  gpuprov resolve --metadata-endpoint http://localhost:8888 --format json`,
		Flags: []cli.Flag{
			outputFlag,
			formatFlag,
			metadataEndpointFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := parseOutputFormat(cmd); err != nil {
				return err
			}

			cfg := config.Resolve(ctx, newMetadataAccessor(cmd))
			return writeResult(cmd, cfg)
		},
	}
}
