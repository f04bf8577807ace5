/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/gpu-provisioner/pkg/metadata"
	"github.com/NVIDIA/gpu-provisioner/pkg/serializer"
)

var (
	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output file path (default: stdout)",
	}

	formatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(serializer.FormatYAML),
		Usage: fmt.Sprintf("Output format (supported values: %s)",
			strings.Join(serializer.SupportedFormats(), ", ")),
	}

	metadataEndpointFlag = &cli.StringFlag{
		Name:    "metadata-endpoint",
		Usage:   "Override the instance metadata attribute endpoint",
		Sources: cli.EnvVars("GPUPROV_METADATA_ENDPOINT"),
	}
)

// parseOutputFormat validates the format flag.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	format := serializer.Format(cmd.String("format"))
	if format.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q", format)
	}
	return format, nil
}

func newMetadataAccessor(cmd *cli.Command) metadata.Accessor {
	if endpoint := cmd.String("metadata-endpoint"); endpoint != "" {
		return metadata.NewClient(metadata.WithEndpoint(endpoint))
	}
	return metadata.NewClient()
}

// writeResult serializes v per the command's format and output flags.
func writeResult(cmd *cli.Command, v any) error {
	format, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}

	w := serializer.NewFileWriterOrStdout(format, cmd.String("output"))
	defer w.Close()
	return w.Serialize(v)
}
