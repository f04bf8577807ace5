// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package driver

import (
	"context"
	"fmt"

	"github.com/NVIDIA/gpu-provisioner/pkg/config"
	"github.com/NVIDIA/gpu-provisioner/pkg/defaults"
	"github.com/NVIDIA/gpu-provisioner/pkg/errors"
	"github.com/NVIDIA/gpu-provisioner/pkg/host"
	"github.com/NVIDIA/gpu-provisioner/pkg/retry"
	"github.com/NVIDIA/gpu-provisioner/pkg/runner"
	"github.com/NVIDIA/gpu-provisioner/pkg/systemd"
)

// Installer is one complete, self-contained driver installation
// procedure. Implementations must refuse to run, without mutating the
// host, when the profile's OS family is unsupported.
type Installer interface {
	// Provider names the strategy.
	Provider() config.Provider

	// Install runs the strategy's full step sequence. Any step failure
	// is fatal to the whole run; completed steps are never rolled back.
	Install(ctx context.Context, profile host.Profile, cfg config.Config) error
}

// Downloader fetches a URL to a local path. Satisfied by fetch.Fetcher.
type Downloader interface {
	Download(ctx context.Context, url, dest string) error
}

// Paths are the on-disk locations the strategies write to. They are
// part of the persisted-state contract; tests override them.
type Paths struct {
	BLASConfig  string
	Environment string
	AptSources  string
	CudaPin     string
	DownloadDir string
}

// DefaultPaths returns the production artifact locations.
func DefaultPaths() Paths {
	return Paths{
		BLASConfig:  defaults.BLASConfigPath,
		Environment: defaults.EnvironmentFilePath,
		AptSources:  "/etc/apt/sources.list.d/gpu-provisioner.list",
		CudaPin:     "/etc/apt/preferences.d/cuda-repository-pin-600",
		DownloadDir: defaults.DownloadDir,
	}
}

// Deps are the external collaborators shared by both strategies.
type Deps struct {
	Runner     runner.Runner
	Downloader Downloader
	Retry      *retry.Executor
	Systemd    systemd.Manager
	Paths      Paths
}

// ForProvider selects the installation strategy for the resolved
// provider. An unrecognized provider is an UNSUPPORTED_PROVIDER error,
// surfaced before any host mutation.
func ForProvider(p config.Provider, deps Deps) (Installer, error) {
	if deps.Paths == (Paths{}) {
		deps.Paths = DefaultPaths()
	}

	switch p {
	case config.ProviderNVIDIA:
		return &vendorInstaller{deps: deps}, nil
	case config.ProviderOS:
		return &osInstaller{deps: deps}, nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupportedProvider,
			fmt.Sprintf("no installation strategy for provider %q", p))
	}
}

// aptGet runs an apt-get subcommand non-interactively under the retry
// policy. The command itself is idempotent at the package manager level,
// so re-running a partially failed attempt is safe.
func (d Deps) aptGet(ctx context.Context, step string, args ...string) error {
	argv := append([]string{"-qq", "-y"}, args...)
	return d.Retry.Run(ctx, step, func(ctx context.Context) error {
		return d.Runner.Run(ctx, "apt-get", argv...)
	})
}

func unsupportedFamily(p host.Profile) error {
	return errors.New(errors.ErrCodeUnsupportedOS,
		fmt.Sprintf("driver installation is not supported on os family %q", p.Family))
}
