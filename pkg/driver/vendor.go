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
	"log/slog"
	"path/filepath"

	"github.com/NVIDIA/gpu-provisioner/pkg/config"
	"github.com/NVIDIA/gpu-provisioner/pkg/host"
	"github.com/NVIDIA/gpu-provisioner/pkg/version"
)

// cudaRepoTags maps Ubuntu codenames to the vendor repository paths.
var cudaRepoTags = map[string]string{
	"xenial": "ubuntu1604",
	"bionic": "ubuntu1804",
	"focal":  "ubuntu2004",
	"jammy":  "ubuntu2204",
	"noble":  "ubuntu2404",
}

const cudaRepoRoot = "https://developer.download.nvidia.com/compute/cuda/repos"

// cudaRepoSigningKey is the vendor repository signing key file name.
const cudaRepoSigningKey = "7fa2af80.pub"

// vendorInstaller installs the vendor-supplied driver stack. On the
// Debian family it downloads and runs the driver and CUDA installers
// directly; on the Ubuntu family it registers the vendor package
// repository and installs through the package manager.
type vendorInstaller struct {
	deps Deps
}

func (v *vendorInstaller) Provider() config.Provider {
	return config.ProviderNVIDIA
}

func (v *vendorInstaller) Install(ctx context.Context, profile host.Profile, cfg config.Config) error {
	switch profile.Family {
	case host.FamilyDebian:
		return v.installDebian(ctx, cfg)
	case host.FamilyUbuntu:
		return v.installUbuntu(ctx, profile, cfg)
	default:
		return unsupportedFamily(profile)
	}
}

// installDebian downloads and runs the driver package, then the CUDA
// toolkit installer.
func (v *vendorInstaller) installDebian(ctx context.Context, cfg config.Config) error {
	slog.Info("installing vendor driver stack", "family", host.FamilyDebian)

	driverPath := filepath.Join(v.deps.Paths.DownloadDir, filepath.Base(cfg.DriverURL))
	if err := v.deps.Downloader.Download(ctx, cfg.DriverURL, driverPath); err != nil {
		return err
	}
	err := v.deps.Retry.Run(ctx, "run vendor driver installer", func(ctx context.Context) error {
		return v.deps.Runner.Run(ctx, "bash", driverPath, "-s")
	})
	if err != nil {
		return err
	}

	cudaPath := filepath.Join(v.deps.Paths.DownloadDir, filepath.Base(cfg.CudaURL))
	if err := v.deps.Downloader.Download(ctx, cfg.CudaURL, cudaPath); err != nil {
		return err
	}
	return v.deps.Retry.Run(ctx, "run vendor cuda installer", func(ctx context.Context) error {
		return v.deps.Runner.Run(ctx, "bash", cudaPath, "--silent", "--toolkit")
	})
}

// installUbuntu registers the vendor repository (pin file, signing key,
// repository line, index refresh) and installs the CUDA meta-package.
func (v *vendorInstaller) installUbuntu(ctx context.Context, profile host.Profile, cfg config.Config) error {
	tag, repo := cudaRepo(profile.Codename)
	slog.Info("installing vendor driver stack", "family", host.FamilyUbuntu, "repo", repo)

	pinURL := fmt.Sprintf("%s/cuda-%s.pin", repo, tag)
	if err := v.deps.Downloader.Download(ctx, pinURL, v.deps.Paths.CudaPin); err != nil {
		return err
	}

	err := v.deps.Retry.Run(ctx, "register vendor signing key", func(ctx context.Context) error {
		return v.deps.Runner.Run(ctx, "apt-key", "adv", "--fetch-keys", repo+"/"+cudaRepoSigningKey)
	})
	if err != nil {
		return err
	}

	err = v.deps.Retry.Run(ctx, "register vendor repository", func(ctx context.Context) error {
		return v.deps.Runner.Run(ctx, "add-apt-repository", fmt.Sprintf("deb %s/ /", repo))
	})
	if err != nil {
		return err
	}

	if err := v.deps.aptGet(ctx, "refresh package index", "update"); err != nil {
		return err
	}

	pkg := CudaPackageName(cfg.CudaVersion)
	return v.deps.aptGet(ctx, "install cuda package", "install", pkg)
}

// cudaRepo returns the release tag and vendor repository root for an
// Ubuntu codename. Unknown codenames fall back to a known release so a
// new codename degrades to a resolvable (if dated) repository.
func cudaRepo(codename string) (string, string) {
	tag, ok := cudaRepoTags[codename]
	if !ok {
		slog.Warn("unknown ubuntu codename, using default cuda repository", "codename", codename)
		tag = "ubuntu1804"
	}
	return tag, fmt.Sprintf("%s/%s/x86_64", cudaRepoRoot, tag)
}

// CudaPackageName derives the versioned package name from a configured
// CUDA version: "10.1" selects cuda-10-1, an empty version selects the
// unversioned meta-package. An unparseable version also falls back to
// the meta-package rather than failing the run.
func CudaPackageName(cudaVersion string) string {
	if cudaVersion == "" {
		return "cuda"
	}
	v, err := version.Parse(cudaVersion)
	if err != nil {
		slog.Warn("unparseable cuda version, using meta-package", "version", cudaVersion, "error", err)
		return "cuda"
	}
	return fmt.Sprintf("cuda-%d-%d", v.Major, v.Minor)
}
