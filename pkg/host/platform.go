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

package host

import (
	"fmt"

	"github.com/NVIDIA/gpu-provisioner/pkg/errors"
)

// Platform captures the per-family details the driver strategies need.
// One implementation exists per supported family, selected once from the
// probe result, so family conditionals are not repeated across
// strategies.
type Platform interface {
	// Family identifies the implementation.
	Family() Family

	// DriverPackages is the distribution driver package set installed by
	// the OS-provided strategy.
	DriverPackages() []string

	// KernelModules is the proprietary module set loaded after the
	// open-source module is removed. Order matters and is preserved.
	KernelModules() []string

	// BLASLibraryPath is the CPU BLAS library used as the fallback when
	// GPU-accelerated paths are unavailable.
	BLASLibraryPath() string

	// ExtraRepoLines returns apt source lines that must be registered
	// before the driver package set resolves. Empty when the stock
	// sources suffice.
	ExtraRepoLines(codename string) []string

	// BackportsSuite returns the release pin used to prefer the
	// backports channel, or "" when the family has none.
	BackportsSuite(codename string) string
}

// PlatformFor selects the Platform implementation for a detected
// profile. Unsupported families yield an UNSUPPORTED_OS error before any
// mutation can occur.
func PlatformFor(p Profile) (Platform, error) {
	switch p.Family {
	case FamilyDebian:
		return debianPlatform{}, nil
	case FamilyUbuntu:
		return ubuntuPlatform{}, nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupportedOS,
			fmt.Sprintf("no driver platform for os family %q", p.Family))
	}
}

type debianPlatform struct{}

func (debianPlatform) Family() Family { return FamilyDebian }

func (debianPlatform) DriverPackages() []string {
	return []string{
		"nvidia-driver",
		"nvidia-kernel-dkms",
		"nvidia-smi",
		"nvidia-cuda-toolkit",
	}
}

func (debianPlatform) KernelModules() []string {
	return []string{"ipmi_devintf", "nvidia-current", "nvidia-current-uvm"}
}

func (debianPlatform) BLASLibraryPath() string {
	return "/usr/lib/x86_64-linux-gnu/libblas.so.3"
}

// ExtraRepoLines adds the contrib and non-free components the driver
// packages live in.
func (debianPlatform) ExtraRepoLines(codename string) []string {
	return []string{
		fmt.Sprintf("deb http://deb.debian.org/debian %s contrib non-free", codename),
		fmt.Sprintf("deb http://deb.debian.org/debian %s-backports main contrib non-free", codename),
	}
}

func (debianPlatform) BackportsSuite(codename string) string {
	return codename + "-backports"
}

type ubuntuPlatform struct{}

func (ubuntuPlatform) Family() Family { return FamilyUbuntu }

func (ubuntuPlatform) DriverPackages() []string {
	return []string{
		"nvidia-driver-430",
		"nvidia-utils-430",
		"nvidia-cuda-toolkit",
	}
}

func (ubuntuPlatform) KernelModules() []string {
	return []string{"ipmi_devintf", "nvidia", "nvidia-uvm"}
}

func (ubuntuPlatform) BLASLibraryPath() string {
	return "/usr/lib/x86_64-linux-gnu/blas/libblas.so.3"
}

func (ubuntuPlatform) ExtraRepoLines(string) []string { return nil }

func (ubuntuPlatform) BackportsSuite(string) string { return "" }
