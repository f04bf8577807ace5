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

// Package config resolves provisioning parameters from the instance
// metadata service into an immutable snapshot. The snapshot is built
// once before any host mutation and never re-read mid-run, so a
// metadata change during execution cannot produce inconsistent state.
package config

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/NVIDIA/gpu-provisioner/pkg/defaults"
	"github.com/NVIDIA/gpu-provisioner/pkg/metadata"
)

// Provider identifies the entity supplying the GPU driver packages.
type Provider string

const (
	// ProviderNVIDIA installs the vendor's own driver and CUDA packages.
	ProviderNVIDIA Provider = "NVIDIA"
	// ProviderOS installs the distribution-packaged driver.
	ProviderOS Provider = "OS"
)

// Known reports whether the provider names a registered strategy.
func (p Provider) Known() bool {
	return p == ProviderNVIDIA || p == ProviderOS
}

// Recognized metadata attribute names.
const (
	KeyDriverURL      = "gpu-driver-url"
	KeyCudaURL        = "cuda-url"
	KeyCudaVersion    = "cuda-version"
	KeyDriverProvider = "gpu-driver-provider"
	KeyInstallAgent   = "install-gpu-agent"
)

// Config is the immutable snapshot of resolved provisioning settings.
type Config struct {
	DriverProvider Provider `json:"driverProvider" yaml:"driverProvider"`
	DriverURL      string   `json:"driverUrl" yaml:"driverUrl"`
	CudaURL        string   `json:"cudaUrl" yaml:"cudaUrl"`
	CudaVersion    string   `json:"cudaVersion" yaml:"cudaVersion"`
	InstallAgent   bool     `json:"installAgent" yaml:"installAgent"`
	AgentSourceURL string   `json:"agentSourceUrl" yaml:"agentSourceUrl"`
}

// Resolve builds the snapshot from the metadata accessor. Attribute
// absence is the expected common case and substitutes the documented
// default; resolution itself never fails.
func Resolve(ctx context.Context, meta metadata.Accessor) Config {
	cfg := Config{
		DriverProvider: Provider(meta.Get(ctx, KeyDriverProvider, string(ProviderOS))),
		DriverURL:      meta.Get(ctx, KeyDriverURL, defaults.DriverURL),
		CudaURL:        meta.Get(ctx, KeyCudaURL, defaults.CudaURL),
		CudaVersion:    meta.Get(ctx, KeyCudaVersion, defaults.CudaVersion),
		InstallAgent:   parseBool(meta.Get(ctx, KeyInstallAgent, "false")),
		AgentSourceURL: defaults.AgentSourceURL,
	}

	slog.Info("configuration resolved",
		"driverProvider", cfg.DriverProvider,
		"cudaVersion", cfg.CudaVersion,
		"installAgent", cfg.InstallAgent)

	return cfg
}

// parseBool treats unparseable values as false rather than failing,
// matching the accessor's absence-is-default contract.
func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}
