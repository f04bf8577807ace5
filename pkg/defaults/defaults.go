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

package defaults

import "time"

// Retry policy for mutating system commands. Applied uniformly to every
// external mutating call; there is no per-call override.
const (
	// RetryMaxAttempts is the total number of invocations, including the
	// initial attempt.
	RetryMaxAttempts = 10

	// RetryDelay is the fixed pause between attempts.
	RetryDelay = 5 * time.Second
)

// Network fetch profile. Independent of the command retry policy.
const (
	// FetchTimeout bounds a single download request.
	FetchTimeout = 2 * time.Minute

	// FetchMaxAttempts bounds download retries on connection errors
	// and server-side failures.
	FetchMaxAttempts = 4

	// FetchRetryInterval is the constant pause between download attempts.
	FetchRetryInterval = 5 * time.Second
)

// Metadata accessor settings.
const (
	// MetadataEndpoint is the instance attribute service root.
	MetadataEndpoint = "http://metadata.google.internal/computeMetadata/v1/instance/attributes"

	// MetadataTimeout bounds a single attribute lookup. Lookups never
	// fail the run; absence yields the documented default.
	MetadataTimeout = 5 * time.Second
)

// Pinned artifact locations used when metadata provides no override.
const (
	// DriverURL is the vendor driver package location (Debian path).
	DriverURL = "https://download.nvidia.com/XFree86/Linux-x86_64/418.88/NVIDIA-Linux-x86_64-418.88.run"

	// CudaURL is the vendor CUDA installer location (Debian path).
	CudaURL = "https://developer.nvidia.com/compute/cuda/10.0/Prod/local_installers/cuda_10.0.130_410.48_linux"

	// CudaVersion selects the versioned CUDA package name (Ubuntu path).
	CudaVersion = "10.0"

	// AgentSourceURL is the root from which agent artifacts (dependency
	// list, agent script) are fetched.
	AgentSourceURL = "https://raw.githubusercontent.com/GoogleCloudPlatform/ml-on-gcp/master/dlvm/gcp-gpu-utilization-metrics"
)

// Generated artifact paths. These are part of the persisted-state
// contract; changing them breaks re-run detection by operators.
const (
	// BLASConfigPath is the BLAS fallback configuration file.
	BLASConfigPath = "/etc/nvidia/nvblas.conf"

	// EnvironmentFilePath is the system-wide environment file the BLAS
	// fallback variable is appended to.
	EnvironmentFilePath = "/etc/environment"

	// AgentInstallDir is the fixed installation directory for the
	// metrics agent artifacts.
	AgentInstallDir = "/opt/gpu-utilization-agent"

	// AgentUnitPath is the systemd unit definition for the agent.
	AgentUnitPath = "/lib/systemd/system/gpu-utilization-agent.service"

	// AgentUnitName is the unit name used for enable and start.
	AgentUnitName = "gpu-utilization-agent.service"

	// WorkloadAgentUnit is the workload manager node agent stopped after
	// an OS-provided driver install so it picks up the new configuration
	// on operator restart.
	WorkloadAgentUnit = "hadoop-yarn-nodemanager.service"
)

// DownloadDir is where fetched installers land before execution.
const DownloadDir = "/tmp"
