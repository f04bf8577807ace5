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
	"os"
	"path/filepath"
	"strings"

	"github.com/NVIDIA/gpu-provisioner/pkg/config"
	"github.com/NVIDIA/gpu-provisioner/pkg/defaults"
	"github.com/NVIDIA/gpu-provisioner/pkg/host"
)

// openSourceModule is the in-tree driver module that must be removed
// before the proprietary module set is loaded, to avoid the two drivers
// claiming the same device.
const openSourceModule = "nouveau"

// osInstaller installs the OS-distribution-packaged driver stack:
// distribution driver packages with backports preference, a CPU BLAS
// fallback configuration, and a kernel module swap from the open-source
// to the proprietary driver.
type osInstaller struct {
	deps Deps
}

func (o *osInstaller) Provider() config.Provider {
	return config.ProviderOS
}

func (o *osInstaller) Install(ctx context.Context, profile host.Profile, cfg config.Config) error {
	platform, err := host.PlatformFor(profile)
	if err != nil {
		return err
	}

	slog.Info("installing distribution driver stack",
		"family", platform.Family(),
		"packages", platform.DriverPackages())

	if err := o.registerRepos(ctx, platform, profile.Codename); err != nil {
		return err
	}

	if err := o.installPackages(ctx, platform, profile.Codename); err != nil {
		return err
	}

	if err := o.configureBLASFallback(platform); err != nil {
		return err
	}

	if err := o.swapKernelModules(ctx, platform); err != nil {
		return err
	}

	return o.stopWorkloadAgent(ctx)
}

// registerRepos writes the extra apt source lines the driver packages
// need and refreshes the index. Families whose stock sources suffice
// skip both steps.
func (o *osInstaller) registerRepos(ctx context.Context, platform host.Platform, codename string) error {
	lines := platform.ExtraRepoLines(codename)
	if len(lines) == 0 {
		return nil
	}

	content := strings.Join(lines, "\n") + "\n"
	if err := os.MkdirAll(filepath.Dir(o.deps.Paths.AptSources), 0o755); err != nil {
		return fmt.Errorf("failed to create apt sources dir: %w", err)
	}
	if err := os.WriteFile(o.deps.Paths.AptSources, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write apt sources: %w", err)
	}

	return o.deps.aptGet(ctx, "refresh package index", "update")
}

func (o *osInstaller) installPackages(ctx context.Context, platform host.Platform, codename string) error {
	args := []string{"install", "--no-install-recommends"}
	if suite := platform.BackportsSuite(codename); suite != "" {
		args = append(args, "-t", suite)
	}
	args = append(args, platform.DriverPackages()...)

	return o.deps.aptGet(ctx, "install distribution driver packages", args...)
}

// configureBLASFallback writes the NVBLAS configuration pointing at the
// family's CPU BLAS library and registers it in the system environment
// file. The environment append is idempotent so re-runs do not grow the
// file.
func (o *osInstaller) configureBLASFallback(platform host.Platform) error {
	content := fmt.Sprintf("NVBLAS_LOGFILE /var/log/nvblas.log\nNVBLAS_CPU_BLAS_LIB %s\nNVBLAS_GPU_LIST ALL\n",
		platform.BLASLibraryPath())

	if err := os.MkdirAll(filepath.Dir(o.deps.Paths.BLASConfig), 0o755); err != nil {
		return fmt.Errorf("failed to create blas config dir: %w", err)
	}
	if err := os.WriteFile(o.deps.Paths.BLASConfig, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write blas config: %w", err)
	}

	envLine := "NVBLAS_CONFIG_FILE=" + o.deps.Paths.BLASConfig
	return appendLineOnce(o.deps.Paths.Environment, envLine)
}

// swapKernelModules removes the open-source module, then loads the
// proprietary module set in order. Removal strictly precedes any load;
// a load failure is fatal.
func (o *osInstaller) swapKernelModules(ctx context.Context, platform host.Platform) error {
	// The open-source module may not be loaded at all; that is fine.
	if err := o.deps.Runner.Run(ctx, "rmmod", openSourceModule); err != nil {
		slog.Debug("open-source module not removed", "module", openSourceModule, "error", err)
	}

	for _, mod := range platform.KernelModules() {
		err := o.deps.Retry.Run(ctx, "load kernel module "+mod, func(ctx context.Context) error {
			return o.deps.Runner.Run(ctx, "modprobe", mod)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// stopWorkloadAgent stops the workload manager's node agent when, and
// only when, the service manager reports it active, so it picks up the
// new driver configuration on operator restart. Restart is deliberately
// left to the operator.
func (o *osInstaller) stopWorkloadAgent(ctx context.Context) error {
	active, err := o.deps.Systemd.IsActive(ctx, defaults.WorkloadAgentUnit)
	if err != nil {
		slog.Warn("could not query workload agent state, leaving it running",
			"unit", defaults.WorkloadAgentUnit, "error", err)
		return nil
	}
	if !active {
		return nil
	}

	slog.Info("stopping workload agent to pick up driver configuration",
		"unit", defaults.WorkloadAgentUnit)
	return o.deps.Systemd.Stop(ctx, defaults.WorkloadAgentUnit)
}

// appendLineOnce appends line to path unless an identical line is
// already present.
func appendLineOnce(path, line string) error {
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read %q: %w", path, err)
	}

	for _, l := range strings.Split(string(existing), "\n") {
		if strings.TrimSpace(l) == line {
			return nil
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer f.Close()

	if len(existing) > 0 && !strings.HasSuffix(string(existing), "\n") {
		line = "\n" + line
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("failed to append to %q: %w", path, err)
	}
	return nil
}
