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

// Package provision sequences a full provisioning run: environment
// probe, configuration resolution, strategy selection, driver
// installation, and the optional metrics agent. A run always resolves
// to exactly one terminal outcome; there is no rollback of completed
// steps.
package provision

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/NVIDIA/gpu-provisioner/pkg/config"
	"github.com/NVIDIA/gpu-provisioner/pkg/driver"
	"github.com/NVIDIA/gpu-provisioner/pkg/errors"
	"github.com/NVIDIA/gpu-provisioner/pkg/host"
	"github.com/NVIDIA/gpu-provisioner/pkg/metadata"
)

// Status is the terminal state of a provisioning run.
type Status string

const (
	// StatusSkipped means the host has no GPU; nothing was mutated.
	StatusSkipped Status = "Skipped"
	// StatusSucceeded means the driver stack was installed.
	StatusSucceeded Status = "Succeeded"
	// StatusFailed means the run aborted: unsupported host, unsupported
	// provider, or an exhausted installation step.
	StatusFailed Status = "Failed"
)

// Outcome is the contract every run resolves to.
type Outcome struct {
	RunID    string          `json:"runId" yaml:"runId"`
	Status   Status          `json:"status" yaml:"status"`
	Provider config.Provider `json:"provider,omitempty" yaml:"provider,omitempty"`

	// AgentInstalled reports whether the metrics agent was deployed.
	AgentInstalled bool `json:"agentInstalled" yaml:"agentInstalled"`

	// AgentError carries an isolated agent deployment failure. It never
	// demotes Status from Succeeded.
	AgentError string `json:"agentError,omitempty" yaml:"agentError,omitempty"`

	// Reason explains a Skipped or Failed status.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// ExitCode maps the outcome to the process exit contract: zero for
// Succeeded and Skipped, non-zero for Failed.
func (o Outcome) ExitCode() int {
	if o.Status == StatusFailed {
		return 1
	}
	return 0
}

// Prober detects the host environment.
type Prober interface {
	Detect(ctx context.Context) (host.Profile, error)
}

// AgentDeployer installs the metrics agent.
type AgentDeployer interface {
	Deploy(ctx context.Context, cfg config.Config) error
}

// InstallerSelector maps a resolved provider to its strategy.
type InstallerSelector func(p config.Provider) (driver.Installer, error)

// Orchestrator drives a provisioning run. It is single-threaded by
// design: every step depends on the previous step's on-disk effect.
type Orchestrator struct {
	prober   Prober
	meta     metadata.Accessor
	selector InstallerSelector
	agent    AgentDeployer
}

// New creates an Orchestrator.
func New(prober Prober, meta metadata.Accessor, selector InstallerSelector, agent AgentDeployer) *Orchestrator {
	return &Orchestrator{
		prober:   prober,
		meta:     meta,
		selector: selector,
		agent:    agent,
	}
}

// Run executes the state machine. The gates (OS family, GPU presence,
// provider) all resolve before any host mutation, so a refused run
// leaves the host untouched and safe to re-run.
func (o *Orchestrator) Run(ctx context.Context) Outcome {
	runID := uuid.NewString()
	logger := slog.With("runId", runID)
	logger.Info("provisioning run starting")

	profile, err := o.prober.Detect(ctx)
	if err != nil {
		return o.failed(logger, runID, err)
	}

	if !profile.Supported() {
		return o.failed(logger, runID, errors.New(errors.ErrCodeUnsupportedOS,
			fmt.Sprintf("os family %q is not supported", profile.Family)))
	}

	if !profile.HasGPU {
		logger.Info("no gpu detected, skipping provisioning")
		return Outcome{
			RunID:  runID,
			Status: StatusSkipped,
			Reason: "no GPU detected on this host",
		}
	}

	cfg := config.Resolve(ctx, o.meta)

	installer, err := o.selector(cfg.DriverProvider)
	if err != nil {
		return o.failed(logger, runID, err)
	}

	logger.Info("installing gpu driver", "provider", installer.Provider())
	if err := installer.Install(ctx, profile, cfg); err != nil {
		return o.failed(logger, runID, err)
	}

	out := Outcome{
		RunID:    runID,
		Status:   StatusSucceeded,
		Provider: installer.Provider(),
	}

	if cfg.InstallAgent {
		// Agent failure is isolated: surfaced on the outcome, never a
		// demotion of the completed driver install.
		if err := o.agent.Deploy(ctx, cfg); err != nil {
			logger.Error("metrics agent deployment failed", "error", err)
			out.AgentError = err.Error()
		} else {
			out.AgentInstalled = true
		}
	}

	logger.Info("provisioning run finished",
		"status", out.Status,
		"provider", out.Provider,
		"agentInstalled", out.AgentInstalled)
	return out
}

func (o *Orchestrator) failed(logger *slog.Logger, runID string, err error) Outcome {
	logger.Error("provisioning run failed", "code", errors.CodeOf(err), "error", err)
	return Outcome{
		RunID:  runID,
		Status: StatusFailed,
		Reason: err.Error(),
	}
}
