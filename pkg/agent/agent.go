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

// Package agent deploys the GPU metrics-reporting daemon as a systemd
// service. The daemon itself is an external artifact; this package only
// materializes it on the host and hands it to the service manager.
// Deployment failure is fatal to the agent alone and never unwinds a
// completed driver installation.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"text/template"

	"github.com/NVIDIA/gpu-provisioner/pkg/config"
	"github.com/NVIDIA/gpu-provisioner/pkg/defaults"
	"github.com/NVIDIA/gpu-provisioner/pkg/errors"
	"github.com/NVIDIA/gpu-provisioner/pkg/retry"
	"github.com/NVIDIA/gpu-provisioner/pkg/runner"
	"github.com/NVIDIA/gpu-provisioner/pkg/systemd"
)

const (
	requirementsFile = "requirements.txt"
	agentScriptFile  = "report_gpu_metrics.py"
)

// unitTemplate is the service definition for the metrics agent. The
// fields are part of the persisted-state contract.
var unitTemplate = template.Must(template.New("unit").Parse(`[Unit]
Description=GPU Utilization Metric Agent

[Service]
Type=simple
ExecStart=/bin/bash --login -c 'python3 {{.InstallDir}}/{{.Script}}'
User=root
Group=root
WorkingDirectory=/
Restart=always

[Install]
WantedBy=multi-user.target
`))

// Downloader fetches a URL to a local path.
type Downloader interface {
	Download(ctx context.Context, url, dest string) error
}

// Deployer installs the metrics agent.
type Deployer struct {
	runner     runner.Runner
	downloader Downloader
	retry      *retry.Executor
	systemd    systemd.Manager

	installDir string
	unitPath   string
	unitName   string
}

// Option configures the Deployer.
type Option func(*Deployer)

// WithInstallDir overrides the agent installation directory.
func WithInstallDir(dir string) Option {
	return func(d *Deployer) {
		d.installDir = dir
	}
}

// WithUnitPath overrides the unit file location and name.
func WithUnitPath(path, name string) Option {
	return func(d *Deployer) {
		d.unitPath = path
		d.unitName = name
	}
}

// NewDeployer creates an agent deployer.
func NewDeployer(r runner.Runner, dl Downloader, re *retry.Executor, sysd systemd.Manager, opts ...Option) *Deployer {
	d := &Deployer{
		runner:     r,
		downloader: dl,
		retry:      re,
		systemd:    sysd,
		installDir: defaults.AgentInstallDir,
		unitPath:   defaults.AgentUnitPath,
		unitName:   defaults.AgentUnitName,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Deploy materializes the agent on the host: runtime, artifacts,
// dependencies, unit definition, and finally an enabled running
// service. Every error is classified AGENT_DEPLOY.
func (d *Deployer) Deploy(ctx context.Context, cfg config.Config) error {
	if err := d.deploy(ctx, cfg); err != nil {
		return errors.Wrap(errors.ErrCodeAgentDeploy, "failed to deploy metrics agent", err)
	}
	slog.Info("metrics agent deployed", "unit", d.unitName)
	return nil
}

func (d *Deployer) deploy(ctx context.Context, cfg config.Config) error {
	// The agent is a Python script; make sure pip is available to
	// install its declared dependencies.
	err := d.retry.Run(ctx, "install python runtime", func(ctx context.Context) error {
		return d.runner.Run(ctx, "apt-get", "-qq", "-y", "install", "python3-pip")
	})
	if err != nil {
		return err
	}

	for _, name := range []string{requirementsFile, agentScriptFile} {
		url := cfg.AgentSourceURL + "/" + name
		if err := d.downloader.Download(ctx, url, filepath.Join(d.installDir, name)); err != nil {
			return err
		}
	}

	err = d.retry.Run(ctx, "install agent dependencies", func(ctx context.Context) error {
		return d.runner.Run(ctx, "pip3", "install", "-r", filepath.Join(d.installDir, requirementsFile))
	})
	if err != nil {
		return err
	}

	if err := d.writeUnit(); err != nil {
		return err
	}

	if err := d.systemd.Reload(ctx); err != nil {
		return err
	}
	return d.systemd.EnableAndStart(ctx, d.unitName)
}

func (d *Deployer) writeUnit() error {
	if err := os.MkdirAll(filepath.Dir(d.unitPath), 0o755); err != nil {
		return fmt.Errorf("failed to create unit dir: %w", err)
	}

	f, err := os.Create(d.unitPath)
	if err != nil {
		return fmt.Errorf("failed to create unit file: %w", err)
	}
	defer f.Close()

	data := struct {
		InstallDir string
		Script     string
	}{
		InstallDir: d.installDir,
		Script:     agentScriptFile,
	}

	if err := unitTemplate.Execute(f, data); err != nil {
		return fmt.Errorf("failed to render unit file: %w", err)
	}
	return nil
}
