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
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/NVIDIA/gpu-provisioner/pkg/file"
	"github.com/NVIDIA/gpu-provisioner/pkg/runner"
)

const (
	releasePathPrimary  = "/etc/os-release"
	releasePathFallback = "/usr/lib/os-release"

	pciListCommand = "lspci"
	gpuVendorMatch = "nvidia"
)

// Prober detects the host environment. Detection is side-effect-free: it
// reads OS identification files and queries the PCI device listing.
type Prober struct {
	runner runner.Runner

	releasePrimary  string
	releaseFallback string
}

// ProbeOption configures the Prober.
type ProbeOption func(*Prober)

// WithReleasePaths overrides the os-release locations, for tests.
func WithReleasePaths(primary, fallback string) ProbeOption {
	return func(p *Prober) {
		p.releasePrimary = primary
		p.releaseFallback = fallback
	}
}

// NewProber creates a Prober that shells out to lspci via the given
// runner for GPU detection.
func NewProber(r runner.Runner, opts ...ProbeOption) *Prober {
	p := &Prober{
		runner:          r,
		releasePrimary:  releasePathPrimary,
		releaseFallback: releasePathFallback,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Detect computes the host profile. A host without a GPU or with an
// unrecognized OS family is a valid result, not an error; the error
// return covers only unreadable OS identification.
func (p *Prober) Detect(ctx context.Context) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}

	// Per freedesktop.org spec, fall back to /usr/lib/os-release when
	// the primary file does not exist.
	root := p.releasePrimary
	if _, err := os.Stat(root); os.IsNotExist(err) {
		root = p.releaseFallback
	}

	parser := file.NewParser(file.WithVTrimChars(`"'`))
	release, err := parser.GetMap(root)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read os release from %s: %w", root, err)
	}

	profile := Profile{
		Family:   ParseFamily(release["ID"]),
		Codename: release["VERSION_CODENAME"],
		HasGPU:   p.detectGPU(ctx),
	}

	slog.Info("host detected",
		"family", profile.Family,
		"codename", profile.Codename,
		"hasGpu", profile.HasGPU)

	return profile, nil
}

// detectGPU matches the vendor name against the PCI device listing.
// A missing lspci binary or a failed listing means no GPU, never an
// error: the legitimate outcome for such hosts is a skipped run.
func (p *Prober) detectGPU(ctx context.Context) bool {
	out, err := p.runner.Output(ctx, pciListCommand)
	if err != nil {
		slog.Warn("pci device listing unavailable, assuming no gpu", "error", err)
		return false
	}
	return strings.Contains(strings.ToLower(out), gpuVendorMatch)
}
