package driver

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/gpu-provisioner/pkg/config"
	proverr "github.com/NVIDIA/gpu-provisioner/pkg/errors"
	"github.com/NVIDIA/gpu-provisioner/pkg/host"
	"github.com/NVIDIA/gpu-provisioner/pkg/retry"
	"github.com/NVIDIA/gpu-provisioner/pkg/runner"
	"github.com/NVIDIA/gpu-provisioner/pkg/systemd"
)

// fakeDownloader records download requests and writes nothing.
type fakeDownloader struct {
	mu      sync.Mutex
	urls    []string
	dests   []string
	failFor string
}

func (f *fakeDownloader) Download(_ context.Context, url, dest string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor != "" && url == f.failFor {
		return errors.New("download failed")
	}
	f.urls = append(f.urls, url)
	f.dests = append(f.dests, dest)
	return nil
}

func newTestDeps(t *testing.T) (Deps, *runner.Fake, *systemd.Fake, *fakeDownloader) {
	t.Helper()
	r := runner.NewFake()
	sysd := systemd.NewFake()
	dl := &fakeDownloader{}
	dir := t.TempDir()

	deps := Deps{
		Runner:     r,
		Downloader: dl,
		Retry:      retry.New(retry.Policy{MaxAttempts: 1, Delay: time.Millisecond}),
		Systemd:    sysd,
		Paths: Paths{
			BLASConfig:  filepath.Join(dir, "etc", "nvidia", "nvblas.conf"),
			Environment: filepath.Join(dir, "etc", "environment"),
			AptSources:  filepath.Join(dir, "etc", "apt", "sources.list.d", "gpu.list"),
			CudaPin:     filepath.Join(dir, "etc", "apt", "preferences.d", "cuda-pin"),
			DownloadDir: filepath.Join(dir, "tmp"),
		},
	}
	return deps, r, sysd, dl
}

func TestForProvider(t *testing.T) {
	deps, _, _, _ := newTestDeps(t)

	tests := []struct {
		name     string
		provider config.Provider
		wantErr  bool
	}{
		{"vendor", config.ProviderNVIDIA, false},
		{"distribution", config.ProviderOS, false},
		{"unknown", config.Provider("CUSTOM"), true},
		{"empty", config.Provider(""), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, err := ForProvider(tt.provider, deps)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, proverr.IsCode(err, proverr.ErrCodeUnsupportedProvider))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.provider, inst.Provider())
		})
	}
}

func TestForProviderFillsDefaultPaths(t *testing.T) {
	inst, err := ForProvider(config.ProviderOS, Deps{})
	require.NoError(t, err)
	assert.Equal(t, DefaultPaths(), inst.(*osInstaller).deps.Paths)
}

func TestCudaPackageName(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"10.1", "cuda-10-1"},
		{"10.0", "cuda-10-0"},
		{"11.2", "cuda-11-2"},
		{"10.1.105", "cuda-10-1"},
		{"", "cuda"},
		{"not-a-version", "cuda"},
	}

	for _, tt := range tests {
		t.Run("version "+tt.version, func(t *testing.T) {
			assert.Equal(t, tt.want, CudaPackageName(tt.version))
		})
	}
}

func TestInstallersRefuseUnsupportedFamily(t *testing.T) {
	profile := host.Profile{Family: host.FamilyUnsupported, HasGPU: true}
	cfg := config.Config{DriverProvider: config.ProviderNVIDIA}

	for _, provider := range []config.Provider{config.ProviderNVIDIA, config.ProviderOS} {
		t.Run(string(provider), func(t *testing.T) {
			deps, r, _, dl := newTestDeps(t)
			inst, err := ForProvider(provider, deps)
			require.NoError(t, err)

			err = inst.Install(context.Background(), profile, cfg)
			require.Error(t, err)
			assert.True(t, proverr.IsCode(err, proverr.ErrCodeUnsupportedOS))

			// No mutation of any kind happened.
			assert.Empty(t, r.Calls())
			assert.Empty(t, dl.urls)
		})
	}
}
