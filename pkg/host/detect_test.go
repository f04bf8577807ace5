package host

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/gpu-provisioner/pkg/runner"
)

const ubuntuRelease = `NAME="Ubuntu"
VERSION="18.04.3 LTS (Bionic Beaver)"
ID=ubuntu
VERSION_ID="18.04"
VERSION_CODENAME=bionic
PRETTY_NAME="Ubuntu 18.04.3 LTS"
`

const debianRelease = `PRETTY_NAME="Debian GNU/Linux 10 (buster)"
NAME="Debian GNU/Linux"
ID=debian
VERSION_CODENAME=buster
`

const centosRelease = `NAME="CentOS Linux"
ID="centos"
VERSION_ID="7"
`

func writeRelease(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "os-release")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name         string
		release      string
		pciOut       string
		pciErr       error
		wantFamily   Family
		wantCodename string
		wantGPU      bool
	}{
		{
			name:         "ubuntu with gpu",
			release:      ubuntuRelease,
			pciOut:       "00:04.0 3D controller: NVIDIA Corporation TU104GL [Tesla T4] (rev a1)",
			wantFamily:   FamilyUbuntu,
			wantCodename: "bionic",
			wantGPU:      true,
		},
		{
			name:         "debian without gpu",
			release:      debianRelease,
			pciOut:       "00:03.0 Ethernet controller: Red Hat, Inc. Virtio network device",
			wantFamily:   FamilyDebian,
			wantCodename: "buster",
			wantGPU:      false,
		},
		{
			name:       "unsupported family",
			release:    centosRelease,
			pciOut:     "00:04.0 3D controller: NVIDIA Corporation Device",
			wantFamily: FamilyUnsupported,
			wantGPU:    true,
		},
		{
			name:       "lspci unavailable means no gpu",
			release:    ubuntuRelease,
			pciErr:     errors.New("exec: lspci: not found"),
			wantFamily: FamilyUbuntu,
			wantGPU:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := runner.NewFake()
			if tt.pciErr != nil {
				r.FailWith("lspci", tt.pciErr)
			} else {
				r.SetOutput("lspci", tt.pciOut)
			}

			path := writeRelease(t, tt.release)
			p := NewProber(r, WithReleasePaths(path, path))

			profile, err := p.Detect(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantFamily, profile.Family)
			if tt.wantCodename != "" {
				assert.Equal(t, tt.wantCodename, profile.Codename)
			}
			assert.Equal(t, tt.wantGPU, profile.HasGPU)
		})
	}
}

func TestDetectFallbackPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	fallback := writeRelease(t, debianRelease)

	r := runner.NewFake()
	p := NewProber(r, WithReleasePaths(missing, fallback))

	profile, err := p.Detect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, FamilyDebian, profile.Family)
}

func TestDetectUnreadableRelease(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	p := NewProber(runner.NewFake(), WithReleasePaths(missing, missing))
	_, err := p.Detect(context.Background())
	assert.Error(t, err)
}

func TestParseFamily(t *testing.T) {
	assert.Equal(t, FamilyDebian, ParseFamily("debian"))
	assert.Equal(t, FamilyUbuntu, ParseFamily("ubuntu"))
	assert.Equal(t, FamilyUnsupported, ParseFamily("rhel"))
	assert.Equal(t, FamilyUnsupported, ParseFamily(""))
}

func TestProfileSupported(t *testing.T) {
	assert.True(t, Profile{Family: FamilyDebian}.Supported())
	assert.True(t, Profile{Family: FamilyUbuntu}.Supported())
	assert.False(t, Profile{Family: FamilyUnsupported}.Supported())
}
