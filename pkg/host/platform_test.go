package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/gpu-provisioner/pkg/errors"
)

func TestPlatformFor(t *testing.T) {
	t.Run("debian", func(t *testing.T) {
		p, err := PlatformFor(Profile{Family: FamilyDebian, Codename: "buster"})
		require.NoError(t, err)
		assert.Equal(t, FamilyDebian, p.Family())
		assert.NotEmpty(t, p.DriverPackages())
		assert.Equal(t, "buster-backports", p.BackportsSuite("buster"))
		assert.Len(t, p.ExtraRepoLines("buster"), 2)
	})

	t.Run("ubuntu", func(t *testing.T) {
		p, err := PlatformFor(Profile{Family: FamilyUbuntu, Codename: "bionic"})
		require.NoError(t, err)
		assert.Equal(t, FamilyUbuntu, p.Family())
		assert.Empty(t, p.ExtraRepoLines("bionic"))
		assert.Empty(t, p.BackportsSuite("bionic"))
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := PlatformFor(Profile{Family: FamilyUnsupported})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeUnsupportedOS))
	})
}

func TestPlatformBLASPathsDiffer(t *testing.T) {
	deb, err := PlatformFor(Profile{Family: FamilyDebian})
	require.NoError(t, err)
	ubu, err := PlatformFor(Profile{Family: FamilyUbuntu})
	require.NoError(t, err)

	assert.NotEqual(t, deb.BLASLibraryPath(), ubu.BLASLibraryPath())
	assert.NotEqual(t, deb.KernelModules(), ubu.KernelModules())
}
