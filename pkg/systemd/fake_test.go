package systemd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeLifecycle(t *testing.T) {
	f := NewFake("hadoop-yarn-nodemanager.service")
	ctx := context.Background()

	active, err := f.IsActive(ctx, "hadoop-yarn-nodemanager.service")
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, f.Stop(ctx, "hadoop-yarn-nodemanager.service"))
	active, err = f.IsActive(ctx, "hadoop-yarn-nodemanager.service")
	require.NoError(t, err)
	assert.False(t, active)

	require.NoError(t, f.EnableAndStart(ctx, "gpu-utilization-agent.service"))
	active, err = f.IsActive(ctx, "gpu-utilization-agent.service")
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, f.Reload(ctx))
	assert.Equal(t, 1, f.Reloads)
	assert.Equal(t, []string{"hadoop-yarn-nodemanager.service"}, f.Stopped)
	assert.Equal(t, []string{"gpu-utilization-agent.service"}, f.Started)
}

func TestFakeErrors(t *testing.T) {
	f := NewFake()
	boom := errors.New("dbus unavailable")
	f.Errs["enable-start"] = boom

	assert.ErrorIs(t, f.EnableAndStart(context.Background(), "x.service"), boom)
	assert.Empty(t, f.Started)
}
