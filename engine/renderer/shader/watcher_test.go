package shader

import (
	"os"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-sprite/engine/gpu/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReloadsChangedProgram(t *testing.T) {
	dev := gputest.NewDevice()
	vsPath, fsPath := writeSources(t, spriteVS, ambientOnlyFS)

	p, err := BuildFromFiles(dev, vsPath, fsPath)
	require.NoError(t, err)
	first := p.ID()

	w, err := NewWatcher(nil)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Watch(p))
	assert.Equal(t, 0, w.Poll())

	require.NoError(t, os.WriteFile(fsPath, []byte(litFS), 0o644))

	reloaded := 0
	require.Eventually(t, func() bool {
		reloaded += w.Poll()
		return reloaded > 0
	}, 5*time.Second, 20*time.Millisecond)

	assert.NotEqual(t, first, p.ID())
	assert.True(t, p.Binding(UniformPointPosition).Present())
}

func TestWatcherRejectsProgramsWithoutFiles(t *testing.T) {
	dev := gputest.NewDevice()
	p, err := Build(dev, spriteVS, litFS)
	require.NoError(t, err)

	w, err := NewWatcher(nil)
	require.NoError(t, err)
	defer w.Close()

	assert.Error(t, w.Watch(p))
}
