package texture

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-sprite/common"
	"github.com/Carmen-Shannon/oxy-sprite/engine/gpu/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 255, A: 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestNewTexture(t *testing.T) {
	dev := gputest.NewDevice()

	tex, err := New(dev, "white", common.TextureStagingData{Pixels: make([]byte, 4*2*2), Width: 2, Height: 2})
	require.NoError(t, err)
	assert.False(t, tex.IsNull())
	assert.Equal(t, [2]float32{2, 2}, tex.Size())
	assert.Equal(t, 1, dev.LiveTextures())

	_, err = New(dev, "empty", common.TextureStagingData{})
	assert.Error(t, err)

	_, err = New(dev, "short", common.TextureStagingData{Pixels: make([]byte, 3), Width: 2, Height: 2})
	assert.Error(t, err)
	assert.Equal(t, 1, dev.LiveTextures())
}

func TestTextureSharedOwnership(t *testing.T) {
	dev := gputest.NewDevice()
	tex, err := New(dev, "t", common.TextureStagingData{Pixels: make([]byte, 4), Width: 1, Height: 1})
	require.NoError(t, err)

	other := tex.Retain()
	tex.Release()
	assert.False(t, other.IsNull())
	assert.Equal(t, 1, dev.LiveTextures())

	other.Release()
	assert.True(t, other.IsNull())
	assert.Equal(t, 0, dev.LiveTextures())

	assert.NotPanics(t, func() { other.Release() })
}

func TestNilHelpers(t *testing.T) {
	assert.True(t, IsNull(nil))
	assert.Zero(t, ID(nil))
}

func TestLoaderCachesByPath(t *testing.T) {
	dev := gputest.NewDevice()
	dir := t.TempDir()
	path := writePNG(t, dir, "hero.png", 4, 2)

	l := NewLoader(dev)
	a, err := l.Load(path)
	require.NoError(t, err)
	b, err := l.Load(path)
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, uint32(4), a.Width())
	assert.Equal(t, uint32(2), a.Height())
	assert.Equal(t, path, a.Label())
	assert.Equal(t, 3, a.RefCount()) // cache + two callers
	assert.Equal(t, 1, dev.LiveTextures())

	a.Release()
	b.Release()
	l.Purge()
	assert.Equal(t, 0, l.Cached())
	assert.Equal(t, 0, dev.LiveTextures())
}

func TestLoaderErrors(t *testing.T) {
	dev := gputest.NewDevice()
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not a png"), 0o644))

	l := NewLoader(dev)

	_, err := l.Load(bad)
	assert.ErrorIs(t, err, ErrDecode)

	_, err = l.Load(filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, 0, dev.LiveTextures())
}

func TestLoaderEvictionReleasesCacheReference(t *testing.T) {
	dev := gputest.NewDevice()
	dir := t.TempDir()
	first := writePNG(t, dir, "a.png", 1, 1)
	second := writePNG(t, dir, "b.png", 1, 1)

	l := NewLoader(dev, WithCacheSize(1))

	a, err := l.Load(first)
	require.NoError(t, err)
	b, err := l.Load(second)
	require.NoError(t, err)

	// a was evicted but the caller's reference keeps it alive.
	assert.Equal(t, 1, l.Cached())
	assert.False(t, a.IsNull())
	assert.Equal(t, 1, a.RefCount())

	a.Release()
	assert.Equal(t, 1, dev.LiveTextures())
	b.Release()
	l.Purge()
	assert.Equal(t, 0, dev.LiveTextures())
}

func TestLoaderLoadAll(t *testing.T) {
	dev := gputest.NewDevice()
	dir := t.TempDir()

	var paths []string
	for _, name := range []string{"a.png", "b.png", "c.png", "d.png"} {
		paths = append(paths, writePNG(t, dir, name, 2, 3))
	}
	paths = append(paths, paths[0], filepath.Join(dir, "missing.png"))

	l := NewLoader(dev, WithWorkers(3))
	cached, err := l.Load(paths[1])
	require.NoError(t, err)

	out, err := l.LoadAll(paths...)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	require.Len(t, out, len(paths))

	for i := 0; i < 5; i++ {
		require.NotNil(t, out[i], paths[i])
		assert.Equal(t, uint32(3), out[i].Height())
	}
	assert.Nil(t, out[5])
	assert.Same(t, cached, out[1])
	assert.Same(t, out[0], out[4])
	assert.Equal(t, 4, dev.LiveTextures())
	assert.Equal(t, 4, l.Cached())
}
