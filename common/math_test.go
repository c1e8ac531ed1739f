package common

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenOrthoMapsCornersToClipSpace(t *testing.T) {
	m := ScreenOrtho(800, 600)

	tests := []struct {
		name   string
		x, y   float32
		wantXY [2]float32
	}{
		{"center", 0, 0, [2]float32{0, 0}},
		{"top right", 400, 300, [2]float32{1, 1}},
		{"bottom left", -400, -300, [2]float32{-1, -1}},
		{"half right", 200, 0, [2]float32{0.5, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := TransformPoint(m[:], tt.x, tt.y, 0)
			assert.InDelta(t, tt.wantXY[0], p[0], 1e-6)
			assert.InDelta(t, tt.wantXY[1], p[1], 1e-6)
			assert.InDelta(t, 1, p[3], 1e-6)
		})
	}
}

func TestScreenOrthoDepthRange(t *testing.T) {
	m := ScreenOrtho(100, 100)

	near := TransformPoint(m[:], 0, 0, 1000)
	far := TransformPoint(m[:], 0, 0, -1000)
	mid := TransformPoint(m[:], 0, 0, 0)

	assert.InDelta(t, 0, near[2], 1e-6)
	assert.InDelta(t, 1, far[2], 1e-6)
	assert.InDelta(t, 0.5, mid[2], 1e-6)
}

func TestScreenOrthoDegenerateSizeIsIdentity(t *testing.T) {
	m := ScreenOrtho(0, 600)
	var id [16]float32
	Identity(id[:])
	assert.Equal(t, id, m)
}

func TestScreenToWorldInvertsScreenOrtho(t *testing.T) {
	assert.Equal(t, [2]float32{-400, 300}, ScreenToWorld(0, 0, 800, 600))
	assert.Equal(t, [2]float32{0, 0}, ScreenToWorld(400, 300, 800, 600))
	assert.Equal(t, [2]float32{400, -300}, ScreenToWorld(800, 600, 800, 600))

	m := ScreenOrtho(800, 600)
	w := ScreenToWorld(600, 150, 800, 600)
	p := TransformPoint(m[:], w[0], w[1], 0)
	assert.InDelta(t, 0.5, p[0], 1e-6)
	assert.InDelta(t, 0.5, p[1], 1e-6)
}

func TestMul4Identity(t *testing.T) {
	a := ScreenOrtho(320, 240)
	var id, out [16]float32
	Identity(id[:])

	Mul4(out[:], a[:], id[:])
	assert.Equal(t, a, out)
}

func TestRotate2D(t *testing.T) {
	x, y := Rotate2D(1, 0, 3.14159265/2)
	assert.InDelta(t, 0, x, 1e-6)
	assert.InDelta(t, 1, y, 1e-6)

	x, y = Rotate2D(0.5, -0.5, 0)
	assert.Equal(t, float32(0.5), x)
	assert.Equal(t, float32(-0.5), y)
}

func TestNormalize3(t *testing.T) {
	assert.Equal(t, [3]float32{}, Normalize3([3]float32{}))

	n := Normalize3([3]float32{0, 3, 4})
	assert.InDelta(t, 0.6, n[1], 1e-6)
	assert.InDelta(t, 0.8, n[2], 1e-6)
}

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes([]float32{}))
	assert.Len(t, SliceToBytes([]uint16{1, 2, 3}), 6)
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
}

func TestValueOr(t *testing.T) {
	off := false
	assert.False(t, ValueOr(&off, true), "a set false is kept")
	assert.True(t, ValueOr[bool](nil, true))
}

func TestRectValid(t *testing.T) {
	assert.True(t, UnitRect().Valid())
	assert.True(t, Rect{}.Valid())
	assert.False(t, Rect{Size: [2]float32{-1, 1}}.Valid())
}

func TestDecodeImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 3))
	img.Set(1, 2, color.NRGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	data, err := DecodeImageBytes(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, uint32(2), data.Width)
	assert.Equal(t, uint32(3), data.Height)
	assert.Len(t, data.Pixels, 2*3*4)
	assert.Equal(t, []byte{255, 0, 0, 255}, data.Pixels[(2*2+1)*4:(2*2+1)*4+4])
	assert.False(t, data.Empty())

	_, err = DecodeImageBytes([]byte("not an image"))
	assert.Error(t, err)
}
