// Package texture owns decoded images uploaded to the GPU. A Texture is a shared handle: sprites
// and caches hold references through Retain and the device texture is deleted on the last Release.
package texture

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-sprite/common"
	"github.com/Carmen-Shannon/oxy-sprite/engine/gpu"
)

var (
	// ErrDecode is wrapped when an image file cannot be decoded.
	ErrDecode = errors.New("texture decode failed")
)

// texture is the implementation of the Texture interface.
type texture struct {
	dev    gpu.Device
	id     gpu.TextureID
	width  uint32
	height uint32
	label  string
	refs   int
}

// Texture is a 2D image resident on the GPU.
type Texture interface {
	// ID returns the device texture handle, or 0 once released.
	ID() gpu.TextureID

	// IsNull reports whether the texture holds no device texture.
	IsNull() bool

	// Width returns the width in pixels.
	Width() uint32

	// Height returns the height in pixels.
	Height() uint32

	// Size returns the width and height in pixels as floats.
	Size() [2]float32

	// Label returns the name given at creation, typically the source path.
	Label() string

	// Retain adds a holder and returns the same texture.
	Retain() Texture

	// Release drops a holder. The device texture is deleted when the last holder releases.
	Release()

	// RefCount returns the number of holders.
	RefCount() int
}

var _ Texture = &texture{}

// New uploads RGBA pixels as a texture with a single holder.
//
// Parameters:
//   - dev: the device to upload to
//   - label: a name for logging, typically the source path
//   - data: RGBA pixels and dimensions
//
// Returns:
//   - Texture: the uploaded texture
//   - error: error if the data is empty or the device rejects it
func New(dev gpu.Device, label string, data common.TextureStagingData) (Texture, error) {
	if data.Empty() {
		return nil, fmt.Errorf("texture %q has no pixels", label)
	}
	if want := int(data.Width) * int(data.Height) * 4; len(data.Pixels) < want {
		return nil, fmt.Errorf("texture %q: %d bytes of pixels, want %d", label, len(data.Pixels), want)
	}
	id, err := dev.CreateTexture(data)
	if err != nil {
		return nil, fmt.Errorf("texture %q: %w", label, err)
	}
	return &texture{
		dev:    dev,
		id:     id,
		width:  data.Width,
		height: data.Height,
		label:  label,
		refs:   1,
	}, nil
}

func (t *texture) ID() gpu.TextureID {
	if t == nil {
		return 0
	}
	return t.id
}

func (t *texture) IsNull() bool {
	return t == nil || t.id == 0
}

func (t *texture) Width() uint32 {
	return t.width
}

func (t *texture) Height() uint32 {
	return t.height
}

func (t *texture) Size() [2]float32 {
	return [2]float32{float32(t.width), float32(t.height)}
}

func (t *texture) Label() string {
	return t.label
}

func (t *texture) Retain() Texture {
	if t.refs > 0 {
		t.refs++
	}
	return t
}

func (t *texture) Release() {
	if t.refs == 0 {
		return
	}
	t.refs--
	if t.refs == 0 && t.id != 0 {
		t.dev.DeleteTexture(t.id)
		t.id = 0
	}
}

func (t *texture) RefCount() int {
	return t.refs
}

// IsNull reports whether t is nil or holds no device texture.
func IsNull(t Texture) bool {
	return t == nil || t.IsNull()
}

// ID returns t's device handle, or 0 for a nil texture.
func ID(t Texture) gpu.TextureID {
	if t == nil {
		return 0
	}
	return t.ID()
}
