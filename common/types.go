// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Rect is a region of a texture in normalized texture space. Origin is the lower-left corner and
// Size the extent along U and V. A unit rect {(0,0),(1,1)} covers the whole image.
type Rect struct {
	Origin [2]float32
	Size   [2]float32
}

// UnitRect returns the rect covering an entire texture.
func UnitRect() Rect {
	return Rect{Size: [2]float32{1, 1}}
}

// Valid reports whether both size components are non-negative.
func (r Rect) Valid() bool {
	return r.Size[0] >= 0 && r.Size[1] >= 0
}

// TextureStagingData holds RGBA pixel data pending GPU upload.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// Empty reports whether the staging data describes no pixels.
func (t TextureStagingData) Empty() bool {
	return t.Width == 0 || t.Height == 0
}

// DecodeImage decodes an encoded image (PNG, JPEG, GIF, BMP or WebP) into tightly packed RGBA pixels.
// Reference: https://pkg.go.dev/image
//
// Parameters:
//   - r: reader positioned at the start of the encoded image
//
// Returns:
//   - TextureStagingData: RGBA pixels (4 bytes per pixel, row-major, first row at the top)
//   - error: error if decoding fails
func DecodeImage(r io.Reader) (TextureStagingData, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return TextureStagingData{}, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}, nil
}

// DecodeImageBytes is DecodeImage over an in-memory buffer.
func DecodeImageBytes(data []byte) (TextureStagingData, error) {
	return DecodeImage(bytes.NewReader(data))
}
