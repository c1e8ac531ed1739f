// Package sprite batches textured quads into shared vertex and index buffers and draws them with
// one indexed draw per run of sprites sharing a texture.
package sprite

import (
	"unsafe"

	"github.com/Carmen-Shannon/oxy-sprite/common"
	"github.com/Carmen-Shannon/oxy-sprite/engine/gpu"
	"github.com/Carmen-Shannon/oxy-sprite/engine/texture"
)

// Sprite is one textured, tinted quad. The renderer reads it and never keeps it.
type Sprite struct {
	// Position is the quad center in pixels. Z orders sprites in depth.
	Position [3]float32
	// Rotation is counter-clockwise about +Z, in radians.
	Rotation float32
	// Scale multiplies the quad size along X and Y.
	Scale [2]float32
	// Color tints every vertex (RGBA).
	Color [4]float32
	// Rect is the sampled region in normalized texture space.
	Rect common.Rect
	// Texture is the sampled image. Nil means no texture is bound yet.
	Texture texture.Texture
}

// New returns a sprite with identity transform, white tint and a rect covering the whole texture.
//
// Parameters:
//   - tex: the texture to sample, may be nil
//
// Returns:
//   - Sprite: the sprite
func New(tex texture.Texture) Sprite {
	return Sprite{
		Scale:   [2]float32{1, 1},
		Color:   [4]float32{1, 1, 1, 1},
		Rect:    common.UnitRect(),
		Texture: tex,
	}
}

// Vertex is the interleaved per-vertex record written to the vertex buffer.
type Vertex struct {
	Position [3]float32
	Color    [4]float32
	TexCoord [2]float32
}

// VertexSize is the size of one Vertex in bytes.
const VertexSize = int(unsafe.Sizeof(Vertex{}))

// Layout describes Vertex to the device: position at location 0, color at 1, texcoord at 2.
var Layout = gpu.VertexLayout{
	Stride: int32(VertexSize),
	Attributes: []gpu.VertexAttribute{
		{Location: 0, Components: 3, Offset: unsafe.Offsetof(Vertex{}.Position)},
		{Location: 1, Components: 4, Offset: unsafe.Offsetof(Vertex{}.Color)},
		{Location: 2, Components: 2, Offset: unsafe.Offsetof(Vertex{}.TexCoord)},
	},
}

// Size returns the quad size in pixels before scaling: the rect size times the texture size, or
// the rect size alone when no texture is bound.
func (s Sprite) Size() [2]float32 {
	w, h := s.Rect.Size[0], s.Rect.Size[1]
	if !texture.IsNull(s.Texture) {
		ts := s.Texture.Size()
		w *= ts[0]
		h *= ts[1]
	}
	return [2]float32{w, h}
}

// Vertices expands the sprite into its four corners: bottom-left, bottom-right, top-right,
// top-left. Corners are scaled, then rotated, then translated to Position.
//
// Returns:
//   - [4]Vertex: the quad
func (s Sprite) Vertices() [4]Vertex {
	size := s.Size()
	hw := size[0] * s.Scale[0] / 2
	hh := size[1] * s.Scale[1] / 2

	corners := [4][2]float32{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}}

	o, sz := s.Rect.Origin, s.Rect.Size
	uvs := [4][2]float32{
		{o[0], o[1]},
		{o[0] + sz[0], o[1]},
		{o[0] + sz[0], o[1] + sz[1]},
		{o[0], o[1] + sz[1]},
	}

	var quad [4]Vertex
	for i, c := range corners {
		x, y := common.Rotate2D(c[0], c[1], s.Rotation)
		quad[i] = Vertex{
			Position: [3]float32{x + s.Position[0], y + s.Position[1], s.Position[2]},
			Color:    s.Color,
			TexCoord: uvs[i],
		}
	}
	return quad
}

// Primitive is one draw call: Count indices starting at index Offset, sampling Texture.
type Primitive struct {
	Count   int
	Offset  int
	Texture texture.Texture
}

// batchKey is the identity sprites are grouped by. Nil and released textures share the nil key.
func batchKey(t texture.Texture) texture.Texture {
	if texture.IsNull(t) {
		return nil
	}
	return t
}

// quadIndices appends the two counter-clockwise triangles of quad k.
func quadIndices(dst []uint16, k int) []uint16 {
	base := uint16(4 * k)
	return append(dst, base, base+1, base+2, base+2, base+3, base)
}
