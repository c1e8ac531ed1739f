package webgpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const spriteVertexWGSL = `
struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(2) uv: vec2<f32>,
    @location(1) color: vec4<f32>,
};

struct VertexOutput {
    @builtin(position) clip: vec4<f32>,
    @location(0) color: vec4<f32>,
};

/* outer /* nested */ still a comment
@group(9) @binding(9) var<uniform> ghost: mat4x4<f32>;
*/
@group(0) @binding(0) var<uniform> matMVP: mat4x4<f32>; // projection

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip = matMVP * vec4<f32>(in.position, 1.0);
    out.color = in.color;
    return out;
}
`

const spriteFragmentWGSL = `
@group(0) @binding(1) var<uniform> ambLightCol: vec3<f32>;
@group(0) @binding(2) var<uniform> pointLightPos: array<vec3<f32>, 8>;
@group(1) @binding(1) var colorSampler: sampler;
@group(1) @binding(0) var colorTexture: texture_2d<f32>;
@group(0) @binding(0) var<uniform> matMVP: mat4x4<f32>;

@fragment
fn fs_main(@location(0) color: vec4<f32>) -> @location(0) vec4<f32> {
    return color;
}
`

func TestReflectVertexModule(t *testing.T) {
	info := reflectModule(spriteVertexWGSL, true)

	assert.Equal(t, "vs_main", info.entryPoint)
	require.Len(t, info.resources, 1, "declarations inside block comments are ignored")
	assert.Equal(t, "matMVP", info.resources[0].name)
	assert.Equal(t, resourceUniform, info.resources[0].kind)
	assert.Equal(t, uint64(64), info.resources[0].size)
	assert.Equal(t, 1, info.resources[0].count)

	assert.Equal(t, []vertexField{
		{location: 0, typeName: "vec3<f32>"},
		{location: 1, typeName: "vec4<f32>"},
		{location: 2, typeName: "vec2<f32>"},
	}, info.vertexInput)
}

func TestReflectFragmentModule(t *testing.T) {
	info := reflectModule(spriteFragmentWGSL, false)

	assert.Equal(t, "fs_main", info.entryPoint)
	assert.Nil(t, info.vertexInput)
	require.Len(t, info.resources, 5)

	var order [][2]uint32
	for _, r := range info.resources {
		order = append(order, [2]uint32{r.group, r.binding})
	}
	assert.Equal(t, [][2]uint32{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}}, order)

	amb := info.resources[1]
	assert.Equal(t, "ambLightCol", amb.name)
	assert.Equal(t, uint64(16), amb.size, "vec3 is padded to 16 bytes")

	points := info.resources[2]
	assert.Equal(t, 8, points.count)
	assert.Equal(t, uint64(16), points.stride)
	assert.Equal(t, uint64(128), points.size)

	assert.Equal(t, resourceTexture, info.resources[3].kind)
	assert.Equal(t, resourceSampler, info.resources[4].kind)
}

func TestReflectStructUniform(t *testing.T) {
	src := `
struct Light {
    position: vec3<f32>,
    intensity: f32,
    color: vec4<f32>,
};
@group(0) @binding(0) var<uniform> lights: array<Light, 4>;
@fragment fn main() {}
`
	info := reflectModule(src, false)
	require.Len(t, info.resources, 1)
	r := info.resources[0]
	assert.Equal(t, 4, r.count)
	assert.Equal(t, uint64(32), r.stride)
	assert.Equal(t, uint64(128), r.size)
}

func TestMergeResources(t *testing.T) {
	vs := reflectModule(spriteVertexWGSL, true)
	fs := reflectModule(spriteFragmentWGSL, false)

	merged, visibility := mergeResources(vs, fs)
	require.Len(t, merged, 5)

	mvp := visibility[[2]uint32{0, 0}]
	assert.NotZero(t, mvp)
	assert.NotEqual(t, visibility[[2]uint32{0, 1}], mvp, "shared binding is visible to both stages")
}

func TestVertexBufferLayout(t *testing.T) {
	layout, err := vertexBufferLayout(reflectModule(spriteVertexWGSL, true).vertexInput)
	require.NoError(t, err)
	assert.Equal(t, uint64(36), layout.ArrayStride)
	require.Len(t, layout.Attributes, 3)
	assert.Equal(t, uint64(12), layout.Attributes[1].Offset)
	assert.Equal(t, uint64(28), layout.Attributes[2].Offset)

	_, err = vertexBufferLayout(nil)
	assert.Error(t, err)

	_, err = vertexBufferLayout([]vertexField{{location: 0, typeName: "mat4x4<f32>"}})
	assert.Error(t, err)
}

func TestStripComments(t *testing.T) {
	assert.Equal(t, "a \nb", stripComments("a // x\nb"))
	assert.Equal(t, "ab", stripComments("a/* x /* y */ z */b"))
}

func TestRoundUp(t *testing.T) {
	assert.Equal(t, uint64(16), roundUp(16, 12))
	assert.Equal(t, uint64(32), roundUp(16, 32))
	assert.Equal(t, uint64(0), roundUp(16, 0))
	assert.Equal(t, uint64(7), roundUp(0, 7))
}
