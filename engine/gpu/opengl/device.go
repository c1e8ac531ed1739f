// Package opengl implements gpu.Device on an OpenGL 3.3 core context. The window must have made its
// context current on the calling thread before New is called.
package opengl

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-sprite/common"
	"github.com/Carmen-Shannon/oxy-sprite/engine/gpu"
	"github.com/Carmen-Shannon/oxy-sprite/engine/log"
	"github.com/go-gl/gl/v3.3-core/gl"
)

type programInfo struct {
	uniforms map[string]gpu.UniformInfo
}

// device is the OpenGL implementation of gpu.Device.
type device struct {
	logger *log.Logger

	programs map[gpu.ProgramID]*programInfo
	buffers  map[gpu.BufferID]gpu.BufferTarget
	shaders  map[gpu.ShaderID]struct{}
	inputs   map[gpu.VertexInputID]struct{}
	textures map[gpu.TextureID]int

	// white is bound in place of texture 0 so untextured sprites sample opaque white.
	white gpu.TextureID

	width, height int
	nearest       bool
	released      bool
}

var _ gpu.Device = &device{}

// New loads the OpenGL function pointers for the current context and returns a device for it.
//
// Parameters:
//   - options: DeviceBuilderOption values (logger, framebuffer size, filtering)
//
// Returns:
//   - gpu.Device: the device
//   - error: error if the GL functions cannot be loaded
func New(options ...DeviceBuilderOption) (gpu.Device, error) {
	d := &device{
		programs: make(map[gpu.ProgramID]*programInfo),
		buffers:  make(map[gpu.BufferID]gpu.BufferTarget),
		shaders:  make(map[gpu.ShaderID]struct{}),
		inputs:   make(map[gpu.VertexInputID]struct{}),
		textures: make(map[gpu.TextureID]int),
	}
	for _, opt := range options {
		opt(d)
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	d.logger.Info("OpenGL initialized",
		"vendor", gl.GoStr(gl.GetString(gl.VENDOR)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
		"version", gl.GoStr(gl.GetString(gl.VERSION)))

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	if d.width > 0 && d.height > 0 {
		gl.Viewport(0, 0, int32(d.width), int32(d.height))
	}

	white, err := d.CreateTexture(common.TextureStagingData{Pixels: []byte{255, 255, 255, 255}, Width: 1, Height: 1})
	if err != nil {
		return nil, err
	}
	d.white = white
	return d, nil
}

func (d *device) Backend() string {
	return "opengl"
}

func (d *device) CompileShader(stage gpu.ShaderStage, source string) (gpu.ShaderID, error) {
	var xtype uint32
	switch stage {
	case gpu.StageVertex:
		xtype = gl.VERTEX_SHADER
	case gpu.StageFragment:
		xtype = gl.FRAGMENT_SHADER
	default:
		return 0, fmt.Errorf("%w: unknown stage %d", gpu.ErrCompile, stage)
	}

	handle := gl.CreateShader(xtype)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(handle, 1, csource, nil)
	free()
	gl.CompileShader(handle)

	var status int32
	gl.GetShaderiv(handle, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(handle, gl.INFO_LOG_LENGTH, &logLength)
		msg := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(handle, logLength, nil, gl.Str(msg))
		gl.DeleteShader(handle)
		return 0, fmt.Errorf("%w: %s: %s", gpu.ErrCompile, stage, strings.TrimRight(msg, "\x00\n"))
	}

	id := gpu.ShaderID(handle)
	d.shaders[id] = struct{}{}
	return id, nil
}

func (d *device) DeleteShader(id gpu.ShaderID) {
	if id == 0 {
		return
	}
	gl.DeleteShader(uint32(id))
	delete(d.shaders, id)
}

func (d *device) LinkProgram(vs, fs gpu.ShaderID) (gpu.ProgramID, error) {
	if _, ok := d.shaders[vs]; !ok {
		return 0, fmt.Errorf("%w: vertex shader: %w", gpu.ErrLink, gpu.ErrInvalidHandle)
	}
	if _, ok := d.shaders[fs]; !ok {
		return 0, fmt.Errorf("%w: fragment shader: %w", gpu.ErrLink, gpu.ErrInvalidHandle)
	}

	handle := gl.CreateProgram()
	gl.AttachShader(handle, uint32(vs))
	gl.AttachShader(handle, uint32(fs))
	gl.LinkProgram(handle)

	var status int32
	gl.GetProgramiv(handle, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(handle, gl.INFO_LOG_LENGTH, &logLength)
		msg := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(handle, logLength, nil, gl.Str(msg))
		gl.DeleteProgram(handle)
		return 0, fmt.Errorf("%w: %s", gpu.ErrLink, strings.TrimRight(msg, "\x00\n"))
	}
	gl.DetachShader(handle, uint32(vs))
	gl.DetachShader(handle, uint32(fs))

	id := gpu.ProgramID(handle)
	d.programs[id] = &programInfo{uniforms: activeUniforms(handle)}
	return id, nil
}

// activeUniforms lists the program's active uniforms keyed by base name. Array uniforms are reported
// by GL as "name[0]".
func activeUniforms(handle uint32) map[string]gpu.UniformInfo {
	var count, maxLen int32
	gl.GetProgramiv(handle, gl.ACTIVE_UNIFORMS, &count)
	gl.GetProgramiv(handle, gl.ACTIVE_UNIFORM_MAX_LENGTH, &maxLen)

	out := make(map[string]gpu.UniformInfo, count)
	buf := make([]uint8, maxLen+1)
	for i := uint32(0); i < uint32(count); i++ {
		var length, size int32
		var xtype uint32
		gl.GetActiveUniform(handle, i, maxLen, &length, &size, &xtype, &buf[0])
		name := string(buf[:length])
		loc := gl.GetUniformLocation(handle, gl.Str(name+"\x00"))
		if loc < 0 {
			continue
		}
		out[strings.TrimSuffix(name, "[0]")] = gpu.UniformInfo{Location: loc, Count: int(size)}
	}
	return out
}

func (d *device) DeleteProgram(id gpu.ProgramID) {
	if id == 0 {
		return
	}
	gl.DeleteProgram(uint32(id))
	delete(d.programs, id)
}

func (d *device) Uniform(p gpu.ProgramID, name string) (gpu.UniformInfo, bool) {
	info, ok := d.programs[p]
	if !ok {
		return gpu.UniformInfo{}, false
	}
	u, ok := info.uniforms[name]
	return u, ok
}

func (d *device) UseProgram(p gpu.ProgramID) {
	gl.UseProgram(uint32(p))
}

func (d *device) UniformMatrix4(location int32, m [16]float32) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func (d *device) Uniform3(location int32, v [][3]float32) {
	if len(v) == 0 {
		return
	}
	gl.Uniform3fv(location, int32(len(v)), &v[0][0])
}

func (d *device) Uniform4(location int32, v [][4]float32) {
	if len(v) == 0 {
		return
	}
	gl.Uniform4fv(location, int32(len(v)), &v[0][0])
}

func glTarget(t gpu.BufferTarget) uint32 {
	if t == gpu.BufferTargetIndex {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func (d *device) CreateBuffer(target gpu.BufferTarget, size int) (gpu.BufferID, error) {
	if size <= 0 {
		return 0, fmt.Errorf("buffer size %d", size)
	}
	var handle uint32
	gl.GenBuffers(1, &handle)
	if handle == 0 {
		return 0, fmt.Errorf("glGenBuffers returned no buffer")
	}
	// Index buffers are only bound through a vertex array; keep the current one untouched.
	gl.BindVertexArray(0)
	gl.BindBuffer(glTarget(target), handle)
	gl.BufferData(glTarget(target), size, nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(glTarget(target), 0)

	id := gpu.BufferID(handle)
	d.buffers[id] = target
	return id, nil
}

func (d *device) MapBuffer(id gpu.BufferID, size int) ([]byte, error) {
	target, ok := d.buffers[id]
	if !ok {
		return nil, gpu.ErrInvalidHandle
	}
	if size <= 0 {
		return nil, fmt.Errorf("map of %d bytes", size)
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(glTarget(target), uint32(id))
	ptr := gl.MapBufferRange(glTarget(target), 0, size, gl.MAP_WRITE_BIT|gl.MAP_INVALIDATE_RANGE_BIT)
	if ptr == nil {
		return nil, fmt.Errorf("glMapBufferRange of buffer %d failed: 0x%x", id, gl.GetError())
	}
	return unsafe.Slice((*byte)(ptr), size), nil
}

func (d *device) UnmapBuffer(id gpu.BufferID) error {
	target, ok := d.buffers[id]
	if !ok {
		return gpu.ErrInvalidHandle
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(glTarget(target), uint32(id))
	if !gl.UnmapBuffer(glTarget(target)) {
		return fmt.Errorf("buffer %d contents were lost while mapped", id)
	}
	gl.BindBuffer(glTarget(target), 0)
	return nil
}

func (d *device) DeleteBuffer(id gpu.BufferID) {
	if id == 0 {
		return
	}
	handle := uint32(id)
	gl.DeleteBuffers(1, &handle)
	delete(d.buffers, id)
}

func (d *device) CreateVertexInput(vbo, ibo gpu.BufferID, layout gpu.VertexLayout) (gpu.VertexInputID, error) {
	if t, ok := d.buffers[vbo]; !ok || t != gpu.BufferTargetVertex {
		return 0, fmt.Errorf("vertex buffer %d: %w", vbo, gpu.ErrInvalidHandle)
	}
	if t, ok := d.buffers[ibo]; !ok || t != gpu.BufferTargetIndex {
		return 0, fmt.Errorf("index buffer %d: %w", ibo, gpu.ErrInvalidHandle)
	}

	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(vbo))
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, uint32(ibo))
	for _, a := range layout.Attributes {
		gl.EnableVertexAttribArray(a.Location)
		gl.VertexAttribPointerWithOffset(a.Location, a.Components, gl.FLOAT, false, layout.Stride, a.Offset)
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	id := gpu.VertexInputID(vao)
	d.inputs[id] = struct{}{}
	return id, nil
}

func (d *device) BindVertexInput(vi gpu.VertexInputID) {
	gl.BindVertexArray(uint32(vi))
}

func (d *device) DeleteVertexInput(vi gpu.VertexInputID) {
	if vi == 0 {
		return
	}
	vao := uint32(vi)
	gl.DeleteVertexArrays(1, &vao)
	delete(d.inputs, vi)
}

func (d *device) CreateTexture(data common.TextureStagingData) (gpu.TextureID, error) {
	if data.Empty() {
		return 0, fmt.Errorf("empty texture %dx%d", data.Width, data.Height)
	}
	var lastTexture int32
	gl.GetIntegerv(gl.TEXTURE_BINDING_2D, &lastTexture)

	var texid uint32
	gl.GenTextures(1, &texid)
	gl.BindTexture(gl.TEXTURE_2D, texid)
	filter := int32(gl.LINEAR)
	if d.nearest {
		filter = gl.NEAREST
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(data.Width), int32(data.Height), 0, gl.RGBA,
		gl.UNSIGNED_BYTE, unsafe.Pointer(&data.Pixels[0]))
	gl.BindTexture(gl.TEXTURE_2D, uint32(lastTexture))

	id := gpu.TextureID(texid)
	d.textures[id] = len(data.Pixels)
	d.logger.Debug("texture created", "texture", texid, "bytes", len(data.Pixels))
	return id, nil
}

func (d *device) BindTexture(unit uint32, tex gpu.TextureID) {
	if tex == 0 {
		tex = d.white
	}
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
}

func (d *device) DeleteTexture(tex gpu.TextureID) {
	if tex == 0 || (tex == d.white && !d.released) {
		return
	}
	texid := uint32(tex)
	gl.DeleteTextures(1, &texid)
	delete(d.textures, tex)
}

func (d *device) DrawIndexed(count, firstIndex int) error {
	if count <= 0 {
		return nil
	}
	gl.DrawElementsWithOffset(gl.TRIANGLES, int32(count), gl.UNSIGNED_SHORT, uintptr(firstIndex)*2)
	return nil
}

func (d *device) BeginFrame(color [4]float32) error {
	gl.ClearColor(color[0], color[1], color[2], color[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	return nil
}

func (d *device) EndFrame() error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("OpenGL error 0x%x", code)
	}
	return nil
}

func (d *device) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	d.width, d.height = width, height
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (d *device) Release() {
	if d.released {
		return
	}
	d.released = true
	for id := range d.inputs {
		d.DeleteVertexInput(id)
	}
	for id := range d.buffers {
		d.DeleteBuffer(id)
	}
	for id := range d.programs {
		d.DeleteProgram(id)
	}
	for id := range d.shaders {
		d.DeleteShader(id)
	}
	for id := range d.textures {
		d.DeleteTexture(id)
	}
	d.logger.Debug("OpenGL device released")
}
