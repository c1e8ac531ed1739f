// Package gputest provides an in-memory gpu.Device that records every call. Shader sources are
// "compiled" by checking brace balance and scanning GLSL uniform declarations, which is enough to
// exercise the program and renderer logic without a graphics driver.
package gputest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-sprite/common"
	"github.com/Carmen-Shannon/oxy-sprite/engine/gpu"
)

// uniformDeclRegex matches `uniform <type> <name>[N];` declarations.
var uniformDeclRegex = regexp.MustCompile(`uniform\s+\w+\s+(\w+)\s*(?:\[\s*(\d+)\s*\])?\s*;`)

// DrawCall is one recorded DrawIndexed.
type DrawCall struct {
	Program     gpu.ProgramID
	VertexInput gpu.VertexInputID
	Texture     gpu.TextureID
	Count       int
	FirstIndex  int
}

// UniformUpload is one recorded uniform write.
type UniformUpload struct {
	Program  gpu.ProgramID
	Name     string
	Location int32
	Matrix   *[16]float32
	Vec3     [][3]float32
	Vec4     [][4]float32
}

type shaderObj struct {
	stage  gpu.ShaderStage
	source string
}

type programObj struct {
	uniforms map[string]gpu.UniformInfo
	names    map[int32]string
}

type bufferObj struct {
	target gpu.BufferTarget
	data   []byte
	mapped bool
}

// Device is a recording gpu.Device. The exported fields may be set by tests before use.
type Device struct {
	// FailCompile, when set, returns a non-empty diagnostic to fail a compile.
	FailCompile func(stage gpu.ShaderStage, source string) string
	// FailLink fails every LinkProgram with the given diagnostic when non-empty.
	FailLink string
	// FailCreateBuffer fails CreateBuffer calls for the given target.
	FailCreateBuffer map[gpu.BufferTarget]bool

	Draws    []DrawCall
	Uploads  []UniformUpload
	Maps     []gpu.BufferID
	Frames   int
	Width    int
	Height   int
	Released bool

	next         uint32
	shaders      map[gpu.ShaderID]shaderObj
	programs     map[gpu.ProgramID]*programObj
	buffers      map[gpu.BufferID]*bufferObj
	vertexInputs map[gpu.VertexInputID]gpu.VertexLayout
	textures     map[gpu.TextureID]common.TextureStagingData

	current      gpu.ProgramID
	currentInput gpu.VertexInputID
	units        map[uint32]gpu.TextureID
}

var _ gpu.Device = &Device{}

// NewDevice returns an empty recording device.
func NewDevice() *Device {
	return &Device{
		FailCreateBuffer: make(map[gpu.BufferTarget]bool),
		shaders:          make(map[gpu.ShaderID]shaderObj),
		programs:         make(map[gpu.ProgramID]*programObj),
		buffers:          make(map[gpu.BufferID]*bufferObj),
		vertexInputs:     make(map[gpu.VertexInputID]gpu.VertexLayout),
		textures:         make(map[gpu.TextureID]common.TextureStagingData),
		units:            make(map[uint32]gpu.TextureID),
	}
}

func (d *Device) id() uint32 {
	d.next++
	return d.next
}

func (d *Device) Backend() string {
	return "recording"
}

func (d *Device) CompileShader(stage gpu.ShaderStage, source string) (gpu.ShaderID, error) {
	if strings.Count(source, "{") != strings.Count(source, "}") {
		return 0, fmt.Errorf("%w: %s: 0:1: syntax error, unbalanced braces", gpu.ErrCompile, stage)
	}
	if d.FailCompile != nil {
		if msg := d.FailCompile(stage, source); msg != "" {
			return 0, fmt.Errorf("%w: %s: %s", gpu.ErrCompile, stage, msg)
		}
	}
	id := gpu.ShaderID(d.id())
	d.shaders[id] = shaderObj{stage: stage, source: source}
	return id, nil
}

func (d *Device) DeleteShader(id gpu.ShaderID) {
	delete(d.shaders, id)
}

func (d *Device) LinkProgram(vs, fs gpu.ShaderID) (gpu.ProgramID, error) {
	v, okV := d.shaders[vs]
	f, okF := d.shaders[fs]
	if !okV || !okF || v.stage != gpu.StageVertex || f.stage != gpu.StageFragment {
		return 0, fmt.Errorf("%w: %w", gpu.ErrLink, gpu.ErrInvalidHandle)
	}
	if d.FailLink != "" {
		return 0, fmt.Errorf("%w: %s", gpu.ErrLink, d.FailLink)
	}

	p := &programObj{
		uniforms: make(map[string]gpu.UniformInfo),
		names:    make(map[int32]string),
	}
	var loc int32
	for _, src := range []string{v.source, f.source} {
		for _, m := range uniformDeclRegex.FindAllStringSubmatch(src, -1) {
			if _, seen := p.uniforms[m[1]]; seen {
				continue
			}
			count := 1
			if m[2] != "" {
				count, _ = strconv.Atoi(m[2])
			}
			p.uniforms[m[1]] = gpu.UniformInfo{Location: loc, Count: count}
			p.names[loc] = m[1]
			loc++
		}
	}

	id := gpu.ProgramID(d.id())
	d.programs[id] = p
	return id, nil
}

func (d *Device) DeleteProgram(id gpu.ProgramID) {
	delete(d.programs, id)
	if d.current == id {
		d.current = 0
	}
}

func (d *Device) Uniform(p gpu.ProgramID, name string) (gpu.UniformInfo, bool) {
	prog, ok := d.programs[p]
	if !ok {
		return gpu.UniformInfo{}, false
	}
	info, ok := prog.uniforms[name]
	return info, ok
}

func (d *Device) UseProgram(p gpu.ProgramID) {
	d.current = p
}

func (d *Device) record(loc int32, u UniformUpload) {
	u.Program = d.current
	u.Location = loc
	if prog, ok := d.programs[d.current]; ok {
		u.Name = prog.names[loc]
	}
	d.Uploads = append(d.Uploads, u)
}

func (d *Device) UniformMatrix4(location int32, m [16]float32) {
	d.record(location, UniformUpload{Matrix: &m})
}

func (d *Device) Uniform3(location int32, v [][3]float32) {
	d.record(location, UniformUpload{Vec3: append([][3]float32(nil), v...)})
}

func (d *Device) Uniform4(location int32, v [][4]float32) {
	d.record(location, UniformUpload{Vec4: append([][4]float32(nil), v...)})
}

func (d *Device) CreateBuffer(target gpu.BufferTarget, size int) (gpu.BufferID, error) {
	if d.FailCreateBuffer[target] {
		return 0, fmt.Errorf("buffer allocation of %d bytes refused", size)
	}
	id := gpu.BufferID(d.id())
	d.buffers[id] = &bufferObj{target: target, data: make([]byte, size)}
	return id, nil
}

func (d *Device) MapBuffer(id gpu.BufferID, size int) ([]byte, error) {
	b, ok := d.buffers[id]
	if !ok {
		return nil, gpu.ErrInvalidHandle
	}
	if size > len(b.data) {
		return nil, fmt.Errorf("map of %d bytes exceeds buffer size %d", size, len(b.data))
	}
	b.mapped = true
	d.Maps = append(d.Maps, id)
	return b.data[:size], nil
}

func (d *Device) UnmapBuffer(id gpu.BufferID) error {
	b, ok := d.buffers[id]
	if !ok {
		return gpu.ErrInvalidHandle
	}
	if !b.mapped {
		return fmt.Errorf("buffer %d is not mapped", id)
	}
	b.mapped = false
	return nil
}

func (d *Device) DeleteBuffer(id gpu.BufferID) {
	delete(d.buffers, id)
}

func (d *Device) CreateVertexInput(vbo, ibo gpu.BufferID, layout gpu.VertexLayout) (gpu.VertexInputID, error) {
	if _, ok := d.buffers[vbo]; !ok {
		return 0, gpu.ErrInvalidHandle
	}
	if _, ok := d.buffers[ibo]; !ok {
		return 0, gpu.ErrInvalidHandle
	}
	id := gpu.VertexInputID(d.id())
	d.vertexInputs[id] = layout
	return id, nil
}

func (d *Device) BindVertexInput(vi gpu.VertexInputID) {
	d.currentInput = vi
}

func (d *Device) DeleteVertexInput(vi gpu.VertexInputID) {
	delete(d.vertexInputs, vi)
}

func (d *Device) CreateTexture(data common.TextureStagingData) (gpu.TextureID, error) {
	if data.Empty() {
		return 0, fmt.Errorf("empty texture %dx%d", data.Width, data.Height)
	}
	id := gpu.TextureID(d.id())
	d.textures[id] = data
	return id, nil
}

func (d *Device) BindTexture(unit uint32, tex gpu.TextureID) {
	d.units[unit] = tex
}

func (d *Device) DeleteTexture(tex gpu.TextureID) {
	delete(d.textures, tex)
}

func (d *Device) DrawIndexed(count, firstIndex int) error {
	d.Draws = append(d.Draws, DrawCall{
		Program:     d.current,
		VertexInput: d.currentInput,
		Texture:     d.units[0],
		Count:       count,
		FirstIndex:  firstIndex,
	})
	return nil
}

func (d *Device) BeginFrame(color [4]float32) error {
	d.Frames++
	return nil
}

func (d *Device) EndFrame() error {
	return nil
}

func (d *Device) Resize(width, height int) {
	d.Width, d.Height = width, height
}

func (d *Device) Release() {
	d.Released = true
}

// Live returns the number of GPU objects currently allocated.
func (d *Device) Live() int {
	return len(d.shaders) + len(d.programs) + len(d.buffers) + len(d.vertexInputs) + len(d.textures)
}

// LivePrograms returns the number of linked programs not yet deleted.
func (d *Device) LivePrograms() int {
	return len(d.programs)
}

// LiveTextures returns the number of textures not yet deleted.
func (d *Device) LiveTextures() int {
	return len(d.textures)
}

// BufferData returns the current contents of a buffer.
func (d *Device) BufferData(id gpu.BufferID) []byte {
	if b, ok := d.buffers[id]; ok {
		return b.data
	}
	return nil
}

// Buffers returns the ids of live buffers allocated for target.
func (d *Device) Buffers(target gpu.BufferTarget) []gpu.BufferID {
	var ids []gpu.BufferID
	for id, b := range d.buffers {
		if b.target == target {
			ids = append(ids, id)
		}
	}
	return ids
}

// UploadsNamed returns the recorded uploads whose uniform name is name.
func (d *Device) UploadsNamed(name string) []UniformUpload {
	var out []UniformUpload
	for _, u := range d.Uploads {
		if u.Name == name {
			out = append(out, u)
		}
	}
	return out
}

// Reset clears the recorded draws, uploads and maps but keeps allocated objects.
func (d *Device) Reset() {
	d.Draws = nil
	d.Uploads = nil
	d.Maps = nil
}
