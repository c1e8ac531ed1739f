package webgpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/Carmen-Shannon/oxy-sprite/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// vertexFormats maps WGSL vertex input types to wgpu formats and byte sizes.
var vertexFormats = map[string]struct {
	format wgpu.VertexFormat
	size   uint64
}{
	"f32":       {wgpu.VertexFormatFloat32, 4},
	"vec2f":     {wgpu.VertexFormatFloat32x2, 8},
	"vec2<f32>": {wgpu.VertexFormatFloat32x2, 8},
	"vec3f":     {wgpu.VertexFormatFloat32x3, 12},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12},
	"vec4f":     {wgpu.VertexFormatFloat32x4, 16},
	"vec4<f32>": {wgpu.VertexFormatFloat32x4, 16},
}

type shaderObj struct {
	stage  gpu.ShaderStage
	module *wgpu.ShaderModule
	info   moduleInfo
}

// uniformSlot is the buffer behind one `var<uniform>` declaration.
type uniformSlot struct {
	decl    resourceDecl
	buffer  *wgpu.Buffer
	scratch []byte
}

type programObj struct {
	pipeline     *wgpu.RenderPipeline
	layout       *wgpu.PipelineLayout
	groupLayouts []*wgpu.BindGroupLayout
	vertexStride uint64

	uniforms map[string]gpu.UniformInfo
	slots    []*uniformSlot

	// groups holds the bind groups that do not reference a texture.
	groups map[uint32]*wgpu.BindGroup

	// textureGroup is the group holding the texture binding, or -1.
	textureGroup  int
	textureGroups map[gpu.TextureID]*wgpu.BindGroup
	entries       map[uint32][]resourceDecl
}

func (d *device) CompileShader(stage gpu.ShaderStage, source string) (gpu.ShaderID, error) {
	if stage != gpu.StageVertex && stage != gpu.StageFragment {
		return 0, fmt.Errorf("%w: unknown stage %d", gpu.ErrCompile, stage)
	}
	info := reflectModule(source, stage == gpu.StageVertex)
	if info.entryPoint == "" {
		return 0, fmt.Errorf("%w: %s: no @%s entry point", gpu.ErrCompile, stage, stage)
	}

	module, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: stage.String() + " shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", gpu.ErrCompile, stage, err)
	}

	id := gpu.ShaderID(d.id())
	d.shaders[id] = &shaderObj{stage: stage, module: module, info: info}
	return id, nil
}

func (d *device) DeleteShader(id gpu.ShaderID) {
	if s, ok := d.shaders[id]; ok {
		s.module.Release()
		delete(d.shaders, id)
	}
}

// mergeResources combines both stages' declarations by (group, binding), OR-ing visibility.
//
// Returns:
//   - []resourceDecl: merged declarations ordered by group then binding
//   - map[[2]uint32]wgpu.ShaderStage: visibility per (group, binding)
func mergeResources(vs, fs moduleInfo) ([]resourceDecl, map[[2]uint32]wgpu.ShaderStage) {
	visibility := make(map[[2]uint32]wgpu.ShaderStage)
	var merged []resourceDecl
	add := func(decls []resourceDecl, stage wgpu.ShaderStage) {
		for _, r := range decls {
			key := [2]uint32{r.group, r.binding}
			if _, seen := visibility[key]; !seen {
				merged = append(merged, r)
			}
			visibility[key] |= stage
		}
	}
	add(vs.resources, wgpu.ShaderStageVertex)
	add(fs.resources, wgpu.ShaderStageFragment)
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].group != merged[j].group {
			return merged[i].group < merged[j].group
		}
		return merged[i].binding < merged[j].binding
	})
	return merged, visibility
}

func (d *device) LinkProgram(vs, fs gpu.ShaderID) (gpu.ProgramID, error) {
	vsObj, ok := d.shaders[vs]
	if !ok || vsObj.stage != gpu.StageVertex {
		return 0, fmt.Errorf("%w: vertex shader: %w", gpu.ErrLink, gpu.ErrInvalidHandle)
	}
	fsObj, ok := d.shaders[fs]
	if !ok || fsObj.stage != gpu.StageFragment {
		return 0, fmt.Errorf("%w: fragment shader: %w", gpu.ErrLink, gpu.ErrInvalidHandle)
	}

	p := &programObj{
		uniforms:      make(map[string]gpu.UniformInfo),
		groups:        make(map[uint32]*wgpu.BindGroup),
		textureGroup:  -1,
		textureGroups: make(map[gpu.TextureID]*wgpu.BindGroup),
		entries:       make(map[uint32][]resourceDecl),
	}
	if err := d.buildProgram(p, vsObj, fsObj); err != nil {
		d.releaseProgram(p)
		return 0, fmt.Errorf("%w: %w", gpu.ErrLink, err)
	}

	id := gpu.ProgramID(d.id())
	d.programs[id] = p
	d.logger.Debug("program linked", "program", id, "uniforms", len(p.uniforms), "groups", len(p.groupLayouts))
	return id, nil
}

func (d *device) buildProgram(p *programObj, vs, fs *shaderObj) error {
	resources, visibility := mergeResources(vs.info, fs.info)

	layoutEntries := make(map[uint32][]wgpu.BindGroupLayoutEntry)
	maxGroup := -1
	for _, r := range resources {
		entry := wgpu.BindGroupLayoutEntry{
			Binding:    r.binding,
			Visibility: visibility[[2]uint32{r.group, r.binding}],
		}
		switch r.kind {
		case resourceUniform:
			if r.size == 0 {
				return fmt.Errorf("uniform %q has unsupported type %s", r.name, r.typeName)
			}
			entry.Buffer = wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: r.size,
			}
			buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
				Label: r.name + " Uniform Buffer",
				Size:  r.size,
				Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
			})
			if err != nil {
				return err
			}
			p.uniforms[r.name] = gpu.UniformInfo{Location: int32(len(p.slots)), Count: r.count}
			p.slots = append(p.slots, &uniformSlot{decl: r, buffer: buf, scratch: make([]byte, r.size)})
		case resourceTexture:
			if p.textureGroup >= 0 {
				return fmt.Errorf("texture %q: only one sampled texture is supported", r.name)
			}
			p.textureGroup = int(r.group)
			entry.Texture = wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			}
		case resourceSampler:
			entry.Sampler = wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering}
		default:
			return fmt.Errorf("storage binding %q is not supported", r.name)
		}
		layoutEntries[r.group] = append(layoutEntries[r.group], entry)
		p.entries[r.group] = append(p.entries[r.group], r)
		maxGroup = max(maxGroup, int(r.group))
	}

	p.groupLayouts = make([]*wgpu.BindGroupLayout, maxGroup+1)
	for g := range p.groupLayouts {
		layout, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("Sprite Group %d", g),
			Entries: layoutEntries[uint32(g)],
		})
		if err != nil {
			return fmt.Errorf("failed to create bind group layout for group %d: %w", g, err)
		}
		p.groupLayouts[g] = layout
	}
	for g := range p.groupLayouts {
		if g == p.textureGroup {
			continue
		}
		bg, err := d.createBindGroup(p, uint32(g), nil)
		if err != nil {
			return err
		}
		p.groups[uint32(g)] = bg
	}

	layout, err := d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Sprite Pipeline Layout",
		BindGroupLayouts: p.groupLayouts,
	})
	if err != nil {
		return err
	}
	p.layout = layout

	vertexLayout, err := vertexBufferLayout(vs.info.vertexInput)
	if err != nil {
		return err
	}
	p.vertexStride = vertexLayout.ArrayStride

	p.pipeline, err = d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Sprite Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     vs.module,
			EntryPoint: vs.info.entryPoint,
			Buffers:    []wgpu.VertexBufferLayout{vertexLayout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs.module,
			EntryPoint: fs.info.entryPoint,
			Targets: []wgpu.ColorTargetState{{
				Format:    d.surfaceFormat,
				WriteMask: wgpu.ColorWriteMaskAll,
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
				},
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	return err
}

// vertexBufferLayout packs the vertex stage's inputs in location order.
func vertexBufferLayout(fields []vertexField) (wgpu.VertexBufferLayout, error) {
	if len(fields) == 0 {
		return wgpu.VertexBufferLayout{}, fmt.Errorf("vertex entry point declares no @location inputs")
	}
	attrs := make([]wgpu.VertexAttribute, 0, len(fields))
	var offset uint64
	for _, f := range fields {
		info, ok := vertexFormats[f.typeName]
		if !ok {
			return wgpu.VertexBufferLayout{}, fmt.Errorf("vertex input @location(%d) has unsupported type %s", f.location, f.typeName)
		}
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         info.format,
			Offset:         offset,
			ShaderLocation: f.location,
		})
		offset += info.size
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}, nil
}

// createBindGroup builds group g of p. view is the texture bound in place of the group's texture entry.
func (d *device) createBindGroup(p *programObj, g uint32, view *wgpu.TextureView) (*wgpu.BindGroup, error) {
	decls := p.entries[g]
	entries := make([]wgpu.BindGroupEntry, 0, len(decls))
	for _, r := range decls {
		switch r.kind {
		case resourceUniform:
			entries = append(entries, wgpu.BindGroupEntry{
				Binding: r.binding,
				Buffer:  p.slots[p.uniforms[r.name].Location].buffer,
				Offset:  0,
				Size:    wgpu.WholeSize,
			})
		case resourceTexture:
			entries = append(entries, wgpu.BindGroupEntry{Binding: r.binding, TextureView: view})
		case resourceSampler:
			entries = append(entries, wgpu.BindGroupEntry{Binding: r.binding, Sampler: d.sampler})
		}
	}
	return d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   fmt.Sprintf("Sprite Bind Group %d", g),
		Layout:  p.groupLayouts[g],
		Entries: entries,
	})
}

// textureBindGroup returns the cached texture group of p for tex, creating it on first use.
func (d *device) textureBindGroup(p *programObj, tex gpu.TextureID) (*wgpu.BindGroup, error) {
	if tex == 0 {
		tex = d.whiteTexture
	}
	if bg, ok := p.textureGroups[tex]; ok {
		return bg, nil
	}
	t, ok := d.textures[tex]
	if !ok {
		return nil, fmt.Errorf("texture %d: %w", tex, gpu.ErrInvalidHandle)
	}
	bg, err := d.createBindGroup(p, uint32(p.textureGroup), t.view)
	if err != nil {
		return nil, err
	}
	p.textureGroups[tex] = bg
	return bg, nil
}

func (d *device) releaseProgram(p *programObj) {
	for _, bg := range p.textureGroups {
		bg.Release()
	}
	for _, bg := range p.groups {
		bg.Release()
	}
	for _, s := range p.slots {
		s.buffer.Release()
	}
	for _, l := range p.groupLayouts {
		if l != nil {
			l.Release()
		}
	}
	if p.pipeline != nil {
		p.pipeline.Release()
	}
	if p.layout != nil {
		p.layout.Release()
	}
}

func (d *device) DeleteProgram(id gpu.ProgramID) {
	if p, ok := d.programs[id]; ok {
		d.releaseProgram(p)
		delete(d.programs, id)
		if d.current == id {
			d.current = 0
		}
	}
}

func (d *device) Uniform(p gpu.ProgramID, name string) (gpu.UniformInfo, bool) {
	prog, ok := d.programs[p]
	if !ok {
		return gpu.UniformInfo{}, false
	}
	u, ok := prog.uniforms[name]
	return u, ok
}

func (d *device) UseProgram(p gpu.ProgramID) {
	d.current = p
}

// slot returns the uniform slot at location in the current program.
func (d *device) slot(location int32) *uniformSlot {
	p, ok := d.programs[d.current]
	if !ok || location < 0 || int(location) >= len(p.slots) {
		return nil
	}
	return p.slots[location]
}

// writeUniform packs elements at the slot's array stride and writes the buffer through the queue.
func (d *device) writeUniform(location int32, elements int, put func(dst []byte, i int)) {
	s := d.slot(location)
	if s == nil {
		return
	}
	stride := s.decl.stride
	if stride == 0 {
		stride = s.decl.size
	}
	n := min(elements, s.decl.count)
	for i := 0; i < n; i++ {
		put(s.scratch[uint64(i)*stride:], i)
	}
	d.queue.WriteBuffer(s.buffer, 0, s.scratch)
}

func putFloats(dst []byte, v []float32) {
	for i, f := range v {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
	}
}

func (d *device) UniformMatrix4(location int32, m [16]float32) {
	d.writeUniform(location, 1, func(dst []byte, _ int) { putFloats(dst, m[:]) })
}

func (d *device) Uniform3(location int32, v [][3]float32) {
	d.writeUniform(location, len(v), func(dst []byte, i int) { putFloats(dst, v[i][:]) })
}

func (d *device) Uniform4(location int32, v [][4]float32) {
	d.writeUniform(location, len(v), func(dst []byte, i int) { putFloats(dst, v[i][:]) })
}

func (d *device) DrawIndexed(count, firstIndex int) error {
	if count <= 0 {
		return nil
	}
	if d.framePass == nil {
		return gpu.ErrNoFrame
	}
	p, ok := d.programs[d.current]
	if !ok {
		return fmt.Errorf("program %d: %w", d.current, gpu.ErrInvalidHandle)
	}
	vi, ok := d.vertexInputs[d.currentInput]
	if !ok {
		return fmt.Errorf("vertex input %d: %w", d.currentInput, gpu.ErrInvalidHandle)
	}
	if uint64(vi.layout.Stride) != p.vertexStride {
		return fmt.Errorf("vertex stride %d does not match the program's %d", vi.layout.Stride, p.vertexStride)
	}

	d.framePass.SetPipeline(p.pipeline)
	for g := range p.groupLayouts {
		bg := p.groups[uint32(g)]
		if g == p.textureGroup {
			var err error
			if bg, err = d.textureBindGroup(p, d.units[0]); err != nil {
				return err
			}
		}
		d.framePass.SetBindGroup(uint32(g), bg, nil)
	}
	d.framePass.SetVertexBuffer(0, d.buffers[vi.vbo].buffer, 0, wgpu.WholeSize)
	d.framePass.SetIndexBuffer(d.buffers[vi.ibo].buffer, wgpu.IndexFormatUint16, 0, wgpu.WholeSize)
	d.framePass.DrawIndexed(uint32(count), 1, uint32(firstIndex), 0, 0)
	return nil
}
