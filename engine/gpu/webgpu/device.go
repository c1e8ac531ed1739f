// Package webgpu implements gpu.Device on WebGPU (wgpu-native through cogentcore/webgpu).
//
// WebGPU has no program objects or loose uniforms, so the device builds them from WGSL reflection:
// every `var<uniform>` declaration becomes a uniform slot backed by its own buffer and addressed by
// name through Uniform, and the group holding the texture and sampler is rebound per draw for the
// texture on unit 0. Uniform writes go through the queue and apply to the whole submitted frame.
// Buffers are mapped through a CPU staging copy that is written to the GPU on unmap.
package webgpu

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-sprite/common"
	"github.com/Carmen-Shannon/oxy-sprite/engine/gpu"
	"github.com/Carmen-Shannon/oxy-sprite/engine/log"
	"github.com/cogentcore/webgpu/wgpu"
)

// PresentMode controls how frames are delivered to the display.
type PresentMode int

const (
	// PresentModeVSync waits for vertical blank.
	PresentModeVSync PresentMode = iota
	// PresentModeUncapped presents immediately.
	PresentModeUncapped
)

type bufferObj struct {
	target  gpu.BufferTarget
	buffer  *wgpu.Buffer
	staging []byte
	mapped  int
}

type vertexInputObj struct {
	vbo, ibo gpu.BufferID
	layout   gpu.VertexLayout
}

type textureObj struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

// device is the WebGPU implementation of gpu.Device.
type device struct {
	logger *log.Logger

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	forceFallback bool
	nearest       bool
	width, height int

	sampler      *wgpu.Sampler
	whiteTexture gpu.TextureID

	next         uint32
	shaders      map[gpu.ShaderID]*shaderObj
	programs     map[gpu.ProgramID]*programObj
	buffers      map[gpu.BufferID]*bufferObj
	vertexInputs map[gpu.VertexInputID]*vertexInputObj
	textures     map[gpu.TextureID]*textureObj

	current      gpu.ProgramID
	currentInput gpu.VertexInputID
	units        map[uint32]gpu.TextureID

	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ gpu.Device = &device{}

// New creates an instance, surface, adapter and device for the window surface and configures the
// surface for the initial framebuffer size. Must be called from the thread that owns the window.
//
// Parameters:
//   - surfaceDescriptor: the platform surface of the window
//   - width, height: framebuffer size in pixels
//   - options: DeviceBuilderOption values
//
// Returns:
//   - gpu.Device: the device
//   - error: error if no adapter or device could be obtained
func New(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, options ...DeviceBuilderOption) (gpu.Device, error) {
	if surfaceDescriptor == nil {
		return nil, errors.New("webgpu: nil surface descriptor")
	}
	runtime.LockOSThread()

	d := &device{
		presentMode:  wgpu.PresentModeFifo,
		shaders:      make(map[gpu.ShaderID]*shaderObj),
		programs:     make(map[gpu.ProgramID]*programObj),
		buffers:      make(map[gpu.BufferID]*bufferObj),
		vertexInputs: make(map[gpu.VertexInputID]*vertexInputObj),
		textures:     make(map[gpu.TextureID]*textureObj),
		units:        make(map[uint32]gpu.TextureID),
	}
	for _, opt := range options {
		opt(d)
	}

	d.instance = wgpu.CreateInstance(nil)
	d.surface = d.instance.CreateSurface(surfaceDescriptor)

	adapter, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: d.forceFallback,
		CompatibleSurface:    d.surface,
	})
	if err != nil {
		d.Release()
		return nil, fmt.Errorf("webgpu: request adapter: %w", err)
	}
	d.adapter = adapter

	dev, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "Sprite Device"})
	if err != nil {
		d.Release()
		return nil, fmt.Errorf("webgpu: request device: %w", err)
	}
	d.device = dev
	d.queue = dev.GetQueue()

	d.sampler, err = dev.CreateSampler(d.samplerDescriptor())
	if err != nil {
		d.Release()
		return nil, fmt.Errorf("webgpu: create sampler: %w", err)
	}
	d.whiteTexture, err = d.CreateTexture(common.TextureStagingData{
		Pixels: []byte{255, 255, 255, 255},
		Width:  1,
		Height: 1,
	})
	if err != nil {
		d.Release()
		return nil, err
	}

	d.configureSurface(width, height)
	d.logger.Info("WebGPU initialized", "format", d.surfaceFormat, "width", width, "height", height)
	return d, nil
}

func (d *device) samplerDescriptor() *wgpu.SamplerDescriptor {
	filter := wgpu.FilterModeLinear
	if d.nearest {
		filter = wgpu.FilterModeNearest
	}
	return &wgpu.SamplerDescriptor{
		Label:         "Sprite Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     filter,
		MinFilter:     filter,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}
}

// configureSurface (re)configures the swapchain. The surface format is fixed on first use so that
// pipelines built for it stay valid across resizes.
func (d *device) configureSurface(width, height int) {
	capabilities := d.surface.GetCapabilities(d.adapter)
	if d.surfaceFormat == wgpu.TextureFormatUndefined {
		d.surfaceFormat = capabilities.Formats[0]
	}
	if width <= 0 || height <= 0 {
		return
	}
	d.width, d.height = width, height
	d.surface.Configure(d.adapter, d.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      d.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: d.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
}

func (d *device) id() uint32 {
	d.next++
	return d.next
}

func (d *device) Backend() string {
	return "webgpu"
}

func (d *device) CreateBuffer(target gpu.BufferTarget, size int) (gpu.BufferID, error) {
	if size <= 0 {
		return 0, fmt.Errorf("buffer size %d", size)
	}
	usage := wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst
	label := "Sprite Vertex Buffer"
	if target == gpu.BufferTargetIndex {
		usage = wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst
		label = "Sprite Index Buffer"
	}
	size = int(roundUp(4, uint64(size)))
	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(size),
		Usage: usage,
	})
	if err != nil {
		return 0, fmt.Errorf("webgpu: create buffer: %w", err)
	}
	id := gpu.BufferID(d.id())
	d.buffers[id] = &bufferObj{target: target, buffer: buf, staging: make([]byte, size)}
	return id, nil
}

func (d *device) MapBuffer(id gpu.BufferID, size int) ([]byte, error) {
	b, ok := d.buffers[id]
	if !ok {
		return nil, gpu.ErrInvalidHandle
	}
	if size <= 0 || size > len(b.staging) {
		return nil, fmt.Errorf("map of %d bytes, buffer holds %d", size, len(b.staging))
	}
	b.mapped = size
	return b.staging[:size], nil
}

func (d *device) UnmapBuffer(id gpu.BufferID) error {
	b, ok := d.buffers[id]
	if !ok {
		return gpu.ErrInvalidHandle
	}
	if b.mapped == 0 {
		return fmt.Errorf("buffer %d is not mapped", id)
	}
	n := int(roundUp(4, uint64(b.mapped)))
	b.mapped = 0
	d.queue.WriteBuffer(b.buffer, 0, b.staging[:n])
	return nil
}

func (d *device) DeleteBuffer(id gpu.BufferID) {
	if b, ok := d.buffers[id]; ok {
		b.buffer.Release()
		delete(d.buffers, id)
	}
}

func (d *device) CreateVertexInput(vbo, ibo gpu.BufferID, layout gpu.VertexLayout) (gpu.VertexInputID, error) {
	if b, ok := d.buffers[vbo]; !ok || b.target != gpu.BufferTargetVertex {
		return 0, fmt.Errorf("vertex buffer %d: %w", vbo, gpu.ErrInvalidHandle)
	}
	if b, ok := d.buffers[ibo]; !ok || b.target != gpu.BufferTargetIndex {
		return 0, fmt.Errorf("index buffer %d: %w", ibo, gpu.ErrInvalidHandle)
	}
	id := gpu.VertexInputID(d.id())
	d.vertexInputs[id] = &vertexInputObj{vbo: vbo, ibo: ibo, layout: layout}
	return id, nil
}

func (d *device) BindVertexInput(vi gpu.VertexInputID) {
	d.currentInput = vi
}

func (d *device) DeleteVertexInput(vi gpu.VertexInputID) {
	delete(d.vertexInputs, vi)
}

func (d *device) CreateTexture(data common.TextureStagingData) (gpu.TextureID, error) {
	if data.Empty() {
		return 0, fmt.Errorf("empty texture %dx%d", data.Width, data.Height)
	}
	size := wgpu.Extent3D{Width: data.Width, Height: data.Height, DepthOrArrayLayers: 1}
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Sprite Texture",
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          size,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return 0, fmt.Errorf("webgpu: create texture: %w", err)
	}

	d.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		data.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  data.Width * 4,
			RowsPerImage: data.Height,
		},
		&size,
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return 0, fmt.Errorf("webgpu: create texture view: %w", err)
	}

	id := gpu.TextureID(d.id())
	d.textures[id] = &textureObj{texture: tex, view: view}
	return id, nil
}

func (d *device) BindTexture(unit uint32, tex gpu.TextureID) {
	d.units[unit] = tex
}

func (d *device) DeleteTexture(tex gpu.TextureID) {
	t, ok := d.textures[tex]
	if !ok {
		return
	}
	for _, p := range d.programs {
		if bg, ok := p.textureGroups[tex]; ok {
			bg.Release()
			delete(p.textureGroups, tex)
		}
	}
	t.view.Release()
	t.texture.Release()
	delete(d.textures, tex)
}

func (d *device) BeginFrame(color [4]float32) error {
	if d.frameSurface != nil {
		return errors.New("webgpu: previous frame not yet presented")
	}

	surfaceTexture, err := d.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	d.framePass = encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:    view,
			LoadOp:  wgpu.LoadOpClear,
			StoreOp: wgpu.StoreOpStore,
			ClearValue: wgpu.Color{
				R: float64(color[0]), G: float64(color[1]), B: float64(color[2]), A: float64(color[3]),
			},
		}},
	})
	d.frameEncoder = encoder
	d.frameSurface = surfaceTexture
	d.frameView = view
	return nil
}

func (d *device) EndFrame() error {
	if d.framePass == nil {
		return gpu.ErrNoFrame
	}
	defer d.releaseFrame()

	d.framePass.End()
	commandBuffer, err := d.frameEncoder.Finish(nil)
	if err != nil {
		return err
	}
	defer commandBuffer.Release()

	d.queue.Submit(commandBuffer)
	d.surface.Present()
	return nil
}

func (d *device) releaseFrame() {
	if d.framePass != nil {
		d.framePass.Release()
		d.framePass = nil
	}
	if d.frameEncoder != nil {
		d.frameEncoder.Release()
		d.frameEncoder = nil
	}
	if d.frameView != nil {
		d.frameView.Release()
		d.frameView = nil
	}
	if d.frameSurface != nil {
		d.frameSurface.Release()
		d.frameSurface = nil
	}
}

func (d *device) Resize(width, height int) {
	d.configureSurface(width, height)
}

func (d *device) Release() {
	d.releaseFrame()
	for id := range d.programs {
		d.DeleteProgram(id)
	}
	for id := range d.shaders {
		d.DeleteShader(id)
	}
	for id := range d.buffers {
		d.DeleteBuffer(id)
	}
	for id := range d.textures {
		d.DeleteTexture(id)
	}
	d.vertexInputs = make(map[gpu.VertexInputID]*vertexInputObj)
	if d.sampler != nil {
		d.sampler.Release()
		d.sampler = nil
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.surface != nil {
		d.surface.Release()
		d.surface = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}
