package sprite

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-sprite/common"
	"github.com/Carmen-Shannon/oxy-sprite/engine/gpu"
	"github.com/Carmen-Shannon/oxy-sprite/engine/log"
	"github.com/Carmen-Shannon/oxy-sprite/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-sprite/engine/texture"
)

// MaxSpriteCount is the largest capacity addressable with 16-bit indices.
const MaxSpriteCount = 65536 / 4

var (
	// ErrCapacityExceeded is returned by AddVertices when the renderer already holds its maximum
	// number of sprites. Accumulated sprites are kept.
	ErrCapacityExceeded = errors.New("sprite capacity exceeded")

	// ErrContractViolation is returned when an operation is called in the wrong frame state.
	// Builds with the spritedebug tag panic instead.
	ErrContractViolation = errors.New("renderer operation out of order")

	// ErrInvalidCapacity is returned by NewRenderer for a capacity <= 0 or above MaxSpriteCount.
	ErrInvalidCapacity = errors.New("invalid sprite capacity")

	// ErrInvalidSprite is returned by AddVertices for a sprite with a negative rect size.
	ErrInvalidSprite = errors.New("invalid sprite")
)

// State is the renderer's position in the per-frame cycle.
type State int

const (
	// StateIdle holds nothing to draw.
	StateIdle State = iota
	// StateAccumulating accepts AddVertices.
	StateAccumulating
	// StateFlushed has uploaded the frame's sprites and is ready to draw.
	StateFlushed
	// StateDrawn has drawn the uploaded sprites at least once.
	StateDrawn
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAccumulating:
		return "accumulating"
	case StateFlushed:
		return "flushed"
	case StateDrawn:
		return "drawn"
	default:
		return "unknown"
	}
}

// Stats counts the work of the most recent frame.
type Stats struct {
	Sprites   int
	DrawCalls int
	Uploads   int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	dev         gpu.Device
	logger      *log.Logger
	program     shader.Program
	programOpts []shader.ProgramBuilderOption
	debug       bool

	maxSprites int
	vbo        gpu.BufferID
	ibo        gpu.BufferID
	input      gpu.VertexInputID

	vertices   []Vertex
	indices    []uint16
	primitives []Primitive
	state      State
	stats      Stats
}

// Renderer accumulates sprites each frame, uploads them in one transfer and draws them grouped by
// texture in submission order.
//
// A frame runs BeginUpdate, AddVertices for each sprite, EndUpdate, then Draw. Calling AddVertices
// outside BeginUpdate/EndUpdate or Draw before EndUpdate is a contract violation.
type Renderer interface {
	// BeginUpdate discards the previous frame's sprites and starts accumulating.
	BeginUpdate()

	// AddVertices appends a sprite. It joins the open primitive when it samples the same texture as
	// the previous sprite and opens a new primitive otherwise.
	//
	// Parameters:
	//   - s: the sprite to append
	//
	// Returns:
	//   - error: ErrCapacityExceeded when full, ErrInvalidSprite for a negative rect size,
	//     ErrContractViolation outside BeginUpdate/EndUpdate
	AddVertices(s Sprite) error

	// EndUpdate uploads the accumulated vertices and their indices, one map and unmap per buffer.
	// Nothing is uploaded for an empty frame.
	//
	// Returns:
	//   - error: ErrContractViolation when not accumulating, or the device error
	EndUpdate() error

	// Draw activates the program, sets a pixel-space orthographic matrix for screenSize, binds the
	// buffers once and issues one indexed draw per primitive.
	//
	// Parameters:
	//   - screenSize: framebuffer width and height in pixels
	//
	// Returns:
	//   - int: the number of draw calls issued
	//   - error: ErrContractViolation while accumulating, or the device error
	Draw(screenSize [2]float32) (int, error)

	// Clear discards accumulated sprites and primitives. Device buffers are left untouched.
	Clear()

	// Primitives returns the current frame's primitives. The slice is reused by the next frame.
	Primitives() []Primitive

	// SpriteCount returns the number of sprites accumulated this frame.
	SpriteCount() int

	// Capacity returns the maximum number of sprites per frame.
	Capacity() int

	// State returns the frame state.
	State() State

	// Program returns the shader program sprites are drawn with.
	Program() shader.Program

	// Stats returns the counters of the last frame.
	Stats() Stats

	// Release deletes the buffers and drops the renderer's program reference.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer allocates buffers for maxSpriteCount sprites and builds the program from the two
// shader files, unless WithProgram supplies one. On failure every object created so far is
// released.
//
// Parameters:
//   - dev: the device to draw with
//   - maxSpriteCount: sprites per frame, 1 to MaxSpriteCount
//   - vertexShaderPath: vertex stage source file, ignored with WithProgram
//   - fragmentShaderPath: fragment stage source file, ignored with WithProgram
//   - options: RendererBuilderOption values
//
// Returns:
//   - Renderer: the renderer, nil on failure
//   - error: ErrInvalidCapacity, a shader build or IO error, or a device error
func NewRenderer(dev gpu.Device, maxSpriteCount int, vertexShaderPath, fragmentShaderPath string, options ...RendererBuilderOption) (Renderer, error) {
	if maxSpriteCount <= 0 || maxSpriteCount > MaxSpriteCount {
		return nil, fmt.Errorf("%w: %d, want 1 to %d", ErrInvalidCapacity, maxSpriteCount, MaxSpriteCount)
	}

	r := &renderer{
		dev:        dev,
		debug:      log.DebugBuild,
		maxSprites: maxSpriteCount,
	}
	for _, opt := range options {
		opt(r)
	}

	if err := r.init(vertexShaderPath, fragmentShaderPath); err != nil {
		r.Release()
		r.logger.Error("sprite renderer init failed", "error", err)
		return nil, err
	}

	r.vertices = make([]Vertex, 0, maxSpriteCount*4)
	r.indices = make([]uint16, 0, maxSpriteCount*6)
	for k := 0; k < maxSpriteCount; k++ {
		r.indices = quadIndices(r.indices, k)
	}
	r.logger.Debug("sprite renderer created", "capacity", maxSpriteCount, "program", r.program.Label())
	return r, nil
}

func (r *renderer) init(vertexShaderPath, fragmentShaderPath string) error {
	if r.program != nil {
		if !r.program.Valid() {
			p := r.program
			r.program = nil
			return fmt.Errorf("%w: program %q is not valid", shader.ErrBuild, p.Label())
		}
		r.program.Retain()
	} else {
		opts := append([]shader.ProgramBuilderOption{shader.WithLogger(r.logger)}, r.programOpts...)
		p, err := shader.BuildFromFiles(r.dev, vertexShaderPath, fragmentShaderPath, opts...)
		if err != nil {
			p.Release()
			return err
		}
		r.program = p
	}

	var err error
	if r.vbo, err = r.dev.CreateBuffer(gpu.BufferTargetVertex, r.maxSprites*4*VertexSize); err != nil {
		return fmt.Errorf("sprite vertex buffer: %w", err)
	}
	if r.ibo, err = r.dev.CreateBuffer(gpu.BufferTargetIndex, r.maxSprites*6*2); err != nil {
		return fmt.Errorf("sprite index buffer: %w", err)
	}
	if r.input, err = r.dev.CreateVertexInput(r.vbo, r.ibo, Layout); err != nil {
		return fmt.Errorf("sprite vertex input: %w", err)
	}
	return nil
}

// violation reports an out-of-order call. Debug builds panic.
func (r *renderer) violation(op string) error {
	err := fmt.Errorf("%w: %s in state %s", ErrContractViolation, op, r.state)
	if r.debug {
		panic(err)
	}
	r.logger.Warn("sprite renderer contract violation", "op", op, "state", r.state.String())
	return err
}

func (r *renderer) BeginUpdate() {
	if r == nil {
		return
	}
	r.Clear()
	r.state = StateAccumulating
}

func (r *renderer) AddVertices(s Sprite) error {
	if r == nil {
		return fmt.Errorf("%w: nil renderer", ErrContractViolation)
	}
	if r.state != StateAccumulating {
		return r.violation("AddVertices")
	}
	if !s.Rect.Valid() {
		return fmt.Errorf("%w: negative rect size %v", ErrInvalidSprite, s.Rect.Size)
	}
	n := len(r.vertices) / 4
	if n >= r.maxSprites {
		return fmt.Errorf("%w: capacity %d", ErrCapacityExceeded, r.maxSprites)
	}

	quad := s.Vertices()
	r.vertices = append(r.vertices, quad[:]...)

	key := batchKey(s.Texture)
	if last := len(r.primitives) - 1; last >= 0 && r.primitives[last].Texture == key {
		r.primitives[last].Count += 6
		return nil
	}
	r.primitives = append(r.primitives, Primitive{Count: 6, Offset: n * 6, Texture: key})
	return nil
}

func (r *renderer) EndUpdate() error {
	if r == nil {
		return fmt.Errorf("%w: nil renderer", ErrContractViolation)
	}
	if r.state != StateAccumulating {
		return r.violation("EndUpdate")
	}

	sprites := len(r.vertices) / 4
	r.stats = Stats{Sprites: sprites}
	if sprites > 0 {
		if err := r.upload(r.vbo, common.SliceToBytes(r.vertices)); err != nil {
			return fmt.Errorf("sprite vertices: %w", err)
		}
		if err := r.upload(r.ibo, common.SliceToBytes(r.indices[:sprites*6])); err != nil {
			return fmt.Errorf("sprite indices: %w", err)
		}
	}
	r.state = StateFlushed
	return nil
}

func (r *renderer) upload(id gpu.BufferID, data []byte) error {
	dst, err := r.dev.MapBuffer(id, len(data))
	if err != nil {
		return err
	}
	copy(dst, data)
	if err := r.dev.UnmapBuffer(id); err != nil {
		return err
	}
	r.stats.Uploads++
	return nil
}

func (r *renderer) Draw(screenSize [2]float32) (int, error) {
	if r == nil {
		return 0, nil
	}
	switch r.state {
	case StateIdle:
		return 0, nil
	case StateAccumulating:
		return 0, r.violation("Draw")
	}
	if r.program == nil || !r.program.Valid() {
		r.logger.Warn("sprite renderer has no valid program")
		return 0, nil
	}
	if len(r.primitives) == 0 {
		r.state = StateDrawn
		return 0, nil
	}

	r.program.Use()
	r.program.SetViewProjectionMatrix(common.ScreenOrtho(screenSize[0], screenSize[1]))
	r.dev.BindVertexInput(r.input)

	draws := 0
	for _, p := range r.primitives {
		r.program.BindTexture(0, texture.ID(p.Texture))
		if err := r.dev.DrawIndexed(p.Count, p.Offset); err != nil {
			r.stats.DrawCalls = draws
			return draws, fmt.Errorf("sprite draw %d: %w", draws, err)
		}
		draws++
	}
	r.stats.DrawCalls = draws
	r.state = StateDrawn
	return draws, nil
}

func (r *renderer) Clear() {
	if r == nil {
		return
	}
	r.vertices = r.vertices[:0]
	r.primitives = r.primitives[:0]
	r.state = StateIdle
}

func (r *renderer) Primitives() []Primitive {
	if r == nil {
		return nil
	}
	return r.primitives
}

func (r *renderer) SpriteCount() int {
	if r == nil {
		return 0
	}
	return len(r.vertices) / 4
}

func (r *renderer) Capacity() int {
	if r == nil {
		return 0
	}
	return r.maxSprites
}

func (r *renderer) State() State {
	if r == nil {
		return StateIdle
	}
	return r.state
}

func (r *renderer) Program() shader.Program {
	if r == nil {
		return nil
	}
	return r.program
}

func (r *renderer) Stats() Stats {
	if r == nil {
		return Stats{}
	}
	return r.stats
}

func (r *renderer) Release() {
	if r == nil {
		return
	}
	r.dev.DeleteVertexInput(r.input)
	r.dev.DeleteBuffer(r.ibo)
	r.dev.DeleteBuffer(r.vbo)
	r.input, r.ibo, r.vbo = 0, 0, 0
	if r.program != nil {
		r.program.Release()
		r.program = nil
	}
	r.vertices = nil
	r.primitives = nil
	r.state = StateIdle
}
