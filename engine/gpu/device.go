// Package gpu defines the device contract the sprite and shader packages draw through. A Device is a
// thin, handle-based view of a graphics API: it compiles and links programs, reports their uniforms,
// owns buffers, vertex inputs and textures, and issues indexed draws. Backends live in the opengl and
// webgpu subpackages; gputest provides an in-memory recording device.
//
// All handle types use 0 as the invalid value. Devices are not safe for concurrent use and must be
// driven from the thread that owns the window's graphics context.
package gpu

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-sprite/common"
)

// ShaderStage identifies the pipeline stage a shader object is compiled for.
type ShaderStage int

const (
	// StageVertex is the per-vertex stage.
	StageVertex ShaderStage = iota
	// StageFragment is the per-fragment stage.
	StageFragment
)

func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

// BufferTarget is the role a buffer is allocated for.
type BufferTarget int

const (
	// BufferTargetVertex holds per-vertex attribute data.
	BufferTargetVertex BufferTarget = iota
	// BufferTargetIndex holds 16-bit element indices.
	BufferTargetIndex
)

type (
	ShaderID      uint32
	ProgramID     uint32
	BufferID      uint32
	VertexInputID uint32
	TextureID     uint32
)

// UniformInfo describes an active uniform of a linked program.
type UniformInfo struct {
	// Location is the backend location (GL uniform location, or slot index on WebGPU).
	Location int32
	// Count is the number of array elements; 1 for non-array uniforms.
	Count int
}

// VertexAttribute describes one float attribute inside an interleaved vertex.
type VertexAttribute struct {
	Location   uint32
	Components int32
	Offset     uintptr
}

// VertexLayout is the interleaved layout of a vertex buffer.
type VertexLayout struct {
	Stride     int32
	Attributes []VertexAttribute
}

var (
	// ErrCompile is wrapped by CompileShader failures; the message carries the driver log.
	ErrCompile = errors.New("shader compile failed")
	// ErrLink is wrapped by LinkProgram failures; the message carries the driver log.
	ErrLink = errors.New("program link failed")
	// ErrInvalidHandle is returned when an operation receives a zero or unknown handle.
	ErrInvalidHandle = errors.New("invalid handle")
	// ErrNoFrame is returned by draws issued outside BeginFrame / EndFrame on backends that require a frame.
	ErrNoFrame = errors.New("no frame in progress")
)

// Device is the handle-based graphics contract.
type Device interface {
	// Backend returns a short human-readable backend name for logging.
	Backend() string

	// CompileShader compiles one stage from source. Sources are passed through unchanged; the backend
	// adds whatever termination its API requires.
	//
	// Parameters:
	//   - stage: the stage to compile for
	//   - source: complete shader source text
	//
	// Returns:
	//   - ShaderID: the compiled shader, or 0 on failure
	//   - error: wraps ErrCompile with the driver diagnostic on failure
	CompileShader(stage ShaderStage, source string) (ShaderID, error)

	// DeleteShader releases a shader object. Zero is ignored.
	DeleteShader(id ShaderID)

	// LinkProgram links a vertex and fragment shader into a program. On failure no program object
	// remains allocated. The shaders stay owned by the caller.
	//
	// Returns:
	//   - ProgramID: the linked program, or 0 on failure
	//   - error: wraps ErrLink with the driver diagnostic on failure
	LinkProgram(vs, fs ShaderID) (ProgramID, error)

	// DeleteProgram releases a program object. Zero is ignored.
	DeleteProgram(id ProgramID)

	// Uniform looks up an active uniform by name. Array uniforms are found by their base name.
	//
	// Returns:
	//   - UniformInfo: location and array length
	//   - bool: false when the program does not expose the uniform
	Uniform(p ProgramID, name string) (UniformInfo, bool)

	// UseProgram makes p the target of subsequent uniform uploads and draws.
	UseProgram(p ProgramID)

	// UniformMatrix4 uploads a column-major 4x4 matrix to the current program.
	UniformMatrix4(location int32, m [16]float32)

	// Uniform3 uploads an array of vec3 to the current program.
	Uniform3(location int32, v [][3]float32)

	// Uniform4 uploads an array of vec4 to the current program.
	Uniform4(location int32, v [][4]float32)

	// CreateBuffer allocates size bytes of device memory for target.
	CreateBuffer(target BufferTarget, size int) (BufferID, error)

	// MapBuffer returns a writable view of the first size bytes of the buffer. The view is valid
	// until UnmapBuffer, which publishes the written bytes to the device.
	MapBuffer(id BufferID, size int) ([]byte, error)

	// UnmapBuffer ends a MapBuffer write.
	UnmapBuffer(id BufferID) error

	// DeleteBuffer releases a buffer. Zero is ignored.
	DeleteBuffer(id BufferID)

	// CreateVertexInput records which vertex and index buffers and which layout a draw reads.
	CreateVertexInput(vbo, ibo BufferID, layout VertexLayout) (VertexInputID, error)

	// BindVertexInput makes vi the source of subsequent draws.
	BindVertexInput(vi VertexInputID)

	// DeleteVertexInput releases a vertex input. The referenced buffers are not deleted.
	DeleteVertexInput(vi VertexInputID)

	// CreateTexture uploads RGBA pixels as a 2D texture.
	CreateTexture(data common.TextureStagingData) (TextureID, error)

	// BindTexture binds tex to a sampler unit. Zero unbinds the unit.
	BindTexture(unit uint32, tex TextureID)

	// DeleteTexture releases a texture. Zero is ignored.
	DeleteTexture(tex TextureID)

	// DrawIndexed draws count 16-bit indices starting at index firstIndex as a triangle list.
	DrawIndexed(count, firstIndex int) error

	// BeginFrame starts a frame and clears the target to color.
	BeginFrame(color [4]float32) error

	// EndFrame submits the frame's work and presents where the backend owns presentation.
	EndFrame() error

	// Resize informs the device of a new framebuffer size in pixels.
	Resize(width, height int)

	// Release frees the device and everything it still owns.
	Release()
}
