package shader

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-sprite/engine/gpu"
	"github.com/Carmen-Shannon/oxy-sprite/engine/light"
	"github.com/Carmen-Shannon/oxy-sprite/engine/log"
)

// Uniform names a shader may declare to receive values from a Program. Any subset is accepted.
const (
	UniformViewProjection    = "matMVP"
	UniformAmbientColor      = "ambLightCol"
	UniformDirectionalDir    = "dirLightDir"
	UniformDirectionalColor  = "dirLightCol"
	UniformPointPosition     = "pointLightPos"
	UniformPointColor        = "pointLightCol"
	UniformSpotDirAndCutOff  = "spotLightDir"
	UniformSpotPosAndInnerCO = "spotLightPos"
	UniformSpotColor         = "spotLightCol"
)

var (
	// ErrBuild is wrapped by every compile, link or validation failure. The wrapped message carries
	// the driver diagnostic.
	ErrBuild = errors.New("shader build failed")

	// ErrIO is wrapped when a shader source file cannot be read.
	ErrIO = errors.New("shader source unreadable")
)

// program is the implementation of the Program interface.
type program struct {
	dev    gpu.Device
	logger *log.Logger
	label  string
	debug  bool

	id       gpu.ProgramID
	bindings bindings

	vertexPath   string
	fragmentPath string
	sources      []string

	viewProjection [16]float32
	lights         light.LightList
	lightsUploaded bool

	refs int
}

// Program is a linked GPU program together with its resolved uniform bindings and the last
// lighting and view-projection state handed to it.
//
// A Program returned from a failed build is invalid: every method is a safe no-op on it. Programs
// are shared by reference; Retain adds a holder and the GPU program is deleted when the last holder
// calls Release.
type Program interface {
	// ID returns the device program handle, or 0 when the program is invalid or released.
	ID() gpu.ProgramID

	// Valid reports whether the program holds a linked GPU program.
	Valid() bool

	// Label returns the debug label given at build time.
	Label() string

	// Use makes this program the active one for subsequent draws. On an invalid program it logs a
	// warning and does nothing.
	Use()

	// BindTexture binds a device texture to a sampler unit.
	//
	// Parameters:
	//   - unit: sampler unit index
	//   - tex: texture handle, 0 to unbind
	BindTexture(unit uint32, tex gpu.TextureID)

	// SetLightList stores the list and uploads each part whose binding the program exposes:
	// ambient color, directional direction and color, point positions and colors, spot
	// direction/cutoff, position/inner cutoff and colors. Absent bindings are skipped. The program
	// is made active before uploading. An unchanged list is not uploaded again.
	//
	// Parameters:
	//   - ll: the lighting state
	SetLightList(ll light.LightList)

	// LightList returns the last list passed to SetLightList.
	LightList() light.LightList

	// SetViewProjectionMatrix stores the column-major matrix and uploads it to the matMVP binding
	// when present. The program is made active before uploading.
	SetViewProjectionMatrix(m [16]float32)

	// ViewProjectionMatrix returns the last matrix passed to SetViewProjectionMatrix.
	ViewProjectionMatrix() [16]float32

	// Binding returns the resolved binding for one of the contract uniform names.
	//
	// Parameters:
	//   - name: a Uniform* constant
	//
	// Returns:
	//   - Binding: the binding; absent when the program does not expose the uniform
	Binding(name string) Binding

	// Paths returns the source files the program was built from, empty when built from strings.
	Paths() (vertexPath, fragmentPath string)

	// Sources returns every file read by the last successful file build: both stage files and the
	// files they #include. Empty when built from strings.
	Sources() []string

	// Reload rebuilds the program from its source files and replaces the GPU program on success.
	// The stored matrix and light list are uploaded to the new program. On failure the previous
	// program stays in place.
	//
	// Returns:
	//   - error: ErrIO or ErrBuild wrapped, or an error when the program has no source files
	Reload() error

	// Retain adds a holder and returns the same program.
	Retain() Program

	// Release drops a holder. The GPU program is deleted when the last holder releases.
	Release()

	// RefCount returns the number of holders.
	RefCount() int
}

var _ Program = &program{}

// Build compiles and links a program from vertex and fragment source text, then resolves the
// uniform bindings once. On any failure every GPU object created along the way is deleted and an
// invalid Program is returned with the error.
//
// Parameters:
//   - dev: the device to build on
//   - vertexSource: vertex stage source
//   - fragmentSource: fragment stage source
//   - opts: ProgramBuilderOption values (logger, label, debug validation)
//
// Returns:
//   - Program: the linked program, or an invalid program on failure
//   - error: wraps ErrBuild on failure
func Build(dev gpu.Device, vertexSource, fragmentSource string, opts ...ProgramBuilderOption) (Program, error) {
	p := newProgram(dev, opts...)
	if err := p.link(vertexSource, fragmentSource); err != nil {
		p.logger.Error("shader program build failed", "label", p.label, "error", err)
		return p, err
	}
	p.logger.Debug("shader program built", "label", p.label, "program", p.id)
	return p, nil
}

// BuildFromFiles reads both stage sources, expands their #include directives and builds a program
// from them. The paths are kept so the program can be reloaded.
//
// Parameters:
//   - dev: the device to build on
//   - vertexPath: vertex stage source file
//   - fragmentPath: fragment stage source file
//   - opts: ProgramBuilderOption values
//
// Returns:
//   - Program: the linked program, or an invalid program on failure
//   - error: wraps ErrIO when a file cannot be read, ErrBuild when compilation or linking fails
func BuildFromFiles(dev gpu.Device, vertexPath, fragmentPath string, opts ...ProgramBuilderOption) (Program, error) {
	p := newProgram(dev, opts...)
	p.vertexPath, p.fragmentPath = vertexPath, fragmentPath
	if p.label == "" {
		p.label = vertexPath
	}

	vs, fs, files, err := readSources(vertexPath, fragmentPath)
	if err != nil {
		p.logger.Error("shader source read failed", "label", p.label, "error", err)
		return p, err
	}
	p.sources = files
	if err := p.link(vs, fs); err != nil {
		p.logger.Error("shader program build failed", "label", p.label, "error", err)
		return p, err
	}
	p.logger.Debug("shader program built", "label", p.label, "program", p.id, "files", len(files))
	return p, nil
}

func newProgram(dev gpu.Device, opts ...ProgramBuilderOption) *program {
	p := &program{
		dev:   dev,
		debug: log.DebugBuild,
		refs:  1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// readSources expands both stages and returns the union of the files they read.
func readSources(vertexPath, fragmentPath string) (string, string, []string, error) {
	pp := NewPreProcessor()
	vs, err := pp.Process(vertexPath)
	if err != nil {
		return "", "", nil, err
	}
	files := append([]string(nil), pp.Files()...)

	fs, err := pp.Process(fragmentPath)
	if err != nil {
		return "", "", nil, err
	}
	for _, f := range pp.Files() {
		if !slices.Contains(files, f) {
			files = append(files, f)
		}
	}
	return vs, fs, files, nil
}

// compileAndLink produces a linked program and its bindings without touching p's current state.
func (p *program) compileAndLink(vertexSource, fragmentSource string) (gpu.ProgramID, bindings, error) {
	if p.dev == nil {
		return 0, bindings{}, fmt.Errorf("%w: no device", ErrBuild)
	}

	vs, err := p.dev.CompileShader(gpu.StageVertex, vertexSource)
	if err != nil {
		return 0, bindings{}, fmt.Errorf("%w: %w", ErrBuild, err)
	}
	defer p.dev.DeleteShader(vs)

	fs, err := p.dev.CompileShader(gpu.StageFragment, fragmentSource)
	if err != nil {
		return 0, bindings{}, fmt.Errorf("%w: %w", ErrBuild, err)
	}
	defer p.dev.DeleteShader(fs)

	id, err := p.dev.LinkProgram(vs, fs)
	if err != nil {
		return 0, bindings{}, fmt.Errorf("%w: %w", ErrBuild, err)
	}

	b := resolveBindings(p.dev, id)
	if p.debug {
		if err := b.validate(); err != nil {
			p.dev.DeleteProgram(id)
			return 0, bindings{}, fmt.Errorf("%w: %w", ErrBuild, err)
		}
	}
	return id, b, nil
}

func (p *program) link(vertexSource, fragmentSource string) error {
	id, b, err := p.compileAndLink(vertexSource, fragmentSource)
	if err != nil {
		return err
	}
	p.id = id
	p.bindings = b
	return nil
}

func (p *program) ID() gpu.ProgramID {
	return p.id
}

func (p *program) Valid() bool {
	return p != nil && p.id != 0
}

func (p *program) Label() string {
	return p.label
}

func (p *program) Use() {
	if p == nil {
		return
	}
	if !p.Valid() {
		p.logger.Warn("use of invalid shader program", "label", p.label)
		return
	}
	p.dev.UseProgram(p.id)
}

func (p *program) BindTexture(unit uint32, tex gpu.TextureID) {
	if !p.Valid() {
		return
	}
	p.dev.BindTexture(unit, tex)
}

func (p *program) SetLightList(ll light.LightList) {
	if !p.Valid() {
		return
	}
	if p.lightsUploaded && ll == p.lights {
		return
	}
	p.lights = ll
	p.dev.UseProgram(p.id)
	p.uploadLights()
}

func (p *program) uploadLights() {
	ll := &p.lights
	b := &p.bindings

	if b.ambientColor.Present() {
		p.dev.Uniform3(b.ambientColor.Location(), [][3]float32{ll.Ambient.Color})
	}
	if b.directionalDir.Present() {
		p.dev.Uniform3(b.directionalDir.Location(), [][3]float32{ll.Directional.Direction})
	}
	if b.directionalColor.Present() {
		p.dev.Uniform3(b.directionalColor.Location(), [][3]float32{ll.Directional.Color})
	}
	if b.pointPosition.Present() {
		p.dev.Uniform3(b.pointPosition.Location(), b.pointPosition.clamp3(ll.Point.Position[:]))
	}
	if b.pointColor.Present() {
		p.dev.Uniform3(b.pointColor.Location(), b.pointColor.clamp3(ll.Point.Color[:]))
	}
	if b.spotDir.Present() {
		p.dev.Uniform4(b.spotDir.Location(), b.spotDir.clamp4(ll.Spot.DirAndCutOff[:]))
	}
	if b.spotPos.Present() {
		p.dev.Uniform4(b.spotPos.Location(), b.spotPos.clamp4(ll.Spot.PosAndInnerCutOff[:]))
	}
	if b.spotColor.Present() {
		p.dev.Uniform3(b.spotColor.Location(), b.spotColor.clamp3(ll.Spot.Color[:]))
	}
	p.lightsUploaded = true
}

func (p *program) LightList() light.LightList {
	return p.lights
}

func (p *program) SetViewProjectionMatrix(m [16]float32) {
	if !p.Valid() {
		return
	}
	p.viewProjection = m
	if p.bindings.viewProjection.Present() {
		p.dev.UseProgram(p.id)
		p.dev.UniformMatrix4(p.bindings.viewProjection.Location(), m)
	}
}

func (p *program) ViewProjectionMatrix() [16]float32 {
	return p.viewProjection
}

func (p *program) Binding(name string) Binding {
	if !p.Valid() {
		return Binding{}
	}
	return p.bindings.byName(name)
}

func (p *program) Paths() (string, string) {
	return p.vertexPath, p.fragmentPath
}

func (p *program) Sources() []string {
	return p.sources
}

func (p *program) Reload() error {
	if p.refs == 0 {
		return fmt.Errorf("shader program %q was released", p.label)
	}
	if p.vertexPath == "" || p.fragmentPath == "" {
		return fmt.Errorf("shader program %q was not built from files", p.label)
	}
	vs, fs, files, err := readSources(p.vertexPath, p.fragmentPath)
	if err != nil {
		return err
	}
	id, b, err := p.compileAndLink(vs, fs)
	if err != nil {
		p.logger.Warn("shader reload failed, keeping previous program", "label", p.label, "error", err)
		return err
	}

	if p.id != 0 {
		p.dev.DeleteProgram(p.id)
	}
	p.id = id
	p.bindings = b
	p.sources = files

	p.dev.UseProgram(p.id)
	if p.bindings.viewProjection.Present() {
		p.dev.UniformMatrix4(p.bindings.viewProjection.Location(), p.viewProjection)
	}
	p.uploadLights()
	p.logger.Info("shader program reloaded", "label", p.label, "program", p.id)
	return nil
}

func (p *program) Retain() Program {
	if p.refs > 0 {
		p.refs++
	}
	return p
}

func (p *program) Release() {
	if p.refs == 0 {
		return
	}
	p.refs--
	if p.refs > 0 {
		return
	}
	if p.id != 0 {
		p.dev.DeleteProgram(p.id)
		p.logger.Debug("shader program deleted", "label", p.label, "program", p.id)
	}
	p.id = 0
	p.bindings = bindings{}
}

func (p *program) RefCount() int {
	return p.refs
}
