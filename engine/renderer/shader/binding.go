package shader

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-sprite/engine/gpu"
	"github.com/Carmen-Shannon/oxy-sprite/engine/light"
)

// Binding is an optional uniform binding resolved once at link time. The zero value is absent.
type Binding struct {
	location int32
	count    int
	present  bool
}

// Present reports whether the program exposes the uniform.
func (b Binding) Present() bool {
	return b.present
}

// Location returns the device location. Only meaningful when Present is true.
func (b Binding) Location() int32 {
	return b.location
}

// Count returns the declared array length, 1 for non-array uniforms and 0 when absent.
func (b Binding) Count() int {
	return b.count
}

func (b Binding) String() string {
	if !b.present {
		return "absent"
	}
	return fmt.Sprintf("location %d [%d]", b.location, b.count)
}

func (b Binding) clamp3(v [][3]float32) [][3]float32 {
	if b.count > 0 && b.count < len(v) {
		return v[:b.count]
	}
	return v
}

func (b Binding) clamp4(v [][4]float32) [][4]float32 {
	if b.count > 0 && b.count < len(v) {
		return v[:b.count]
	}
	return v
}

// bindings holds every contract uniform of a program.
type bindings struct {
	viewProjection   Binding
	ambientColor     Binding
	directionalDir   Binding
	directionalColor Binding
	pointPosition    Binding
	pointColor       Binding
	spotDir          Binding
	spotPos          Binding
	spotColor        Binding
}

// expectedCounts is the array length each contract uniform must declare.
var expectedCounts = map[string]int{
	UniformViewProjection:    1,
	UniformAmbientColor:      1,
	UniformDirectionalDir:    1,
	UniformDirectionalColor:  1,
	UniformPointPosition:     light.MaxPointLights,
	UniformPointColor:        light.MaxPointLights,
	UniformSpotDirAndCutOff:  light.MaxSpotLights,
	UniformSpotPosAndInnerCO: light.MaxSpotLights,
	UniformSpotColor:         light.MaxSpotLights,
}

func resolveBindings(dev gpu.Device, id gpu.ProgramID) bindings {
	lookup := func(name string) Binding {
		info, ok := dev.Uniform(id, name)
		if !ok {
			return Binding{}
		}
		return Binding{location: info.Location, count: info.Count, present: true}
	}
	return bindings{
		viewProjection:   lookup(UniformViewProjection),
		ambientColor:     lookup(UniformAmbientColor),
		directionalDir:   lookup(UniformDirectionalDir),
		directionalColor: lookup(UniformDirectionalColor),
		pointPosition:    lookup(UniformPointPosition),
		pointColor:       lookup(UniformPointColor),
		spotDir:          lookup(UniformSpotDirAndCutOff),
		spotPos:          lookup(UniformSpotPosAndInnerCO),
		spotColor:        lookup(UniformSpotColor),
	}
}

func (b *bindings) byName(name string) Binding {
	switch name {
	case UniformViewProjection:
		return b.viewProjection
	case UniformAmbientColor:
		return b.ambientColor
	case UniformDirectionalDir:
		return b.directionalDir
	case UniformDirectionalColor:
		return b.directionalColor
	case UniformPointPosition:
		return b.pointPosition
	case UniformPointColor:
		return b.pointColor
	case UniformSpotDirAndCutOff:
		return b.spotDir
	case UniformSpotPosAndInnerCO:
		return b.spotPos
	case UniformSpotColor:
		return b.spotColor
	default:
		return Binding{}
	}
}

// validate checks that every present binding declares the contract array length.
func (b *bindings) validate() error {
	var errs []error
	for name, want := range expectedCounts {
		got := b.byName(name)
		if got.Present() && got.Count() != want {
			errs = append(errs, fmt.Errorf("uniform %s declares %d elements, want %d", name, got.Count(), want))
		}
	}
	return errors.Join(errs...)
}
