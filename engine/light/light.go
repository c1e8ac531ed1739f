package light

import "github.com/Carmen-Shannon/oxy-sprite/common"

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeDirectional represents a light with no position, only direction.
	// Used for large distant sources like the sun or moon. Affects every sprite
	// uniformly with no distance attenuation.
	LightTypeDirectional LightType = iota

	// LightTypePoint represents a light that emits in all directions from a position.
	// Used for torches, lanterns and glowing pickups.
	LightTypePoint

	// LightTypeSpot represents a light that emits in a cone from a position along a direction.
	// Attenuates with the angle from the cone axis between the inner and outer cone angles.
	LightTypeSpot
)

func (t LightType) String() string {
	switch t {
	case LightTypeDirectional:
		return "directional"
	case LightTypePoint:
		return "point"
	case LightTypeSpot:
		return "spot"
	default:
		return "unknown"
	}
}

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	lightType LightType
	position  [3]float32
	direction [3]float32
	color     [3]float32
	intensity float32
	innerCone float32 // stored as cos(angle in radians)
	outerCone float32 // stored as cos(angle in radians)
	enabled   bool
}

// Light defines the interface for a light source in a sprite scene.
//
// All light types (directional, point, spot) share this interface; type-specific
// properties (e.g. cone angles for spot lights) are ignored when not applicable.
// Lights are packed into the fixed-size slots of a LightList before being handed to
// a shader program, see NewLightList.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type (directional, point, or spot)
	Type() LightType

	// Position returns the position of the light in screen space pixels.
	// Meaningless for directional lights.
	//
	// Returns:
	//   - [3]float32: position as (x, y, z)
	Position() [3]float32

	// Direction returns the normalized direction of the light.
	// For directional lights this is the light direction. For spot lights this
	// is the cone axis. Meaningless for point lights.
	//
	// Returns:
	//   - [3]float32: normalized direction as (x, y, z)
	Direction() [3]float32

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - [3]float32: color as (r, g, b)
	Color() [3]float32

	// Intensity returns the scalar the color is multiplied by when packed.
	Intensity() float32

	// InnerCone returns the cosine of the inner cone half-angle for spot lights.
	InnerCone() float32

	// OuterCone returns the cosine of the outer cone half-angle for spot lights.
	OuterCone() float32

	// Enabled returns whether this light is packed into light lists.
	Enabled() bool

	SetPosition(x, y, z float32)

	// SetDirection sets the direction of the light and normalizes it.
	SetDirection(x, y, z float32)

	SetColor(r, g, b float32)

	SetIntensity(intensity float32)

	// SetSpotCone sets the cone half-angles of a spot light in degrees: full strength inside
	// innerDeg, fading to zero at outerDeg. The angles are clamped to [0, 90] and swapped when
	// given in the wrong order. They are stored as cosines, the form the cutoff uniforms carry.
	//
	// Parameters:
	//   - innerDeg: full-strength half-angle
	//   - outerDeg: cutoff half-angle
	SetSpotCone(innerDeg, outerDeg float32)

	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type with sensible defaults and
// any provided options applied.
//
// Parameters:
//   - lightType: the kind of light to create (directional, point, or spot)
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType: lightType,
		direction: [3]float32{0, 0, -1},
		color:     [3]float32{1, 1, 1},
		intensity: 1.0,
		innerCone: 0.9063, // cos(25°)
		outerCone: 0.8192, // cos(35°)
		enabled:   true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() [3]float32 {
	return l.position
}

func (l *lightImpl) Direction() [3]float32 {
	return l.direction
}

func (l *lightImpl) Color() [3]float32 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) InnerCone() float32 {
	return l.innerCone
}

func (l *lightImpl) OuterCone() float32 {
	return l.outerCone
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) SetPosition(x, y, z float32) {
	l.position = [3]float32{x, y, z}
}

func (l *lightImpl) SetDirection(x, y, z float32) {
	l.direction = common.Normalize3([3]float32{x, y, z})
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.color = [3]float32{r, g, b}
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetSpotCone(innerDeg, outerDeg float32) {
	innerDeg = min(max(innerDeg, 0), 90)
	outerDeg = min(max(outerDeg, 0), 90)
	if innerDeg > outerDeg {
		innerDeg, outerDeg = outerDeg, innerDeg
	}
	l.innerCone = common.CosDeg(innerDeg)
	l.outerCone = common.CosDeg(outerDeg)
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}

// scaledColor returns color * intensity.
func scaledColor(l Light) [3]float32 {
	c, i := l.Color(), l.Intensity()
	return [3]float32{c[0] * i, c[1] * i, c[2] * i}
}
