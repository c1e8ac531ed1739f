package light

const (
	// MaxPointLights is the length of the point light uniform arrays.
	MaxPointLights = 8

	// MaxSpotLights is the length of the spot light uniform arrays.
	MaxSpotLights = 4
)

// AmbientLight is the constant light added to every fragment.
type AmbientLight struct {
	Color [3]float32
}

// DirectionalLight is a single infinitely distant light.
type DirectionalLight struct {
	Direction [3]float32
	Color     [3]float32
}

// PointLights holds the fixed point light slots. A black color disables a slot.
type PointLights struct {
	Position [MaxPointLights][3]float32
	Color    [MaxPointLights][3]float32
}

// SpotLights holds the fixed spot light slots. DirAndCutOff carries the cone axis in xyz and the
// cosine of the outer half-angle in w; PosAndInnerCutOff carries the position in xyz and the cosine
// of the inner half-angle in w. A black color disables a slot.
type SpotLights struct {
	DirAndCutOff      [MaxSpotLights][4]float32
	PosAndInnerCutOff [MaxSpotLights][4]float32
	Color             [MaxSpotLights][3]float32
}

// LightList is the complete lighting state uploaded to a shader program. It is a plain comparable
// value; the zero value is a fully dark scene.
type LightList struct {
	Ambient     AmbientLight
	Directional DirectionalLight
	Point       PointLights
	Spot        SpotLights
}

// NewLightList packs lights into the fixed slots of a LightList. Disabled and nil lights are
// skipped. The first enabled directional light fills the directional slot; point and spot lights
// fill their slots in argument order and unused slots stay zero. Colors are pre-multiplied by the
// light's intensity.
//
// Parameters:
//   - ambient: the ambient color
//   - lights: lights to pack
//
// Returns:
//   - LightList: the packed list
//   - int: number of enabled lights that did not fit in a slot
func NewLightList(ambient [3]float32, lights ...Light) (LightList, int) {
	ll := LightList{Ambient: AmbientLight{Color: ambient}}

	var points, spots, dropped int
	hasDirectional := false
	for _, l := range lights {
		if l == nil || !l.Enabled() {
			continue
		}
		switch l.Type() {
		case LightTypeDirectional:
			if hasDirectional {
				dropped++
				continue
			}
			ll.Directional = DirectionalLight{Direction: l.Direction(), Color: scaledColor(l)}
			hasDirectional = true
		case LightTypePoint:
			if points == MaxPointLights {
				dropped++
				continue
			}
			ll.Point.Position[points] = l.Position()
			ll.Point.Color[points] = scaledColor(l)
			points++
		case LightTypeSpot:
			if spots == MaxSpotLights {
				dropped++
				continue
			}
			d, p := l.Direction(), l.Position()
			ll.Spot.DirAndCutOff[spots] = [4]float32{d[0], d[1], d[2], l.OuterCone()}
			ll.Spot.PosAndInnerCutOff[spots] = [4]float32{p[0], p[1], p[2], l.InnerCone()}
			ll.Spot.Color[spots] = scaledColor(l)
			spots++
		}
	}
	return ll, dropped
}

// ActivePointLights returns the number of point slots with a non-black color.
func (ll LightList) ActivePointLights() int {
	n := 0
	for _, c := range ll.Point.Color {
		if c != [3]float32{} {
			n++
		}
	}
	return n
}

// ActiveSpotLights returns the number of spot slots with a non-black color.
func (ll LightList) ActiveSpotLights() int {
	n := 0
	for _, c := range ll.Spot.Color {
		if c != [3]float32{} {
			n++
		}
	}
	return n
}
