package light

// LightBuilderOption configures a Light in NewLight. Each option applies the matching setter.
type LightBuilderOption func(*lightImpl)

// WithPosition places the light in sprite coordinates; z is its height above the sprite plane.
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.SetPosition(x, y, z)
	}
}

// WithDirection aims a directional or spot light. The vector is normalized.
//
// Parameters:
//   - x, y, z: direction components; negative z points into the sprite plane
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithDirection(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.SetDirection(x, y, z)
	}
}

// WithColor sets the linear RGB color before intensity scaling.
func WithColor(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.SetColor(r, g, b)
	}
}

// WithIntensity sets the multiplier applied to the color when the light is packed.
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.SetIntensity(intensity)
	}
}

// WithSpotCone sets the full-strength and cutoff half-angles of a spot light, in degrees.
// See Light.SetSpotCone.
func WithSpotCone(innerDeg, outerDeg float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.SetSpotCone(innerDeg, outerDeg)
	}
}

// WithEnabled creates the light switched off when false; disabled lights are skipped by NewLightList.
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.SetEnabled(enabled)
	}
}
