package light

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLightDefaults(t *testing.T) {
	l := NewLight(LightTypePoint)

	assert.Equal(t, LightTypePoint, l.Type())
	assert.Equal(t, [3]float32{1, 1, 1}, l.Color())
	assert.Equal(t, float32(1), l.Intensity())
	assert.True(t, l.Enabled())
}

func TestLightOptions(t *testing.T) {
	l := NewLight(LightTypeSpot,
		WithPosition(10, 20, 5),
		WithDirection(0, 0, -2),
		WithColor(1, 0.5, 0),
		WithSpotCone(0, 90),
	)

	assert.Equal(t, [3]float32{10, 20, 5}, l.Position())
	assert.Equal(t, [3]float32{0, 0, -1}, l.Direction())
	assert.InDelta(t, 1, l.InnerCone(), 1e-6)
	assert.InDelta(t, 0, l.OuterCone(), 1e-6)

	l.SetDirection(3, 0, 0)
	assert.Equal(t, [3]float32{1, 0, 0}, l.Direction())
}

func TestSetSpotConeOrdersAndClamps(t *testing.T) {
	l := NewLight(LightTypeSpot, WithSpotCone(120, -10))

	assert.InDelta(t, 1, l.InnerCone(), 1e-6, "negative angle clamps to 0 and becomes the inner cone")
	assert.InDelta(t, 0, l.OuterCone(), 1e-6, "angles past 90 clamp to 90")
	assert.Greater(t, l.InnerCone(), l.OuterCone())
}

func TestNewLightListPacksSlots(t *testing.T) {
	lights := []Light{
		NewLight(LightTypeDirectional, WithDirection(0, -1, 0), WithColor(0.2, 0.2, 0.2)),
		NewLight(LightTypePoint, WithPosition(1, 2, 3), WithColor(1, 0, 0), WithIntensity(2)),
		NewLight(LightTypePoint, WithEnabled(false)),
		nil,
		NewLight(LightTypeSpot, WithPosition(4, 5, 6), WithDirection(0, 0, -1), WithSpotCone(0, 90)),
	}

	ll, dropped := NewLightList([3]float32{0.1, 0.1, 0.1}, lights...)

	assert.Equal(t, 0, dropped)
	assert.Equal(t, [3]float32{0.1, 0.1, 0.1}, ll.Ambient.Color)
	assert.Equal(t, [3]float32{0, -1, 0}, ll.Directional.Direction)
	assert.Equal(t, [3]float32{1, 2, 3}, ll.Point.Position[0])
	assert.Equal(t, [3]float32{2, 0, 0}, ll.Point.Color[0])
	assert.Equal(t, [3]float32{}, ll.Point.Color[1])
	assert.Equal(t, 1, ll.ActivePointLights())

	assert.Equal(t, 1, ll.ActiveSpotLights())
	assert.Equal(t, float32(-1), ll.Spot.DirAndCutOff[0][2])
	assert.InDelta(t, 0, ll.Spot.DirAndCutOff[0][3], 1e-6)
	assert.Equal(t, [3]float32{4, 5, 6}, [3]float32(ll.Spot.PosAndInnerCutOff[0][:3]))
	assert.InDelta(t, 1, ll.Spot.PosAndInnerCutOff[0][3], 1e-6)
}

func TestNewLightListOverflow(t *testing.T) {
	var lights []Light
	for i := 0; i < MaxPointLights+3; i++ {
		lights = append(lights, NewLight(LightTypePoint, WithPosition(float32(i), 0, 0)))
	}
	for i := 0; i < MaxSpotLights+1; i++ {
		lights = append(lights, NewLight(LightTypeSpot))
	}
	lights = append(lights, NewLight(LightTypeDirectional), NewLight(LightTypeDirectional))

	ll, dropped := NewLightList([3]float32{}, lights...)

	assert.Equal(t, 3+1+1, dropped)
	assert.Equal(t, MaxPointLights, ll.ActivePointLights())
	assert.Equal(t, MaxSpotLights, ll.ActiveSpotLights())
	assert.Equal(t, float32(MaxPointLights-1), ll.Point.Position[MaxPointLights-1][0])
}

func TestLightListIsComparable(t *testing.T) {
	a, _ := NewLightList([3]float32{1, 1, 1})
	b, _ := NewLightList([3]float32{1, 1, 1})
	assert.True(t, a == b)

	b.Point.Color[3] = [3]float32{1, 0, 0}
	assert.False(t, a == b)
}
