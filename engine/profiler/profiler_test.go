package profiler

import (
	"bytes"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-sprite/engine/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickReportsPerInterval(t *testing.T) {
	var out bytes.Buffer
	now := time.Unix(100, 0)
	p := NewProfiler(
		WithLogger(log.New(log.WithWriter(&out), log.WithLevel("info"))),
		WithClock(func() time.Time { return now }),
	)

	for i := 0; i < 3; i++ {
		now = now.Add(250 * time.Millisecond)
		assert.False(t, p.Tick(FrameStats{DrawCalls: 2, Sprites: 10}))
	}
	now = now.Add(250 * time.Millisecond)
	require.True(t, p.Tick(FrameStats{DrawCalls: 6, Sprites: 30}))

	r := p.LastReport()
	assert.InDelta(t, 4.0, r.FPS, 1e-9)
	assert.InDelta(t, 3.0, r.DrawCallsPerFrame, 1e-9)
	assert.InDelta(t, 15.0, r.SpritesPerFrame, 1e-9)
	assert.Contains(t, out.String(), `"draw_calls":3`)

	now = now.Add(500 * time.Millisecond)
	assert.False(t, p.Tick(FrameStats{}), "counters restart after a report")
	now = now.Add(500 * time.Millisecond)
	require.True(t, p.Tick(FrameStats{DrawCalls: 1}))
	assert.InDelta(t, 0.5, p.LastReport().DrawCallsPerFrame, 1e-9)
}

func TestWithIntervalIgnoresNonPositive(t *testing.T) {
	p := NewProfiler(WithInterval(0))
	assert.Equal(t, time.Second, p.updateInterval)

	p = NewProfiler(WithInterval(10 * time.Millisecond))
	assert.Equal(t, 10*time.Millisecond, p.updateInterval)
}

func TestNilLoggerDoesNotPanic(t *testing.T) {
	now := time.Unix(0, 0)
	p := NewProfiler(WithClock(func() time.Time { return now }))
	now = now.Add(2 * time.Second)
	assert.True(t, p.Tick(FrameStats{DrawCalls: 1, Sprites: 1}))
}
