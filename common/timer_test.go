package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	now float64
}

func (c *fakeClock) read() float64 {
	return c.now
}

func TestFrameTimerDelta(t *testing.T) {
	clock := &fakeClock{now: 10}
	timer := NewFrameTimer(clock.read)
	assert.Zero(t, timer.Delta())

	clock.now = 10.016
	timer.Update()
	assert.InDelta(t, 0.016, timer.Delta(), 1e-6)

	clock.now = 10.05
	timer.Update()
	assert.InDelta(t, 0.034, timer.Delta(), 1e-6)
}

func TestFrameTimerClampsLongFrames(t *testing.T) {
	clock := &fakeClock{}
	timer := NewFrameTimer(clock.read)

	clock.now = 3
	timer.Update()
	assert.InDelta(t, nominalFrameDelta, timer.Delta(), 1e-6)

	clock.now = 3.1
	timer.Update()
	assert.InDelta(t, 0.1, timer.Delta(), 1e-6, "timer resumes from the clamped sample")

	clock.now = 2
	timer.Update()
	assert.InDelta(t, nominalFrameDelta, timer.Delta(), 1e-6)
}
