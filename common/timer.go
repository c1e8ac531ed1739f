package common

// maxFrameDelta is the longest frame step handed to scenes. Longer gaps (a breakpoint, a dragged
// window) are replaced by nominalFrameDelta so the game does not jump.
const (
	maxFrameDelta     = 0.5
	nominalFrameDelta = 1.0 / 60.0
)

// FrameTimer measures the time between successive frames.
type FrameTimer struct {
	clock    func() float64
	previous float64
	delta    float64
}

// NewFrameTimer creates a FrameTimer reading seconds from clock. The first delta is measured from this call.
//
// Parameters:
//   - clock: monotonic time source in seconds
//
// Returns:
//   - *FrameTimer: the timer
func NewFrameTimer(clock func() float64) *FrameTimer {
	return &FrameTimer{clock: clock, previous: clock()}
}

// Update samples the clock and records the time elapsed since the previous sample.
func (t *FrameTimer) Update() {
	now := t.clock()
	t.delta = now - t.previous
	if t.delta < 0 || t.delta >= maxFrameDelta {
		t.delta = nominalFrameDelta
	}
	t.previous = now
}

// Delta returns the duration of the last frame in seconds; zero before the first Update.
func (t *FrameTimer) Delta() float32 {
	return float32(t.delta)
}
