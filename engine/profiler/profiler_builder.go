package profiler

import (
	"time"

	"github.com/Carmen-Shannon/oxy-sprite/engine/log"
)

// ProfilerBuilderOption is a functional option applied to a Profiler during construction via NewProfiler.
type ProfilerBuilderOption func(*Profiler)

// WithLogger sets the logger statistics are written to.
func WithLogger(logger *log.Logger) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.logger = logger
	}
}

// WithInterval sets how often statistics are logged. Values <= 0 keep the 1 second default.
//
// Parameters:
//   - interval: the reporting interval
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.now = now
	}
}
