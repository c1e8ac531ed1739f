package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-sprite/engine/log"
)

// FrameStats is the rendering work of one frame.
type FrameStats struct {
	DrawCalls int
	Sprites   int
}

// Report is one interval's worth of statistics, as logged by Tick.
type Report struct {
	FPS              float64
	DrawCallsPerFrame float64
	SpritesPerFrame  float64
	HeapMB           float64
	AllocRateMB      float64
	SysMB            float64
	GCCount          uint32
	LastPauseUs      uint64
	MaxPauseUs       uint64
}

// Profiler tracks frame rate, draw calls and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	logger         *log.Logger
	now            func() time.Time
	frameCount     int
	drawCalls      int
	sprites        int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Report
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: ProfilerBuilderOption values
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		now:            time.Now,
		updateInterval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per frame with that frame's rendering work.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, draw calls and sprites per frame, heap usage, allocation rate,
// GC count/pause times, total memory.
//
// Parameters:
//   - stats: the frame's draw calls and sprites
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(stats FrameStats) bool {
	p.frameCount++
	p.drawCalls += stats.DrawCalls
	p.sprites += stats.Sprites

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	frames := float64(p.frameCount)
	r := Report{
		FPS:               frames / elapsed.Seconds(),
		DrawCallsPerFrame: float64(p.drawCalls) / frames,
		SpritesPerFrame:   float64(p.sprites) / frames,
	}

	runtime.ReadMemStats(&p.memStats)
	// Alloc: live heap. TotalAlloc: cumulative, tracks churn. Sys: process footprint.
	r.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	r.SysMB = float64(p.memStats.Sys) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	r.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	r.GCCount = p.memStats.NumGC
	if r.GCCount > 0 {
		// PauseNs is a circular buffer of last 256 GC pauses
		r.LastPauseUs = p.memStats.PauseNs[(r.GCCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if r.GCCount-startIdx > 256 {
			startIdx = r.GCCount - 256
		}
		for i := startIdx; i < r.GCCount; i++ {
			r.MaxPauseUs = max(r.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	p.logger.Info("profiler",
		"fps", r.FPS,
		"draw_calls", r.DrawCallsPerFrame,
		"sprites", r.SpritesPerFrame,
		"heap_mb", r.HeapMB,
		"alloc_rate_mb", r.AllocRateMB,
		"gc", r.GCCount,
		"gc_last_us", r.LastPauseUs,
		"gc_max_us", r.MaxPauseUs,
		"sys_mb", r.SysMB)

	p.last = r
	p.frameCount = 0
	p.drawCalls = 0
	p.sprites = 0
	p.lastTime = currentTime
	p.lastGCCount = r.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// LastReport returns the statistics of the most recent logged interval.
func (p *Profiler) LastReport() Report {
	return p.last
}
