package profiler

import (
	"log"
	"runtime"
	"time"
)

// Stats is one profiling window: frame rate and frame time plus Go memory statistics.
type Stats struct {
	FPS         float64
	FrameTimeMS float64
	HeapMB      float64
	AllocRateMB float64
	NumGC       uint32
	LastPauseUS uint64
	MaxPauseUS  uint64
	SysMB       float64
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats

	now     func() time.Time
	logging bool
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second.
//
// Parameters:
//   - options: variadic list of ProfilerOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
		logging:        true,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, frame time, heap usage, allocation rate, GC count/pause times, total memory.
//
// Returns:
//   - bool: true if a new window of stats was completed this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	// Alloc: Bytes of allocated heap objects (live memory)
	// TotalAlloc: Cumulative bytes allocated for heap objects (increases forever, tracks churn)
	// Sys: Total bytes of memory obtained from the OS (actual process footprint)
	s := Stats{
		FPS:         float64(p.frameCount) / elapsed.Seconds(),
		FrameTimeMS: elapsed.Seconds() * 1000 / float64(p.frameCount),
		HeapMB:      float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		NumGC:       p.memStats.NumGC,
		SysMB:       float64(p.memStats.Sys) / 1024 / 1024,
	}

	// Calculate GC pause stats (last pause and max recent pause)
	gcCount := p.memStats.NumGC
	if gcCount > 0 {
		// PauseNs is a circular buffer of last 256 GC pauses
		s.LastPauseUS = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		// Find max pause since last tick
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			s.MaxPauseUS = max(s.MaxPauseUS, p.memStats.PauseNs[i%256]/1000)
		}
	}

	if p.logging {
		log.Printf("[Profiler] FPS: %.2f (%.2f ms) | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
			s.FPS, s.FrameTimeMS, s.HeapMB, s.AllocRateMB, s.NumGC, s.LastPauseUS, s.MaxPauseUS, s.SysMB)
	}

	p.last = s
	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the stats of the most recently completed window, or zero Stats before the first.
func (p *Profiler) Last() Stats {
	return p.last
}

// ProfilerOption is a functional option applied to a profiler during construction via NewProfiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often stats are computed and logged.
//
// Parameters:
//   - interval: the window length, ignored when not positive
//
// Returns:
//   - ProfilerOption: a function that applies the interval to a profiler
func WithInterval(interval time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLogging enables or disables the log line written per window. Enabled by default.
func WithLogging(enabled bool) ProfilerOption {
	return func(p *Profiler) {
		p.logging = enabled
	}
}
