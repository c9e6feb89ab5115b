package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// Stats is one profiling sample, covering the frames counted since the previous sample.
type Stats struct {
	FPS          float64
	FrameTime    time.Duration
	HeapMB       float64
	AllocRateMB  float64
	SysMB        float64
	GCCount      uint32
	LastGCPause  time.Duration
	MaxGCPause   time.Duration
	SampleLength time.Duration
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Logs a sample through common.Logger at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats

	now func() time.Time
}

// ProfilerBuilderOption is a functional option applied to a profiler during construction via
// NewProfiler.
type ProfilerBuilderOption func(*Profiler)

// WithUpdateInterval sets how often a sample is taken. Values <= 0 are ignored.
//
// Parameters:
//   - interval: the time between samples
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithUpdateInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: builder options such as WithUpdateInterval
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per frame to track frame timing.
// Logs a sample when the update interval has elapsed.
// Samples include FPS, heap usage, allocation rate, GC count and pause times, and total memory.
//
// Returns:
//   - bool: true if a sample was taken this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	// Alloc: live heap bytes. TotalAlloc: cumulative heap bytes. Sys: bytes obtained from the OS.
	s := Stats{
		FPS:          float64(p.frameCount) / elapsed.Seconds(),
		FrameTime:    elapsed / time.Duration(p.frameCount),
		HeapMB:       float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:        float64(p.memStats.Sys) / 1024 / 1024,
		AllocRateMB:  float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:      p.memStats.NumGC,
		SampleLength: elapsed,
	}

	if gcCount := p.memStats.NumGC; gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		s.LastGCPause = time.Duration(p.memStats.PauseNs[(gcCount-1)%256])

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			s.MaxGCPause = max(s.MaxGCPause, time.Duration(p.memStats.PauseNs[i%256]))
		}
	}

	common.Logger().Info("frame stats",
		"fps", s.FPS,
		"frameTime", s.FrameTime,
		"heapMB", s.HeapMB,
		"allocRateMB", s.AllocRateMB,
		"gc", s.GCCount,
		"lastPause", s.LastGCPause,
		"maxPause", s.MaxGCPause,
		"sysMB", s.SysMB,
	)

	p.last = s
	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the most recent sample, or the zero Stats before the first one.
func (p *Profiler) Last() Stats {
	return p.last
}
