package profiler

import (
	"log"
	"runtime"
	"time"
)

// Sample is one frame's view of the renderer.
type Sample struct {
	// Encoders, Commands and Skipped are the replay counts of the frame.
	Encoders int
	Commands int
	Skipped  int

	// InFlight is the number of command buffers the GPU has not finished.
	InFlight int

	// Waited is the cumulative time spent blocked on the in-flight budget.
	Waited time.Duration
}

// Report is the summary of one profiling interval.
type Report struct {
	FPS float64

	// Per-frame averages over the interval.
	Encoders float64
	Commands float64
	InFlight float64

	// Skipped is the number of records dropped over the interval.
	Skipped int

	// Blocked is the share of the interval spent waiting for a frame slot, in [0, 1].
	Blocked float64

	HeapMB float64
}

// Profiler accumulates frame samples and logs a report at a fixed interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	clock          func() time.Time
	memStats       runtime.MemStats

	encoders   int
	commands   int
	skipped    int
	inFlight   int
	lastWaited time.Duration

	last Report
}

// NewProfiler creates a new Profiler that reports once per second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		clock:          time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.clock()
	return p
}

// Tick records one frame. When the update interval has elapsed it logs a report
// and starts a new interval.
//
// Parameters:
//   - s: the frame's sample
//
// Returns:
//   - bool: true if a report was logged this tick
func (p *Profiler) Tick(s Sample) bool {
	p.frameCount++
	p.encoders += s.Encoders
	p.commands += s.Commands
	p.skipped += s.Skipped
	p.inFlight += s.InFlight

	now := p.clock()
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	frames := float64(p.frameCount)
	waited := s.Waited - p.lastWaited
	runtime.ReadMemStats(&p.memStats)

	p.last = Report{
		FPS:      frames / elapsed.Seconds(),
		Encoders: float64(p.encoders) / frames,
		Commands: float64(p.commands) / frames,
		InFlight: float64(p.inFlight) / frames,
		Skipped:  p.skipped,
		Blocked:  min(waited.Seconds()/elapsed.Seconds(), 1),
		HeapMB:   float64(p.memStats.Alloc) / 1024 / 1024,
	}
	log.Printf("[Profiler] FPS: %.2f | Encoders: %.1f | Commands: %.1f | In flight: %.2f | Blocked: %.1f%% | Skipped: %d | Heap: %.2f MB",
		p.last.FPS, p.last.Encoders, p.last.Commands, p.last.InFlight, p.last.Blocked*100, p.last.Skipped, p.last.HeapMB)

	p.frameCount = 0
	p.encoders, p.commands, p.skipped, p.inFlight = 0, 0, 0, 0
	p.lastTime = now
	p.lastWaited = s.Waited
	return true
}

// Last returns the most recent report.
//
// Returns:
//   - Report: the last logged report, or the zero Report before the first one
func (p *Profiler) Last() Report {
	return p.last
}
