package profiler

import "time"

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(p *Profiler)

// WithInterval sets how often a report is logged. Non-positive values keep the default.
//
// Parameters:
//   - d: the report interval
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithClock replaces the time source.
//
// Parameters:
//   - clock: returns the current time
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithClock(clock func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.clock = clock
	}
}
