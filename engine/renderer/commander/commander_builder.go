package commander

import "github.com/Carmen-Shannon/oxy-deferred/common"

// CommanderBuilderOption is a functional option applied to a commander during construction via NewCommander.
type CommanderBuilderOption func(*commander)

// WithFramesInFlight overrides the size of the in-flight budget. Values below 1 are
// ignored. The budget never exceeds common.FramesInFlight, the slot count of the
// per-frame rings.
//
// Parameters:
//   - n: the maximum number of frames submitted but not yet completed by the GPU
//
// Returns:
//   - CommanderBuilderOption: a function that applies the budget option to a commander
func WithFramesInFlight(n int) CommanderBuilderOption {
	return func(c *commander) {
		if n > 0 {
			c.framesInFlight = int64(min(n, common.FramesInFlight))
		}
	}
}
