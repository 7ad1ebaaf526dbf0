package frame

import (
	"time"

	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device"
)

// FrameInfoBuilderOption is a functional option for configuring a FrameInfo.
type FrameInfoBuilderOption func(*frameInfo)

// WithClock replaces the wall clock sampled by Advance.
//
// Parameters:
//   - clock: returns the current time
//
// Returns:
//   - FrameInfoBuilderOption: a function that applies the clock option
func WithClock(clock func() time.Time) FrameInfoBuilderOption {
	return func(f *frameInfo) {
		if clock != nil {
			f.clock = clock
		}
	}
}

// WithClearColor sets the clear colour carried by the frame colour attachment.
//
// Parameters:
//   - c: the clear colour
//
// Returns:
//   - FrameInfoBuilderOption: a function that applies the clear colour option
func WithClearColor(c device.Color) FrameInfoBuilderOption {
	return func(f *frameInfo) {
		f.clearColor = c
	}
}
