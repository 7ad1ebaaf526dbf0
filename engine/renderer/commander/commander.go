package commander

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device"
	"golang.org/x/sync/semaphore"
)

// State is the lifecycle state of the command buffer owned by a Commander.
type State int

const (
	// StateIdle means no command buffer has been started yet.
	StateIdle State = iota

	// StateRecording means a command buffer is open and accepts encoders.
	StateRecording

	// StateSubmitted means the last command buffer was committed. It behaves like
	// StateIdle for the next Begin.
	StateSubmitted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRecording:
		return "Recording"
	case StateSubmitted:
		return "Submitted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// commander is the implementation of the Commander interface.
type commander struct {
	mu *sync.Mutex

	dev            device.Device
	framesInFlight int64
	budget         *semaphore.Weighted

	state   State
	buffer  device.CommandBuffer
	release func()

	inFlight atomic.Int64
	waitTime time.Duration
	frames   uint64
}

// Commander owns the frame's command buffer and bounds how many submitted frames
// may be executing on the GPU at once.
//
// A Commander is driven by a single goroutine. Completion handlers registered on
// the command buffers run on a device goroutine and only touch the in-flight budget.
type Commander interface {
	// Begin waits for an in-flight slot, then opens a new command buffer.
	// Begin blocks indefinitely while all slots are held by frames still executing on the GPU.
	//
	// Begin panics when called while a command buffer is already recording, or when the
	// device cannot create a command buffer.
	Begin()

	// MakeEncoder creates a render encoder for target in the open command buffer.
	// Panics unless recording.
	//
	// Parameters:
	//   - target: the render target of the encoder
	//
	// Returns:
	//   - device.RenderEncoder: the encoder, or nil if the target is invalid or refused by the device
	MakeEncoder(target *device.TargetDescriptor) device.RenderEncoder

	// Present schedules the surface's current drawable for presentation after the
	// open command buffer is submitted. Panics unless recording.
	//
	// Parameters:
	//   - surface: the presentation surface, may be nil
	//
	// Returns:
	//   - bool: false if the surface had no drawable and nothing was scheduled
	Present(surface device.Surface) bool

	// End submits the open command buffer. Panics unless recording.
	// If the device rejects the submission the frame is dropped and its slot returned.
	End()

	// State returns the current lifecycle state.
	//
	// Returns:
	//   - State: the state
	State() State

	// InFlight returns the number of slots currently held, including the recording frame.
	//
	// Returns:
	//   - int: the held slot count
	InFlight() int

	// FramesInFlight returns the size of the in-flight budget.
	//
	// Returns:
	//   - int: the maximum number of outstanding frames
	FramesInFlight() int

	// WaitTime returns the cumulative time Begin spent blocked on the budget.
	//
	// Returns:
	//   - time.Duration: the total wait
	WaitTime() time.Duration

	// Frames returns the number of command buffers begun so far.
	//
	// Returns:
	//   - uint64: the frame count
	Frames() uint64
}

var _ Commander = &commander{}

// NewCommander creates a Commander over dev with an in-flight budget of
// common.FramesInFlight unless overridden.
//
// Parameters:
//   - dev: the device that creates command buffers
//   - options: functional options for commander configuration
//
// Returns:
//   - Commander: the new commander, in StateIdle
func NewCommander(dev device.Device, options ...CommanderBuilderOption) Commander {
	c := &commander{
		mu:             &sync.Mutex{},
		dev:            dev,
		framesInFlight: common.FramesInFlight,
		state:          StateIdle,
	}
	for _, opt := range options {
		opt(c)
	}
	c.budget = semaphore.NewWeighted(c.framesInFlight)
	return c
}

func (c *commander) Begin() {
	c.mu.Lock()
	if c.state == StateRecording {
		c.mu.Unlock()
		panic("commander: Begin called while recording")
	}
	c.mu.Unlock()

	start := time.Now()
	if err := c.budget.Acquire(context.Background(), 1); err != nil {
		panic(fmt.Sprintf("commander: acquire in-flight slot: %v", err))
	}
	waited := time.Since(start)

	cb, err := c.dev.CreateCommandBuffer()
	if err != nil {
		c.budget.Release(1)
		panic(fmt.Sprintf("commander: create command buffer: %v", err))
	}

	c.inFlight.Add(1)
	var once sync.Once
	release := func() {
		once.Do(func() {
			c.inFlight.Add(-1)
			c.budget.Release(1)
		})
	}
	cb.AddCompletedHandler(release)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.buffer = cb
	c.release = release
	c.state = StateRecording
	c.waitTime += waited
	c.frames++
}

func (c *commander) MakeEncoder(target *device.TargetDescriptor) device.RenderEncoder {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mustRecord("MakeEncoder")

	if !target.Valid() {
		return nil
	}
	enc, err := c.buffer.CreateEncoder(target)
	if err != nil {
		log.Printf("[Commander] encoder for %q refused: %v", target.Label, err)
		return nil
	}
	return enc
}

func (c *commander) Present(surface device.Surface) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mustRecord("Present")

	if surface == nil {
		return false
	}
	d, ok := surface.CurrentDrawable()
	if !ok || d == nil {
		return false
	}
	c.buffer.Present(d)
	return true
}

func (c *commander) End() {
	cb, release := c.takeBuffer()
	if err := cb.Commit(); err != nil {
		log.Printf("[Commander] frame dropped, submission failed: %v", err)
		release()
	}
}

func (c *commander) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *commander) InFlight() int {
	return int(c.inFlight.Load())
}

func (c *commander) FramesInFlight() int {
	return int(c.framesInFlight)
}

func (c *commander) WaitTime() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.waitTime
}

func (c *commander) Frames() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

// takeBuffer hands the open command buffer and its slot release over to End and
// moves to StateSubmitted.
func (c *commander) takeBuffer() (device.CommandBuffer, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mustRecord("End")

	cb, release := c.buffer, c.release
	c.buffer, c.release = nil, nil
	c.state = StateSubmitted
	return cb, release
}

// mustRecord panics unless a command buffer is open. Caller must hold the mutex.
func (c *commander) mustRecord(op string) {
	if c.state != StateRecording {
		panic(fmt.Sprintf("commander: %s called in state %s", op, c.state))
	}
}
