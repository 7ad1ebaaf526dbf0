package render_pass

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device"
)

// PassID identifies a render pass. The numeric order of PassIDs is the execution
// order of passes within a frame.
type PassID int

const (
	PassClear PassID = iota
	PassPreCompute
	PassZPrePass
	PassGBuffer
	PassShadow
	PassLighting
	PassForward
	PassPostProcess
	PassUI
	PassDisplay

	// PassCount is the number of pass identifiers, not a pass.
	PassCount
)

var passNames = [PassCount]string{
	PassClear:       "Clear",
	PassPreCompute:  "PreCompute",
	PassZPrePass:    "ZPrePass",
	PassGBuffer:     "GBuffer",
	PassShadow:      "Shadow",
	PassLighting:    "Lighting",
	PassForward:     "Forward",
	PassPostProcess: "PostProcess",
	PassUI:          "UI",
	PassDisplay:     "Display",
}

// String returns the pass name.
func (id PassID) String() string {
	if id.Valid() {
		return passNames[id]
	}
	return fmt.Sprintf("PassID(%d)", int(id))
}

// Valid reports whether id names a pass.
func (id PassID) Valid() bool {
	return id >= 0 && id < PassCount
}

// StencilValue is a stencil reference written by one pass and tested by another.
type StencilValue uint32

const (
	StencilEmpty StencilValue = iota
	StencilGBuffer
	StencilLight
)

// Command is a deferred draw command, replayed against the encoder of the pass it was enqueued for.
type Command func(enc device.RenderEncoder)

// GlobalBind binds resources shared by every command of an encoder. It runs once per
// encoder, before the encoder's commands.
type GlobalBind func(enc device.RenderEncoder)

// Context is the registration API through which passes and scenes declare a frame's work.
// Declarations are replayed later, in PassID order, against freshly created encoders.
type Context interface {
	// SetTarget declares the render target of a pass for this frame and discards
	// anything previously enqueued for it.
	//
	// Parameters:
	//   - id: the pass the target belongs to
	//   - target: the render target descriptor
	SetTarget(id PassID, target *device.TargetDescriptor)

	// Enqueue appends a command to a pass. Commands run in ascending priority, ties
	// in enqueue order. The command is dropped if the pass declared no target this frame.
	//
	// Parameters:
	//   - id: the pass the command belongs to
	//   - priority: the sort key within the pass
	//   - cmd: the command
	Enqueue(id PassID, priority int, cmd Command)

	// SetGlobalBind replaces the frame's global bind. The last call in a frame wins.
	//
	// Parameters:
	//   - fn: the global bind
	SetGlobalBind(fn GlobalBind)
}

// RenderPass is one stage of the frame. The orchestrator calls, every frame and in
// PassID order: Update on every pass, then Draw on every pass. GlobalBind runs
// during replay for every encoder of the frame.
//
// A pass holds pipeline and target state only. Per-frame data belongs in the
// commands it enqueues.
type RenderPass interface {
	// ID returns the pass identifier, which fixes its place in the frame.
	//
	// Returns:
	//   - PassID: the identifier
	ID() PassID

	// Setup (re)builds the state that depends on the device or frame targets. It runs
	// at startup and after every resize, and must release whatever a previous call built.
	Setup()

	// Update declares the pass's target for this frame.
	//
	// Parameters:
	//   - ctx: the registration context
	Update(ctx Context)

	// Draw enqueues the pass's commands for this frame. Other passes' targets are not bound yet.
	//
	// Parameters:
	//   - ctx: the registration context
	Draw(ctx Context)

	// GlobalBind binds the resources this pass shares with every encoder of the frame.
	// It must not bind a texture the encoder's target writes.
	//
	// Parameters:
	//   - enc: the encoder about to replay a pass's commands
	GlobalBind(enc device.RenderEncoder)

	// Release frees everything Setup built.
	Release()
}

// Sort returns a copy of passes ordered by PassID.
// Panics if two passes share an identifier or an identifier is out of range.
//
// Parameters:
//   - passes: the passes in any order
//
// Returns:
//   - []RenderPass: the passes in execution order
func Sort(passes []RenderPass) []RenderPass {
	out := make([]RenderPass, 0, len(passes))
	var seen [PassCount]bool
	for _, p := range passes {
		id := p.ID()
		if !id.Valid() {
			panic(fmt.Sprintf("render_pass: invalid pass identifier %d", int(id)))
		}
		if seen[id] {
			panic(fmt.Sprintf("render_pass: duplicate pass %s", id))
		}
		seen[id] = true
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID() < out[j].ID()
	})
	return out
}
