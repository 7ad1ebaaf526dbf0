package render_context

import (
	"cmp"
	"slices"

	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/render_pass"
)

// EncoderSource creates encoders during replay. A Commander in the recording state is one.
type EncoderSource interface {
	MakeEncoder(target *device.TargetDescriptor) device.RenderEncoder
}

// Stats counts the work performed by the last Replay.
type Stats struct {
	// Encoders is the number of encoders created and ended.
	Encoders int
	// Commands is the number of commands executed.
	Commands int
	// Skipped is the number of records dropped because no encoder could be created.
	Skipped int
}

type entry struct {
	priority int
	cmd      render_pass.Command
}

// record is the target and commands one pass declared for the frame.
type record struct {
	target  *device.TargetDescriptor
	entries []entry
}

// renderContext is the implementation of the RenderContext interface.
// Records live in a fixed array indexed by PassID, so replay order never depends
// on registration order. Entry slices keep their capacity across frames.
type renderContext struct {
	records    [render_pass.PassCount]record
	globalBind render_pass.GlobalBind
	stats      Stats
}

// RenderContext collects the frame's declared targets and commands and replays
// them in deterministic order.
type RenderContext interface {
	render_pass.Context

	// BeginFrame discards every record and the global bind of the previous frame.
	// It must be called once per frame before any registration.
	BeginFrame()

	// Replay creates one encoder per pass that declared a target and enqueued at least
	// one command, in ascending PassID order. For each encoder it runs the global bind,
	// then the pass's commands in ascending priority, then ends the encoder.
	// Passes whose encoder cannot be created are skipped.
	//
	// Parameters:
	//   - src: the encoder source, typically the recording Commander
	//
	// Returns:
	//   - Stats: the work performed
	Replay(src EncoderSource) Stats

	// Target returns the target declared for a pass this frame.
	//
	// Parameters:
	//   - id: the pass
	//
	// Returns:
	//   - *device.TargetDescriptor: the target, or nil if none was declared
	Target(id render_pass.PassID) *device.TargetDescriptor

	// Len returns the number of commands enqueued for a pass this frame.
	//
	// Parameters:
	//   - id: the pass
	//
	// Returns:
	//   - int: the command count
	Len(id render_pass.PassID) int

	// Stats returns the counters of the last Replay.
	//
	// Returns:
	//   - Stats: the counters
	Stats() Stats
}

var _ RenderContext = &renderContext{}

// NewRenderContext creates an empty RenderContext.
//
// Returns:
//   - RenderContext: the new context
func NewRenderContext() RenderContext {
	return &renderContext{}
}

func (c *renderContext) BeginFrame() {
	for i := range c.records {
		r := &c.records[i]
		r.target = nil
		clear(r.entries)
		r.entries = r.entries[:0]
	}
	c.globalBind = nil
}

func (c *renderContext) SetTarget(id render_pass.PassID, target *device.TargetDescriptor) {
	if !id.Valid() {
		return
	}
	if target != nil && target.Label == "" {
		target = target.Clone()
		target.Label = id.String()
	}
	r := &c.records[id]
	r.target = target
	clear(r.entries)
	r.entries = r.entries[:0]
}

func (c *renderContext) Enqueue(id render_pass.PassID, priority int, cmd render_pass.Command) {
	if !id.Valid() || cmd == nil {
		return
	}
	r := &c.records[id]
	if r.target == nil {
		return
	}
	r.entries = append(r.entries, entry{priority: priority, cmd: cmd})
}

func (c *renderContext) SetGlobalBind(fn render_pass.GlobalBind) {
	c.globalBind = fn
}

func (c *renderContext) Replay(src EncoderSource) Stats {
	var stats Stats
	for id := render_pass.PassID(0); id < render_pass.PassCount; id++ {
		r := &c.records[id]
		if r.target == nil || len(r.entries) == 0 {
			continue
		}

		enc := src.MakeEncoder(r.target)
		if enc == nil {
			stats.Skipped++
			continue
		}
		stats.Encoders++

		enc.PushDebugGroup("RenderPass: " + id.String())
		if c.globalBind != nil {
			c.globalBind(enc)
		}

		slices.SortStableFunc(r.entries, func(a, b entry) int {
			return cmp.Compare(a.priority, b.priority)
		})
		for _, e := range r.entries {
			e.cmd(enc)
			stats.Commands++
		}

		enc.PopDebugGroup()
		enc.End()
	}
	c.stats = stats
	return stats
}

func (c *renderContext) Target(id render_pass.PassID) *device.TargetDescriptor {
	if !id.Valid() {
		return nil
	}
	return c.records[id].target
}

func (c *renderContext) Len(id render_pass.PassID) int {
	if !id.Valid() {
		return 0
	}
	return len(c.records[id].entries)
}

func (c *renderContext) Stats() Stats {
	return c.stats
}
