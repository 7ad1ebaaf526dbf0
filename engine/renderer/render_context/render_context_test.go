package render_context

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device/devicetest"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/render_pass"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sourceFunc func(*device.TargetDescriptor) device.RenderEncoder

func (f sourceFunc) MakeEncoder(t *device.TargetDescriptor) device.RenderEncoder { return f(t) }

func newSource(t *testing.T) (*devicetest.Device, EncoderSource) {
	t.Helper()
	dev := devicetest.New()
	cb, err := dev.CreateCommandBuffer()
	require.NoError(t, err)
	return dev, sourceFunc(func(target *device.TargetDescriptor) device.RenderEncoder {
		if !target.Valid() {
			return nil
		}
		enc, err := cb.CreateEncoder(target)
		if err != nil {
			return nil
		}
		return enc
	})
}

func colorTarget(label string) *device.TargetDescriptor {
	return &device.TargetDescriptor{
		Label:  label,
		Colors: []device.ColorAttachment{{Texture: devicetest.NewTexture(label, 4, 4, device.FormatRGBA16Float)}},
	}
}

func TestReplayWithoutRegistrationsCreatesNoEncoders(t *testing.T) {
	dev, src := newSource(t)
	ctx := NewRenderContext()

	ctx.BeginFrame()
	stats := ctx.Replay(src)

	assert.Equal(t, Stats{}, stats)
	assert.Empty(t, dev.Encoders())
}

func TestTargetWithoutEntriesIsSkipped(t *testing.T) {
	dev, src := newSource(t)
	ctx := NewRenderContext()

	ctx.BeginFrame()
	ctx.SetTarget(render_pass.PassPostProcess, colorTarget("post"))
	ctx.Replay(src)

	assert.Empty(t, dev.Encoders())
}

func TestEntriesReplayInPriorityOrder(t *testing.T) {
	_, src := newSource(t)
	ctx := NewRenderContext()
	var order []string

	ctx.BeginFrame()
	ctx.SetTarget(render_pass.PassGBuffer, colorTarget("gbuffer"))
	ctx.Enqueue(render_pass.PassGBuffer, 5, func(device.RenderEncoder) { order = append(order, "A") })
	ctx.Enqueue(render_pass.PassGBuffer, 1, func(device.RenderEncoder) { order = append(order, "B") })
	ctx.Replay(src)

	assert.Equal(t, []string{"B", "A"}, order)
}

func TestEqualPrioritiesKeepRegistrationOrder(t *testing.T) {
	_, src := newSource(t)
	ctx := NewRenderContext()
	var order []int

	ctx.BeginFrame()
	ctx.SetTarget(render_pass.PassUI, colorTarget("ui"))
	for i := 0; i < 20; i++ {
		prio := 1
		if i%3 == 0 {
			prio = 0
		}
		ctx.Enqueue(render_pass.PassUI, prio, func(device.RenderEncoder) { order = append(order, i) })
	}
	ctx.Replay(src)

	assert.Equal(t, []int{0, 3, 6, 9, 12, 15, 18, 1, 2, 4, 5, 7, 8, 10, 11, 13, 14, 16, 17, 19}, order)
}

func TestPassesReplayInIdentifierOrder(t *testing.T) {
	dev, src := newSource(t)
	ctx := NewRenderContext()
	noop := func(device.RenderEncoder) {}

	ctx.BeginFrame()
	ctx.SetTarget(render_pass.PassUI, colorTarget("ui"))
	ctx.SetTarget(render_pass.PassGBuffer, colorTarget("gbuffer"))
	ctx.Enqueue(render_pass.PassUI, 0, noop)
	ctx.Enqueue(render_pass.PassGBuffer, 0, noop)
	ctx.Replay(src)

	encoders := dev.Encoders()
	require.Len(t, encoders, 2)
	assert.Equal(t, "gbuffer", encoders[0].Target().Label)
	assert.Equal(t, "ui", encoders[1].Target().Label)
}

func TestEnqueueWithoutTargetIsDropped(t *testing.T) {
	dev, src := newSource(t)
	ctx := NewRenderContext()
	ran := false

	ctx.BeginFrame()
	ctx.Enqueue(render_pass.PassLighting, 0, func(device.RenderEncoder) { ran = true })
	assert.Equal(t, 0, ctx.Len(render_pass.PassLighting))
	ctx.Replay(src)

	assert.False(t, ran)
	assert.Empty(t, dev.Encoders())
}

func TestSetTargetResetsEntries(t *testing.T) {
	_, src := newSource(t)
	ctx := NewRenderContext()
	var order []string

	ctx.BeginFrame()
	ctx.SetTarget(render_pass.PassGBuffer, colorTarget("first"))
	ctx.Enqueue(render_pass.PassGBuffer, 0, func(device.RenderEncoder) { order = append(order, "stale") })
	second := colorTarget("second")
	ctx.SetTarget(render_pass.PassGBuffer, second)
	ctx.Enqueue(render_pass.PassGBuffer, 0, func(device.RenderEncoder) { order = append(order, "fresh") })
	ctx.Replay(src)

	assert.Equal(t, []string{"fresh"}, order)
	assert.Same(t, second, ctx.Target(render_pass.PassGBuffer))
}

func TestGlobalBindRunsBeforeEachEncodersCommands(t *testing.T) {
	_, src := newSource(t)
	ctx := NewRenderContext()
	var events []string

	ctx.BeginFrame()
	ctx.SetGlobalBind(func(device.RenderEncoder) { events = append(events, "overwritten") })
	ctx.SetGlobalBind(func(enc device.RenderEncoder) { events = append(events, "bind "+enc.Target().Label) })
	ctx.SetTarget(render_pass.PassUI, colorTarget("ui"))
	ctx.SetTarget(render_pass.PassClear, colorTarget("clear"))
	ctx.Enqueue(render_pass.PassUI, 0, func(device.RenderEncoder) { events = append(events, "ui") })
	ctx.Enqueue(render_pass.PassClear, 0, func(device.RenderEncoder) { events = append(events, "clear") })
	ctx.Replay(src)

	assert.Equal(t, []string{"bind clear", "clear", "bind ui", "ui"}, events)
}

func TestEncoderLifecycle(t *testing.T) {
	dev, src := newSource(t)
	ctx := NewRenderContext()

	ctx.BeginFrame()
	ctx.SetTarget(render_pass.PassClear, colorTarget("clear"))
	ctx.Enqueue(render_pass.PassClear, 0, func(enc device.RenderEncoder) { enc.Draw(3, 1, 0, 0) })
	stats := ctx.Replay(src)

	assert.Equal(t, Stats{Encoders: 1, Commands: 1}, stats)
	require.Len(t, dev.Encoders(), 1)
	assert.Equal(t, []string{"push RenderPass: Clear", "draw 3 1", "pop", "end"}, dev.Encoders()[0].Calls)
}

func TestInvalidTargetIsSkipped(t *testing.T) {
	dev, src := newSource(t)
	ctx := NewRenderContext()
	ran := false

	ctx.BeginFrame()
	ctx.SetTarget(render_pass.PassDisplay, &device.TargetDescriptor{Label: "no drawable"})
	ctx.Enqueue(render_pass.PassDisplay, 99, func(device.RenderEncoder) { ran = true })
	ctx.SetTarget(render_pass.PassUI, colorTarget("ui"))
	ctx.Enqueue(render_pass.PassUI, 0, func(device.RenderEncoder) {})
	stats := ctx.Replay(src)

	assert.False(t, ran)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Encoders)
	assert.Len(t, dev.Encoders(), 1)
}

func TestBeginFrameClearsRecords(t *testing.T) {
	dev, src := newSource(t)
	ctx := NewRenderContext()
	binds := 0

	ctx.BeginFrame()
	ctx.SetGlobalBind(func(device.RenderEncoder) { binds++ })
	ctx.SetTarget(render_pass.PassGBuffer, colorTarget("gbuffer"))
	ctx.Enqueue(render_pass.PassGBuffer, 0, func(device.RenderEncoder) {})

	ctx.BeginFrame()
	assert.Nil(t, ctx.Target(render_pass.PassGBuffer))
	assert.Equal(t, 0, ctx.Len(render_pass.PassGBuffer))
	ctx.Replay(src)

	assert.Empty(t, dev.Encoders())
	assert.Equal(t, 0, binds)
}

func TestUnlabelledTargetGetsPassName(t *testing.T) {
	ctx := NewRenderContext()
	target := colorTarget("")

	ctx.BeginFrame()
	ctx.SetTarget(render_pass.PassLighting, target)

	assert.Equal(t, "Lighting", ctx.Target(render_pass.PassLighting).Label)
	assert.Equal(t, "", target.Label)
}
