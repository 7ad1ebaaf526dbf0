package renderer

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/commander"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device/devicetest"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/passes"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/render_pass"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// probePass records its lifecycle calls into a shared log and enqueues nothing.
type probePass struct {
	id   render_pass.PassID
	log  *[]string
	bind int
}

func (p *probePass) ID() render_pass.PassID { return p.id }
func (p *probePass) Setup()                 { *p.log = append(*p.log, "setup "+p.id.String()) }
func (p *probePass) Release()               {}

func (p *probePass) Update(render_pass.Context) {
	*p.log = append(*p.log, "update "+p.id.String())
}

func (p *probePass) Draw(render_pass.Context) {
	*p.log = append(*p.log, "draw "+p.id.String())
}

func (p *probePass) GlobalBind(device.RenderEncoder) { p.bind++ }

type probeScene struct {
	log   *[]string
	drawn func(ctx render_pass.Context)
}

func (s *probeScene) Update(render_pass.Context) { *s.log = append(*s.log, "scene update") }

func (s *probeScene) Draw(ctx render_pass.Context) {
	*s.log = append(*s.log, "scene draw")
	if s.drawn != nil {
		s.drawn(ctx)
	}
}

func TestSingleClearFrame(t *testing.T) {
	dev := devicetest.New()
	surface := devicetest.NewSurface(64, 32)
	var log []string
	probe := &probePass{id: render_pass.PassUI, log: &log}

	r := NewRenderer(dev, surface, nil, WithSize(64, 32), WithPasses(func(res *passes.Resources) []render_pass.RenderPass {
		return []render_pass.RenderPass{probe, passes.NewClearPass(res)}
	}))
	r.Draw(nil)

	encs := dev.Encoders()
	require.Len(t, encs, 1)
	assert.Equal(t, []string{
		"push RenderPass: Clear",
		"bind 0 Frame Uniforms [0]",
		"bind 1 Light Buffer [0]",
		"pop",
		"end",
	}, encs[0].Calls)
	assert.Equal(t, 1, probe.bind)

	stats := r.Context().Stats()
	assert.Equal(t, 1, stats.Encoders)
	assert.Equal(t, 1, stats.Commands)

	cbs := dev.CommandBuffers()
	require.Len(t, cbs, 1)
	assert.NotNil(t, cbs[0].Presented)
	assert.True(t, cbs[0].Committed)
	assert.Equal(t, commander.StateSubmitted, r.Commander().State())
}

func TestFrameSequence(t *testing.T) {
	dev := devicetest.New()
	var log []string
	r := NewRenderer(dev, nil, nil, WithPasses(func(*passes.Resources) []render_pass.RenderPass {
		return []render_pass.RenderPass{
			&probePass{id: render_pass.PassUI, log: &log},
			&probePass{id: render_pass.PassClear, log: &log},
		}
	}))
	assert.Equal(t, []string{"setup Clear", "setup UI"}, log)
	log = log[:0]

	r.Draw(&probeScene{log: &log})
	assert.Equal(t, []string{
		"update Clear",
		"update UI",
		"scene update",
		"draw Clear",
		"draw UI",
		"scene draw",
	}, log)
	assert.Equal(t, uint64(0), r.Frame().Frame())
}

func TestPassLookup(t *testing.T) {
	r := NewRenderer(devicetest.New(), devicetest.NewSurface(8, 8), nil)

	ids := []render_pass.PassID{}
	for _, p := range r.Passes() {
		ids = append(ids, p.ID())
	}
	assert.Equal(t, []render_pass.PassID{
		render_pass.PassClear,
		render_pass.PassGBuffer,
		render_pass.PassLighting,
		render_pass.PassPostProcess,
		render_pass.PassUI,
		render_pass.PassDisplay,
	}, ids)

	_, ok := r.Pass(render_pass.PassGBuffer).(passes.GBufferPass)
	assert.True(t, ok)
	assert.Nil(t, r.Pass(render_pass.PassShadow))
	assert.Nil(t, r.Pass(render_pass.PassCount))
}

func TestDuplicatePassesPanic(t *testing.T) {
	assert.Panics(t, func() {
		NewRenderer(devicetest.New(), nil, nil, WithPasses(func(res *passes.Resources) []render_pass.RenderPass {
			return []render_pass.RenderPass{passes.NewClearPass(res), passes.NewClearPass(res)}
		}))
	})
}

func TestDefaultFrame(t *testing.T) {
	dev := devicetest.New()
	surface := devicetest.NewSurface(64, 32)
	r := NewRenderer(dev, surface, nil, WithSize(64, 32))

	gbuffer := r.Pass(render_pass.PassGBuffer).(passes.GBufferPass)
	scene := &probeScene{log: new([]string), drawn: func(ctx render_pass.Context) {
		ctx.Enqueue(render_pass.PassGBuffer, 1, func(enc device.RenderEncoder) {
			enc.Draw(36, 25, 0, 0)
		})
	}}
	require.NotNil(t, gbuffer.Pipeline())

	r.Draw(scene)

	stats := r.Context().Stats()
	// Clear, GBuffer, Lighting, UI and Display; PostProcess enqueues nothing.
	assert.Equal(t, 5, stats.Encoders)
	assert.Equal(t, 0, stats.Skipped)

	var names []string
	for _, enc := range dev.Encoders() {
		names = append(names, enc.Target().Label)
	}
	assert.Equal(t, []string{"Clear", "GBuffer", "Lighting", "UI", "Display"}, names)

	geometry := dev.Encoders()[1]
	assert.Equal(t, 0, geometry.Count("bind 2"))
	assert.Equal(t, []string{"stencil 1", "draw 36 25", "pop", "end"}, geometry.Calls[len(geometry.Calls)-4:])

	display := dev.Encoders()[4]
	assert.Equal(t, 1, display.Count("bind 2 GBuffer Textures"))
	assert.Equal(t, 1, display.Count("bind 3 Frame Textures"))
}

func TestResizeLeavesNoStaleTargets(t *testing.T) {
	dev := devicetest.New()
	surface := devicetest.NewSurface(64, 32)
	r := NewRenderer(dev, surface, nil, WithSize(64, 32))

	r.Draw(nil)
	dev.CompleteAll()
	before := len(dev.Encoders())

	r.Resize(128, 96)
	assert.Equal(t, 128, surface.Width)
	assert.Equal(t, 96, surface.Height)

	r.Draw(nil)
	stats := r.Context().Stats()
	assert.Equal(t, 0, stats.Skipped)
	assert.Equal(t, 5, stats.Encoders)

	for _, enc := range dev.Encoders()[before:] {
		target := enc.Target()
		for _, c := range target.Colors {
			assert.False(t, c.Texture.(*devicetest.Texture).Released(), c.Texture.Label())
			assert.Equal(t, uint32(128), c.Texture.Width())
		}
		if ds := target.DepthStencilTexture(); ds != nil {
			assert.False(t, ds.(*devicetest.Texture).Released())
		}
	}
}

func TestDrawBlocksOnInFlightBudget(t *testing.T) {
	dev := devicetest.New()
	r := NewRenderer(dev, nil, nil, WithPasses(func(res *passes.Resources) []render_pass.RenderPass {
		return []render_pass.RenderPass{passes.NewClearPass(res)}
	}))

	for range 3 {
		r.Draw(nil)
	}

	done := make(chan struct{})
	go func() {
		r.Draw(nil)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("fourth frame did not wait for the GPU")
	case <-time.After(50 * time.Millisecond):
	}

	require.Equal(t, 1, dev.Complete(1))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("fourth frame still blocked after a completion")
	}
	assert.Equal(t, 0, r.Frame().Slot())
	assert.Equal(t, uint64(3), r.Frame().Frame())
}

func TestOversizedBudgetNeverReusesBusySlot(t *testing.T) {
	dev := devicetest.New()
	r := NewRenderer(dev, nil, nil,
		WithCommanderOptions(commander.WithFramesInFlight(common.FramesInFlight+1)),
		WithPasses(func(res *passes.Resources) []render_pass.RenderPass {
			return []render_pass.RenderPass{passes.NewClearPass(res)}
		}),
	)
	require.Equal(t, common.FramesInFlight, r.Commander().FramesInFlight())

	var slots []int
	for range common.FramesInFlight {
		r.Draw(nil)
		slots = append(slots, r.Frame().Slot())
	}
	assert.Equal(t, []int{0, 1, 2}, slots)

	done := make(chan struct{})
	go func() {
		r.Draw(nil)
		close(done)
	}()
	select {
	case <-done:
		t.Fatal("frame reused a slot the GPU may still read")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, common.FramesInFlight, r.Commander().InFlight())

	require.Equal(t, 1, dev.Complete(1))
	<-done
	assert.Equal(t, 0, r.Frame().Slot())
}

func TestReleaseFreesFrameTargets(t *testing.T) {
	dev := devicetest.New()
	r := NewRenderer(dev, devicetest.NewSurface(8, 8), nil, WithSize(8, 8))
	r.Release()

	for _, tex := range dev.Textures() {
		assert.True(t, tex.Released(), tex.Label())
	}
	for _, p := range dev.Pipelines() {
		assert.True(t, p.Released(), p.Label())
	}
}
