package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/camera"
	"github.com/Carmen-Shannon/oxy-deferred/engine/config"
	"github.com/Carmen-Shannon/oxy-deferred/engine/profiler"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device/devicetest"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/render_pass"
	"github.com/Carmen-Shannon/oxy-deferred/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderLayer struct {
	scene.BaseLayer
	name string
	mu   *sync.Mutex
	log  *[]string
}

func (l *orderLayer) Name() string { return l.name }

func (l *orderLayer) Draw(render_pass.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.log = append(*l.log, l.name)
}

func newHeadless(t *testing.T, options ...EngineBuilderOption) (*engine, *devicetest.Device) {
	t.Helper()
	dev := devicetest.New()
	cam := camera.NewCamera()
	r := renderer.NewRenderer(dev, devicetest.NewSurface(200, 100), cam, renderer.WithSize(200, 100))
	e := NewEngine(append([]EngineBuilderOption{WithRenderer(r), WithCamera(cam)}, options...)...)
	return e.(*engine), dev
}

func TestKeyDirection(t *testing.T) {
	dir, ok := keyDirection(common.KeyW)
	assert.True(t, ok)
	assert.Equal(t, [3]float32{0, 0, 1}, dir)

	dir, ok = keyDirection(common.KeyQ)
	assert.True(t, ok)
	assert.Equal(t, [3]float32{0, -1, 0}, dir)

	_, ok = keyDirection(common.KeyEsc)
	assert.False(t, ok)
}

func TestPerSecond(t *testing.T) {
	assert.Equal(t, time.Second/60, perSecond(0, 60))
	assert.Equal(t, 10*time.Millisecond, perSecond(100, 60))
	assert.Equal(t, time.Duration(0), perSecond(-5, 0))
}

func TestNewEngineAppliesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.TickRate = 20
	cfg.Engine.FrameLimit = 50
	cfg.Engine.Profiling = true

	e, _ := newHeadless(t, WithConfig(cfg), WithTickRate(40))
	assert.Equal(t, 25*time.Millisecond, e.engineTickRate)
	assert.Equal(t, 20*time.Millisecond, e.renderFrameLimit)
	assert.True(t, e.profilingEnabled)
	assert.Nil(t, e.Window())
	assert.InDelta(t, 2, e.Camera().Aspect(), 1e-6)
}

func TestScenesDrawInKeyOrder(t *testing.T) {
	var mu sync.Mutex
	var log []string
	layer := func(name string) scene.Layer { return &orderLayer{name: name, mu: &mu, log: &log} }

	back := scene.NewScene("back", scene.WithLayers(layer("sky")))
	e, dev := newHeadless(t, WithScene(5, back))
	require.True(t, back.Ready())

	front := scene.NewScene("front", scene.WithLayers(layer("hud")))
	e.AddScene(-1, front)
	assert.True(t, front.Ready())
	assert.Same(t, front, e.Scene(-1))

	e.renderFrame(0.016)
	dev.CompleteAll()
	assert.Equal(t, []string{"hud", "sky"}, log)

	e.RemoveScene(-1)
	assert.Nil(t, e.Scene(-1))
	log = nil
	front.Draw(nil)
	assert.Empty(t, log)
	e.renderFrame(0.016)
	assert.Equal(t, []string{"sky"}, log)
}

func TestRenderFrameFeedsProfiler(t *testing.T) {
	now := time.Unix(0, 0)
	p := profiler.NewProfiler(profiler.WithInterval(time.Second), profiler.WithClock(func() time.Time { return now }))
	e, dev := newHeadless(t, WithProfiler(p))

	e.EnableProfiler()
	for range 2 {
		now = now.Add(500 * time.Millisecond)
		e.renderFrame(0.5)
		dev.CompleteAll()
	}

	r := p.Last()
	assert.InDelta(t, 2, r.FPS, 1e-9)
	assert.InDelta(t, 5, r.Encoders, 1e-9)
	assert.Zero(t, r.Skipped)
}

func TestRunUntilQuit(t *testing.T) {
	e, dev := newHeadless(t)

	var frames int
	e.SetRenderCallback(func(float32) {
		dev.CompleteAll()
		frames++
		if frames == 3 {
			e.Quit()
		}
	})
	e.SetTickRate(1000)

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop after Quit")
	}
	assert.GreaterOrEqual(t, frames, 3)
	assert.False(t, dev.Released())
	for _, tex := range dev.Textures() {
		assert.True(t, tex.Released(), tex.Label())
	}
	e.Quit()
}
