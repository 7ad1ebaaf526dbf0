package scene

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device/devicetest"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/render_pass"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(s string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, s)
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

type recordingLayer struct {
	BaseLayer
	name     string
	j        *journal
	prepared atomic.Int32
	dt       atomic.Value
	setups   int
	panics   bool
}

func (l *recordingLayer) Name() string { return l.name }

func (l *recordingLayer) Setup(renderer.Renderer) { l.setups++ }

func (l *recordingLayer) Prepare(dt float32) {
	l.dt.Store(dt)
	l.prepared.Add(1)
	if l.panics {
		panic("boom")
	}
}

func (l *recordingLayer) Update(render_pass.Context) { l.j.add("update " + l.name) }
func (l *recordingLayer) Draw(render_pass.Context)   { l.j.add("draw " + l.name) }

type nopContext struct{}

func (nopContext) SetTarget(render_pass.PassID, *device.TargetDescriptor) {}
func (nopContext) Enqueue(render_pass.PassID, int, render_pass.Command)   {}
func (nopContext) SetGlobalBind(render_pass.GlobalBind)                   {}

func TestUpdatePreparesEveryLayerFirst(t *testing.T) {
	j := &journal{}
	a := &recordingLayer{name: "a", j: j}
	b := &recordingLayer{name: "b", j: j}
	s := NewScene("test", WithLayers(a, b), WithPrepareWorkers(2), WithDeltaSource(func() float32 { return 0.25 }))

	for range 3 {
		s.Update(nopContext{})
	}
	s.Draw(nopContext{})

	assert.Equal(t, int32(3), a.prepared.Load())
	assert.Equal(t, int32(3), b.prepared.Load())
	assert.Equal(t, float32(0.25), a.dt.Load())
	assert.Equal(t, []string{
		"update a", "update b",
		"update a", "update b",
		"update a", "update b",
		"draw a", "draw b",
	}, j.list())
}

func TestPreparePanicIsContained(t *testing.T) {
	j := &journal{}
	bad := &recordingLayer{name: "bad", j: j, panics: true}
	good := &recordingLayer{name: "good", j: j}
	s := NewScene("test", WithLayers(bad, good))

	assert.NotPanics(t, func() { s.Update(nopContext{}) })
	assert.Equal(t, int32(1), good.prepared.Load())
	assert.Equal(t, []string{"update bad", "update good"}, j.list())
}

func TestReleaseStopsScene(t *testing.T) {
	j := &journal{}
	a := &recordingLayer{name: "a", j: j}
	s := NewScene("test", WithLayers(a), WithPrepareWorkers(1))

	s.Update(nopContext{})
	s.Release()
	s.Release()
	s.Update(nopContext{})
	s.Draw(nopContext{})

	assert.True(t, s.(*scene).released)
	assert.Equal(t, int32(1), a.prepared.Load())
	assert.Equal(t, []string{"update a"}, j.list())
}

func TestLayerManagement(t *testing.T) {
	j := &journal{}
	s := NewScene("test")
	a := &recordingLayer{name: "a", j: j}
	s.Add(a)
	assert.Equal(t, 0, a.setups)
	assert.Panics(t, func() { s.Add(&recordingLayer{name: "a", j: j}) })

	s.Setup(nil)
	s.Setup(nil)
	assert.True(t, s.Ready())
	assert.Equal(t, 1, a.setups)

	b := &recordingLayer{name: "b", j: j}
	s.Add(b)
	assert.Equal(t, 1, b.setups)
	assert.Same(t, b, s.Layer("b"))
	assert.Len(t, s.Layers(), 2)

	assert.True(t, s.Remove("a"))
	assert.False(t, s.Remove("a"))
	assert.Nil(t, s.Layer("a"))
	assert.Equal(t, "test", s.Name())
}

type geometryLayer struct {
	BaseLayer
}

func (geometryLayer) Name() string { return "geometry" }

func (geometryLayer) Draw(ctx render_pass.Context) {
	ctx.Enqueue(render_pass.PassGBuffer, 1, func(enc device.RenderEncoder) {
		enc.Draw(36, 1, 0, 0)
	})
}

func TestSceneDrawsThroughRenderer(t *testing.T) {
	dev := devicetest.New()
	r := renderer.NewRenderer(dev, devicetest.NewSurface(16, 16), nil, renderer.WithSize(16, 16))
	s := NewScene("main", WithLayers(geometryLayer{}))
	s.Setup(r)

	r.Draw(s)

	var geometry *devicetest.Encoder
	for _, enc := range dev.Encoders() {
		if enc.Target().Label == render_pass.PassGBuffer.String() {
			geometry = enc
		}
	}
	require.NotNil(t, geometry)
	assert.Equal(t, 1, geometry.Count("draw 36 1"))
}
