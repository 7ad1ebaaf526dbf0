package scene

import (
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/render_pass"
)

// Layer is one independently prepared part of a scene.
//
// Prepare runs on a worker goroutine concurrently with the other layers' Prepare and
// must only touch the layer's own CPU state. Setup, Update and Draw run on the render
// goroutine in layer order.
type Layer interface {
	// Name returns the layer's identifier.
	//
	// Returns:
	//   - string: the layer name
	Name() string

	// Setup builds the layer's pipelines and registers its lights. It runs once, when
	// the layer joins a scene that is set up or when the scene is set up.
	//
	// Parameters:
	//   - r: the renderer the scene draws with
	Setup(r renderer.Renderer)

	// Prepare advances the layer's CPU-side state by dt seconds.
	//
	// Parameters:
	//   - dt: seconds since the previous frame
	Prepare(dt float32)

	// Update declares per-frame state through the registration context.
	//
	// Parameters:
	//   - ctx: the registration context
	Update(ctx render_pass.Context)

	// Draw enqueues the layer's commands.
	//
	// Parameters:
	//   - ctx: the registration context
	Draw(ctx render_pass.Context)
}

// BaseLayer implements every Layer method except Name as a no-op. Embed it to
// implement only the stages a layer needs.
type BaseLayer struct{}

func (BaseLayer) Setup(renderer.Renderer)    {}
func (BaseLayer) Prepare(float32)            {}
func (BaseLayer) Update(render_pass.Context) {}
func (BaseLayer) Draw(render_pass.Context)   {}

// Scene is an ordered list of layers drawn by a renderer.
// Each frame, Update prepares every layer in parallel, waits for all of them, then
// calls Update on each layer in order. Draw calls Draw on each layer in order.
// Thread-safe for concurrent access.
type Scene interface {
	renderer.Scene

	// Name returns the scene's identifier.
	Name() string

	// Setup attaches the renderer and sets up every layer. Calling it again is a no-op.
	//
	// Parameters:
	//   - r: the renderer
	Setup(r renderer.Renderer)

	// Ready reports whether Setup has run.
	Ready() bool

	// Add appends a layer. If the scene is already set up the layer is set up immediately.
	// Panics if a layer with the same name exists.
	//
	// Parameters:
	//   - layer: the layer to add
	Add(layer Layer)

	// Remove removes the named layer.
	//
	// Parameters:
	//   - name: the layer name
	//
	// Returns:
	//   - bool: true if a layer was removed
	Remove(name string) bool

	// Layer returns the named layer, or nil.
	//
	// Parameters:
	//   - name: the layer name
	//
	// Returns:
	//   - Layer: the layer or nil
	Layer(name string) Layer

	// Layers returns the layers in draw order.
	//
	// Returns:
	//   - []Layer: a copy of the layer list
	Layers() []Layer

	// Release stops the prepare workers. A released scene no longer updates or draws.
	// Calling it again is a no-op.
	Release()
}

type scene struct {
	mu *sync.RWMutex

	name   string
	r      renderer.Renderer
	layers []Layer
	ready  bool

	// delta overrides the frame delta when set; used when no renderer drives the scene.
	delta func() float32

	// preparePool runs the parallel Prepare phase. Workers persist across frames.
	preparePool    worker.DynamicWorkerPool
	prepareWorkers int
	released       bool
}

var _ Scene = &scene{}

// NewScene creates an empty scene.
//
// Parameters:
//   - name: the name of the scene
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:             &sync.RWMutex{},
		name:           name,
		prepareWorkers: max(runtime.NumCPU()-1, 1),
	}
	for _, option := range options {
		option(s)
	}

	// Created after options so WithPrepareWorkers can override the default.
	s.preparePool = worker.NewDynamicWorkerPool(s.prepareWorkers, 256, 1*time.Second)
	return s
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	s.released = true
	s.preparePool.Stop()
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Setup(r renderer.Renderer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return
	}
	s.r = r
	s.ready = true
	for _, l := range s.layers {
		l.Setup(r)
	}
}

func (s *scene) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

func (s *scene) Add(layer Layer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.layers {
		if l.Name() == layer.Name() {
			panic(fmt.Sprintf("scene: %s already has a layer named %q", s.name, layer.Name()))
		}
	}
	s.layers = append(s.layers, layer)
	if s.ready {
		layer.Setup(s.r)
	}
}

func (s *scene) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.layers {
		if l.Name() == name {
			s.layers = append(s.layers[:i], s.layers[i+1:]...)
			return true
		}
	}
	return false
}

func (s *scene) Layer(name string) Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.layers {
		if l.Name() == name {
			return l
		}
	}
	return nil
}

func (s *scene) Layers() []Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Layer(nil), s.layers...)
}

func (s *scene) Update(ctx render_pass.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.released {
		return
	}

	s.prepare(s.frameDelta())
	for _, l := range s.layers {
		l.Update(ctx)
	}
}

func (s *scene) Draw(ctx render_pass.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.released {
		return
	}
	for _, l := range s.layers {
		l.Draw(ctx)
	}
}

// frameDelta returns the seconds elapsed since the previous frame. Caller must hold the lock.
func (s *scene) frameDelta() float32 {
	if s.delta != nil {
		return s.delta()
	}
	if s.r == nil {
		return 0
	}
	_, dt := s.r.Frame().Time()
	return float32(dt)
}

// prepare runs Prepare for every layer on the pool and waits for all of them.
// A WaitGroup is the per-frame barrier; pool.Wait blocks until workers idle-exit.
// Caller must hold the lock.
func (s *scene) prepare(dt float32) {
	var wg sync.WaitGroup
	for i, l := range s.layers {
		wg.Add(1)
		s.preparePool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (result any, err error) {
				defer wg.Done()
				defer func() {
					if p := recover(); p != nil {
						err = fmt.Errorf("scene: layer %q prepare panicked: %v", l.Name(), p)
						log.Printf("[Scene] %s: %v", s.name, err)
					}
				}()
				l.Prepare(dt)
				return nil, nil
			},
		})
	}
	wg.Wait()
}
