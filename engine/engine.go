package engine

import (
	"log"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/camera"
	"github.com/Carmen-Shannon/oxy-deferred/engine/config"
	"github.com/Carmen-Shannon/oxy-deferred/engine/profiler"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/commander"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/frame"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/render_pass"
	"github.com/Carmen-Shannon/oxy-deferred/engine/scene"
	"github.com/Carmen-Shannon/oxy-deferred/engine/window"
)

// engine implements the Engine interface.
// Coordinates the tick, render, and window threads.
type engine struct {
	mu *sync.Mutex

	cfg config.Config

	tickRateChannel chan time.Duration

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once

	window   window.Window
	dev      device.Device
	renderer renderer.Renderer
	camera   camera.Camera

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	scenes map[int]scene.Scene

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point. It owns the window, the renderer and the camera,
// and runs the tick loop and the render loop.
type Engine interface {
	// Window returns the window, or nil for a headless engine.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the frame orchestrator.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// Camera returns the camera the renderer views the scenes through.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Profiler returns the frame profiler.
	//
	// Returns:
	//   - *profiler.Profiler: the profiler
	Profiler() *profiler.Profiler

	// EnableProfiler enables periodic frame statistics in the log.
	EnableProfiler()

	// DisableProfiler disables frame statistics.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after each rendered frame.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets a render frame rate cap. Pass 0 to uncap the render loop.
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddScene sets the scene up with the renderer and registers it at the given
	// z-index key. Scenes update and draw in ascending key order.
	//
	// Parameters:
	//   - key: the z-index determining order (lower first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given z-index key, or nil.
	//
	// Parameters:
	//   - key: the z-index of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Run starts the engine loops. With a window it blocks in the window message loop
	// until the window closes; headless it blocks until Quit.
	Run()

	// Quit signals all engine goroutines to stop. Safe to call multiple times.
	Quit()
}

// NewEngine creates an Engine. Without WithRenderer it opens a window and a WebGPU
// device configured from the engine config.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:              &sync.Mutex{},
		cfg:             config.Default(),
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		scenes:          make(map[int]scene.Scene),
	}
	for _, opt := range options {
		opt(e)
	}

	e.engineTickRate = perSecond(e.cfg.Engine.TickRate, 60)
	e.renderFrameLimit = perSecond(e.cfg.Engine.FrameLimit, 0)
	e.profilingEnabled = e.cfg.Engine.Profiling
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithInterval(time.Duration(e.cfg.Engine.ProfileInterval)))
	}
	if e.camera == nil {
		e.camera = camera.NewCamera()
	}
	if e.renderer == nil {
		e.openWindow()
	}

	width, height := e.renderer.Frame().Resolution()
	e.camera.SetAspect(float32(width) / float32(height))

	for _, s := range e.scenes {
		s.Setup(e.renderer)
	}
	if e.window != nil {
		e.bindInput()
	}
	return e
}

// openWindow creates the window, the WebGPU device and the renderer from the config.
func (e *engine) openWindow() {
	wc, rc := e.cfg.Window, e.cfg.Renderer
	if e.window == nil {
		e.window = window.NewWindow(
			window.WithTitle(common.Coalesce(wc.Title, "oxy-deferred")),
			window.WithSize(wc.Width, wc.Height),
			window.WithMinSize(wc.MinWidth, wc.MinHeight),
		)
	}

	mode, err := rc.Mode()
	if err != nil {
		log.Printf("[Engine] %v, using vsync", err)
	}
	dev := device.NewWGPUDevice(e.window.SurfaceDescriptor(),
		device.WithPresentMode(mode),
		device.WithForceSoftwareRenderer(rc.ForceSoftware),
	)
	e.dev = dev

	width, height := e.window.Size()
	surface := dev.Surface()
	if surface != nil {
		surface.Configure(width, height)
	}
	e.renderer = renderer.NewRenderer(dev, surface, e.camera,
		renderer.WithSize(width, height),
		renderer.WithFrameOptions(frame.WithClearColor(rc.Color())),
		renderer.WithCommanderOptions(commander.WithFramesInFlight(rc.FramesInFlight)),
	)
}

// bindInput routes window events to the renderer and camera: resizes reach both,
// dragging orbits, scrolling zooms, WASD orbits and QE raise or lower the camera.
func (e *engine) bindInput() {
	e.window.SetResizeCallback(func(width, height int) {
		e.renderer.Resize(width, height)
		if width > 0 && height > 0 {
			e.camera.SetAspect(float32(width) / float32(height))
		}
	})
	e.window.SetDragCallback(func(dx, dy float32) {
		e.camera.Move([3]float32{dx, dy, 0})
	})
	e.window.SetScrollCallback(func(delta float32) {
		e.camera.Move([3]float32{0, 0, delta})
	})
	e.window.SetKeyDownCallback(func(key uint32) {
		if dir, ok := keyDirection(key); ok {
			e.camera.Move(dir)
		}
	})
}

// keyDirection maps a key to a camera move in camera space.
func keyDirection(key uint32) ([3]float32, bool) {
	switch key {
	case common.KeyW:
		return [3]float32{0, 0, 1}, true
	case common.KeyS:
		return [3]float32{0, 0, -1}, true
	case common.KeyA:
		return [3]float32{-1, 0, 0}, true
	case common.KeyD:
		return [3]float32{1, 0, 0}, true
	case common.KeyQ:
		return [3]float32{0, -1, 0}, true
	case common.KeyE:
		return [3]float32{0, 1, 0}, true
	}
	return [3]float32{}, false
}

func (e *engine) Window() window.Window        { return e.window }
func (e *engine) Renderer() renderer.Renderer  { return e.renderer }
func (e *engine) Camera() camera.Camera        { return e.camera }
func (e *engine) Profiler() *profiler.Profiler { return e.profiler }

func (e *engine) Run() {
	e.mu.Lock()
	e.running = true
	e.mu.Unlock()

	e.handle()
	if e.window != nil {
		e.window.ProcessMessages()
		e.signalQuit()
	}
	e.wg.Wait()
	e.shutdown()
}

func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		close(e.quitChannel)
	})
}

// shutdown releases the scenes, the renderer, the device and the window once the loops have exited.
func (e *engine) shutdown() {
	e.mu.Lock()
	for _, s := range e.scenes {
		s.Release()
	}
	e.mu.Unlock()
	e.renderer.Release()
	if e.dev != nil {
		e.dev.Release()
	}
	if e.window != nil {
		if err := e.window.Close(); err != nil {
			log.Printf("[Engine] closing window: %v", err)
		}
	}
}

// handle launches the tick and render goroutines.
func (e *engine) handle() {
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleRender()
}

// handleEngine runs the fixed-rate tick loop until the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()
	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			e.mu.Lock()
			cb := e.tickCallback
			e.mu.Unlock()
			if cb != nil {
				cb(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the render loop. A panic in a frame is logged and stops the engine.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Engine] render goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()
	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}

		frameStart := time.Now()
		dt := float32(frameStart.Sub(lastRender).Seconds())
		lastRender = frameStart

		e.renderFrame(dt)

		if limit := e.frameLimit(); limit > 0 {
			if remaining := limit - time.Since(frameStart); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

// renderFrame draws one frame of every registered scene and samples the profiler.
func (e *engine) renderFrame(dt float32) {
	e.mu.Lock()
	scenes := e.orderedScenes()
	renderCallback := e.renderCallback
	profiling := e.profilingEnabled
	e.mu.Unlock()

	e.renderer.Draw(scenes)

	if renderCallback != nil {
		renderCallback(dt)
	}
	if profiling {
		stats := e.renderer.Context().Stats()
		session := e.renderer.Commander()
		e.profiler.Tick(profiler.Sample{
			Encoders: stats.Encoders,
			Commands: stats.Commands,
			Skipped:  stats.Skipped,
			InFlight: session.InFlight(),
			Waited:   session.WaitTime(),
		})
	}
}

// orderedScenes returns the registered scenes in ascending key order. Caller must hold the mutex.
func (e *engine) orderedScenes() sceneList {
	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	list := make(sceneList, 0, len(keys))
	for _, k := range keys {
		list = append(list, e.scenes[k])
	}
	return list
}

// sceneList draws several scenes as one, in order.
type sceneList []scene.Scene

func (l sceneList) Update(ctx render_pass.Context) {
	for _, s := range l {
		s.Update(ctx)
	}
}

func (l sceneList) Draw(ctx render_pass.Context) {
	for _, s := range l {
		s.Draw(ctx)
	}
}

func (e *engine) frameLimit() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.renderFrameLimit
}

func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

// SetTickRate applies immediately when the engine is running.
func (e *engine) SetTickRate(fps float64) {
	newRate := perSecond(fps, 60)

	e.mu.Lock()
	running := e.running
	if !running {
		e.engineTickRate = newRate
	}
	e.mu.Unlock()
	if !running {
		return
	}

	// Replace any pending update with the new rate.
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderFrameLimit = perSecond(fps, 0)
}

// perSecond converts a rate to a period. A non-positive rate uses fallback instead;
// a fallback of 0 yields a zero period.
func perSecond(rate, fallback float64) time.Duration {
	if rate <= 0 {
		rate = fallback
	}
	if rate <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / rate)
}

func (e *engine) AddScene(key int, s scene.Scene) {
	s.Setup(e.renderer)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scenes[key] = s
}

// RemoveScene releases the scene's workers once it is out of the draw list.
func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	s, ok := e.scenes[key]
	delete(e.scenes, key)
	e.mu.Unlock()
	if ok {
		s.Release()
	}
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scenes[key]
}
