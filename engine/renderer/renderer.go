package renderer

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-deferred/engine/light"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/commander"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/frame"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/passes"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/render_context"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/render_pass"
)

// Scene is the content drawn after the built-in passes. It registers work with
// the same contract as a pass.
type Scene interface {
	// Update runs after every pass's Update, before the lights are uploaded.
	Update(ctx render_pass.Context)

	// Draw runs after every pass's Draw.
	Draw(ctx render_pass.Context)
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	dev     device.Device
	surface device.Surface

	frame   frame.FrameInfo
	lights  light.Lights
	session commander.Commander
	ctx     render_context.RenderContext
	res     *passes.Resources

	passes []render_pass.RenderPass
	byID   [render_pass.PassCount]render_pass.RenderPass
	bind   render_pass.GlobalBind

	// Pre-creation config collected from builder options
	passFactory   func(res *passes.Resources) []render_pass.RenderPass
	frameOptions  []frame.FrameInfoBuilderOption
	commanderOpts []commander.CommanderBuilderOption
	initialWidth  int
	initialHeight int
}

// Renderer drives the deferred frame: it owns the frame state, the command session,
// the deferred context, the lights and the ordered pass list.
//
// A Renderer is driven by a single goroutine; Draw and Resize must not run concurrently.
type Renderer interface {
	// Draw renders one frame. The sequence is: begin the command session (blocking
	// while the in-flight budget is spent), discard last frame's records, advance
	// the frame state, Update every pass, update the scene, upload the lights, set
	// the global bind, Draw every pass, draw the scene, replay, present and submit.
	//
	// Parameters:
	//   - scene: the scene to draw, may be nil
	Draw(scene Scene)

	// Resize reallocates the frame targets and rebuilds every pass.
	// Sizes below 1 are clamped to 1.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// Pass returns the pass with the given identifier.
	//
	// Parameters:
	//   - id: the pass identifier
	//
	// Returns:
	//   - render_pass.RenderPass: the pass, or nil if none is registered
	Pass(id render_pass.PassID) render_pass.RenderPass

	// Passes returns the registered passes in execution order.
	//
	// Returns:
	//   - []render_pass.RenderPass: the passes
	Passes() []render_pass.RenderPass

	// Frame returns the frame state.
	//
	// Returns:
	//   - frame.FrameInfo: the frame state
	Frame() frame.FrameInfo

	// Lights returns the light collection uploaded every frame.
	//
	// Returns:
	//   - light.Lights: the lights
	Lights() light.Lights

	// Commander returns the command session.
	//
	// Returns:
	//   - commander.Commander: the session
	Commander() commander.Commander

	// Context returns the deferred context.
	//
	// Returns:
	//   - render_context.RenderContext: the context
	Context() render_context.RenderContext

	// Device returns the device the renderer draws with.
	//
	// Returns:
	//   - device.Device: the device
	Device() device.Device

	// Resources returns the objects shared by the passes.
	//
	// Returns:
	//   - *passes.Resources: the shared resources
	Resources() *passes.Resources

	// Release frees every pass and the objects the renderer allocated. The device and
	// surface are left to their owner.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates the frame state, lights, command session and deferred context,
// builds the pass set (the built-in passes unless WithPasses is given), orders it
// by identifier and runs Setup on every pass.
//
// Panics if the device cannot allocate the frame targets or buffers, or if two
// passes share an identifier.
//
// Parameters:
//   - dev: the device
//   - surface: the presentation surface, may be nil for offscreen rendering
//   - cam: the camera sampled once per frame, may be nil
//   - options: functional options for renderer configuration
//
// Returns:
//   - Renderer: the ready renderer
func NewRenderer(dev device.Device, surface device.Surface, cam frame.Camera, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		dev:           dev,
		surface:       surface,
		passFactory:   passes.Defaults,
		initialWidth:  1,
		initialHeight: 1,
	}
	for _, opt := range options {
		opt(r)
	}

	r.frame = frame.NewFrameInfo(dev, r.initialWidth, r.initialHeight, cam, r.frameOptions...)
	r.lights = light.NewLights(dev)
	r.session = commander.NewCommander(dev, r.commanderOpts...)
	r.ctx = render_context.NewRenderContext()
	r.res = passes.NewResources(dev, r.frame, r.lights, surface)

	r.passes = render_pass.Sort(r.passFactory(r.res))
	for _, p := range r.passes {
		r.byID[p.ID()] = p
		p.Setup()
	}
	r.bind = r.globalBind
	return r
}

func (r *renderer) Draw(scene Scene) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.session.Begin()
	r.ctx.BeginFrame()
	r.frame.Advance()

	for _, p := range r.passes {
		p.Update(r.ctx)
	}
	if scene != nil {
		scene.Update(r.ctx)
	}
	r.lights.Update(r.frame.Slot())
	r.ctx.SetGlobalBind(r.bind)

	for _, p := range r.passes {
		p.Draw(r.ctx)
	}
	if scene != nil {
		scene.Draw(r.ctx)
	}

	r.ctx.Replay(r.session)
	r.session.Present(r.surface)
	r.session.End()
}

// globalBind binds the frame uniforms, the lights and every pass's shared
// resources on each encoder of the frame.
func (r *renderer) globalBind(enc device.RenderEncoder) {
	r.frame.BindGlobal(enc)
	r.lights.GlobalBind(enc)
	for _, p := range r.passes {
		p.GlobalBind(enc)
	}
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frame.SetResolution(width, height)
	if r.surface != nil {
		w, h := r.frame.Resolution()
		r.surface.Configure(w, h)
	}
	for _, p := range r.passes {
		p.Setup()
	}
}

func (r *renderer) Pass(id render_pass.PassID) render_pass.RenderPass {
	if !id.Valid() {
		return nil
	}
	return r.byID[id]
}

func (r *renderer) Passes() []render_pass.RenderPass {
	return append([]render_pass.RenderPass(nil), r.passes...)
}

func (r *renderer) Frame() frame.FrameInfo                { return r.frame }
func (r *renderer) Lights() light.Lights                  { return r.lights }
func (r *renderer) Commander() commander.Commander        { return r.session }
func (r *renderer) Context() render_context.RenderContext { return r.ctx }
func (r *renderer) Device() device.Device                 { return r.dev }
func (r *renderer) Resources() *passes.Resources          { return r.res }

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.passes {
		p.Release()
	}
	r.res.Release()
	r.lights.Release()
	r.frame.Release()
}
