package passes

import (
	"log"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/render_pass"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/shader"
)

// displayPriority places the copy to the drawable after anything a scene adds to the pass.
const displayPriority = 99

// displayPass tone maps the frame colour into the surface's drawable.
type displayPass struct {
	res      *Resources
	shader   shader.Shader
	pipeline pipeline.Pipeline
	target   *device.TargetDescriptor
}

var _ render_pass.RenderPass = &displayPass{}

// NewDisplayPass creates the presentation pass. It declares no target in frames
// without a drawable, which drops its commands.
//
// Parameters:
//   - res: the shared resources
//
// Returns:
//   - render_pass.RenderPass: the pass
func NewDisplayPass(res *Resources) render_pass.RenderPass {
	s, err := shader.Load(shader.KeyDisplay)
	if err != nil {
		log.Printf("[Display] %v", err)
	}
	return &displayPass{res: res, shader: s}
}

func (p *displayPass) ID() render_pass.PassID { return render_pass.PassDisplay }

// Setup compiles the pipeline for the surface's current format.
func (p *displayPass) Setup() {
	p.Release()

	var opts []pipeline.PipelineBuilderOption
	if p.shader != nil {
		opts = append(opts, pipeline.WithShader(p.shader))
	}
	if p.res.Surface != nil {
		opts = append(opts, pipeline.WithColorFormats(p.res.Surface.Format()))
	}
	opts = append(opts,
		pipeline.WithEntryPoints("vs_fullscreen", "fs_display"),
		pipeline.WithBindGroupLayouts(p.res.Layouts(common.GroupFrameTextures)...),
	)
	p.pipeline = pipeline.NewPipeline(render_pass.PassDisplay.String(), opts...)
	if p.res.Surface == nil {
		log.Printf("[Display] pipeline disabled: no surface")
		return
	}
	_ = p.pipeline.Create(p.res.Device)
}

func (p *displayPass) Update(ctx render_pass.Context) {
	p.target = nil
	if p.res.Surface == nil {
		return
	}
	drawable, ok := p.res.Surface.CurrentDrawable()
	if !ok {
		return
	}
	p.target = &device.TargetDescriptor{
		Label: render_pass.PassDisplay.String(),
		Colors: []device.ColorAttachment{{
			Texture: drawable.Texture(),
			Load:    device.LoadActionClear,
			Store:   device.StoreActionStore,
		}},
	}
	ctx.SetTarget(render_pass.PassDisplay, p.target)
}

func (p *displayPass) Draw(ctx render_pass.Context) {
	if p.target == nil || p.pipeline == nil || !p.pipeline.Ready() {
		return
	}
	ctx.Enqueue(render_pass.PassDisplay, displayPriority, func(enc device.RenderEncoder) {
		if p.pipeline.Bind(enc) {
			enc.Draw(3, 1, 0, 0)
		}
	})
}

func (p *displayPass) GlobalBind(device.RenderEncoder) {}

func (p *displayPass) Release() {
	if p.pipeline != nil {
		p.pipeline.Release()
	}
}
