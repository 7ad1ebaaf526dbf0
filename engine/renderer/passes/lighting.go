package passes

import (
	"log"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/frame"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/render_pass"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/shader"
)

// lightingPass shades every pixel the geometry pass covered into the frame colour.
type lightingPass struct {
	res      *Resources
	pipeline pipeline.Pipeline
}

var _ render_pass.RenderPass = &lightingPass{}

// NewLightingPass creates the lighting pass. It draws a fullscreen triangle that
// passes the stencil test only where the geometry pass wrote StencilGBuffer.
//
// Parameters:
//   - res: the shared resources
//
// Returns:
//   - render_pass.RenderPass: the pass
func NewLightingPass(res *Resources) render_pass.RenderPass {
	opts := []pipeline.PipelineBuilderOption{
		pipeline.WithEntryPoints("vs_fullscreen", "fs_lighting"),
		pipeline.WithColorFormats(frame.ColorFormat),
		pipeline.WithStencilCheck(frame.DepthStencilFormat),
		pipeline.WithBindGroupLayouts(res.Layouts(common.GroupGBuffer)...),
	}
	if s, err := shader.Load(shader.KeyLighting); err != nil {
		log.Printf("[Lighting] %v", err)
	} else {
		opts = append(opts, pipeline.WithShader(s))
	}
	return &lightingPass{
		res:      res,
		pipeline: pipeline.NewPipeline(render_pass.PassLighting.String(), opts...),
	}
}

func (p *lightingPass) ID() render_pass.PassID { return render_pass.PassLighting }

func (p *lightingPass) Setup() {
	_ = p.pipeline.Create(p.res.Device)
}

func (p *lightingPass) Update(ctx render_pass.Context) {
	ctx.SetTarget(render_pass.PassLighting, &device.TargetDescriptor{
		Label:   render_pass.PassLighting.String(),
		Colors:  []device.ColorAttachment{p.res.Frame.ColorAttachment()},
		Stencil: p.res.Frame.StencilAttachment(),
	})
}

func (p *lightingPass) Draw(ctx render_pass.Context) {
	if !p.pipeline.Ready() {
		return
	}
	ctx.Enqueue(render_pass.PassLighting, 0, func(enc device.RenderEncoder) {
		if !p.pipeline.Bind(enc) {
			return
		}
		enc.SetStencilReference(uint32(render_pass.StencilGBuffer))
		enc.Draw(3, 1, 0, 0)
	})
}

func (p *lightingPass) GlobalBind(device.RenderEncoder) {}

func (p *lightingPass) Release() {
	p.pipeline.Release()
}
