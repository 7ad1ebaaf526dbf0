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

const (
	gridVertices  = 3
	gridInstances = 400
	axisInstances = 2
)

// uiPass draws the ground grid and the x and z axes over the lit frame.
type uiPass struct {
	res  *Resources
	grid pipeline.Pipeline
	axis pipeline.Pipeline
}

var _ render_pass.RenderPass = &uiPass{}

// NewUIPass creates the overlay pass. Lines are alpha blended and depth tested
// against the scene.
//
// Parameters:
//   - res: the shared resources
//
// Returns:
//   - render_pass.RenderPass: the pass
func NewUIPass(res *Resources) render_pass.RenderPass {
	opts := []pipeline.PipelineBuilderOption{
		pipeline.WithColorFormats(frame.ColorFormat),
		pipeline.WithBlending(),
		pipeline.WithDepth(frame.DepthStencilFormat),
		pipeline.WithTopology(device.TopologyLineStrip),
		pipeline.WithBindGroupLayouts(res.Layouts(common.GroupFrame)...),
	}
	if s, err := shader.Load(shader.KeyUI); err != nil {
		log.Printf("[UI] %v", err)
	} else {
		opts = append(opts, pipeline.WithShader(s))
	}
	base := pipeline.NewPipeline("UI", opts...)
	return &uiPass{
		res:  res,
		grid: base.Derive("UI Grid", pipeline.WithEntryPoints("vs_grid", "fs_line")),
		axis: base.Derive("UI Axis", pipeline.WithEntryPoints("vs_axis", "fs_line")),
	}
}

func (p *uiPass) ID() render_pass.PassID { return render_pass.PassUI }

func (p *uiPass) Setup() {
	_ = p.grid.Create(p.res.Device)
	_ = p.axis.Create(p.res.Device)
}

func (p *uiPass) Update(ctx render_pass.Context) {
	ctx.SetTarget(render_pass.PassUI, &device.TargetDescriptor{
		Label:  render_pass.PassUI.String(),
		Colors: []device.ColorAttachment{p.res.Frame.ColorAttachment()},
		Depth:  p.res.Frame.DepthAttachment(),
	})
}

func (p *uiPass) Draw(ctx render_pass.Context) {
	if p.grid.Ready() {
		ctx.Enqueue(render_pass.PassUI, 0, func(enc device.RenderEncoder) {
			if p.grid.Bind(enc) {
				enc.Draw(gridVertices, gridInstances, 0, 0)
			}
		})
	}
	if p.axis.Ready() {
		ctx.Enqueue(render_pass.PassUI, 1, func(enc device.RenderEncoder) {
			if p.axis.Bind(enc) {
				enc.Draw(gridVertices, axisInstances, 0, 0)
			}
		})
	}
}

func (p *uiPass) GlobalBind(device.RenderEncoder) {}

func (p *uiPass) Release() {
	p.grid.Release()
	p.axis.Release()
}
