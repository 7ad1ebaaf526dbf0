package passes

import (
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/render_pass"
)

// clearPass clears the frame colour, depth and stencil at the start of the frame.
type clearPass struct {
	res *Resources
}

var _ render_pass.RenderPass = &clearPass{}

// NewClearPass creates the pass that clears the frame targets. Depth clears to 0
// for the reverse-Z depth test and stencil to StencilEmpty.
//
// Parameters:
//   - res: the shared resources
//
// Returns:
//   - render_pass.RenderPass: the pass
func NewClearPass(res *Resources) render_pass.RenderPass {
	return &clearPass{res: res}
}

func (p *clearPass) ID() render_pass.PassID { return render_pass.PassClear }
func (p *clearPass) Setup()                 {}
func (p *clearPass) Release()               {}

func (p *clearPass) Update(ctx render_pass.Context) {
	target := p.res.Frame.Target(render_pass.PassClear.String())
	target.Colors[0].Load = device.LoadActionClear
	target.Depth.Load = device.LoadActionClear
	target.Stencil.Load = device.LoadActionClear
	target.Stencil.ClearStencil = uint32(render_pass.StencilEmpty)
	ctx.SetTarget(render_pass.PassClear, target)
}

// Draw enqueues an empty command so the encoder, and with it the clear, is created.
func (p *clearPass) Draw(ctx render_pass.Context) {
	ctx.Enqueue(render_pass.PassClear, 0, func(device.RenderEncoder) {})
}

func (p *clearPass) GlobalBind(device.RenderEncoder) {}
