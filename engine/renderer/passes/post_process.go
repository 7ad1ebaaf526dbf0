package passes

import (
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/render_pass"
)

// postProcessPass declares the frame colour as its target. It enqueues nothing of
// its own, so the replay skips it unless a scene adds commands.
type postProcessPass struct {
	res *Resources
}

var _ render_pass.RenderPass = &postProcessPass{}

// NewPostProcessPass creates the post processing pass.
//
// Parameters:
//   - res: the shared resources
//
// Returns:
//   - render_pass.RenderPass: the pass
func NewPostProcessPass(res *Resources) render_pass.RenderPass {
	return &postProcessPass{res: res}
}

func (p *postProcessPass) ID() render_pass.PassID          { return render_pass.PassPostProcess }
func (p *postProcessPass) Setup()                          {}
func (p *postProcessPass) Draw(render_pass.Context)        {}
func (p *postProcessPass) GlobalBind(device.RenderEncoder) {}
func (p *postProcessPass) Release()                        {}

func (p *postProcessPass) Update(ctx render_pass.Context) {
	ctx.SetTarget(render_pass.PassPostProcess, &device.TargetDescriptor{
		Label:  render_pass.PassPostProcess.String(),
		Colors: []device.ColorAttachment{p.res.Frame.ColorAttachment()},
	})
}
