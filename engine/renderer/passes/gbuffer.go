package passes

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/frame"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/render_pass"
)

var gbufferLabels = [3]string{"GBuffer Albedo", "GBuffer Normal", "GBuffer Position"}

// gbufferPass owns the geometry buffer textures the scene renders into.
type gbufferPass struct {
	res      *Resources
	template pipeline.Pipeline
	textures [3]device.Texture
	group    device.BindGroup
}

// GBufferPass is the geometry pass. Scenes enqueue their draws for PassGBuffer with
// pipelines derived from Pipeline, and the pass stamps StencilGBuffer on every
// fragment they draw.
type GBufferPass interface {
	render_pass.RenderPass

	// Pipeline returns the uncompiled template scene pipelines derive from. It fixes
	// the colour formats, the depth-stencil state and layouts for groups 0 and 1.
	//
	// Returns:
	//   - pipeline.Pipeline: the template
	Pipeline() pipeline.Pipeline

	// Textures returns the albedo, normal and position targets built by the last Setup.
	//
	// Returns:
	//   - [3]device.Texture: the targets
	Textures() [3]device.Texture
}

var _ GBufferPass = &gbufferPass{}

// NewGBufferPass creates the geometry pass.
//
// Parameters:
//   - res: the shared resources
//
// Returns:
//   - GBufferPass: the pass
func NewGBufferPass(res *Resources) GBufferPass {
	return &gbufferPass{
		res: res,
		template: pipeline.NewPipeline(render_pass.PassGBuffer.String(),
			pipeline.WithColorFormats(GBufferFormats[:]...),
			pipeline.WithDepthStencil(frame.DepthStencilFormat),
			pipeline.WithBindGroupLayouts(res.Layouts(common.GroupLights)...),
		),
	}
}

func (p *gbufferPass) ID() render_pass.PassID { return render_pass.PassGBuffer }

func (p *gbufferPass) Pipeline() pipeline.Pipeline { return p.template }

func (p *gbufferPass) Textures() [3]device.Texture { return p.textures }

// Setup reallocates the targets at the frame resolution. Panics if the device cannot.
func (p *gbufferPass) Setup() {
	p.Release()

	w, h := p.res.Frame.Resolution()
	entries := make([]device.BindGroupEntry, len(p.textures))
	for i := range p.textures {
		tex, err := p.res.Device.CreateTexture(device.TextureDescriptor{
			Label:  gbufferLabels[i],
			Width:  uint32(w),
			Height: uint32(h),
			Format: GBufferFormats[i],
			Usage:  device.TextureUsageRenderAttachment | device.TextureUsageTextureBinding,
		})
		if err != nil {
			panic(fmt.Errorf("passes: failed to allocate %s: %w", gbufferLabels[i], err))
		}
		p.textures[i] = tex
		entries[i] = device.BindGroupEntry{Binding: uint32(i), Texture: tex}
	}

	group, err := p.res.Device.CreateBindGroup(device.BindGroupDescriptor{
		Label:   "GBuffer Textures",
		Layout:  p.res.GBufferLayout,
		Entries: entries,
	})
	if err != nil {
		panic(fmt.Errorf("passes: failed to create gbuffer bind group: %w", err))
	}
	p.group = group
}

func (p *gbufferPass) Update(ctx render_pass.Context) {
	if p.group == nil {
		return
	}
	target := &device.TargetDescriptor{
		Label:   render_pass.PassGBuffer.String(),
		Depth:   p.res.Frame.DepthAttachment(),
		Stencil: p.res.Frame.StencilAttachment(),
	}
	for _, tex := range p.textures {
		target.Colors = append(target.Colors, device.ColorAttachment{
			Texture: tex,
			Load:    device.LoadActionDontCare,
			Store:   device.StoreActionStore,
		})
	}
	ctx.SetTarget(render_pass.PassGBuffer, target)
}

// Draw sets the stencil reference ahead of the scene's geometry.
func (p *gbufferPass) Draw(ctx render_pass.Context) {
	ctx.Enqueue(render_pass.PassGBuffer, 0, func(enc device.RenderEncoder) {
		enc.SetStencilReference(uint32(render_pass.StencilGBuffer))
	})
}

// GlobalBind binds the geometry buffer for every encoder that does not render into it.
func (p *gbufferPass) GlobalBind(enc device.RenderEncoder) {
	if p.group == nil {
		return
	}
	target := enc.Target()
	for _, tex := range p.textures {
		if target.Writes(tex) {
			return
		}
	}
	enc.SetBindGroup(common.GroupGBuffer, p.group, nil)
}

func (p *gbufferPass) Release() {
	if p.group != nil {
		p.group.Release()
		p.group = nil
	}
	for i, tex := range p.textures {
		if tex != nil {
			tex.Release()
			p.textures[i] = nil
		}
	}
}
