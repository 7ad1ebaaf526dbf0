package pipeline

import (
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/shader"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithShader sets the shader module holding the pipeline's entry points.
//
// Parameters:
//   - s: the shader
//
// Returns:
//   - PipelineBuilderOption: a function that sets the shader
func WithShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.shader = s
	}
}

// WithEntryPoints sets the vertex and fragment entry point names.
//
// Parameters:
//   - vertex: the vertex entry point
//   - fragment: the fragment entry point
//
// Returns:
//   - PipelineBuilderOption: a function that sets the entry points
func WithEntryPoints(vertex, fragment string) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexEntry = vertex
		p.fragmentEntry = fragment
	}
}

// WithColorFormats sets one colour output per format, in attachment order.
//
// Parameters:
//   - formats: the colour attachment formats
//
// Returns:
//   - PipelineBuilderOption: a function that sets the colour outputs
func WithColorFormats(formats ...device.PixelFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		p.colorFormats = append([]device.PixelFormat(nil), formats...)
	}
}

// WithBlending enables source-alpha over blending on every colour output.
//
// Returns:
//   - PipelineBuilderOption: a function that enables blending
func WithBlending() PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendEnabled = true
	}
}

// WithDepth enables a reverse-Z depth test that writes depth: nearer fragments
// have greater depth values and pass with CompareGreater.
//
// Parameters:
//   - format: the depth attachment format
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth state
func WithDepth(format device.PixelFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthFormat = format
		p.depthWrite = true
		p.depthCompare = device.CompareGreater
	}
}

// WithDepthCheck tests depth without writing it. Fragments pass where depth differs
// from the cleared value.
//
// Parameters:
//   - format: the depth attachment format
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth state
func WithDepthCheck(format device.PixelFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthFormat = format
		p.depthWrite = false
		p.depthCompare = device.CompareNotEqual
	}
}

// WithStencil writes the stencil reference where fragments are drawn, with depth writes on.
//
// Parameters:
//   - format: the depth-stencil attachment format
//   - op: the operation applied when the stencil test passes
//
// Returns:
//   - PipelineBuilderOption: a function that sets the stencil state
func WithStencil(format device.PixelFormat, op device.StencilOperation) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthFormat = format
		p.depthWrite = true
		p.stencil = device.StencilState{Compare: device.CompareAlways, PassOp: op}
	}
}

// WithStencilCheck passes only fragments whose stencil value equals the reference.
// Depth is neither tested nor written.
//
// Parameters:
//   - format: the depth-stencil attachment format
//
// Returns:
//   - PipelineBuilderOption: a function that sets the stencil state
func WithStencilCheck(format device.PixelFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthFormat = format
		p.depthWrite = false
		p.depthCompare = device.CompareAlways
		p.stencil = device.StencilState{Compare: device.CompareEqual, PassOp: device.StencilKeep}
	}
}

// WithDepthStencil combines WithDepth and WithStencil with a replace operation: the
// pipeline writes depth and stamps the stencil reference on every drawn fragment.
//
// Parameters:
//   - format: the depth-stencil attachment format
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth-stencil state
func WithDepthStencil(format device.PixelFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		WithDepth(format)(p)
		p.stencil = device.StencilState{Compare: device.CompareAlways, PassOp: device.StencilReplace}
	}
}

// WithTopology sets the primitive topology.
//
// Parameters:
//   - t: the topology
//
// Returns:
//   - PipelineBuilderOption: a function that sets the topology
func WithTopology(t device.Topology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = t
	}
}

// WithCullMode sets which faces are culled.
//
// Parameters:
//   - mode: the cull mode
//
// Returns:
//   - PipelineBuilderOption: a function that sets the cull mode
func WithCullMode(mode device.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithBindGroupLayouts sets the pipeline layout, one layout per group index from 0.
//
// Parameters:
//   - layouts: the bind group layouts
//
// Returns:
//   - PipelineBuilderOption: a function that sets the layouts
func WithBindGroupLayouts(layouts ...device.BindGroupLayout) PipelineBuilderOption {
	return func(p *pipeline) {
		p.layouts = append([]device.BindGroupLayout(nil), layouts...)
	}
}
