package renderer

import (
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/commander"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/frame"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/passes"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/render_pass"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPasses replaces the built-in pass set. fn receives the shared resources and
// returns the passes in any order.
//
// Parameters:
//   - fn: the pass factory
//
// Returns:
//   - RendererBuilderOption: a function that applies the pass set option to a renderer
func WithPasses(fn func(res *passes.Resources) []render_pass.RenderPass) RendererBuilderOption {
	return func(r *renderer) {
		if fn != nil {
			r.passFactory = fn
		}
	}
}

// WithSize sets the initial frame resolution in pixels.
//
// Parameters:
//   - width: the initial width
//   - height: the initial height
//
// Returns:
//   - RendererBuilderOption: a function that applies the size option to a renderer
func WithSize(width, height int) RendererBuilderOption {
	return func(r *renderer) {
		r.initialWidth = max(width, 1)
		r.initialHeight = max(height, 1)
	}
}

// WithFrameOptions forwards options to the frame state.
//
// Parameters:
//   - opts: the frame state options
//
// Returns:
//   - RendererBuilderOption: a function that applies the frame options to a renderer
func WithFrameOptions(opts ...frame.FrameInfoBuilderOption) RendererBuilderOption {
	return func(r *renderer) {
		r.frameOptions = append(r.frameOptions, opts...)
	}
}

// WithCommanderOptions forwards options to the command session.
//
// Parameters:
//   - opts: the command session options
//
// Returns:
//   - RendererBuilderOption: a function that applies the commander options to a renderer
func WithCommanderOptions(opts ...commander.CommanderBuilderOption) RendererBuilderOption {
	return func(r *renderer) {
		r.commanderOpts = append(r.commanderOpts, opts...)
	}
}
