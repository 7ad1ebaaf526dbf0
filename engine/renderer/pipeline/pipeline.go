package pipeline

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/shader"
)

// ErrNoShader is returned by Create when the pipeline has no shader.
var ErrNoShader = errors.New("pipeline: no shader")

// pipeline is the implementation of the Pipeline interface.
// It holds the descriptor state set by the builder options and the compiled
// device pipeline, which stays absent until Create succeeds.
type pipeline struct {
	mu *sync.Mutex

	// key is the unique identifier for this pipeline, used as the device label
	key string

	shader        shader.Shader
	vertexEntry   string
	fragmentEntry string

	colorFormats []device.PixelFormat
	blendEnabled bool
	cullMode     device.CullMode
	topology     device.Topology
	layouts      []device.BindGroupLayout

	// The depth-stencil state applies only when depthFormat is set.

	depthFormat  device.PixelFormat
	depthWrite   bool
	depthCompare device.CompareFunction
	stencil      device.StencilState

	state device.RenderPipeline
}

// Pipeline is a render pipeline description together with its compiled state.
//
// Compilation failure is not fatal: the state stays absent, Bind reports false and
// the owner skips the draws that need it.
type Pipeline interface {
	// Key returns the unique key associated with this pipeline.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	Key() string

	// Shader returns the shader the pipeline is built from, or nil.
	//
	// Returns:
	//   - shader.Shader: the shader
	Shader() shader.Shader

	// Descriptor returns the device description of the pipeline.
	//
	// Returns:
	//   - device.RenderPipelineDescriptor: the description
	Descriptor() device.RenderPipelineDescriptor

	// Derive returns an uncompiled copy of the pipeline's description under a new
	// key, with opts applied on top.
	//
	// Parameters:
	//   - key: the key of the copy
	//   - opts: options applied to the copy
	//
	// Returns:
	//   - Pipeline: the copy
	Derive(key string, opts ...PipelineBuilderOption) Pipeline

	// Create compiles the pipeline on dev, replacing any previous state. On error
	// the state is left absent and the error is logged.
	//
	// Parameters:
	//   - dev: the device
	//
	// Returns:
	//   - error: an error if the description is incomplete or compilation failed
	Create(dev device.Device) error

	// Ready reports whether the pipeline has a compiled state.
	//
	// Returns:
	//   - bool: true if Bind would succeed
	Ready() bool

	// Bind sets the compiled state on enc.
	//
	// Parameters:
	//   - enc: the encoder
	//
	// Returns:
	//   - bool: false if the state is absent and nothing was bound
	Bind(enc device.RenderEncoder) bool

	// Release frees the compiled state. The description is kept so Create can run again.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates an uncompiled render pipeline. Defaults: entry points
// vs_main and fs_main, triangle list, no culling, no blending, no depth-stencil.
//
// Parameters:
//   - key: the unique key for this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: the new pipeline
func NewPipeline(key string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		mu:            &sync.Mutex{},
		key:           key,
		vertexEntry:   "vs_main",
		fragmentEntry: "fs_main",
		cullMode:      device.CullNone,
		topology:      device.TopologyTriangleList,
		depthCompare:  device.CompareAlways,
		stencil:       device.StencilState{Compare: device.CompareAlways, PassOp: device.StencilKeep},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Key() string {
	return p.key
}

func (p *pipeline) Shader() shader.Shader {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shader
}

func (p *pipeline) Descriptor() device.RenderPipelineDescriptor {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.descriptor()
}

func (p *pipeline) descriptor() device.RenderPipelineDescriptor {
	desc := device.RenderPipelineDescriptor{
		Label:            p.key,
		VertexEntry:      p.vertexEntry,
		FragmentEntry:    p.fragmentEntry,
		Topology:         p.topology,
		CullMode:         p.cullMode,
		BindGroupLayouts: append([]device.BindGroupLayout(nil), p.layouts...),
	}
	if p.shader != nil {
		desc.Source = p.shader.Source()
	}
	for _, f := range p.colorFormats {
		desc.ColorTargets = append(desc.ColorTargets, device.ColorTargetState{Format: f, Blend: p.blendEnabled})
	}
	if p.depthFormat != device.FormatUndefined {
		desc.DepthStencil = &device.DepthStencilState{
			Format:       p.depthFormat,
			DepthWrite:   p.depthWrite,
			DepthCompare: p.depthCompare,
			Stencil:      p.stencil,
		}
	}
	return desc
}

func (p *pipeline) Derive(key string, opts ...PipelineBuilderOption) Pipeline {
	p.mu.Lock()
	c := &pipeline{
		mu:            &sync.Mutex{},
		key:           key,
		shader:        p.shader,
		vertexEntry:   p.vertexEntry,
		fragmentEntry: p.fragmentEntry,
		colorFormats:  append([]device.PixelFormat(nil), p.colorFormats...),
		blendEnabled:  p.blendEnabled,
		cullMode:      p.cullMode,
		topology:      p.topology,
		layouts:       append([]device.BindGroupLayout(nil), p.layouts...),
		depthFormat:   p.depthFormat,
		depthWrite:    p.depthWrite,
		depthCompare:  p.depthCompare,
		stencil:       p.stencil,
	}
	p.mu.Unlock()

	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (p *pipeline) Create(dev device.Device) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.releaseState()
	if err := p.validate(); err != nil {
		log.Printf("[Pipeline] %s disabled: %v", p.key, err)
		return err
	}
	state, err := dev.CreateRenderPipeline(p.descriptor())
	if err != nil {
		err = fmt.Errorf("pipeline: failed to compile %q: %w", p.key, err)
		log.Printf("[Pipeline] %s disabled: %v", p.key, err)
		return err
	}
	p.state = state
	return nil
}

func (p *pipeline) validate() error {
	if p.shader == nil {
		return ErrNoShader
	}
	if g := p.shader.MaxGroup(); g >= len(p.layouts) {
		return fmt.Errorf("pipeline: shader %q uses group %d but %d layouts are set", p.shader.Key(), g, len(p.layouts))
	}
	for i, l := range p.layouts {
		if l == nil {
			return fmt.Errorf("pipeline: layout %d is missing", i)
		}
	}
	if len(p.colorFormats) == 0 && p.depthFormat == device.FormatUndefined {
		return errors.New("pipeline: no colour or depth-stencil output")
	}
	return nil
}

func (p *pipeline) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state != nil
}

func (p *pipeline) Bind(enc device.RenderEncoder) bool {
	p.mu.Lock()
	state := p.state
	p.mu.Unlock()

	if state == nil || enc == nil {
		return false
	}
	enc.SetPipeline(state)
	return true
}

func (p *pipeline) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.releaseState()
}

func (p *pipeline) releaseState() {
	if p.state != nil {
		p.state.Release()
		p.state = nil
	}
}
