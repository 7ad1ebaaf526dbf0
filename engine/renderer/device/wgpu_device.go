package device

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// PresentMode controls how frames are delivered to the display.
type PresentMode int

const (
	// PresentModeVSync waits for the display's vertical blank (FIFO).
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents immediately, allowing tearing.
	PresentModeUncapped
)

// wgpuDevice is the WebGPU implementation of the WGPUDevice interface.
type wgpuDevice struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpuSurface

	label                string
	forceFallbackAdapter bool
	presentMode          wgpu.PresentMode

	// submitted wakes the poll goroutine after each queue submission.
	submitted chan struct{}
	quit      chan struct{}
	quitOnce  sync.Once
}

// WGPUDevice is a Device backed by WebGPU, bound to the presentation surface it was created for.
type WGPUDevice interface {
	Device

	// Surface returns the presentation surface, or nil if the device was created headless.
	//
	// Returns:
	//   - Surface: the presentation surface
	Surface() Surface

	// SetPresentMode changes the present mode applied on the next surface Configure.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)
}

var _ WGPUDevice = &wgpuDevice{}

// NewWGPUDevice creates the WebGPU instance, adapter, device and queue, and a
// surface from the given descriptor. The surface must be configured with
// Surface().Configure before the first frame.
//
// Failing to obtain an adapter or device is fatal and panics.
//
// Parameters:
//   - surfaceDescriptor: the platform surface descriptor, or nil for a headless device
//   - options: functional options for device configuration
//
// Returns:
//   - WGPUDevice: the ready device
func NewWGPUDevice(surfaceDescriptor *wgpu.SurfaceDescriptor, options ...WGPUDeviceBuilderOption) WGPUDevice {
	runtime.LockOSThread()
	d := &wgpuDevice{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		label:       "Main Device",
		presentMode: wgpu.PresentModeFifo,
		submitted:   make(chan struct{}, common.FramesInFlight),
		quit:        make(chan struct{}),
	}
	for _, opt := range options {
		opt(d)
	}

	var surface *wgpu.Surface
	if surfaceDescriptor != nil {
		surface = d.instance.CreateSurface(surfaceDescriptor)
	}

	a, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: d.forceFallbackAdapter,
		CompatibleSurface:    surface,
	})
	if err != nil {
		panic(fmt.Errorf("device: request adapter: %w", err))
	}
	d.adapter = a

	dev, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: d.label,
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		panic(fmt.Errorf("device: request device: %w", err))
	}
	d.device = dev
	d.queue = dev.GetQueue()

	if surface != nil {
		d.surface = &wgpuSurface{
			mu:      &sync.Mutex{},
			dev:     d,
			surface: surface,
		}
	}

	go d.pollLoop()

	return d
}

func (d *wgpuDevice) Surface() Surface {
	if d.surface == nil {
		return nil
	}
	return d.surface
}

func (d *wgpuDevice) SetPresentMode(mode PresentMode) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		d.presentMode = wgpu.PresentModeImmediate
	default:
		d.presentMode = wgpu.PresentModeFifo
	}
}

func (d *wgpuDevice) CreateCommandBuffer() (CommandBuffer, error) {
	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("device: create command encoder: %w", err)
	}
	return &wgpuCommandBuffer{dev: d, encoder: encoder}, nil
}

func (d *wgpuDevice) CreateBuffer(desc BufferDescriptor) (Buffer, error) {
	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: toBufferUsage(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("device: create buffer %q: %w", desc.Label, err)
	}
	return &wgpuBuffer{label: desc.Label, size: desc.Size, buffer: buf}, nil
}

func (d *wgpuDevice) CreateTexture(desc TextureDescriptor) (Texture, error) {
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        toWGPUFormat(desc.Format),
		Usage:         toTextureUsage(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("device: create texture %q: %w", desc.Label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("device: create view for %q: %w", desc.Label, err)
	}
	return &wgpuTexture{
		label:   desc.Label,
		width:   desc.Width,
		height:  desc.Height,
		format:  desc.Format,
		texture: tex,
		view:    view,
	}, nil
}

func (d *wgpuDevice) CreateBindGroupLayout(desc BindGroupLayoutDescriptor) (BindGroupLayout, error) {
	entries := make([]wgpu.BindGroupLayoutEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		entries[i] = toBindGroupLayoutEntry(e)
	}
	layout, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("device: create bind group layout %q: %w", desc.Label, err)
	}
	return &wgpuBindGroupLayout{label: desc.Label, layout: layout}, nil
}

func (d *wgpuDevice) CreateBindGroup(desc BindGroupDescriptor) (BindGroup, error) {
	layout, ok := desc.Layout.(*wgpuBindGroupLayout)
	if !ok || layout == nil {
		return nil, fmt.Errorf("device: bind group %q has no WebGPU layout", desc.Label)
	}

	entries := make([]wgpu.BindGroupEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		switch {
		case e.Buffer != nil:
			buf, ok := e.Buffer.(*wgpuBuffer)
			if !ok {
				return nil, fmt.Errorf("device: bind group %q binding %d: foreign buffer", desc.Label, e.Binding)
			}
			size := uint64(wgpu.WholeSize)
			if e.Size > 0 {
				size = e.Size
			}
			entries[i] = wgpu.BindGroupEntry{
				Binding: e.Binding,
				Buffer:  buf.buffer,
				Offset:  0,
				Size:    size,
			}
		case e.Texture != nil:
			tex, ok := e.Texture.(*wgpuTexture)
			if !ok {
				return nil, fmt.Errorf("device: bind group %q binding %d: foreign texture", desc.Label, e.Binding)
			}
			entries[i] = wgpu.BindGroupEntry{
				Binding:     e.Binding,
				TextureView: tex.view,
			}
		default:
			return nil, fmt.Errorf("device: bind group %q binding %d has no resource", desc.Label, e.Binding)
		}
	}

	group, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout.layout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("device: create bind group %q: %w", desc.Label, err)
	}
	return &wgpuBindGroup{label: desc.Label, group: group}, nil
}

func (d *wgpuDevice) CreateRenderPipeline(desc RenderPipelineDescriptor) (RenderPipeline, error) {
	module, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: desc.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: desc.Source,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("device: compile shader %q: %w", desc.Label, err)
	}
	defer module.Release()

	layouts := make([]*wgpu.BindGroupLayout, len(desc.BindGroupLayouts))
	for i, l := range desc.BindGroupLayouts {
		wl, ok := l.(*wgpuBindGroupLayout)
		if !ok || wl == nil {
			return nil, fmt.Errorf("device: pipeline %q: group %d has no WebGPU layout", desc.Label, i)
		}
		layouts[i] = wl.layout
	}

	pipelineLayout, err := d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, fmt.Errorf("device: create pipeline layout %q: %w", desc.Label, err)
	}
	defer pipelineLayout.Release()

	targets := make([]wgpu.ColorTargetState, len(desc.ColorTargets))
	for i, ct := range desc.ColorTargets {
		targets[i] = wgpu.ColorTargetState{
			Format:    toWGPUFormat(ct.Format),
			WriteMask: wgpu.ColorWriteMaskAll,
		}
		if ct.Blend {
			targets[i].Blend = overBlend
		}
	}

	var depthStencil *wgpu.DepthStencilState
	if ds := desc.DepthStencil; ds != nil {
		face := wgpu.StencilFaceState{
			Compare:     toCompareFunction(ds.Stencil.Compare),
			FailOp:      wgpu.StencilOperationKeep,
			DepthFailOp: wgpu.StencilOperationKeep,
			PassOp:      toStencilOperation(ds.Stencil.PassOp),
		}
		depthStencil = &wgpu.DepthStencilState{
			Format:            toWGPUFormat(ds.Format),
			DepthWriteEnabled: ds.DepthWrite,
			DepthCompare:      toCompareFunction(ds.DepthCompare),
			StencilFront:      face,
			StencilBack:       face,
			StencilReadMask:   0xFF,
			StencilWriteMask:  0xFF,
		}
	}

	created, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: desc.VertexEntry,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: desc.FragmentEntry,
			Targets:    targets,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  toTopology(desc.Topology),
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  toCullMode(desc.CullMode),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: depthStencil,
	})
	if err != nil {
		return nil, fmt.Errorf("device: create render pipeline %q: %w", desc.Label, err)
	}
	return &wgpuRenderPipeline{label: desc.Label, pipeline: created}, nil
}

func (d *wgpuDevice) WriteBuffer(buf Buffer, offset uint64, data []byte) {
	b, ok := buf.(*wgpuBuffer)
	if !ok || b == nil {
		return
	}
	d.queue.WriteBuffer(b.buffer, offset, data)
}

func (d *wgpuDevice) Release() {
	d.quitOnce.Do(func() {
		close(d.quit)
	})
	if d.surface != nil {
		d.surface.release()
	}
	d.queue.Release()
	d.device.Release()
	d.adapter.Release()
	d.instance.Release()
}

// notifySubmitted wakes the poll goroutine without blocking. A full channel means
// a poll is already pending and will observe this submission too.
func (d *wgpuDevice) notifySubmitted() {
	select {
	case d.submitted <- struct{}{}:
	default:
	}
}

// pollLoop drives the device after every submission so queue completion callbacks
// fire while the frame loop is blocked waiting for an in-flight slot.
func (d *wgpuDevice) pollLoop() {
	for {
		select {
		case <-d.quit:
			return
		case <-d.submitted:
			d.device.Poll(true, nil)
		}
	}
}

// wgpuCommandBuffer records all render passes of one frame into a single command encoder.
type wgpuCommandBuffer struct {
	dev       *wgpuDevice
	encoder   *wgpu.CommandEncoder
	handlers  []func()
	drawable  *wgpuDrawable
	committed bool
}

var _ CommandBuffer = &wgpuCommandBuffer{}

func (b *wgpuCommandBuffer) CreateEncoder(target *TargetDescriptor) (RenderEncoder, error) {
	if b.committed {
		return nil, errors.New("device: command buffer already committed")
	}
	if !target.Valid() {
		return nil, errors.New("device: invalid render target")
	}

	desc := &wgpu.RenderPassDescriptor{
		Label:            target.Label,
		ColorAttachments: make([]wgpu.RenderPassColorAttachment, 0, len(target.Colors)),
	}
	for _, c := range target.Colors {
		tex, ok := c.Texture.(*wgpuTexture)
		if !ok {
			return nil, errors.New("device: colour attachment is not a WebGPU texture")
		}
		desc.ColorAttachments = append(desc.ColorAttachments, wgpu.RenderPassColorAttachment{
			View:    tex.view,
			LoadOp:  toLoadOp(c.Load),
			StoreOp: toStoreOp(c.Store),
			ClearValue: wgpu.Color{
				R: c.ClearColor.R, G: c.ClearColor.G, B: c.ClearColor.B, A: c.ClearColor.A,
			},
		})
	}

	if ds := target.DepthStencilTexture(); ds != nil {
		tex, ok := ds.(*wgpuTexture)
		if !ok {
			return nil, errors.New("device: depth-stencil attachment is not a WebGPU texture")
		}
		att := &wgpu.RenderPassDepthStencilAttachment{View: tex.view}
		if tex.format.HasDepth() {
			att.DepthLoadOp, att.DepthStoreOp = wgpu.LoadOpLoad, wgpu.StoreOpStore
			if d := target.Depth; d != nil {
				att.DepthLoadOp = toLoadOp(d.Load)
				att.DepthStoreOp = toStoreOp(d.Store)
				att.DepthClearValue = d.ClearDepth
			}
		}
		if tex.format.HasStencil() {
			att.StencilLoadOp, att.StencilStoreOp = wgpu.LoadOpLoad, wgpu.StoreOpStore
			if s := target.Stencil; s != nil {
				att.StencilLoadOp = toLoadOp(s.Load)
				att.StencilStoreOp = toStoreOp(s.Store)
				att.StencilClearValue = s.ClearStencil
			}
		}
		desc.DepthStencilAttachment = att
	}

	return &wgpuRenderEncoder{
		target: target,
		pass:   b.encoder.BeginRenderPass(desc),
	}, nil
}

func (b *wgpuCommandBuffer) AddCompletedHandler(fn func()) {
	b.handlers = append(b.handlers, fn)
}

func (b *wgpuCommandBuffer) Present(d Drawable) {
	if wd, ok := d.(*wgpuDrawable); ok {
		b.drawable = wd
	}
}

func (b *wgpuCommandBuffer) Commit() error {
	if b.committed {
		return errors.New("device: command buffer already committed")
	}
	b.committed = true

	cb, err := b.encoder.Finish(nil)
	b.encoder.Release()
	if err != nil {
		return fmt.Errorf("device: finish command encoder: %w", err)
	}

	handlers := b.handlers
	b.dev.queue.Submit(cb)
	cb.Release()

	// Handlers run regardless of status: a lost submission must still return its in-flight slot.
	b.dev.queue.OnSubmittedWorkDone(func(wgpu.QueueWorkDoneStatus) {
		for _, fn := range handlers {
			fn()
		}
	})

	if b.drawable != nil && b.dev.surface != nil {
		b.dev.surface.present(b.drawable)
	}
	b.dev.notifySubmitted()
	return nil
}

// wgpuRenderEncoder wraps a render pass encoder.
type wgpuRenderEncoder struct {
	target *TargetDescriptor
	pass   *wgpu.RenderPassEncoder
}

var _ RenderEncoder = &wgpuRenderEncoder{}

func (e *wgpuRenderEncoder) Target() *TargetDescriptor {
	return e.target
}

func (e *wgpuRenderEncoder) PushDebugGroup(label string) {
	e.pass.PushDebugGroup(label)
}

func (e *wgpuRenderEncoder) PopDebugGroup() {
	e.pass.PopDebugGroup()
}

func (e *wgpuRenderEncoder) SetPipeline(p RenderPipeline) {
	if wp, ok := p.(*wgpuRenderPipeline); ok && wp != nil {
		e.pass.SetPipeline(wp.pipeline)
	}
}

func (e *wgpuRenderEncoder) SetBindGroup(index uint32, group BindGroup, dynamicOffsets []uint32) {
	if wg, ok := group.(*wgpuBindGroup); ok && wg != nil {
		e.pass.SetBindGroup(index, wg.group, dynamicOffsets)
	}
}

func (e *wgpuRenderEncoder) SetStencilReference(ref uint32) {
	e.pass.SetStencilReference(ref)
}

func (e *wgpuRenderEncoder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	e.pass.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (e *wgpuRenderEncoder) End() {
	e.pass.End()
	e.pass.Release()
}

type wgpuBuffer struct {
	label  string
	size   uint64
	buffer *wgpu.Buffer
}

func (b *wgpuBuffer) Label() string { return b.label }
func (b *wgpuBuffer) Size() uint64  { return b.size }
func (b *wgpuBuffer) Release()      { b.buffer.Release() }

type wgpuTexture struct {
	label   string
	width   uint32
	height  uint32
	format  PixelFormat
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func (t *wgpuTexture) Label() string       { return t.label }
func (t *wgpuTexture) Width() uint32       { return t.width }
func (t *wgpuTexture) Height() uint32      { return t.height }
func (t *wgpuTexture) Format() PixelFormat { return t.format }

func (t *wgpuTexture) Release() {
	t.view.Release()
	t.texture.Release()
}

type wgpuBindGroupLayout struct {
	label  string
	layout *wgpu.BindGroupLayout
}

func (l *wgpuBindGroupLayout) Label() string { return l.label }
func (l *wgpuBindGroupLayout) Release()      { l.layout.Release() }

type wgpuBindGroup struct {
	label string
	group *wgpu.BindGroup
}

func (g *wgpuBindGroup) Label() string { return g.label }
func (g *wgpuBindGroup) Release()      { g.group.Release() }

type wgpuRenderPipeline struct {
	label    string
	pipeline *wgpu.RenderPipeline
}

func (p *wgpuRenderPipeline) Label() string { return p.label }
func (p *wgpuRenderPipeline) Release()      { p.pipeline.Release() }
