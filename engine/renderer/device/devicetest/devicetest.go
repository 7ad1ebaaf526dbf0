// Package devicetest provides an in-memory device.Device that records every
// command it receives. GPU completion is driven explicitly by the test through
// Complete, in submission order.
package devicetest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device"
)

// ErrInjected is returned by every creation call whose failure switch is set.
var ErrInjected = errors.New("devicetest: injected failure")

// Device is a recording device.Device.
type Device struct {
	mu *sync.Mutex

	// Failure switches. Each makes the matching creation call return ErrInjected.
	FailCommandBuffers bool
	FailBuffers        bool
	FailTextures       bool
	FailPipelines      bool
	FailCommits        bool

	commandBuffers []*CommandBuffer
	encoders       []*Encoder
	buffers        []*Buffer
	textures       []*Texture
	pipelines      []*Pipeline
	bindGroups     []*BindGroup
	pending        []*CommandBuffer
	released       bool
}

var _ device.Device = &Device{}

// New creates an empty recording device.
//
// Returns:
//   - *Device: the device
func New() *Device {
	return &Device{mu: &sync.Mutex{}}
}

func (d *Device) CreateCommandBuffer() (device.CommandBuffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailCommandBuffers {
		return nil, ErrInjected
	}
	cb := &CommandBuffer{dev: d, Index: len(d.commandBuffers)}
	d.commandBuffers = append(d.commandBuffers, cb)
	return cb, nil
}

func (d *Device) CreateBuffer(desc device.BufferDescriptor) (device.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailBuffers {
		return nil, ErrInjected
	}
	b := &Buffer{Desc: desc, Data: make([]byte, desc.Size)}
	d.buffers = append(d.buffers, b)
	return b, nil
}

func (d *Device) CreateTexture(desc device.TextureDescriptor) (device.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailTextures {
		return nil, ErrInjected
	}
	t := NewTexture(desc.Label, desc.Width, desc.Height, desc.Format)
	d.textures = append(d.textures, t)
	return t, nil
}

func (d *Device) CreateBindGroupLayout(desc device.BindGroupLayoutDescriptor) (device.BindGroupLayout, error) {
	return &BindGroupLayout{Desc: desc}, nil
}

func (d *Device) CreateBindGroup(desc device.BindGroupDescriptor) (device.BindGroup, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if desc.Layout == nil {
		return nil, fmt.Errorf("devicetest: bind group %q has no layout", desc.Label)
	}
	for _, e := range desc.Entries {
		if t, ok := e.Texture.(*Texture); ok && t.Released() {
			return nil, fmt.Errorf("devicetest: bind group %q references released texture %q", desc.Label, t.label)
		}
	}
	g := &BindGroup{Desc: desc}
	d.bindGroups = append(d.bindGroups, g)
	return g, nil
}

func (d *Device) CreateRenderPipeline(desc device.RenderPipelineDescriptor) (device.RenderPipeline, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailPipelines {
		return nil, ErrInjected
	}
	p := &Pipeline{Desc: desc}
	d.pipelines = append(d.pipelines, p)
	return p, nil
}

func (d *Device) WriteBuffer(buf device.Buffer, offset uint64, data []byte) {
	b, ok := buf.(*Buffer)
	if !ok {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if end := offset + uint64(len(data)); end > uint64(len(b.Data)) {
		grown := make([]byte, end)
		copy(grown, b.Data)
		b.Data = grown
	}
	copy(b.Data[offset:], data)
	b.Writes++
}

func (d *Device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.released = true
}

// Complete signals GPU completion for up to n of the oldest committed command
// buffers and runs their handlers on the calling goroutine.
//
// Parameters:
//   - n: the maximum number of buffers to complete
//
// Returns:
//   - int: the number of buffers completed
func (d *Device) Complete(n int) int {
	d.mu.Lock()
	if n > len(d.pending) {
		n = len(d.pending)
	}
	done := append([]*CommandBuffer(nil), d.pending[:n]...)
	d.pending = d.pending[n:]
	d.mu.Unlock()

	for _, cb := range done {
		cb.complete()
	}
	return n
}

// CompleteAll completes every committed command buffer.
//
// Returns:
//   - int: the number of buffers completed
func (d *Device) CompleteAll() int {
	return d.Complete(d.Pending())
}

// Pending returns the number of committed command buffers not yet completed.
func (d *Device) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// CommandBuffers returns every command buffer created so far, in creation order.
func (d *Device) CommandBuffers() []*CommandBuffer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*CommandBuffer(nil), d.commandBuffers...)
}

// Encoders returns every encoder created so far, in creation order.
func (d *Device) Encoders() []*Encoder {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Encoder(nil), d.encoders...)
}

// Textures returns every texture created so far, in creation order.
func (d *Device) Textures() []*Texture {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Texture(nil), d.textures...)
}

// Buffers returns every buffer created so far, in creation order.
func (d *Device) Buffers() []*Buffer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Buffer(nil), d.buffers...)
}

// Pipelines returns every pipeline created so far, in creation order.
func (d *Device) Pipelines() []*Pipeline {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Pipeline(nil), d.pipelines...)
}

// BindGroups returns every bind group created so far, in creation order.
func (d *Device) BindGroups() []*BindGroup {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*BindGroup(nil), d.bindGroups...)
}

// Released reports whether Release was called.
func (d *Device) Released() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.released
}

// CommandBuffer is a recording device.CommandBuffer.
type CommandBuffer struct {
	dev *Device

	Index     int
	Encoders  []*Encoder
	Presented device.Drawable
	Committed bool
	Completed bool

	handlers []func()
}

var _ device.CommandBuffer = &CommandBuffer{}

func (c *CommandBuffer) CreateEncoder(target *device.TargetDescriptor) (device.RenderEncoder, error) {
	if c.Committed {
		return nil, errors.New("devicetest: command buffer already committed")
	}
	if !target.Valid() {
		return nil, errors.New("devicetest: invalid render target")
	}
	for _, t := range targetTextures(target) {
		if t.Released() {
			return nil, fmt.Errorf("devicetest: target %q uses released texture %q", target.Label, t.label)
		}
	}
	e := &Encoder{target: target}
	c.dev.mu.Lock()
	c.dev.encoders = append(c.dev.encoders, e)
	c.dev.mu.Unlock()
	c.Encoders = append(c.Encoders, e)
	return e, nil
}

func (c *CommandBuffer) AddCompletedHandler(fn func()) {
	c.handlers = append(c.handlers, fn)
}

func (c *CommandBuffer) Present(d device.Drawable) {
	c.Presented = d
}

func (c *CommandBuffer) Commit() error {
	c.dev.mu.Lock()
	defer c.dev.mu.Unlock()
	if c.Committed {
		return errors.New("devicetest: command buffer already committed")
	}
	if c.dev.FailCommits {
		return ErrInjected
	}
	c.Committed = true
	c.dev.pending = append(c.dev.pending, c)
	return nil
}

func (c *CommandBuffer) complete() {
	c.Completed = true
	for _, fn := range c.handlers {
		fn()
	}
}

// Encoder is a recording device.RenderEncoder. Every call is appended to Calls
// in a short textual form.
type Encoder struct {
	target *device.TargetDescriptor

	Calls []string
	Ended bool
}

var _ device.RenderEncoder = &Encoder{}

func (e *Encoder) Target() *device.TargetDescriptor { return e.target }

func (e *Encoder) PushDebugGroup(label string) {
	e.record("push %s", label)
}

func (e *Encoder) PopDebugGroup() {
	e.record("pop")
}

func (e *Encoder) SetPipeline(p device.RenderPipeline) {
	e.record("pipeline %s", p.Label())
}

func (e *Encoder) SetBindGroup(index uint32, group device.BindGroup, dynamicOffsets []uint32) {
	if len(dynamicOffsets) > 0 {
		e.record("bind %d %s %v", index, group.Label(), dynamicOffsets)
		return
	}
	e.record("bind %d %s", index, group.Label())
}

func (e *Encoder) SetStencilReference(ref uint32) {
	e.record("stencil %d", ref)
}

func (e *Encoder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	e.record("draw %d %d", vertexCount, instanceCount)
}

func (e *Encoder) End() {
	e.record("end")
	e.Ended = true
}

func (e *Encoder) record(format string, args ...any) {
	if e.Ended {
		panic("devicetest: command recorded after End")
	}
	e.Calls = append(e.Calls, fmt.Sprintf(format, args...))
}

// Count returns the number of recorded calls starting with prefix.
func (e *Encoder) Count(prefix string) int {
	n := 0
	for _, c := range e.Calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

// Buffer is a recording device.Buffer whose contents are kept in memory.
type Buffer struct {
	Desc     device.BufferDescriptor
	Data     []byte
	Writes   int
	released bool
}

func (b *Buffer) Label() string  { return b.Desc.Label }
func (b *Buffer) Size() uint64   { return b.Desc.Size }
func (b *Buffer) Release()       { b.released = true }
func (b *Buffer) Released() bool { return b.released }

// Texture is a recording device.Texture.
type Texture struct {
	label    string
	width    uint32
	height   uint32
	format   device.PixelFormat
	released bool
}

// NewTexture creates a free-standing texture, for drawables and hand-built targets.
func NewTexture(label string, width, height uint32, format device.PixelFormat) *Texture {
	return &Texture{label: label, width: width, height: height, format: format}
}

func (t *Texture) Label() string              { return t.label }
func (t *Texture) Width() uint32              { return t.width }
func (t *Texture) Height() uint32             { return t.height }
func (t *Texture) Format() device.PixelFormat { return t.format }
func (t *Texture) Release()                   { t.released = true }
func (t *Texture) Released() bool             { return t.released }

// BindGroupLayout is a recording device.BindGroupLayout.
type BindGroupLayout struct {
	Desc device.BindGroupLayoutDescriptor
}

func (l *BindGroupLayout) Label() string { return l.Desc.Label }
func (l *BindGroupLayout) Release()      {}

// BindGroup is a recording device.BindGroup.
type BindGroup struct {
	Desc     device.BindGroupDescriptor
	released bool
}

func (g *BindGroup) Label() string  { return g.Desc.Label }
func (g *BindGroup) Release()       { g.released = true }
func (g *BindGroup) Released() bool { return g.released }

// Pipeline is a recording device.RenderPipeline.
type Pipeline struct {
	Desc     device.RenderPipelineDescriptor
	released bool
}

func (p *Pipeline) Label() string  { return p.Desc.Label }
func (p *Pipeline) Release()       { p.released = true }
func (p *Pipeline) Released() bool { return p.released }

// Surface is a device.Surface whose drawable availability is set by the test.
type Surface struct {
	// Available controls whether CurrentDrawable returns a drawable.
	Available bool

	Width, Height int
	Acquired      int

	format   device.PixelFormat
	drawable *Drawable
}

var _ device.Surface = &Surface{}

// NewSurface creates a surface with a drawable available.
func NewSurface(width, height int) *Surface {
	return &Surface{
		Available: true,
		Width:     width,
		Height:    height,
		format:    device.FormatBGRA8UnormSrgb,
	}
}

func (s *Surface) CurrentDrawable() (device.Drawable, bool) {
	if !s.Available {
		return nil, false
	}
	if s.drawable == nil {
		s.Acquired++
		s.drawable = &Drawable{texture: NewTexture("Drawable", uint32(s.Width), uint32(s.Height), s.format)}
	}
	return s.drawable, true
}

func (s *Surface) Format() device.PixelFormat { return s.format }

func (s *Surface) Configure(width, height int) {
	s.Width, s.Height = width, height
	s.drawable = nil
}

// NextFrame drops the current drawable so the next CurrentDrawable acquires a new one.
func (s *Surface) NextFrame() {
	s.drawable = nil
}

// Drawable is a recording device.Drawable.
type Drawable struct {
	texture *Texture
}

func (d *Drawable) Texture() device.Texture { return d.texture }

func targetTextures(t *device.TargetDescriptor) []*Texture {
	var out []*Texture
	add := func(tex device.Texture) {
		if ft, ok := tex.(*Texture); ok {
			out = append(out, ft)
		}
	}
	for _, c := range t.Colors {
		add(c.Texture)
	}
	if ds := t.DepthStencilTexture(); ds != nil {
		add(ds)
	}
	return out
}
