package frame

import (
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device"
)

const (
	// ColorFormat is the format of the frame colour target.
	ColorFormat = device.FormatRGBA16Float

	// DepthStencilFormat is the format of the combined frame depth-stencil target.
	DepthStencilFormat = device.FormatDepth24PlusStencil8
)

// DefaultClearColor is the colour the frame target clears to.
var DefaultClearColor = device.Color{R: 0.1725, G: 0.1725, B: 0.1804, A: 1}

// Camera is the read-only view of the active camera sampled once per Advance.
type Camera interface {
	ViewMatrix() [16]float32
	ProjectionMatrix() [16]float32
	Position() [3]float32
	Near() float32
	Far() float32
}

// frameInfo is the implementation of the FrameInfo interface.
type frameInfo struct {
	mu *sync.Mutex

	dev    device.Device
	camera Camera
	clock  func() time.Time

	start   time.Time
	last    time.Time
	next    uint64
	counter uint64
	slot    int
	second  float64
	delta   float64

	width, height int
	clearColor    device.Color

	uniforms Uniforms

	stride        uint64
	uniformBuffer device.Buffer
	uniformLayout device.BindGroupLayout
	uniformGroup  device.BindGroup

	color         device.Texture
	depthStencil  device.Texture
	textureLayout device.BindGroupLayout
	textureGroup  device.BindGroup
}

// FrameInfo owns the per-frame state shared by every pass: the frame counter and
// slot, timing, the camera snapshot uploaded into a ring of FramesInFlight uniform
// copies, and the frame colour and depth-stencil targets.
//
// FrameInfo is driven by the frame loop goroutine.
type FrameInfo interface {
	// Advance starts a new frame. It increments the frame counter, selects the slot,
	// samples the clock and the camera once, carries the last view-projection into
	// the previous view-projection and writes the snapshot into the slot's copy of
	// the uniform buffer.
	Advance()

	// BindGlobal binds the current slot's uniforms at common.GroupFrame and, unless
	// the encoder renders into the frame colour texture, the frame textures at
	// common.GroupFrameTextures.
	//
	// Parameters:
	//   - enc: the encoder to bind into
	BindGlobal(enc device.RenderEncoder)

	// SetResolution reallocates the frame targets. Sizes below 1 are clamped to 1.
	// Panics if the device cannot allocate the targets.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	SetResolution(width, height int)

	// Frame returns the counter of the current frame, starting at 0 for the first Advance.
	//
	// Returns:
	//   - uint64: the frame counter
	Frame() uint64

	// Slot returns the ring slot of the current frame, Frame() % FramesInFlight.
	//
	// Returns:
	//   - int: the slot index
	Slot() int

	// Time returns the seconds since creation and since the previous frame, as sampled by the last Advance.
	//
	// Returns:
	//   - second: seconds since the FrameInfo was created
	//   - delta: seconds since the previous Advance, 0 on the first frame
	Time() (second, delta float64)

	// Resolution returns the size of the frame targets.
	//
	// Returns:
	//   - width, height: the size in pixels
	Resolution() (width, height int)

	// AspectRatio returns width / height.
	//
	// Returns:
	//   - float32: the aspect ratio
	AspectRatio() float32

	// Uniforms returns a copy of the last uploaded snapshot.
	//
	// Returns:
	//   - Uniforms: the snapshot
	Uniforms() Uniforms

	// Stride returns the aligned size of one uniform copy.
	//
	// Returns:
	//   - uint64: the stride in bytes
	Stride() uint64

	// ColorTexture returns the frame colour target.
	//
	// Returns:
	//   - device.Texture: the colour texture
	ColorTexture() device.Texture

	// DepthStencilTexture returns the combined frame depth-stencil target.
	//
	// Returns:
	//   - device.Texture: the depth-stencil texture
	DepthStencilTexture() device.Texture

	// UniformLayout returns the layout of the group bound at common.GroupFrame.
	//
	// Returns:
	//   - device.BindGroupLayout: the layout
	UniformLayout() device.BindGroupLayout

	// TextureLayout returns the layout of the group bound at common.GroupFrameTextures.
	//
	// Returns:
	//   - device.BindGroupLayout: the layout
	TextureLayout() device.BindGroupLayout

	// ColorAttachment returns a copy of the frame colour attachment, loading and
	// storing by default. Callers may change the copy freely.
	//
	// Returns:
	//   - device.ColorAttachment: the attachment
	ColorAttachment() device.ColorAttachment

	// DepthAttachment returns a copy of the frame depth attachment. It clears to 0
	// for reverse-Z depth.
	//
	// Returns:
	//   - *device.DepthAttachment: the attachment
	DepthAttachment() *device.DepthAttachment

	// StencilAttachment returns a copy of the frame stencil attachment. It clears to StencilEmpty.
	//
	// Returns:
	//   - *device.StencilAttachment: the attachment
	StencilAttachment() *device.StencilAttachment

	// Target returns a new descriptor rendering into the frame colour, depth and stencil attachments.
	//
	// Parameters:
	//   - label: the descriptor label
	//
	// Returns:
	//   - *device.TargetDescriptor: the descriptor
	Target(label string) *device.TargetDescriptor

	// Release frees every device object owned by the FrameInfo.
	Release()
}

var _ FrameInfo = &frameInfo{}

// NewFrameInfo creates a FrameInfo with its uniform ring and targets allocated.
// Panics if the device cannot allocate them.
//
// Parameters:
//   - dev: the device
//   - width, height: the initial resolution
//   - cam: the camera sampled every Advance
//   - options: functional options to configure the frame state
//
// Returns:
//   - FrameInfo: the new frame state
func NewFrameInfo(dev device.Device, width, height int, cam Camera, options ...FrameInfoBuilderOption) FrameInfo {
	f := &frameInfo{
		mu:         &sync.Mutex{},
		dev:        dev,
		camera:     cam,
		clock:      time.Now,
		clearColor: DefaultClearColor,
	}
	for _, option := range options {
		option(f)
	}

	f.start = f.clock()
	f.last = f.start
	id := common.Identity4()
	f.uniforms.ViewProjection = id
	f.uniforms.PreviousViewProjection = id

	f.allocateUniforms()
	f.SetResolution(width, height)
	return f
}

func (f *frameInfo) allocateUniforms() {
	size := uint64(f.uniforms.Size())
	f.stride = common.RoundUp(size, common.UniformAlignment)

	buf, err := f.dev.CreateBuffer(device.BufferDescriptor{
		Label: "Frame Uniforms",
		Size:  f.stride * common.FramesInFlight,
		Usage: device.BufferUsageUniform | device.BufferUsageCopyDst,
	})
	if err != nil {
		panic(fmt.Errorf("frame: failed to allocate uniform ring: %w", err))
	}
	f.uniformBuffer = buf

	f.uniformLayout, err = f.dev.CreateBindGroupLayout(device.BindGroupLayoutDescriptor{
		Label: "Frame Uniforms Layout",
		Entries: []device.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: device.StageVertex | device.StageFragment,
			Kind:       device.BindingUniformBuffer,
			Dynamic:    true,
			MinSize:    size,
		}},
	})
	if err != nil {
		panic(fmt.Errorf("frame: failed to create uniform layout: %w", err))
	}

	f.uniformGroup, err = f.dev.CreateBindGroup(device.BindGroupDescriptor{
		Label:   "Frame Uniforms",
		Layout:  f.uniformLayout,
		Entries: []device.BindGroupEntry{{Binding: 0, Buffer: buf, Size: size}},
	})
	if err != nil {
		panic(fmt.Errorf("frame: failed to create uniform bind group: %w", err))
	}

	f.textureLayout, err = f.dev.CreateBindGroupLayout(device.BindGroupLayoutDescriptor{
		Label: "Frame Textures Layout",
		Entries: []device.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: device.StageFragment,
			Kind:       device.BindingTexture,
		}},
	})
	if err != nil {
		panic(fmt.Errorf("frame: failed to create texture layout: %w", err))
	}
}

func (f *frameInfo) Advance() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.counter = f.next
	f.next++
	f.slot = int(f.counter % common.FramesInFlight)

	now := f.clock()
	second := now.Sub(f.start).Seconds()
	delta := now.Sub(f.last).Seconds()
	if f.counter == 0 {
		delta = 0
	}
	f.last = now
	f.second, f.delta = second, delta

	u := &f.uniforms
	u.PreviousViewProjection = u.ViewProjection
	if f.camera != nil {
		u.View = f.camera.ViewMatrix()
		u.Projection = f.camera.ProjectionMatrix()
		u.CameraPosition = f.camera.Position()
		u.Near = f.camera.Near()
		u.Far = f.camera.Far()
	} else {
		u.View = common.Identity4()
		u.Projection = common.Identity4()
	}
	common.Mul4(u.ViewProjection[:], u.Projection[:], u.View[:])
	invertOrIdentity(u.InverseView[:], u.View[:])
	invertOrIdentity(u.InverseProjection[:], u.Projection[:])
	invertOrIdentity(u.InverseViewProjection[:], u.ViewProjection[:])

	u.Resolution = [2]float32{float32(f.width), float32(f.height)}
	u.AspectRatio = float32(f.width) / float32(f.height)
	u.Time = float32(second)
	u.Delta = float32(delta)
	u.Frame = uint32(f.counter)

	f.dev.WriteBuffer(f.uniformBuffer, uint64(common.SlotOffset(f.slot, f.stride)), u.Marshal())
}

func invertOrIdentity(out, m []float32) {
	if !common.Invert4(out, m) {
		id := common.Identity4()
		copy(out, id[:])
	}
}

func (f *frameInfo) BindGlobal(enc device.RenderEncoder) {
	f.mu.Lock()
	defer f.mu.Unlock()

	enc.SetBindGroup(common.GroupFrame, f.uniformGroup, []uint32{common.SlotOffset(f.slot, f.stride)})
	if target := enc.Target(); target == nil || !target.Writes(f.color) {
		enc.SetBindGroup(common.GroupFrameTextures, f.textureGroup, nil)
	}
}

func (f *frameInfo) SetResolution(width, height int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	width, height = max(width, 1), max(height, 1)
	f.releaseTargets()

	var err error
	f.color, err = f.dev.CreateTexture(device.TextureDescriptor{
		Label:  "Frame Color",
		Width:  uint32(width),
		Height: uint32(height),
		Format: ColorFormat,
		Usage:  device.TextureUsageRenderAttachment | device.TextureUsageTextureBinding,
	})
	if err != nil {
		panic(fmt.Errorf("frame: failed to allocate %dx%d colour target: %w", width, height, err))
	}

	f.depthStencil, err = f.dev.CreateTexture(device.TextureDescriptor{
		Label:  "Frame Depth Stencil",
		Width:  uint32(width),
		Height: uint32(height),
		Format: DepthStencilFormat,
		Usage:  device.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(fmt.Errorf("frame: failed to allocate %dx%d depth-stencil target: %w", width, height, err))
	}

	f.textureGroup, err = f.dev.CreateBindGroup(device.BindGroupDescriptor{
		Label:   "Frame Textures",
		Layout:  f.textureLayout,
		Entries: []device.BindGroupEntry{{Binding: 0, Texture: f.color}},
	})
	if err != nil {
		panic(fmt.Errorf("frame: failed to create texture bind group: %w", err))
	}

	f.width, f.height = width, height
}

func (f *frameInfo) releaseTargets() {
	if f.textureGroup != nil {
		f.textureGroup.Release()
		f.textureGroup = nil
	}
	if f.color != nil {
		f.color.Release()
		f.color = nil
	}
	if f.depthStencil != nil {
		f.depthStencil.Release()
		f.depthStencil = nil
	}
}

func (f *frameInfo) Frame() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counter
}

func (f *frameInfo) Slot() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slot
}

func (f *frameInfo) Time() (second, delta float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.second, f.delta
}

func (f *frameInfo) Resolution() (width, height int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.width, f.height
}

func (f *frameInfo) AspectRatio() float32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return float32(f.width) / float32(f.height)
}

func (f *frameInfo) Uniforms() Uniforms {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uniforms
}

func (f *frameInfo) Stride() uint64 {
	return f.stride
}

func (f *frameInfo) ColorTexture() device.Texture {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.color
}

func (f *frameInfo) DepthStencilTexture() device.Texture {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.depthStencil
}

func (f *frameInfo) UniformLayout() device.BindGroupLayout {
	return f.uniformLayout
}

func (f *frameInfo) TextureLayout() device.BindGroupLayout {
	return f.textureLayout
}

func (f *frameInfo) ColorAttachment() device.ColorAttachment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return device.ColorAttachment{
		Texture:    f.color,
		Load:       device.LoadActionLoad,
		Store:      device.StoreActionStore,
		ClearColor: f.clearColor,
	}
}

func (f *frameInfo) DepthAttachment() *device.DepthAttachment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &device.DepthAttachment{
		Texture:    f.depthStencil,
		Load:       device.LoadActionLoad,
		Store:      device.StoreActionStore,
		ClearDepth: 0,
	}
}

func (f *frameInfo) StencilAttachment() *device.StencilAttachment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &device.StencilAttachment{
		Texture:      f.depthStencil,
		Load:         device.LoadActionLoad,
		Store:        device.StoreActionStore,
		ClearStencil: 0,
	}
}

func (f *frameInfo) Target(label string) *device.TargetDescriptor {
	return &device.TargetDescriptor{
		Label:   label,
		Colors:  []device.ColorAttachment{f.ColorAttachment()},
		Depth:   f.DepthAttachment(),
		Stencil: f.StencilAttachment(),
	}
}

func (f *frameInfo) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.releaseTargets()
	if f.uniformGroup != nil {
		f.uniformGroup.Release()
		f.uniformGroup = nil
	}
	if f.uniformBuffer != nil {
		f.uniformBuffer.Release()
		f.uniformBuffer = nil
	}
	if f.uniformLayout != nil {
		f.uniformLayout.Release()
		f.uniformLayout = nil
	}
	if f.textureLayout != nil {
		f.textureLayout.Release()
		f.textureLayout = nil
	}
}
