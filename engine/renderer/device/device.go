// Package device defines the graphics device contract consumed by the frame
// orchestration packages, and its WebGPU implementation.
//
// Every object handed out by a Device is owned by the caller and must be released
// with Release once it is no longer referenced by in-flight GPU work.
package device

// Buffer is a GPU buffer allocation.
type Buffer interface {
	Label() string
	Size() uint64
	Release()
}

// Texture is a 2D GPU texture usable as an attachment or a shader binding.
type Texture interface {
	Label() string
	Width() uint32
	Height() uint32
	Format() PixelFormat
	Release()
}

// BindGroupLayout is the layout a bind group and a pipeline agree on.
type BindGroupLayout interface {
	Label() string
	Release()
}

// BindGroup is a set of resources bound to one group index.
type BindGroup interface {
	Label() string
	Release()
}

// RenderPipeline is a compiled render pipeline state object.
type RenderPipeline interface {
	Label() string
	Release()
}

// RenderEncoder records draw and state commands against a single render target.
// An encoder is created by a CommandBuffer and is finished with End; no command
// may be issued after End.
type RenderEncoder interface {
	// Target returns the descriptor this encoder was created for.
	//
	// Returns:
	//   - *TargetDescriptor: the render target of the encoder
	Target() *TargetDescriptor

	// PushDebugGroup opens a labelled group of commands for GPU debuggers.
	//
	// Parameters:
	//   - label: the group label
	PushDebugGroup(label string)

	// PopDebugGroup closes the most recently opened debug group.
	PopDebugGroup()

	// SetPipeline binds the pipeline used by subsequent draws.
	//
	// Parameters:
	//   - p: the pipeline to bind
	SetPipeline(p RenderPipeline)

	// SetBindGroup binds a group of resources at the given index.
	//
	// Parameters:
	//   - index: the group index
	//   - group: the bind group to bind
	//   - dynamicOffsets: one offset per dynamic binding of the group, in binding order
	SetBindGroup(index uint32, group BindGroup, dynamicOffsets []uint32)

	// SetStencilReference sets the reference value used by stencil tests and replace operations.
	//
	// Parameters:
	//   - ref: the stencil reference value
	SetStencilReference(ref uint32)

	// Draw issues a non-indexed draw.
	//
	// Parameters:
	//   - vertexCount: the number of vertices per instance
	//   - instanceCount: the number of instances
	//   - firstVertex: the first vertex index
	//   - firstInstance: the first instance index
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)

	// End finishes recording. The encoder must not be used afterwards.
	End()
}

// Drawable is a presentable image acquired from a Surface for the current frame.
type Drawable interface {
	// Texture returns the texture backing the drawable, usable as a colour attachment.
	//
	// Returns:
	//   - Texture: the drawable's texture
	Texture() Texture
}

// Surface is the presentation surface of a window.
type Surface interface {
	// CurrentDrawable returns the drawable for the current frame, acquiring one if needed.
	// The same drawable is returned until it is presented.
	//
	// Returns:
	//   - Drawable: the current drawable
	//   - bool: false if no drawable is available this frame
	CurrentDrawable() (Drawable, bool)

	// Format returns the pixel format of the surface's drawables.
	//
	// Returns:
	//   - PixelFormat: the drawable format
	Format() PixelFormat

	// Configure (re)creates the swapchain at the given size in pixels.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Configure(width, height int)
}

// CommandBuffer collects the encoders of one frame and submits them to the device queue.
type CommandBuffer interface {
	// CreateEncoder begins a render encoder writing to the given target.
	//
	// Parameters:
	//   - target: the render target description
	//
	// Returns:
	//   - RenderEncoder: the new encoder
	//   - error: an error if the target cannot be encoded against
	CreateEncoder(target *TargetDescriptor) (RenderEncoder, error)

	// AddCompletedHandler registers fn to run once the GPU finished executing this buffer.
	// Handlers run on a device-managed goroutine, in submission order across buffers.
	//
	// Parameters:
	//   - fn: the completion handler
	AddCompletedHandler(fn func())

	// Present schedules d to be shown once this buffer has been submitted.
	//
	// Parameters:
	//   - d: the drawable to present
	Present(d Drawable)

	// Commit submits the buffer. When Commit returns an error the buffer was not
	// submitted and its completion handlers never run.
	//
	// Returns:
	//   - error: an error if the buffer could not be submitted
	Commit() error
}

// Device is the single logical graphics device of the process.
type Device interface {
	// CreateCommandBuffer starts a new command buffer for one frame.
	//
	// Returns:
	//   - CommandBuffer: the new command buffer
	//   - error: an error if the device cannot allocate a command buffer
	CreateCommandBuffer() (CommandBuffer, error)

	// CreateBuffer allocates a GPU buffer.
	//
	// Parameters:
	//   - desc: the buffer description
	//
	// Returns:
	//   - Buffer: the new buffer
	//   - error: an error on allocation failure
	CreateBuffer(desc BufferDescriptor) (Buffer, error)

	// CreateTexture allocates a 2D texture.
	//
	// Parameters:
	//   - desc: the texture description
	//
	// Returns:
	//   - Texture: the new texture
	//   - error: an error on allocation failure
	CreateTexture(desc TextureDescriptor) (Texture, error)

	// CreateBindGroupLayout creates a bind group layout.
	//
	// Parameters:
	//   - desc: the layout description
	//
	// Returns:
	//   - BindGroupLayout: the new layout
	//   - error: an error if the layout is rejected
	CreateBindGroupLayout(desc BindGroupLayoutDescriptor) (BindGroupLayout, error)

	// CreateBindGroup creates a bind group.
	//
	// Parameters:
	//   - desc: the bind group description
	//
	// Returns:
	//   - BindGroup: the new bind group
	//   - error: an error if the group is rejected
	CreateBindGroup(desc BindGroupDescriptor) (BindGroup, error)

	// CreateRenderPipeline compiles a render pipeline.
	//
	// Parameters:
	//   - desc: the pipeline description
	//
	// Returns:
	//   - RenderPipeline: the compiled pipeline
	//   - error: an error if the shader or pipeline fails to compile
	CreateRenderPipeline(desc RenderPipelineDescriptor) (RenderPipeline, error)

	// WriteBuffer schedules a write of data into buf at offset, ordered before the next submission.
	//
	// Parameters:
	//   - buf: the destination buffer
	//   - offset: the byte offset into buf
	//   - data: the bytes to write
	WriteBuffer(buf Buffer, offset uint64, data []byte)

	// Release frees the device and every resource it still tracks.
	Release()
}
