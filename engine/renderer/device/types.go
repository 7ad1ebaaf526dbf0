package device

// PixelFormat identifies the texel layout of a texture or attachment.
type PixelFormat int

const (
	FormatUndefined PixelFormat = iota
	FormatRGBA8Unorm
	FormatRGBA8UnormSrgb
	FormatBGRA8Unorm
	FormatBGRA8UnormSrgb
	FormatRGBA16Float
	FormatDepth32Float
	FormatDepth24PlusStencil8
	FormatDepth32FloatStencil8
)

var pixelFormatNames = map[PixelFormat]string{
	FormatUndefined:            "undefined",
	FormatRGBA8Unorm:           "rgba8unorm",
	FormatRGBA8UnormSrgb:       "rgba8unorm-srgb",
	FormatBGRA8Unorm:           "bgra8unorm",
	FormatBGRA8UnormSrgb:       "bgra8unorm-srgb",
	FormatRGBA16Float:          "rgba16float",
	FormatDepth32Float:         "depth32float",
	FormatDepth24PlusStencil8:  "depth24plus-stencil8",
	FormatDepth32FloatStencil8: "depth32float-stencil8",
}

// String returns the WebGPU spelling of the format.
func (f PixelFormat) String() string {
	if s, ok := pixelFormatNames[f]; ok {
		return s
	}
	return "unknown"
}

// HasDepth reports whether the format carries a depth aspect.
func (f PixelFormat) HasDepth() bool {
	switch f {
	case FormatDepth32Float, FormatDepth24PlusStencil8, FormatDepth32FloatStencil8:
		return true
	}
	return false
}

// HasStencil reports whether the format carries a stencil aspect.
func (f PixelFormat) HasStencil() bool {
	return f == FormatDepth24PlusStencil8 || f == FormatDepth32FloatStencil8
}

// LoadAction selects what an attachment contains when an encoder starts writing to it.
type LoadAction int

const (
	// LoadActionLoad preserves the previous contents.
	LoadActionLoad LoadAction = iota
	// LoadActionClear fills the attachment with its clear value.
	LoadActionClear
	// LoadActionDontCare leaves the contents undefined. Backends without an
	// undefined load fall back to clearing.
	LoadActionDontCare
)

// StoreAction selects whether an attachment's contents survive the end of an encoder.
type StoreAction int

const (
	StoreActionStore StoreAction = iota
	StoreActionDontCare
)

// Color is a linear RGBA clear colour.
type Color struct {
	R, G, B, A float64
}

// BufferUsage is a bit set of the ways a buffer may be used.
type BufferUsage uint32

const (
	BufferUsageUniform BufferUsage = 1 << iota
	BufferUsageStorage
	BufferUsageVertex
	BufferUsageIndex
	BufferUsageCopyDst
)

// TextureUsage is a bit set of the ways a texture may be used.
type TextureUsage uint32

const (
	TextureUsageRenderAttachment TextureUsage = 1 << iota
	TextureUsageTextureBinding
	TextureUsageCopyDst
)

// BufferDescriptor describes a GPU buffer allocation.
type BufferDescriptor struct {
	Label string
	Size  uint64
	Usage BufferUsage
}

// TextureDescriptor describes a 2D, single-sample, single-mip texture allocation.
type TextureDescriptor struct {
	Label  string
	Width  uint32
	Height uint32
	Format PixelFormat
	Usage  TextureUsage
}

// ShaderStage is a bit set of shader stages a binding is visible to.
type ShaderStage uint32

const (
	StageVertex ShaderStage = 1 << iota
	StageFragment
)

// BindingKind identifies the resource type of a bind group layout entry.
type BindingKind int

const (
	// BindingUniformBuffer is a uniform buffer binding.
	BindingUniformBuffer BindingKind = iota
	// BindingStorageBuffer is a read-only storage buffer binding.
	BindingStorageBuffer
	// BindingTexture is a 2D float texture read with textureLoad.
	BindingTexture
)

// BindGroupLayoutEntry describes a single binding slot of a bind group layout.
type BindGroupLayoutEntry struct {
	Binding    uint32
	Visibility ShaderStage
	Kind       BindingKind
	// Dynamic marks a buffer binding whose offset is supplied when the group is bound.
	Dynamic bool
	// MinSize is the minimum binding size of a buffer binding, 0 for no minimum.
	MinSize uint64
}

// BindGroupLayoutDescriptor describes a bind group layout.
type BindGroupLayoutDescriptor struct {
	Label   string
	Entries []BindGroupLayoutEntry
}

// BindGroupEntry binds a resource to one slot of a bind group. Exactly one of
// Buffer or Texture is set.
type BindGroupEntry struct {
	Binding uint32
	Buffer  Buffer
	// Size is the bound range of Buffer, 0 for the whole buffer.
	Size    uint64
	Texture Texture
}

// BindGroupDescriptor describes a bind group.
type BindGroupDescriptor struct {
	Label   string
	Layout  BindGroupLayout
	Entries []BindGroupEntry
}

// CompareFunction is a depth or stencil comparison.
type CompareFunction int

const (
	CompareAlways CompareFunction = iota
	CompareNever
	CompareLess
	CompareLessEqual
	CompareEqual
	CompareNotEqual
	CompareGreater
	CompareGreaterEqual
)

// StencilOperation is applied to the stencil value when a fragment passes the stencil test.
type StencilOperation int

const (
	StencilKeep StencilOperation = iota
	StencilReplace
	StencilZero
)

// Topology is the primitive assembly mode of a pipeline.
type Topology int

const (
	TopologyTriangleList Topology = iota
	TopologyTriangleStrip
	TopologyLineList
	TopologyLineStrip
	TopologyPointList
)

// CullMode selects which triangle faces are discarded.
type CullMode int

const (
	CullNone CullMode = iota
	CullBack
	CullFront
)

// ColorTargetState describes one colour output of a pipeline.
type ColorTargetState struct {
	Format PixelFormat
	// Blend enables source-alpha over blending.
	Blend bool
}

// StencilState describes the stencil test applied to both faces.
type StencilState struct {
	Compare CompareFunction
	PassOp  StencilOperation
}

// DepthStencilState describes the depth-stencil output of a pipeline.
type DepthStencilState struct {
	Format       PixelFormat
	DepthWrite   bool
	DepthCompare CompareFunction
	Stencil      StencilState
}

// RenderPipelineDescriptor describes a render pipeline compiled from a single
// WGSL module holding both entry points.
type RenderPipelineDescriptor struct {
	Label            string
	Source           string
	VertexEntry      string
	FragmentEntry    string
	ColorTargets     []ColorTargetState
	DepthStencil     *DepthStencilState
	Topology         Topology
	CullMode         CullMode
	BindGroupLayouts []BindGroupLayout
}
