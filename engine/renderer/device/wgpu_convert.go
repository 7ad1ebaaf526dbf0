package device

import (
	"github.com/cogentcore/webgpu/wgpu"
)

var toWGPUFormats = map[PixelFormat]wgpu.TextureFormat{
	FormatRGBA8Unorm:           wgpu.TextureFormatRGBA8Unorm,
	FormatRGBA8UnormSrgb:       wgpu.TextureFormatRGBA8UnormSrgb,
	FormatBGRA8Unorm:           wgpu.TextureFormatBGRA8Unorm,
	FormatBGRA8UnormSrgb:       wgpu.TextureFormatBGRA8UnormSrgb,
	FormatRGBA16Float:          wgpu.TextureFormatRGBA16Float,
	FormatDepth32Float:         wgpu.TextureFormatDepth32Float,
	FormatDepth24PlusStencil8:  wgpu.TextureFormatDepth24PlusStencil8,
	FormatDepth32FloatStencil8: wgpu.TextureFormatDepth32FloatStencil8,
}

func toWGPUFormat(f PixelFormat) wgpu.TextureFormat {
	if tf, ok := toWGPUFormats[f]; ok {
		return tf
	}
	return wgpu.TextureFormatUndefined
}

func fromWGPUFormat(tf wgpu.TextureFormat) PixelFormat {
	for f, candidate := range toWGPUFormats {
		if candidate == tf {
			return f
		}
	}
	return FormatUndefined
}

func toLoadOp(a LoadAction) wgpu.LoadOp {
	if a == LoadActionLoad {
		return wgpu.LoadOpLoad
	}
	// WebGPU has no undefined load; clearing is the cheapest defined alternative.
	return wgpu.LoadOpClear
}

func toStoreOp(a StoreAction) wgpu.StoreOp {
	if a == StoreActionDontCare {
		return wgpu.StoreOpDiscard
	}
	return wgpu.StoreOpStore
}

func toBufferUsage(u BufferUsage) wgpu.BufferUsage {
	var out wgpu.BufferUsage
	if u&BufferUsageUniform != 0 {
		out |= wgpu.BufferUsageUniform
	}
	if u&BufferUsageStorage != 0 {
		out |= wgpu.BufferUsageStorage
	}
	if u&BufferUsageVertex != 0 {
		out |= wgpu.BufferUsageVertex
	}
	if u&BufferUsageIndex != 0 {
		out |= wgpu.BufferUsageIndex
	}
	if u&BufferUsageCopyDst != 0 {
		out |= wgpu.BufferUsageCopyDst
	}
	return out
}

func toTextureUsage(u TextureUsage) wgpu.TextureUsage {
	var out wgpu.TextureUsage
	if u&TextureUsageRenderAttachment != 0 {
		out |= wgpu.TextureUsageRenderAttachment
	}
	if u&TextureUsageTextureBinding != 0 {
		out |= wgpu.TextureUsageTextureBinding
	}
	if u&TextureUsageCopyDst != 0 {
		out |= wgpu.TextureUsageCopyDst
	}
	return out
}

func toShaderStage(s ShaderStage) wgpu.ShaderStage {
	out := wgpu.ShaderStageNone
	if s&StageVertex != 0 {
		out |= wgpu.ShaderStageVertex
	}
	if s&StageFragment != 0 {
		out |= wgpu.ShaderStageFragment
	}
	return out
}

func toCompareFunction(c CompareFunction) wgpu.CompareFunction {
	switch c {
	case CompareNever:
		return wgpu.CompareFunctionNever
	case CompareLess:
		return wgpu.CompareFunctionLess
	case CompareLessEqual:
		return wgpu.CompareFunctionLessEqual
	case CompareEqual:
		return wgpu.CompareFunctionEqual
	case CompareNotEqual:
		return wgpu.CompareFunctionNotEqual
	case CompareGreater:
		return wgpu.CompareFunctionGreater
	case CompareGreaterEqual:
		return wgpu.CompareFunctionGreaterEqual
	default:
		return wgpu.CompareFunctionAlways
	}
}

func toStencilOperation(op StencilOperation) wgpu.StencilOperation {
	switch op {
	case StencilReplace:
		return wgpu.StencilOperationReplace
	case StencilZero:
		return wgpu.StencilOperationZero
	default:
		return wgpu.StencilOperationKeep
	}
}

func toTopology(t Topology) wgpu.PrimitiveTopology {
	switch t {
	case TopologyTriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip
	case TopologyLineList:
		return wgpu.PrimitiveTopologyLineList
	case TopologyLineStrip:
		return wgpu.PrimitiveTopologyLineStrip
	case TopologyPointList:
		return wgpu.PrimitiveTopologyPointList
	default:
		return wgpu.PrimitiveTopologyTriangleList
	}
}

func toCullMode(c CullMode) wgpu.CullMode {
	switch c {
	case CullBack:
		return wgpu.CullModeBack
	case CullFront:
		return wgpu.CullModeFront
	default:
		return wgpu.CullModeNone
	}
}

func toBindGroupLayoutEntry(e BindGroupLayoutEntry) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    e.Binding,
		Visibility: toShaderStage(e.Visibility),
	}
	switch e.Kind {
	case BindingUniformBuffer:
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		entry.Buffer.HasDynamicOffset = e.Dynamic
		entry.Buffer.MinBindingSize = e.MinSize
	case BindingStorageBuffer:
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		entry.Buffer.HasDynamicOffset = e.Dynamic
		entry.Buffer.MinBindingSize = e.MinSize
	case BindingTexture:
		entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
	}
	return entry
}

var overBlend = &wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
}
