package light

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// Per-type capacities of the GPU light buffer. Lights added beyond these are dropped.
const (
	MaxDirectionalLights = 8
	MaxPointLights       = 128
	MaxSpotLights        = 64
)

// GPULightHeaderSource is the canonical WGSL definition of the LightHeader struct.
// Matches GPULightHeader layout exactly (32 bytes).
//
//go:embed assets/light_header.wgsl
var GPULightHeaderSource string

// GPULightSource holds the canonical WGSL definitions of the DirectionalLight,
// PointLight and SpotLight structs.
//
//go:embed assets/light.wgsl
var GPULightSource string

// GPULightBufferSource is the canonical WGSL definition of the LightBuffer struct
// bound at common.GroupLights. It references the structs of GPULightHeaderSource
// and GPULightSource, which must be included first.
//
//go:embed assets/light_buffer.wgsl
var GPULightBufferSource string

// GPULightHeader is the header at the start of the light buffer.
// Size: 32 bytes.
type GPULightHeader struct {
	DirectionalCount uint32     // offset  0
	PointCount       uint32     // offset  4
	SpotCount        uint32     // offset  8
	AreaCount        uint32     // offset 12: always 0
	Ambient          [3]float32 // offset 16: scene ambient RGB
	_pad             float32    // offset 28
}

// Size returns the size of the GPULightHeader struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (h *GPULightHeader) Size() int {
	return int(unsafe.Sizeof(*h))
}

// MarshalTo serializes the header into buf, which must hold at least Size bytes.
//
// Parameters:
//   - buf: the destination buffer
func (h *GPULightHeader) MarshalTo(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:], h.DirectionalCount)
	binary.LittleEndian.PutUint32(buf[4:], h.PointCount)
	binary.LittleEndian.PutUint32(buf[8:], h.SpotCount)
	binary.LittleEndian.PutUint32(buf[12:], h.AreaCount)
	putVec3(buf[16:], h.Ambient)
	binary.LittleEndian.PutUint32(buf[28:], 0) // _pad
}

// GPUDirectionalLight is the GPU layout of a directional light.
// Size: 32 bytes.
type GPUDirectionalLight struct {
	Direction [3]float32 // offset  0
	Intensity float32    // offset 12
	Color     [3]float32 // offset 16
	_reserved uint32     // offset 28
}

// Size returns the size of the GPUDirectionalLight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPUDirectionalLight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// MarshalTo serializes the light into buf, which must hold at least Size bytes.
//
// Parameters:
//   - buf: the destination buffer
func (g *GPUDirectionalLight) MarshalTo(buf []byte) {
	putVec3(buf[0:], g.Direction)
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(g.Intensity))
	putVec3(buf[16:], g.Color)
	binary.LittleEndian.PutUint32(buf[28:], 0) // _reserved
}

// GPUPointLight is the GPU layout of a point light.
// Size: 48 bytes.
type GPUPointLight struct {
	Position  [3]float32 // offset  0
	Intensity float32    // offset 12
	Color     [3]float32 // offset 16
	_reserved uint32     // offset 28
	Range     float32    // offset 32
	Falloff   float32    // offset 36
	_pad      [2]float32 // offset 40
}

// Size returns the size of the GPUPointLight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPUPointLight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// MarshalTo serializes the light into buf, which must hold at least Size bytes.
//
// Parameters:
//   - buf: the destination buffer
func (g *GPUPointLight) MarshalTo(buf []byte) {
	putVec3(buf[0:], g.Position)
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(g.Intensity))
	putVec3(buf[16:], g.Color)
	binary.LittleEndian.PutUint32(buf[28:], 0) // _reserved
	binary.LittleEndian.PutUint32(buf[32:], math.Float32bits(g.Range))
	binary.LittleEndian.PutUint32(buf[36:], math.Float32bits(g.Falloff))
	binary.LittleEndian.PutUint64(buf[40:], 0) // _pad
}

// GPUSpotLight is the GPU layout of a spot light.
// Size: 64 bytes.
type GPUSpotLight struct {
	Position  [3]float32 // offset  0
	Intensity float32    // offset 12
	Color     [3]float32 // offset 16
	_reserved uint32     // offset 28
	Direction [3]float32 // offset 32
	Range     float32    // offset 44
	Falloff   float32    // offset 48
	InnerCone float32    // offset 52: cos(inner half-angle)
	OuterCone float32    // offset 56: cos(outer half-angle)
	_pad      float32    // offset 60
}

// Size returns the size of the GPUSpotLight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPUSpotLight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// MarshalTo serializes the light into buf, which must hold at least Size bytes.
//
// Parameters:
//   - buf: the destination buffer
func (g *GPUSpotLight) MarshalTo(buf []byte) {
	putVec3(buf[0:], g.Position)
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(g.Intensity))
	putVec3(buf[16:], g.Color)
	binary.LittleEndian.PutUint32(buf[28:], 0) // _reserved
	putVec3(buf[32:], g.Direction)
	binary.LittleEndian.PutUint32(buf[44:], math.Float32bits(g.Range))
	binary.LittleEndian.PutUint32(buf[48:], math.Float32bits(g.Falloff))
	binary.LittleEndian.PutUint32(buf[52:], math.Float32bits(g.InnerCone))
	binary.LittleEndian.PutUint32(buf[56:], math.Float32bits(g.OuterCone))
	binary.LittleEndian.PutUint32(buf[60:], 0) // _pad
}

// Offsets of the light arrays inside the LightBuffer struct.
const (
	directionalOffset = 32
	pointOffset       = directionalOffset + MaxDirectionalLights*32
	spotOffset        = pointOffset + MaxPointLights*48

	// LightBufferSize is the size of one LightBuffer copy in bytes.
	LightBufferSize = spotOffset + MaxSpotLights*64
)

func putVec3(buf []byte, v [3]float32) {
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(v[0]))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(v[1]))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(v[2]))
}

