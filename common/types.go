// Package common contains constants and helpers shared by every package of the renderer.
// They are plain values and functions, not interface-wrapped structs.
package common

// FramesInFlight is the number of frames the CPU may record ahead of the GPU.
// Every per-frame buffer written by the CPU and read by the GPU keeps this many
// physical copies, indexed by the frame slot.
const FramesInFlight = 3

// UniformAlignment is the minimum dynamic offset alignment for uniform and storage
// buffer bindings guaranteed by every WebGPU adapter.
const UniformAlignment = 256

// Bind group indices shared by every pipeline layout. A pipeline that uses group g
// declares layouts for every group from 0 through g.
const (
	// GroupFrame holds the per-frame uniform snapshot, bound with a dynamic slot offset.
	GroupFrame = 0

	// GroupLights holds the packed light lists, bound with a dynamic slot offset.
	GroupLights = 1

	// GroupGBuffer holds the geometry buffer textures written by the GBuffer pass.
	GroupGBuffer = 2

	// GroupFrameTextures holds the lit frame colour texture for post processing and display.
	GroupFrameTextures = 3
)

// RoundUp rounds size up to the next multiple of align. align must be a power of two.
//
// Parameters:
//   - size: the value to round
//   - align: the alignment, a power of two
//
// Returns:
//   - uint64: the smallest multiple of align that is >= size
func RoundUp(size, align uint64) uint64 {
	return (size + align - 1) &^ (align - 1)
}

// SlotOffset returns the byte offset of the given frame slot inside a ring buffer
// whose copies are each stride bytes long.
//
// Parameters:
//   - slot: the frame slot index in [0, FramesInFlight)
//   - stride: the aligned size of one copy
//
// Returns:
//   - uint32: the offset usable as a dynamic bind group offset
func SlotOffset(slot int, stride uint64) uint32 {
	return uint32(uint64(slot) * stride)
}
