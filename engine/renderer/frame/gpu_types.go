package frame

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// UniformsSource is the canonical WGSL definition of the FrameUniforms struct.
// Matches Uniforms layout exactly (496 bytes, WGSL uniform aligned).
//
//go:embed assets/frame_uniforms.wgsl
var UniformsSource string

// Uniforms is the per-frame snapshot uploaded into the current slot of the frame
// uniform ring. Matches the WGSL FrameUniforms struct layout exactly.
type Uniforms struct {
	View                   [16]float32 // offset   0
	Projection             [16]float32 // offset  64
	ViewProjection         [16]float32 // offset 128
	InverseView            [16]float32 // offset 192
	InverseProjection      [16]float32 // offset 256
	InverseViewProjection  [16]float32 // offset 320
	PreviousViewProjection [16]float32 // offset 384
	CameraPosition         [3]float32  // offset 448
	Near                   float32     // offset 460
	Resolution             [2]float32  // offset 464
	Time                   float32     // offset 472: seconds since start
	Delta                  float32     // offset 476: seconds since the previous frame
	Far                    float32     // offset 480
	AspectRatio            float32     // offset 484
	Frame                  uint32      // offset 488: low 32 bits of the frame counter
	_pad                   float32     // offset 492
}

// Size returns the size of the Uniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (496)
func (u *Uniforms) Size() int {
	return int(unsafe.Sizeof(*u))
}

// Marshal serializes the Uniforms struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (u *Uniforms) Marshal() []byte {
	buf := make([]byte, u.Size())
	mats := [...]*[16]float32{
		&u.View, &u.Projection, &u.ViewProjection,
		&u.InverseView, &u.InverseProjection, &u.InverseViewProjection,
		&u.PreviousViewProjection,
	}
	off := 0
	for _, m := range mats {
		for i := range 16 {
			binary.LittleEndian.PutUint32(buf[off+i*4:], math.Float32bits(m[i]))
		}
		off += 64
	}
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[448+i*4:], math.Float32bits(u.CameraPosition[i]))
	}
	binary.LittleEndian.PutUint32(buf[460:], math.Float32bits(u.Near))
	binary.LittleEndian.PutUint32(buf[464:], math.Float32bits(u.Resolution[0]))
	binary.LittleEndian.PutUint32(buf[468:], math.Float32bits(u.Resolution[1]))
	binary.LittleEndian.PutUint32(buf[472:], math.Float32bits(u.Time))
	binary.LittleEndian.PutUint32(buf[476:], math.Float32bits(u.Delta))
	binary.LittleEndian.PutUint32(buf[480:], math.Float32bits(u.Far))
	binary.LittleEndian.PutUint32(buf[484:], math.Float32bits(u.AspectRatio))
	binary.LittleEndian.PutUint32(buf[488:], u.Frame)
	binary.LittleEndian.PutUint32(buf[492:], 0) // _pad
	return buf
}
