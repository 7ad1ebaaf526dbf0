package light

import (
	"fmt"
	"log"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device"
)

// lights is the implementation of the Lights interface.
type lights struct {
	mu *sync.Mutex

	dev     device.Device
	ambient [3]float32

	directional []Light
	point       []Light
	spot        []Light
	warned      [3]bool

	header  GPULightHeader
	scratch []byte
	slot    int

	stride uint64
	buffer device.Buffer
	layout device.BindGroupLayout
	group  device.BindGroup
}

// Lights collects the scene's lights and uploads them once per frame into a ring
// of FramesInFlight copies of the light buffer, bound at common.GroupLights.
type Lights interface {
	// Add appends a light to the list of its type.
	// A light beyond the capacity of its type is dropped and logged once until the next Clear.
	//
	// Parameters:
	//   - l: the light to add
	//
	// Returns:
	//   - bool: true if the light was added
	Add(l Light) bool

	// Remove removes a light previously added.
	//
	// Parameters:
	//   - l: the light to remove
	//
	// Returns:
	//   - bool: true if the light was found
	Remove(l Light) bool

	// Clear removes every light.
	Clear()

	// Count returns the number of lights of a type, enabled or not.
	//
	// Parameters:
	//   - t: the light type
	//
	// Returns:
	//   - int: the count
	Count(t LightType) int

	// SetAmbient sets the ambient colour written into the buffer header.
	//
	// Parameters:
	//   - r, g, b: the ambient colour
	SetAmbient(r, g, b float32)

	// Header returns the header written by the last Update.
	//
	// Returns:
	//   - GPULightHeader: the header
	Header() GPULightHeader

	// Update packs the enabled lights and writes them into the copy of the light
	// buffer selected by slot.
	//
	// Parameters:
	//   - slot: the frame slot in [0, FramesInFlight)
	Update(slot int)

	// GlobalBind binds the light buffer copy written by the last Update at common.GroupLights.
	//
	// Parameters:
	//   - enc: the encoder to bind into
	GlobalBind(enc device.RenderEncoder)

	// Layout returns the bind group layout of the light buffer.
	//
	// Returns:
	//   - device.BindGroupLayout: the layout
	Layout() device.BindGroupLayout

	// Release frees the device objects owned by the collection.
	Release()
}

var _ Lights = &lights{}

// NewLights creates an empty light collection and allocates its buffer ring.
// Panics if the device cannot allocate it.
//
// Parameters:
//   - dev: the device
//
// Returns:
//   - Lights: the collection
func NewLights(dev device.Device) Lights {
	l := &lights{
		mu:      &sync.Mutex{},
		dev:     dev,
		ambient: [3]float32{0.03, 0.03, 0.03},
		scratch: make([]byte, LightBufferSize),
		stride:  common.RoundUp(LightBufferSize, common.UniformAlignment),
	}

	var err error
	l.buffer, err = dev.CreateBuffer(device.BufferDescriptor{
		Label: "Light Buffer",
		Size:  l.stride * common.FramesInFlight,
		Usage: device.BufferUsageStorage | device.BufferUsageCopyDst,
	})
	if err != nil {
		panic(fmt.Errorf("light: failed to allocate light buffer: %w", err))
	}

	l.layout, err = dev.CreateBindGroupLayout(device.BindGroupLayoutDescriptor{
		Label: "Light Buffer Layout",
		Entries: []device.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: device.StageFragment,
			Kind:       device.BindingStorageBuffer,
			Dynamic:    true,
			MinSize:    LightBufferSize,
		}},
	})
	if err != nil {
		panic(fmt.Errorf("light: failed to create light layout: %w", err))
	}

	l.group, err = dev.CreateBindGroup(device.BindGroupDescriptor{
		Label:   "Light Buffer",
		Layout:  l.layout,
		Entries: []device.BindGroupEntry{{Binding: 0, Buffer: l.buffer, Size: LightBufferSize}},
	})
	if err != nil {
		panic(fmt.Errorf("light: failed to create light bind group: %w", err))
	}
	return l
}

func (l *lights) list(t LightType) *[]Light {
	switch t {
	case LightTypeDirectional:
		return &l.directional
	case LightTypePoint:
		return &l.point
	case LightTypeSpot:
		return &l.spot
	default:
		return nil
	}
}

func capacity(t LightType) int {
	switch t {
	case LightTypeDirectional:
		return MaxDirectionalLights
	case LightTypePoint:
		return MaxPointLights
	case LightTypeSpot:
		return MaxSpotLights
	default:
		return 0
	}
}

func (l *lights) Add(light Light) bool {
	if light == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	t := light.Type()
	list := l.list(t)
	if list == nil {
		return false
	}
	if len(*list) >= capacity(t) {
		if !l.warned[t] {
			log.Printf("[Lights] %s light capacity %d reached, dropping lights", t, capacity(t))
			l.warned[t] = true
		}
		return false
	}
	*list = append(*list, light)
	return true
}

func (l *lights) Remove(light Light) bool {
	if light == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	list := l.list(light.Type())
	if list == nil {
		return false
	}
	i := slices.Index(*list, light)
	if i < 0 {
		return false
	}
	*list = slices.Delete(*list, i, i+1)
	return true
}

func (l *lights) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.directional = l.directional[:0]
	l.point = l.point[:0]
	l.spot = l.spot[:0]
	l.warned = [3]bool{}
}

func (l *lights) Count(t LightType) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if list := l.list(t); list != nil {
		return len(*list)
	}
	return 0
}

func (l *lights) SetAmbient(r, g, b float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ambient = [3]float32{r, g, b}
}

func (l *lights) Header() GPULightHeader {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.header
}

func (l *lights) Update(slot int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	buf := l.scratch
	clear(buf)

	var n uint32
	for _, d := range l.directional {
		p := d.Params()
		if !p.Enabled {
			continue
		}
		g := GPUDirectionalLight{
			Direction: p.Direction,
			Intensity: p.Intensity,
			Color:     p.Color,
		}
		g.MarshalTo(buf[directionalOffset+int(n)*g.Size():])
		n++
	}
	l.header.DirectionalCount = n

	n = 0
	for _, pl := range l.point {
		p := pl.Params()
		if !p.Enabled {
			continue
		}
		g := GPUPointLight{
			Position:  p.Position,
			Intensity: p.Intensity,
			Color:     p.Color,
			Range:     p.Range,
			Falloff:   p.Falloff,
		}
		g.MarshalTo(buf[pointOffset+int(n)*g.Size():])
		n++
	}
	l.header.PointCount = n

	n = 0
	for _, s := range l.spot {
		p := s.Params()
		if !p.Enabled {
			continue
		}
		g := GPUSpotLight{
			Position:  p.Position,
			Intensity: p.Intensity,
			Color:     p.Color,
			Direction: p.Direction,
			Range:     p.Range,
			Falloff:   p.Falloff,
			InnerCone: p.InnerCone,
			OuterCone: p.OuterCone,
		}
		g.MarshalTo(buf[spotOffset+int(n)*g.Size():])
		n++
	}
	l.header.SpotCount = n
	l.header.AreaCount = 0
	l.header.Ambient = l.ambient
	l.header.MarshalTo(buf)

	l.slot = slot
	l.dev.WriteBuffer(l.buffer, uint64(common.SlotOffset(slot, l.stride)), buf)
}

func (l *lights) GlobalBind(enc device.RenderEncoder) {
	l.mu.Lock()
	defer l.mu.Unlock()
	enc.SetBindGroup(common.GroupLights, l.group, []uint32{common.SlotOffset(l.slot, l.stride)})
}

func (l *lights) Layout() device.BindGroupLayout {
	return l.layout
}

func (l *lights) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.group != nil {
		l.group.Release()
		l.group = nil
	}
	if l.buffer != nil {
		l.buffer.Release()
		l.buffer = nil
	}
	if l.layout != nil {
		l.layout.Release()
		l.layout = nil
	}
}
