package frame

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device/devicetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedCamera struct {
	view, proj [16]float32
	pos        [3]float32
}

func newFixedCamera() *fixedCamera {
	c := &fixedCamera{pos: [3]float32{3, 4, 5}}
	common.LookAt(c.view[:], c.pos, [3]float32{0, 0, 0}, [3]float32{0, 1, 0})
	common.PerspectiveReverseZ(c.proj[:], common.Radians(60), 16.0/9.0, 0.01, 1000)
	return c
}

func (c *fixedCamera) ViewMatrix() [16]float32       { return c.view }
func (c *fixedCamera) ProjectionMatrix() [16]float32 { return c.proj }
func (c *fixedCamera) Position() [3]float32          { return c.pos }
func (c *fixedCamera) Near() float32                 { return 0.01 }
func (c *fixedCamera) Far() float32                  { return 1000 }

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newFrame(t *testing.T) (*devicetest.Device, FrameInfo, *fakeClock) {
	t.Helper()
	dev := devicetest.New()
	clock := &fakeClock{now: time.Unix(1000, 0)}
	f := NewFrameInfo(dev, 320, 180, newFixedCamera(), WithClock(clock.Now))
	return dev, f, clock
}

func TestUniformsSize(t *testing.T) {
	var u Uniforms
	assert.Equal(t, 496, u.Size())
	assert.Len(t, u.Marshal(), 496)
}

func TestSlotCyclesWithCounter(t *testing.T) {
	_, f, _ := newFrame(t)
	assert.Equal(t, 0, f.Slot())

	var slots []int
	var counters []uint64
	for range 7 {
		f.Advance()
		slots = append(slots, f.Slot())
		counters = append(counters, f.Frame())
	}
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2, 0}, slots)
	assert.Equal(t, []uint64{0, 1, 2, 3, 4, 5, 6}, counters)
}

func TestPreviousViewProjectionIsLastFrames(t *testing.T) {
	_, f, _ := newFrame(t)

	f.Advance()
	first := f.Uniforms()
	assert.Equal(t, common.Identity4(), first.PreviousViewProjection)

	f.Advance()
	second := f.Uniforms()
	for i := range 16 {
		assert.Equal(t, math.Float32bits(first.ViewProjection[i]), math.Float32bits(second.PreviousViewProjection[i]))
	}
}

func TestAdvanceWritesCurrentSlotOnly(t *testing.T) {
	dev, f, _ := newFrame(t)
	buffers := dev.Buffers()
	require.Len(t, buffers, 1)
	ring := buffers[0]
	stride := f.Stride()
	assert.Equal(t, uint64(512), stride)
	assert.Equal(t, stride*common.FramesInFlight, ring.Size())

	frameAt := func(slot int) uint32 {
		return binary.LittleEndian.Uint32(ring.Data[uint64(slot)*stride+488:])
	}

	for range 5 {
		f.Advance()
	}
	// Frames 3 and 4 reused slots 0 and 1; slot 2 still holds frame 2.
	assert.Equal(t, uint32(3), frameAt(0))
	assert.Equal(t, uint32(4), frameAt(1))
	assert.Equal(t, uint32(2), frameAt(2))
	assert.Equal(t, 5, ring.Writes)
}

func TestTiming(t *testing.T) {
	_, f, clock := newFrame(t)

	clock.now = clock.now.Add(500 * time.Millisecond)
	f.Advance()
	second, delta := f.Time()
	assert.InDelta(t, 0.5, second, 1e-9)
	assert.Equal(t, 0.0, delta)

	clock.now = clock.now.Add(16 * time.Millisecond)
	f.Advance()
	second, delta = f.Time()
	assert.InDelta(t, 0.516, second, 1e-9)
	assert.InDelta(t, 0.016, delta, 1e-9)
}

func TestCameraSnapshot(t *testing.T) {
	_, f, _ := newFrame(t)
	f.Advance()
	u := f.Uniforms()

	cam := newFixedCamera()
	assert.Equal(t, cam.view, u.View)
	assert.Equal(t, cam.proj, u.Projection)
	assert.Equal(t, [3]float32{3, 4, 5}, u.CameraPosition)
	assert.Equal(t, [2]float32{320, 180}, u.Resolution)
	assert.InDelta(t, 320.0/180.0, u.AspectRatio, 1e-6)

	var check [16]float32
	common.Mul4(check[:], u.ViewProjection[:], u.InverseViewProjection[:])
	id := common.Identity4()
	for i := range 16 {
		assert.InDelta(t, id[i], check[i], 1e-2)
	}
}

func TestBindGlobal(t *testing.T) {
	dev, f, _ := newFrame(t)
	cb, err := dev.CreateCommandBuffer()
	require.NoError(t, err)

	f.Advance()
	f.Advance()

	// An encoder writing the frame colour must not bind it as a texture.
	enc, err := cb.CreateEncoder(f.Target("frame"))
	require.NoError(t, err)
	f.BindGlobal(enc)
	rec := enc.(*devicetest.Encoder)
	assert.Equal(t, []string{"bind 0 Frame Uniforms [512]"}, rec.Calls)

	drawable := devicetest.NewTexture("drawable", 320, 180, device.FormatBGRA8UnormSrgb)
	enc, err = cb.CreateEncoder(&device.TargetDescriptor{Colors: []device.ColorAttachment{{Texture: drawable}}})
	require.NoError(t, err)
	f.BindGlobal(enc)
	rec = enc.(*devicetest.Encoder)
	assert.Equal(t, []string{"bind 0 Frame Uniforms [512]", "bind 3 Frame Textures"}, rec.Calls)
}

func TestAttachmentsAreCopies(t *testing.T) {
	_, f, _ := newFrame(t)

	c := f.ColorAttachment()
	assert.Equal(t, device.LoadActionLoad, c.Load)
	assert.Equal(t, device.StoreActionStore, c.Store)
	assert.Equal(t, DefaultClearColor, c.ClearColor)
	c.Load = device.LoadActionClear
	assert.Equal(t, device.LoadActionLoad, f.ColorAttachment().Load)

	d := f.DepthAttachment()
	assert.Equal(t, float32(0), d.ClearDepth)
	d.Load = device.LoadActionClear
	assert.Equal(t, device.LoadActionLoad, f.DepthAttachment().Load)

	s := f.StencilAttachment()
	assert.Same(t, f.DepthStencilTexture(), s.Texture)

	target := f.Target("frame")
	assert.True(t, target.Valid())
	assert.Equal(t, ColorFormat, target.Colors[0].Texture.Format())
	assert.Equal(t, DepthStencilFormat, target.Depth.Texture.Format())
}

func TestSetResolutionReleasesOldTargets(t *testing.T) {
	dev, f, _ := newFrame(t)
	oldColor := f.ColorTexture().(*devicetest.Texture)
	oldDepth := f.DepthStencilTexture().(*devicetest.Texture)
	oldGroup := dev.BindGroups()[len(dev.BindGroups())-1]

	f.SetResolution(640, 480)

	assert.True(t, oldColor.Released())
	assert.True(t, oldDepth.Released())
	assert.True(t, oldGroup.Released())
	w, h := f.Resolution()
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
	assert.Equal(t, uint32(640), f.ColorTexture().Width())
	assert.InDelta(t, 640.0/480.0, f.AspectRatio(), 1e-6)
	assert.False(t, f.ColorTexture().(*devicetest.Texture).Released())
}

func TestSetResolutionClampsToOne(t *testing.T) {
	_, f, _ := newFrame(t)
	f.SetResolution(0, -5)
	w, h := f.Resolution()
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
}

func TestAllocationFailureIsFatal(t *testing.T) {
	dev, f, _ := newFrame(t)
	dev.FailTextures = true
	assert.Panics(t, func() { f.SetResolution(800, 600) })

	dev = devicetest.New()
	dev.FailBuffers = true
	assert.Panics(t, func() { NewFrameInfo(dev, 4, 4, nil) })
}

func TestReleaseFreesEverything(t *testing.T) {
	dev, f, _ := newFrame(t)
	f.Release()

	for _, tex := range dev.Textures() {
		assert.True(t, tex.Released(), tex.Label())
	}
	for _, buf := range dev.Buffers() {
		assert.True(t, buf.Released(), buf.Label())
	}
	for _, g := range dev.BindGroups() {
		assert.True(t, g.Released(), g.Label())
	}
}

func TestNilCameraUsesIdentity(t *testing.T) {
	f := NewFrameInfo(devicetest.New(), 2, 2, nil)
	f.Advance()
	assert.Equal(t, common.Identity4(), f.Uniforms().ViewProjection)
}
