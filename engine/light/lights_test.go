package light

import (
	"encoding/binary"
	"math"
	"strconv"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device/devicetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGPUTypeSizes(t *testing.T) {
	assert.Equal(t, 32, (&GPULightHeader{}).Size())
	assert.Equal(t, 32, (&GPUDirectionalLight{}).Size())
	assert.Equal(t, 48, (&GPUPointLight{}).Size())
	assert.Equal(t, 64, (&GPUSpotLight{}).Size())
	assert.Equal(t, 10528, LightBufferSize)
}

func TestNewLightDefaults(t *testing.T) {
	d := NewLight(LightTypeDirectional).Params()
	assert.Equal(t, [3]float32{0, 0, 0}, d.Position)
	assert.Equal(t, [3]float32{0, -1, 0}, d.Direction)
	assert.True(t, d.Enabled)

	p := NewLight(LightTypePoint).Params()
	assert.Equal(t, [3]float32{0, 1, 0}, p.Position)
	assert.Equal(t, float32(10), p.Range)
	assert.Equal(t, float32(2), p.Falloff)

	s := NewLight(LightTypeSpot, WithSpotCone(10, 15), WithDirection(0, 0, -2))
	sp := s.Params()
	assert.InDelta(t, math.Cos(10*math.Pi/180), sp.InnerCone, 1e-6)
	assert.InDelta(t, math.Cos(15*math.Pi/180), sp.OuterCone, 1e-6)
	assert.Equal(t, [3]float32{0, 0, -1}, sp.Direction)
	assert.Equal(t, "spot", s.Type().String())
}

func TestSettersFromManyGoroutines(t *testing.T) {
	l := NewLight(LightTypePoint)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.SetPosition(float32(i), 0, 0)
			_ = l.Params()
		}()
	}
	wg.Wait()

	l.SetDirection(3, 0, 0)
	l.SetEnabled(false)
	p := l.Params()
	assert.Equal(t, [3]float32{1, 0, 0}, p.Direction)
	assert.False(t, p.Enabled)
	assert.Less(t, p.Position[0], float32(8))
}

func TestCapacityDropsExcessLights(t *testing.T) {
	l := NewLights(devicetest.New())
	for i := 0; i < MaxDirectionalLights; i++ {
		require.True(t, l.Add(NewLight(LightTypeDirectional)))
	}
	assert.False(t, l.Add(NewLight(LightTypeDirectional)))
	assert.Equal(t, MaxDirectionalLights, l.Count(LightTypeDirectional))
	assert.True(t, l.Add(NewLight(LightTypePoint)))
	assert.False(t, l.Add(nil))

	l.Clear()
	assert.Equal(t, 0, l.Count(LightTypeDirectional))
	assert.Equal(t, 0, l.Count(LightTypePoint))
}

func TestRemove(t *testing.T) {
	l := NewLights(devicetest.New())
	a := NewLight(LightTypePoint)
	b := NewLight(LightTypePoint)
	l.Add(a)
	l.Add(b)

	assert.True(t, l.Remove(a))
	assert.False(t, l.Remove(a))
	assert.Equal(t, 1, l.Count(LightTypePoint))
}

func TestUpdatePacksEnabledLightsIntoSlot(t *testing.T) {
	dev := devicetest.New()
	l := NewLights(dev)
	l.SetAmbient(0.1, 0.2, 0.3)
	l.Add(NewLight(LightTypeDirectional, WithIntensity(3)))
	l.Add(NewLight(LightTypePoint, WithPosition(1, 2, 3), WithEnabled(false)))
	l.Add(NewLight(LightTypePoint, WithPosition(4, 5, 6)))
	l.Add(NewLight(LightTypeSpot))

	l.Update(2)

	h := l.Header()
	assert.Equal(t, uint32(1), h.DirectionalCount)
	assert.Equal(t, uint32(1), h.PointCount)
	assert.Equal(t, uint32(1), h.SpotCount)
	assert.Equal(t, [3]float32{0.1, 0.2, 0.3}, h.Ambient)

	ring := dev.Buffers()[0]
	stride := common.RoundUp(LightBufferSize, common.UniformAlignment)
	base := 2 * stride
	f32 := func(off uint64) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(ring.Data[base+off:]))
	}
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(ring.Data[base+4:]))
	assert.Equal(t, float32(3), f32(directionalOffset+12))
	// The disabled light is skipped, so the enabled one is packed first.
	assert.Equal(t, float32(4), f32(pointOffset))
	assert.Equal(t, float32(0.3), f32(24))
}

func TestGlobalBindUsesSlotOffset(t *testing.T) {
	dev := devicetest.New()
	l := NewLights(dev)
	cb, err := dev.CreateCommandBuffer()
	require.NoError(t, err)
	enc, err := cb.CreateEncoder(&device.TargetDescriptor{
		Colors: []device.ColorAttachment{{Texture: devicetest.NewTexture("color", 4, 4, device.FormatRGBA16Float)}},
	})
	require.NoError(t, err)

	l.Update(1)
	l.GlobalBind(enc)

	stride := common.RoundUp(LightBufferSize, common.UniformAlignment)
	assert.Equal(t, []string{"bind 1 Light Buffer [" + strconv.FormatUint(stride, 10) + "]"}, enc.(*devicetest.Encoder).Calls)
}

func TestReleaseFreesBuffer(t *testing.T) {
	dev := devicetest.New()
	l := NewLights(dev)
	l.Release()
	assert.True(t, dev.Buffers()[0].Released())
	assert.True(t, dev.BindGroups()[0].Released())
}
