package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	c := NewCamera()
	assert.Equal(t, [3]float32{1, 1, 5}, c.Position())
	assert.Equal(t, [3]float32{0, 0, 0}, c.Target())
	assert.InDelta(t, math32.Sqrt(27), c.Distance(), 1e-5)
	assert.Equal(t, float32(0.01), c.Near())
	assert.Equal(t, float32(1000), c.Far())
	assert.InDelta(t, common.Radians(60), c.Fov(), 1e-6)
}

func TestViewMatrixFacesTarget(t *testing.T) {
	c := NewCamera(WithPosition([3]float32{0, 0, 5}), WithTarget([3]float32{0, 0, 0}))
	view := c.ViewMatrix()

	// The target lands on the negative view-space z axis.
	assert.InDelta(t, 0, view[12], 1e-5)
	assert.InDelta(t, 0, view[13], 1e-5)
	assert.InDelta(t, -5, view[14], 1e-5)
}

func TestProjectionIsReverseZ(t *testing.T) {
	c := NewCamera(WithAspect(16.0/9.0), WithClipPlanes(0.5, 50))
	proj := c.ProjectionMatrix()
	depth := func(z float32) float32 {
		return (proj[10]*z + proj[14]) / (proj[11] * z)
	}
	assert.InDelta(t, 1, depth(-0.5), 1e-4)
	assert.InDelta(t, 0, depth(-50), 1e-4)
}

func TestSidewaysMoveKeepsDistance(t *testing.T) {
	c := NewCamera()
	before := c.Distance()
	start := c.Position()

	c.Move([3]float32{1, 0, 0})
	c.Move([3]float32{0, -1, 0})

	assert.InDelta(t, before, c.Distance(), 1e-4)
	assert.NotEqual(t, start, c.Position())
}

func TestZoomScalesWithDistance(t *testing.T) {
	c := NewCamera(WithPosition([3]float32{0, 0, 10}))
	c.Move([3]float32{0, 0, 10})
	// One step is 10 * 0.1 * 10 * 0.04 towards the target.
	assert.InDelta(t, 9.6, c.Distance(), 1e-4)

	c.Move([3]float32{0, 0, -10})
	assert.Greater(t, c.Distance(), float32(9.6))
}

func TestMoveClampsDistance(t *testing.T) {
	c := NewCamera(WithPosition([3]float32{0, 0, 150}))
	c.Move([3]float32{1, 0, 0})
	assert.InDelta(t, MaxDistance, c.Distance(), 1e-3)

	c.SetPosition([3]float32{0, 0, 99.9})
	c.Move([3]float32{0, 0, -10})
	assert.LessOrEqual(t, c.Distance(), MaxDistance+1e-3)
}

func TestSetAspectIgnoresInvalid(t *testing.T) {
	c := NewCamera(WithAspect(2))
	c.SetAspect(0)
	assert.Equal(t, float32(2), c.Aspect())

	before := c.ProjectionMatrix()
	c.SetAspect(1)
	assert.NotEqual(t, before, c.ProjectionMatrix())
}

func TestViewProjectionIsProduct(t *testing.T) {
	c := NewCamera()
	view, proj := c.ViewMatrix(), c.ProjectionMatrix()
	var want [16]float32
	common.Mul4(want[:], proj[:], view[:])
	assert.Equal(t, want, c.ViewProjectionMatrix())
}
