package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/frame"
	"github.com/chewxy/math32"
)

// MaxDistance is the farthest the camera orbits from its target.
const MaxDistance float32 = 100

// stepScale turns the clamped target distance into the length of one move step,
// so movement slows as the camera closes in.
const stepScale float32 = 0.04

type cameraImpl struct {
	mu *sync.Mutex

	position [3]float32
	target   [3]float32
	worldUp  [3]float32

	// Orthonormal basis facing the target, rebuilt by look.
	front [3]float32
	right [3]float32
	up    [3]float32

	fov    float32
	aspect float32
	near   float32
	far    float32
	speed  float32

	viewMatrix           [16]float32
	projectionMatrix     [16]float32
	viewProjectionMatrix [16]float32
}

// Camera is an orbit camera that always faces its target. Its matrices use a
// reverse-Z projection: depth is 1 at the near plane and 0 at the far plane.
type Camera interface {
	frame.Camera

	// Target returns the point the camera orbits and faces.
	//
	// Returns:
	//   - [3]float32: the target in world space
	Target() [3]float32

	// Distance returns the distance between the camera and its target.
	//
	// Returns:
	//   - float32: the distance
	Distance() float32

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// ViewProjectionMatrix returns the combined view-projection matrix (column-major).
	//
	// Returns:
	//   - [16]float32: the combined view-projection matrix
	ViewProjectionMatrix() [16]float32

	// Move steps the camera in its own basis. X moves right, Y moves up and Z moves
	// towards the target, each scaled by the speed and by the target distance.
	// Sideways moves orbit at a constant distance; no move leaves the camera farther
	// than MaxDistance from its target.
	//
	// Parameters:
	//   - direction: the move in camera space
	Move(direction [3]float32)

	// SetPosition places the camera and turns it to face the target.
	//
	// Parameters:
	//   - position: the camera position in world space
	SetPosition(position [3]float32)

	// SetTarget sets the point the camera orbits and faces.
	//
	// Parameters:
	//   - target: the target in world space
	SetTarget(target [3]float32)

	// SetAspect sets the aspect ratio (width / height) and recomputes the projection.
	// Non-positive values are ignored.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// SetFov sets the vertical field of view in radians.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)
}

var _ Camera = &cameraImpl{}

// NewCamera creates an orbit camera at (1, 1, 5) facing the origin, with a 60 degree
// field of view, near plane 0.01, far plane 1000 and speed 0.1.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		position: [3]float32{1, 1, 5},
		worldUp:  [3]float32{0, 1, 0},
		fov:      common.Radians(60),
		aspect:   1,
		near:     0.01,
		far:      1000,
		speed:    0.1,
	}
	for _, option := range options {
		option(c)
	}
	c.look()
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Position() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Target() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Distance() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.distance()
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Move(direction [3]float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	distance := math32.Min(c.distance(), MaxDistance)
	step := distance * stepScale
	for i := range 3 {
		c.position[i] += c.front[i] * direction[2] * c.speed * step
		c.position[i] += c.right[i] * direction[0] * c.speed * step
		c.position[i] += c.up[i] * direction[1] * c.speed * step
	}
	c.look()

	moved := c.distance()
	if moved > 0 && (direction[2] == 0 || moved > MaxDistance) {
		offset := common.Sub3(c.position, c.target)
		for i := range 3 {
			c.position[i] = c.target[i] + offset[i]*distance/moved
		}
		c.look()
	}
	c.updateMatrices()
}

func (c *cameraImpl) SetPosition(position [3]float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = position
	c.look()
	c.updateMatrices()
}

func (c *cameraImpl) SetTarget(target [3]float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = target
	c.look()
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateMatrices()
}

// distance returns the camera-to-target distance. Caller must hold the mutex.
func (c *cameraImpl) distance() float32 {
	d := common.Sub3(c.position, c.target)
	return math32.Sqrt(common.Dot3(d, d))
}

// look rebuilds the camera basis so that front points at the target.
// Caller must hold the mutex.
func (c *cameraImpl) look() {
	c.front = common.Normalize3(common.Sub3(c.target, c.position))
	c.right = common.Normalize3(common.Cross3(c.front, c.worldUp))
	c.up = common.Normalize3(common.Cross3(c.right, c.front))
}

// updateMatrices recalculates the view, projection and view-projection matrices.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	common.LookAt(c.viewMatrix[:], c.position, c.target, c.worldUp)
	common.PerspectiveReverseZ(c.projectionMatrix[:], c.fov, c.aspect, c.near, c.far)
	common.Mul4(c.viewProjectionMatrix[:], c.projectionMatrix[:], c.viewMatrix[:])
}
