package camera

type CameraBuilderOption func(*cameraImpl)

// WithPosition sets the camera's starting position.
//
// Parameters:
//   - position: the position in world space
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's position
func WithPosition(position [3]float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = position
	}
}

// WithTarget sets the point the camera orbits.
//
// Parameters:
//   - target: the target in world space
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's target
func WithTarget(target [3]float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.target = target
	}
}

// WithFov sets the camera's vertical field of view in radians.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithAspect sets the camera's aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio to set
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if aspect > 0 {
			c.aspect = aspect
		}
	}
}

// WithClipPlanes sets the near and far clipping plane distances.
//
// Parameters:
//   - near: near plane distance, greater than zero
//   - far: far plane distance, greater than near
//
// Returns:
//   - CameraBuilderOption: a function that sets the clip planes
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
		c.far = far
	}
}

// WithSpeed sets the move speed multiplier.
//
// Parameters:
//   - speed: the speed multiplier
//
// Returns:
//   - CameraBuilderOption: a function that sets the speed
func WithSpeed(speed float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.speed = speed
	}
}
