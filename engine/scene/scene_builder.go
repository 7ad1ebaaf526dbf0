package scene

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithLayers adds initial layers to the scene, in draw order.
//
// Parameters:
//   - layers: the layers to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLayers(layers ...Layer) SceneBuilderOption {
	return func(s *scene) {
		s.layers = append(s.layers, layers...)
	}
}

// WithPrepareWorkers sets the number of worker goroutines used by the parallel
// Prepare phase. Defaults to runtime.NumCPU()-1.
//
// Parameters:
//   - n: the number of workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithPrepareWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		s.prepareWorkers = max(n, 1)
	}
}

// WithDeltaSource replaces the renderer's frame delta as the time step passed to Prepare.
//
// Parameters:
//   - fn: returns the seconds since the previous frame
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithDeltaSource(fn func() float32) SceneBuilderOption {
	return func(s *scene) {
		s.delta = fn
	}
}
