package light

import (
	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/chewxy/math32"
)

// LightBuilderOption configures a light during NewLight.
type LightBuilderOption func(*lightImpl)

// WithPosition sets the world-space position. Ignored by directional lights.
//
// Parameters:
//   - x, y, z: the position
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.params.Position = [3]float32{x, y, z}
	}
}

// WithDirection sets the direction, normalized. Ignored by point lights.
//
// Parameters:
//   - x, y, z: the direction
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithDirection(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.params.Direction = normalize3(x, y, z)
	}
}

// WithColor sets the linear RGB colour.
//
// Parameters:
//   - r, g, b: the colour
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithColor(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.params.Color = [3]float32{r, g, b}
	}
}

// WithIntensity sets the scalar multiplier applied to the colour.
//
// Parameters:
//   - intensity: the multiplier
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.params.Intensity = intensity
	}
}

// WithRange sets the distance at which point and spot lights fade to zero.
//
// Parameters:
//   - lightRange: the range in world units
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithRange(lightRange float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.params.Range = lightRange
	}
}

// WithFalloff sets the attenuation exponent of point and spot lights.
//
// Parameters:
//   - falloff: the exponent
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithFalloff(falloff float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.params.Falloff = falloff
	}
}

// WithSpotCone sets the spot cone half-angles in degrees. They are stored as cosines.
//
// Parameters:
//   - innerDeg: inner half-angle
//   - outerDeg: outer half-angle
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithSpotCone(innerDeg, outerDeg float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.params.InnerCone = cosDeg(innerDeg)
		l.params.OuterCone = cosDeg(outerDeg)
	}
}

// WithEnabled sets whether the light starts enabled.
//
// Parameters:
//   - enabled: false to register the light switched off
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.params.Enabled = enabled
	}
}

func normalize3(x, y, z float32) [3]float32 {
	return common.Normalize3([3]float32{x, y, z})
}

func cosDeg(deg float32) float32 {
	return math32.Cos(common.Radians(deg))
}
