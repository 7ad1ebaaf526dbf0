package light

import (
	"fmt"
	"sync"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeDirectional has a direction and no position. It reaches every
	// fragment without attenuation.
	LightTypeDirectional LightType = iota

	// LightTypePoint emits in all directions and attenuates with distance up to its range.
	LightTypePoint

	// LightTypeSpot emits in a cone along its direction, attenuating with distance
	// and with the angle from the cone axis.
	LightTypeSpot
)

func (t LightType) String() string {
	switch t {
	case LightTypeDirectional:
		return "directional"
	case LightTypePoint:
		return "point"
	case LightTypeSpot:
		return "spot"
	default:
		return fmt.Sprintf("LightType(%d)", int(t))
	}
}

// Params is a snapshot of a light's parameters. Fields that do not apply to the
// light's type are carried but ignored by the shaders.
type Params struct {
	Position  [3]float32
	Direction [3]float32 // normalized
	Color     [3]float32
	Intensity float32
	Range     float32
	Falloff   float32
	InnerCone float32 // cos(inner half-angle)
	OuterCone float32 // cos(outer half-angle)
	Enabled   bool
}

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	mu        *sync.RWMutex
	lightType LightType
	params    Params
}

// Light is a light source registered with Lights. Setters may be called from any
// goroutine; the light buffer packs a Params snapshot once per frame.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type
	Type() LightType

	// Params returns a copy of the light's current parameters.
	//
	// Returns:
	//   - Params: the snapshot
	Params() Params

	SetPosition(x, y, z float32)

	// SetDirection normalizes the direction before storing it.
	SetDirection(x, y, z float32)

	SetColor(r, g, b float32)
	SetIntensity(intensity float32)
	SetRange(lightRange float32)
	SetFalloff(falloff float32)

	// SetSpotCone sets the cone half-angles in degrees.
	//
	// Parameters:
	//   - innerDeg: angle of full intensity
	//   - outerDeg: angle beyond which the spot contributes nothing
	SetSpotCone(innerDeg, outerDeg float32)

	// SetEnabled toggles the light. Disabled lights are left out of the light buffer.
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates a light of the given type. Point and spot lights sit at (0, 1, 0)
// with a range of 10 and a falloff of 2; spot cones default to 20 and 30 degrees;
// every direction defaults to straight down.
//
// Parameters:
//   - lightType: the kind of light to create
//   - opts: functional options to configure the light
//
// Returns:
//   - Light: the new light
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		mu:        &sync.RWMutex{},
		lightType: lightType,
		params: Params{
			Direction: [3]float32{0, -1, 0},
			Color:     [3]float32{1, 1, 1},
			Intensity: 1,
			Range:     10,
			Falloff:   2,
			InnerCone: cosDeg(20),
			OuterCone: cosDeg(30),
			Enabled:   true,
		},
	}
	if lightType != LightTypeDirectional {
		l.params.Position = [3]float32{0, 1, 0}
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Params() Params {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.params
}

// update applies fn to the parameters under the write lock.
func (l *lightImpl) update(fn func(p *Params)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(&l.params)
}

func (l *lightImpl) SetPosition(x, y, z float32) {
	l.update(func(p *Params) { p.Position = [3]float32{x, y, z} })
}

func (l *lightImpl) SetDirection(x, y, z float32) {
	l.update(func(p *Params) { p.Direction = normalize3(x, y, z) })
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.update(func(p *Params) { p.Color = [3]float32{r, g, b} })
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.update(func(p *Params) { p.Intensity = intensity })
}

func (l *lightImpl) SetRange(lightRange float32) {
	l.update(func(p *Params) { p.Range = lightRange })
}

func (l *lightImpl) SetFalloff(falloff float32) {
	l.update(func(p *Params) { p.Falloff = falloff })
}

func (l *lightImpl) SetSpotCone(innerDeg, outerDeg float32) {
	l.update(func(p *Params) {
		p.InnerCone = cosDeg(innerDeg)
		p.OuterCone = cosDeg(outerDeg)
	})
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.update(func(p *Params) { p.Enabled = enabled })
}
