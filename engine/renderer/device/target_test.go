package device_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device/devicetest"
	"github.com/stretchr/testify/assert"
)

func TestTargetValid(t *testing.T) {
	color := devicetest.NewTexture("color", 64, 32, device.FormatRGBA16Float)
	ds := devicetest.NewTexture("ds", 64, 32, device.FormatDepth24PlusStencil8)
	depthOnly := devicetest.NewTexture("depth", 64, 32, device.FormatDepth32Float)
	small := devicetest.NewTexture("small", 16, 16, device.FormatRGBA8Unorm)

	tests := []struct {
		name   string
		target *device.TargetDescriptor
		valid  bool
	}{
		{"nil", nil, false},
		{"empty", &device.TargetDescriptor{}, false},
		{"colour only", &device.TargetDescriptor{Colors: []device.ColorAttachment{{Texture: color}}}, true},
		{"missing texture", &device.TargetDescriptor{Colors: []device.ColorAttachment{{}}}, false},
		{"depth stencil", &device.TargetDescriptor{
			Colors:  []device.ColorAttachment{{Texture: color}},
			Depth:   &device.DepthAttachment{Texture: ds},
			Stencil: &device.StencilAttachment{Texture: ds},
		}, true},
		{"stencil on depth-only format", &device.TargetDescriptor{
			Stencil: &device.StencilAttachment{Texture: depthOnly},
		}, false},
		{"split depth and stencil", &device.TargetDescriptor{
			Depth:   &device.DepthAttachment{Texture: depthOnly},
			Stencil: &device.StencilAttachment{Texture: ds},
		}, false},
		{"size mismatch", &device.TargetDescriptor{
			Colors: []device.ColorAttachment{{Texture: color}, {Texture: small}},
		}, false},
		{"depth format as colour", &device.TargetDescriptor{
			Colors: []device.ColorAttachment{{Texture: ds}},
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.target.Valid())
		})
	}
}

func TestTargetCloneIsIndependent(t *testing.T) {
	color := devicetest.NewTexture("color", 8, 8, device.FormatRGBA16Float)
	ds := devicetest.NewTexture("ds", 8, 8, device.FormatDepth24PlusStencil8)
	orig := &device.TargetDescriptor{
		Label:  "frame",
		Colors: []device.ColorAttachment{{Texture: color}},
		Depth:  &device.DepthAttachment{Texture: ds},
	}

	c := orig.Clone()
	c.Colors[0].Load = device.LoadActionClear
	c.Depth.Load = device.LoadActionClear

	assert.Equal(t, device.LoadActionLoad, orig.Colors[0].Load)
	assert.Equal(t, device.LoadActionLoad, orig.Depth.Load)
	assert.Same(t, color, c.Colors[0].Texture)
	assert.Nil(t, (*device.TargetDescriptor)(nil).Clone())
}

func TestTargetWrites(t *testing.T) {
	color := devicetest.NewTexture("color", 8, 8, device.FormatRGBA16Float)
	ds := devicetest.NewTexture("ds", 8, 8, device.FormatDepth24PlusStencil8)
	other := devicetest.NewTexture("other", 8, 8, device.FormatRGBA8Unorm)
	target := &device.TargetDescriptor{
		Colors:  []device.ColorAttachment{{Texture: color}},
		Stencil: &device.StencilAttachment{Texture: ds},
	}

	assert.True(t, target.Writes(color))
	assert.True(t, target.Writes(ds))
	assert.False(t, target.Writes(other))
	assert.False(t, target.Writes(nil))
	assert.Same(t, ds, target.DepthStencilTexture())
}

func TestPixelFormatAspects(t *testing.T) {
	assert.True(t, device.FormatDepth24PlusStencil8.HasDepth())
	assert.True(t, device.FormatDepth24PlusStencil8.HasStencil())
	assert.True(t, device.FormatDepth32Float.HasDepth())
	assert.False(t, device.FormatDepth32Float.HasStencil())
	assert.False(t, device.FormatRGBA16Float.HasDepth())
	assert.Equal(t, "rgba16float", device.FormatRGBA16Float.String())
}
