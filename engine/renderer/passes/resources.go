// Package passes implements the built-in render passes of the deferred frame:
// Clear, GBuffer, Lighting, PostProcess, UI and Display.
package passes

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/light"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/frame"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/render_pass"
)

// GBufferFormats are the formats of the albedo, normal and position targets.
var GBufferFormats = [3]device.PixelFormat{
	device.FormatRGBA8Unorm,
	device.FormatRGBA16Float,
	device.FormatRGBA16Float,
}

// Resources are the objects shared by every pass. The renderer owns them.
type Resources struct {
	Device  device.Device
	Frame   frame.FrameInfo
	Lights  light.Lights
	Surface device.Surface

	// GBufferLayout is the layout of the geometry buffer textures at common.GroupGBuffer.
	GBufferLayout device.BindGroupLayout
}

// NewResources bundles the shared objects and creates the geometry buffer layout.
// Panics if the device rejects the layout.
//
// Parameters:
//   - dev: the device
//   - f: the frame state
//   - l: the light collection
//   - surface: the presentation surface, may be nil for offscreen use
//
// Returns:
//   - *Resources: the bundle
func NewResources(dev device.Device, f frame.FrameInfo, l light.Lights, surface device.Surface) *Resources {
	entries := make([]device.BindGroupLayoutEntry, len(GBufferFormats))
	for i := range entries {
		entries[i] = device.BindGroupLayoutEntry{
			Binding:    uint32(i),
			Visibility: device.StageFragment,
			Kind:       device.BindingTexture,
		}
	}
	layout, err := dev.CreateBindGroupLayout(device.BindGroupLayoutDescriptor{
		Label:   "GBuffer Layout",
		Entries: entries,
	})
	if err != nil {
		panic(fmt.Errorf("passes: failed to create gbuffer layout: %w", err))
	}
	return &Resources{
		Device:        dev,
		Frame:         f,
		Lights:        l,
		Surface:       surface,
		GBufferLayout: layout,
	}
}

// Layouts returns the shared bind group layouts for groups 0 through upTo.
//
// Parameters:
//   - upTo: the highest group index, at most common.GroupFrameTextures
//
// Returns:
//   - []device.BindGroupLayout: the layouts in group order
func (r *Resources) Layouts(upTo int) []device.BindGroupLayout {
	all := []device.BindGroupLayout{
		common.GroupFrame:         r.Frame.UniformLayout(),
		common.GroupLights:        r.Lights.Layout(),
		common.GroupGBuffer:       r.GBufferLayout,
		common.GroupFrameTextures: r.Frame.TextureLayout(),
	}
	if upTo >= len(all) {
		upTo = len(all) - 1
	}
	return all[:upTo+1]
}

// Release frees the geometry buffer layout.
func (r *Resources) Release() {
	if r.GBufferLayout != nil {
		r.GBufferLayout.Release()
		r.GBufferLayout = nil
	}
}

// Defaults returns the built-in pass set in execution order.
//
// Parameters:
//   - res: the shared resources
//
// Returns:
//   - []render_pass.RenderPass: Clear, GBuffer, Lighting, PostProcess, UI and Display
func Defaults(res *Resources) []render_pass.RenderPass {
	return []render_pass.RenderPass{
		NewClearPass(res),
		NewGBufferPass(res),
		NewLightingPass(res),
		NewPostProcessPass(res),
		NewUIPass(res),
		NewDisplayPass(res),
	}
}
