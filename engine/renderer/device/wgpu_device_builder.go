package device

// WGPUDeviceBuilderOption is a functional option applied to a WebGPU device during construction via NewWGPUDevice.
type WGPUDeviceBuilderOption func(*wgpuDevice)

// WithLabel sets the debug label of the logical device.
//
// Parameters:
//   - label: the device label
//
// Returns:
//   - WGPUDeviceBuilderOption: a function that applies the label option to a device
func WithLabel(label string) WGPUDeviceBuilderOption {
	return func(d *wgpuDevice) {
		if label != "" {
			d.label = label
		}
	}
}

// WithPresentMode sets the surface present mode used when the surface is configured.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - WGPUDeviceBuilderOption: a function that applies the present mode option to a device
func WithPresentMode(mode PresentMode) WGPUDeviceBuilderOption {
	return func(d *wgpuDevice) {
		d.SetPresentMode(mode)
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware acceleration. This requires a software Vulkan ICD such as lavapipe or SwiftShader.
//
// Parameters:
//   - force: true to force the software fallback adapter
//
// Returns:
//   - WGPUDeviceBuilderOption: a function that applies the fallback adapter option to a device
func WithForceSoftwareRenderer(force bool) WGPUDeviceBuilderOption {
	return func(d *wgpuDevice) {
		d.forceFallbackAdapter = force
	}
}
