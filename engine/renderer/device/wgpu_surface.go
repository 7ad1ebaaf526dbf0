package device

import (
	"log"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuSurface is the WebGPU implementation of the Surface interface.
// It holds at most one acquired drawable at a time, until that drawable is presented.
type wgpuSurface struct {
	mu      *sync.Mutex
	dev     *wgpuDevice
	surface *wgpu.Surface

	format     wgpu.TextureFormat
	width      uint32
	height     uint32
	configured bool

	current *wgpuDrawable
}

var _ Surface = &wgpuSurface{}

// wgpuDrawable is a swapchain image acquired for the current frame.
type wgpuDrawable struct {
	texture *wgpuTexture
}

func (d *wgpuDrawable) Texture() Texture {
	return d.texture
}

func (s *wgpuSurface) Configure(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if width <= 0 || height <= 0 {
		// Minimized windows report a zero framebuffer; keep the previous swapchain.
		return
	}

	if s.current != nil {
		s.current.texture.Release()
		s.current = nil
	}

	capabilities := s.surface.GetCapabilities(s.dev.adapter)
	s.format = capabilities.Formats[0]
	s.width, s.height = uint32(width), uint32(height)

	s.dev.mu.Lock()
	presentMode := s.dev.presentMode
	s.dev.mu.Unlock()

	s.surface.Configure(s.dev.adapter, s.dev.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      s.format,
		Width:       s.width,
		Height:      s.height,
		PresentMode: presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	s.configured = true
}

func (s *wgpuSurface) Format() PixelFormat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fromWGPUFormat(s.format)
}

func (s *wgpuSurface) CurrentDrawable() (Drawable, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.configured {
		return nil, false
	}
	if s.current != nil {
		return s.current, true
	}

	tex, err := s.surface.GetCurrentTexture()
	if err != nil {
		log.Printf("[Surface] no drawable this frame: %v", err)
		return nil, false
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, false
	}

	s.current = &wgpuDrawable{
		texture: &wgpuTexture{
			label:   "Drawable",
			width:   s.width,
			height:  s.height,
			format:  fromWGPUFormat(s.format),
			texture: tex,
			view:    view,
		},
	}
	return s.current, true
}

// present shows d if it is still the surface's current drawable and releases it.
func (s *wgpuSurface) present(d *wgpuDrawable) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != d {
		return
	}
	s.surface.Present()
	d.texture.Release()
	s.current = nil
}

func (s *wgpuSurface) release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.current.texture.Release()
		s.current = nil
	}
	s.surface.Release()
}
