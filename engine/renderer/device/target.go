package device

// ColorAttachment is one colour output of a render target.
type ColorAttachment struct {
	Texture    Texture
	Load       LoadAction
	Store      StoreAction
	ClearColor Color
}

// DepthAttachment is the depth output of a render target.
type DepthAttachment struct {
	Texture    Texture
	Load       LoadAction
	Store      StoreAction
	ClearDepth float32
}

// StencilAttachment is the stencil output of a render target.
type StencilAttachment struct {
	Texture      Texture
	Load         LoadAction
	Store        StoreAction
	ClearStencil uint32
}

// TargetDescriptor describes the attachments an encoder renders into.
//
// When both Depth and Stencil are set they must reference the same texture, which
// must carry both aspects.
type TargetDescriptor struct {
	Label   string
	Colors  []ColorAttachment
	Depth   *DepthAttachment
	Stencil *StencilAttachment
}

// Valid reports whether an encoder can be created for the target: it has at least
// one attachment, no attachment is missing its texture, all attachments share one
// size, and the depth and stencil attachments agree on their texture.
//
// Returns:
//   - bool: true if the target is usable
func (t *TargetDescriptor) Valid() bool {
	if t == nil {
		return false
	}
	if len(t.Colors) == 0 && t.Depth == nil && t.Stencil == nil {
		return false
	}

	var w, h uint32
	sized := false
	check := func(tex Texture) bool {
		if tex == nil {
			return false
		}
		if !sized {
			w, h, sized = tex.Width(), tex.Height(), true
			return true
		}
		return tex.Width() == w && tex.Height() == h
	}

	for _, c := range t.Colors {
		if !check(c.Texture) || c.Texture.Format().HasDepth() {
			return false
		}
	}
	if t.Depth != nil && (!check(t.Depth.Texture) || !t.Depth.Texture.Format().HasDepth()) {
		return false
	}
	if t.Stencil != nil && (!check(t.Stencil.Texture) || !t.Stencil.Texture.Format().HasStencil()) {
		return false
	}
	if t.Depth != nil && t.Stencil != nil && t.Depth.Texture != t.Stencil.Texture {
		return false
	}
	return true
}

// Writes reports whether tex is one of the target's attachments.
//
// Parameters:
//   - tex: the texture to look for
//
// Returns:
//   - bool: true if the target renders into tex
func (t *TargetDescriptor) Writes(tex Texture) bool {
	if t == nil || tex == nil {
		return false
	}
	for _, c := range t.Colors {
		if c.Texture == tex {
			return true
		}
	}
	if t.Depth != nil && t.Depth.Texture == tex {
		return true
	}
	return t.Stencil != nil && t.Stencil.Texture == tex
}

// DepthStencilTexture returns the texture backing the depth or stencil attachment, or nil.
//
// Returns:
//   - Texture: the depth-stencil texture, or nil
func (t *TargetDescriptor) DepthStencilTexture() Texture {
	if t == nil {
		return nil
	}
	if t.Depth != nil {
		return t.Depth.Texture
	}
	if t.Stencil != nil {
		return t.Stencil.Texture
	}
	return nil
}

// Clone returns a deep copy of the descriptor. Textures are shared, attachment
// settings are not.
//
// Returns:
//   - *TargetDescriptor: the copy, or nil if t is nil
func (t *TargetDescriptor) Clone() *TargetDescriptor {
	if t == nil {
		return nil
	}
	c := &TargetDescriptor{Label: t.Label}
	if len(t.Colors) > 0 {
		c.Colors = append([]ColorAttachment(nil), t.Colors...)
	}
	if t.Depth != nil {
		d := *t.Depth
		c.Depth = &d
	}
	if t.Stencil != nil {
		s := *t.Stencil
		c.Stencil = &s
	}
	return c
}
