// Package shader holds the WGSL sources of the built-in passes and the @oxy:
// pre-processor that expands them.
package shader

import (
	"embed"
	"fmt"
)

//go:embed assets/*.wgsl
var assets embed.FS

// Built-in shader keys, loadable with Load.
const (
	KeyLighting = "lighting"
	KeyUI       = "ui"
	KeyDisplay  = "display"
)

// shader is the implementation of the Shader interface.
type shader struct {
	key          string
	source       string
	declarations []Annotation
	maxGroup     int
}

// Shader is a pre-processed WGSL module holding the vertex and fragment entry
// points of one or more pipelines.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used as the module label.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the pre-processed WGSL source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// Declarations returns the group and provider annotations of the shader, in source order.
	//
	// Returns:
	//   - []Annotation: the declarations
	Declarations() []Annotation

	// MaxGroup returns the highest bind group index the shader declares, or -1 if it
	// declares none. A pipeline built from the shader needs layouts for groups 0 through MaxGroup.
	//
	// Returns:
	//   - int: the highest declared group index
	MaxGroup() int
}

var _ Shader = &shader{}

// NewShader pre-processes WGSL source into a Shader.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - source: the WGSL source with @oxy: annotations
//
// Returns:
//   - Shader: the processed shader
//   - error: an error if an annotation is malformed
func NewShader(key, source string) (Shader, error) {
	pp := NewPreProcessor()
	processed, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader: failed to pre-process %q: %w", key, err)
	}
	s := &shader{
		key:          key,
		source:       processed,
		declarations: append([]Annotation(nil), pp.Declarations()...),
		maxGroup:     -1,
	}
	for _, d := range s.declarations {
		if d.Group != nil && *d.Group > s.maxGroup {
			s.maxGroup = *d.Group
		}
	}
	return s, nil
}

// Load reads one of the built-in shaders by key.
//
// Parameters:
//   - key: the shader key, e.g. KeyLighting
//
// Returns:
//   - Shader: the processed shader
//   - error: an error if the key is unknown or the source is malformed
func Load(key string) (Shader, error) {
	data, err := assets.ReadFile("assets/" + key + ".wgsl")
	if err != nil {
		return nil, fmt.Errorf("shader: unknown shader %q: %w", key, err)
	}
	return NewShader(key, string(data))
}

func (s *shader) Key() string                { return s.key }
func (s *shader) Source() string             { return s.source }
func (s *shader) Declarations() []Annotation { return s.declarations }
func (s *shader) MaxGroup() int              { return s.maxGroup }
