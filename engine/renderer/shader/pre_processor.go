// pre_processor.go implements the Oxy WGSL shader pre-processor. It scans shader
// source code for @oxy: annotations, replaces them with generated WGSL declarations
// or injected struct source, and collects a declarations list.
//
// The pre-processor maintains two registries:
//   - structRegistry: maps AnnotationArg keys to embedded WGSL struct sources, their
//     resolved type names and the structs they depend on.
//   - addressSpaceRegistry: maps address space argument keys to WGSL var<> syntax strings.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-deferred/engine/light"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/frame"
)

// registryEntry pairs a WGSL struct source string with the resolved WGSL type name
// used in generated @group/@binding declarations.
type registryEntry struct {
	// Source is the raw WGSL struct definition text injected by @oxy:include.
	Source string

	// Type is the WGSL type name emitted in @oxy:group declarations. Empty for
	// sources that only define member structs and cannot be bound directly.
	Type string

	// Requires lists the struct types Source references. They are injected first.
	Requires []AnnotationArg
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	structRegistry       map[AnnotationArg]registryEntry
	addressSpaceRegistry map[AnnotationArg]string

	// declarations accumulates group and provider annotations during a Process call.
	declarations []Annotation
}

// PreProcessor processes raw WGSL shader source code containing @oxy: annotations,
// replacing them with generated declarations or injected struct sources while collecting
// a declarations list.
type PreProcessor interface {
	// Process pre-processes WGSL source. Include annotations are replaced with the
	// struct source (and the sources it requires, each injected at most once), group
	// annotations with generated @group/@binding declarations. Provider annotations
	// produce no WGSL output but are recorded in the declarations list.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code
	//
	// Returns:
	//   - string: the processed WGSL shader source code
	//   - error: an error if any annotation is malformed or references an unknown type
	Process(source string) (string, error)

	// Declarations returns the group and provider annotations collected during the
	// most recent call to Process, in source order.
	//
	// Returns:
	//   - []Annotation: the declarations collected during the last Process call
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a new PreProcessor with all registered struct types and
// address space mappings pre-populated.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgFrame:       {Source: frame.UniformsSource, Type: "FrameUniforms"},
			AnnotationArgLightHeader: {Source: light.GPULightHeaderSource, Type: "LightHeader"},
			AnnotationArgLight:       {Source: light.GPULightSource},
			AnnotationArgLightBuffer: {
				Source:   light.GPULightBufferSource,
				Type:     "LightBuffer",
				Requires: []AnnotationArg{AnnotationArgLightHeader, AnnotationArgLight},
			},
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgStorageTypeUniform:   "var<uniform>",
			annotationArgStorageTypeRead:      "var<storage, read>",
			annotationArgStorageTypeReadWrite: "var<storage, read_write>",
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	included := make(map[AnnotationArg]bool)

	var include func(arg AnnotationArg) error
	include = func(arg AnnotationArg) error {
		if included[arg] {
			return nil
		}
		entry, ok := p.structRegistry[arg]
		if !ok {
			return fmt.Errorf("unknown struct type %q", arg)
		}
		included[arg] = true
		for _, dep := range entry.Requires {
			if err := include(dep); err != nil {
				return err
			}
		}
		out = append(out, entry.Source)
		return nil
	}

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			if err := include(a.Args[0]); err != nil {
				return "", fmt.Errorf("line %d: %w", i+1, err)
			}
		case AnnotationTypeBindingGroup:
			addrSpace := p.addressSpaceRegistry[a.Args[0]]
			varName := string(a.Args[1])
			typeArg := string(a.Args[2])
			inner, isArray := strings.CutPrefix(typeArg, "array<")
			if isArray {
				typeArg = strings.TrimSuffix(inner, ">")
			}
			entry := p.structRegistry[AnnotationArg(typeArg)]
			if entry.Type == "" {
				return "", fmt.Errorf("line %d: struct type %q cannot be bound directly", i+1, typeArg)
			}
			wgslType := entry.Type
			if isArray {
				wgslType = fmt.Sprintf("array<%s>", entry.Type)
			}

			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", *a.Group, *a.Binding, addrSpace, varName, wgslType))
			p.declarations = append(p.declarations, *a)
		case AnnotationTypeProvider:
			p.declarations = append(p.declarations, *a)
		default:
			return "", fmt.Errorf("line %d: unknown annotation type %q", i+1, a.Type)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
