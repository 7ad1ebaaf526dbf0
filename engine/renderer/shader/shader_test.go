package shader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnnotation(t *testing.T) {
	a, err := parseAnnotation("let x = 1.0;", 1)
	require.NoError(t, err)
	assert.Nil(t, a)

	a, err = parseAnnotation("  //@oxy:group 1 0 storage_read lights light_buffer", 7)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, AnnotationTypeBindingGroup, a.Type)
	assert.Equal(t, 1, *a.Group)
	assert.Equal(t, 0, *a.Binding)
	assert.Equal(t, 7, a.Line)
	assert.Equal(t, []AnnotationArg{"storage_read", "lights", "light_buffer"}, a.Args)

	a, err = parseAnnotation("//@oxy:provider 2 1 gbuffer normal", 3)
	require.NoError(t, err)
	assert.Equal(t, []AnnotationArg{AnnotationArgGBuffer, AnnotationArgNormal}, a.Args)
}

func TestParseAnnotationErrors(t *testing.T) {
	for _, line := range []string{
		"//@oxy:",
		"//@oxy:include",
		"//@oxy:include camera",
		"//@oxy:group x 0 storage_uniform frame frame",
		"//@oxy:group 0 0 storage_private frame frame",
		"//@oxy:group 0 0 storage_uniform frame",
		"//@oxy:provider 2 0 material",
		"//@oxy:provider 2 0 gbuffer diffuse",
		"//@oxy:bogus 1",
	} {
		_, err := parseAnnotation(line, 1)
		assert.Error(t, err, line)
	}
}

func TestProcessIncludesDependenciesOnce(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process("//@oxy:include light_header\n//@oxy:include light_buffer\n//@oxy:group 1 0 storage_read lights light_buffer")
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, "struct LightHeader"))
	assert.Equal(t, 1, strings.Count(out, "struct PointLight"))
	assert.Less(t, strings.Index(out, "struct SpotLight"), strings.Index(out, "struct LightBuffer"))
	assert.Contains(t, out, "@group(1) @binding(0) var<storage, read> lights: LightBuffer;")
	require.Len(t, pp.Declarations(), 1)
}

func TestProcessRejectsUnbindableStruct(t *testing.T) {
	_, err := NewPreProcessor().Process("//@oxy:group 1 0 storage_read lights light")
	assert.Error(t, err)
}

func TestLoadBuiltins(t *testing.T) {
	cases := map[string]struct {
		maxGroup int
		entries  []string
	}{
		KeyLighting: {2, []string{"vs_fullscreen", "fs_lighting"}},
		KeyUI:       {0, []string{"vs_grid", "vs_axis", "fs_line"}},
		KeyDisplay:  {3, []string{"vs_fullscreen", "fs_display"}},
	}
	for key, c := range cases {
		s, err := Load(key)
		require.NoError(t, err, key)
		assert.Equal(t, key, s.Key())
		assert.Equal(t, c.maxGroup, s.MaxGroup(), key)
		assert.NotContains(t, s.Source(), annotationPrefix, key)
		for _, e := range c.entries {
			assert.Contains(t, s.Source(), "fn "+e+"(", key)
		}
	}
}

func TestLoadUnknown(t *testing.T) {
	_, err := Load("missing")
	assert.Error(t, err)
}

func TestNewShaderWithoutDeclarations(t *testing.T) {
	s, err := NewShader("plain", "@fragment fn fs() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }")
	require.NoError(t, err)
	assert.Equal(t, -1, s.MaxGroup())
	assert.Empty(t, s.Declarations())
}
