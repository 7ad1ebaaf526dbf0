package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
[window]
title = "Sandbox"
width = 1600
height = 900

[renderer]
present_mode = "uncapped"
frames_in_flight = 2
clear_color = [0.0, 0.0, 0.0, 1.0]

[engine]
tick_rate = 120.0
profiling = true
profile_interval = "500ms"
`

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	mode, err := cfg.Renderer.Mode()
	require.NoError(t, err)
	assert.Equal(t, device.PresentModeVSync, mode)
	assert.Equal(t, 3, cfg.Renderer.FramesInFlight)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "Sandbox", cfg.Window.Title)
	assert.Equal(t, 1600, cfg.Window.Width)
	assert.Equal(t, 320, cfg.Window.MinWidth)

	mode, err := cfg.Renderer.Mode()
	require.NoError(t, err)
	assert.Equal(t, device.PresentModeUncapped, mode)
	assert.Equal(t, 2, cfg.Renderer.FramesInFlight)
	assert.Equal(t, device.Color{A: 1}, cfg.Renderer.Color())

	assert.Equal(t, float64(120), cfg.Engine.TickRate)
	assert.True(t, cfg.Engine.Profiling)
	assert.Equal(t, Duration(500*time.Millisecond), cfg.Engine.ProfileInterval)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("[window]\ntitel = \"typo\"\n"))
	assert.Error(t, err)
}

func TestParseReportsPosition(t *testing.T) {
	_, err := Parse([]byte("[window]\nwidth = = 3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Window.Width = 0
	cfg.Renderer.PresentMode = "mailbox"
	cfg.Renderer.FramesInFlight = 4
	cfg.Renderer.ClearColor[1] = 2
	cfg.Engine.TickRate = 0

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"window size", "present_mode", "frames_in_flight", "clear_color[1]", "tick_rate"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoadAndEncodeRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	data, err := cfg.Encode()
	require.NoError(t, err)
	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
