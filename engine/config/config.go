// Package config loads engine settings from TOML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device"
	"github.com/pelletier/go-toml/v2"
)

// Present mode names accepted in the renderer section.
const (
	PresentModeVSync    = "vsync"
	PresentModeUncapped = "uncapped"
)

// Config is the full engine configuration.
type Config struct {
	Window   Window   `toml:"window"`
	Renderer Renderer `toml:"renderer"`
	Engine   Engine   `toml:"engine"`
}

// Window configures the platform window.
type Window struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	MinWidth  int    `toml:"min_width"`
	MinHeight int    `toml:"min_height"`
}

// Renderer configures the device and the frame pipeline.
type Renderer struct {
	PresentMode    string     `toml:"present_mode"`
	ForceSoftware  bool       `toml:"force_software"`
	FramesInFlight int        `toml:"frames_in_flight"`
	ClearColor     [4]float64 `toml:"clear_color"`
}

// Engine configures the tick and render loops.
type Engine struct {
	TickRate        float64  `toml:"tick_rate"`
	FrameLimit      float64  `toml:"frame_limit"`
	Profiling       bool     `toml:"profiling"`
	ProfileInterval Duration `toml:"profile_interval"`
}

// Duration is a time.Duration written as a Go duration string ("500ms", "2s").
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		Window: Window{
			Title:     "oxy-deferred",
			Width:     1280,
			Height:    720,
			MinWidth:  320,
			MinHeight: 200,
		},
		Renderer: Renderer{
			PresentMode:    PresentModeVSync,
			FramesInFlight: common.FramesInFlight,
			ClearColor:     [4]float64{0.1725, 0.1725, 0.1804, 1},
		},
		Engine: Engine{
			TickRate:        60,
			ProfileInterval: Duration(time.Second),
		},
	}
}

// Load reads and validates the TOML file at path. Keys missing from the file keep
// their default values.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - Config: the configuration
//   - error: an error if the file cannot be read, parsed or validated
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates TOML data on top of the defaults. Unknown keys are errors.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - Config: the configuration
//   - error: an error if the document is malformed or invalid
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return Config{}, fmt.Errorf("line %d column %d: %w", row, col, err)
		}
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode writes the configuration as TOML.
//
// Returns:
//   - []byte: the TOML document
//   - error: an error if encoding fails
func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate checks value ranges. Every problem found is reported.
//
// Returns:
//   - error: the joined validation errors, or nil
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Window.MinWidth < 0 || c.Window.MinHeight < 0 {
		errs = append(errs, fmt.Errorf("window minimum size %dx%d must not be negative", c.Window.MinWidth, c.Window.MinHeight))
	}
	if _, err := c.Renderer.Mode(); err != nil {
		errs = append(errs, err)
	}
	if n := c.Renderer.FramesInFlight; n < 1 || n > common.FramesInFlight {
		errs = append(errs, fmt.Errorf("frames_in_flight %d must be between 1 and %d", n, common.FramesInFlight))
	}
	for i, v := range c.Renderer.ClearColor {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("clear_color[%d] = %g is outside [0, 1]", i, v))
		}
	}
	if c.Engine.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("tick_rate %g must be positive", c.Engine.TickRate))
	}
	if c.Engine.FrameLimit < 0 {
		errs = append(errs, fmt.Errorf("frame_limit %g must not be negative", c.Engine.FrameLimit))
	}
	if c.Engine.ProfileInterval <= 0 {
		errs = append(errs, fmt.Errorf("profile_interval %s must be positive", time.Duration(c.Engine.ProfileInterval)))
	}
	return errors.Join(errs...)
}

// Mode converts the present mode name to the device present mode.
//
// Returns:
//   - device.PresentMode: the present mode
//   - error: an error if the name is unknown
func (r Renderer) Mode() (device.PresentMode, error) {
	switch strings.ToLower(r.PresentMode) {
	case PresentModeVSync, "":
		return device.PresentModeVSync, nil
	case PresentModeUncapped:
		return device.PresentModeUncapped, nil
	default:
		return device.PresentModeVSync, fmt.Errorf("unknown present_mode %q (want %q or %q)", r.PresentMode, PresentModeVSync, PresentModeUncapped)
	}
}

// Color returns the clear colour as a device colour.
//
// Returns:
//   - device.Color: the clear colour
func (r Renderer) Color() device.Color {
	c := r.ClearColor
	return device.Color{R: c[0], G: c[1], B: c[2], A: c[3]}
}
