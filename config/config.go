// Package config provides configuration loading for the renderer and its demos.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/drift/capture"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config holds all configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Canvas     CanvasConfig     `yaml:"canvas"`
	Borders    BordersConfig    `yaml:"borders"`
	Particles  ParticlesConfig  `yaml:"particles"`
	Background BackgroundConfig `yaml:"background"`
	Capture    CaptureConfig    `yaml:"capture"`
	Animation  AnimationConfig  `yaml:"animation"`
	Blobs      BlobsConfig      `yaml:"blobs"`
	Swarm      SwarmConfig      `yaml:"swarm"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Logging    LoggingConfig    `yaml:"logging"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds window settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
	Resizable bool   `yaml:"resizable"`
	// Freeze the animation clock while minimized or unfocused
	PauseWhenIdle bool `yaml:"pause_when_idle"`
}

// CanvasConfig pins the drawing surface to a fixed size.
// Zero width and height mean the surface tracks the window.
type CanvasConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// BordersConfig is the orthographic volume in world units.
// All zero means left=0, right=screen width, top=screen height, bottom=0.
type BordersConfig struct {
	Top    float64 `yaml:"top"`
	Left   float64 `yaml:"left"`
	Bottom float64 `yaml:"bottom"`
	Right  float64 `yaml:"right"`
}

// ParticlesConfig holds instanced mesh settings.
type ParticlesConfig struct {
	MaxCount int     `yaml:"max_count"`
	Color    string  `yaml:"color"`   // #rgb, #rrggbb or #rrggbbaa
	Opacity  float64 `yaml:"opacity"` // 0..1
}

// BackgroundConfig holds background quad settings.
type BackgroundConfig struct {
	ClearColor string `yaml:"clear_color"`
	Shader     string `yaml:"shader"` // path to a fragment shader; empty = built-in
}

// CaptureConfig holds frame recording settings.
type CaptureConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Format    string `yaml:"format"` // png or gif
	Framerate int    `yaml:"framerate"`
	Dir       string `yaml:"dir"`
	Width     int    `yaml:"width"`  // 0 = surface width
	Height    int    `yaml:"height"` // 0 = surface height
}

// AnimationConfig holds the frame budget.
type AnimationConfig struct {
	Frames int `yaml:"frames"` // 0 = run until the window closes
}

// BlobsConfig holds rising-blob background parameters.
type BlobsConfig struct {
	Length           float64 `yaml:"length"`             // default blob length in world units
	SpawnIntervalMax float64 `yaml:"spawn_interval_max"` // seconds; next spawn is uniform in [0, this)
	SpeedMin         float64 `yaml:"speed_min"`
	SpeedMax         float64 `yaml:"speed_max"`
	Motion           string  `yaml:"motion"` // diagonal or vertical
}

// SwarmConfig holds flow-field particle demo parameters.
type SwarmConfig struct {
	Count      int     `yaml:"count"`
	Speed      float64 `yaml:"speed"`       // world units per second
	NoiseScale float64 `yaml:"noise_scale"` // field frequency
	TimeScale  float64 `yaml:"time_scale"`  // field evolution per second
	Size       float64 `yaml:"size"`        // particle radius in world units
}

// TelemetryConfig holds frame statistics parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window"` // frames per rolling window
	LogInterval int `yaml:"log_interval"` // frames between stats log lines (0 = never)
}

// LoggingConfig holds slog settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Top, Left, Bottom, Right float32
	ParticleColor            color.RGBA
	ClearColor               color.RGBA
	CaptureFormat            capture.Format
	FixedCanvas              bool
	LogLevel                 slog.Level
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration and recomputes derived values.
func (c *Config) Validate() error {
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		return fmt.Errorf("%w: screen size %dx%d", ErrInvalid, c.Screen.Width, c.Screen.Height)
	}
	if c.Canvas.Width < 0 || c.Canvas.Height < 0 || (c.Canvas.Width == 0) != (c.Canvas.Height == 0) {
		return fmt.Errorf("%w: canvas size %dx%d", ErrInvalid, c.Canvas.Width, c.Canvas.Height)
	}
	if c.Particles.MaxCount < 1 {
		return fmt.Errorf("%w: particles.max_count must be at least 1", ErrInvalid)
	}
	if c.Particles.Opacity < 0 || c.Particles.Opacity > 1 {
		return fmt.Errorf("%w: particles.opacity %v outside [0, 1]", ErrInvalid, c.Particles.Opacity)
	}
	if c.Capture.Framerate < 1 {
		return fmt.Errorf("%w: capture.framerate must be at least 1", ErrInvalid)
	}
	if c.Animation.Frames < 0 {
		return fmt.Errorf("%w: animation.frames must not be negative", ErrInvalid)
	}
	switch c.Blobs.Motion {
	case "diagonal", "vertical":
	default:
		return fmt.Errorf("%w: blobs.motion %q (want diagonal or vertical)", ErrInvalid, c.Blobs.Motion)
	}
	if c.Blobs.SpeedMax < c.Blobs.SpeedMin {
		return fmt.Errorf("%w: blobs.speed_max below speed_min", ErrInvalid)
	}

	if c.Telemetry.StatsWindow < 1 {
		return fmt.Errorf("%w: telemetry.stats_window must be at least 1", ErrInvalid)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return fmt.Errorf("%w: logging.level %q", ErrInvalid, c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("%w: logging.format %q (want json or text)", ErrInvalid, c.Logging.Format)
	}

	format, err := capture.ParseFormat(c.Capture.Format)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	particleColor, err := ParseColor(c.Particles.Color)
	if err != nil {
		return fmt.Errorf("%w: particles.color: %v", ErrInvalid, err)
	}
	clearColor, err := ParseColor(c.Background.ClearColor)
	if err != nil {
		return fmt.Errorf("%w: background.clear_color: %v", ErrInvalid, err)
	}

	c.Derived.CaptureFormat = format
	c.Derived.ParticleColor = particleColor
	c.Derived.ClearColor = clearColor
	c.Derived.FixedCanvas = c.Canvas.Width > 0
	c.Derived.LogLevel = level
	c.computeBorders()

	if c.Derived.Left == c.Derived.Right || c.Derived.Top == c.Derived.Bottom {
		return fmt.Errorf("%w: degenerate borders", ErrInvalid)
	}
	return nil
}

// computeBorders fills Derived borders, defaulting to the screen rectangle.
func (c *Config) computeBorders() {
	b := c.Borders
	if b == (BordersConfig{}) {
		b = BordersConfig{
			Left:   0,
			Right:  float64(c.Screen.Width),
			Top:    float64(c.Screen.Height),
			Bottom: 0,
		}
	}
	c.Derived.Top = float32(b.Top)
	c.Derived.Left = float32(b.Left)
	c.Derived.Bottom = float32(b.Bottom)
	c.Derived.Right = float32(b.Right)
}

// ParseColor parses #rgb, #rrggbb or #rrggbbaa into an RGBA color.
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]}) + "ff"
	case 6:
		hex += "ff"
	case 8:
	default:
		return color.RGBA{}, fmt.Errorf("bad color %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("bad color %q: %w", s, err)
	}
	return color.RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
