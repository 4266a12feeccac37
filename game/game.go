// Package game wires a particle scene to the renderer, the capture recorder
// and the window or headless host, and runs the frame loop.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/drift/capture"
	"github.com/pthm-cable/drift/clock"
	"github.com/pthm-cable/drift/config"
	"github.com/pthm-cable/drift/renderer"
	"github.com/pthm-cable/drift/telemetry"
	"github.com/pthm-cable/drift/viewport"
)

var ErrNoFrames = errors.New("game: headless runs need a frame budget")

// Scene produces particle positions once per frame.
type Scene interface {
	Update(dt float64) []renderer.Particle
}

// Options holds runtime options for a Game.
type Options struct {
	Config   *config.Config
	Title    string
	Geometry renderer.Geometry
	Scene    Scene

	Frames    int    // overrides animation.frames when > 0
	Record    bool   // force capture on regardless of config
	OutputDir string // directory for perf.csv and config.yaml (empty = none)
	Headless  bool
	LogStats  bool
}

// Game owns one run: the scene, its recorder and telemetry output.
type Game struct {
	cfg   *config.Config
	opts  Options
	scene Scene

	recorder *capture.Recorder
	perf     *telemetry.FrameCollector
	output   *telemetry.OutputManager

	renderer *renderer.Renderer
	shader   string // background fragment source, empty = built-in
	budget   int    // frame budget or renderer.Forever
	live     int    // particles uploaded last frame
	lastPerf int64  // frame total of the last perf row
	clipped  bool
	paused   bool
}

// New validates options and prepares the recorder and telemetry output.
func New(opts Options) (*Game, error) {
	if opts.Config == nil || opts.Scene == nil {
		return nil, fmt.Errorf("game: config and scene are required")
	}
	if err := opts.Geometry.Validate(); err != nil {
		return nil, err
	}
	cfg := opts.Config

	frames := cfg.Animation.Frames
	if opts.Frames > 0 {
		frames = opts.Frames
	}
	if frames == 0 {
		frames = renderer.Forever
	}
	if opts.Headless && frames == renderer.Forever {
		return nil, ErrNoFrames
	}

	g := &Game{
		cfg:    cfg,
		opts:   opts,
		scene:  opts.Scene,
		perf:   telemetry.NewFrameCollector(cfg.Telemetry.StatsWindow),
		budget: frames,
	}

	if path := cfg.Background.Shader; path != "" {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading background shader: %w", err)
		}
		g.shader = string(src)
	}

	if opts.Record || cfg.Capture.Enabled {
		rec, err := capture.NewRecorder(capture.Options{
			Dir:       cfg.Capture.Dir,
			Format:    cfg.Derived.CaptureFormat,
			Framerate: cfg.Capture.Framerate,
			Width:     cfg.Capture.Width,
			Height:    cfg.Capture.Height,
		})
		if err != nil {
			return nil, err
		}
		g.recorder = rec
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, err
	}
	g.output = output
	return g, nil
}

// Run executes the animation, headless or in a window, until the frame
// budget is spent, the window closes or ctx is done.
func (g *Game) Run(ctx context.Context) error {
	defer g.output.Close()
	defer g.flushFinalTelemetry()
	if g.opts.Headless {
		return g.runHeadless(ctx)
	}
	return g.runWindow(ctx)
}

// Recorder returns the capture recorder, or nil when not recording.
func (g *Game) Recorder() *capture.Recorder {
	return g.recorder
}

// Frames returns the number of frames rendered.
func (g *Game) Frames() int {
	if g.renderer == nil {
		return 0
	}
	return g.renderer.Frames()
}

// rendererOptions maps the config onto renderer options.
func (g *Game) rendererOptions(clk *clock.Clock) renderer.Options {
	d := g.cfg.Derived
	opts := renderer.Options{
		Borders:  renderer.Borders{Top: d.Top, Left: d.Left, Bottom: d.Bottom, Right: d.Right},
		Geometry: g.opts.Geometry,
		Material: renderer.Material{
			Color:   d.ParticleColor,
			Opacity: float32(g.cfg.Particles.Opacity),
		},
		Background: renderer.Background{
			FragmentShader: g.shader,
			ClearColor:     d.ClearColor,
		},
		MaxParticles: g.cfg.Particles.MaxCount,
		Telemetry:    g.perf,
		Clock:        clk,
	}
	if g.recorder != nil {
		opts.Capture = g.recorder
	}
	if d.FixedCanvas {
		opts.CanvasSize = &viewport.Size{Width: float32(g.cfg.Canvas.Width), Height: float32(g.cfg.Canvas.Height)}
	}
	return opts
}

// captureClock returns a fixed-step clock at the capture framerate when
// frames must be evenly spaced, or nil for the wall clock.
func (g *Game) captureClock() *clock.Clock {
	if g.recorder == nil && !g.opts.Headless {
		return nil
	}
	return clock.NewFixedStep(time.Second / time.Duration(g.cfg.Capture.Framerate))
}

// frame is the per-frame callback: advance the scene and upload positions.
func (g *Game) frame(dt float64) {
	particles := g.scene.Update(dt)

	capacity := g.cfg.Particles.MaxCount
	if len(particles) > capacity {
		if !g.clipped {
			slog.Warn("scene exceeds particle capacity, extra particles are not drawn",
				"particles", len(particles),
				"capacity", capacity,
			)
			g.clipped = true
		}
		particles = particles[:capacity]
	}
	g.renderer.SetPositions(particles)
	g.live = len(particles)

	g.flushTelemetry()
}

// finished logs the outcome of a completed animation.
func (g *Game) finished() error {
	err := g.renderer.Err()
	attrs := []any{"frames", g.renderer.Frames()}
	if g.recorder != nil {
		attrs = append(attrs, "session", g.recorder.Session(), "dir", g.recorder.Dir())
	}
	if err != nil {
		slog.Error("animation failed", append(attrs, "error", err)...)
		return err
	}
	slog.Info("animation finished", attrs...)
	return nil
}
