// Package renderer draws one GPU-instanced particle mesh over a shaded
// background through an orthographic camera, and drives a frame loop that
// can pipe every rendered frame into a capture sink.
package renderer

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/drift/camera"
	"github.com/pthm-cable/drift/capture"
	"github.com/pthm-cable/drift/clock"
	"github.com/pthm-cable/drift/telemetry"
	"github.com/pthm-cable/drift/viewport"
)

// Options configures a Renderer.
type Options struct {
	Borders      Borders
	Geometry     Geometry
	Material     Material
	Background   Background
	MaxParticles int

	// Capture receives every animated frame when non-nil.
	Capture capture.Sink
	// CanvasSize pins the surface size instead of tracking the window.
	CanvasSize *viewport.Size

	// Telemetry records per-frame timing when non-nil.
	Telemetry *telemetry.FrameCollector
	// Clock overrides the wall clock (tests).
	Clock *clock.Clock
}

// Renderer owns the camera, the scene and the clock, and sequences the
// capture sink. All methods must be called from the host's redraw goroutine.
type Renderer struct {
	backend  Backend
	host     Host
	camera   *camera.Orthographic
	viewport *viewport.FixedAspectRatio
	scene    *Scene
	clock    *clock.Clock
	sink     capture.Sink
	perf     *telemetry.FrameCollector
	log      *slog.Logger

	canvasSize   *viewport.Size
	cancelResize func()
	closed       bool

	// Animation
	state   State
	frames  int
	pending bool // a tick is queued on the host
	err     error
	done    chan struct{}
}

// New validates the options, loads the scene into the backend, sizes the
// surface and subscribes to host resizes.
func New(backend Backend, host Host, opts Options) (*Renderer, error) {
	if backend == nil || host == nil {
		return nil, fmt.Errorf("%w: backend and host are required", ErrInvalidOptions)
	}
	if err := opts.Borders.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Geometry.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Material.Validate(); err != nil {
		return nil, err
	}
	if opts.MaxParticles < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, opts.MaxParticles)
	}
	if opts.CanvasSize != nil && !opts.CanvasSize.Valid() {
		return nil, fmt.Errorf("%w: canvas size %vx%v", viewport.ErrInvalidSize, opts.CanvasSize.Width, opts.CanvasSize.Height)
	}

	b := opts.Borders
	cam := camera.NewOrthographic(b.Left, b.Right, b.Top, b.Bottom, camera.DefaultNear, camera.DefaultFar)
	cam.SetPosition(0, 0, camera.DefaultDistance)
	cam.LookAt(0, 0, 0)

	vp, err := viewport.New(1)
	if err != nil {
		return nil, err
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}

	scene := &Scene{
		Background: opts.Background.withDefaults(),
		Geometry:   opts.Geometry,
		Material:   opts.Material,
		Instances:  NewInstanceBuffer(opts.MaxParticles),
	}
	if err := backend.Load(scene); err != nil {
		return nil, fmt.Errorf("loading scene: %w", err)
	}

	r := &Renderer{
		backend:  backend,
		host:     host,
		camera:   cam,
		viewport: vp,
		scene:    scene,
		clock:    clk,
		sink:     opts.Capture,
		perf:     opts.Telemetry,
		log:      slog.Default().With("component", "renderer"),
		done:     make(chan struct{}),
	}

	if opts.CanvasSize != nil {
		size := *opts.CanvasSize
		r.canvasSize = &size
		if _, err := vp.Resize(backend, size); err != nil {
			backend.Unload()
			return nil, fmt.Errorf("sizing canvas: %w", err)
		}
	}
	if err := r.OnResize(); err != nil {
		backend.Unload()
		return nil, err
	}
	r.cancelResize = host.OnResize(r.handleResize)

	r.log.Info("renderer created",
		"max_particles", opts.MaxParticles,
		"capture", opts.Capture != nil,
		"fixed_canvas", opts.CanvasSize != nil,
		"width", backend.Size().Width,
		"height", backend.Size().Height,
	)
	return r, nil
}

// SetPositions uploads one translation per particle. Passing more particles
// than MaxParticles panics with a *CapacityError and leaves the buffer as it was.
func (r *Renderer) SetPositions(particles []Particle) {
	r.scene.Instances.SetPositions(particles)
}

// Render draws the scene through the camera onto the surface.
func (r *Renderer) Render() error {
	if r.closed {
		return ErrClosed
	}
	return r.backend.Draw(r.scene, r.camera)
}

// OnResize recomputes the projection and, unless a fixed canvas size was
// given, refits the surface to the current window.
func (r *Renderer) OnResize() error {
	r.camera.UpdateProjection()
	if r.canvasSize != nil {
		return nil
	}

	if _, err := r.viewport.Resize(r.backend, r.host.WindowSize()); err != nil {
		return fmt.Errorf("fitting surface to window: %w", err)
	}
	return nil
}

func (r *Renderer) handleResize() {
	if err := r.OnResize(); err != nil {
		// Minimized windows report zero size; keep the previous surface
		r.log.Debug("resize skipped", "error", err)
		return
	}
	size := r.backend.Size()
	r.log.Debug("resize applied", "width", size.Width, "height", size.Height)
}

// Close stops any running animation (flushing the capture sink),
// unsubscribes from host resizes and releases backend resources.
func (r *Renderer) Close() error {
	if r.closed {
		return nil
	}
	err := r.Stop()
	if r.cancelResize != nil {
		r.cancelResize()
		r.cancelResize = nil
	}
	r.backend.Unload()
	r.closed = true
	return err
}

// Camera returns the orthographic camera.
func (r *Renderer) Camera() *camera.Orthographic {
	return r.camera
}

// Clock returns the animation clock. Stop it to freeze frame deltas.
func (r *Renderer) Clock() *clock.Clock {
	return r.clock
}

// Instances returns the instance transform buffer.
func (r *Renderer) Instances() *InstanceBuffer {
	return r.scene.Instances
}

// Viewport returns the aspect-ratio helper bound to the surface.
func (r *Renderer) Viewport() *viewport.FixedAspectRatio {
	return r.viewport
}

// Size returns the current surface size.
func (r *Renderer) Size() viewport.Size {
	return r.backend.Size()
}
