package rlbackend

import (
	"context"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drift/host"
	"github.com/pthm-cable/drift/viewport"
)

// WindowOptions configures the raylib window.
type WindowOptions struct {
	Width, Height int
	Title         string
	TargetFPS     int
	Resizable     bool
	Hidden        bool
}

// Window is a raylib renderer.Host. Scheduled ticks run once per displayed
// frame, on the goroutine that calls Run.
type Window struct {
	host.Stepper

	resize host.Signal
	idle   host.Signal
	active host.Signal
	isIdle bool
}

// OpenWindow creates the raylib window. Call Close when done.
func OpenWindow(opts WindowOptions) *Window {
	var flags uint32
	if opts.Resizable {
		flags |= rl.FlagWindowResizable
	}
	if opts.Hidden {
		flags |= rl.FlagWindowHidden
	}
	rl.SetConfigFlags(flags)
	rl.SetTraceLogLevel(rl.LogWarning)
	rl.InitWindow(int32(opts.Width), int32(opts.Height), opts.Title)
	if opts.TargetFPS > 0 {
		rl.SetTargetFPS(int32(opts.TargetFPS))
	}

	slog.Info("window opened", "width", opts.Width, "height", opts.Height, "resizable", opts.Resizable)
	return &Window{}
}

// WindowSize returns the framebuffer size in screen units.
func (w *Window) WindowSize() viewport.Size {
	return viewport.Size{Width: float32(rl.GetScreenWidth()), Height: float32(rl.GetScreenHeight())}
}

// OnResize subscribes to window resizes.
func (w *Window) OnResize(fn func()) (cancel func()) {
	return w.resize.Subscribe(fn)
}

// OnIdle subscribes to the window becoming minimized or losing focus.
func (w *Window) OnIdle(fn func()) (cancel func()) {
	return w.idle.Subscribe(fn)
}

// OnActive subscribes to the window becoming visible and focused again.
func (w *Window) OnActive(fn func()) (cancel func()) {
	return w.active.Subscribe(fn)
}

// Idle reports whether the window is minimized or unfocused.
func (w *Window) Idle() bool {
	return w.isIdle
}

// Presenter draws the offscreen surface into the window.
type Presenter interface {
	Present(dst viewport.Rect)
}

// Overlay draws on top of the presented surface, in window coordinates.
type Overlay func(win viewport.Size, surface viewport.Rect)

// Run drives the display loop until the window closes or ctx is done.
// Each frame it dispatches host events, runs the ticks scheduled during the
// previous frame and presents the surface centered with fit.
func (w *Window) Run(ctx context.Context, surface Presenter, fit *viewport.FixedAspectRatio, overlay Overlay) {
	for !rl.WindowShouldClose() {
		if ctx.Err() != nil {
			return
		}
		w.pollEvents()

		// Ticks scheduled by this frame's ticks wait for the next frame
		for n := w.Pending(); n > 0; n-- {
			w.Step()
		}

		win := w.WindowSize()
		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		dst, err := fit.Fit(win)
		if err == nil {
			surface.Present(dst)
		}
		if overlay != nil {
			overlay(win, dst)
		}
		rl.EndDrawing()
	}
}

func (w *Window) pollEvents() {
	if rl.IsWindowResized() {
		w.resize.Emit()
	}

	idle := rl.IsWindowMinimized() || !rl.IsWindowFocused()
	if idle == w.isIdle {
		return
	}
	w.isIdle = idle
	slog.Debug("window idle changed", "idle", idle)
	if idle {
		w.idle.Emit()
	} else {
		w.active.Emit()
	}
}

// Close destroys the window.
func (w *Window) Close() {
	rl.CloseWindow()
}
