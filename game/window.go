package game

import (
	"context"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drift/renderer"
	"github.com/pthm-cable/drift/renderer/rlbackend"
	"github.com/pthm-cable/drift/ui"
	"github.com/pthm-cable/drift/viewport"
)

const controlsText = "[Space] Pause  [H] HUD  [R] Stop recording  [Esc] Quit"

// runWindow animates in a raylib window until it closes, ctx is done or a
// finite frame budget is spent.
func (g *Game) runWindow(ctx context.Context) error {
	win := rlbackend.OpenWindow(rlbackend.WindowOptions{
		Width:     g.cfg.Screen.Width,
		Height:    g.cfg.Screen.Height,
		Title:     g.title(),
		TargetFPS: g.cfg.Screen.TargetFPS,
		Resizable: g.cfg.Screen.Resizable,
	})
	defer win.Close()

	backend := rlbackend.NewBackend()
	r, err := renderer.New(backend, win, g.rendererOptions(g.captureClock()))
	if err != nil {
		return err
	}
	g.renderer = r
	defer r.Close()

	if g.pauseWhenIdle() {
		cancelIdle := win.OnIdle(func() { r.Clock().Stop() })
		defer cancelIdle()
		cancelActive := win.OnActive(func() {
			if !g.paused {
				r.Clock().Start()
			}
		})
		defer cancelActive()
	}

	if err := r.StartAnimation(g.frame, g.budget); err != nil {
		return err
	}
	slog.Info("starting animation", "frames", g.budget, "recording", g.recorder != nil)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hud := ui.NewHUD()
	overlay := func(size viewport.Size, surface viewport.Rect) {
		g.handleInput(hud)
		actions := hud.Draw(g.hudData(surface))
		g.applyActions(actions)
		hud.DrawControls(size, controlsText)

		if g.budget != renderer.Forever && r.State() == renderer.StateDone {
			cancel()
		}
	}
	win.Run(ctx, backend, r.Viewport(), overlay)

	if err := r.Stop(); err != nil {
		return err
	}
	return g.finished()
}

// pauseWhenIdle reports whether the clock should freeze while the window is
// idle. Recordings keep running so the frame budget is not spent on
// duplicate frames.
func (g *Game) pauseWhenIdle() bool {
	return g.cfg.Screen.PauseWhenIdle && g.recorder == nil
}

func (g *Game) title() string {
	if g.opts.Title != "" {
		return g.opts.Title
	}
	return g.cfg.Screen.Title
}

// handleInput processes keyboard input.
func (g *Game) handleInput(hud *ui.HUD) {
	if rl.IsKeyPressed(rl.KeySpace) {
		g.togglePause()
	}
	if rl.IsKeyPressed(rl.KeyH) {
		hud.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyR) && g.recording() {
		g.stopRecording()
	}
}

func (g *Game) applyActions(a ui.HUDActions) {
	if a.TogglePause {
		g.togglePause()
	}
	if a.StopRecording && g.recording() {
		g.stopRecording()
	}
}

func (g *Game) togglePause() {
	g.paused = !g.paused
	if g.paused {
		g.renderer.Clock().Stop()
	} else {
		g.renderer.Clock().Start()
	}
}

// recording reports whether frames are still flowing into the recorder.
func (g *Game) recording() bool {
	return g.recorder != nil && g.renderer.State() == renderer.StateRecording
}

// stopRecording ends the animation early; the recorder flushes what it has.
func (g *Game) stopRecording() {
	if err := g.renderer.Stop(); err != nil {
		slog.Error("failed to stop recording", "error", err)
		return
	}
	slog.Info("recording stopped", "frames", g.renderer.Frames(), "dir", g.recorder.Dir())
}

func (g *Game) hudData(surface viewport.Rect) ui.HUDData {
	r := g.renderer
	return ui.HUDData{
		Title:     g.title(),
		Particles: g.live,
		Capacity:  g.cfg.Particles.MaxCount,
		Frames:    r.Frames(),
		State:     r.State(),
		Surface:   surface.Size(),
		Stats:     g.perf.Stats(),
		Recording: g.recorder != nil,
		CanStop:   g.recording(),
		Paused:    g.paused,
	}
}
