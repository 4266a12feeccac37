package game

import (
	"context"
	"log/slog"

	"github.com/pthm-cable/drift/host"
	"github.com/pthm-cable/drift/renderer"
	"github.com/pthm-cable/drift/renderer/software"
	"github.com/pthm-cable/drift/viewport"
)

// openHeadless creates a CPU renderer on a window-less host sized like the screen.
func (g *Game) openHeadless() (*host.Headless, error) {
	h := host.NewHeadless(viewport.Size{
		Width:  float32(g.cfg.Screen.Width),
		Height: float32(g.cfg.Screen.Height),
	})

	r, err := renderer.New(software.New(), h, g.rendererOptions(g.captureClock()))
	if err != nil {
		return nil, err
	}
	g.renderer = r
	return h, nil
}

// runHeadless renders the frame budget on the CPU with a fixed-step clock.
func (g *Game) runHeadless(ctx context.Context) error {
	h, err := g.openHeadless()
	if err != nil {
		return err
	}
	r := g.renderer
	defer r.Close()

	slog.Info("starting headless animation",
		"frames", g.budget,
		"recording", g.recorder != nil,
		"width", r.Size().Width,
		"height", r.Size().Height,
	)

	if err := r.StartAnimation(g.frame, g.budget); err != nil {
		return err
	}
	for {
		if err := ctx.Err(); err != nil {
			slog.Info("headless animation interrupted", "frames", r.Frames())
			if stopErr := r.Stop(); stopErr != nil {
				return stopErr
			}
			return err
		}
		if !h.Step() {
			break
		}
	}
	return g.finished()
}
