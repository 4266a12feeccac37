// Particles demo - a flow-field swarm drawn as instanced circles.
//
// Usage: go run ./cmd/particles -config config.yaml -frames 600 -record
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/pthm-cable/drift/config"
	"github.com/pthm-cable/drift/game"
	"github.com/pthm-cable/drift/renderer"
	"github.com/pthm-cable/drift/swarm"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Render on the CPU without a window (requires -frames)")
	logStats := flag.Bool("log-stats", false, "Output frame stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for perf CSV and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	frames := flag.Int("frames", 0, "Stop after N frames (0 = use config)")
	record := flag.Bool("record", false, "Capture every frame")
	count := flag.Int("count", 0, "Particle count (0 = use config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(config.NewLogger(cfg, os.Stdout))

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	if *count > 0 {
		cfg.Swarm.Count = *count
	}
	if cfg.Swarm.Count > cfg.Particles.MaxCount {
		cfg.Particles.MaxCount = cfg.Swarm.Count
	}

	d := cfg.Derived
	s, err := swarm.New(swarm.Options{
		Borders:    renderer.Borders{Top: d.Top, Left: d.Left, Bottom: d.Bottom, Right: d.Right},
		Count:      cfg.Swarm.Count,
		Speed:      cfg.Swarm.Speed,
		NoiseScale: cfg.Swarm.NoiseScale,
		TimeScale:  cfg.Swarm.TimeScale,
		Seed:       rngSeed,
	})
	if err != nil {
		slog.Error("failed to create swarm", "error", err)
		os.Exit(1)
	}

	g, err := game.New(game.Options{
		Config:    cfg,
		Title:     "Drift Particles",
		Geometry:  renderer.Circle(float32(cfg.Swarm.Size), 12),
		Scene:     s,
		Frames:    *frames,
		Record:    *record,
		OutputDir: *outputDir,
		Headless:  *headless,
		LogStats:  *logStats,
	})
	if err != nil {
		slog.Error("failed to create game", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("starting particles", "seed", rngSeed, "count", s.Len(), "headless", *headless)
	if err := g.Run(ctx); err != nil && ctx.Err() == nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}
