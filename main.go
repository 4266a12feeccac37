package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/pthm-cable/drift/blobs"
	"github.com/pthm-cable/drift/config"
	"github.com/pthm-cable/drift/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Render on the CPU without a window (requires -frames)")
	logStats := flag.Bool("log-stats", false, "Output frame stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for perf CSV and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	frames := flag.Int("frames", 0, "Stop after N frames (0 = use config)")
	record := flag.Bool("record", false, "Capture every frame")

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

	d := cfg.Derived
	scene, err := blobs.NewSceneState(blobs.Options{
		Width:            d.Right - d.Left,
		Height:           d.Top - d.Bottom,
		Length:           float32(cfg.Blobs.Length),
		SpawnIntervalMax: cfg.Blobs.SpawnIntervalMax,
		SpeedMin:         float32(cfg.Blobs.SpeedMin),
		SpeedMax:         float32(cfg.Blobs.SpeedMax),
		Motion:           blobs.Motion(cfg.Blobs.Motion),
		Seed:             rngSeed,
	})
	if err != nil {
		slog.Error("failed to create scene", "error", err)
		os.Exit(1)
	}

	g, err := game.New(game.Options{
		Config:    cfg,
		Geometry:  blobs.PillGeometry(float32(cfg.Blobs.Length)),
		Scene:     scene,
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

	slog.Info("starting blobs", "seed", rngSeed, "headless", *headless, "motion", cfg.Blobs.Motion)
	if err := g.Run(ctx); err != nil && ctx.Err() == nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}
