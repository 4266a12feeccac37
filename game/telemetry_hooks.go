package game

import "log/slog"

// flushTelemetry logs and persists rolling frame stats every log_interval frames.
func (g *Game) flushTelemetry() {
	interval := g.cfg.Telemetry.LogInterval
	total := g.perf.Total()
	if interval <= 0 || total == 0 || total%int64(interval) != 0 {
		return
	}
	g.writePerf(total)
}

// flushFinalTelemetry writes the window left over since the last periodic row.
func (g *Game) flushFinalTelemetry() {
	if total := g.perf.Total(); total > g.lastPerf {
		g.writePerf(total)
	}
}

func (g *Game) writePerf(total int64) {
	stats := g.perf.Stats()
	if g.opts.LogStats {
		slog.Info("frame stats", "frame", total, "particles", g.live, "stats", stats)
	}
	if err := g.output.WritePerf(stats, total); err != nil {
		slog.Warn("failed to write perf stats", "error", err)
	}
	g.lastPerf = total
}
