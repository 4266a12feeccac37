package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// FrameSample holds timing data for a single animation tick.
type FrameSample struct {
	Delta     time.Duration // clock delta handed to the frame callback
	Render    time.Duration // time spent drawing (and capturing) the frame
	Particles int           // active instances after the callback ran
}

// FrameCollector tracks frame metrics over a rolling window.
type FrameCollector struct {
	windowSize  int
	samples     []FrameSample
	writeIndex  int
	sampleCount int
	total       int64
}

// NewFrameCollector creates a new frame collector.
// windowSize: number of frames to aggregate over (e.g., 120 for 2 seconds at 60fps).
func NewFrameCollector(windowSize int) *FrameCollector {
	if windowSize < 1 {
		windowSize = 120
	}
	return &FrameCollector{
		windowSize: windowSize,
		samples:    make([]FrameSample, windowSize),
	}
}

// Record adds a frame sample, evicting the oldest when the window is full.
func (c *FrameCollector) Record(s FrameSample) {
	c.samples[c.writeIndex] = s
	c.writeIndex = (c.writeIndex + 1) % c.windowSize
	if c.sampleCount < c.windowSize {
		c.sampleCount++
	}
	c.total++
}

// Total returns the number of frames recorded since creation.
func (c *FrameCollector) Total() int64 {
	return c.total
}

// FrameStats holds aggregated frame statistics.
type FrameStats struct {
	Frames int // samples in the window

	AvgDelta    time.Duration
	MinDelta    time.Duration
	MaxDelta    time.Duration
	StdDevDelta time.Duration
	P95Delta    time.Duration

	AvgRender time.Duration
	FPS       float64

	AvgParticles float64
	MaxParticles int
}

// Stats computes aggregated statistics over the current window.
func (c *FrameCollector) Stats() FrameStats {
	if c.sampleCount == 0 {
		return FrameStats{}
	}

	deltas := make([]float64, c.sampleCount)
	renders := make([]float64, c.sampleCount)
	particles := make([]float64, c.sampleCount)
	maxParticles := 0
	for i := 0; i < c.sampleCount; i++ {
		s := c.samples[i]
		deltas[i] = float64(s.Delta)
		renders[i] = float64(s.Render)
		particles[i] = float64(s.Particles)
		if s.Particles > maxParticles {
			maxParticles = s.Particles
		}
	}

	avgDelta, stdDelta := stat.MeanStdDev(deltas, nil)
	if c.sampleCount < 2 {
		stdDelta = 0
	}

	sort.Float64s(deltas)
	p95 := stat.Quantile(0.95, stat.Empirical, deltas, nil)

	var fps float64
	if avgDelta > 0 {
		fps = float64(time.Second) / avgDelta
	}

	return FrameStats{
		Frames:       c.sampleCount,
		AvgDelta:     time.Duration(avgDelta),
		MinDelta:     time.Duration(deltas[0]),
		MaxDelta:     time.Duration(deltas[len(deltas)-1]),
		StdDevDelta:  time.Duration(stdDelta),
		P95Delta:     time.Duration(p95),
		AvgRender:    time.Duration(stat.Mean(renders, nil)),
		FPS:          fps,
		AvgParticles: stat.Mean(particles, nil),
		MaxParticles: maxParticles,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s FrameStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("frames", s.Frames),
		slog.Int64("avg_frame_us", s.AvgDelta.Microseconds()),
		slog.Int64("p95_frame_us", s.P95Delta.Microseconds()),
		slog.Int64("max_frame_us", s.MaxDelta.Microseconds()),
		slog.Int64("avg_render_us", s.AvgRender.Microseconds()),
		slog.Int("max_particles", s.MaxParticles),
	}

	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}

	return slog.GroupValue(attrs...)
}

// FrameStatsCSV is a flat struct for CSV export of frame stats.
type FrameStatsCSV struct {
	Frame        int64   `csv:"frame"`
	Samples      int     `csv:"samples"`
	AvgFrameUS   int64   `csv:"avg_frame_us"`
	MinFrameUS   int64   `csv:"min_frame_us"`
	MaxFrameUS   int64   `csv:"max_frame_us"`
	StdDevUS     int64   `csv:"stddev_frame_us"`
	P95FrameUS   int64   `csv:"p95_frame_us"`
	AvgRenderUS  int64   `csv:"avg_render_us"`
	FPS          float64 `csv:"fps"`
	AvgParticles float64 `csv:"avg_particles"`
	MaxParticles int     `csv:"max_particles"`
}

// ToCSV converts FrameStats to a flat CSV-friendly struct.
func (s FrameStats) ToCSV(frame int64) FrameStatsCSV {
	return FrameStatsCSV{
		Frame:        frame,
		Samples:      s.Frames,
		AvgFrameUS:   s.AvgDelta.Microseconds(),
		MinFrameUS:   s.MinDelta.Microseconds(),
		MaxFrameUS:   s.MaxDelta.Microseconds(),
		StdDevUS:     s.StdDevDelta.Microseconds(),
		P95FrameUS:   s.P95Delta.Microseconds(),
		AvgRenderUS:  s.AvgRender.Microseconds(),
		FPS:          s.FPS,
		AvgParticles: s.AvgParticles,
		MaxParticles: s.MaxParticles,
	}
}
