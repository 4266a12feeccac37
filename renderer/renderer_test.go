package renderer

import (
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/drift/host"
	"github.com/pthm-cable/drift/telemetry"
	"github.com/pthm-cable/drift/viewport"
)

type harness struct {
	r       *Renderer
	host    *host.Headless
	backend *fakeBackend
	sink    *fakeSink
	log     []string
}

func newHarness(t *testing.T, mutate func(*Options), withSink bool) *harness {
	t.Helper()
	h := &harness{host: host.NewHeadless(viewport.Size{Width: 1000, Height: 600})}
	h.backend = &fakeBackend{log: &h.log}

	opts := testOptions()
	opts.Clock = stepClock(16 * time.Millisecond)
	if withSink {
		h.sink = &fakeSink{log: &h.log}
		opts.Capture = h.sink
	}
	if mutate != nil {
		mutate(&opts)
	}

	r, err := New(h.backend, h.host, opts)
	require.NoError(t, err)
	h.r = r
	return h
}

func TestNewValidatesOptions(t *testing.T) {
	hst := host.NewHeadless(viewport.Size{Width: 10, Height: 10})
	var log []string
	backend := &fakeBackend{log: &log}

	tests := []struct {
		name   string
		mutate func(*Options)
		target error
	}{
		{"zero borders", func(o *Options) { o.Borders = Borders{} }, ErrInvalidBorders},
		{"nan border", func(o *Options) { o.Borders.Top = float32(math.NaN()) }, ErrInvalidBorders},
		{"empty geometry", func(o *Options) { o.Geometry = Geometry{} }, ErrInvalidGeometry},
		{"unset material", func(o *Options) { o.Material = Material{} }, ErrInvalidMaterial},
		{"opacity above one", func(o *Options) { o.Material.Opacity = 2 }, ErrInvalidMaterial},
		{"zero capacity", func(o *Options) { o.MaxParticles = 0 }, ErrInvalidCapacity},
		{"bad canvas", func(o *Options) { o.CanvasSize = &viewport.Size{Width: 0, Height: 10} }, viewport.ErrInvalidSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			tt.mutate(&opts)
			_, err := New(backend, hst, opts)
			require.ErrorIs(t, err, tt.target)
		})
	}

	_, err := New(nil, hst, testOptions())
	require.ErrorIs(t, err, ErrInvalidOptions)
	_, err = New(backend, nil, testOptions())
	require.ErrorIs(t, err, ErrInvalidOptions)
}

func TestNewFitsWindowAndLoadsScene(t *testing.T) {
	h := newHarness(t, nil, false)

	// Square target inside a 1000x600 window is height-limited
	assert.Equal(t, viewport.Size{Width: 600, Height: 600}, h.r.Size())
	assert.Equal(t, []string{"load"}, h.log)
	require.NotNil(t, h.backend.loaded)
	assert.Equal(t, DefaultBackgroundShader, h.backend.loaded.Background.FragmentShader)
	assert.Equal(t, DefaultClearColor, h.backend.loaded.Background.ClearColor)
	assert.Equal(t, 4, h.r.Instances().Capacity())
	assert.Equal(t, 1, h.host.Listeners())

	pos := h.r.Camera().Position()
	assert.Equal(t, mgl32.Vec3{0, 0, 5}, pos)
}

func TestWindowResizeRefitsSurface(t *testing.T) {
	h := newHarness(t, nil, false)

	h.host.Resize(viewport.Size{Width: 300, Height: 900})
	assert.Equal(t, viewport.Size{Width: 300, Height: 300}, h.r.Size())

	// Zero size (minimized) keeps the previous surface
	h.host.Resize(viewport.Size{})
	assert.Equal(t, viewport.Size{Width: 300, Height: 300}, h.r.Size())
}

func TestFixedCanvasIgnoresWindow(t *testing.T) {
	h := newHarness(t, func(o *Options) {
		o.CanvasSize = &viewport.Size{Width: 640, Height: 480}
	}, false)

	// Aspect is forced to 1 even for a fixed canvas
	assert.Equal(t, viewport.Size{Width: 480, Height: 480}, h.r.Size())

	sizes := len(h.backend.sizes)
	h.host.Resize(viewport.Size{Width: 2000, Height: 100})
	assert.Equal(t, viewport.Size{Width: 480, Height: 480}, h.r.Size())
	assert.Len(t, h.backend.sizes, sizes)
}

func TestSetPositionsWritesTranslations(t *testing.T) {
	h := newHarness(t, nil, false)

	h.r.SetPositions([]Particle{{X: 1, Y: 2}, {X: -3, Y: 4}})
	buf := h.r.Instances()
	require.Equal(t, 2, buf.Count())
	assert.True(t, buf.NeedsUpdate())
	assert.Equal(t, mgl32.Translate3D(1, 2, 0), buf.At(0))
	assert.Equal(t, mgl32.Translate3D(-3, 4, 0), buf.At(1))
	assert.Equal(t, mgl32.Ident4(), buf.At(2))

	require.NoError(t, h.r.Render())
	assert.False(t, buf.NeedsUpdate())
	assert.Equal(t, []int{2}, h.backend.drawn)

	// Shrinking hides the tail
	h.r.SetPositions(nil)
	assert.Equal(t, 0, buf.Count())
	assert.Empty(t, buf.Active())
}

func TestSetPositionsOverflowPanicsWithoutPartialWrite(t *testing.T) {
	h := newHarness(t, nil, false)
	h.r.SetPositions([]Particle{{X: 7, Y: 7}})

	over := make([]Particle, 5)
	for i := range over {
		over[i] = Particle{X: float32(i + 100), Y: 1}
	}

	require.PanicsWithError(t, (&CapacityError{Requested: 5, Capacity: 4}).Error(), func() {
		h.r.SetPositions(over)
	})

	buf := h.r.Instances()
	assert.Equal(t, 1, buf.Count())
	assert.Equal(t, mgl32.Translate3D(7, 7, 0), buf.At(0))
	assert.Equal(t, mgl32.Ident4(), buf.At(1))
}

func TestAnimationCapturesEveryFrame(t *testing.T) {
	h := newHarness(t, nil, true)
	perf := telemetry.NewFrameCollector(16)
	h.r.perf = perf

	var deltas []float64
	err := h.r.StartAnimation(func(dt float64) {
		deltas = append(deltas, dt)
		h.r.SetPositions([]Particle{{X: float32(len(deltas)), Y: 0}})
	}, 3)
	require.NoError(t, err)
	assert.Equal(t, StateRecording, h.r.State())

	h.host.RunUntilIdle(0)

	assert.Equal(t, StateDone, h.r.State())
	assert.Len(t, deltas, 3)
	for _, dt := range deltas {
		assert.InDelta(t, 0.016, dt, 1e-9)
	}
	assert.Equal(t, 3, h.r.Frames())
	assert.Equal(t, 3, h.sink.frames)
	assert.Equal(t, int64(3), perf.Total())
	assert.Equal(t,
		[]string{"start", "draw", "capture", "draw", "capture", "draw", "capture", "stop", "save"},
		filter(h.log, "start", "draw", "capture", "stop", "save"),
	)

	select {
	case <-h.r.Done():
	default:
		t.Fatal("done channel not closed")
	}
	require.NoError(t, h.r.Err())
}

func TestAnimationZeroFrames(t *testing.T) {
	h := newHarness(t, nil, true)

	calls := 0
	require.NoError(t, h.r.StartAnimation(func(float64) { calls++ }, 0))

	assert.Equal(t, 0, calls)
	assert.Equal(t, StateDone, h.r.State())
	assert.Equal(t, []string{"start", "stop", "save"}, filter(h.log, "start", "draw", "capture", "stop", "save"))
	assert.Zero(t, h.host.Pending())
}

func TestAnimationWithoutSink(t *testing.T) {
	h := newHarness(t, nil, false)

	calls := 0
	require.NoError(t, h.r.StartAnimation(func(float64) { calls++ }, 2))
	h.host.RunUntilIdle(0)

	assert.Equal(t, 2, calls)
	assert.Equal(t, StateDone, h.r.State())
	assert.Equal(t, []int{0, 0}, h.backend.drawn)
}

func TestAnimationRejectsRestart(t *testing.T) {
	h := newHarness(t, nil, false)
	require.NoError(t, h.r.StartAnimation(func(float64) {}, 5))

	err := h.r.StartAnimation(func(float64) {}, 5)
	require.ErrorIs(t, err, ErrAnimationStarted)

	err = h.r.StartAnimation(nil, 1)
	require.ErrorIs(t, err, ErrInvalidOptions)
}

func TestAnimationRejectsNegativeBudget(t *testing.T) {
	h := newHarness(t, nil, false)
	err := h.r.StartAnimation(func(float64) {}, -2)
	require.ErrorIs(t, err, ErrInvalidFrames)
	assert.Equal(t, StateIdle, h.r.State())
}

func TestStopFlushesSinkEarly(t *testing.T) {
	h := newHarness(t, nil, true)

	calls := 0
	require.NoError(t, h.r.StartAnimation(func(float64) { calls++ }, Forever))
	h.host.RunUntilIdle(4)
	require.Equal(t, StateRecording, h.r.State())

	require.NoError(t, h.r.Stop())
	assert.Equal(t, StateDone, h.r.State())

	// The tick queued before Stop is a no-op
	h.host.RunUntilIdle(0)
	assert.Equal(t, 5, calls)
	assert.Equal(t, []string{"stop", "save"}, filter(h.log, "stop", "save"))

	// Stopping twice does nothing
	require.NoError(t, h.r.Stop())
	assert.Equal(t, []string{"stop", "save"}, filter(h.log, "stop", "save"))
}

func TestStopFromCallback(t *testing.T) {
	h := newHarness(t, nil, true)

	calls := 0
	require.NoError(t, h.r.StartAnimation(func(float64) {
		calls++
		if calls == 2 {
			require.NoError(t, h.r.Stop())
		}
	}, 10))
	h.host.RunUntilIdle(0)

	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, h.r.Frames())
	assert.Equal(t, []string{"start", "draw", "capture", "stop", "save"}, filter(h.log, "start", "draw", "capture", "stop", "save"))
}

func TestStopBeforeStart(t *testing.T) {
	h := newHarness(t, nil, true)
	require.NoError(t, h.r.Stop())
	assert.Equal(t, StateDone, h.r.State())
	assert.NotContains(t, h.log, "stop")

	err := h.r.StartAnimation(func(float64) {}, 1)
	require.ErrorIs(t, err, ErrAnimationStopped)
	assert.NotErrorIs(t, err, ErrAnimationStarted)
}

func TestStartAfterFinishReportsStopped(t *testing.T) {
	h := newHarness(t, nil, false)
	require.NoError(t, h.r.StartAnimation(func(float64) {}, 1))
	h.host.RunUntilIdle(0)
	require.Equal(t, StateDone, h.r.State())

	err := h.r.StartAnimation(func(float64) {}, 1)
	assert.ErrorIs(t, err, ErrAnimationStopped)
}

func TestAnimateRejectsSecondChain(t *testing.T) {
	h := newHarness(t, nil, false)

	calls := 0
	cb := func(float64) { calls++ }
	require.NoError(t, h.r.StartAnimation(cb, 3))

	err := h.r.Animate(cb, 3)
	require.ErrorIs(t, err, ErrTickPending)

	h.host.RunUntilIdle(0)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, h.r.Frames())
	assert.Equal(t, StateDone, h.r.State())
}

func TestRenderErrorStillFlushesSink(t *testing.T) {
	h := newHarness(t, nil, true)
	h.backend.drawErr = errBoom

	err := h.r.StartAnimation(func(float64) {}, 3)
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, StateDone, h.r.State())
	assert.ErrorIs(t, h.r.Err(), errBoom)
	assert.Equal(t, []string{"start", "draw", "stop", "save"}, filter(h.log, "start", "draw", "capture", "stop", "save"))
}

func TestSinkErrorsAreJoined(t *testing.T) {
	h := newHarness(t, nil, true)
	h.sink.saveErr = errBoom

	err := h.r.StartAnimation(func(float64) {}, 1)
	require.NoError(t, err)
	h.host.RunUntilIdle(0)

	assert.ErrorIs(t, h.r.Err(), errBoom)

	// Save is skipped when Stop fails
	h2 := newHarness(t, nil, true)
	h2.sink.stopErr = errBoom
	require.ErrorIs(t, h2.r.StartAnimation(func(float64) {}, 0), errBoom)
	assert.NotContains(t, h2.log, "save")
}

func TestSinkStartFailure(t *testing.T) {
	h := newHarness(t, nil, true)
	h.sink.startErr = errBoom

	err := h.r.StartAnimation(func(float64) {}, 3)
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, StateDone, h.r.State())
	assert.Zero(t, h.host.Pending())
}

func TestCloseUnsubscribesAndFlushes(t *testing.T) {
	h := newHarness(t, nil, true)
	require.NoError(t, h.r.StartAnimation(func(float64) {}, Forever))

	require.NoError(t, h.r.Close())
	assert.Equal(t, 0, h.host.Listeners())
	assert.Equal(t, StateDone, h.r.State())
	assert.Equal(t, []string{"stop", "save", "unload"}, filter(h.log, "stop", "save", "unload"))

	require.ErrorIs(t, h.r.Render(), ErrClosed)
	require.NoError(t, h.r.Close())

	h.host.RunUntilIdle(0)
	assert.Equal(t, 1, h.r.Frames())
}

func TestPausedClockFreezesDelta(t *testing.T) {
	h := newHarness(t, nil, false)

	var deltas []float64
	require.NoError(t, h.r.StartAnimation(func(dt float64) { deltas = append(deltas, dt) }, 3))
	h.r.Clock().Stop()
	h.host.RunUntilIdle(0)

	require.Len(t, deltas, 3)
	assert.Greater(t, deltas[0], 0.0)
	assert.Zero(t, deltas[1])
	assert.Zero(t, deltas[2])
}

func TestMaterialEffective(t *testing.T) {
	m := Material{Color: color.RGBA{R: 10, G: 20, B: 30, A: 255}, Opacity: 0.5}
	require.NoError(t, m.Validate())
	assert.True(t, m.Transparent())
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 128}, m.Effective())

	opaque := Material{Color: color.RGBA{A: 255}, Opacity: 1}
	assert.False(t, opaque.Transparent())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "recording", StateRecording.String())
	assert.Equal(t, "flushing", StateFlushing.String())
	assert.Equal(t, "done", StateDone.String())
	assert.Equal(t, "State(9)", State(9).String())
}
