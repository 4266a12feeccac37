package blobs

import (
	"math"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/drift/renderer"
)

func TestOptionsValidation(t *testing.T) {
	bad := []func(*Options){
		func(o *Options) { o.Width = 0 },
		func(o *Options) { o.Length = -1 },
		func(o *Options) { o.SpawnIntervalMax = -1 },
		func(o *Options) { o.SpeedMax = o.SpeedMin - 1 },
		func(o *Options) { o.Motion = "sideways" },
	}
	for _, mutate := range bad {
		opts := DefaultOptions(800, 600)
		mutate(&opts)
		_, err := NewSceneState(opts)
		assert.ErrorIs(t, err, ErrInvalidOptions)
	}

	_, err := NewSceneState(DefaultOptions(800, 600))
	require.NoError(t, err)
}

func TestFirstUpdateSpawnsBelowView(t *testing.T) {
	s, err := NewSceneState(DefaultOptions(800, 600))
	require.NoError(t, err)

	ps := s.Update(0)
	require.Len(t, ps, 1)
	assert.Equal(t, 1, s.Len())

	// length in [100, 400] puts the center between these
	y := ps[0].Y
	assert.LessOrEqual(t, y, float32(-100-50/math.Sqrt2)+0.01)
	assert.GreaterOrEqual(t, y, float32(-100-200/math.Sqrt2)-0.01)

	// Diagonal spawns start up to one height left of the view
	assert.GreaterOrEqual(t, ps[0].X, float32(-600))
	assert.Less(t, ps[0].X, float32(800))
}

func TestDiagonalMotion(t *testing.T) {
	opts := DefaultOptions(800, 600)
	opts.SpeedMin, opts.SpeedMax = 20, 20
	opts.SpawnIntervalMax = 1000
	s, err := NewSceneState(opts)
	require.NoError(t, err)

	start := s.Update(0)[0]
	next := s.Update(0.5)
	require.Len(t, next, 1)
	assert.InDelta(t, start.X+10, next[0].X, 1e-4)
	assert.InDelta(t, start.Y+10, next[0].Y, 1e-4)
}

func TestVerticalMotion(t *testing.T) {
	opts := DefaultOptions(800, 600)
	opts.Motion = MotionVertical
	opts.SpeedMin, opts.SpeedMax = 20, 20
	opts.SpawnIntervalMax = 1000
	s, err := NewSceneState(opts)
	require.NoError(t, err)

	start := s.Update(0)[0]
	assert.GreaterOrEqual(t, start.X, float32(0))
	assert.Less(t, start.X, float32(800))

	next := s.Update(0.5)
	require.Len(t, next, 1)
	assert.Equal(t, start.X, next[0].X)
	assert.InDelta(t, start.Y+10, next[0].Y, 1e-4)
}

func TestBlobsPastTopAreRemoved(t *testing.T) {
	opts := DefaultOptions(10, 10)
	opts.Length = 1
	opts.SpeedMin, opts.SpeedMax = 1000, 1000
	opts.SpawnIntervalMax = 0
	s, err := NewSceneState(opts)
	require.NoError(t, err)

	s.Update(0)
	require.Equal(t, 1, s.Len())

	// Both the old blob and this tick's spawn overshoot the top
	ps := s.Update(1)
	assert.Empty(t, ps)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 2, s.Spawned())
}

func countEntities(w *ecs.World) int {
	query := ecs.NewFilter0(w).Query()
	defer query.Close()
	return query.Count()
}

func TestRemovedBlobsLeaveNoEntities(t *testing.T) {
	opts := DefaultOptions(100, 100)
	opts.SpawnIntervalMax = 0
	s, err := NewSceneState(opts)
	require.NoError(t, err)

	for range 500 {
		s.Update(1)
	}
	require.Greater(t, s.Spawned(), s.Len())
	assert.Equal(t, s.Len(), countEntities(s.world))
}

func TestCullLineFollowsBlobLength(t *testing.T) {
	opts := DefaultOptions(800, 600)
	opts.SpeedMin, opts.SpeedMax = 10, 10
	opts.SpawnIntervalMax = 1e9
	opts.Motion = MotionVertical
	s, err := NewSceneState(opts)
	require.NoError(t, err)
	s.Update(0)

	// Park the blob just below its own cull line
	var length float32
	query := s.filter.Query()
	for query.Next() {
		pos, blob := query.Get()
		length = blob.Length
		pos.Y = opts.Height + 2*blob.Length - 5
	}
	require.NotZero(t, length)

	s.Update(0.4)
	require.Equal(t, 1, s.Len())
	s.Update(0.2)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, countEntities(s.world))
}

func TestZeroDeltaKeepsBlobsStill(t *testing.T) {
	opts := DefaultOptions(800, 600)
	opts.SpawnIntervalMax = 1000
	s, err := NewSceneState(opts)
	require.NoError(t, err)

	a := append([]renderer.Particle(nil), s.Update(0)...)
	b := s.Update(0)
	assert.Equal(t, a, b)
}

func TestPillGeometry(t *testing.T) {
	g := PillGeometry(200)
	require.NoError(t, g.Validate())
	assert.Equal(t, renderer.TriangleFan, g.Mode)
	assert.Equal(t, float32(0), g.Vertices[0].Len())

	var far float32
	for _, v := range g.Vertices {
		far = max(far, v.Len())
		assert.Zero(t, v.Z())
	}
	assert.InDelta(t, 100, far, 0.5)

	// Tilted 45 degrees: the long axis runs along y = x
	tip := g.Vertices[0]
	for _, v := range g.Vertices {
		if v.Len() > tip.Len() {
			tip = v
		}
	}
	assert.InDelta(t, math.Abs(float64(tip.X())), math.Abs(float64(tip.Y())), 3)

	tris := g.Triangles()
	assert.Len(t, tris, 3*g.TriangleCount())
}
