package blobs

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/drift/renderer"
)

// Motion selects how blobs travel.
type Motion string

const (
	// MotionDiagonal moves blobs up and right, spawning them along a band
	// that starts one screen height left of the view.
	MotionDiagonal Motion = "diagonal"
	// MotionVertical moves blobs straight up from anywhere along the bottom.
	MotionVertical Motion = "vertical"
)

var ErrInvalidOptions = errors.New("blobs: invalid options")

// Options configures a SceneState.
type Options struct {
	Width, Height    float32 // world extent, origin bottom-left
	Length           float32 // base blob length
	SpawnIntervalMax float64 // seconds
	SpeedMin         float32
	SpeedMax         float32
	Motion           Motion
	Seed             int64
}

// DefaultOptions returns the stock parameters for a width x height world.
func DefaultOptions(width, height float32) Options {
	return Options{
		Width:            width,
		Height:           height,
		Length:           200,
		SpawnIntervalMax: 1,
		SpeedMin:         10,
		SpeedMax:         35,
		Motion:           MotionDiagonal,
		Seed:             1,
	}
}

func (o Options) validate() error {
	switch {
	case o.Width <= 0 || o.Height <= 0:
		return fmt.Errorf("%w: world %vx%v", ErrInvalidOptions, o.Width, o.Height)
	case o.Length <= 0:
		return fmt.Errorf("%w: length %v", ErrInvalidOptions, o.Length)
	case o.SpawnIntervalMax < 0:
		return fmt.Errorf("%w: spawn interval %v", ErrInvalidOptions, o.SpawnIntervalMax)
	case o.SpeedMin < 0 || o.SpeedMax < o.SpeedMin:
		return fmt.Errorf("%w: speed range [%v, %v]", ErrInvalidOptions, o.SpeedMin, o.SpeedMax)
	}
	switch o.Motion {
	case MotionDiagonal, MotionVertical:
	default:
		return fmt.Errorf("%w: motion %q", ErrInvalidOptions, o.Motion)
	}
	return nil
}

// SceneState owns every live blob and the spawn timer. It is advanced by
// Update from the renderer's frame callback.
type SceneState struct {
	opts Options
	rng  *rand.Rand

	world  *ecs.World
	mapper *ecs.Map2[Position, Blob]
	filter *ecs.Filter2[Position, Blob]

	// Spawn timer
	time  float64
	timer float64

	count     int
	spawned   int
	particles []renderer.Particle
	toRemove  []ecs.Entity
}

// NewSceneState creates an empty scene. The first blob spawns on the first Update.
func NewSceneState(opts Options) (*SceneState, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	world := ecs.NewWorld()
	return &SceneState{
		opts:   opts,
		rng:    rand.New(rand.NewSource(opts.Seed)),
		world:  world,
		mapper: ecs.NewMap2[Position, Blob](world),
		filter: ecs.NewFilter2[Position, Blob](world),
	}, nil
}

// Update advances the scene by dt seconds: spawns at most one blob when the
// timer has elapsed, moves every blob and drops those more than two of
// their own lengths past the top edge.
// The returned slice is reused by the next call.
func (s *SceneState) Update(dt float64) []renderer.Particle {
	if s.time >= s.timer {
		s.time -= s.timer
		s.spawn()
		s.timer = s.rng.Float64() * s.opts.SpawnIntervalMax
	}

	step := float32(dt)
	s.particles = s.particles[:0]
	s.toRemove = s.toRemove[:0]

	query := s.filter.Query()
	for query.Next() {
		pos, blob := query.Get()

		if s.opts.Motion == MotionDiagonal {
			pos.X += step * blob.Speed
		}
		pos.Y += step * blob.Speed

		if pos.Y > s.opts.Height+2*blob.Length {
			s.toRemove = append(s.toRemove, query.Entity())
			continue
		}
		s.particles = append(s.particles, renderer.Particle{X: pos.X, Y: pos.Y})
	}

	// Remove after iteration; the world is locked while querying
	for _, e := range s.toRemove {
		s.world.RemoveEntity(e)
		s.count--
	}

	s.time += dt
	return s.particles
}

func (s *SceneState) spawn() {
	scale := float32(math.Pow(2, s.rng.Float64()*2-1))
	length := s.opts.Length * scale
	half := float64(length / 2)

	pos := Position{
		Y: float32(-math.Sqrt(half*half/2)) - 100,
	}
	switch s.opts.Motion {
	case MotionDiagonal:
		pos.X = s.rng.Float32()*(s.opts.Width+s.opts.Height) - s.opts.Height
	case MotionVertical:
		pos.X = s.rng.Float32() * s.opts.Width
	}

	blob := Blob{
		Length: length,
		Speed:  s.opts.SpeedMin + s.rng.Float32()*(s.opts.SpeedMax-s.opts.SpeedMin),
	}
	s.mapper.NewEntity(&pos, &blob)
	s.count++
	s.spawned++
}

// Len returns the number of live blobs.
func (s *SceneState) Len() int {
	return s.count
}

// Spawned returns the number of blobs created so far.
func (s *SceneState) Spawned() int {
	return s.spawned
}

// Options returns the active options.
func (s *SceneState) Options() Options {
	return s.opts
}
