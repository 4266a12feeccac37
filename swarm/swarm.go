// Package swarm drives a cloud of particles through a Perlin flow field.
// It is the stock workload for the generic particle renderer demo.
package swarm

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/pthm-cable/drift/renderer"
)

var ErrInvalidOptions = errors.New("swarm: invalid options")

// Options configures a Swarm.
type Options struct {
	Borders    renderer.Borders
	Count      int
	Speed      float64 // world units per second
	NoiseScale float64
	TimeScale  float64
	Seed       int64
}

// Swarm owns the particle positions. Update advances them in place.
type Swarm struct {
	opts      Options
	field     *Field
	particles []renderer.Particle
	time      float64

	minX, minY, w, h float32
}

// New seeds Count particles uniformly inside the borders.
func New(opts Options) (*Swarm, error) {
	if err := opts.Borders.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	if opts.Count < 0 {
		return nil, fmt.Errorf("%w: count %d", ErrInvalidOptions, opts.Count)
	}

	b := opts.Borders
	s := &Swarm{
		opts:      opts,
		field:     NewField(opts.Seed, opts.NoiseScale, opts.TimeScale),
		particles: make([]renderer.Particle, opts.Count),
		minX:      min(b.Left, b.Right),
		minY:      min(b.Bottom, b.Top),
		w:         b.Width(),
		h:         b.Height(),
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	for i := range s.particles {
		s.particles[i] = renderer.Particle{
			X: s.minX + rng.Float32()*s.w,
			Y: s.minY + rng.Float32()*s.h,
		}
	}
	return s, nil
}

// Update moves every particle along the field by Speed*dt, wrapping at the
// borders, and returns the positions. The slice is owned by the Swarm.
func (s *Swarm) Update(dt float64) []renderer.Particle {
	s.time += dt
	step := s.opts.Speed * dt

	for i := range s.particles {
		p := &s.particles[i]
		a := s.field.Angle(float64(p.X), float64(p.Y), s.time)
		p.X = wrap(p.X+float32(math.Cos(a)*step), s.minX, s.w)
		p.Y = wrap(p.Y+float32(math.Sin(a)*step), s.minY, s.h)
	}
	return s.particles
}

// Particles returns the current positions without advancing.
func (s *Swarm) Particles() []renderer.Particle {
	return s.particles
}

// Len returns the particle count.
func (s *Swarm) Len() int {
	return len(s.particles)
}

// wrap maps v into [lo, lo+span) toroidally.
func wrap(v, lo, span float32) float32 {
	r := float32(math.Mod(float64(v-lo), float64(span)))
	if r < 0 {
		r += span
	}
	return lo + r
}
