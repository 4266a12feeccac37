package swarm

import (
	"math"
	"math/rand"
)

// Field is a time-varying direction field sampled from 3D Perlin noise.
type Field struct {
	perm      [512]int
	scale     float64
	timeScale float64
}

// NewField creates a field. scale is the spatial frequency in cycles per
// world unit; timeScale is how fast the field evolves.
func NewField(seed int64, scale, timeScale float64) *Field {
	f := &Field{scale: scale, timeScale: timeScale}
	rng := rand.New(rand.NewSource(seed))

	var p [256]int
	for i := range p {
		p[i] = i
	}
	rng.Shuffle(len(p), func(i, j int) { p[i], p[j] = p[j], p[i] })
	for i, v := range p {
		f.perm[i] = v
		f.perm[i+256] = v
	}
	return f
}

// Angle returns the flow direction in radians at (x, y) and time t.
func (f *Field) Angle(x, y, t float64) float64 {
	n := f.Noise(x*f.scale, y*f.scale, t*f.timeScale)
	// Noise stays well inside [-1, 1]; doubling spreads it over a full turn
	return n * 2 * math.Pi
}

// Noise returns improved Perlin noise at (x, y, z), roughly in [-1, 1].
func (f *Field) Noise(x, y, z float64) float64 {
	xi := int(math.Floor(x)) & 255
	yi := int(math.Floor(y)) & 255
	zi := int(math.Floor(z)) & 255

	x -= math.Floor(x)
	y -= math.Floor(y)
	z -= math.Floor(z)
	u, v, w := fade(x), fade(y), fade(z)

	p := &f.perm
	a := p[xi] + yi
	aa, ab := p[a]+zi, p[a+1]+zi
	b := p[xi+1] + yi
	ba, bb := p[b]+zi, p[b+1]+zi

	return lerp(w,
		lerp(v,
			lerp(u, grad(p[aa], x, y, z), grad(p[ba], x-1, y, z)),
			lerp(u, grad(p[ab], x, y-1, z), grad(p[bb], x-1, y-1, z))),
		lerp(v,
			lerp(u, grad(p[aa+1], x, y, z-1), grad(p[ba+1], x-1, y, z-1)),
			lerp(u, grad(p[ab+1], x, y-1, z-1), grad(p[bb+1], x-1, y-1, z-1))))
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

// grad picks one of 12 gradient directions from the low hash bits.
func grad(hash int, x, y, z float64) float64 {
	h := hash & 15
	u := x
	if h >= 8 {
		u = y
	}
	var v float64
	switch {
	case h < 4:
		v = y
	case h == 12 || h == 14:
		v = x
	default:
		v = z
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}
