package renderer

import (
	"errors"
	"fmt"
	"image/color"
	"math"
)

var (
	ErrInvalidBorders   = errors.New("renderer: invalid borders")
	ErrInvalidGeometry  = errors.New("renderer: invalid geometry")
	ErrInvalidMaterial  = errors.New("renderer: invalid material")
	ErrInvalidCapacity  = errors.New("renderer: max particle count must be at least 1")
	ErrInvalidOptions   = errors.New("renderer: invalid options")
	ErrCapacityExceeded = errors.New("renderer: particle capacity exceeded")
	ErrClosed           = errors.New("renderer: closed")
)

// Particle is a 2D point in world units. Particles belong to the caller;
// the renderer only reads them during SetPositions.
type Particle struct {
	X, Y float32
}

// Borders is the orthographic projection volume in world units.
type Borders struct {
	Top, Left, Bottom, Right float32
}

// Validate rejects non-finite or zero-area borders.
func (b Borders) Validate() error {
	for _, v := range []float32{b.Top, b.Left, b.Bottom, b.Right} {
		if !finite(v) {
			return fmt.Errorf("%w: non-finite value in %+v", ErrInvalidBorders, b)
		}
	}
	if b.Left == b.Right || b.Top == b.Bottom {
		return fmt.Errorf("%w: zero area %+v", ErrInvalidBorders, b)
	}
	return nil
}

// Width returns the horizontal extent.
func (b Borders) Width() float32 {
	return float32(math.Abs(float64(b.Right - b.Left)))
}

// Height returns the vertical extent.
func (b Borders) Height() float32 {
	return float32(math.Abs(float64(b.Top - b.Bottom)))
}

// Contains reports whether p lies inside the borders (inclusive).
func (b Borders) Contains(p Particle) bool {
	minX, maxX := min(b.Left, b.Right), max(b.Left, b.Right)
	minY, maxY := min(b.Bottom, b.Top), max(b.Bottom, b.Top)
	return p.X >= minX && p.X <= maxX && p.Y >= minY && p.Y <= maxY
}

// Material is the flat shading applied to every particle instance.
type Material struct {
	Color   color.RGBA
	Opacity float32 // 0..1, multiplied into Color.A
}

// Validate rejects an unset material or an out-of-range opacity.
func (m Material) Validate() error {
	if m == (Material{}) {
		return fmt.Errorf("%w: material is unset", ErrInvalidMaterial)
	}
	if !finite(m.Opacity) || m.Opacity < 0 || m.Opacity > 1 {
		return fmt.Errorf("%w: opacity %v outside [0, 1]", ErrInvalidMaterial, m.Opacity)
	}
	return nil
}

// Transparent reports whether instances need alpha blending.
func (m Material) Transparent() bool {
	return m.Opacity < 1 || m.Color.A < 255
}

// Effective returns the color with opacity folded into alpha (not premultiplied).
func (m Material) Effective() color.NRGBA {
	return color.NRGBA{
		R: m.Color.R,
		G: m.Color.G,
		B: m.Color.B,
		A: uint8(math.Round(float64(m.Color.A) * float64(m.Opacity))),
	}
}

// Background is the full-screen quad drawn behind the particles.
type Background struct {
	FragmentShader string // GLSL source; empty = DefaultBackgroundShader
	ClearColor     color.RGBA
}

// DefaultClearColor is used when Background.ClearColor is unset.
var DefaultClearColor = color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff}

func (b Background) withDefaults() Background {
	if b.FragmentShader == "" {
		b.FragmentShader = DefaultBackgroundShader
	}
	if b.ClearColor == (color.RGBA{}) {
		b.ClearColor = DefaultClearColor
	}
	return b
}

func finite(v float32) bool {
	return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
}
