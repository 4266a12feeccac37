// Package viewport fits a fixed aspect ratio into arbitrary available space.
package viewport

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidAspectRatio is returned for a non-positive or non-finite aspect ratio.
	ErrInvalidAspectRatio = errors.New("viewport: aspect ratio must be positive and finite")
	// ErrInvalidSize is returned when an available dimension is not positive.
	ErrInvalidSize = errors.New("viewport: dimensions must be positive")
)

// Size is a width/height pair in pixels.
type Size struct {
	Width, Height float32
}

// Valid reports whether both dimensions are positive and finite.
func (s Size) Valid() bool {
	return positive(s.Width) && positive(s.Height)
}

// Aspect returns Width/Height.
func (s Size) Aspect() float32 {
	return s.Width / s.Height
}

// Rect is a size placed at an offset inside the available area.
type Rect struct {
	X, Y          float32
	Width, Height float32
}

// Size returns the rectangle dimensions.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Surface is anything whose pixel dimensions can be set.
type Surface interface {
	SetSize(size Size)
}

// FixedAspectRatio computes the largest size with a fixed aspect ratio
// that fits inside the available space.
type FixedAspectRatio struct {
	aspect float32
}

// New creates a viewport helper bound to the given aspect ratio (width/height).
func New(aspect float32) (*FixedAspectRatio, error) {
	if !positive(aspect) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAspectRatio, aspect)
	}
	return &FixedAspectRatio{aspect: aspect}, nil
}

// AspectRatio returns the configured aspect ratio.
func (f *FixedAspectRatio) AspectRatio() float32 {
	return f.aspect
}

// MaximumSizeFor returns the largest size with the configured aspect ratio
// that fits inside avail. Wider-than-target space is constrained by height,
// everything else by width.
func (f *FixedAspectRatio) MaximumSizeFor(avail Size) (Size, error) {
	if !avail.Valid() {
		return Size{}, fmt.Errorf("%w: %vx%v", ErrInvalidSize, avail.Width, avail.Height)
	}

	if avail.Width/avail.Height > f.aspect {
		return Size{Width: avail.Height * f.aspect, Height: avail.Height}, nil
	}
	return Size{Width: avail.Width, Height: avail.Width / f.aspect}, nil
}

// Fit returns the maximal size centered inside avail, leaving equal
// letterbox bars on the unconstrained axis.
func (f *FixedAspectRatio) Fit(avail Size) (Rect, error) {
	size, err := f.MaximumSizeFor(avail)
	if err != nil {
		return Rect{}, err
	}
	return Rect{
		X:      (avail.Width - size.Width) / 2,
		Y:      (avail.Height - size.Height) / 2,
		Width:  size.Width,
		Height: size.Height,
	}, nil
}

// Resize applies the maximal size for avail to the surface and returns it.
// The surface is left untouched when avail is invalid.
func (f *FixedAspectRatio) Resize(surface Surface, avail Size) (Size, error) {
	size, err := f.MaximumSizeFor(avail)
	if err != nil {
		return Size{}, err
	}
	surface.SetSize(size)
	return size, nil
}

func positive(v float32) bool {
	return v > 0 && !math.IsInf(float64(v), 0) && !math.IsNaN(float64(v))
}
