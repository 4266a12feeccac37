package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// CapacityError is the panic value of a SetPositions call that exceeds the
// buffer capacity.
type CapacityError struct {
	Requested int
	Capacity  int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s: %d particles, capacity %d", ErrCapacityExceeded, e.Requested, e.Capacity)
}

func (e *CapacityError) Unwrap() error {
	return ErrCapacityExceeded
}

// InstanceBuffer holds one transform per particle instance. Slots are
// allocated once; Count selects how many are drawn.
type InstanceBuffer struct {
	transforms  []mgl32.Mat4
	count       int
	needsUpdate bool
}

// NewInstanceBuffer allocates capacity identity transforms.
func NewInstanceBuffer(capacity int) *InstanceBuffer {
	transforms := make([]mgl32.Mat4, capacity)
	for i := range transforms {
		transforms[i] = mgl32.Ident4()
	}
	return &InstanceBuffer{transforms: transforms}
}

// Capacity returns the number of pre-allocated slots.
func (b *InstanceBuffer) Capacity() int {
	return len(b.transforms)
}

// Count returns the number of active instances.
func (b *InstanceBuffer) Count() int {
	return b.count
}

// At returns the transform at index i.
func (b *InstanceBuffer) At(i int) mgl32.Mat4 {
	return b.transforms[i]
}

// Active returns the transforms of the active instances. The slice aliases
// the buffer and is only valid until the next SetPositions.
func (b *InstanceBuffer) Active() []mgl32.Mat4 {
	return b.transforms[:b.count]
}

// NeedsUpdate reports whether the transforms changed since the last upload.
func (b *InstanceBuffer) NeedsUpdate() bool {
	return b.needsUpdate
}

// MarkUploaded clears the dirty flag. Backends call it after uploading.
func (b *InstanceBuffer) MarkUploaded() {
	b.needsUpdate = false
}

// SetPositions writes a pure translation to (x, y, 0) for every particle and
// marks the buffer dirty. Exceeding the capacity is a caller bug: it panics
// with a *CapacityError before anything is written.
func (b *InstanceBuffer) SetPositions(particles []Particle) {
	if len(particles) > len(b.transforms) {
		panic(&CapacityError{Requested: len(particles), Capacity: len(b.transforms)})
	}

	b.count = len(particles)
	for i, p := range particles {
		b.transforms[i] = mgl32.Translate3D(p.X, p.Y, 0)
	}
	b.needsUpdate = true
}
