package renderer

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// DrawMode describes how Geometry vertices form triangles.
type DrawMode int

const (
	// Triangles treats every three vertices as one triangle.
	Triangles DrawMode = iota
	// TriangleFan shares vertex 0 between consecutive pairs.
	TriangleFan
)

// Geometry is the shape drawn once per particle instance.
type Geometry struct {
	Vertices []mgl32.Vec3
	Mode     DrawMode
}

// Validate rejects empty, malformed or non-finite geometry.
func (g Geometry) Validate() error {
	switch g.Mode {
	case Triangles:
		if len(g.Vertices) == 0 || len(g.Vertices)%3 != 0 {
			return fmt.Errorf("%w: triangle list needs a positive multiple of 3 vertices, got %d", ErrInvalidGeometry, len(g.Vertices))
		}
	case TriangleFan:
		if len(g.Vertices) < 3 {
			return fmt.Errorf("%w: triangle fan needs at least 3 vertices, got %d", ErrInvalidGeometry, len(g.Vertices))
		}
	default:
		return fmt.Errorf("%w: unknown draw mode %d", ErrInvalidGeometry, g.Mode)
	}

	for i, v := range g.Vertices {
		if !finite(v.X()) || !finite(v.Y()) || !finite(v.Z()) {
			return fmt.Errorf("%w: vertex %d is not finite", ErrInvalidGeometry, i)
		}
	}
	return nil
}

// TriangleCount returns the number of triangles the geometry produces.
func (g Geometry) TriangleCount() int {
	if g.Mode == TriangleFan {
		return max(len(g.Vertices)-2, 0)
	}
	return len(g.Vertices) / 3
}

// Triangles returns the geometry as a plain triangle list.
func (g Geometry) Triangles() []mgl32.Vec3 {
	if g.Mode == Triangles {
		out := make([]mgl32.Vec3, len(g.Vertices))
		copy(out, g.Vertices)
		return out
	}

	out := make([]mgl32.Vec3, 0, g.TriangleCount()*3)
	for i := 1; i+1 < len(g.Vertices); i++ {
		out = append(out, g.Vertices[0], g.Vertices[i], g.Vertices[i+1])
	}
	return out
}

// Transform returns a copy with every vertex multiplied by m.
func (g Geometry) Transform(m mgl32.Mat4) Geometry {
	out := Geometry{Vertices: make([]mgl32.Vec3, len(g.Vertices)), Mode: g.Mode}
	for i, v := range g.Vertices {
		out.Vertices[i] = mgl32.TransformCoordinate(v, m)
	}
	return out
}

// Quad returns a w x h rectangle centered on the origin.
func Quad(w, h float32) Geometry {
	x, y := w/2, h/2
	return Geometry{
		Vertices: []mgl32.Vec3{
			{-x, -y, 0}, {x, -y, 0}, {x, y, 0},
			{-x, -y, 0}, {x, y, 0}, {-x, y, 0},
		},
		Mode: Triangles,
	}
}

// Circle returns a fan approximating a circle centered on the origin.
func Circle(radius float32, segments int) Geometry {
	if segments < 3 {
		segments = 3
	}
	verts := make([]mgl32.Vec3, 0, segments+2)
	verts = append(verts, mgl32.Vec3{0, 0, 0})
	for i := 0; i <= segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		verts = append(verts, mgl32.Vec3{
			radius * float32(math.Cos(a)),
			radius * float32(math.Sin(a)),
			0,
		})
	}
	return Geometry{Vertices: verts, Mode: TriangleFan}
}
