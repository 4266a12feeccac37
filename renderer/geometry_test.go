package renderer

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeometryValidate(t *testing.T) {
	require.NoError(t, Quad(2, 2).Validate())
	require.NoError(t, Circle(1, 8).Validate())

	bad := []Geometry{
		{},
		{Vertices: make([]mgl32.Vec3, 4), Mode: Triangles},
		{Vertices: make([]mgl32.Vec3, 2), Mode: TriangleFan},
		{Vertices: make([]mgl32.Vec3, 3), Mode: DrawMode(7)},
		{Vertices: []mgl32.Vec3{{float32(math.Inf(1)), 0, 0}, {}, {}}, Mode: Triangles},
	}
	for _, g := range bad {
		assert.ErrorIs(t, g.Validate(), ErrInvalidGeometry)
	}
}

func TestFanToTriangles(t *testing.T) {
	fan := Geometry{
		Vertices: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		Mode:     TriangleFan,
	}
	require.Equal(t, 2, fan.TriangleCount())

	tris := fan.Triangles()
	assert.Equal(t, []mgl32.Vec3{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0},
		{0, 0, 0}, {1, 1, 0}, {0, 1, 0},
	}, tris)

	quad := Quad(2, 4)
	assert.Equal(t, 2, quad.TriangleCount())
	assert.Equal(t, quad.Vertices, quad.Triangles())
}

func TestCircle(t *testing.T) {
	c := Circle(2, 4)
	// Center plus a closed ring
	require.Len(t, c.Vertices, 6)
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, c.Vertices[0])
	assert.InDelta(t, 2, c.Vertices[1].X(), 1e-6)
	assert.InDelta(t, c.Vertices[1].X(), c.Vertices[5].X(), 1e-5)

	assert.Len(t, Circle(1, 1).Vertices, 5)
}

func TestGeometryTransform(t *testing.T) {
	q := Quad(2, 2)
	moved := q.Transform(mgl32.Translate3D(10, 0, 0))

	assert.InDelta(t, 9, moved.Vertices[0].X(), 1e-6)
	assert.InDelta(t, -1, q.Vertices[0].X(), 1e-6)
	assert.Equal(t, q.Mode, moved.Mode)
}

func TestBorders(t *testing.T) {
	b := Borders{Top: 10, Left: -5, Bottom: -10, Right: 5}
	require.NoError(t, b.Validate())
	assert.Equal(t, float32(10), b.Width())
	assert.Equal(t, float32(20), b.Height())
	assert.True(t, b.Contains(Particle{X: 5, Y: -10}))
	assert.False(t, b.Contains(Particle{X: 6, Y: 0}))

	// Flipped borders still describe the same volume
	flipped := Borders{Top: 0, Left: 0, Bottom: 100, Right: 100}
	require.NoError(t, flipped.Validate())
	assert.True(t, flipped.Contains(Particle{X: 50, Y: 50}))
}
