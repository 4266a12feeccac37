package blobs

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/drift/renderer"
)

// arcStep is the angular resolution of the pill's rounded ends, in radians.
const arcStep = 0.1

// PillGeometry returns a stadium of the given length, tilted 45 degrees, as a
// triangle fan around its center. The straight sides are length/2 long and
// the ends are half circles of radius length/4.
func PillGeometry(length float32) renderer.Geometry {
	// Half outline in unit space: lower-left corner, left cap, top edge
	half := [][2]float64{{-1, -1}}
	for a := 0.0; a < math.Pi; a += arcStep {
		half = append(half, [2]float64{
			math.Cos(-a-math.Pi/2) - 1,
			math.Sin(-a - math.Pi/2),
		})
	}
	half = append(half, [2]float64{-1, 1}, [2]float64{1, 1})

	// Point-mirror for the other half, then the fan center
	outline := make([][2]float64, 0, 2*len(half)+1)
	outline = append(outline, half...)
	for _, p := range half {
		outline = append(outline, [2]float64{-p[0], -p[1]})
	}
	outline = append(outline, [2]float64{0, 0})

	k := float64(length) / 4
	verts := make([]mgl32.Vec3, len(outline))
	// Reversed so the center comes first
	for i, p := range outline {
		verts[len(outline)-1-i] = mgl32.Vec3{float32(p[0] * k), float32(p[1] * k), 0}
	}

	g := renderer.Geometry{Vertices: verts, Mode: renderer.TriangleFan}
	return g.Transform(mgl32.HomogRotate3DZ(math.Pi / 4))
}
