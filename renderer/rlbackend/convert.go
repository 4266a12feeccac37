package rlbackend

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/drift/renderer"
	"github.com/pthm-cable/drift/viewport"
)

// toMatrix converts a column-major mathgl matrix. raylib names elements in
// the same column-major order, so Mi is m[i].
func toMatrix(m mgl32.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M4: m[4], M8: m[8], M12: m[12],
		M1: m[1], M5: m[5], M9: m[9], M13: m[13],
		M2: m[2], M6: m[6], M10: m[10], M14: m[14],
		M3: m[3], M7: m[7], M11: m[11], M15: m[15],
	}
}

// toColor folds the material opacity into the diffuse alpha.
func toColor(m renderer.Material) rl.Color {
	c := m.Effective()
	return rl.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

func toRectangle(r viewport.Rect) rl.Rectangle {
	return rl.Rectangle{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}
