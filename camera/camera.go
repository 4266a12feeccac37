// Package camera provides an orthographic camera framed to a world-space rectangle.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/drift/viewport"
)

// Default clip planes and eye distance.
const (
	DefaultNear     = 0.01
	DefaultFar      = 1000
	DefaultDistance = 5
)

// Orthographic is a projection with no perspective foreshortening.
// The volume is given relative to the camera position, so a camera on the
// +Z axis looking at the origin sees exactly [Left, Right] x [Bottom, Top].
type Orthographic struct {
	// Projection volume in world units
	Left, Right float32
	Top, Bottom float32
	Near, Far   float32

	position mgl32.Vec3
	target   mgl32.Vec3
	up       mgl32.Vec3

	projection mgl32.Mat4
	view       mgl32.Mat4
}

// NewOrthographic creates a camera on the +Z axis looking at the origin.
// The projection matrix is computed immediately.
func NewOrthographic(left, right, top, bottom, near, far float32) *Orthographic {
	c := &Orthographic{
		Left:     left,
		Right:    right,
		Top:      top,
		Bottom:   bottom,
		Near:     near,
		Far:      far,
		position: mgl32.Vec3{0, 0, DefaultDistance},
		up:       mgl32.Vec3{0, 1, 0},
	}
	c.updateView()
	c.UpdateProjection()
	return c
}

// SetPosition moves the camera, keeping its target.
func (c *Orthographic) SetPosition(x, y, z float32) {
	c.position = mgl32.Vec3{x, y, z}
	c.updateView()
}

// Position returns the camera position.
func (c *Orthographic) Position() mgl32.Vec3 {
	return c.position
}

// LookAt points the camera at the target.
func (c *Orthographic) LookAt(x, y, z float32) {
	c.target = mgl32.Vec3{x, y, z}
	c.updateView()
}

// UpdateProjection recomputes the projection matrix from the volume fields.
// Must be called after any of them change.
func (c *Orthographic) UpdateProjection() {
	c.projection = mgl32.Ortho(c.Left, c.Right, c.Bottom, c.Top, c.Near, c.Far)
}

// Projection returns the last computed projection matrix.
func (c *Orthographic) Projection() mgl32.Mat4 {
	return c.projection
}

// View returns the world-to-camera matrix.
func (c *Orthographic) View() mgl32.Mat4 {
	return c.view
}

// ViewProjection returns Projection * View.
func (c *Orthographic) ViewProjection() mgl32.Mat4 {
	return c.projection.Mul4(c.view)
}

// WorldToNDC projects a point on the z=0 plane to normalized device coordinates.
func (c *Orthographic) WorldToNDC(wx, wy float32) (nx, ny float32) {
	p := c.ViewProjection().Mul4x1(mgl32.Vec4{wx, wy, 0, 1})
	return p.X() / p.W(), p.Y() / p.W()
}

// WorldToScreen projects a point on the z=0 plane into pixel coordinates of
// the given viewport rectangle. Screen Y grows downwards.
func (c *Orthographic) WorldToScreen(wx, wy float32, vp viewport.Rect) (sx, sy float32) {
	nx, ny := c.WorldToNDC(wx, wy)
	sx = vp.X + (nx+1)/2*vp.Width
	sy = vp.Y + (1-ny)/2*vp.Height
	return sx, sy
}

// VisibleWorldBounds returns the world rectangle seen on the z=0 plane.
func (c *Orthographic) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	minX = c.position.X() + min(c.Left, c.Right)
	maxX = c.position.X() + max(c.Left, c.Right)
	minY = c.position.Y() + min(c.Top, c.Bottom)
	maxY = c.position.Y() + max(c.Top, c.Bottom)
	return
}

func (c *Orthographic) updateView() {
	c.view = mgl32.LookAtV(c.position, c.target, c.up)
}
