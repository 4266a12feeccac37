// Package software is a CPU renderer.Backend built on x/image/vector. It
// needs no window or GPU, which makes it the backend for headless runs.
// Background fragment shaders are not evaluated; only the clear color is drawn.
package software

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/vector"

	"github.com/pthm-cable/drift/camera"
	"github.com/pthm-cable/drift/renderer"
	"github.com/pthm-cable/drift/viewport"
)

var (
	ErrNotLoaded = errors.New("software: scene not loaded")
	ErrNoTarget  = errors.New("software: surface has no size")
)

// Backend rasterizes every instance of the scene mesh into an RGBA image.
type Backend struct {
	size   viewport.Size
	canvas *image.RGBA

	triangles []mgl32.Vec3
	fill      *image.Uniform
	clear     *image.Uniform

	raster *vector.Rasterizer
	// Scratch for projected vertices of one instance
	screen []mgl32.Vec2

	loaded bool
}

// New creates an unloaded software backend.
func New() *Backend {
	return &Backend{raster: vector.NewRasterizer(0, 0)}
}

// Load captures the scene geometry and colors.
func (b *Backend) Load(scene *renderer.Scene) error {
	b.triangles = scene.Geometry.Triangles()
	b.screen = make([]mgl32.Vec2, len(b.triangles))
	b.fill = image.NewUniform(scene.Material.Effective())
	b.clear = image.NewUniform(scene.Background.ClearColor)
	b.loaded = true
	return nil
}

// SetSize reallocates the canvas.
func (b *Backend) SetSize(size viewport.Size) {
	b.size = size
	w, h := int(size.Width), int(size.Height)
	if w < 1 || h < 1 {
		b.canvas = nil
		return
	}
	if b.canvas != nil && b.canvas.Bounds().Dx() == w && b.canvas.Bounds().Dy() == h {
		return
	}
	b.canvas = image.NewRGBA(image.Rect(0, 0, w, h))
}

// Size returns the surface size.
func (b *Backend) Size() viewport.Size {
	return b.size
}

// Draw clears the canvas and composites each active instance over it.
func (b *Backend) Draw(scene *renderer.Scene, cam *camera.Orthographic) error {
	if !b.loaded {
		return ErrNotLoaded
	}
	if b.canvas == nil {
		return ErrNoTarget
	}

	draw.Draw(b.canvas, b.canvas.Bounds(), b.clear, image.Point{}, draw.Src)

	vp := cam.ViewProjection()
	bounds := b.canvas.Bounds()
	w, h := float32(bounds.Dx()), float32(bounds.Dy())

	for _, inst := range scene.Instances.Active() {
		m := vp.Mul4(inst)
		for i, v := range b.triangles {
			p := m.Mul4x1(v.Vec4(1))
			b.screen[i] = mgl32.Vec2{
				(p.X()/p.W() + 1) / 2 * w,
				(1 - p.Y()/p.W()) / 2 * h,
			}
		}
		b.fillInstance(bounds)
	}

	scene.Instances.MarkUploaded()
	return nil
}

// fillInstance rasterizes the projected triangles within their bounding box
// so the rasterizer only clears the covered area.
func (b *Backend) fillInstance(bounds image.Rectangle) {
	minX, minY := float32(math.Inf(1)), float32(math.Inf(1))
	maxX, maxY := float32(math.Inf(-1)), float32(math.Inf(-1))
	for _, p := range b.screen {
		minX, maxX = min(minX, p.X()), max(maxX, p.X())
		minY, maxY = min(minY, p.Y()), max(maxY, p.Y())
	}

	box := image.Rect(
		int(math.Floor(float64(minX))), int(math.Floor(float64(minY))),
		int(math.Ceil(float64(maxX))), int(math.Ceil(float64(maxY))),
	).Intersect(bounds)
	if box.Empty() {
		return
	}

	ox, oy := float32(box.Min.X), float32(box.Min.Y)
	b.raster.Reset(box.Dx(), box.Dy())
	b.raster.DrawOp = draw.Over
	for i := 0; i+2 < len(b.screen); i += 3 {
		a, c, d := b.screen[i], b.screen[i+1], b.screen[i+2]
		b.raster.MoveTo(a.X()-ox, a.Y()-oy)
		b.raster.LineTo(c.X()-ox, c.Y()-oy)
		b.raster.LineTo(d.X()-ox, d.Y()-oy)
		b.raster.ClosePath()
	}
	b.raster.Draw(b.canvas, box, b.fill, image.Point{})
}

// Frame returns a copy of the canvas.
func (b *Backend) Frame() (image.Image, error) {
	if b.canvas == nil {
		return nil, ErrNoTarget
	}
	out := image.NewRGBA(b.canvas.Bounds())
	copy(out.Pix, b.canvas.Pix)
	return out, nil
}

// At returns the canvas color at (x, y).
func (b *Backend) At(x, y int) color.Color {
	if b.canvas == nil {
		return color.RGBA{}
	}
	return b.canvas.At(x, y)
}

// Unload drops the canvas.
func (b *Backend) Unload() {
	b.canvas = nil
	b.loaded = false
}
