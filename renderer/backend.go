package renderer

import (
	_ "embed"
	"image"

	"github.com/pthm-cable/drift/camera"
	"github.com/pthm-cable/drift/viewport"
)

// DefaultBackgroundShader is the built-in background fragment program.
//
//go:embed shaders/background.fs
var DefaultBackgroundShader string

// Scene is everything a backend draws: a background quad and one instanced mesh.
type Scene struct {
	Background Background
	Geometry   Geometry
	Material   Material
	Instances  *InstanceBuffer
}

// Backend is the drawing surface. Load is called once before any other
// method; Unload releases everything Load acquired.
type Backend interface {
	viewport.Surface

	Load(scene *Scene) error
	Size() viewport.Size
	Draw(scene *Scene, cam *camera.Orthographic) error
	// Frame returns the last drawn frame.
	Frame() (image.Image, error)
	Unload()
}

// Host is the window system: its size, a resize event and the per-frame
// redraw callback.
type Host interface {
	WindowSize() viewport.Size
	OnResize(fn func()) (cancel func())
	Schedule(tick func())
}
