// Package rlbackend draws renderer scenes with raylib: the background shader
// and the instanced particle mesh go into an offscreen render texture that
// the Window presents letterboxed.
package rlbackend

import (
	_ "embed"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drift/camera"
	"github.com/pthm-cable/drift/renderer"
	"github.com/pthm-cable/drift/viewport"
)

//go:embed shaders/instanced.vs
var instancedVS string

//go:embed shaders/instanced.fs
var instancedFS string

var (
	ErrShader    = errors.New("rlbackend: shader failed to compile")
	ErrNotLoaded = errors.New("rlbackend: scene not loaded")
	ErrNoTarget  = errors.New("rlbackend: render target has no size")
)

// Backend is a raylib renderer.Backend. It must be created and used on the
// goroutine that opened the window.
type Backend struct {
	size   viewport.Size
	target rl.RenderTexture2D
	// Dimensions of target in pixels, zero when none is allocated
	targetW, targetH int32

	background    rl.Shader
	timeLoc       int32
	resolutionLoc int32
	clearColor    rl.Color

	instanced rl.Shader
	mesh      rl.Mesh
	vertices  []float32
	material  rl.Material

	transforms []rl.Matrix
	started    float64

	initialized bool
}

// NewBackend creates an unloaded backend.
func NewBackend() *Backend {
	return &Backend{}
}

// Load compiles the shaders and uploads the particle mesh.
// Must be called after the raylib window is created.
func (b *Backend) Load(scene *renderer.Scene) error {
	if b.initialized {
		return nil
	}

	b.background = rl.LoadShaderFromMemory("", scene.Background.FragmentShader)
	if !rl.IsShaderValid(b.background) {
		return fmt.Errorf("%w: background", ErrShader)
	}
	b.timeLoc = rl.GetShaderLocation(b.background, "time")
	b.resolutionLoc = rl.GetShaderLocation(b.background, "resolution")
	b.clearColor = scene.Background.ClearColor

	b.instanced = rl.LoadShaderFromMemory(instancedVS, instancedFS)
	if !rl.IsShaderValid(b.instanced) {
		rl.UnloadShader(b.background)
		return fmt.Errorf("%w: instanced", ErrShader)
	}
	b.instanced.UpdateLocation(rl.ShaderLocMatrixModel, rl.GetShaderLocationAttrib(b.instanced, "instanceTransform"))

	b.uploadMesh(scene.Geometry)

	b.material = rl.LoadMaterialDefault()
	b.material.Shader = b.instanced
	b.material.GetMap(rl.MapDiffuse).Color = toColor(scene.Material)

	b.transforms = make([]rl.Matrix, scene.Instances.Capacity())
	b.started = rl.GetTime()
	b.initialized = true

	if b.size.Valid() {
		b.allocTarget()
	}

	slog.Debug("raylib backend loaded",
		"triangles", scene.Geometry.TriangleCount(),
		"capacity", scene.Instances.Capacity(),
	)
	return nil
}

// uploadMesh flattens the geometry into a non-indexed triangle list.
func (b *Backend) uploadMesh(g renderer.Geometry) {
	tris := g.Triangles()
	b.vertices = make([]float32, 0, len(tris)*3)
	for _, v := range tris {
		b.vertices = append(b.vertices, v.X(), v.Y(), v.Z())
	}

	b.mesh = rl.Mesh{
		VertexCount:   int32(len(tris)),
		TriangleCount: int32(len(tris) / 3),
		Vertices:      unsafe.SliceData(b.vertices),
	}
	rl.UploadMesh(&b.mesh, false)
	// Only the GPU copy is used from here on
	b.mesh.Vertices = nil
}

// SetSize resizes the drawing surface, reallocating the render texture.
func (b *Backend) SetSize(size viewport.Size) {
	b.size = size
	if b.initialized {
		b.allocTarget()
	}
}

func (b *Backend) allocTarget() {
	w, h := int32(b.size.Width), int32(b.size.Height)
	if w == b.targetW && h == b.targetH {
		return
	}
	b.freeTarget()
	if w < 1 || h < 1 {
		return
	}

	b.target = rl.LoadRenderTexture(w, h)
	rl.SetTextureFilter(b.target.Texture, rl.FilterBilinear)
	b.targetW, b.targetH = w, h
	rl.SetShaderValue(b.background, b.resolutionLoc, []float32{float32(w), float32(h)}, rl.ShaderUniformVec2)
}

func (b *Backend) freeTarget() {
	if b.targetW == 0 {
		return
	}
	rl.UnloadRenderTexture(b.target)
	b.targetW, b.targetH = 0, 0
}

// Size returns the surface size.
func (b *Backend) Size() viewport.Size {
	return b.size
}

// Draw renders the background and the active instances into the render texture.
func (b *Backend) Draw(scene *renderer.Scene, cam *camera.Orthographic) error {
	if !b.initialized {
		return ErrNotLoaded
	}
	if b.targetW == 0 {
		return ErrNoTarget
	}

	inst := scene.Instances
	if inst.NeedsUpdate() {
		for i, m := range inst.Active() {
			b.transforms[i] = toMatrix(m)
		}
		inst.MarkUploaded()
	}

	rl.BeginTextureMode(b.target)
	rl.ClearBackground(b.clearColor)

	rl.SetShaderValue(b.background, b.timeLoc, []float32{float32(rl.GetTime() - b.started)}, rl.ShaderUniformFloat)
	rl.BeginShaderMode(b.background)
	rl.DrawRectangle(0, 0, b.targetW, b.targetH, rl.White)
	rl.EndShaderMode()

	if n := inst.Count(); n > 0 {
		// BeginMode3D pushes the matrix stack; the camera's own matrices replace it
		rl.BeginMode3D(rl.Camera3D{Up: rl.Vector3{Y: 1}, Projection: rl.CameraOrthographic, Fovy: 1})
		rl.SetMatrixProjection(toMatrix(cam.Projection()))
		rl.SetMatrixModelview(toMatrix(cam.View()))
		rl.DrawMeshInstanced(b.mesh, b.material, b.transforms[:n], n)
		rl.EndMode3D()
	}

	rl.EndTextureMode()
	return nil
}

// Frame reads the render texture back into CPU memory, top row first.
func (b *Backend) Frame() (image.Image, error) {
	if b.targetW == 0 {
		return nil, ErrNoTarget
	}

	img := rl.LoadImageFromTexture(b.target.Texture)
	defer rl.UnloadImage(img)
	rl.ImageFlipVertical(img)

	colors := rl.LoadImageColors(img)
	defer rl.UnloadImageColors(colors)

	out := image.NewRGBA(image.Rect(0, 0, int(img.Width), int(img.Height)))
	for i, c := range colors {
		out.Pix[i*4+0] = c.R
		out.Pix[i*4+1] = c.G
		out.Pix[i*4+2] = c.B
		out.Pix[i*4+3] = c.A
	}
	return out, nil
}

// Present draws the render texture into dst on the current framebuffer.
func (b *Backend) Present(dst viewport.Rect) {
	if b.targetW == 0 {
		return
	}
	// Render textures are stored bottom-up
	src := rl.Rectangle{Width: float32(b.targetW), Height: -float32(b.targetH)}
	rl.DrawTexturePro(b.target.Texture, src, toRectangle(dst), rl.Vector2{}, 0, rl.White)
}

// Unload releases GPU resources.
func (b *Backend) Unload() {
	if !b.initialized {
		return
	}
	b.freeTarget()
	rl.UnloadMesh(&b.mesh)
	// The material owns the instanced shader
	rl.UnloadMaterial(b.material)
	rl.UnloadShader(b.background)
	b.initialized = false
}
