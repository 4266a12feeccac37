package ui

import (
	"fmt"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drift/renderer"
	"github.com/pthm-cable/drift/telemetry"
	"github.com/pthm-cable/drift/viewport"
)

// HUDData holds everything the overlay shows.
type HUDData struct {
	Title     string
	Particles int
	Capacity  int
	Frames    int
	State     renderer.State
	Surface   viewport.Size
	Stats     telemetry.FrameStats
	Recording bool // a capture sink is attached
	CanStop   bool // the recording is still taking frames and can be ended early
	Paused    bool
}

// HUDActions reports which controls were clicked this frame.
type HUDActions struct {
	StopRecording bool
	TogglePause   bool
}

// HUD renders the status panel and controls.
type HUD struct {
	renderer *Renderer
	visible  bool
}

// NewHUD creates a visible HUD.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer(), visible: true}
}

// Toggle shows or hides the HUD.
func (h *HUD) Toggle() {
	h.visible = !h.visible
}

// Visible reports whether the HUD is drawn.
func (h *HUD) Visible() bool {
	return h.visible
}

// Draw renders the HUD at the top-left of the window and returns the
// clicked controls. Nothing is drawn or clicked while hidden.
func (h *HUD) Draw(data HUDData) HUDActions {
	var actions HUDActions
	if !h.visible {
		return actions
	}

	r := h.renderer
	th := r.Theme
	x, y := th.Padding, th.Padding
	width := int32(220)
	height := int32(8)*th.LineHeight + int32(th.ButtonHeight) + 3*th.Padding

	r.DrawPanel(x, y, width, height)
	x += th.Padding
	y += th.Padding

	y = r.DrawHeader(x, y, data.Title)
	y = r.DrawFillBar(x, y, "Particles", data.Particles, data.Capacity, width-2*th.Padding)
	y = r.DrawLabelValue(x, y, "Surface", fmt.Sprintf("%.0fx%.0f", data.Surface.Width, data.Surface.Height))
	y = r.DrawLabelValue(x, y, "Frames", fmt.Sprintf("%d", data.Frames))
	y = r.DrawLabelValue(x, y, "FPS", fmt.Sprintf("%d (%.1f avg)", rl.GetFPS(), data.Stats.FPS))
	y = r.DrawLabelValue(x, y, "Render", data.Stats.AvgRender.Round(time.Microsecond).String())
	y = r.DrawLabelValue(x, y, "Animation", data.State.String())

	status, color := "running", th.ValueColor
	switch {
	case data.Recording && data.State == renderer.StateRecording:
		status, color = "recording", th.Recording
	case data.Paused:
		status = "paused"
	}
	rl.DrawText(status, x, y, th.FontSize, color)
	y += th.LineHeight + th.Padding/2

	bx, by := float32(x), float32(y)
	if data.CanStop && gui.Button(rl.Rectangle{X: bx, Y: by, Width: th.ButtonWidth, Height: th.ButtonHeight}, "Stop") {
		actions.StopRecording = true
	}
	pauseLabel := "Pause"
	if data.Paused {
		pauseLabel = "Resume"
	}
	if gui.Button(rl.Rectangle{X: bx + th.ButtonWidth + 10, Y: by, Width: th.ButtonWidth, Height: th.ButtonHeight}, pauseLabel) {
		actions.TogglePause = true
	}

	return actions
}

// DrawControls renders the key legend at the bottom of the window.
func (h *HUD) DrawControls(win viewport.Size, controls string) {
	if !h.visible {
		return
	}
	rl.DrawText(controls, 10, int32(win.Height)-25, 14, rl.Gray)
}
