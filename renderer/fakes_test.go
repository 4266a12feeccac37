package renderer

import (
	"errors"
	"image"
	"image/color"
	"time"

	"github.com/pthm-cable/drift/camera"
	"github.com/pthm-cable/drift/clock"
	"github.com/pthm-cable/drift/viewport"
)

// fakeBackend records calls into a shared log.
type fakeBackend struct {
	log     *[]string
	size    viewport.Size
	sizes   []viewport.Size
	drawErr error
	drawn   []int // instance counts per Draw
	loaded  *Scene
}

func (b *fakeBackend) SetSize(size viewport.Size) {
	b.size = size
	b.sizes = append(b.sizes, size)
}

func (b *fakeBackend) Load(scene *Scene) error {
	b.loaded = scene
	*b.log = append(*b.log, "load")
	return nil
}

func (b *fakeBackend) Size() viewport.Size { return b.size }

func (b *fakeBackend) Draw(scene *Scene, _ *camera.Orthographic) error {
	*b.log = append(*b.log, "draw")
	if b.drawErr != nil {
		return b.drawErr
	}
	b.drawn = append(b.drawn, scene.Instances.Count())
	scene.Instances.MarkUploaded()
	return nil
}

func (b *fakeBackend) Frame() (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)
	return img, nil
}

func (b *fakeBackend) Unload() {
	*b.log = append(*b.log, "unload")
}

// fakeSink records the capture call sequence.
type fakeSink struct {
	log      *[]string
	startErr error
	stopErr  error
	saveErr  error
	frames   int
}

func (s *fakeSink) Start() error {
	*s.log = append(*s.log, "start")
	return s.startErr
}

func (s *fakeSink) Capture(image.Image) error {
	*s.log = append(*s.log, "capture")
	s.frames++
	return nil
}

func (s *fakeSink) Stop() error {
	*s.log = append(*s.log, "stop")
	return s.stopErr
}

func (s *fakeSink) Save() error {
	*s.log = append(*s.log, "save")
	return s.saveErr
}

var errBoom = errors.New("boom")

// stepClock returns a clock that advances by step on every read.
func stepClock(step time.Duration) *clock.Clock {
	t := time.Unix(0, 0)
	return clock.NewWithSource(func() time.Time {
		t = t.Add(step)
		return t
	})
}

func testOptions() Options {
	return Options{
		Borders:      Borders{Top: 100, Left: 0, Bottom: 0, Right: 100},
		Geometry:     Quad(1, 1),
		Material:     Material{Color: color.RGBA{A: 255}, Opacity: 0.1},
		MaxParticles: 4,
	}
}

// filter keeps only the entries in keep, preserving order.
func filter(log []string, keep ...string) []string {
	set := make(map[string]bool, len(keep))
	for _, k := range keep {
		set[k] = true
	}
	var out []string
	for _, e := range log {
		if set[e] {
			out = append(out, e)
		}
	}
	return out
}
