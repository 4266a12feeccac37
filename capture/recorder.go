package capture

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"image/png"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
)

// Output file names inside a session directory.
const (
	ManifestFile = "frames.csv"
	GIFFile      = "capture.gif"
)

// Options configures a Recorder.
type Options struct {
	Dir       string // parent directory; each session gets a subdirectory
	Format    Format
	Framerate int
	Width     int // output width in pixels (0 = frame width)
	Height    int // output height in pixels (0 = frame height)
}

// FrameRecord is one row of the session manifest.
type FrameRecord struct {
	Index       int     `csv:"index"`
	File        string  `csv:"file"`
	TimestampMS float64 `csv:"timestamp_ms"`
	Width       int     `csv:"width"`
	Height      int     `csv:"height"`
}

// Recorder is a Sink writing PNG sequences or animated GIFs.
// Timestamps are virtual: frame i is stamped i/framerate regardless of how
// long rendering took, so recordings play back at the configured rate.
type Recorder struct {
	opts    Options
	state   state
	session string
	dir     string
	frames  []FrameRecord
	anim    *gif.GIF
	newID   func() string
}

// NewRecorder validates options and returns an idle recorder.
func NewRecorder(opts Options) (*Recorder, error) {
	if opts.Dir == "" {
		opts.Dir = "captures"
	}
	if _, err := ParseFormat(string(opts.Format)); err != nil {
		return nil, err
	}
	if opts.Framerate < 1 {
		return nil, fmt.Errorf("capture: framerate must be at least 1, got %d", opts.Framerate)
	}
	if opts.Width < 0 || opts.Height < 0 {
		return nil, fmt.Errorf("capture: output size must not be negative, got %dx%d", opts.Width, opts.Height)
	}
	return &Recorder{opts: opts, newID: uuid.NewString}, nil
}

// Session returns the session id (empty before Start).
func (r *Recorder) Session() string {
	return r.session
}

// Dir returns the session directory (empty before Start).
func (r *Recorder) Dir() string {
	return r.dir
}

// Frames returns the manifest rows recorded so far.
func (r *Recorder) Frames() []FrameRecord {
	return r.frames
}

// Start creates the session directory and begins accepting frames.
func (r *Recorder) Start() error {
	if r.state != stateIdle {
		return r.stateErr("start")
	}

	session := r.newID()
	dir := filepath.Join(r.opts.Dir, session)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating capture directory: %w", err)
	}

	r.session = session
	r.dir = dir
	r.frames = r.frames[:0]
	if r.opts.Format == FormatGIF {
		r.anim = &gif.GIF{}
	}
	r.state = stateRecording

	slog.Info("capture started", "component", "capture", "session", session, "format", string(r.opts.Format), "framerate", r.opts.Framerate)
	return nil
}

// Capture appends one frame.
func (r *Recorder) Capture(frame image.Image) error {
	if r.state != stateRecording {
		return r.stateErr("capture")
	}

	img := r.scale(frame)
	index := len(r.frames)
	rec := FrameRecord{
		Index:       index,
		TimestampMS: float64(index) * 1000 / float64(r.opts.Framerate),
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
	}

	switch r.opts.Format {
	case FormatPNG:
		name := fmt.Sprintf("frame_%05d.png", index)
		if err := WritePNG(filepath.Join(r.dir, name), img); err != nil {
			return err
		}
		rec.File = name
	case FormatGIF:
		r.anim.Image = append(r.anim.Image, palettize(img))
		r.anim.Delay = append(r.anim.Delay, gifDelay(r.opts.Framerate))
		rec.File = GIFFile
	}

	r.frames = append(r.frames, rec)
	return nil
}

// Stop ends recording. No more frames are accepted.
func (r *Recorder) Stop() error {
	if r.state != stateRecording {
		return r.stateErr("stop")
	}
	r.state = stateStopped
	return nil
}

// Save flushes the encoded output and the manifest.
func (r *Recorder) Save() error {
	if r.state != stateStopped {
		return r.stateErr("save")
	}

	if r.opts.Format == FormatGIF && len(r.anim.Image) > 0 {
		if err := writeGIF(filepath.Join(r.dir, GIFFile), r.anim); err != nil {
			return err
		}
	}
	if err := r.writeManifest(); err != nil {
		return err
	}

	r.state = stateSaved
	slog.Info("capture saved", "component", "capture", "session", r.session, "dir", r.dir, "frames", len(r.frames))
	return nil
}

func (r *Recorder) writeManifest() error {
	f, err := os.Create(filepath.Join(r.dir, ManifestFile))
	if err != nil {
		return fmt.Errorf("creating %s: %w", ManifestFile, err)
	}
	defer f.Close()

	if err := gocsv.Marshal(r.frames, f); err != nil {
		return fmt.Errorf("writing %s: %w", ManifestFile, err)
	}
	return nil
}

func (r *Recorder) scale(frame image.Image) image.Image {
	b := frame.Bounds()
	w, h := r.opts.Width, r.opts.Height
	if w == 0 {
		w = b.Dx()
	}
	if h == 0 {
		h = b.Dy()
	}
	if w == b.Dx() && h == b.Dy() {
		return frame
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), frame, b, xdraw.Src, nil)
	return dst
}

func (r *Recorder) stateErr(op string) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidState, op, r.state)
}

func palettize(img image.Image) *image.Paletted {
	b := img.Bounds()
	p := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), palette.Plan9)
	xdraw.FloydSteinberg.Draw(p, p.Bounds(), img, b.Min)
	return p
}

// gifDelay converts a framerate to GIF delay units (1/100 s).
func gifDelay(framerate int) int {
	d := int(math.Round(100 / float64(framerate)))
	if d < 1 {
		d = 1
	}
	return d
}

// WritePNG encodes img to a new PNG file at path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating frame: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding frame: %w", err)
	}
	return f.Close()
}

func writeGIF(path string, anim *gif.GIF) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", GIFFile, err)
	}
	if err := gif.EncodeAll(f, anim); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", GIFFile, err)
	}
	return f.Close()
}
