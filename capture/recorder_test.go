package capture

import (
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidFrame(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func newTestRecorder(t *testing.T, opts Options) *Recorder {
	t.Helper()
	if opts.Dir == "" {
		opts.Dir = t.TempDir()
	}
	r, err := NewRecorder(opts)
	require.NoError(t, err)
	r.newID = func() string { return "session" }
	return r
}

func readManifest(t *testing.T, dir string) []FrameRecord {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, ManifestFile))
	require.NoError(t, err)
	defer f.Close()

	var rows []FrameRecord
	require.NoError(t, gocsv.UnmarshalFile(f, &rows))
	return rows
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" PNG ")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)

	_, err = ParseFormat("webm")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestNewRecorderValidation(t *testing.T) {
	_, err := NewRecorder(Options{Format: "avi", Framerate: 60})
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = NewRecorder(Options{Format: FormatPNG, Framerate: 0})
	assert.Error(t, err)

	_, err = NewRecorder(Options{Format: FormatPNG, Framerate: 30, Width: -1})
	assert.Error(t, err)
}

func TestRecorderPNGSequence(t *testing.T) {
	r := newTestRecorder(t, Options{Format: FormatPNG, Framerate: 50})

	require.NoError(t, r.Start())
	for i := 0; i < 3; i++ {
		require.NoError(t, r.Capture(solidFrame(8, 8, color.RGBA{R: uint8(i * 40), A: 255})))
	}
	require.NoError(t, r.Stop())
	require.NoError(t, r.Save())

	for _, name := range []string{"frame_00000.png", "frame_00001.png", "frame_00002.png"} {
		f, err := os.Open(filepath.Join(r.Dir(), name))
		require.NoError(t, err)
		img, err := png.Decode(f)
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, 8, img.Bounds().Dx())
	}

	rows := readManifest(t, r.Dir())
	require.Len(t, rows, 3)
	assert.Equal(t, "frame_00002.png", rows[2].File)
	assert.InDelta(t, 40.0, rows[2].TimestampMS, 1e-9)
}

func TestRecorderGIF(t *testing.T) {
	r := newTestRecorder(t, Options{Format: FormatGIF, Framerate: 25, Width: 4, Height: 2})

	require.NoError(t, r.Start())
	require.NoError(t, r.Capture(solidFrame(16, 8, color.White)))
	require.NoError(t, r.Capture(solidFrame(16, 8, color.Black)))
	require.NoError(t, r.Stop())
	require.NoError(t, r.Save())

	f, err := os.Open(filepath.Join(r.Dir(), GIFFile))
	require.NoError(t, err)
	defer f.Close()

	anim, err := gif.DecodeAll(f)
	require.NoError(t, err)
	require.Len(t, anim.Image, 2)
	assert.Equal(t, []int{4, 4}, anim.Delay)
	assert.Equal(t, image.Rect(0, 0, 4, 2), anim.Image[0].Bounds(), "frames should be scaled to output size")

	rows := readManifest(t, r.Dir())
	require.Len(t, rows, 2)
	assert.Equal(t, 4, rows[0].Width)
	assert.Equal(t, 2, rows[0].Height)
}

func TestRecorderStateOrder(t *testing.T) {
	r := newTestRecorder(t, Options{Format: FormatPNG, Framerate: 60})

	assert.ErrorIs(t, r.Capture(solidFrame(1, 1, color.Black)), ErrInvalidState)
	assert.ErrorIs(t, r.Stop(), ErrInvalidState)
	assert.ErrorIs(t, r.Save(), ErrInvalidState)

	require.NoError(t, r.Start())
	assert.ErrorIs(t, r.Start(), ErrInvalidState)
	assert.ErrorIs(t, r.Save(), ErrInvalidState, "save before stop")

	require.NoError(t, r.Stop())
	assert.ErrorIs(t, r.Capture(solidFrame(1, 1, color.Black)), ErrInvalidState)
	require.NoError(t, r.Save())
	assert.ErrorIs(t, r.Save(), ErrInvalidState)
}

func TestRecorderEmptySession(t *testing.T) {
	r := newTestRecorder(t, Options{Format: FormatGIF, Framerate: 60})

	require.NoError(t, r.Start())
	require.NoError(t, r.Stop())
	require.NoError(t, r.Save())

	assert.Equal(t, "session", r.Session())
	_, err := os.Stat(filepath.Join(r.Dir(), GIFFile))
	assert.True(t, os.IsNotExist(err), "no gif for zero frames")
	_, err = os.Stat(filepath.Join(r.Dir(), ManifestFile))
	assert.NoError(t, err)
}
