// Package capture records rendered frames to disk.
package capture

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

var (
	// ErrInvalidState is returned when sink calls arrive out of order.
	ErrInvalidState = errors.New("capture: invalid state")
	// ErrUnknownFormat is returned for an unsupported output format.
	ErrUnknownFormat = errors.New("capture: unknown format")
)

// Sink is a sequential frame recorder. Callers start it once, hand it any
// number of frames, then stop and save it exactly once.
type Sink interface {
	Start() error
	Capture(frame image.Image) error
	Stop() error
	Save() error
}

// Format selects the on-disk encoding.
type Format string

const (
	// FormatPNG writes one numbered PNG per frame.
	FormatPNG Format = "png"
	// FormatGIF writes a single looping animated GIF.
	FormatGIF Format = "gif"
)

// ParseFormat converts a config string into a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPNG, FormatGIF:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

type state int

const (
	stateIdle state = iota
	stateRecording
	stateStopped
	stateSaved
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateRecording:
		return "recording"
	case stateStopped:
		return "stopped"
	case stateSaved:
		return "saved"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}
