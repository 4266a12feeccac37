package renderer

import (
	"errors"
	"fmt"
	"time"

	"github.com/pthm-cable/drift/telemetry"
)

// Forever is a frame budget that only ends with Stop.
const Forever = -1

var (
	ErrAnimationStarted = errors.New("renderer: animation already started")
	ErrNotAnimating     = errors.New("renderer: animation not running")
	ErrInvalidFrames    = errors.New("renderer: frame budget must be >= 0 or Forever")
	ErrAnimationStopped = errors.New("renderer: animation already stopped")
	ErrTickPending      = errors.New("renderer: a tick is already scheduled")
)

// FrameFunc is called once per tick with the seconds since the previous
// tick. It is expected to call SetPositions.
type FrameFunc func(dt float64)

// State is the animation lifecycle.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateFlushing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateFlushing:
		return "flushing"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StartAnimation starts the capture sink and runs the first tick.
// Later ticks run from the host scheduler until totalFrames ticks have
// drawn (or Stop is called for Forever).
func (r *Renderer) StartAnimation(fn FrameFunc, totalFrames int) error {
	if fn == nil {
		return fmt.Errorf("%w: nil frame callback", ErrInvalidOptions)
	}
	if totalFrames < 0 && totalFrames != Forever {
		return fmt.Errorf("%w: got %d", ErrInvalidFrames, totalFrames)
	}
	if r.closed {
		return ErrClosed
	}
	switch r.state {
	case StateIdle:
	case StateDone:
		return ErrAnimationStopped
	default:
		return fmt.Errorf("%w (state %s)", ErrAnimationStarted, r.state)
	}

	if r.sink != nil {
		if err := r.sink.Start(); err != nil {
			r.state = StateDone
			r.err = fmt.Errorf("starting capture: %w", err)
			close(r.done)
			return r.err
		}
	}
	r.state = StateRecording
	r.clock.Reset()

	r.log.Info("animation started", "frames", totalFrames)
	return r.Animate(fn, totalFrames)
}

// Animate runs one tick with framesRemaining ticks left and schedules the
// next one. At zero it stops and flushes the capture sink instead.
// It fails with ErrTickPending while a scheduled tick has not run yet.
func (r *Renderer) Animate(fn FrameFunc, framesRemaining int) error {
	if r.state != StateRecording {
		return fmt.Errorf("%w (state %s)", ErrNotAnimating, r.state)
	}
	if r.pending {
		return ErrTickPending
	}
	if framesRemaining == 0 {
		return r.finish(nil)
	}

	dt := r.clock.Delta()
	fn(dt)
	if r.state != StateRecording {
		// Stopped from inside the callback
		return r.err
	}

	start := time.Now()
	if err := r.Render(); err != nil {
		return r.finish(fmt.Errorf("rendering frame %d: %w", r.frames, err))
	}
	if r.sink != nil {
		frame, err := r.backend.Frame()
		if err != nil {
			return r.finish(fmt.Errorf("reading frame %d: %w", r.frames, err))
		}
		if err := r.sink.Capture(frame); err != nil {
			return r.finish(fmt.Errorf("capturing frame %d: %w", r.frames, err))
		}
	}
	r.frames++

	if r.perf != nil {
		r.perf.Record(telemetry.FrameSample{
			Delta:     time.Duration(dt * float64(time.Second)),
			Render:    time.Since(start),
			Particles: r.scene.Instances.Count(),
		})
	}

	next := framesRemaining - 1
	if framesRemaining < 0 {
		next = Forever
	}
	r.pending = true
	r.host.Schedule(func() { r.tick(fn, next) })
	return nil
}

func (r *Renderer) tick(fn FrameFunc, framesRemaining int) {
	r.pending = false
	if r.state != StateRecording {
		return
	}
	if err := r.Animate(fn, framesRemaining); err != nil {
		r.log.Error("animation aborted", "frame", r.frames, "error", err)
	}
}

// Stop ends the animation early. A running animation still stops and saves
// its capture sink. Stop on a finished renderer does nothing.
func (r *Renderer) Stop() error {
	switch r.state {
	case StateIdle:
		r.state = StateDone
		close(r.done)
		return nil
	case StateRecording:
		return r.finish(nil)
	default:
		return nil
	}
}

// finish flushes the sink and enters the terminal state.
func (r *Renderer) finish(cause error) error {
	r.state = StateFlushing

	var errs []error
	if cause != nil {
		errs = append(errs, cause)
	}
	if r.sink != nil {
		if err := r.sink.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stopping capture: %w", err))
		} else if err := r.sink.Save(); err != nil {
			errs = append(errs, fmt.Errorf("saving capture: %w", err))
		}
	}

	r.state = StateDone
	r.err = errors.Join(errs...)
	close(r.done)

	if r.err != nil {
		r.log.Error("animation finished with error", "frames", r.frames, "error", r.err)
	} else {
		r.log.Info("animation finished", "frames", r.frames)
	}
	return r.err
}

// State returns the animation state.
func (r *Renderer) State() State {
	return r.state
}

// Frames returns the number of frames drawn by the animation loop.
func (r *Renderer) Frames() int {
	return r.frames
}

// Done is closed when the animation reaches its terminal state.
func (r *Renderer) Done() <-chan struct{} {
	return r.done
}

// Err returns the error that ended the animation, if any.
func (r *Renderer) Err() error {
	return r.err
}
