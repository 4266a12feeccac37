package host

import "github.com/pthm-cable/drift/viewport"

// Headless is a window-less host: a fixed-but-settable window size, a
// resize signal and a synchronous tick queue.
type Headless struct {
	Stepper

	size   viewport.Size
	resize Signal
}

// NewHeadless creates a headless host reporting the given window size.
func NewHeadless(size viewport.Size) *Headless {
	return &Headless{size: size}
}

// WindowSize returns the simulated window size.
func (h *Headless) WindowSize() viewport.Size {
	return h.size
}

// OnResize subscribes to simulated resizes.
func (h *Headless) OnResize(fn func()) (cancel func()) {
	return h.resize.Subscribe(fn)
}

// Listeners returns the number of resize subscribers.
func (h *Headless) Listeners() int {
	return h.resize.Len()
}

// Resize changes the simulated window size and notifies subscribers.
func (h *Headless) Resize(size viewport.Size) {
	h.size = size
	h.resize.Emit()
}
