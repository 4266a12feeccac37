// Package clock provides a pausable delta-time clock for animation loops.
package clock

import "time"

// Clock measures time between successive samples. While stopped it reports
// zero deltas and accumulates nothing; Start resumes without a jump.
type Clock struct {
	now     func() time.Time
	running bool
	last    time.Time
	elapsed time.Duration
}

// New creates a running clock backed by the wall clock.
func New() *Clock {
	return NewWithSource(time.Now)
}

// NewWithSource creates a running clock backed by the given time source.
func NewWithSource(now func() time.Time) *Clock {
	c := &Clock{now: now}
	c.Start()
	return c
}

// Start resumes the clock. Calling Start on a running clock does nothing.
func (c *Clock) Start() {
	if c.running {
		return
	}
	c.running = true
	c.last = c.now()
}

// Stop freezes the clock, folding the time since the last sample into Elapsed.
func (c *Clock) Stop() {
	if !c.running {
		return
	}
	c.sample()
	c.running = false
}

// Running reports whether the clock is accumulating time.
func (c *Clock) Running() bool {
	return c.running
}

// Reset zeroes the elapsed time and restarts delta measurement from now.
func (c *Clock) Reset() {
	c.elapsed = 0
	c.last = c.now()
}

// Delta returns seconds since the previous sample (or since Start/Reset).
func (c *Clock) Delta() float64 {
	if !c.running {
		return 0
	}
	return c.sample().Seconds()
}

// Elapsed returns the total running time in seconds, up to the last sample.
func (c *Clock) Elapsed() float64 {
	return c.elapsed.Seconds()
}

func (c *Clock) sample() time.Duration {
	now := c.now()
	d := now.Sub(c.last)
	if d < 0 {
		d = 0
	}
	c.last = now
	c.elapsed += d
	return d
}

// NewFixedStep creates a running clock whose time advances by exactly step
// on every read, so each Delta reports step seconds regardless of wall time.
// Recording and headless runs use it to make frame timing deterministic.
func NewFixedStep(step time.Duration) *Clock {
	var t time.Time
	return NewWithSource(func() time.Time {
		t = t.Add(step)
		return t
	})
}
