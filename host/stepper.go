package host

// Stepper is a synchronous stand-in for a display's per-frame callback.
// Scheduled ticks wait in FIFO order until Step runs them.
type Stepper struct {
	queue []func()
}

// Schedule queues tick for the next Step.
func (s *Stepper) Schedule(tick func()) {
	s.queue = append(s.queue, tick)
}

// Pending returns the number of queued ticks.
func (s *Stepper) Pending() int {
	return len(s.queue)
}

// Step runs the oldest queued tick. Returns false when the queue was empty.
func (s *Stepper) Step() bool {
	if len(s.queue) == 0 {
		return false
	}
	tick := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	tick()
	return true
}

// RunUntilIdle steps until nothing is queued or limit ticks have run
// (limit <= 0 means no limit). Returns the number of ticks run.
func (s *Stepper) RunUntilIdle(limit int) int {
	n := 0
	for limit <= 0 || n < limit {
		if !s.Step() {
			break
		}
		n++
	}
	return n
}
