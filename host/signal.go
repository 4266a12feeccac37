// Package host provides host-agnostic event and scheduling plumbing.
package host

// Signal is a listener list for a parameterless host event such as a
// window resize. Listeners run in subscription order on the caller's goroutine.
type Signal struct {
	nextID    int
	listeners []listener
}

type listener struct {
	id int
	fn func()
}

// Subscribe registers fn and returns a function that removes it again.
// The cancel function is safe to call more than once.
func (s *Signal) Subscribe(fn func()) (cancel func()) {
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener{id: id, fn: fn})

	return func() {
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Emit invokes every listener registered at the time of the call.
func (s *Signal) Emit() {
	// Copy so listeners may unsubscribe while being notified
	snapshot := make([]listener, len(s.listeners))
	copy(snapshot, s.listeners)
	for _, l := range snapshot {
		l.fn()
	}
}

// Len returns the number of registered listeners.
func (s *Signal) Len() int {
	return len(s.listeners)
}
