package host

// Signal is a coalescing wake-up: any number of Raise calls before the
// receiver wakes collapse into one.
type Signal struct {
	c chan struct{}
}

// NewSignal creates a lowered signal.
func NewSignal() *Signal {
	return &Signal{c: make(chan struct{}, 1)}
}

// Raise marks the signal. It never blocks and is safe from any goroutine.
func (s *Signal) Raise() {
	select {
	case s.c <- struct{}{}:
	default:
	}
}

// C receives once per batch of Raise calls.
func (s *Signal) C() <-chan struct{} {
	return s.c
}

// Pending lowers the signal and reports whether it was raised.
func (s *Signal) Pending() bool {
	select {
	case <-s.c:
		return true
	default:
		return false
	}
}
