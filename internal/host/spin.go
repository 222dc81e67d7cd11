package host

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// spinSettle is how close, in pixels, a Spin must come to rest.
const spinSettle = 0.01

// Spin plays back a drag of a given length as a smooth gesture: a critically
// damped spring pulls the pointer from the start to the end, one step per
// frame.
type Spin struct {
	spring harmonica.Spring
	pos    [2]float64
	vel    [2]float64
	target [2]float64
}

// NewSpin creates a gesture dragging (dx, dy) pixels at fps frames per
// second.
func NewSpin(fps int, dx, dy float64) *Spin {
	return &Spin{
		// Frequency 4.0 = moderate speed, damping 1.0 = no overshoot
		spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
		target: [2]float64{dx, dy},
	}
}

// Step advances one frame and returns the pointer movement of that frame.
func (s *Spin) Step() (dx, dy float64) {
	var d [2]float64
	for i := range s.pos {
		next, vel := s.spring.Update(s.pos[i], s.vel[i], s.target[i])
		d[i] = next - s.pos[i]
		s.pos[i], s.vel[i] = next, vel
	}
	return d[0], d[1]
}

// Done reports whether the pointer has settled on the end of the drag.
func (s *Spin) Done() bool {
	for i := range s.pos {
		if math.Abs(s.target[i]-s.pos[i]) > spinSettle || math.Abs(s.vel[i]) > spinSettle {
			return false
		}
	}
	return true
}

// Travelled returns the movement so far.
func (s *Spin) Travelled() (dx, dy float64) {
	return s.pos[0], s.pos[1]
}
