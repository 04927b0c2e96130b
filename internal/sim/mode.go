package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/pendsim/internal/dynamo"
)

// Mode says who drives the angles: the integrator, or an external actor
// such as a drag gesture.
type Mode int

const (
	Integrating Mode = iota
	ManuallyPositioned
)

func (m Mode) String() string {
	switch m {
	case Integrating:
		return "integrating"
	case ManuallyPositioned:
		return "manual"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// SetManualAngle pins bob's angle. The first call switches the simulation
// to ManuallyPositioned and every call zeroes all angular velocities, so no
// motion survives the grab.
func (s *Simulation) SetManualAngle(bob int, angle float64) error {
	if bob < 0 || bob >= s.Links() {
		return fmt.Errorf("%w: bob index %d out of range [0, %d)", dynamo.ErrInvalidParameter, bob, s.Links())
	}
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return fmt.Errorf("%w: angle must be finite, got %g", dynamo.ErrInvalidParameter, angle)
	}

	n := s.Links()
	s.x[bob] = angle
	for i := n; i < 2*n; i++ {
		s.x[i] = 0
	}
	s.mode = ManuallyPositioned
	return nil
}

// EndManualPositioning hands the pendulum back to the integrator. seed, if
// given, holds one angular velocity per link; otherwise the pendulum starts
// from rest. Releasing a pendulum that is not held is a no-op.
func (s *Simulation) EndManualPositioning(seed ...float64) error {
	if s.mode != ManuallyPositioned {
		return nil
	}
	n := s.Links()
	if len(seed) != 0 && len(seed) != n {
		return fmt.Errorf("%w: seed needs %d velocities, got %d", dynamo.ErrInvalidParameter, n, len(seed))
	}
	for _, w := range seed {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: seed velocity must be finite, got %g", dynamo.ErrInvalidParameter, w)
		}
	}

	copy(s.x[n:], seed)
	s.mode = Integrating
	return nil
}
