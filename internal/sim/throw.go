package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/san-kum/pendsim/internal/dynamo"
	"github.com/san-kum/pendsim/internal/physics"
)

const (
	DefaultThrowSamples     = 4
	DefaultThrowSensitivity = 70.0
)

// AngleFromPointer is the angle of the link from pivot to pointer, measured
// from the downward vertical with y growing downward.
func AngleFromPointer(pivot, pointer physics.Point) float64 {
	return math.Atan2(pointer.X-pivot.X, pointer.Y-pivot.Y)
}

type pointerSample struct {
	p  physics.Point
	at time.Time
}

// ThrowTracker keeps the most recent pointer samples of a drag so that the
// release can carry the gesture's momentum into the pendulum.
type ThrowTracker struct {
	Capacity    int
	Sensitivity float64

	samples []pointerSample
}

func NewThrowTracker() *ThrowTracker {
	return &ThrowTracker{
		Capacity:    DefaultThrowSamples,
		Sensitivity: DefaultThrowSensitivity,
	}
}

func (tr *ThrowTracker) Record(p physics.Point, at time.Time) {
	tr.samples = append(tr.samples, pointerSample{p: p, at: at})
	if over := len(tr.samples) - tr.Capacity; tr.Capacity > 0 && over > 0 {
		tr.samples = tr.samples[over:]
	}
}

func (tr *ThrowTracker) Len() int { return len(tr.samples) }

func (tr *ThrowTracker) Reset() { tr.samples = tr.samples[:0] }

// Velocity is the mean pointer velocity over the kept samples, scaled down
// by Sensitivity. ok is false when fewer than two samples span no time.
func (tr *ThrowTracker) Velocity() (vx, vy float64, ok bool) {
	if len(tr.samples) < 2 {
		return 0, 0, false
	}
	first, last := tr.samples[0], tr.samples[len(tr.samples)-1]
	dt := last.at.Sub(first.at).Seconds()
	if dt <= 0 {
		return 0, 0, false
	}
	sens := tr.Sensitivity
	if sens <= 0 {
		sens = 1
	}
	vx = (last.p.X - first.p.X) / dt / sens
	vy = (last.p.Y - first.p.Y) / dt / sens
	return vx, vy, true
}

// AngularVelocity projects the pointer velocity on the tangent of a link of
// the given length at angle theta.
func (tr *ThrowTracker) AngularVelocity(theta, length float64) float64 {
	vx, vy, ok := tr.Velocity()
	if !ok || length <= 0 {
		return 0
	}
	return (vx*math.Cos(theta) - vy*math.Sin(theta)) / length
}

// Pivot is the point bob swings around: the origin for the first bob, the
// first bob for the second.
func (s *Simulation) Pivot(bob int) physics.Point {
	if bob <= 0 {
		return s.Params().Origin
	}
	return s.Positions()[bob-1]
}

func (s *Simulation) linkLength(bob int) float64 {
	if bob == 1 {
		return s.Params().L2
	}
	return s.Params().L1
}

// DragTo pins bob so that its link points at pointer.
func (s *Simulation) DragTo(bob int, pointer physics.Point) error {
	if bob < 0 || bob >= s.Links() {
		return fmt.Errorf("%w: bob index %d out of range [0, %d)", dynamo.ErrInvalidParameter, bob, s.Links())
	}
	return s.SetManualAngle(bob, AngleFromPointer(s.Pivot(bob), pointer))
}

// Throw releases a dragged bob, seeding its angular velocity from tr. The
// other links start from rest. tr is reset.
func (s *Simulation) Throw(bob int, tr *ThrowTracker) error {
	if bob < 0 || bob >= s.Links() {
		return fmt.Errorf("%w: bob index %d out of range [0, %d)", dynamo.ErrInvalidParameter, bob, s.Links())
	}
	seed := make([]float64, s.Links())
	seed[bob] = tr.AngularVelocity(s.x[bob], s.linkLength(bob))
	tr.Reset()
	return s.EndManualPositioning(seed...)
}
