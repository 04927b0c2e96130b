package integrators

import "github.com/san-kum/pendsim/internal/dynamo"

// Euler is the semi-implicit (symplectic) Euler scheme: velocities are
// advanced with the current accelerations, then positions with the new
// velocities.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamo.System, x dynamo.State, t, dt float64) (dynamo.State, error) {
	if err := checkLayout(sys, x); err != nil {
		return nil, err
	}
	dx, err := sys.Derive(x, t)
	if err != nil {
		return nil, err
	}

	n := len(x)
	half := n / 2
	result := make(dynamo.State, n)
	for i := 0; i < half; i++ {
		result[half+i] = x[half+i] + dt*dx[half+i]
		result[i] = x[i] + dt*result[half+i]
	}
	return finish(result)
}
