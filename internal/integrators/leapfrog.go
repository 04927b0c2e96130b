package integrators

import "github.com/san-kum/pendsim/internal/dynamo"

// Leapfrog is the kick-drift-kick (velocity Verlet) scheme.
type Leapfrog struct{}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Step(sys dynamo.System, x dynamo.State, t, dt float64) (dynamo.State, error) {
	if err := checkLayout(sys, x); err != nil {
		return nil, err
	}
	n := len(x)
	half := n / 2

	dx, err := sys.Derive(x, t)
	if err != nil {
		return nil, err
	}
	halfDt := dt * 0.5

	result := make(dynamo.State, n)
	for i := 0; i < half; i++ {
		result[half+i] = x[half+i] + dx[half+i]*halfDt
		result[i] = x[i] + result[half+i]*dt
	}

	dxNew, err := sys.Derive(result, t+dt)
	if err != nil {
		return nil, err
	}
	for i := 0; i < half; i++ {
		result[half+i] += dxNew[half+i] * halfDt
	}

	return finish(result)
}
