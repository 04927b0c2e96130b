package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/pendsim/internal/dynamo"
	"github.com/san-kum/pendsim/internal/solver"
)

// Two-stage Gauss-Legendre tableau (order 4).
var (
	glSqrt3 = math.Sqrt(3)

	glA11 = 0.25
	glA12 = 0.25 - glSqrt3/6
	glA21 = 0.25 + glSqrt3/6
	glA22 = 0.25

	glB1 = 0.5
	glB2 = 0.5

	glC1 = 0.5 - glSqrt3/6
	glC2 = 0.5 + glSqrt3/6
)

// GaussLegendreRK is the implicit two-stage Gauss-Legendre Runge-Kutta
// scheme. The stage equations are solved by Newton iteration seeded with
// f(y_n) for both stages.
type GaussLegendreRK struct {
	opts solver.Options
}

func NewGaussLegendre(opts solver.Options) *GaussLegendreRK {
	return &GaussLegendreRK{opts: opts}
}

func (g *GaussLegendreRK) Options() solver.Options { return g.opts }

func (g *GaussLegendreRK) Step(sys dynamo.System, x dynamo.State, t, dt float64) (dynamo.State, error) {
	next, _, err := g.Advance(sys, x, t, dt)
	return next, err
}

// Advance is Step that also reports the number of Newton iterations spent
// on the stage equations.
func (g *GaussLegendreRK) Advance(sys dynamo.System, x dynamo.State, t, dt float64) (dynamo.State, int, error) {
	if err := checkLayout(sys, x); err != nil {
		return nil, 0, err
	}
	k1, k2, iters, err := g.Stages(sys, x, t, dt)
	if err != nil {
		return nil, iters, err
	}

	n := len(x)
	result := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt*(glB1*k1[i]+glB2*k2[i])
	}
	next, err := finish(result)
	return next, iters, err
}

// Stages solves K1 = f(y + h(a11 K1 + a12 K2)), K2 = f(y + h(a21 K1 + a22 K2)).
func (g *GaussLegendreRK) Stages(sys dynamo.System, x dynamo.State, t, dt float64) (k1, k2 dynamo.State, iterations int, err error) {
	n := len(x)

	f0, err := sys.Derive(x, t)
	if err != nil {
		return nil, nil, 0, err
	}
	seed := make([]float64, 2*n)
	copy(seed[:n], f0)
	copy(seed[n:], f0)

	y1 := make(dynamo.State, n)
	y2 := make(dynamo.State, n)
	residual := func(k, out []float64) error {
		ka, kb := k[:n], k[n:]
		for i := 0; i < n; i++ {
			y1[i] = x[i] + dt*(glA11*ka[i]+glA12*kb[i])
			y2[i] = x[i] + dt*(glA21*ka[i]+glA22*kb[i])
		}
		f1, err := sys.Derive(y1, t+glC1*dt)
		if err != nil {
			return err
		}
		f2, err := sys.Derive(y2, t+glC2*dt)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			out[i] = ka[i] - f1[i]
			out[n+i] = kb[i] - f2[i]
		}
		return nil
	}

	res, err := solver.Newton(residual, seed, g.opts)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("gauss-legendre stages: %w", err)
	}
	return dynamo.State(res.X[:n]), dynamo.State(res.X[n:]), res.Iterations, nil
}
