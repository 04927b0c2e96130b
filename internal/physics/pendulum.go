package physics

import (
	"math"

	"github.com/san-kum/pendsim/internal/dynamo"
)

// Pendulum is a point mass on a rigid massless rod: ω' = -(g/l)·sin θ.
type Pendulum struct {
	p Params
}

func NewPendulum(p Params) (*Pendulum, error) {
	if err := p.Validate(Simple); err != nil {
		return nil, err
	}
	return &Pendulum{p: p}, nil
}

func (s *Pendulum) Variant() Variant { return Simple }
func (s *Pendulum) Params() Params   { return s.p }
func (s *Pendulum) StateDim() int    { return 2 }

func (s *Pendulum) Derive(x dynamo.State, t float64) (dynamo.State, error) {
	return derive(s, x)
}

func (s *Pendulum) Accelerations(x dynamo.State) ([]float64, error) {
	return []float64{-(s.p.G / s.p.L1) * math.Sin(x[0])}, nil
}

func (s *Pendulum) Positions(x dynamo.State) []Point {
	return []Point{{
		X: s.p.Origin.X + s.p.L1*math.Sin(x[0]),
		Y: s.p.Origin.Y + s.p.L1*math.Cos(x[0]),
	}}
}

func (s *Pendulum) Kinetic(x dynamo.State) float64 {
	v := s.p.L1 * x[1]
	return 0.5 * s.p.M1 * v * v
}

func (s *Pendulum) Potential(x dynamo.State) float64 {
	bob := s.Positions(x)[0]
	raw := s.p.M1 * s.p.G * (s.p.Origin.Y - bob.Y)
	rest := s.Positions(dynamo.State{0, 0})[0]
	offset := s.p.M1 * s.p.G * (s.p.Origin.Y - rest.Y)
	return raw - offset
}

func (s *Pendulum) Energy(x dynamo.State) float64 {
	return s.Kinetic(x) + s.Potential(x)
}
