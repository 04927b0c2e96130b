package dynamo

import "math"

// State holds generalized coordinates followed by their velocities:
// [θ, ω] for one link, [θ1, θ2, ω1, ω2] for two.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// IsValid reports whether every component is finite.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// Links returns the number of generalized coordinates.
func (s State) Links() int { return len(s) / 2 }

// Angles returns the coordinate half of the state.
func (s State) Angles() []float64 { return s[:len(s)/2] }

// Velocities returns the velocity half of the state.
func (s State) Velocities() []float64 { return s[len(s)/2:] }

// System is an autonomous second-order mechanical system written in first
// order form. Derive returns dx/dt = (ω..., α...).
type System interface {
	Derive(x State, t float64) (State, error)
	StateDim() int
}

// Hamiltonian systems expose their total mechanical energy.
type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Step(sys System, x State, t, dt float64) (State, error)
}

type Observer interface {
	OnStep(x State, t float64)
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}
