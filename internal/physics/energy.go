package physics

import "github.com/san-kum/pendsim/internal/dynamo"

// Energy is a snapshot of the mechanical energy of a state.
type Energy struct {
	Kinetic   float64 `json:"kinetic"`
	Potential float64 `json:"potential"`
	Total     float64 `json:"total"`
}

// EnergyOf evaluates kinetic, potential and total energy of x under m.
// It is instrumentation only; no integrator reads it.
func EnergyOf(m Model, x dynamo.State) Energy {
	ke, pe := m.Kinetic(x), m.Potential(x)
	return Energy{Kinetic: ke, Potential: pe, Total: ke + pe}
}
