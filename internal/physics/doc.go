// Package physics provides the pendulum dynamics models.
//
// Each model implements [dynamo.System] (the equations of motion in first
// order form) and [dynamo.Hamiltonian]:
//
//   - [Pendulum]: one point mass, ω' = -(g/l)·sin θ
//   - [DoublePendulum]: two coupled point masses, chaotic at high energy
//
// Models are selected by [Variant] through [New], which validates [Params].
// Angles are measured from the downward vertical and positions use screen
// orientation: y grows downward from the origin.
//
// # Energy
//
// Potential energy is measured against the hanging rest configuration so
// that the equilibrium has exactly zero potential energy:
//
//	m, _ := physics.New(physics.Double, params)
//	e := physics.EnergyOf(m, x)
//	fmt.Println(e.Kinetic, e.Potential, e.Total)
package physics
