// Package dynamo provides the primitives shared by the pendulum core:
//
//   - [State]: generalized coordinates followed by their velocities
//   - [System]: autonomous ODE in first order form (dX/dt = f(X))
//   - [Integrator]: fixed-step integrator contract
//   - [StepError] and the sentinel errors [ErrInvalidParameter],
//     [ErrConvergenceFailure] and [ErrNumericFailure]
//
// # Example
//
//	dyn, _ := physics.New(physics.Double, params)
//	integ, _ := integrators.New(integrators.KindGaussLegendre, solver.Options{})
//	next, err := integ.Step(dyn, x, t, dt)
//	if errors.Is(err, dynamo.ErrConvergenceFailure) {
//	    // retry with a smaller dt
//	}
//
// Nothing in this package holds global state; values are safe to use from
// several goroutines as long as each goroutine owns its own State.
package dynamo
