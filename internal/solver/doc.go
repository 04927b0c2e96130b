// Package solver provides the bounded Newton-Raphson iteration used by the
// implicit integrators to solve their stage equations.
package solver
