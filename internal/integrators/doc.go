// Package integrators provides the fixed-step schemes used to advance a
// pendulum state: semi-implicit Euler, leapfrog, classical RK4 and the
// implicit two-stage Gauss-Legendre method.
package integrators
