// Package optim searches configuration space: a grid search over
// experiment parameters and a search for the largest usable step size of
// each integrator.
package optim
