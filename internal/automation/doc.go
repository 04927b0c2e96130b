// Package automation runs batches of simulations: yaml scenarios,
// parameter sweeps and Monte Carlo perturbations of a starting state.
package automation
