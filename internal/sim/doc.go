// Package sim owns a pendulum simulation: its state, clock and the
// Integrating/ManuallyPositioned mode machine, plus the runner, ensemble
// and drag helpers built on top of it.
package sim
