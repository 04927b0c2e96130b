package config

import (
	"math"
	"sort"
)

var Presets = map[string]map[string]*Config{
	"pendulum": {
		"small": {
			Model: "pendulum", Integrator: "rk4", Dt: 0.01, Duration: 20.0,
			Gravity: 9.81, L1: 1, M1: 1,
			InitState: InitStateConfig{Theta: 0.2, Omega: 0.0},
		},
		"large": {
			Model: "pendulum", Integrator: "gauss_legendre", Dt: 0.01, Duration: 20.0,
			Gravity: 9.81, L1: 1, M1: 1,
			InitState: InitStateConfig{Theta: 2.5, Omega: 0.0},
		},
		"spinning": {
			Model: "pendulum", Integrator: "rk4", Dt: 0.01, Duration: 30.0,
			Gravity: 9.81, L1: 1, M1: 1,
			InitState: InitStateConfig{Theta: 0.1, Omega: 8.0},
		},
	},
	"double_pendulum": {
		"symmetric": {
			Model: "double_pendulum", Integrator: "rk4", Dt: 0.005, Duration: 30.0,
			Gravity: 9.81, L1: 1, L2: 1, M1: 1, M2: 1,
			InitState: InitStateConfig{Theta: 1.5, Theta2: 1.5},
		},
		"chaos": {
			Model: "double_pendulum", Integrator: "rk4", Dt: 0.005, Duration: 60.0,
			Gravity: 9.81, L1: 1, L2: 1, M1: 1, M2: 1,
			InitState: InitStateConfig{Theta: 3.0, Theta2: 3.0},
		},
		"gentle": {
			Model: "double_pendulum", Integrator: "leapfrog", Dt: 0.01, Duration: 30.0,
			Gravity: 9.81, L1: 1, L2: 1, M1: 1, M2: 1,
			InitState: InitStateConfig{Theta: 0.3, Theta2: 0.3},
		},
		"butterfly": {
			Model: "double_pendulum", Integrator: "rk4", Dt: 0.05, Duration: 60.0,
			Gravity: 9.81, Origin: PointConfig{X: 400, Y: 200},
			L1: 200, L2: 200, M1: 10, M2: 10,
			InitState: InitStateConfig{Theta: math.Pi / 2, Theta2: math.Pi / 2},
		},
		"reference": {
			Model: "double_pendulum", Integrator: "gauss_legendre", Dt: 0.03, Duration: 15.0,
			Gravity: 9.81, Origin: PointConfig{X: 400, Y: 200},
			L1: 200, L2: 200, M1: 5, M2: 5,
			InitState: InitStateConfig{Theta: math.Pi / 2, Theta2: math.Pi / 2},
		},
		"inverted": {
			Model: "double_pendulum", Integrator: "gauss_legendre", Dt: 0.01, Duration: 20.0,
			Gravity: 9.81, L1: 1, L2: 1, M1: 1, M2: 1,
			InitState: InitStateConfig{Theta: math.Pi, Theta2: math.Pi - 1e-3},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	out := cfg.Clone()
	if out.Solver == (SolverConfig{}) {
		out.Solver = DefaultConfig().Solver
	}
	return out
}

// ListPresets returns the preset names for model in sorted order.
func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Models lists the models that have presets, sorted.
func Models() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
