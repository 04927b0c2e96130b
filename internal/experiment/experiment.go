package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/pendsim/internal/config"
	"github.com/san-kum/pendsim/internal/dynamo"
	"github.com/san-kum/pendsim/internal/physics"
	"github.com/san-kum/pendsim/internal/sim"
)

// Experiment is one configured run: a simulation, the metrics recorded on
// it and the number of steps to take.
type Experiment struct {
	cfg    *config.Config
	simCfg sim.Config
	model  physics.Model
	runner *sim.Runner
}

// New validates cfg and builds the experiment. Metric names are looked up
// in reg; none means the registry's defaults for the model.
func New(cfg *config.Config, reg *Registry, metricNames ...string) (*Experiment, error) {
	simCfg, err := cfg.SimConfig()
	if err != nil {
		return nil, err
	}
	model, err := physics.New(simCfg.Variant, simCfg.Params)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		reg = NewRegistry()
	}
	if len(metricNames) == 0 {
		metricNames = reg.DefaultMetrics(simCfg.Variant)
	}

	runner := sim.NewRunner()
	for _, name := range metricNames {
		m, err := reg.GetMetric(name, model)
		if err != nil {
			return nil, err
		}
		runner.AddMetric(m)
	}
	return &Experiment{cfg: cfg.Clone(), simCfg: simCfg, model: model, runner: runner}, nil
}

func (e *Experiment) Config() *config.Config        { return e.cfg }
func (e *Experiment) SimConfig() sim.Config         { return e.simCfg }
func (e *Experiment) Model() physics.Model          { return e.model }
func (e *Experiment) Runner() *sim.Runner           { return e.runner }
func (e *Experiment) AddObserver(o dynamo.Observer) { e.runner.AddObserver(o) }

// Run builds a fresh simulation and advances it over the configured
// duration. A failed step returns the partial result with the error.
func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	s, err := sim.New(e.simCfg)
	if err != nil {
		return nil, fmt.Errorf("experiment setup: %w", err)
	}
	return e.runner.Run(ctx, s, e.cfg.Steps())
}
