package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/pendsim/internal/config"
	"github.com/san-kum/pendsim/internal/dynamo"
	"github.com/san-kum/pendsim/internal/experiment"
	"github.com/san-kum/pendsim/internal/metrics"
	"github.com/san-kum/pendsim/internal/sim"
	"github.com/san-kum/pendsim/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario is a batch of runs read from yaml.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run. Preset, written "model/preset", gives the
// starting config; every other non-zero field overrides it.
type ScenarioStep struct {
	Name       string             `yaml:"name"`
	Preset     string             `yaml:"preset"`
	Model      string             `yaml:"model"`
	Integrator string             `yaml:"integrator"`
	Duration   float64            `yaml:"duration"`
	Dt         float64            `yaml:"dt"`
	InitState  []float64          `yaml:"init_state"`
	Params     map[string]float64 `yaml:"params"`
	Metrics    []string           `yaml:"metrics"`
	Save       bool               `yaml:"save"`
	// Sweep or MonteCarlo turn the step into a study of the resolved config
	// instead of a single run. At most one may be set.
	Sweep      *SweepSpec      `yaml:"sweep"`
	MonteCarlo *MonteCarloSpec `yaml:"monte_carlo"`
}

// SweepSpec varies one parameter (see SetParam) over [From, To].
type SweepSpec struct {
	Param  string  `yaml:"param"`
	From   float64 `yaml:"from"`
	To     float64 `yaml:"to"`
	Points int     `yaml:"points"`
}

// MonteCarloSpec perturbs the initial state Trials times.
type MonteCarloSpec struct {
	Perturbation float64 `yaml:"perturbation"`
	Trials       int     `yaml:"trials"`
	Seed         int64   `yaml:"seed"`
}

// StepResult is the outcome of one scenario step.
type StepResult struct {
	Name       string
	Config     *config.Config
	Result     *sim.Result
	RunID      string
	Sweep      []SweepResult
	MonteCarlo []MonteCarloResult
	Err        error
}

// Runner executes scenarios. Store may be nil, in which case nothing is
// saved even when a step asks for it.
type Runner struct {
	Registry *experiment.Registry
	Store    *storage.Store
	Logger   *log.Logger
	// KeepGoing records a failing step and moves on instead of stopping.
	KeepGoing bool
}

func NewRunner(store *storage.Store, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Registry: experiment.NewRegistry(), Store: store, Logger: logger}
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%w: scenario %q has no steps", dynamo.ErrInvalidParameter, scenario.Name)
	}
	return &scenario, nil
}

// Config resolves the step into a full config.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		model, preset, ok := strings.Cut(s.Preset, "/")
		if !ok {
			return nil, fmt.Errorf("%w: preset %q is not model/preset", dynamo.ErrInvalidParameter, s.Preset)
		}
		cfg = config.GetPreset(model, preset)
		if cfg == nil {
			return nil, fmt.Errorf("%w: unknown preset %q", dynamo.ErrInvalidParameter, s.Preset)
		}
	}
	if s.Model != "" {
		cfg.Model = s.Model
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.Dt > 0 {
		cfg.Dt = s.Dt
	}
	if err := applyInitState(cfg, s.InitState); err != nil {
		return nil, err
	}
	for k, v := range s.Params {
		if err := SetParam(cfg, k, v); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

func applyInitState(cfg *config.Config, x []float64) error {
	switch len(x) {
	case 0:
	case 2:
		cfg.InitState = config.InitStateConfig{Theta: x[0], Omega: x[1]}
	case 4:
		cfg.InitState = config.InitStateConfig{Theta: x[0], Theta2: x[1], Omega: x[2], Omega2: x[3]}
	default:
		return fmt.Errorf("%w: init_state needs 2 or 4 values, got %d", dynamo.ErrInvalidParameter, len(x))
	}
	return nil
}

// SetParam sets a physical constant of cfg by its yaml name.
func SetParam(cfg *config.Config, name string, v float64) error {
	switch name {
	case "l1":
		cfg.L1 = v
	case "l2":
		cfg.L2 = v
	case "m1":
		cfg.M1 = v
	case "m2":
		cfg.M2 = v
	case "g", "gravity":
		cfg.Gravity = v
	case "dt":
		cfg.Dt = v
	case "theta":
		cfg.InitState.Theta = v
	case "theta2":
		cfg.InitState.Theta2 = v
	case "omega":
		cfg.InitState.Omega = v
	case "omega2":
		cfg.InitState.Omega2 = v
	default:
		return fmt.Errorf("%w: unknown parameter %q", dynamo.ErrInvalidParameter, name)
	}
	return nil
}

// RunScenario executes the steps in order.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))
	logger := r.Logger.With("scenario", scenario.Name)

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step%d", i+1)
		}
		logger.Info("running step", "n", i+1, "of", len(scenario.Steps), "name", name)

		sr := r.runStep(ctx, name, step)
		results = append(results, sr)
		if sr.Err != nil {
			logger.Error("step failed", "name", name, "err", sr.Err)
			if !r.KeepGoing || ctx.Err() != nil {
				return results, fmt.Errorf("step %d: %w", i+1, sr.Err)
			}
			continue
		}
		switch {
		case sr.Sweep != nil:
			logger.Info("sweep done", "name", name, "points", len(sr.Sweep))
		case sr.MonteCarlo != nil:
			stable, unstable := MonteCarloStats(sr.MonteCarlo)
			logger.Info("monte carlo done", "name", name, "stable", stable, "unstable", unstable)
		default:
			logger.Info("step done", "name", name, "steps", sr.Result.StepsTaken,
				"drift", fmt.Sprintf("%.3e", sr.Result.EnergyDrift), "run", sr.RunID)
		}
	}

	return results, nil
}

func (r *Runner) runStep(ctx context.Context, name string, step ScenarioStep) StepResult {
	sr := StepResult{Name: name}
	cfg, err := step.Config()
	if err != nil {
		sr.Err = err
		return sr
	}
	sr.Config = cfg

	switch {
	case step.Sweep != nil && step.MonteCarlo != nil:
		sr.Err = fmt.Errorf("%w: step %q sets both sweep and monte_carlo", dynamo.ErrInvalidParameter, name)
		return sr
	case step.Sweep != nil:
		sr.Sweep, sr.Err = r.RunSweep(ctx, &ParameterSweep{
			Base:      cfg,
			ParamName: step.Sweep.Param,
			ParamMin:  step.Sweep.From,
			ParamMax:  step.Sweep.To,
			NumSteps:  step.Sweep.Points,
		})
		return sr
	case step.MonteCarlo != nil:
		sr.MonteCarlo, sr.Err = r.RunMonteCarlo(ctx, &MonteCarloConfig{
			Base:         cfg,
			Perturbation: step.MonteCarlo.Perturbation,
			NumTrials:    step.MonteCarlo.Trials,
			Seed:         step.MonteCarlo.Seed,
		})
		return sr
	}

	exp, err := experiment.New(cfg, r.Registry, step.Metrics...)
	if err != nil {
		sr.Err = err
		return sr
	}
	res, runErr := exp.Run(ctx)
	sr.Result = res

	if step.Save && r.Store != nil && res != nil {
		id, err := r.Store.Save(storage.NewMetadata(exp.SimConfig(), res, runErr), res)
		if err != nil {
			r.Logger.Warn("could not save run", "name", name, "err", err)
		}
		sr.RunID = id
	}
	sr.Err = runErr
	return sr
}

// ParameterSweep varies one parameter of a base config over a linear range.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

type SweepResult struct {
	ParamValue float64
	FinalState dynamo.State
	MaxEnergy  float64
	MinEnergy  float64
	Flips      float64
	Err        error
}

// RunSweep runs every point of the sweep concurrently.
func (r *Runner) RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("%w: sweep needs at least one point", dynamo.ErrInvalidParameter)
	}
	values := make([]float64, sweep.NumSteps)
	configs := make([]sim.Config, sweep.NumSteps)
	for i := range values {
		values[i] = sweep.ParamMin
		if sweep.NumSteps > 1 {
			values[i] += float64(i) * (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
		}
		cfg := sweep.Base.Clone()
		if err := SetParam(cfg, sweep.ParamName, values[i]); err != nil {
			return nil, err
		}
		sc, err := cfg.SimConfig()
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.ParamName, values[i], err)
		}
		configs[i] = sc
	}

	ens := &sim.Ensemble{
		Configs:   configs,
		Steps:     sweep.Base.Steps(),
		KeepGoing: true,
		Metrics: func(i int) []dynamo.Metric {
			ms := make([]dynamo.Metric, configs[i].Variant.Links())
			for l := range ms {
				ms[l] = metrics.NewFlips(l)
			}
			return ms
		},
	}
	outcomes, err := ens.Run(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, len(outcomes))
	for i, o := range outcomes {
		sr := SweepResult{ParamValue: values[i], Err: o.Err}
		if o.Result != nil && len(o.Result.Energies) > 0 {
			sr.FinalState = o.Result.Final()
			sr.MinEnergy, sr.MaxEnergy = math.Inf(1), math.Inf(-1)
			for _, e := range o.Result.Energies {
				sr.MinEnergy = math.Min(sr.MinEnergy, e.Total)
				sr.MaxEnergy = math.Max(sr.MaxEnergy, e.Total)
			}
			for name, v := range o.Result.Metrics {
				if strings.HasPrefix(name, "flips") {
					sr.Flips += v
				}
			}
		}
		results[i] = sr
		r.Logger.Debug("sweep point", sweep.ParamName, values[i], "flips", sr.Flips)
	}
	return results, nil
}

// MonteCarloConfig perturbs every initial value of Base uniformly within
// ±Perturbation.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Seed         int64
}

type MonteCarloResult struct {
	TrialID    int
	InitState  dynamo.State
	FinalState dynamo.State
	Drift      float64
	// Stable is false when the run hit a step error.
	Stable bool
}

func (r *Runner) RunMonteCarlo(ctx context.Context, mc *MonteCarloConfig) ([]MonteCarloResult, error) {
	if mc.NumTrials < 1 {
		return nil, fmt.Errorf("%w: monte carlo needs at least one trial", dynamo.ErrInvalidParameter)
	}
	if math.IsNaN(mc.Perturbation) || mc.Perturbation < 0 {
		return nil, fmt.Errorf("%w: perturbation must be non-negative, got %g", dynamo.ErrInvalidParameter, mc.Perturbation)
	}
	base, err := mc.Base.SimConfig()
	if err != nil {
		return nil, err
	}
	seed := mc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	configs := make([]sim.Config, mc.NumTrials)
	for i := range configs {
		c := base
		c.Initial = base.Initial.Clone()
		for j := range c.Initial {
			c.Initial[j] += (rng.Float64() - 0.5) * 2 * mc.Perturbation
		}
		configs[i] = c
	}

	ens := &sim.Ensemble{Configs: configs, Steps: mc.Base.Steps(), KeepGoing: true}
	outcomes, err := ens.Run(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(outcomes))
	for i, o := range outcomes {
		results[i] = MonteCarloResult{
			TrialID:   i,
			InitState: configs[i].Initial,
			Stable:    o.Err == nil,
		}
		if o.Result != nil {
			results[i].FinalState = o.Result.Final()
			results[i].Drift = o.Result.EnergyDrift
		}
		if (i+1)%10 == 0 {
			r.Logger.Debug("monte carlo", "done", i+1, "of", mc.NumTrials)
		}
	}
	return results, nil
}

func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
