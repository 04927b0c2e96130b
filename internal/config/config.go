package config

import (
	"fmt"
	"math"
	"os"

	"github.com/san-kum/pendsim/internal/dynamo"
	"github.com/san-kum/pendsim/internal/integrators"
	"github.com/san-kum/pendsim/internal/physics"
	"github.com/san-kum/pendsim/internal/sim"
	"github.com/san-kum/pendsim/internal/solver"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 10.0
	DefaultTheta    = math.Pi / 2
	DefaultLength   = 1.0
	DefaultMass     = 1.0
)

type Config struct {
	Model      string          `yaml:"model"`
	Integrator string          `yaml:"integrator"`
	Dt         float64         `yaml:"dt"`
	Duration   float64         `yaml:"duration"`
	Gravity    float64         `yaml:"gravity"`
	Origin     PointConfig     `yaml:"origin"`
	L1         float64         `yaml:"l1"`
	L2         float64         `yaml:"l2"`
	M1         float64         `yaml:"m1"`
	M2         float64         `yaml:"m2"`
	InitState  InitStateConfig `yaml:"init_state"`
	Solver     SolverConfig    `yaml:"solver"`
}

type PointConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type InitStateConfig struct {
	Theta  float64 `yaml:"theta"`
	Omega  float64 `yaml:"omega"`
	Theta2 float64 `yaml:"theta2"`
	Omega2 float64 `yaml:"omega2"`
}

type SolverConfig struct {
	Tolerance float64 `yaml:"tolerance"`
	MaxIter   int     `yaml:"max_iter"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      "double_pendulum",
		Integrator: "rk4",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Gravity:    physics.DefaultGravity,
		L1:         DefaultLength,
		L2:         DefaultLength,
		M1:         DefaultMass,
		M2:         DefaultMass,
		InitState: InitStateConfig{
			Theta:  DefaultTheta,
			Theta2: DefaultTheta,
		},
		Solver: SolverConfig{
			Tolerance: solver.DefaultTolerance,
			MaxIter:   solver.DefaultMaxIter,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Steps is the number of fixed steps needed to cover Duration.
func (c *Config) Steps() int {
	if c.Dt <= 0 || c.Duration <= 0 {
		return 0
	}
	return int(math.Round(c.Duration / c.Dt))
}

// GetInitState lays the initial values out as [θ..., ω...] for the model.
func (c *Config) GetInitState() []float64 {
	if v, err := physics.ParseVariant(c.Model); err == nil && v == physics.Double {
		return []float64{c.InitState.Theta, c.InitState.Theta2, c.InitState.Omega, c.InitState.Omega2}
	}
	return []float64{c.InitState.Theta, c.InitState.Omega}
}

// SimConfig converts c into a validated simulation config.
func (c *Config) SimConfig() (sim.Config, error) {
	variant, err := physics.ParseVariant(c.Model)
	if err != nil {
		return sim.Config{}, err
	}
	kind, err := integrators.ParseKind(c.Integrator)
	if err != nil {
		return sim.Config{}, err
	}
	if math.IsNaN(c.Duration) || c.Duration < 0 {
		return sim.Config{}, fmt.Errorf("%w: duration must be non-negative, got %g", dynamo.ErrInvalidParameter, c.Duration)
	}

	out := sim.Config{
		Variant: variant,
		Params: physics.Params{
			Origin: physics.Point{X: c.Origin.X, Y: c.Origin.Y},
			L1:     c.L1, L2: c.L2,
			M1: c.M1, M2: c.M2,
			G: c.Gravity,
		},
		Integrator: kind,
		Dt:         c.Dt,
		Initial:    dynamo.State(c.GetInitState()),
		Solver: solver.Options{
			Tolerance: c.Solver.Tolerance,
			MaxIter:   c.Solver.MaxIter,
		},
	}
	if err := out.Validate(); err != nil {
		return sim.Config{}, err
	}
	if err := out.Solver.Validate(); err != nil {
		return sim.Config{}, err
	}
	return out, nil
}

func (c *Config) Validate() error {
	_, err := c.SimConfig()
	return err
}

// Clone returns an independent copy.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}
