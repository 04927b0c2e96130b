package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/pendsim/internal/dynamo"
	"github.com/san-kum/pendsim/internal/integrators"
	"github.com/san-kum/pendsim/internal/physics"
	"github.com/san-kum/pendsim/internal/solver"
)

// Config is everything a Simulation is built from. Nothing in it can be
// changed afterwards; build a new Simulation instead.
type Config struct {
	Variant    physics.Variant
	Params     physics.Params
	Integrator integrators.Kind
	Dt         float64
	// Initial is [θ..., ω...]. Nil starts at rest in the hanging position.
	Initial dynamo.State
	Solver  solver.Options
}

// DefaultConfig is a double pendulum released from the horizontal, advanced
// with RK4.
func DefaultConfig() Config {
	return Config{
		Variant:    physics.Double,
		Params:     physics.DefaultParams(),
		Integrator: integrators.KindRK4,
		Dt:         0.01,
		Initial:    dynamo.State{math.Pi / 2, math.Pi / 2, 0, 0},
	}
}

func (c Config) Validate() error {
	if err := c.Params.Validate(c.Variant); err != nil {
		return err
	}
	if math.IsNaN(c.Dt) || math.IsInf(c.Dt, 0) || c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive and finite, got %g", dynamo.ErrInvalidParameter, c.Dt)
	}
	if c.Initial != nil {
		if len(c.Initial) != c.Variant.StateDim() {
			return fmt.Errorf("%w: %s needs %d initial values, got %d",
				dynamo.ErrInvalidParameter, c.Variant, c.Variant.StateDim(), len(c.Initial))
		}
		if !c.Initial.IsValid() {
			return fmt.Errorf("%w: initial state must be finite, got %v", dynamo.ErrInvalidParameter, c.Initial)
		}
	}
	return nil
}

// Simulation owns one pendulum state and advances it with a fixed step.
// It is not safe for concurrent use; independent simulations share nothing.
type Simulation struct {
	model physics.Model
	integ dynamo.Integrator
	kind  integrators.Kind
	dt    float64

	x     dynamo.State
	t     float64
	steps int
	mode  Mode

	lastIterations int
}

func New(cfg Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	model, err := physics.New(cfg.Variant, cfg.Params)
	if err != nil {
		return nil, err
	}
	integ, err := integrators.New(cfg.Integrator, cfg.Solver)
	if err != nil {
		return nil, err
	}

	x := make(dynamo.State, cfg.Variant.StateDim())
	copy(x, cfg.Initial)

	return &Simulation{
		model: model,
		integ: integ,
		kind:  cfg.Integrator,
		dt:    cfg.Dt,
		x:     x,
		mode:  Integrating,
	}, nil
}

// Step advances the state by dt. It does nothing while the pendulum is
// manually positioned. A failed step leaves the state untouched and returns
// a *dynamo.StepError.
func (s *Simulation) Step() error {
	if s.mode == ManuallyPositioned {
		return nil
	}

	var (
		next  dynamo.State
		iters int
		err   error
	)
	if gl, ok := s.integ.(*integrators.GaussLegendreRK); ok {
		next, iters, err = gl.Advance(s.model, s.x, s.t, s.dt)
	} else {
		next, err = s.integ.Step(s.model, s.x, s.t, s.dt)
	}
	if err != nil {
		return &dynamo.StepError{Step: s.steps, Time: s.t, State: s.x.Clone(), Wrapped: err}
	}

	s.x = next
	s.steps++
	s.t = float64(s.steps) * s.dt
	s.lastIterations = iters
	return nil
}

// Positions returns the Cartesian position of each bob, recomputed from the
// current state.
func (s *Simulation) Positions() []physics.Point {
	return s.model.Positions(s.x)
}

func (s *Simulation) Energy() physics.Energy {
	return physics.EnergyOf(s.model, s.x)
}

// State returns a copy of the current state.
func (s *Simulation) State() dynamo.State { return s.x.Clone() }

func (s *Simulation) Time() float64            { return s.t }
func (s *Simulation) Steps() int               { return s.steps }
func (s *Simulation) Mode() Mode               { return s.mode }
func (s *Simulation) Dt() float64              { return s.dt }
func (s *Simulation) Kind() integrators.Kind   { return s.kind }
func (s *Simulation) Variant() physics.Variant { return s.model.Variant() }
func (s *Simulation) Params() physics.Params   { return s.model.Params() }
func (s *Simulation) Links() int               { return s.model.Variant().Links() }

// SolverIterations is the Newton iteration count of the last accepted
// Gauss-Legendre step, zero for explicit schemes.
func (s *Simulation) SolverIterations() int { return s.lastIterations }
