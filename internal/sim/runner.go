package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/pendsim/internal/dynamo"
	"github.com/san-kum/pendsim/internal/physics"
)

// Result is a recorded trajectory. Index 0 is the state before the first
// step.
type Result struct {
	Times     []float64
	States    []dynamo.State
	Energies  []physics.Energy
	Positions [][]physics.Point
	Metrics   map[string]float64

	StepsTaken int
	// EnergyDrift is |E_final - E_0| / |E_0|, or the absolute change when
	// E_0 is zero.
	EnergyDrift float64
}

func (r *Result) Final() dynamo.State {
	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}

// Runner drives a Simulation for a fixed number of steps, recording the
// trajectory and feeding metrics and observers.
type Runner struct {
	metrics   []dynamo.Metric
	observers []dynamo.Observer

	// RecordEvery keeps one sample out of every RecordEvery steps. The
	// initial and final states are always kept.
	RecordEvery int
}

func NewRunner() *Runner {
	return &Runner{RecordEvery: 1}
}

func (r *Runner) AddMetric(m dynamo.Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o dynamo.Observer) { r.observers = append(r.observers, o) }

// Run is a shorthand for a Runner with only observers.
func Run(ctx context.Context, s *Simulation, steps int, observers ...dynamo.Observer) (*Result, error) {
	r := NewRunner()
	for _, o := range observers {
		r.AddObserver(o)
	}
	return r.Run(ctx, s, steps)
}

// Run advances s by steps steps. On a step error or cancellation the result
// recorded so far is returned along with the error.
func (r *Runner) Run(ctx context.Context, s *Simulation, steps int) (*Result, error) {
	if steps < 0 {
		return nil, fmt.Errorf("%w: steps must be non-negative, got %d", dynamo.ErrInvalidParameter, steps)
	}
	every := r.RecordEvery
	if every <= 0 {
		every = 1
	}

	capacity := steps/every + 2
	result := &Result{
		Times:     make([]float64, 0, capacity),
		States:    make([]dynamo.State, 0, capacity),
		Energies:  make([]physics.Energy, 0, capacity),
		Positions: make([][]physics.Point, 0, capacity),
		Metrics:   make(map[string]float64),
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	x := s.State()
	r.observe(x, s.Time())
	record(result, s)
	e0 := s.Energy().Total
	lastRecorded := 0

	var runErr error
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		default:
		}
		if runErr != nil {
			break
		}

		if err := s.Step(); err != nil {
			runErr = err
			break
		}
		result.StepsTaken++

		x = s.State()
		r.observe(x, s.Time())
		if result.StepsTaken%every == 0 {
			record(result, s)
			lastRecorded = result.StepsTaken
		}
	}
	if lastRecorded != result.StepsTaken {
		record(result, s)
	}

	e1 := s.Energy().Total
	if e0 != 0 {
		result.EnergyDrift = math.Abs(e1-e0) / math.Abs(e0)
	} else {
		result.EnergyDrift = math.Abs(e1 - e0)
	}
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, runErr
}

func (r *Runner) observe(x dynamo.State, t float64) {
	for _, m := range r.metrics {
		m.Observe(x, t)
	}
	for _, o := range r.observers {
		o.OnStep(x, t)
	}
}

func record(result *Result, s *Simulation) {
	result.Times = append(result.Times, s.Time())
	result.States = append(result.States, s.State())
	result.Energies = append(result.Energies, s.Energy())
	result.Positions = append(result.Positions, s.Positions())
}
