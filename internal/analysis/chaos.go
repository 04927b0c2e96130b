package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/pendsim/internal/sim"
	"gonum.org/v1/gonum/stat"
)

// DivergenceSeries is the distance between the given bob of two recorded
// runs, sample by sample.
func DivergenceSeries(a, b *sim.Result, bob int) []float64 {
	n := min(len(a.Positions), len(b.Positions))
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		pa, pb := a.Positions[i][bob], b.Positions[i][bob]
		out[i] = math.Hypot(pa.X-pb.X, pa.Y-pb.Y)
	}
	return out
}

// LyapunovEstimate fits ln(distance) against time by least squares over the
// samples before the separation first reaches saturate, and returns the
// slope. Non-positive distances are skipped.
func LyapunovEstimate(times, distances []float64, saturate float64) float64 {
	var xs, ys []float64
	for i := 0; i < min(len(times), len(distances)); i++ {
		d := distances[i]
		if saturate > 0 && d >= saturate {
			break
		}
		if d <= 0 {
			continue
		}
		xs = append(xs, times[i])
		ys = append(ys, math.Log(d))
	}
	if len(xs) < 2 {
		return 0
	}
	_, slope := stat.LinearRegression(xs, ys, nil, false)
	return slope
}

// ChaosStudy follows a reference pendulum and a copy whose angles are all
// offset by Epsilon.
type ChaosStudy struct {
	Base    sim.Config
	Epsilon float64
	Steps   int
	// Bob is the bob whose separation is tracked. Zero or out of range
	// selects the last one.
	Bob int
}

type ChaosReport struct {
	Times      []float64
	Divergence []float64
	Lyapunov   float64
	Reference  *sim.Result
	Perturbed  *sim.Result
}

func (c ChaosStudy) Run(ctx context.Context) (*ChaosReport, error) {
	eps := c.Epsilon
	if eps == 0 {
		eps = 1e-5
	}
	bob := c.Bob
	if bob <= 0 || bob >= c.Base.Variant.Links() {
		bob = c.Base.Variant.Links() - 1
	}

	e := &sim.Ensemble{Configs: sim.Butterfly(c.Base, 2, eps), Steps: c.Steps, Limit: 2}
	outcomes, err := e.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("chaos study: %w", err)
	}
	ref, pert := outcomes[0].Result, outcomes[1].Result

	div := DivergenceSeries(ref, pert, bob)
	p := c.Base.Params
	reach := p.L1
	if c.Base.Variant.Links() > 1 {
		reach += p.L2
	}
	return &ChaosReport{
		Times:      ref.Times,
		Divergence: div,
		Lyapunov:   LyapunovEstimate(ref.Times, div, 0.1*reach),
		Reference:  ref,
		Perturbed:  pert,
	}, nil
}
