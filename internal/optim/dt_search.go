package optim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/pendsim/internal/dynamo"
	"github.com/san-kum/pendsim/internal/integrators"
	"github.com/san-kum/pendsim/internal/metrics"
	"github.com/san-kum/pendsim/internal/physics"
	"github.com/san-kum/pendsim/internal/sim"
)

// DtSearch finds, per integrator, the largest step size that keeps the
// energy drift over a fixed horizon under a budget.
type DtSearch struct {
	Base  sim.Config
	Kinds []integrators.Kind
	// Dts are the candidate step sizes, tried largest first.
	Dts     []float64
	Horizon float64
	// Budget bounds the maximum relative energy deviation over the run.
	Budget float64
	Limit  int
}

// DtChoice is the result for one integrator. Found is false when no
// candidate met the budget; Dt and Drift then describe the smallest one
// tried.
type DtChoice struct {
	Kind  integrators.Kind
	Dt    float64
	Drift float64
	Found bool
	Err   error
}

func (d *DtSearch) validate() error {
	if len(d.Kinds) == 0 || len(d.Dts) == 0 {
		return fmt.Errorf("%w: dt search needs integrators and step sizes", dynamo.ErrInvalidParameter)
	}
	if !(d.Horizon > 0) || !(d.Budget > 0) {
		return fmt.Errorf("%w: horizon and budget must be positive", dynamo.ErrInvalidParameter)
	}
	for _, dt := range d.Dts {
		if !(dt > 0) || math.IsInf(dt, 0) {
			return fmt.Errorf("%w: step size %g", dynamo.ErrInvalidParameter, dt)
		}
	}
	return nil
}

// Run evaluates every candidate step size; integrators for one dt run as an
// ensemble.
func (d *DtSearch) Run(ctx context.Context) ([]DtChoice, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	model, err := physics.New(d.Base.Variant, d.Base.Params)
	if err != nil {
		return nil, err
	}

	dts := append([]float64(nil), d.Dts...)
	sort.Sort(sort.Reverse(sort.Float64Slice(dts)))

	choices := make([]DtChoice, len(d.Kinds))
	for i, k := range d.Kinds {
		choices[i].Kind = k
	}

	for _, dt := range dts {
		pending := make([]int, 0, len(d.Kinds))
		for i := range choices {
			if !choices[i].Found {
				pending = append(pending, i)
			}
		}
		if len(pending) == 0 {
			break
		}

		configs := make([]sim.Config, len(pending))
		for j, i := range pending {
			c := d.Base
			c.Integrator = choices[i].Kind
			c.Dt = dt
			configs[j] = c
		}
		ens := &sim.Ensemble{
			Configs:     configs,
			Steps:       int(math.Ceil(d.Horizon/dt - 1e-9)),
			Limit:       d.Limit,
			RecordEvery: 1 << 30,
			KeepGoing:   true,
			Metrics: func(int) []dynamo.Metric {
				return []dynamo.Metric{metrics.NewEnergyDrift(model)}
			},
		}
		outcomes, err := ens.Run(ctx)
		if err != nil {
			return choices, err
		}

		for j, i := range pending {
			o := outcomes[j]
			c := &choices[i]
			c.Dt, c.Err = dt, o.Err
			c.Drift = math.Inf(1)
			if o.Result != nil && o.Err == nil {
				c.Drift = o.Result.Metrics["energy_drift"]
			}
			c.Found = o.Err == nil && c.Drift <= d.Budget
		}
	}
	return choices, nil
}
