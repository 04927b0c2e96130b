package sim

import (
	"context"
	"fmt"
	"runtime"

	"github.com/san-kum/pendsim/internal/dynamo"
	"github.com/san-kum/pendsim/internal/integrators"
	"golang.org/x/sync/errgroup"
)

// Ensemble runs independent simulations concurrently. Members share nothing,
// so no locking is needed beyond the result slots.
type Ensemble struct {
	Configs []Config
	Steps   int
	// Limit bounds the number of members running at once. Zero means
	// GOMAXPROCS.
	Limit       int
	RecordEvery int
	// Metrics, if set, builds fresh metrics for member i.
	Metrics func(i int) []dynamo.Metric
	// KeepGoing records member failures in their Outcome instead of
	// cancelling the rest of the ensemble.
	KeepGoing bool
}

type Outcome struct {
	Result *Result
	Err    error
}

func (e *Ensemble) Run(ctx context.Context) ([]Outcome, error) {
	outcomes := make([]Outcome, len(e.Configs))

	g, ctx := errgroup.WithContext(ctx)
	limit := e.Limit
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(limit)

	for i, cfg := range e.Configs {
		g.Go(func() error {
			s, err := New(cfg)
			if err != nil {
				return fmt.Errorf("member %d: %w", i, err)
			}
			r := NewRunner()
			r.RecordEvery = e.RecordEvery
			if e.Metrics != nil {
				for _, m := range e.Metrics(i) {
					r.AddMetric(m)
				}
			}

			res, err := r.Run(ctx, s, e.Steps)
			outcomes[i] = Outcome{Result: res, Err: err}
			if err != nil && !e.KeepGoing {
				return fmt.Errorf("member %d: %w", i, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

// Butterfly returns n copies of base whose angles are all shifted by
// i·offset for member i.
func Butterfly(base Config, n int, offset float64) []Config {
	links := base.Variant.Links()
	cfgs := make([]Config, n)
	for i := range cfgs {
		cfg := base
		x := make(dynamo.State, base.Variant.StateDim())
		copy(x, base.Initial)
		for j := 0; j < links; j++ {
			x[j] += float64(i) * offset
		}
		cfg.Initial = x
		cfgs[i] = cfg
	}
	return cfgs
}

// Sweep returns base once per integrator kind.
func Sweep(base Config, kinds ...integrators.Kind) []Config {
	cfgs := make([]Config, len(kinds))
	for i, k := range kinds {
		cfg := base
		if base.Initial != nil {
			cfg.Initial = base.Initial.Clone()
		}
		cfg.Integrator = k
		cfgs[i] = cfg
	}
	return cfgs
}
