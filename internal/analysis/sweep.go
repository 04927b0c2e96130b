package analysis

import (
	"context"

	"github.com/san-kum/pendsim/internal/dynamo"
	"github.com/san-kum/pendsim/internal/sim"
)

// AmplitudePoint is the measured period of a pendulum released from rest
// at Amplitude.
type AmplitudePoint struct {
	Amplitude float64
	Period    float64
}

// AmplitudeSweep releases base from rest at n amplitudes evenly spaced in
// [from, to] and measures the period of the first angle. Runs without
// enough oscillations are left out.
func AmplitudeSweep(ctx context.Context, base sim.Config, from, to float64, n, steps int) ([]AmplitudePoint, error) {
	if n < 2 {
		n = 2
	}
	cfgs := make([]sim.Config, n)
	amps := make([]float64, n)
	for i := range cfgs {
		amps[i] = from + (to-from)*float64(i)/float64(n-1)
		cfg := base
		cfg.Initial = make(dynamo.State, base.Variant.StateDim())
		for j := 0; j < base.Variant.Links(); j++ {
			cfg.Initial[j] = amps[i]
		}
		cfgs[i] = cfg
	}

	outcomes, err := (&sim.Ensemble{Configs: cfgs, Steps: steps}).Run(ctx)
	if err != nil {
		return nil, err
	}

	points := make([]AmplitudePoint, 0, n)
	for i, o := range outcomes {
		theta := make([]float64, len(o.Result.States))
		for j, x := range o.Result.States {
			theta[j] = x[0]
		}
		period, err := Period(o.Result.Times, theta)
		if err != nil {
			continue
		}
		points = append(points, AmplitudePoint{Amplitude: amps[i], Period: period})
	}
	return points, nil
}
