package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/pendsim/internal/config"
	"github.com/san-kum/pendsim/internal/dynamo"
	"github.com/san-kum/pendsim/internal/experiment"
	"github.com/san-kum/pendsim/internal/integrators"
	"github.com/san-kum/pendsim/internal/sim"
)

func gentle(t *testing.T) sim.Config {
	t.Helper()
	cfg, err := config.GetPreset("double_pendulum", "gentle").SimConfig()
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestDtSearchPrefersHigherOrder(t *testing.T) {
	search := &DtSearch{
		Base:    gentle(t),
		Kinds:   []integrators.Kind{integrators.KindEuler, integrators.KindGaussLegendre},
		Dts:     []float64{0.01, 0.2, 0.05, 0.1, 0.02},
		Horizon: 5,
		Budget:  1e-3,
	}
	choices, err := search.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	euler, gl := choices[0], choices[1]
	if euler.Kind != integrators.KindEuler || gl.Kind != integrators.KindGaussLegendre {
		t.Fatalf("choices out of order: %+v", choices)
	}
	if !gl.Found {
		t.Fatalf("gauss-legendre found no dt: %+v", gl)
	}
	if gl.Drift > search.Budget {
		t.Errorf("chosen drift %g over budget", gl.Drift)
	}
	if euler.Found && euler.Dt >= gl.Dt {
		t.Errorf("euler dt %g should be below gauss-legendre dt %g", euler.Dt, gl.Dt)
	}
}

func TestDtSearchImpossibleBudget(t *testing.T) {
	search := &DtSearch{
		Base:    gentle(t),
		Kinds:   []integrators.Kind{integrators.KindRK4},
		Dts:     []float64{0.1, 0.05},
		Horizon: 2,
		Budget:  1e-300,
	}
	choices, err := search.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if choices[0].Found {
		t.Errorf("nothing should meet the budget: %+v", choices[0])
	}
	if choices[0].Dt != 0.05 {
		t.Errorf("unfound choice should report the smallest dt, got %g", choices[0].Dt)
	}
}

func TestDtSearchValidates(t *testing.T) {
	base := gentle(t)
	bad := []*DtSearch{
		{Base: base, Dts: []float64{0.1}, Horizon: 1, Budget: 1},
		{Base: base, Kinds: []integrators.Kind{integrators.KindRK4}, Horizon: 1, Budget: 1},
		{Base: base, Kinds: []integrators.Kind{integrators.KindRK4}, Dts: []float64{-0.1}, Horizon: 1, Budget: 1},
		{Base: base, Kinds: []integrators.Kind{integrators.KindRK4}, Dts: []float64{0.1}, Horizon: 0, Budget: 1},
		{Base: base, Kinds: []integrators.Kind{integrators.KindRK4}, Dts: []float64{0.1}, Horizon: 1, Budget: math.NaN()},
	}
	for i, s := range bad {
		if _, err := s.Run(context.Background()); !errors.Is(err, dynamo.ErrInvalidParameter) {
			t.Errorf("case %d: err = %v", i, err)
		}
	}
}

func eulerLarge(params map[string]float64) (*experiment.Experiment, error) {
	cfg := config.GetPreset("pendulum", "large")
	cfg.Integrator = "euler"
	cfg.Duration = 2
	cfg.Dt = params["dt"]
	return experiment.New(cfg, nil, "energy_drift")
}

func TestGridSearchFindsSmallestDrift(t *testing.T) {
	g := NewGridSearch("energy_drift", Axis{Name: "dt", Values: []float64{0.05, 0.01, 0.02}})
	candidates, best, err := g.Search(context.Background(), eulerLarge)
	if err != nil {
		t.Fatal(err)
	}
	if len(candidates) != 3 {
		t.Fatalf("got %d candidates", len(candidates))
	}
	for i, want := range []float64{0.05, 0.01, 0.02} {
		if got := candidates[i].Params["dt"]; got != want {
			t.Errorf("candidate %d dt = %g, want %g", i, got, want)
		}
	}
	if got := candidates[best].Params["dt"]; got != 0.01 {
		t.Errorf("best dt = %g (drift %g), want 0.01", got, candidates[best].Value)
	}

	g.Maximize = true
	candidates, best, err = g.Search(context.Background(), eulerLarge)
	if err != nil {
		t.Fatal(err)
	}
	if got := candidates[best].Params["dt"]; got != 0.05 {
		t.Errorf("largest drift at dt = %g, want 0.05", got)
	}
}

func TestGridSearchPoints(t *testing.T) {
	g := NewGridSearch("energy",
		Axis{Name: "l1", Values: []float64{1, 2}},
		Axis{Name: "m2", Values: []float64{3, 4, 5}},
	)
	points := g.Points()
	if len(points) != 6 {
		t.Fatalf("got %d points", len(points))
	}
	want := [][2]float64{{1, 3}, {1, 4}, {1, 5}, {2, 3}, {2, 4}, {2, 5}}
	for i, w := range want {
		if points[i]["l1"] != w[0] || points[i]["m2"] != w[1] {
			t.Errorf("point %d = %v, want l1=%g m2=%g", i, points[i], w[0], w[1])
		}
	}
}

func TestGridSearchNoCandidate(t *testing.T) {
	build := func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := config.DefaultConfig()
		cfg.L1 = params["l1"]
		return experiment.New(cfg, nil)
	}
	g := NewGridSearch("energy", Axis{Name: "l1", Values: []float64{-1, 0}})
	candidates, best, err := g.Search(context.Background(), build)
	if !errors.Is(err, ErrNoCandidate) {
		t.Errorf("err = %v", err)
	}
	if best != -1 {
		t.Errorf("best = %d", best)
	}
	for _, c := range candidates {
		if !errors.Is(c.Err, dynamo.ErrInvalidParameter) {
			t.Errorf("candidate %v: err = %v", c.Params, c.Err)
		}
	}
}

func TestGridSearchMissingMetric(t *testing.T) {
	g := NewGridSearch("angular_speed", Axis{Name: "dt", Values: []float64{0.01}})
	candidates, _, err := g.Search(context.Background(), eulerLarge)
	if !errors.Is(err, ErrNoCandidate) {
		t.Errorf("err = %v", err)
	}
	if candidates[0].Err == nil {
		t.Error("a run without the metric should not score")
	}
}

func TestGridSearchValidates(t *testing.T) {
	bad := []*GridSearch{
		NewGridSearch("", Axis{Name: "dt", Values: []float64{0.01}}),
		NewGridSearch("energy"),
		NewGridSearch("energy", Axis{Name: "dt"}),
		NewGridSearch("energy", Axis{Name: "dt", Values: []float64{0.01}}, Axis{Name: "dt", Values: []float64{0.02}}),
	}
	for i, g := range bad {
		if _, _, err := g.Search(context.Background(), eulerLarge); !errors.Is(err, dynamo.ErrInvalidParameter) {
			t.Errorf("case %d: err = %v", i, err)
		}
	}
}

func TestParseAxis(t *testing.T) {
	a, err := ParseAxis("m2 = 0.5, 1,2")
	if err != nil {
		t.Fatal(err)
	}
	if a.Name != "m2" || len(a.Values) != 3 || a.Values[0] != 0.5 || a.Values[2] != 2 {
		t.Errorf("axis = %+v", a)
	}

	for _, bad := range []string{"m2", "=1,2", "m2=", "m2=1,x"} {
		if _, err := ParseAxis(bad); !errors.Is(err, dynamo.ErrInvalidParameter) {
			t.Errorf("%q: err = %v", bad, err)
		}
	}
}
