package analysis

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/pendsim/internal/dynamo"
	"github.com/san-kum/pendsim/internal/integrators"
	"github.com/san-kum/pendsim/internal/physics"
	"github.com/san-kum/pendsim/internal/sim"
)

func sampled(n int, dt float64, f func(t float64) float64) (times, values []float64) {
	times = make([]float64, n)
	values = make([]float64, n)
	for i := range times {
		times[i] = float64(i) * dt
		values[i] = f(times[i])
	}
	return times, values
}

func TestPeriodOfSine(t *testing.T) {
	times, values := sampled(1000, 0.01, func(t float64) float64 { return math.Sin(2 * math.Pi * t / 1.7) })

	got, err := Period(times, values)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-1.7) > 1e-3 {
		t.Errorf("period = %f, want 1.7", got)
	}
}

func TestZeroCrossingsInterpolate(t *testing.T) {
	c := ZeroCrossings([]float64{0, 1, 2}, []float64{-1, 3, 4})
	if len(c) != 1 || c[0] != 0.25 {
		t.Errorf("crossings = %v, want [0.25]", c)
	}
}

func TestPeriodTooFewCrossings(t *testing.T) {
	if _, err := Period([]float64{0, 1}, []float64{1, 2}); err == nil {
		t.Error("expected an error for a monotone series")
	}
}

func TestDominantFrequency(t *testing.T) {
	const dt = 0.01
	_, values := sampled(1024, dt, func(t float64) float64 { return 0.3 + math.Cos(2*math.Pi*2*t) })

	got := DominantFrequency(values, dt)
	resolution := 1 / (1024 * dt)
	if math.Abs(got-2) > resolution {
		t.Errorf("dominant frequency = %f, want 2 ± %f", got, resolution)
	}
}

func TestPowerSpectrumLength(t *testing.T) {
	ps := PowerSpectrum(make([]float64, 64))
	if len(ps) != 33 {
		t.Errorf("spectrum has %d bins, want 33", len(ps))
	}
	if PowerSpectrum(nil) != nil {
		t.Error("empty input should give an empty spectrum")
	}
}

func TestLyapunovEstimate(t *testing.T) {
	times, dist := sampled(200, 0.05, func(t float64) float64 { return 1e-6 * math.Exp(0.8*t) })

	if got := LyapunovEstimate(times, dist, 0); math.Abs(got-0.8) > 1e-9 {
		t.Errorf("slope = %f, want 0.8", got)
	}
	// Saturation cuts the fit short but keeps the slope.
	if got := LyapunovEstimate(times, dist, 1e-4); math.Abs(got-0.8) > 1e-9 {
		t.Errorf("saturated slope = %f, want 0.8", got)
	}
	if got := LyapunovEstimate(nil, nil, 0); got != 0 {
		t.Errorf("empty estimate = %f", got)
	}
}

func result(states ...dynamo.State) *sim.Result {
	res := &sim.Result{}
	for i, x := range states {
		res.Times = append(res.Times, float64(i))
		res.States = append(res.States, x)
		res.Positions = append(res.Positions, []physics.Point{{X: x[0], Y: x[1]}})
	}
	return res
}

func TestDivergenceSeries(t *testing.T) {
	a := result(dynamo.State{0, 0}, dynamo.State{1, 1})
	b := result(dynamo.State{3, 4}, dynamo.State{1, 1}, dynamo.State{9, 9})

	got := DivergenceSeries(a, b, 0)
	if len(got) != 2 || got[0] != 5 || got[1] != 0 {
		t.Errorf("divergence = %v, want [5 0]", got)
	}
}

func TestPhasePortraitSkip(t *testing.T) {
	res := result(dynamo.State{0, 1}, dynamo.State{1, 2}, dynamo.State{2, 3}, dynamo.State{3, 4}, dynamo.State{4, 5})

	p := PhasePortrait(res, 0, 1, 2)
	if p == nil || len(p.Points) != 3 {
		t.Fatalf("portrait = %+v, want 3 points", p)
	}
	if p.Points[2] != (Point2{X: 4, Y: 5}) {
		t.Errorf("last point = %+v", p.Points[2])
	}
	if PhasePortrait(res, 0, 7, 1) != nil {
		t.Error("out of range index should give nil")
	}
}

func TestPhasePortraitToASCII(t *testing.T) {
	res := result(dynamo.State{-1, -1}, dynamo.State{1, 1})
	out := PhasePortraitToASCII(PhasePortrait(res, 0, 1, 1), 20, 10)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 10 {
		t.Fatalf("got %d rows, want 10", len(lines))
	}
	if strings.Count(out, "•") != 2 {
		t.Errorf("expected two plotted points:\n%s", out)
	}
	if !strings.Contains(out, "│") || !strings.Contains(out, "─") {
		t.Errorf("expected both axes:\n%s", out)
	}
	if PhasePortraitToASCII(nil, 10, 10) != "" {
		t.Error("nil portrait should render empty")
	}
}

func TestPoincareSection(t *testing.T) {
	res := result(dynamo.State{-1, 0}, dynamo.State{1, 4}, dynamo.State{-1, 0})

	sec := PoincareSection(res, 0, 0, 0, 1)
	if len(sec.Points) != 1 {
		t.Fatalf("got %d crossings, want 1", len(sec.Points))
	}
	if sec.Points[0] != (Point2{X: 0, Y: 2}) {
		t.Errorf("crossing at %+v, want (0, 2)", sec.Points[0])
	}
}

func TestAmplitudeSweepPeriodGrows(t *testing.T) {
	base := sim.Config{
		Variant:    physics.Simple,
		Params:     physics.DefaultParams(),
		Integrator: integrators.KindRK4,
		Dt:         0.01,
	}
	points, err := AmplitudeSweep(context.Background(), base, 0.1, 2.5, 3, 2000)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 3 {
		t.Fatalf("got %d points", len(points))
	}
	small := 2 * math.Pi * math.Sqrt(base.Params.L1/base.Params.G)
	if math.Abs(points[0].Period-small)/small > 0.01 {
		t.Errorf("small amplitude period %f, want %f", points[0].Period, small)
	}
	for i := 1; i < len(points); i++ {
		if points[i].Period <= points[i-1].Period {
			t.Errorf("period did not grow with amplitude: %+v", points)
		}
	}
}

func TestChaosStudy(t *testing.T) {
	study := ChaosStudy{
		Base: sim.Config{
			Variant:    physics.Double,
			Params:     physics.DefaultParams(),
			Integrator: integrators.KindRK4,
			Dt:         0.01,
			Initial:    dynamo.State{math.Pi / 2, math.Pi / 2, 0, 0},
		},
		Epsilon: 1e-5,
		Steps:   2000,
	}

	report, err := study.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Divergence) != 2001 {
		t.Errorf("divergence has %d samples, want 2001", len(report.Divergence))
	}
	if report.Lyapunov <= 0 {
		t.Errorf("Lyapunov estimate %f, want positive", report.Lyapunov)
	}
}
