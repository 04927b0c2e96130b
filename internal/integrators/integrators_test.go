package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/san-kum/pendsim/internal/dynamo"
	"github.com/san-kum/pendsim/internal/physics"
	"github.com/san-kum/pendsim/internal/solver"
)

type harmonicOscillator struct{}

func (h *harmonicOscillator) StateDim() int { return 2 }

func (h *harmonicOscillator) Derive(x dynamo.State, t float64) (dynamo.State, error) {
	return dynamo.State{x[1], -x[0]}, nil
}

func (h *harmonicOscillator) Energy(x dynamo.State) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

type failingSystem struct{}

func (f *failingSystem) StateDim() int { return 2 }

func (f *failingSystem) Derive(x dynamo.State, t float64) (dynamo.State, error) {
	return nil, dynamo.ErrNumericFailure
}

func precise() solver.Options {
	return solver.Options{Tolerance: 1e-13}
}

func mustNew(t *testing.T, k Kind, opts solver.Options) dynamo.Integrator {
	t.Helper()
	integ, err := New(k, opts)
	if err != nil {
		t.Fatal(err)
	}
	return integ
}

func integrate(t *testing.T, integ dynamo.Integrator, sys dynamo.System, x dynamo.State, dt float64, steps int) dynamo.State {
	t.Helper()
	var err error
	for i := 0; i < steps; i++ {
		x, err = integ.Step(sys, x, float64(i)*dt, dt)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	return x
}

func TestRK4Accuracy(t *testing.T) {
	dyn := &harmonicOscillator{}
	integ := NewRK4()

	dt := 0.01
	steps := 100
	x := integrate(t, integ, dyn, dynamo.State{1.0, 0.0}, dt, steps)

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-8 {
		t.Errorf("position error too large: got %.10f, expected %.10f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-8 {
		t.Errorf("velocity error too large: got %.10f, expected %.10f", x[1], expectedV)
	}
}

func TestConvergenceOrder(t *testing.T) {
	dyn := &harmonicOscillator{}
	const horizon = 1.0

	globalError := func(t *testing.T, k Kind, dt float64) float64 {
		steps := int(math.Round(horizon / dt))
		x := integrate(t, mustNew(t, k, precise()), dyn, dynamo.State{1, 0}, dt, steps)
		return math.Hypot(x[0]-math.Cos(horizon), x[1]+math.Sin(horizon))
	}

	for _, k := range Kinds() {
		t.Run(k.String(), func(t *testing.T) {
			coarse := globalError(t, k, 0.05)
			fine := globalError(t, k, 0.025)
			ratio := coarse / fine
			want := math.Pow(2, float64(k.Info().Order))
			if ratio < 0.7*want {
				t.Errorf("error ratio %.2f (coarse %g, fine %g), want about %.0f", ratio, coarse, fine, want)
			}
		})
	}
}

func TestFixedPointPreserved(t *testing.T) {
	model, err := physics.NewPendulum(physics.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}

	for _, k := range Kinds() {
		t.Run(k.String(), func(t *testing.T) {
			x := integrate(t, mustNew(t, k, solver.Options{}), model, dynamo.State{0, 0}, 0.01, 200)
			if diff := cmp.Diff(dynamo.State{0, 0}, x); diff != "" {
				t.Errorf("rest state moved (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDeterministic(t *testing.T) {
	params := physics.DefaultParams()
	model, err := physics.NewDoublePendulum(params)
	if err != nil {
		t.Fatal(err)
	}
	x0 := dynamo.State{2.0, -1.0, 0.5, 0.0}

	for _, k := range Kinds() {
		t.Run(k.String(), func(t *testing.T) {
			a := integrate(t, mustNew(t, k, solver.Options{}), model, x0.Clone(), 0.01, 300)
			b := integrate(t, mustNew(t, k, solver.Options{}), model, x0.Clone(), 0.01, 300)
			if diff := cmp.Diff(a, b); diff != "" {
				t.Errorf("trajectories differ (-first +second):\n%s", diff)
			}
		})
	}
}

func TestStepDoesNotModifyInput(t *testing.T) {
	dyn := &harmonicOscillator{}
	for _, k := range Kinds() {
		x := dynamo.State{0.3, -0.2}
		if _, err := mustNew(t, k, solver.Options{}).Step(dyn, x, 0, 0.1); err != nil {
			t.Fatal(err)
		}
		if x[0] != 0.3 || x[1] != -0.2 {
			t.Errorf("%s modified its input to %v", k, x)
		}
	}
}

func TestSemiImplicitEulerOrdering(t *testing.T) {
	dyn := &harmonicOscillator{}
	x, err := NewEuler().Step(dyn, dynamo.State{1, 0}, 0, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	// v' = 0 - 0.1·1; θ' = 1 + 0.1·v'.
	if math.Abs(x[1]+0.1) > 1e-15 || math.Abs(x[0]-0.99) > 1e-15 {
		t.Errorf("got %v, want [0.99 -0.1]", x)
	}
}

func TestGaussLegendreConservesQuadraticEnergy(t *testing.T) {
	dyn := &harmonicOscillator{}
	integ := NewGaussLegendre(solver.Options{Tolerance: 1e-12})

	x := dynamo.State{1, 0}
	e0 := dyn.Energy(x)
	x = integrate(t, integ, dyn, x, 0.1, 1000)

	if drift := math.Abs(dyn.Energy(x) - e0); drift > 1e-8 {
		t.Errorf("energy drift %g, want ~0", drift)
	}
}

func TestGaussLegendreTableau(t *testing.T) {
	if math.Abs(glA11+glA12-glC1) > 1e-15 || math.Abs(glA21+glA22-glC2) > 1e-15 {
		t.Error("row sums must equal the nodes")
	}
	if glB1+glB2 != 1 {
		t.Error("weights must sum to 1")
	}
}

func TestNewtonIterationsBounded(t *testing.T) {
	params := physics.DefaultParams()
	model, err := physics.NewPendulum(params)
	if err != nil {
		t.Fatal(err)
	}
	integ := NewGaussLegendre(solver.Options{})

	for _, theta := range []float64{0.3, 2.0, 3.0} {
		for _, omega := range []float64{-9.5, 0.1, 5, 9.9} {
			_, iters, err := integ.Advance(model, dynamo.State{theta, omega}, 0, 0.01)
			if err != nil {
				t.Fatalf("θ=%g ω=%g: %v", theta, omega, err)
			}
			if iters >= 10 {
				t.Errorf("θ=%g ω=%g: %d Newton iterations, want < 10", theta, omega, iters)
			}
		}
	}
}

func TestGaussLegendreConvergenceFailure(t *testing.T) {
	model, err := physics.NewPendulum(physics.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	integ := NewGaussLegendre(solver.Options{Tolerance: 1e-30, MaxIter: 1})

	_, err = integ.Step(model, dynamo.State{1, 2}, 0, 0.05)
	if !errors.Is(err, dynamo.ErrConvergenceFailure) {
		t.Errorf("expected ErrConvergenceFailure, got %v", err)
	}
}

func TestStepErrors(t *testing.T) {
	for _, k := range Kinds() {
		integ := mustNew(t, k, solver.Options{})

		if _, err := integ.Step(&failingSystem{}, dynamo.State{1, 0}, 0, 0.01); !errors.Is(err, dynamo.ErrNumericFailure) {
			t.Errorf("%s: expected ErrNumericFailure, got %v", k, err)
		}
		if _, err := integ.Step(&harmonicOscillator{}, dynamo.State{1, 0, 0}, 0, 0.01); !errors.Is(err, dynamo.ErrDimensionMismatch) {
			t.Errorf("%s: expected ErrDimensionMismatch, got %v", k, err)
		}
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"euler", KindEuler},
		{"Leapfrog", KindLeapfrog},
		{"verlet", KindLeapfrog},
		{"rk4", KindRK4},
		{"gauss_legendre", KindGaussLegendre},
		{"GL4", KindGaussLegendre},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseKind(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseKind("rk45"); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
	for _, k := range Kinds() {
		back, err := ParseKind(k.String())
		if err != nil || back != k {
			t.Errorf("round trip of %s gave %v, %v", k, back, err)
		}
	}
}

func TestNewRejects(t *testing.T) {
	if _, err := New(Kind(99), solver.Options{}); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
	if _, err := New(KindGaussLegendre, solver.Options{Tolerance: -1}); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestInfo(t *testing.T) {
	if info := KindGaussLegendre.Info(); !info.Implicit || info.Order != 4 || info.Stages != 2 {
		t.Errorf("unexpected info %+v", info)
	}
	if info := KindRK4.Info(); info.Symplectic || info.Implicit {
		t.Errorf("unexpected info %+v", info)
	}
}
