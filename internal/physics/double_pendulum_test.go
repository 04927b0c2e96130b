package physics

import (
	"math"
	"testing"

	"github.com/san-kum/pendsim/internal/dynamo"
)

func newDouble(t *testing.T, p Params) *DoublePendulum {
	t.Helper()
	dp, err := NewDoublePendulum(p)
	if err != nil {
		t.Fatal(err)
	}
	return dp
}

func TestDoublePendulumEquilibrium(t *testing.T) {
	dp := newDouble(t, DefaultParams())

	dx, err := dp.Derive(dynamo.State{0, 0, 0, 0}, 0)
	if err != nil {
		t.Fatal(err)
	}

	for i, v := range dx {
		if math.Abs(v) > 1e-10 {
			t.Errorf("expected zero derivative component %d, got %f", i, v)
		}
	}
}

func TestDoublePendulumInvertedEquilibrium(t *testing.T) {
	dp := newDouble(t, DefaultParams())

	dx, err := dp.Derive(dynamo.State{math.Pi, math.Pi, 0, 0}, 0)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range dx {
		if math.Abs(v) > 1e-12 {
			t.Errorf("inverted point derivative %d = %g, want ~0", i, v)
		}
	}
}

func TestDoublePendulumDimensions(t *testing.T) {
	dp := newDouble(t, DefaultParams())

	if dp.StateDim() != 4 {
		t.Errorf("expected state dim 4, got %d", dp.StateDim())
	}
	if dp.Variant().Links() != 2 {
		t.Errorf("expected 2 links, got %d", dp.Variant().Links())
	}
}

func TestDoublePendulumSymmetry(t *testing.T) {
	dp := newDouble(t, DefaultParams())

	dx1, _ := dp.Derive(dynamo.State{0.1, 0.1, 0, 0}, 0)
	dx2, _ := dp.Derive(dynamo.State{-0.1, -0.1, 0, 0}, 0)

	if math.Abs(dx1[2]+dx2[2]) > 1e-12 {
		t.Errorf("expected symmetric alpha1: %f vs %f", dx1[2], dx2[2])
	}
	if math.Abs(dx1[3]+dx2[3]) > 1e-12 {
		t.Errorf("expected symmetric alpha2: %f vs %f", dx1[3], dx2[3])
	}
}

func TestDoublePendulumReducesToSimple(t *testing.T) {
	// With the second bob hanging in line and at rest the first link feels
	// gravity on both masses acting through l1.
	params := DefaultParams()
	dp := newDouble(t, params)

	theta := 1e-4
	acc, err := dp.Accelerations(dynamo.State{theta, theta, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	want := -params.G / params.L1 * math.Sin(theta)
	if math.Abs(acc[0]-want)/math.Abs(want) > 1e-6 {
		t.Errorf("acc1 = %g, want %g", acc[0], want)
	}
}

func TestDoublePendulumEnergy(t *testing.T) {
	params := Params{Origin: Point{X: 400, Y: 200}, L1: 200, L2: 200, M1: 5, M2: 5, G: 9.81}
	dp := newDouble(t, params)

	if pe := dp.Potential(dynamo.State{0, 0, 0, 0}); pe != 0 {
		t.Errorf("potential at rest = %g, want exactly 0", pe)
	}

	x := dynamo.State{math.Pi / 2, math.Pi / 2, 0, 0}
	want := params.M1*params.G*params.L1 + params.M2*params.G*(params.L1+params.L2)
	if got := dp.Potential(x); math.Abs(got-want) > 1e-9*want {
		t.Errorf("potential = %f, want %f", got, want)
	}
	if ke := dp.Kinetic(x); ke != 0 {
		t.Errorf("kinetic at rest = %g, want 0", ke)
	}

	// Rigid rotation: both links aligned, same angular rate.
	omega := 0.3
	x = dynamo.State{0, 0, omega, omega}
	wantKE := 0.5*params.M1*math.Pow(params.L1*omega, 2) +
		0.5*params.M2*math.Pow((params.L1+params.L2)*omega, 2)
	if got := dp.Kinetic(x); math.Abs(got-wantKE) > 1e-9*wantKE {
		t.Errorf("kinetic = %f, want %f", got, wantKE)
	}
}

func TestDoublePendulumPositions(t *testing.T) {
	params := Params{Origin: Point{X: 1, Y: 2}, L1: 1, L2: 0.5, M1: 1, M2: 1, G: 9.81}
	dp := newDouble(t, params)

	pos := dp.Positions(dynamo.State{0, math.Pi / 2, 0, 0})
	if len(pos) != 2 {
		t.Fatalf("expected 2 bobs, got %d", len(pos))
	}
	if pos[0].X != 1 || pos[0].Y != 3 {
		t.Errorf("first bob at %+v, want (1, 3)", pos[0])
	}
	if math.Abs(pos[1].X-1.5) > 1e-12 || math.Abs(pos[1].Y-3) > 1e-12 {
		t.Errorf("second bob at %+v, want (1.5, 3)", pos[1])
	}
}

func TestDoublePendulumFlowConservesEnergy(t *testing.T) {
	params := Params{L1: 1.3, L2: 0.7, M1: 2, M2: 0.5, G: 9.81}
	dp := newDouble(t, params)

	states := []dynamo.State{
		{0.4, -0.9, 1.2, -2.0},
		{math.Pi / 2, math.Pi / 2, 0, 0},
		{2.5, 0.3, -3.0, 4.0},
	}
	for _, x := range states {
		assertEnergyRateZero(t, dp, x)
	}
}

func TestDoublePendulumRejectsDegenerateMasses(t *testing.T) {
	// Bypass Validate to emulate corrupted parameters.
	dp := &DoublePendulum{p: Params{L1: 1, L2: 1, M1: 0, M2: 1, G: 9.81}}

	if _, err := dp.Derive(dynamo.State{0.3, 0.3, 0, 0}, 0); err == nil {
		t.Error("expected an error for a vanishing denominator")
	}
}
