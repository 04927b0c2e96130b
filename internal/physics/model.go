package physics

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/pendsim/internal/dynamo"
)

const DefaultGravity = 9.81

// Variant selects the pendulum model at construction time.
type Variant int

const (
	Simple Variant = iota + 1
	Double
)

func (v Variant) String() string {
	switch v {
	case Simple:
		return "pendulum"
	case Double:
		return "double_pendulum"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// Links is the number of rigid links (and bobs) of the variant.
func (v Variant) Links() int {
	switch v {
	case Simple:
		return 1
	case Double:
		return 2
	default:
		return 0
	}
}

func (v Variant) StateDim() int { return 2 * v.Links() }

func ParseVariant(name string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "pendulum", "simple", "single":
		return Simple, nil
	case "double_pendulum", "double", "double-pendulum":
		return Double, nil
	default:
		return 0, fmt.Errorf("%w: unknown model %q", dynamo.ErrInvalidParameter, name)
	}
}

// Point is a Cartesian position. Y grows downward from the origin.
type Point struct {
	X, Y float64
}

// Params are the physical constants of one simulation. L2 and M2 are ignored
// by the simple pendulum.
type Params struct {
	Origin Point
	L1, L2 float64
	M1, M2 float64
	G      float64
}

func DefaultParams() Params {
	return Params{
		L1: 1.0, L2: 1.0,
		M1: 1.0, M2: 1.0,
		G: DefaultGravity,
	}
}

// Validate checks the constants the variant actually uses.
func (p Params) Validate(v Variant) error {
	if v.Links() == 0 {
		return fmt.Errorf("%w: unknown model variant %d", dynamo.ErrInvalidParameter, int(v))
	}
	check := func(name string, val float64) error {
		if math.IsNaN(val) || math.IsInf(val, 0) || val <= 0 {
			return fmt.Errorf("%w: %s must be positive and finite, got %g", dynamo.ErrInvalidParameter, name, val)
		}
		return nil
	}
	if err := check("l1", p.L1); err != nil {
		return err
	}
	if err := check("m1", p.M1); err != nil {
		return err
	}
	if v == Double {
		if err := check("l2", p.L2); err != nil {
			return err
		}
		if err := check("m2", p.M2); err != nil {
			return err
		}
	}
	if math.IsNaN(p.G) || math.IsInf(p.G, 0) || p.G < 0 {
		return fmt.Errorf("%w: g must be finite and non-negative, got %g", dynamo.ErrInvalidParameter, p.G)
	}
	if math.IsNaN(p.Origin.X) || math.IsInf(p.Origin.X, 0) || math.IsNaN(p.Origin.Y) || math.IsInf(p.Origin.Y, 0) {
		return fmt.Errorf("%w: origin must be finite", dynamo.ErrInvalidParameter)
	}
	return nil
}

// Model is a pendulum dynamics model together with its forward kinematics
// and energy diagnostics. All methods are pure.
type Model interface {
	dynamo.System
	dynamo.Hamiltonian

	Variant() Variant
	Params() Params

	// Accelerations returns the angular accelerations, one per link.
	Accelerations(x dynamo.State) ([]float64, error)
	// Positions returns the Cartesian position of each bob.
	Positions(x dynamo.State) []Point
	Kinetic(x dynamo.State) float64
	// Potential is measured against the hanging rest configuration, so it
	// is exactly zero when every angle is zero.
	Potential(x dynamo.State) float64
}

// New validates p and builds the model for v.
func New(v Variant, p Params) (Model, error) {
	if err := p.Validate(v); err != nil {
		return nil, err
	}
	switch v {
	case Simple:
		return &Pendulum{p: p}, nil
	default:
		return &DoublePendulum{p: p}, nil
	}
}

func derive(m Model, x dynamo.State) (dynamo.State, error) {
	if len(x) != m.StateDim() {
		return nil, fmt.Errorf("%w: %s expects %d values, got %d",
			dynamo.ErrDimensionMismatch, m.Variant(), m.StateDim(), len(x))
	}
	acc, err := m.Accelerations(x)
	if err != nil {
		return nil, err
	}
	n := len(acc)
	dx := make(dynamo.State, 2*n)
	copy(dx[:n], x[n:])
	copy(dx[n:], acc)
	return dx, dynamo.CheckFinite(dx, "derivative")
}
