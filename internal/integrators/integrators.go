package integrators

import (
	"fmt"
	"strings"

	"github.com/san-kum/pendsim/internal/dynamo"
	"github.com/san-kum/pendsim/internal/solver"
)

// Kind selects an integration scheme at construction time.
type Kind int

const (
	KindEuler Kind = iota + 1
	KindLeapfrog
	KindRK4
	KindGaussLegendre
)

var kindNames = map[Kind]string{
	KindEuler:         "euler",
	KindLeapfrog:      "leapfrog",
	KindRK4:           "rk4",
	KindGaussLegendre: "gauss_legendre",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Kinds lists every scheme in ascending order of accuracy.
func Kinds() []Kind {
	return []Kind{KindEuler, KindLeapfrog, KindRK4, KindGaussLegendre}
}

func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "euler", "semi_implicit_euler", "symplectic_euler":
		return KindEuler, nil
	case "leapfrog", "verlet", "velocity_verlet":
		return KindLeapfrog, nil
	case "rk4", "runge_kutta":
		return KindRK4, nil
	case "gauss_legendre", "gl4", "gl", "gauss-legendre", "gl-rk4":
		return KindGaussLegendre, nil
	default:
		return 0, fmt.Errorf("%w: unknown integrator %q", dynamo.ErrInvalidParameter, name)
	}
}

// Info describes a scheme.
type Info struct {
	Name       string
	Stages     int
	Order      int
	Implicit   bool
	Symplectic bool
}

func (k Kind) Info() Info {
	switch k {
	case KindEuler:
		return Info{Name: k.String(), Stages: 1, Order: 1, Symplectic: true}
	case KindLeapfrog:
		return Info{Name: k.String(), Stages: 2, Order: 2, Symplectic: true}
	case KindRK4:
		return Info{Name: k.String(), Stages: 4, Order: 4}
	case KindGaussLegendre:
		return Info{Name: k.String(), Stages: 2, Order: 4, Implicit: true, Symplectic: true}
	default:
		return Info{Name: k.String()}
	}
}

// New builds the integrator for k. opts only affects implicit schemes.
func New(k Kind, opts solver.Options) (dynamo.Integrator, error) {
	switch k {
	case KindEuler:
		return NewEuler(), nil
	case KindLeapfrog:
		return NewLeapfrog(), nil
	case KindRK4:
		return NewRK4(), nil
	case KindGaussLegendre:
		if err := opts.Validate(); err != nil {
			return nil, err
		}
		return NewGaussLegendre(opts), nil
	default:
		return nil, fmt.Errorf("%w: unknown integrator kind %d", dynamo.ErrInvalidParameter, int(k))
	}
}

// checkLayout verifies x is a [positions..., velocities...] state for sys.
func checkLayout(sys dynamo.System, x dynamo.State) error {
	if len(x) != sys.StateDim() || len(x)%2 != 0 {
		return fmt.Errorf("%w: state has %d values, system expects %d",
			dynamo.ErrDimensionMismatch, len(x), sys.StateDim())
	}
	return nil
}

func finish(x dynamo.State) (dynamo.State, error) {
	if err := dynamo.CheckFinite(x, "state"); err != nil {
		return nil, err
	}
	return x, nil
}
