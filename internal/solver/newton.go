package solver

import (
	"fmt"
	"math"

	"github.com/san-kum/pendsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	DefaultTolerance = 1e-8
	DefaultMaxIter   = 50
)

// Options bound the Newton iteration. Zero fields take the defaults.
type Options struct {
	// Tolerance is the bound on the Euclidean norm of the residual.
	Tolerance float64
	MaxIter   int
}

func (o Options) withDefaults() Options {
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.MaxIter <= 0 {
		o.MaxIter = DefaultMaxIter
	}
	return o
}

// Validate rejects options that cannot be used even after defaulting.
func (o Options) Validate() error {
	if math.IsNaN(o.Tolerance) || math.IsInf(o.Tolerance, 0) || o.Tolerance < 0 {
		return fmt.Errorf("%w: solver tolerance must be finite and non-negative, got %g", dynamo.ErrInvalidParameter, o.Tolerance)
	}
	if o.MaxIter < 0 {
		return fmt.Errorf("%w: solver max iterations must be non-negative, got %d", dynamo.ErrInvalidParameter, o.MaxIter)
	}
	return nil
}

// Residual writes F(x) into out. len(out) == len(x).
type Residual func(x, out []float64) error

type Result struct {
	X          []float64
	Iterations int
	Residual   float64
}

// Newton finds a root of f starting at x0. The Jacobian is built by forward
// differences and each update solves J·dx = -F(x) with an LU factorization.
// x0 is not modified. On failure no partial solution is returned.
func Newton(f Residual, x0 []float64, opts Options) (Result, error) {
	opts = opts.withDefaults()
	n := len(x0)

	x := make([]float64, n)
	copy(x, x0)
	fx := make([]float64, n)
	if err := f(x, fx); err != nil {
		return Result{}, err
	}
	norm := floats.Norm(fx, 2)
	if norm <= opts.Tolerance {
		return Result{X: x, Iterations: 0, Residual: norm}, nil
	}

	jac := mat.NewDense(n, n, nil)
	probe := make([]float64, n)
	fp := make([]float64, n)
	rhs := mat.NewVecDense(n, nil)
	var dx mat.VecDense
	var lu mat.LU

	for iter := 1; iter <= opts.MaxIter; iter++ {
		copy(probe, x)
		for j := 0; j < n; j++ {
			h := math.Sqrt(epsilon) * math.Max(math.Abs(x[j]), 1)
			probe[j] = x[j] + h
			if err := f(probe, fp); err != nil {
				return Result{}, err
			}
			for i := 0; i < n; i++ {
				jac.Set(i, j, (fp[i]-fx[i])/h)
			}
			probe[j] = x[j]
		}

		for i, v := range fx {
			rhs.SetVec(i, -v)
		}
		lu.Factorize(jac)
		if err := lu.SolveVecTo(&dx, false, rhs); err != nil {
			return Result{}, fmt.Errorf("%w: singular jacobian at iteration %d: %v",
				dynamo.ErrConvergenceFailure, iter, err)
		}

		for i := range x {
			x[i] += dx.AtVec(i)
		}
		if err := f(x, fx); err != nil {
			return Result{}, err
		}
		norm = floats.Norm(fx, 2)
		if math.IsNaN(norm) || math.IsInf(norm, 0) {
			break
		}
		if norm <= opts.Tolerance {
			return Result{X: x, Iterations: iter, Residual: norm}, nil
		}
	}

	return Result{}, fmt.Errorf("%w: residual %.3g after %d iterations",
		dynamo.ErrConvergenceFailure, norm, opts.MaxIter)
}

const epsilon = 2.220446049250313e-16
