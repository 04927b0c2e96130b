package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidParameter indicates a non-positive mass or length, a
	// non-finite initial state, or an unusable configuration value.
	ErrInvalidParameter = errors.New("dynamo: invalid parameter")

	// ErrConvergenceFailure indicates the implicit stage solver did not reach
	// its tolerance within the iteration bound.
	ErrConvergenceFailure = errors.New("dynamo: stage solver did not converge")

	// ErrNumericFailure indicates a derivative or a resulting state contains
	// NaN or Inf.
	ErrNumericFailure = errors.New("dynamo: non-finite value in state or derivative")

	// ErrDimensionMismatch indicates mismatched state and system dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// StepError wraps a failed step with simulation context. The wrapped error is
// one of the sentinel values above, possibly with extra detail.
type StepError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}

// CheckFinite returns ErrNumericFailure if x has a non-finite component.
func CheckFinite(x State, what string) error {
	if !x.IsValid() {
		return fmt.Errorf("%w: %s %v", ErrNumericFailure, what, []float64(x))
	}
	return nil
}
