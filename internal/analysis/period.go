package analysis

import (
	"errors"
	"fmt"
)

var ErrTooFewCrossings = errors.New("analysis: not enough zero crossings")

// ZeroCrossings returns the interpolated times at which values goes from
// negative to non-negative.
func ZeroCrossings(times, values []float64) []float64 {
	n := min(len(times), len(values))
	var out []float64
	for i := 1; i < n; i++ {
		prev, curr := values[i-1], values[i]
		if prev < 0 && curr >= 0 {
			frac := -prev / (curr - prev)
			out = append(out, times[i-1]+frac*(times[i]-times[i-1]))
		}
	}
	return out
}

// Period is the mean spacing of upward zero crossings.
func Period(times, values []float64) (float64, error) {
	c := ZeroCrossings(times, values)
	if len(c) < 2 {
		return 0, fmt.Errorf("%w: found %d", ErrTooFewCrossings, len(c))
	}
	return (c[len(c)-1] - c[0]) / float64(len(c)-1), nil
}
