package confidence

import (
	"math"

	"phstats/internal/distributions"
	"phstats/internal/errors"
)

// StudentTHalfWidth returns the half-width of a Student's t interval around a
// mean of n values with standard deviation sd. The caller adds and subtracts it
// from the mean. Fewer than two values give NaN.
func StudentTHalfWidth(n, sd, confidence float64) (float64, error) {
	if err := distributions.CheckConfidence(confidence); err != nil {
		return math.NaN(), err
	}
	if sd < 0 {
		return math.NaN(), errors.DomainError("standard deviation must not be negative")
	}
	if n < 2 || math.IsNaN(sd) {
		return math.NaN(), nil
	}
	t, err := distributions.StudentTQuantile(distributions.Alpha(confidence)/2, n-1)
	if err != nil {
		return math.NaN(), err
	}
	return math.Abs(t) * sd / math.Sqrt(n), nil
}
