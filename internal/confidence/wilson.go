package confidence

import (
	"math"

	"phstats/domain/stats"
	"phstats/internal/distributions"
	"phstats/internal/errors"
)

// WilsonLower calculates the lower bound of the Wilson score interval for
// count/denominator.
func WilsonLower(count, denominator, confidence float64) (float64, error) {
	z, err := wilsonArgs(count, denominator, confidence)
	if err != nil {
		return math.NaN(), err
	}
	return (2*count + z*z - z*math.Sqrt(z*z+4*count*(1-count/denominator))) / 2 / (denominator + z*z), nil
}

// WilsonUpper calculates the upper bound of the Wilson score interval for
// count/denominator.
func WilsonUpper(count, denominator, confidence float64) (float64, error) {
	z, err := wilsonArgs(count, denominator, confidence)
	if err != nil {
		return math.NaN(), err
	}
	return (2*count + z*z + z*math.Sqrt(z*z+4*count*(1-count/denominator))) / 2 / (denominator + z*z), nil
}

// Wilson returns both bounds of the Wilson score interval
func Wilson(count, denominator, confidence float64) (stats.ConfidenceInterval, error) {
	lower, err := WilsonLower(count, denominator, confidence)
	if err != nil {
		return stats.NaNInterval(confidence), err
	}
	upper, err := WilsonUpper(count, denominator, confidence)
	if err != nil {
		return stats.NaNInterval(confidence), err
	}
	return stats.ConfidenceInterval{Level: confidence, Lower: lower, Upper: upper}, nil
}

func wilsonArgs(count, denominator, confidence float64) (float64, error) {
	if !(denominator > 0) {
		return 0, errors.DomainError("denominator must be greater than zero")
	}
	if count < 0 {
		return 0, errors.DomainError("count must not be negative")
	}
	return distributions.TwoSidedZ(confidence)
}
