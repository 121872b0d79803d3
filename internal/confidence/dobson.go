package confidence

import (
	"math"

	"phstats/internal/errors"
)

// DobsonLower calculates the lower confidence limit of a directly standardised
// rate: the Byar's interval of the total count, re-centred on the rate using the
// rate's variance. Totals below 10 have no reliable interval and give NaN.
func DobsonLower(value, totalCount, variance, confidence, multiplier float64) (float64, error) {
	return dobson(value, totalCount, variance, confidence, multiplier, PoissonLower)
}

// DobsonUpper calculates the upper confidence limit of a directly standardised rate.
func DobsonUpper(value, totalCount, variance, confidence, multiplier float64) (float64, error) {
	return dobson(value, totalCount, variance, confidence, multiplier, PoissonUpper)
}

func dobson(value, totalCount, variance, confidence, multiplier float64, bound func(float64, float64) (float64, error)) (float64, error) {
	if variance < 0 {
		return math.NaN(), errors.DomainError("variance must not be negative")
	}
	if totalCount < SmallCountThreshold || math.IsNaN(totalCount) {
		return math.NaN(), nil
	}
	b, err := bound(totalCount, confidence)
	if err != nil {
		return math.NaN(), err
	}
	return value + math.Sqrt(variance/totalCount)*(b-totalCount)*multiplier, nil
}
