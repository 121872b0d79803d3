package funnel

import (
	"math"

	"phstats/domain/stats"
	"phstats/internal/distributions"
	"phstats/internal/errors"
)

// Cumulative normal probabilities of the proportion control limits
const (
	TwoSigmaProbability   = 0.975
	ThreeSigmaProbability = 0.999
)

// SigmaAdjustment computes a proportion funnel limit at one population size.
//
// p selects the cumulative normal quantile (0.975 for 2 sigma, 0.999 for 3
// sigma), averageProportion is the baseline across all records and multiplier
// expresses the result (100 for a percentage). The limit is a root of the
// quadratic behind the Wilson score interval. It is not clamped; callers clamp
// into [0, multiplier].
func SigmaAdjustment(p, population, averageProportion float64, side stats.Side, multiplier float64) (float64, error) {
	if err := side.Validate(); err != nil {
		return math.NaN(), errors.WithCode(errors.CodeInvalidInput, err)
	}
	if !(population > 0) {
		return math.NaN(), errors.DomainError("population must be greater than zero")
	}
	q, err := distributions.NormalQuantile(p)
	if err != nil {
		return math.NaN(), err
	}
	if q == 0 {
		return 0, nil
	}

	q2 := q * q
	a := averageProportion * (population/q2 + 1)
	b := -8 * averageProportion * (population/q2 + 1)
	discriminant := math.Sqrt(b*b - 64*(1/q2+1/population)*averageProportion*
		(population*(averageProportion*(population/q2+2)-1)+q2*(averageProportion-1)))
	denominator := 1/q2 + 1/population

	var limit float64
	if side == stats.SideLow {
		limit = (a - discriminant/8) / denominator
	} else {
		limit = (a + discriminant/8) / denominator
	}

	return (limit / population) * multiplier, nil
}
