package funnel

import (
	"math"

	"phstats/domain/stats"
	"phstats/internal/confidence"
	"phstats/internal/distributions"
	"phstats/internal/errors"
)

// Two-sided levels of the ratio significance tests
const (
	TwoSigmaLevel   = 0.95
	ThreeSigmaLevel = 0.998
)

// RatioSignificance returns the bound of an observed count relative to its
// expected count at the two-sided level p (0.95 or 0.998).
//
// A zero count on the low side is 0. Counts under 10 use the exact
// chi-squared limits; larger counts use Byar's cube approximation.
func RatioSignificance(obs, expected, p float64, side stats.Side) (float64, error) {
	if err := side.Validate(); err != nil {
		return math.NaN(), errors.WithCode(errors.CodeInvalidInput, err)
	}
	if obs < 0 || math.IsNaN(obs) {
		return math.NaN(), errors.DomainError("observed count must not be negative")
	}
	if !(p > 0 && p < 1) {
		return math.NaN(), errors.Newf(errors.CodeInvalidInput, "significance level must be between 0 and 1, got %v", p)
	}

	cumulative := 0.5 + p/2
	adjusted := obs
	if side == stats.SideHigh {
		adjusted = obs + 1
	}
	// Only a zero count on the low side gets here: no bound below zero events.
	if adjusted == 0 {
		return 0, nil
	}

	var statistic float64
	switch {
	case obs < confidence.SmallCountThreshold:
		var (
			q   float64
			err error
		)
		if side == stats.SideLow {
			q, err = distributions.ChiSquaredQuantile(1-cumulative, 2*obs)
		} else {
			q, err = distributions.ChiSquaredQuantile(cumulative, 2*obs+2)
		}
		if err != nil {
			return math.NaN(), err
		}
		statistic = q / 2
	default:
		z, err := distributions.NormalQuantile(cumulative)
		if err != nil {
			return math.NaN(), err
		}
		x := 1 - 1/(9*adjusted)
		y := 3 * math.Sqrt(adjusted)
		if side == stats.SideLow {
			statistic = adjusted * math.Pow(x-z/y, 3)
		} else {
			statistic = adjusted * math.Pow(x+z/y, 3)
		}
	}

	return statistic / expected, nil
}
