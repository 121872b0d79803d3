package funnel

import (
	"math"

	"phstats/domain/stats"
	"phstats/internal/distributions"
	"phstats/internal/errors"
)

// Tail probabilities of the two control limits
const (
	TwoSigmaTail   = 0.025
	ThreeSigmaTail = 0.001
)

const (
	bisectionTolerance = 1e-7
	maxBisectionSteps  = 64
)

// PoissonFunnel finds the expected count at which the cumulative Poisson
// probability of observing obs crosses the tail probability p.
//
// The search runs over v in (0, 1) with the candidate rate (1+obs)·v/(1−v),
// halving the step until it drops below 1e-7. For SideLow the upper tail
// P(X >= obs) is matched; for SideHigh the lower tail P(X <= obs). Both tails
// are monotone in the rate, which is what makes the bisection converge.
func PoissonFunnel(obs, p float64, side stats.Side) (float64, error) {
	if err := side.Validate(); err != nil {
		return math.NaN(), errors.WithCode(errors.CodeInvalidInput, err)
	}
	if obs < 0 || math.IsNaN(obs) {
		return math.NaN(), errors.DomainError("observed count must not be negative")
	}
	if !(p > 0 && p < 1) {
		return math.NaN(), errors.Newf(errors.CodeInvalidInput, "tail probability must be between 0 and 1, got %v", p)
	}

	v := 0.5
	dv := 0.5
	steps := 0

	for dv > bisectionTolerance {
		if steps++; steps > maxBisectionSteps {
			return math.NaN(), errors.NoConvergence("poisson funnel bisection did not converge")
		}
		dv = dv / 2

		rate := (1 + obs) * v / (1 - v)
		if side == stats.SideLow {
			tail, err := distributions.PoissonInterval(rate, obs, distributions.Unbounded)
			if err != nil {
				return math.NaN(), err
			}
			if tail > p {
				v = v - dv
			} else {
				v = v + dv
			}
		} else {
			tail, err := distributions.PoissonInterval(rate, 0, obs)
			if err != nil {
				return math.NaN(), err
			}
			if tail < p {
				v = v - dv
			} else {
				v = v + dv
			}
		}
	}

	return (1 + obs) * v / (1 - v), nil
}
