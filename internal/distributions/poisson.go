package distributions

import (
	"math"

	"phstats/internal/errors"
)

// Unbounded is the upper bound to pass to PoissonInterval for an open upper tail.
var Unbounded = math.Inf(1)

const (
	rescaleThreshold  = 1e30
	relativeTolerance = 1e-10
	baseTermCap       = 10000
)

// MaxPoissonRate is the largest rate PoissonInterval will sum terms for
const MaxPoissonRate = 1e8

// PoissonInterval returns P(lower <= X <= upper) for X ~ Poisson(rate).
//
// Terms are generated by the recurrence q_k = q_{k-1} * rate / k and summed from
// k = 0 until k has passed the mode and the next term is negligible relative to
// the running total. Both accumulators are rescaled whenever the total passes
// 1e30, and the ratio of the two sums is returned so truncation error cancels.
func PoissonInterval(rate, lower, upper float64) (float64, error) {
	if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return math.NaN(), errors.DomainError("poisson rate must be a finite non-negative number")
	}
	if rate > MaxPoissonRate {
		return math.NaN(), errors.Newf(errors.CodeDomainError, "poisson rate %g is above the largest supported rate %g", rate, float64(MaxPoissonRate))
	}
	if upper < lower {
		return math.NaN(), errors.DomainError("poisson interval upper bound is below its lower bound")
	}
	return poissonSum(rate, lower, upper, baseTermCap+2*math.Ceil(rate))
}

// poissonSum runs the summation, giving up once more than maxTerms terms
// have been added
func poissonSum(rate, lower, upper, maxTerms float64) (float64, error) {
	q := 1.0
	total := 0.0
	inRange := 0.0
	k := 0

	for float64(k) <= rate || q > total*relativeTolerance {
		if float64(k) > maxTerms {
			return math.NaN(), errors.NoConvergence("poisson summation exceeded its term cap")
		}
		total += q
		kf := float64(k)
		if lower <= kf && kf <= upper {
			inRange += q
		}
		if total > rescaleThreshold {
			inRange /= rescaleThreshold
			total /= rescaleThreshold
			q /= rescaleThreshold
		}
		k++
		q *= rate / float64(k)
	}

	return inRange / total, nil
}
