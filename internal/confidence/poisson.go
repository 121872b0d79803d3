package confidence

import (
	"math"

	"phstats/domain/stats"
	"phstats/internal/distributions"
	"phstats/internal/errors"
)

// SmallCountThreshold is the count below which Byar's approximation is replaced
// by the exact method. The comparison is strict: a count of exactly 10 uses Byar's.
const SmallCountThreshold = 10

// ExactLower calculates the lower confidence limit of a Poisson count using the
// chi-squared relationship. A count of zero has a lower limit of zero.
func ExactLower(value, confidence float64) (float64, error) {
	if err := checkValue(value); err != nil {
		return math.NaN(), err
	}
	if err := distributions.CheckConfidence(confidence); err != nil {
		return math.NaN(), err
	}
	q, err := distributions.ChiSquaredQuantile(distributions.Alpha(confidence)/2, 2*value)
	if err != nil {
		return math.NaN(), err
	}
	return q / 2, nil
}

// ExactUpper calculates the upper confidence limit of a Poisson count using the
// chi-squared relationship.
func ExactUpper(value, confidence float64) (float64, error) {
	if err := checkValue(value); err != nil {
		return math.NaN(), err
	}
	if err := distributions.CheckConfidence(confidence); err != nil {
		return math.NaN(), err
	}
	q, err := distributions.ChiSquaredQuantile(1-distributions.Alpha(confidence)/2, 2*value+2)
	if err != nil {
		return math.NaN(), err
	}
	return q / 2, nil
}

// Exact returns both exact Poisson limits
func Exact(value, confidence float64) (stats.ConfidenceInterval, error) {
	lower, err := ExactLower(value, confidence)
	if err != nil {
		return stats.NaNInterval(confidence), err
	}
	upper, err := ExactUpper(value, confidence)
	if err != nil {
		return stats.NaNInterval(confidence), err
	}
	return stats.ConfidenceInterval{Level: confidence, Lower: lower, Upper: upper}, nil
}

// PoissonLower is the lower limit for a Poisson count: exact below
// SmallCountThreshold, Byar's approximation from there on.
func PoissonLower(value, confidence float64) (float64, error) {
	if value < SmallCountThreshold {
		return ExactLower(value, confidence)
	}
	z, err := distributions.TwoSidedZ(confidence)
	if err != nil {
		return math.NaN(), err
	}
	return byarsLowerZ(value, z), nil
}

// PoissonUpper is the upper limit for a Poisson count: exact below
// SmallCountThreshold, Byar's approximation from there on.
func PoissonUpper(value, confidence float64) (float64, error) {
	if value < SmallCountThreshold {
		return ExactUpper(value, confidence)
	}
	z, err := distributions.TwoSidedZ(confidence)
	if err != nil {
		return math.NaN(), err
	}
	return byarsUpperZ(value, z), nil
}

// Poisson returns both limits of PoissonLower and PoissonUpper. Unlike
// ByarsUpper it accepts a zero count.
func Poisson(value, confidence float64) (stats.ConfidenceInterval, error) {
	lower, err := PoissonLower(value, confidence)
	if err != nil {
		return stats.NaNInterval(confidence), err
	}
	upper, err := PoissonUpper(value, confidence)
	if err != nil {
		return stats.NaNInterval(confidence), err
	}
	return stats.ConfidenceInterval{Level: confidence, Lower: lower, Upper: upper}, nil
}

// PoissonMethod names the method PoissonLower/PoissonUpper use for a count
func PoissonMethod(value float64) string {
	if value < SmallCountThreshold {
		return stats.MethodExact
	}
	return stats.MethodByars
}

func byarsLowerZ(value, z float64) float64 {
	return value * math.Pow(1-1/(9*value)-z/(3*math.Sqrt(value)), 3)
}

func byarsUpperZ(value, z float64) float64 {
	v := value + 1
	return v * math.Pow(1-1/(9*v)+z/(3*math.Sqrt(v)), 3)
}

func checkValue(value float64) error {
	if value < 0 || math.IsNaN(value) {
		return errors.DomainError("value must not be negative")
	}
	return nil
}
