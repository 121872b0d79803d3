// Package distributions wraps the probability distributions used by the
// confidence-interval and funnel engines. Every function is a pure function of
// its arguments; nothing is cached between calls.
package distributions

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"phstats/internal/errors"
)

// NormalQuantile computes the quantile function (inverse CDF) of the standard normal
func NormalQuantile(p float64) (float64, error) {
	if err := checkProbability(p); err != nil {
		return math.NaN(), err
	}
	return distuv.UnitNormal.Quantile(p), nil
}

// TwoSidedZ returns the normal quantile bounding a two-sided interval at the
// given confidence level, e.g. 1.959964 for 0.95.
func TwoSidedZ(confidence float64) (float64, error) {
	if err := CheckConfidence(confidence); err != nil {
		return math.NaN(), err
	}
	return distuv.UnitNormal.Quantile(1 - Alpha(confidence)/2), nil
}

// Alpha converts a confidence level into the total tail probability.
func Alpha(confidence float64) float64 {
	return 1 - confidence
}

// ChiSquaredQuantile computes the quantile of a chi-squared distribution with df
// degrees of freedom. Zero degrees of freedom is a point mass at zero.
func ChiSquaredQuantile(p, df float64) (float64, error) {
	if err := checkProbability(p); err != nil {
		return math.NaN(), err
	}
	if df < 0 || math.IsNaN(df) {
		return math.NaN(), errors.DomainError("degrees of freedom must not be negative")
	}
	if df == 0 {
		return 0, nil
	}
	return distuv.ChiSquared{K: df}.Quantile(p), nil
}

// StudentTQuantile computes the quantile of a standard Student's t-distribution.
// It returns NaN when df is not positive (a sample of one has no spread).
func StudentTQuantile(p, df float64) (float64, error) {
	if err := checkProbability(p); err != nil {
		return math.NaN(), err
	}
	if !(df > 0) {
		return math.NaN(), nil
	}
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Quantile(p), nil
}

// CheckConfidence validates a confidence level lies strictly inside (0, 1).
func CheckConfidence(confidence float64) error {
	if !(confidence > 0 && confidence < 1) {
		return errors.Newf(errors.CodeInvalidInput, "confidence must be between 0 and 1, got %v", confidence)
	}
	return nil
}

func checkProbability(p float64) error {
	if !(p >= 0 && p <= 1) {
		return errors.Newf(errors.CodeInvalidInput, "probability must be between 0 and 1, got %v", p)
	}
	return nil
}
