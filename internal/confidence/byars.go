package confidence

import (
	"math"

	"phstats/domain/stats"
	"phstats/internal"
	"phstats/internal/errors"
)

var logger = internal.DefaultLogger.Component("Byars")

// ByarsLower calculates the lower confidence limit of a count using Byar's
// method, switching to the exact method for counts below 10.
func ByarsLower(value, confidence float64) (float64, error) {
	if value < 0 || math.IsNaN(value) {
		return math.NaN(), errors.DomainError("value must be a positive number")
	}
	return PoissonLower(value, confidence)
}

// ByarsUpper calculates the upper confidence limit of a count using Byar's
// method, switching to the exact method for counts below 10. Zero is rejected.
func ByarsUpper(value, confidence float64) (float64, error) {
	if !(value > 0) {
		return math.NaN(), errors.DomainError("value must be a positive number")
	}
	return PoissonUpper(value, confidence)
}

// ByarsOptions scales or restricts the interval returned by Byars
type ByarsOptions struct {
	// Denominator and Rate express the interval as a rate: bound / Denominator * Rate.
	// Both must be set (non-zero) or neither.
	Denominator float64
	Rate        float64

	// ExactForLowNumbers uses the exact method below 10; when false such counts
	// have no interval and NaN bounds are returned.
	ExactForLowNumbers bool
}

// DefaultByarsOptions uses the exact method for small counts and no rate scaling
func DefaultByarsOptions() ByarsOptions {
	return ByarsOptions{ExactForLowNumbers: true}
}

// Byars returns both limits of a count, optionally scaled to a rate.
func Byars(value, confidence float64, opts ByarsOptions) (stats.ConfidenceInterval, error) {
	if (opts.Denominator != 0) != (opts.Rate != 0) {
		return stats.NaNInterval(confidence), errors.InvalidInput("to use a denominator, you must also provide a rate")
	}

	if value < SmallCountThreshold {
		if !opts.ExactForLowNumbers {
			logger.Warn("count %v is below %d and the exact method is disabled; returning NaN", value, SmallCountThreshold)
			return stats.NaNInterval(confidence), nil
		}
		logger.Debug("count %v is below %d; using the exact method", value, SmallCountThreshold)
	}

	interval, err := Poisson(value, confidence)
	if err != nil {
		return stats.NaNInterval(confidence), err
	}
	if opts.Denominator != 0 {
		interval = interval.Scale(opts.Rate / opts.Denominator)
	}
	return interval, nil
}
