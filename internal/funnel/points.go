package funnel

import (
	"math"

	"phstats/domain/stats"
	"phstats/internal/confidence"
	"phstats/internal/errors"
)

// Point holds the chart coordinates of a rate record
type Point struct {
	ChartRate          float64 // NaN for DSRs with fewer than 10 events
	DerivedDenominator float64 // population per year
}

// Points derives chart coordinates for rate funnels: the rate to plot and the
// per-year population it represents.
func Points(records []Record, opts Options) ([]Point, error) {
	in, err := validateRecords(records)
	if err != nil {
		return nil, err
	}
	if opts.RateType != stats.RateDSR && opts.RateType != stats.RateCrude {
		return nil, errors.InvalidInput("only 'dsr' and 'crude' are valid rate types")
	}
	if !(opts.Multiplier > 0) || !(opts.YearsOfData > 0) {
		return nil, errors.InvalidInput("multiplier and years of data must be positive")
	}
	for _, r := range records {
		if math.IsNaN(r.Rate) {
			return nil, errors.ValidationError("for rates, the rate must be provided for all records even if it is 0")
		}
		if !in.hasDenominator && r.Numerator == 0 {
			return nil, errors.ValidationError("for rates, where there are 0 events for a record, a denominator must be provided")
		}
	}

	out := make([]Point, len(records))
	for i, r := range records {
		derived := (opts.Multiplier * r.Numerator / r.Rate) / opts.YearsOfData
		switch {
		case opts.RateType == stats.RateDSR && r.Numerator < confidence.SmallCountThreshold:
			out[i] = Point{ChartRate: math.NaN(), DerivedDenominator: math.NaN()}
		case opts.RateType == stats.RateCrude && in.hasDenominator && r.Numerator == 0:
			out[i] = Point{ChartRate: r.Rate, DerivedDenominator: r.Denominator / opts.YearsOfData}
		default:
			out[i] = Point{ChartRate: r.Rate, DerivedDenominator: derived}
		}
	}
	return out, nil
}
