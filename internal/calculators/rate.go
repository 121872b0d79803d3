package calculators

import (
	"math"

	"phstats/internal/confidence"
	"phstats/internal/frame"
	"phstats/internal/validation"
)

// Rate calculates crude rates per multiplier (e.g. per 100,000) with Byar's
// intervals, switching to the exact method for fewer than 10 events.
// Without GroupBy each row is its own group.
func Rate(f *frame.Frame, numerator, denominator string, multiplier float64, opts Options) (*frame.Frame, error) {
	levels, err := opts.confidence()
	if err != nil {
		return nil, err
	}
	if err := (validation.Data{Numerator: numerator, Denominator: denominator, GroupBy: opts.GroupBy}).Check(f); err != nil {
		return nil, err
	}
	if err := validation.Multiplier(multiplier); err != nil {
		return nil, err
	}

	nums, _ := f.Floats(numerator)
	dens, _ := f.Floats(denominator)

	out, groups, err := groupRows(f, opts.GroupBy, false)
	if err != nil {
		return nil, err
	}

	count := make([]float64, len(groups))
	total := make([]float64, len(groups))
	value := make([]float64, len(groups))
	methods := make([]string, len(groups))
	for i, rows := range groups {
		count[i] = sumStrict(nums, rows)
		total[i] = sumStrict(dens, rows)
		value[i] = count[i] / total[i] * multiplier
		methods[i] = confidence.PoissonMethod(count[i])
	}
	if err := out.AddFloat(numerator, count); err != nil {
		return nil, err
	}
	if err := out.AddFloat(denominator, total); err != nil {
		return nil, err
	}
	if err := out.AddFloat(ColValue, value); err != nil {
		return nil, err
	}

	if err := addIntervals(out, levels,
		countBound(count, confidence.PoissonLower, func(i int) float64 { return multiplier / total[i] }),
		countBound(count, confidence.PoissonUpper, func(i int) float64 { return multiplier / total[i] }),
	); err != nil {
		return nil, err
	}

	if opts.Metadata {
		if err := addMetadata(out, "Rate per "+formatNumber(multiplier), levels, methods); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// countBound evaluates a Poisson bound of count[i] and scales it into the
// output unit. Missing counts give NaN.
func countBound(count []float64, limit func(float64, float64) (float64, error), scale func(i int) float64) boundFunc {
	return func(i int, c float64) (float64, error) {
		if math.IsNaN(count[i]) {
			return math.NaN(), nil
		}
		v, err := limit(count[i], c)
		if err != nil {
			return math.NaN(), err
		}
		return v * scale(i), nil
	}
}
