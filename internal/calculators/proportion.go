package calculators

import (
	"math"

	"phstats/domain/stats"
	"phstats/internal/confidence"
	"phstats/internal/errors"
	"phstats/internal/frame"
	"phstats/internal/validation"
)

// Proportion calculates numerator/denominator × multiplier per group with
// Wilson score intervals. Without GroupBy each row is its own group.
// A multiplier of 100 gives percentages.
func Proportion(f *frame.Frame, numerator, denominator string, multiplier float64, opts Options) (*frame.Frame, error) {
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
	for i := range nums {
		if nums[i] > dens[i] {
			return nil, errors.ValidationError("numerators must be less than or equal to the denominator for a proportion statistic")
		}
	}

	out, groups, err := groupRows(f, opts.GroupBy, false)
	if err != nil {
		return nil, err
	}

	count := make([]float64, len(groups))
	total := make([]float64, len(groups))
	value := make([]float64, len(groups))
	for i, rows := range groups {
		count[i] = sumStrict(nums, rows)
		total[i] = sumStrict(dens, rows)
		value[i] = count[i] / total[i] * multiplier
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

	bound := func(limit func(float64, float64, float64) (float64, error)) boundFunc {
		return func(i int, c float64) (float64, error) {
			if anyNaN(count[i], total[i]) {
				return math.NaN(), nil
			}
			v, err := limit(count[i], total[i], c)
			return v * multiplier, err
		}
	}
	if err := addIntervals(out, levels, bound(confidence.WilsonLower), bound(confidence.WilsonUpper)); err != nil {
		return nil, err
	}

	if opts.Metadata {
		statistic := "Proportion of " + formatNumber(multiplier)
		if multiplier == 100 {
			statistic = "Percentage"
		}
		if err := addMetadata(out, statistic, levels, []string{stats.MethodWilson}); err != nil {
			return nil, err
		}
	}
	return out, nil
}
