package funnel

import (
	"gonum.org/v1/gonum/floats"

	"phstats/domain/stats"
	"phstats/internal/confidence"
	"phstats/internal/errors"
)

// Significance classifies every record against the 95% and 99.8% funnel limits
// around the aggregate average of all records. The returned slice is parallel
// to records.
//
// DSR records with fewer than 10 events are labelled not applicable.
func Significance(records []Record, opts Options) ([]stats.Significance, error) {
	in, err := validateRecords(records)
	if err != nil {
		return nil, err
	}
	if err := validateStatistic(records, in, opts, false); err != nil {
		return nil, err
	}

	switch opts.Statistic {
	case stats.StatisticProportion:
		return proportionSignificance(records)
	case stats.StatisticRatio:
		out := make([]stats.Significance, len(records))
		for i, r := range records {
			label, err := classifyRatio(r.Numerator, r.Denominator, 1)
			if err != nil {
				return nil, errors.Wrapf(err, "record %d", i)
			}
			out[i] = label
		}
		return out, nil
	default:
		return rateSignificance(records, in, opts)
	}
}

func proportionSignificance(records []Record) ([]stats.Significance, error) {
	nums := numerators(records)
	dens := make([]float64, len(records))
	for i, r := range records {
		if r.Numerator > r.Denominator {
			return nil, errors.ValidationError("numerators must be less than or equal to the denominator for a proportion statistic")
		}
		dens[i] = r.Denominator
	}
	average := floats.Sum(nums) / floats.Sum(dens)

	out := make([]stats.Significance, len(records))
	for i, r := range records {
		proportion := r.Numerator / r.Denominator

		var limits [4]float64
		specs := [4]struct {
			p    float64
			side stats.Side
		}{
			{ThreeSigmaProbability, stats.SideLow},
			{TwoSigmaProbability, stats.SideLow},
			{ThreeSigmaProbability, stats.SideHigh},
			{TwoSigmaProbability, stats.SideHigh},
		}
		for j, s := range specs {
			v, err := SigmaAdjustment(s.p, r.Denominator, average, s.side, 1)
			if err != nil {
				return nil, errors.Wrapf(err, "record %d", i)
			}
			limits[j] = v
		}

		switch {
		case proportion < limits[0]:
			out[i] = stats.SignificanceLow001
		case proportion < limits[1]:
			out[i] = stats.SignificanceLow025
		case proportion > limits[2]:
			out[i] = stats.SignificanceHigh001
		case proportion > limits[3]:
			out[i] = stats.SignificanceHigh025
		default:
			out[i] = stats.SignificanceNone
		}
	}
	return out, nil
}

func rateSignificance(records []Record, in inputs, opts Options) ([]stats.Significance, error) {
	derived := derivedDenominators(records, in, opts)
	average := floats.Sum(numerators(records)) / floats.Sum(dropNaN(derived))

	out := make([]stats.Significance, len(records))
	for i, r := range records {
		if opts.RateType == stats.RateDSR && r.Numerator < confidence.SmallCountThreshold {
			out[i] = stats.SignificanceNotApplicable
			continue
		}
		label, err := classifyRatio(r.Numerator, derived[i], average)
		if err != nil {
			return nil, errors.Wrapf(err, "record %d", i)
		}
		out[i] = label
	}
	return out, nil
}

// classifyRatio compares a reference value against the bounds of obs/expected.
// Bounds that cannot be computed (NaN expected) compare false and fall
// through to not significant.
func classifyRatio(obs, expected, reference float64) (stats.Significance, error) {
	checks := []struct {
		level float64
		side  stats.Side
		label stats.Significance
	}{
		{ThreeSigmaLevel, stats.SideLow, stats.SignificanceHigh001},
		{TwoSigmaLevel, stats.SideLow, stats.SignificanceHigh025},
		{ThreeSigmaLevel, stats.SideHigh, stats.SignificanceLow001},
		{TwoSigmaLevel, stats.SideHigh, stats.SignificanceLow025},
	}
	for _, c := range checks {
		bound, err := RatioSignificance(obs, expected, c.level, c.side)
		if err != nil {
			return "", err
		}
		if c.side == stats.SideLow && reference < bound {
			return c.label, nil
		}
		if c.side == stats.SideHigh && reference > bound {
			return c.label, nil
		}
	}
	return stats.SignificanceNone, nil
}
