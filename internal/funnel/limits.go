package funnel

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"phstats/domain/stats"
	"phstats/internal/errors"
)

// Limits calculates the 100 row reference curve of a funnel plot: the 2 and 3
// sigma control limits around the weighted baseline of all records.
//
// The x-axis runs from a rounded minimum (or zero, when the largest
// denominator is more than twice the smallest) to a rounded maximum, spaced
// geometrically. Proportions use SigmaAdjustment; ratios and rates invert the
// Poisson distribution with PoissonFunnel.
func Limits(records []Record, opts Options) ([]stats.FunnelLimitRow, error) {
	in, err := validateRecords(records)
	if err != nil {
		return nil, err
	}
	if err := validateStatistic(records, in, opts, true); err != nil {
		return nil, err
	}

	denominators := dropNaN(derivedDenominators(records, in, opts))
	if len(denominators) == 0 {
		return nil, errors.ValidationError("no record has a usable denominator")
	}

	average := floats.Sum(numerators(records)) / floats.Sum(denominators)
	minDenominator := floats.Min(denominators)
	maxDenominator := floats.Max(denominators)

	axisMin, axisMax := axisRange(minDenominator, maxDenominator, average, opts)
	axis := logAxis(axisMin, axisMax, opts.Statistic == stats.StatisticRatio)

	rows := make([]stats.FunnelLimitRow, len(axis))
	for i, x := range axis {
		var row stats.FunnelLimitRow
		switch opts.Statistic {
		case stats.StatisticProportion:
			row, err = proportionRow(x, average, opts)
		case stats.StatisticRatio:
			row, err = ratioRow(x, opts)
		case stats.StatisticRate:
			row, err = rateRow(x, average, opts)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "funnel limit at axis value %v", x)
		}
		rows[i] = row
	}

	return rows, nil
}

func axisRange(minDenominator, maxDenominator, average float64, opts Options) (float64, float64) {
	years := 1.0
	if opts.Statistic == stats.StatisticRate {
		years = opts.YearsOfData
	}

	axisMin := 0.0
	if maxDenominator <= 2*minDenominator {
		axisMin = SignifFloor(minDenominator/years) * years
	}
	axisMax := SignifCeiling(maxDenominator/years) * years

	// Rate funnels are drawn against events, not population
	if opts.Statistic == stats.StatisticRate {
		axisMin = math.Floor(axisMin * average)
		axisMax = math.Ceil(axisMax * average)
	}
	return axisMin, axisMax
}

func proportionRow(population, average float64, opts Options) (stats.FunnelLimitRow, error) {
	row := emptyRow(population)
	row.Baseline = average * opts.Multiplier

	limits := []struct {
		p    float64
		side stats.Side
		dst  *float64
	}{
		{TwoSigmaProbability, stats.SideLow, &row.Lower2Sigma},
		{TwoSigmaProbability, stats.SideHigh, &row.Upper2Sigma},
		{ThreeSigmaProbability, stats.SideLow, &row.Lower3Sigma},
		{ThreeSigmaProbability, stats.SideHigh, &row.Upper3Sigma},
	}
	for _, l := range limits {
		v, err := SigmaAdjustment(l.p, population, average, l.side, opts.Multiplier)
		if err != nil {
			return row, err
		}
		if l.side == stats.SideLow {
			v = math.Max(0, v)
		} else {
			v = math.Min(opts.Multiplier, v)
		}
		*l.dst = v
	}
	return row, nil
}

func ratioRow(observed float64, opts Options) (stats.FunnelLimitRow, error) {
	row := emptyRow(observed)

	expected, err := poissonLimits(observed)
	if err != nil {
		return row, err
	}
	row.Lower2SigmaExpected = expected[0]
	row.Upper2SigmaExpected = expected[1]
	row.Lower3SigmaExpected = expected[2]
	row.Upper3SigmaExpected = expected[3]

	for i, dst := range limitFields(&row) {
		limit := observed / expected[i]
		if opts.RatioType == stats.RatioCount {
			limit = limit - 1
		} else {
			limit = limit * 100
		}
		*dst = limit
	}
	return row, nil
}

func rateRow(events, average float64, opts Options) (stats.FunnelLimitRow, error) {
	row := emptyRow(events)
	row.Baseline = average * opts.Multiplier

	expected, err := poissonLimits(events)
	if err != nil {
		return row, err
	}

	populations := []*float64{
		&row.Lower2SigmaPopulation,
		&row.Upper2SigmaPopulation,
		&row.Lower3SigmaPopulation,
		&row.Upper3SigmaPopulation,
	}
	for i, dst := range limitFields(&row) {
		population := expected[i] / average
		*dst = events / population * opts.Multiplier
		*populations[i] = population / opts.YearsOfData
	}
	return row, nil
}

// poissonLimits returns the expected counts at the lower 2σ, upper 2σ, lower 3σ
// and upper 3σ limits. A lower limit needs the expectation the count is
// improbably high for, hence the crossed sides.
func poissonLimits(observed float64) ([4]float64, error) {
	var out [4]float64
	specs := [4]struct {
		p    float64
		side stats.Side
	}{
		{TwoSigmaTail, stats.SideHigh},
		{TwoSigmaTail, stats.SideLow},
		{ThreeSigmaTail, stats.SideHigh},
		{ThreeSigmaTail, stats.SideLow},
	}
	for i, s := range specs {
		v, err := PoissonFunnel(observed, s.p, s.side)
		if err != nil {
			return out, err
		}
		out[i] = v
	}
	return out, nil
}

func limitFields(row *stats.FunnelLimitRow) [4]*float64 {
	return [4]*float64{&row.Lower2Sigma, &row.Upper2Sigma, &row.Lower3Sigma, &row.Upper3Sigma}
}

func emptyRow(axis float64) stats.FunnelLimitRow {
	nan := math.NaN()
	return stats.FunnelLimitRow{
		Axis:                  axis,
		Lower2Sigma:           nan,
		Upper2Sigma:           nan,
		Lower3Sigma:           nan,
		Upper3Sigma:           nan,
		Baseline:              nan,
		Lower2SigmaExpected:   nan,
		Upper2SigmaExpected:   nan,
		Lower3SigmaExpected:   nan,
		Upper3SigmaExpected:   nan,
		Lower2SigmaPopulation: nan,
		Upper2SigmaPopulation: nan,
		Lower3SigmaPopulation: nan,
		Upper3SigmaPopulation: nan,
	}
}
