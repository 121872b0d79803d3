package calculators

import (
	"phstats/domain/stats"
	"phstats/internal/errors"
	"phstats/internal/frame"
	"phstats/internal/funnel"
	"phstats/internal/validation"
)

// Funnel output columns
const (
	ColSignificance = "significance"
	ColDenomDerived = "denom_derived"
	// ChartSuffix is appended to the rate column name by FunnelPoints
	ChartSuffix = "_chart"
)

// FunnelOptions name the input columns and the statistic of a funnel plot
type FunnelOptions struct {
	funnel.Options

	Numerator   string
	Denominator string // optional for rates
	Rate        string // rates only
	// Metadata adds Statistic and Method columns to FunnelLimits
	Metadata bool
}

// FunnelLimits returns the 100 row table of control limits for a funnel plot
// of the frame's records.
func FunnelLimits(f *frame.Frame, opts FunnelOptions) (*frame.Frame, error) {
	records, err := funnelRecords(f, opts)
	if err != nil {
		return nil, err
	}
	rows, err := funnel.Limits(records, opts.Options)
	if err != nil {
		return nil, err
	}

	type column struct {
		name  string
		value func(stats.FunnelLimitRow) float64
	}
	var columns []column
	switch opts.Statistic {
	case stats.StatisticProportion:
		columns = []column{
			{"Population", func(r stats.FunnelLimitRow) float64 { return r.Axis }},
			{"lower_2s_limit", func(r stats.FunnelLimitRow) float64 { return r.Lower2Sigma }},
			{"upper_2s_limit", func(r stats.FunnelLimitRow) float64 { return r.Upper2Sigma }},
			{"lower_3s_limit", func(r stats.FunnelLimitRow) float64 { return r.Lower3Sigma }},
			{"upper_3s_limit", func(r stats.FunnelLimitRow) float64 { return r.Upper3Sigma }},
			{"baseline", func(r stats.FunnelLimitRow) float64 { return r.Baseline }},
		}
	case stats.StatisticRatio:
		columns = []column{
			{"Observed_events", func(r stats.FunnelLimitRow) float64 { return r.Axis }},
			{"lower_2s_exp_events", func(r stats.FunnelLimitRow) float64 { return r.Lower2SigmaExpected }},
			{"lower_2s_limit", func(r stats.FunnelLimitRow) float64 { return r.Lower2Sigma }},
			{"upper_2s_exp_events", func(r stats.FunnelLimitRow) float64 { return r.Upper2SigmaExpected }},
			{"upper_2s_limit", func(r stats.FunnelLimitRow) float64 { return r.Upper2Sigma }},
			{"lower_3s_exp_events", func(r stats.FunnelLimitRow) float64 { return r.Lower3SigmaExpected }},
			{"lower_3s_limit", func(r stats.FunnelLimitRow) float64 { return r.Lower3Sigma }},
			{"upper_3s_exp_events", func(r stats.FunnelLimitRow) float64 { return r.Upper3SigmaExpected }},
			{"upper_3s_limit", func(r stats.FunnelLimitRow) float64 { return r.Upper3Sigma }},
		}
	default:
		columns = []column{
			{"Events", func(r stats.FunnelLimitRow) float64 { return r.Axis }},
			{"lower_2s_population_1_year", func(r stats.FunnelLimitRow) float64 { return r.Lower2SigmaPopulation }},
			{"lower_2s_limit", func(r stats.FunnelLimitRow) float64 { return r.Lower2Sigma }},
			{"upper_2s_population_1_year", func(r stats.FunnelLimitRow) float64 { return r.Upper2SigmaPopulation }},
			{"upper_2s_limit", func(r stats.FunnelLimitRow) float64 { return r.Upper2Sigma }},
			{"lower_3s_population_1_year", func(r stats.FunnelLimitRow) float64 { return r.Lower3SigmaPopulation }},
			{"lower_3s_limit", func(r stats.FunnelLimitRow) float64 { return r.Lower3Sigma }},
			{"upper_3s_population_1_year", func(r stats.FunnelLimitRow) float64 { return r.Upper3SigmaPopulation }},
			{"upper_3s_limit", func(r stats.FunnelLimitRow) float64 { return r.Upper3Sigma }},
			{"baseline", func(r stats.FunnelLimitRow) float64 { return r.Baseline }},
		}
	}

	out, _ := frame.New()
	for _, c := range columns {
		values := make([]float64, len(rows))
		for i, r := range rows {
			values[i] = c.value(r)
		}
		if err := out.AddFloat(c.name, values); err != nil {
			return nil, err
		}
	}

	if opts.Metadata {
		statistic := string(opts.Statistic)
		method := stats.MethodPoisson
		switch opts.Statistic {
		case stats.StatisticProportion:
			method = stats.MethodWilson
		case stats.StatisticRatio:
			statistic += " (" + string(opts.RatioType) + ")"
		case stats.StatisticRate:
			statistic += " (" + string(opts.RateType) + " per " + formatNumber(opts.Multiplier) + ")"
		}
		if err := addMetadata(out, statistic, nil, []string{method}); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FunnelSignificance returns the input frame with a significance column
// classifying each record against the funnel's control limits.
func FunnelSignificance(f *frame.Frame, opts FunnelOptions) (*frame.Frame, error) {
	records, err := funnelRecords(f, opts)
	if err != nil {
		return nil, err
	}
	labels, err := funnel.Significance(records, opts.Options)
	if err != nil {
		return nil, err
	}

	text := make([]string, len(labels))
	for i, l := range labels {
		text[i] = string(l)
	}
	out := f.Take(identity(f.RowCount()))
	if err := out.AddText(ColSignificance, text); err != nil {
		return nil, err
	}
	return out, nil
}

// FunnelPoints returns the input frame with the rate to chart (rate column
// name plus "_chart") and the per-year derived denominator of each record.
func FunnelPoints(f *frame.Frame, opts FunnelOptions) (*frame.Frame, error) {
	if opts.Rate == "" {
		return nil, errors.InvalidInput("a rate column is required for funnel points")
	}
	records, err := funnelRecords(f, opts)
	if err != nil {
		return nil, err
	}
	points, err := funnel.Points(records, opts.Options)
	if err != nil {
		return nil, err
	}

	chart := make([]float64, len(points))
	derived := make([]float64, len(points))
	for i, p := range points {
		chart[i] = p.ChartRate
		derived[i] = p.DerivedDenominator
	}
	out := f.Take(identity(f.RowCount()))
	if err := out.AddFloat(opts.Rate+ChartSuffix, chart); err != nil {
		return nil, err
	}
	if err := out.AddFloat(ColDenomDerived, derived); err != nil {
		return nil, err
	}
	return out, nil
}

// funnelRecords reads the numerator, denominator and rate columns of f.
// Columns that are not named are NaN.
func funnelRecords(f *frame.Frame, opts FunnelOptions) ([]funnel.Record, error) {
	if f == nil {
		return nil, errors.InvalidInput("data is required")
	}
	if opts.Numerator == "" {
		return nil, errors.InvalidInput("a numerator column is required")
	}

	read := func(name string) ([]float64, error) {
		if name == "" {
			return nanSlice(f.RowCount()), nil
		}
		if err := validation.Columns(f, name); err != nil {
			return nil, err
		}
		return validation.NumericColumn(f, name)
	}
	nums, err := read(opts.Numerator)
	if err != nil {
		return nil, err
	}
	dens, err := read(opts.Denominator)
	if err != nil {
		return nil, err
	}
	rates, err := read(opts.Rate)
	if err != nil {
		return nil, err
	}

	records := make([]funnel.Record, f.RowCount())
	for i := range records {
		records[i] = funnel.Record{Numerator: nums[i], Denominator: dens[i], Rate: rates[i]}
	}
	return records, nil
}

