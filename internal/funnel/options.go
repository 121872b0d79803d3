package funnel

import (
	"math"

	"phstats/domain/stats"
	"phstats/internal/errors"
)

// Record is one area's input to the funnel calculations. Denominator and Rate
// are NaN when the caller has no such column.
type Record struct {
	Numerator   float64
	Denominator float64
	Rate        float64
}

// Options selects the statistic a funnel is drawn for
type Options struct {
	Statistic   stats.StatisticType
	Multiplier  float64         // e.g. 100 for percentages, 100000 for rates per 100,000
	RateType    stats.RateType  // rate statistics only
	RatioType   stats.RatioType // ratio statistics only
	YearsOfData float64         // rate statistics only
}

// inputs summarises what the records carry after validation
type inputs struct {
	hasDenominator bool
}

func validateRecords(records []Record) (inputs, error) {
	if len(records) == 0 {
		return inputs{}, errors.ValidationError("at least one record is required")
	}

	withDenominator := 0
	for _, r := range records {
		if math.IsNaN(r.Numerator) {
			return inputs{}, errors.ValidationError("numerators must be provided for all records, even when their values are 0")
		}
		if r.Numerator < 0 {
			return inputs{}, errors.ValidationError("no negative numbers can be used to calculate these statistics")
		}
		if !math.IsNaN(r.Denominator) {
			withDenominator++
			if r.Denominator <= 0 {
				return inputs{}, errors.ValidationError("denominators must be greater than zero")
			}
		}
	}
	if withDenominator > 0 && withDenominator < len(records) {
		return inputs{}, errors.ValidationError("denominators must be provided for all records")
	}

	return inputs{hasDenominator: withDenominator > 0}, nil
}

func validateStatistic(records []Record, in inputs, opts Options, needYears bool) error {
	switch opts.Statistic {
	case stats.StatisticRate:
		if opts.RateType != stats.RateDSR && opts.RateType != stats.RateCrude {
			return errors.InvalidInput("only 'dsr' and 'crude' are valid rate types")
		}
		if !(opts.Multiplier > 0) {
			return errors.InvalidInput("a positive multiplier is required for rate statistics")
		}
		if needYears && !(opts.YearsOfData > 0) {
			return errors.InvalidInput("years of data must be positive for rate statistics")
		}
		for _, r := range records {
			if !in.hasDenominator && r.Numerator == 0 {
				return errors.ValidationError("for rates, where there are 0 events for a record, a denominator must be provided")
			}
			// zero-event records fall back to their denominator
			if math.IsNaN(r.Rate) && r.Numerator != 0 {
				return errors.ValidationError("for rates, the rate must be provided for all records with events")
			}
		}
	case stats.StatisticProportion, stats.StatisticRatio:
		if !in.hasDenominator {
			return errors.InvalidInput("a denominator must be given for proportion and ratio statistics")
		}
		if opts.Statistic == stats.StatisticRatio && opts.RatioType != stats.RatioCount && opts.RatioType != stats.RatioISR {
			return errors.InvalidInput("ratio type must be given for ratio statistics: 'isr' or 'count'")
		}
		if opts.Statistic == stats.StatisticProportion && !(opts.Multiplier > 0) {
			return errors.InvalidInput("a positive multiplier is required for proportion statistics")
		}
	default:
		return errors.InvalidInput("statistic must be either 'proportion', 'ratio' or 'rate'")
	}
	return nil
}

// derivedDenominators converts each record into the denominator the funnel is
// plotted against. Rates recover a population from numerator and rate; a DSR
// with no events has no recoverable population and is NaN.
func derivedDenominators(records []Record, in inputs, opts Options) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		switch {
		case opts.Statistic != stats.StatisticRate:
			out[i] = r.Denominator
		case opts.RateType == stats.RateDSR && r.Numerator == 0:
			out[i] = math.NaN()
		case opts.RateType == stats.RateCrude && in.hasDenominator && r.Numerator == 0:
			out[i] = r.Denominator
		default:
			out[i] = opts.Multiplier * r.Numerator / r.Rate
		}
	}
	return out
}

func dropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func numerators(records []Record) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Numerator
	}
	return out
}
