package calculators

import (
	"math"

	"phstats/internal/confidence"
	"phstats/internal/errors"
	"phstats/internal/frame"
	"phstats/internal/validation"
)

// Indirect standardisation output columns
const (
	ColObserved = "Observed"
	ColExpected = "Expected"
	ColRefRate  = "ref_rate"
)

// IndirectOptions configure ISRate and ISRatio
type IndirectOptions struct {
	Options

	// Reference holds the reference numerator and denominator, joined to the
	// data on RefJoinLeft/RefJoinRight. Without it both columns are read from
	// the data.
	Reference    *frame.Frame
	RefJoinLeft  []string
	RefJoinRight []string

	// Observed holds observed event totals in its numerator column, joined to
	// the group columns on ObsJoinLeft/ObsJoinRight. Without it observed
	// events are summed from the data.
	Observed     *frame.Frame
	ObsJoinLeft  []string
	ObsJoinRight []string
}

type indirectResult struct {
	out      *frame.Frame
	levels   []float64
	observed []float64
	expected []float64
	refNum   []float64
	refDen   []float64
}

// ISRate calculates indirectly standardised rates per multiplier: observed
// over expected events, scaled by the overall reference rate. Intervals are
// Byar's (exact below 10 events) on the observed count.
func ISRate(f *frame.Frame, numerator, denominator, refNumerator, refDenominator string, multiplier float64, opts IndirectOptions) (*frame.Frame, error) {
	if err := validation.Multiplier(multiplier); err != nil {
		return nil, err
	}
	r, err := indirect(f, numerator, denominator, refNumerator, refDenominator, opts)
	if err != nil {
		return nil, err
	}

	refRate := make([]float64, len(r.observed))
	for i := range refRate {
		refRate[i] = r.refNum[i] / r.refDen[i] * multiplier
	}
	if err := r.out.AddFloat(ColRefRate, refRate); err != nil {
		return nil, err
	}
	if err := r.finish(func(i int) float64 { return refRate[i] }); err != nil {
		return nil, err
	}

	if opts.Metadata {
		if err := addMetadata(r.out, "indirectly standardised rate per "+formatNumber(multiplier), r.levels, r.methods()); err != nil {
			return nil, err
		}
	}
	return r.out, nil
}

// ISRatio calculates indirectly standardised ratios, observed over expected
// events times refValue (usually 1 or 100).
func ISRatio(f *frame.Frame, numerator, denominator, refNumerator, refDenominator string, refValue float64, opts IndirectOptions) (*frame.Frame, error) {
	if !(refValue > 0) || math.IsInf(refValue, 0) {
		return nil, errors.Newf(errors.CodeInvalidInput, "reference value must be a positive number, got %v", refValue)
	}
	r, err := indirect(f, numerator, denominator, refNumerator, refDenominator, opts)
	if err != nil {
		return nil, err
	}
	if err := r.finish(func(int) float64 { return refValue }); err != nil {
		return nil, err
	}

	if opts.Metadata {
		if err := addMetadata(r.out, "indirectly standardised ratio x "+formatNumber(refValue), r.levels, r.methods()); err != nil {
			return nil, err
		}
	}
	return r.out, nil
}

// indirect validates the inputs and computes observed and expected events per group
func indirect(f *frame.Frame, numerator, denominator, refNumerator, refDenominator string, opts IndirectOptions) (*indirectResult, error) {
	levels, err := opts.confidence()
	if err != nil {
		return nil, err
	}
	if err := (validation.Data{Numerator: denominator, GroupBy: opts.GroupBy}).Check(f); err != nil {
		return nil, err
	}
	if opts.Observed == nil {
		if err := (validation.Data{Numerator: numerator}).Check(f); err != nil {
			return nil, err
		}
	}

	data := f
	if opts.Reference != nil {
		if len(opts.RefJoinLeft) == 0 || len(opts.RefJoinLeft) != len(opts.RefJoinRight) {
			return nil, errors.InvalidInput("ref_join_left and ref_join_right must name the same number of columns when reference data is given")
		}
		if err := (validation.Data{Numerator: refNumerator, Denominator: refDenominator, GroupBy: opts.RefJoinRight}).Check(opts.Reference); err != nil {
			return nil, errors.Wrap(err, "reference data")
		}
		if err := validation.Columns(f, opts.RefJoinLeft...); err != nil {
			return nil, err
		}
		if err := validation.RowsPerGroup(f, opts.GroupBy, opts.Reference.RowCount()); err != nil {
			return nil, err
		}
		ref := dropShared(f, opts.Reference, opts.RefJoinLeft, opts.RefJoinRight)
		if data, err = f.LeftJoin(ref, opts.RefJoinLeft, opts.RefJoinRight); err != nil {
			return nil, err
		}
	} else if err := (validation.Data{Numerator: refNumerator, Denominator: refDenominator}).Check(f); err != nil {
		return nil, err
	}

	dens, _ := data.Floats(denominator)
	refNums, _ := data.Floats(refNumerator)
	refDens, _ := data.Floats(refDenominator)
	expectedRows := make([]float64, data.RowCount())
	for i := range expectedRows {
		expectedRows[i] = zeroNaN(refNums[i]) / refDens[i] * zeroNaN(dens[i])
	}

	out, groups, err := groupRows(data, opts.GroupBy, true)
	if err != nil {
		return nil, err
	}

	r := &indirectResult{
		out:      out,
		levels:   levels,
		observed: make([]float64, len(groups)),
		expected: make([]float64, len(groups)),
		refNum:   make([]float64, len(groups)),
		refDen:   make([]float64, len(groups)),
	}
	for i, rows := range groups {
		r.expected[i] = sumStrict(expectedRows, rows)
		r.refNum[i] = sumSkip(refNums, rows)
		r.refDen[i] = sumStrict(refDens, rows)
	}

	if opts.Observed != nil {
		if r.observed, err = joinObserved(out, numerator, opts); err != nil {
			return nil, err
		}
	} else {
		nums, _ := data.Floats(numerator)
		for i, rows := range groups {
			r.observed[i] = sumSkip(nums, rows)
		}
	}

	if err := out.AddFloat(ColObserved, r.observed); err != nil {
		return nil, err
	}
	if err := out.AddFloat(ColExpected, r.expected); err != nil {
		return nil, err
	}
	return r, nil
}

// joinObserved looks up the observed total of every group. Several rows for
// one group are added; a group with no row gets NaN.
func joinObserved(keys *frame.Frame, numerator string, opts IndirectOptions) ([]float64, error) {
	if len(opts.ObsJoinLeft) == 0 || len(opts.ObsJoinLeft) != len(opts.ObsJoinRight) {
		return nil, errors.InvalidInput("obs_join_left and obs_join_right must name the same number of columns when observed data is given")
	}
	for _, k := range opts.ObsJoinLeft {
		if !keys.Has(k) {
			return nil, errors.Newf(errors.CodeValidationError, "observed data can only be joined on group columns; %q is not one", k)
		}
	}
	if err := (validation.Data{Numerator: numerator, GroupBy: opts.ObsJoinRight}).Check(opts.Observed); err != nil {
		return nil, errors.Wrap(err, "observed data")
	}

	g, err := opts.Observed.GroupBy(opts.ObsJoinRight...)
	if err != nil {
		return nil, err
	}
	totals, err := g.Sum(numerator)
	if err != nil {
		return nil, err
	}
	lookup := g.Keys()
	if err := lookup.AddFloat(ColObserved, totals); err != nil {
		return nil, err
	}

	left, err := keys.Select(opts.ObsJoinLeft...)
	if err != nil {
		return nil, err
	}
	joined, err := left.LeftJoin(lookup, opts.ObsJoinLeft, opts.ObsJoinRight)
	if err != nil {
		return nil, err
	}
	return joined.Floats(ColObserved)
}

// finish adds Value and the intervals, both scaled by scale(i)/Expected
func (r *indirectResult) finish(scale func(i int) float64) error {
	value := make([]float64, len(r.observed))
	for i := range value {
		value[i] = r.observed[i] / r.expected[i] * scale(i)
	}
	if err := r.out.AddFloat(ColValue, value); err != nil {
		return err
	}
	per := func(i int) float64 { return scale(i) / r.expected[i] }
	return addIntervals(r.out, r.levels,
		countBound(r.observed, confidence.PoissonLower, per),
		countBound(r.observed, confidence.PoissonUpper, per),
	)
}

func (r *indirectResult) methods() []string {
	out := make([]string, len(r.observed))
	for i, o := range r.observed {
		out[i] = confidence.PoissonMethod(o)
	}
	return out
}

func zeroNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
