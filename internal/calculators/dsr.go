package calculators

import (
	"math"

	"phstats/domain/stats"
	"phstats/internal/confidence"
	"phstats/internal/errors"
	"phstats/internal/frame"
	"phstats/internal/reference"
	"phstats/internal/validation"
)

// DSR output columns
const (
	ColTotalCount = "Total Count"
	ColTotalPop   = "Total Pop"
)

// DSROptions configure where the standard populations come from
type DSROptions struct {
	Options

	// EuropeanStandard joins the 2013 European Standard Population; the
	// reference column argument then names the age band column.
	EuropeanStandard bool

	// Reference, when set, is joined to the data on RefJoinLeft/RefJoinRight
	// and must hold the reference column. It needs one row per row of each group.
	Reference    *frame.Frame
	RefJoinLeft  []string
	RefJoinRight []string
}

// DSR calculates directly standardised rates per multiplier with Dobson
// intervals. refDenominator names the standard population column, found in
// the data, in opts.Reference, or (with EuropeanStandard) the age band column
// to join the European Standard Population on.
//
// Without GroupBy the whole frame is one group. Groups with fewer than 10
// events get a NaN value and NaN intervals.
func DSR(f *frame.Frame, numerator, denominator, refDenominator string, multiplier float64, opts DSROptions) (*frame.Frame, error) {
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

	data, refColumn, err := dsrReference(f, refDenominator, opts)
	if err != nil {
		return nil, err
	}

	nums, _ := data.Floats(numerator)
	dens, _ := data.Floats(denominator)
	refs, err := validation.NumericColumn(data, refColumn)
	if err != nil {
		return nil, err
	}
	for _, v := range refs {
		if math.IsNaN(v) {
			return nil, errors.ValidationError("the reference population must be given for every row; check the join columns")
		}
	}

	weighted := make([]float64, data.RowCount())
	squared := make([]float64, data.RowCount())
	for i := range weighted {
		n := nums[i]
		if math.IsNaN(n) {
			n = 0
		}
		w := refs[i] / dens[i]
		weighted[i] = n * w
		squared[i] = n * w * w
	}

	out, groups, err := groupRows(data, opts.GroupBy, true)
	if err != nil {
		return nil, err
	}

	count := make([]float64, len(groups))
	pop := make([]float64, len(groups))
	value := make([]float64, len(groups))
	variance := make([]float64, len(groups))
	for i, rows := range groups {
		count[i] = sumSkip(nums, rows)
		pop[i] = sumStrict(dens, rows)
		ref := sumStrict(refs, rows)
		value[i] = sumStrict(weighted, rows) / ref * multiplier
		variance[i] = sumStrict(squared, rows) / (ref * ref)
	}

	bound := func(limit func(float64, float64, float64, float64, float64) (float64, error)) boundFunc {
		return func(i int, c float64) (float64, error) {
			if anyNaN(value[i], variance[i]) {
				return math.NaN(), nil
			}
			return limit(value[i], count[i], variance[i], c, multiplier)
		}
	}
	lower, upper := bound(confidence.DobsonLower), bound(confidence.DobsonUpper)

	if err := out.AddFloat(ColTotalCount, count); err != nil {
		return nil, err
	}
	if err := out.AddFloat(ColTotalPop, pop); err != nil {
		return nil, err
	}
	// intervals below the threshold are already NaN
	masked := make([]float64, len(value))
	for i, v := range value {
		masked[i] = v
		if count[i] < confidence.SmallCountThreshold {
			masked[i] = math.NaN()
		}
	}
	if err := out.AddFloat(ColValue, masked); err != nil {
		return nil, err
	}
	if err := addIntervals(out, levels, lower, upper); err != nil {
		return nil, err
	}

	if opts.Metadata {
		if err := addMetadata(out, "DSR per "+formatNumber(multiplier), levels, []string{stats.MethodDobson}); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// dsrReference returns the data with its standard population column attached
func dsrReference(f *frame.Frame, refDenominator string, opts DSROptions) (*frame.Frame, string, error) {
	switch {
	case opts.EuropeanStandard:
		joined, err := reference.JoinESP(f, refDenominator, opts.GroupBy)
		if err != nil {
			return nil, "", err
		}
		return joined, reference.ESPPopulationColumn, nil

	case opts.Reference != nil:
		if len(opts.RefJoinLeft) == 0 || len(opts.RefJoinLeft) != len(opts.RefJoinRight) {
			return nil, "", errors.InvalidInput("ref_join_left and ref_join_right must name the same number of columns when reference data is given")
		}
		if err := (validation.Data{Numerator: refDenominator, GroupBy: opts.RefJoinRight}).Check(opts.Reference); err != nil {
			return nil, "", errors.Wrap(err, "reference data")
		}
		if err := validation.Columns(f, opts.RefJoinLeft...); err != nil {
			return nil, "", err
		}
		if err := validation.RowsPerGroup(f, opts.GroupBy, opts.Reference.RowCount()); err != nil {
			return nil, "", err
		}
		ref := dropShared(f, opts.Reference, opts.RefJoinLeft, opts.RefJoinRight)
		joined, err := f.LeftJoin(ref, opts.RefJoinLeft, opts.RefJoinRight)
		if err != nil {
			return nil, "", err
		}
		return joined, refDenominator, nil

	default:
		if err := validation.Columns(f, refDenominator); err != nil {
			return nil, "", err
		}
		return f, refDenominator, nil
	}
}
