package calculators

import (
	"math"

	mstats "github.com/montanaflynn/stats"

	"phstats/domain/stats"
	"phstats/internal/confidence"
	"phstats/internal/frame"
	"phstats/internal/validation"
)

// Mean output columns
const (
	ColValueSum   = "value_sum"
	ColValueCount = "value_count"
	ColStdev      = "stdev"
)

// Mean calculates the mean of a column per group with Student's t intervals.
// Missing values are not counted but make the sum and standard deviation of
// their group NaN. Without GroupBy the whole frame is one group.
func Mean(f *frame.Frame, column string, opts Options) (*frame.Frame, error) {
	levels, err := opts.confidence()
	if err != nil {
		return nil, err
	}
	if err := (validation.Data{Numerator: column, GroupBy: opts.GroupBy}).Check(f); err != nil {
		return nil, err
	}

	values, _ := f.Floats(column)
	out, groups, err := groupRows(f, opts.GroupBy, true)
	if err != nil {
		return nil, err
	}

	sum := make([]float64, len(groups))
	count := make([]float64, len(groups))
	sd := make([]float64, len(groups))
	value := make([]float64, len(groups))
	for i, rows := range groups {
		data := make(mstats.Float64Data, len(rows))
		for j, r := range rows {
			data[j] = values[r]
			if !math.IsNaN(values[r]) {
				count[i]++
			}
		}
		if sum[i], err = mstats.Sum(data); err != nil {
			sum[i] = math.NaN()
		}
		if sd[i], err = mstats.StandardDeviationSample(data); err != nil {
			sd[i] = math.NaN()
		}
		value[i] = sum[i] / count[i]
	}

	for _, c := range []struct {
		name   string
		values []float64
	}{
		{ColValueSum, sum}, {ColValueCount, count}, {ColStdev, sd}, {ColValue, value},
	} {
		if err := out.AddFloat(c.name, c.values); err != nil {
			return nil, err
		}
	}

	halfWidth := func(i int, c float64) (float64, error) {
		return confidence.StudentTHalfWidth(count[i], sd[i], c)
	}
	if err := addIntervals(out, levels,
		func(i int, c float64) (float64, error) {
			h, err := halfWidth(i, c)
			return value[i] - h, err
		},
		func(i int, c float64) (float64, error) {
			h, err := halfWidth(i, c)
			return value[i] + h, err
		},
	); err != nil {
		return nil, err
	}

	if opts.Metadata {
		if err := addMetadata(out, "Mean", levels, []string{stats.MethodStudentT}); err != nil {
			return nil, err
		}
	}
	return out, nil
}
