// Package calculators produces the public health statistics over a frame:
// proportions, crude rates, directly and indirectly standardised rates and
// ratios, means, quantiles and funnel plot tables. Each calculator returns a
// new frame with one row per group.
package calculators

import (
	"math"
	"strconv"
	"strings"

	"phstats/internal"
	"phstats/internal/errors"
	"phstats/internal/frame"
	"phstats/internal/validation"
)

// Output column names shared by the calculators
const (
	ColValue      = "Value"
	ColStatistic  = "Statistic"
	ColConfidence = "Confidence"
	ColMethod     = "Method"
)

var logger = internal.DefaultLogger.Component("Calculators")

// Options are the settings common to every calculator
type Options struct {
	// GroupBy lists the columns results are aggregated over
	GroupBy []string
	// Confidence lists the interval levels; nil means 0.95
	Confidence []float64
	// Metadata adds Statistic, Confidence and Method columns
	Metadata bool
}

func (o Options) confidence() ([]float64, error) {
	if o.Confidence == nil {
		return []float64{0.95}, nil
	}
	return validation.Confidence(o.Confidence)
}

// CIColumn names the column holding one bound at a confidence level:
// CIColumn(0.95, "lower") is "lower_95_ci", CIColumn(0.998, "upper") is
// "upper_99_8_ci". An empty side gives the bare "95_ci".
func CIColumn(level float64, side string) string {
	digits := strings.TrimPrefix(strconv.FormatFloat(level, 'f', -1, 64), "0.")
	for len(digits) < 2 {
		digits += "0"
	}
	if len(digits) > 2 {
		digits = digits[:2] + "_" + digits[2:]
	}
	name := digits + "_ci"
	if side != "" {
		name = side + "_" + name
	}
	return name
}

// ConfidenceLabel renders levels for the Confidence metadata column,
// e.g. "95%, 99.8%".
func ConfidenceLabel(levels []float64) string {
	parts := make([]string, len(levels))
	for i, c := range levels {
		if len(strconv.FormatFloat(c, 'f', -1, 64)) < 5 {
			parts[i] = strconv.Itoa(int(c*100)) + "%"
		} else {
			parts[i] = strconv.FormatFloat(c*100, 'f', -1, 64) + "%"
		}
	}
	return strings.Join(parts, ", ")
}

// formatNumber renders multipliers inside statistic labels
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// addMetadata appends the metadata columns. levels may be nil when the output
// has no intervals; methods is nil (no Method column), one value for every
// row, or one value per row.
func addMetadata(out *frame.Frame, statistic string, levels []float64, methods []string) error {
	n := out.RowCount()
	if err := out.AddText(ColStatistic, repeat(statistic, n)); err != nil {
		return err
	}
	if len(levels) > 0 {
		if err := out.AddText(ColConfidence, repeat(ConfidenceLabel(levels), n)); err != nil {
			return err
		}
	}
	switch {
	case methods == nil:
		return nil
	case len(methods) == 1:
		return out.AddText(ColMethod, repeat(methods[0], n))
	default:
		return out.AddText(ColMethod, methods)
	}
}

// boundFunc computes one interval bound for output row i
type boundFunc func(i int, level float64) (float64, error)

// addIntervals appends lower and upper columns for every level
func addIntervals(out *frame.Frame, levels []float64, lower, upper boundFunc) error {
	n := out.RowCount()
	for _, c := range levels {
		lo := make([]float64, n)
		hi := make([]float64, n)
		for i := 0; i < n; i++ {
			var err error
			if lo[i], err = lower(i, c); err != nil {
				return errors.Wrapf(err, "lower %s", CIColumn(c, ""))
			}
			if hi[i], err = upper(i, c); err != nil {
				return errors.Wrapf(err, "upper %s", CIColumn(c, ""))
			}
		}
		if err := out.AddFloat(CIColumn(c, "lower"), lo); err != nil {
			return err
		}
		if err := out.AddFloat(CIColumn(c, "upper"), hi); err != nil {
			return err
		}
	}
	return nil
}

// groupRows splits f by the group columns. Without group columns every row
// is its own group, unless single is set, which makes the whole frame one
// group. keys holds the group columns, one row per group.
func groupRows(f *frame.Frame, groupBy []string, single bool) (keys *frame.Frame, groups [][]int, err error) {
	if len(groupBy) == 0 && !single {
		groups = make([][]int, f.RowCount())
		for i := range groups {
			groups[i] = []int{i}
		}
		keys, _ = frame.New()
		keys = keys.Take(make([]int, f.RowCount()))
		return keys, groups, nil
	}
	g, err := f.GroupBy(groupBy...)
	if err != nil {
		return nil, nil, err
	}
	return g.Keys(), g.Groups, nil
}

// sumStrict adds the values of the given rows; any NaN makes the sum NaN
func sumStrict(values []float64, rows []int) float64 {
	total := 0.0
	for _, r := range rows {
		total += values[r]
	}
	return total
}

// sumSkip adds the values of the given rows, skipping NaN
func sumSkip(values []float64, rows []int) float64 {
	total := 0.0
	for _, r := range rows {
		if !math.IsNaN(values[r]) {
			total += values[r]
		}
	}
	return total
}

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}

func anyNaN(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// dropShared removes columns of ref that f already has, apart from join keys
func dropShared(f, ref *frame.Frame, keys ...[]string) *frame.Frame {
	isKey := make(map[string]bool)
	for _, ks := range keys {
		for _, k := range ks {
			isKey[k] = true
		}
	}
	var shared []string
	for _, name := range ref.Names() {
		if f.Has(name) && !isKey[name] {
			shared = append(shared, name)
		}
	}
	return ref.Drop(shared...)
}
