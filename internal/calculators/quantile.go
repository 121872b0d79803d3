package calculators

import (
	"math"
	"sort"

	"phstats/internal/errors"
	"phstats/internal/frame"
	"phstats/internal/validation"
)

// Quantile output columns
const (
	ColNQuantiles = "nquantiles"
	ColNumRows    = "num_rows"
	ColRank       = "rank"
	ColQuantile   = "quantile"
	ColQInverted  = "qinverted"
)

// QuantileOutput selects the columns Quantile appends
type QuantileOutput string

const (
	// QuantileFull appends nquantiles, num_rows, rank, quantile and qinverted
	QuantileFull QuantileOutput = "full"
	// QuantileStandard appends only quantile
	QuantileStandard QuantileOutput = "standard"
)

// DefaultNQuantiles is used when QuantileOptions.NQuantiles is zero
const DefaultNQuantiles = 10

// QuantileOptions configure Quantile
type QuantileOptions struct {
	GroupBy    []string
	NQuantiles int
	// Invert puts the highest values in the lowest quantile
	Invert bool
	Output QuantileOutput // empty means QuantileFull
}

// Quantile assigns every row to a quantile of its group by rank of the value
// column, following the deprivation category method: ties share the lowest
// rank and groups with fewer values than quantiles get NaN. The input columns
// are kept and the quantile columns appended.
func Quantile(f *frame.Frame, column string, opts QuantileOptions) (*frame.Frame, error) {
	nq := opts.NQuantiles
	if nq == 0 {
		nq = DefaultNQuantiles
	}
	if nq < 1 {
		return nil, errors.Newf(errors.CodeInvalidInput, "nquantiles must be a positive integer, got %d", nq)
	}
	output := opts.Output
	if output == "" {
		output = QuantileFull
	}
	if output != QuantileFull && output != QuantileStandard {
		return nil, errors.Newf(errors.CodeInvalidInput, "output type must be %q or %q, got %q", QuantileFull, QuantileStandard, string(output))
	}
	if f == nil {
		return nil, errors.InvalidInput("data is required")
	}
	if err := validation.Columns(f, append([]string{column}, opts.GroupBy...)...); err != nil {
		return nil, err
	}
	values, err := validation.NumericColumn(f, column)
	if err != nil {
		return nil, err
	}

	g, err := f.GroupBy(opts.GroupBy...)
	if err != nil {
		return nil, err
	}

	n := f.RowCount()
	numRows := nanSlice(n)
	rank := nanSlice(n)
	quantile := nanSlice(n)
	for _, rows := range g.Groups {
		var present []float64
		for _, r := range rows {
			if !math.IsNaN(values[r]) {
				present = append(present, values[r])
			}
		}
		sort.Float64s(present)
		count := float64(len(present))

		for _, r := range rows {
			numRows[r] = count
			v := values[r]
			if math.IsNaN(v) {
				continue
			}
			rank[r] = minRank(present, v, opts.Invert)
			if count < float64(nq) {
				continue
			}
			q := math.Floor(float64(nq+1) - math.Ceil((count+1-rank[r])/(count/float64(nq))))
			if q == 0 {
				q = 1
			}
			quantile[r] = q
		}
	}

	for _, q := range quantile {
		if math.IsNaN(q) {
			logger.Warn("One or more groups had too few small areas with values to allow quantiles to be assigned")
			break
		}
	}

	out := f.Take(identity(n))
	if output == QuantileStandard {
		if err := out.AddFloat(ColQuantile, quantile); err != nil {
			return nil, err
		}
		return out, nil
	}

	direction := "lowest quantile represents lowest values"
	if opts.Invert {
		direction = "lowest quantile represents highest values"
	}
	nqs := make([]float64, n)
	for i := range nqs {
		nqs[i] = float64(nq)
	}
	for _, c := range []struct {
		name   string
		values []float64
	}{
		{ColNQuantiles, nqs}, {ColNumRows, numRows}, {ColRank, rank}, {ColQuantile, quantile},
	} {
		if err := out.AddFloat(c.name, c.values); err != nil {
			return nil, err
		}
	}
	if err := out.AddText(ColQInverted, repeat(direction, n)); err != nil {
		return nil, err
	}
	return out, nil
}

// minRank ranks v within the sorted values, ties taking the lowest rank.
// Descending ranks put the largest value first.
func minRank(sorted []float64, v float64, descending bool) float64 {
	if descending {
		above := len(sorted) - sort.Search(len(sorted), func(i int) bool { return sorted[i] > v })
		return float64(above + 1)
	}
	return float64(sort.SearchFloat64s(sorted, v) + 1)
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func identity(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}
