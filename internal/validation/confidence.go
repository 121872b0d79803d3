package validation

import (
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"phstats/internal/errors"
)

// Accepted range of confidence levels: [MinConfidence, MaxConfidence)
const (
	MinConfidence = 0.9
	MaxConfidence = 1.0

	confidenceDecimals = 4
)

// Confidence checks a list of confidence levels and returns them rounded to 4
// decimal places, half to even. Levels must lie in [0.9, 1) and must not
// repeat once rounded.
func Confidence(levels []float64) ([]float64, error) {
	if len(levels) == 0 {
		return nil, errors.InvalidInput("at least one confidence level is required")
	}

	out := make([]float64, len(levels))
	for i, c := range levels {
		if math.IsNaN(c) || c < MinConfidence || c >= MaxConfidence {
			return nil, errors.Newf(errors.CodeValidationError,
				"confidence intervals must be between 0.9 and 1, got %v", c)
		}
		out[i] = RoundHalfEven(c, confidenceDecimals)
	}

	counts := make(map[float64]int, len(out))
	for _, c := range out {
		counts[c]++
	}
	var dupes []float64
	for c, n := range counts {
		if n > 1 {
			dupes = append(dupes, c)
		}
	}
	if len(dupes) > 0 {
		sort.Float64s(dupes)
		parts := make([]string, len(dupes))
		for i, d := range dupes {
			parts[i] = strconv.FormatFloat(d, 'f', -1, 64)
		}
		return nil, errors.ValidationError(
			"there are duplicate confidence intervals (when rounded to 4dp): " + strings.Join(parts, ", "))
	}

	return out, nil
}

// RoundHalfEven rounds the shortest decimal rendering of v to the given
// number of places, ties to even: 0.99985 becomes 0.9998.
func RoundHalfEven(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(v, 'f', -1, 64))
	if !ok {
		return v
	}

	scale := new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(places)), nil))
	r.Mul(r, scale)

	// split into integer part and remainder, truncating toward zero
	num, den := r.Num(), r.Denom()
	q, rem := new(big.Int).QuoRem(num, den, new(big.Int))

	twice := new(big.Int).Mul(new(big.Int).Abs(rem), big.NewInt(2))
	switch cmp := twice.Cmp(den); {
	case cmp > 0, cmp == 0 && q.Bit(0) == 1:
		if num.Sign() < 0 {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}

	f, _ := new(big.Rat).SetFrac(q, scale.Num()).Float64()
	return f
}
