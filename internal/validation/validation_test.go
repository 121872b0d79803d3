package validation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phstats/internal/errors"
	"phstats/internal/frame"
)

func TestConfidence(t *testing.T) {
	got, err := Confidence([]float64{0.95, 0.998})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.95, 0.998}, got)

	got, err = Confidence([]float64{0.99985, 0.912345})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.9998, 0.9123}, got)

	tests := []struct {
		name   string
		levels []float64
		code   string
	}{
		{"empty", nil, errors.CodeInvalidInput},
		{"below range", []float64{0.89}, errors.CodeValidationError},
		{"one", []float64{1}, errors.CodeValidationError},
		{"nan", []float64{math.NaN()}, errors.CodeValidationError},
		{"duplicate", []float64{0.95, 0.95}, errors.CodeValidationError},
		{"duplicate after rounding", []float64{0.95, 0.95005}, errors.CodeValidationError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Confidence(tt.levels)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestConfidence_DuplicateMessage(t *testing.T) {
	_, err := Confidence([]float64{0.95, 0.998, 0.95})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0.95")
	assert.NotContains(t, err.Error(), "0.998")
}

func TestRoundHalfEven(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.99985, 0.9998},
		{0.99975, 0.9998},
		{0.91234, 0.9123},
		{0.91236, 0.9124},
		{0.95, 0.95},
		{-0.00005, 0},
		{-0.00015, -0.0002},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundHalfEven(tt.in, 4), "%v", tt.in)
	}
	assert.True(t, math.IsNaN(RoundHalfEven(math.NaN(), 4)))
}

func testFrame(t *testing.T, nums, dens []float64) *frame.Frame {
	t.Helper()
	f, err := frame.New(
		frame.TextColumn("area", []string{"A", "A", "B", "B"}[:len(nums)]),
		frame.FloatColumn("num", nums),
		frame.FloatColumn("den", dens),
	)
	require.NoError(t, err)
	return f
}

func TestDataCheck(t *testing.T) {
	ok := testFrame(t, []float64{1, 2, 3, 4}, []float64{10, 20, 30, 40})
	assert.NoError(t, Data{Numerator: "num", Denominator: "den", GroupBy: []string{"area"}}.Check(ok))

	err := Data{Numerator: "num", Other: []string{"age"}}.Check(ok)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	err = Data{Numerator: "area"}.Check(ok)
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))

	negative := testFrame(t, []float64{1, -2, 3, 4}, []float64{10, 20, 30, 40})
	err = Data{Numerator: "num"}.Check(negative)
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))

	zeroDen := testFrame(t, []float64{1, 2, 3, 4}, []float64{10, 0, 30, 40})
	assert.NoError(t, Data{Numerator: "num"}.Check(zeroDen))
	err = Data{Numerator: "num", Denominator: "den"}.Check(zeroDen)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "greater than zero")

	err = Data{Numerator: "num"}.Check(nil)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestMultiplier(t *testing.T) {
	assert.NoError(t, Multiplier(100000))
	assert.Error(t, Multiplier(0))
	assert.Error(t, Multiplier(math.NaN()))
	assert.Error(t, Multiplier(math.Inf(1)))
}

func TestRowsPerGroup(t *testing.T) {
	f := testFrame(t, []float64{1, 2, 3, 4}, []float64{10, 20, 30, 40})
	assert.NoError(t, RowsPerGroup(f, []string{"area"}, 2))
	assert.Error(t, RowsPerGroup(f, []string{"area"}, 3))
	assert.NoError(t, RowsPerGroup(f, nil, 4))
	assert.Error(t, RowsPerGroup(f, nil, 19))

	uneven := testFrame(t, []float64{1, 2, 3}, []float64{10, 20, 30})
	err := RowsPerGroup(uneven, []string{"area"}, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "same number of rows")
}
