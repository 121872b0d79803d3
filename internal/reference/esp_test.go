package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"phstats/internal/errors"
	"phstats/internal/frame"
)

func ageLabels() []string {
	return []string{
		"<=4", "5-9", "10-14", "15-19", "20-24", "25-29", "30-34",
		"35-39", "40-44", "45-49", "50-54", "55-59", "60-64",
		"65-69", "70-74", "75-79", "80-84", "85-89", "90 and over",
	}
}

func TestJoinESP_Ungrouped(t *testing.T) {
	labels := ageLabels()
	// reverse so the join has to order by age
	reversed := make([]string, len(labels))
	for i, l := range labels {
		reversed[len(labels)-1-i] = l
	}
	f, err := frame.New(frame.TextColumn("age", reversed))
	require.NoError(t, err)

	joined, err := JoinESP(f, "age", nil)
	require.NoError(t, err)

	bands, _ := joined.Strings(ESPBandColumn)
	pops, _ := joined.Floats(ESPPopulationColumn)
	assert.Equal(t, "90+", bands[0])
	assert.Equal(t, 1000.0, pops[0])
	assert.Equal(t, "0-4", bands[18])
	assert.Equal(t, 5000.0, pops[18])
	assert.Equal(t, 100000.0, floats.Sum(pops))
}

func TestJoinESP_Grouped(t *testing.T) {
	labels := append(ageLabels(), ageLabels()...)
	areas := make([]string, len(labels))
	for i := range areas {
		areas[i] = "A"
		if i >= ESPBands {
			areas[i] = "B"
		}
	}
	f, err := frame.New(frame.TextColumn("area", areas), frame.TextColumn("age", labels))
	require.NoError(t, err)

	joined, err := JoinESP(f, "age", []string{"area"})
	require.NoError(t, err)
	assert.Equal(t, 38, joined.RowCount())

	bands, _ := joined.Strings(ESPBandColumn)
	assert.Equal(t, "0-4", bands[0])
	assert.Equal(t, "0-4", bands[19])
	assert.Equal(t, "90+", bands[37])
}

func TestJoinESP_Errors(t *testing.T) {
	t.Run("wrong row count", func(t *testing.T) {
		f, err := frame.New(frame.TextColumn("age", ageLabels()[:18]))
		require.NoError(t, err)
		_, err = JoinESP(f, "age", nil)
		assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))
	})

	t.Run("duplicate minimum ages", func(t *testing.T) {
		labels := ageLabels()
		labels[0] = "<5"
		f, err := frame.New(frame.TextColumn("age", labels))
		require.NoError(t, err)
		_, err = JoinESP(f, "age", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate minimum ages")
	})

	t.Run("label without a number", func(t *testing.T) {
		labels := ageLabels()
		labels[0] = "infants"
		f, err := frame.New(frame.TextColumn("age", labels))
		require.NoError(t, err)
		_, err = JoinESP(f, "age", nil)
		assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))
	})

	t.Run("missing column", func(t *testing.T) {
		f, err := frame.New(frame.TextColumn("age", ageLabels()))
		require.NoError(t, err)
		_, err = JoinESP(f, "ageband", nil)
		assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
	})
}
