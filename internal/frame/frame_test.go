package frame

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phstats/internal/errors"
)

func sampleFrame(t *testing.T) *Frame {
	t.Helper()
	f, err := New(
		TextColumn("area", []string{"B", "A", "B", "", "A"}),
		FloatColumn("year", []float64{2021, 2022, 2021, 2021, 2021}),
		FloatColumn("events", []float64{3, 5, 7, 11, math.NaN()}),
	)
	require.NoError(t, err)
	return f
}

func TestNew(t *testing.T) {
	f := sampleFrame(t)
	assert.Equal(t, 5, f.RowCount())
	assert.Equal(t, 3, f.ColumnCount())
	assert.Equal(t, []string{"area", "year", "events"}, f.Names())
	assert.True(t, f.Has("year"))
	assert.False(t, f.Has("pop"))

	_, err := New(FloatColumn("a", []float64{1}), FloatColumn("a", []float64{2}))
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))

	_, err = New(FloatColumn("a", []float64{1}), FloatColumn("b", []float64{1, 2}))
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))
}

func TestAccessors(t *testing.T) {
	f := sampleFrame(t)

	events, err := f.Floats("events")
	require.NoError(t, err)
	assert.Equal(t, 7.0, events[2])

	_, err = f.Floats("area")
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))

	_, err = f.Floats("missing")
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	text, err := f.Strings("events")
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "5", "7", "11", ""}, text)

	require.NoError(t, f.AddFloat("events", []float64{1, 1, 1, 1, 1}))
	assert.Equal(t, 3, f.ColumnCount())
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "", FormatFloat(math.NaN()))
	assert.Equal(t, "1000000", FormatFloat(1e6))
	assert.Equal(t, "0.25", FormatFloat(0.25))
}

func TestSelectDrop(t *testing.T) {
	f := sampleFrame(t)

	sel, err := f.Select("events", "area")
	require.NoError(t, err)
	assert.Equal(t, []string{"events", "area"}, sel.Names())

	_, err = f.Select("nope")
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	assert.Equal(t, []string{"area", "events"}, f.Drop("year", "unknown").Names())
}

func TestGroupBy(t *testing.T) {
	f := sampleFrame(t)

	g, err := f.GroupBy("area", "year")
	require.NoError(t, err)
	require.Equal(t, 3, g.Len())
	assert.Equal(t, [][]int{{4}, {1}, {0, 2}}, g.Groups)

	keys := g.Keys()
	areas, _ := keys.Strings("area")
	years, _ := keys.Floats("year")
	assert.Equal(t, []string{"A", "A", "B"}, areas)
	assert.Equal(t, []float64{2021, 2022, 2021}, years)

	sums, err := g.Sum("events")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 5, 10}, sums)
}

func TestGroupBy_NumericKeysSortNumerically(t *testing.T) {
	f, err := New(FloatColumn("band", []float64{10, 9, 100}))
	require.NoError(t, err)

	g, err := f.GroupBy("band")
	require.NoError(t, err)
	bands, _ := g.Keys().Floats("band")
	assert.Equal(t, []float64{9, 10, 100}, bands)
}

func TestGroupBy_NoKeys(t *testing.T) {
	f := sampleFrame(t)

	g, err := f.GroupBy()
	require.NoError(t, err)
	require.Equal(t, 1, g.Len())
	assert.Len(t, g.Groups[0], 5)
	assert.Equal(t, 1, g.Keys().RowCount())

	_, err = f.GroupBy("nope")
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestLeftJoin(t *testing.T) {
	left := sampleFrame(t)
	right, err := New(
		TextColumn("code", []string{"A", "B", "B"}),
		FloatColumn("pop", []float64{100, 200, 300}),
	)
	require.NoError(t, err)

	joined, err := left.LeftJoin(right, []string{"area"}, []string{"code"})
	require.NoError(t, err)

	assert.Equal(t, []string{"area", "year", "events", "pop"}, joined.Names())
	areas, _ := joined.Strings("area")
	assert.Equal(t, []string{"B", "B", "A", "B", "B", "", "A"}, areas)

	pops, _ := joined.Floats("pop")
	assert.Equal(t, 200.0, pops[0])
	assert.Equal(t, 300.0, pops[1])
	assert.True(t, math.IsNaN(pops[5]))
	assert.Equal(t, 100.0, pops[6])
}

func TestLeftJoin_Errors(t *testing.T) {
	left := sampleFrame(t)
	clash, err := New(TextColumn("area", []string{"A"}), FloatColumn("year", []float64{1}))
	require.NoError(t, err)

	_, err = left.LeftJoin(clash, []string{"area"}, []string{"area"})
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))

	_, err = left.LeftJoin(clash, []string{"area"}, nil)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
