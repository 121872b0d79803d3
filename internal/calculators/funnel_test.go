package calculators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phstats/domain/stats"
	"phstats/internal/errors"
	"phstats/internal/frame"
	"phstats/internal/funnel"
)

func TestFunnelLimits_Proportion(t *testing.T) {
	data := mustFrame(t,
		frame.FloatColumn("num", []float64{30, 250, 900, 45}),
		frame.FloatColumn("den", []float64{1000, 8000, 25000, 1500}),
	)
	opts := FunnelOptions{
		Options:     funnel.Options{Statistic: stats.StatisticProportion, Multiplier: 100},
		Numerator:   "num",
		Denominator: "den",
		Metadata:    true,
	}

	out, err := FunnelLimits(data, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"Population", "lower_2s_limit", "upper_2s_limit", "lower_3s_limit", "upper_3s_limit", "baseline", "Statistic", "Method"}, out.Names())
	require.Equal(t, 100, out.RowCount())

	assert.Equal(t, 1.0, floatsOf(t, out, "Population")[0])
	assert.InEpsilon(t, 39.22544652556375, floatsOf(t, out, "upper_2s_limit")[0], 1e-8)
	assert.InEpsilon(t, 3.450704225352113, floatsOf(t, out, "baseline")[99], 1e-12)
	assert.Equal(t, "proportion", stringsOf(t, out, ColStatistic)[0])
	assert.Equal(t, "Wilson", stringsOf(t, out, ColMethod)[0])
}

func TestFunnelLimits_RatioAndRate(t *testing.T) {
	ratio := mustFrame(t,
		frame.FloatColumn("obs", []float64{12, 45, 80, 150, 33}),
		frame.FloatColumn("exp", []float64{10.5, 50.2, 70.1, 160.3, 30}),
	)
	out, err := FunnelLimits(ratio, FunnelOptions{
		Options:     funnel.Options{Statistic: stats.StatisticRatio, RatioType: stats.RatioCount},
		Numerator:   "obs",
		Denominator: "exp",
		Metadata:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Observed_events", out.Names()[0])
	assert.False(t, out.Has("baseline"))
	assert.InEpsilon(t, 38.4977494552442, floatsOf(t, out, "upper_2s_limit")[0], 1e-8)
	assert.Equal(t, "ratio (count)", stringsOf(t, out, ColStatistic)[0])
	assert.Equal(t, "Poisson", stringsOf(t, out, ColMethod)[0])

	rates := mustFrame(t,
		frame.FloatColumn("events", []float64{120, 340, 95, 410}),
		frame.FloatColumn("rate", []float64{512.3, 480.1, 610, 455.2}),
	)
	out, err = FunnelLimits(rates, FunnelOptions{
		Options:   funnel.Options{Statistic: stats.StatisticRate, RateType: stats.RateCrude, Multiplier: 100000, YearsOfData: 3},
		Numerator: "events",
		Rate:      "rate",
		Metadata:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Events", "lower_2s_population_1_year", "lower_2s_limit", "upper_2s_population_1_year", "upper_2s_limit",
		"lower_3s_population_1_year", "lower_3s_limit", "upper_3s_population_1_year", "upper_3s_limit",
		"baseline", "Statistic", "Method",
	}, out.Names())
	assert.InEpsilon(t, 384.6964114605808, floatsOf(t, out, "lower_2s_population_1_year")[0], 1e-8)
	assert.Equal(t, "rate (crude per 100000)", stringsOf(t, out, ColStatistic)[0])
}

func TestFunnelSignificance(t *testing.T) {
	data := mustFrame(t,
		frame.TextColumn("area", []string{"W", "X", "Y", "Z"}),
		frame.FloatColumn("num", []float64{10, 40, 200, 90}),
		frame.FloatColumn("den", []float64{1000, 1000, 5000, 1000}),
	)
	out, err := FunnelSignificance(data, FunnelOptions{
		Options:     funnel.Options{Statistic: stats.StatisticProportion, Multiplier: 100},
		Numerator:   "num",
		Denominator: "den",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"area", "num", "den", "significance"}, out.Names())
	assert.Equal(t, []string{"Low (0.001)", "Not significant", "Not significant", "High (0.001)"}, stringsOf(t, out, ColSignificance))

	// the input is left untouched
	assert.False(t, data.Has(ColSignificance))
}

func TestFunnelPoints(t *testing.T) {
	data := mustFrame(t,
		frame.FloatColumn("events", []float64{9, 120}),
		frame.FloatColumn("dsr", []float64{30, 512.3}),
	)
	out, err := FunnelPoints(data, FunnelOptions{
		Options:   funnel.Options{RateType: stats.RateDSR, Multiplier: 100000, YearsOfData: 1},
		Numerator: "events",
		Rate:      "dsr",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"events", "dsr", "dsr_chart", "denom_derived"}, out.Names())

	chart := floatsOf(t, out, "dsr_chart")
	assert.True(t, math.IsNaN(chart[0]))
	assert.Equal(t, 512.3, chart[1])
	assert.InEpsilon(t, 100000*120/512.3, floatsOf(t, out, ColDenomDerived)[1], 1e-12)

	_, err = FunnelPoints(data, FunnelOptions{Numerator: "events"})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestFunnelRecords_Errors(t *testing.T) {
	data := mustFrame(t,
		frame.TextColumn("label", []string{"a"}),
		frame.FloatColumn("num", []float64{1}),
		frame.FloatColumn("den", []float64{10}),
	)
	opts := FunnelOptions{
		Options:     funnel.Options{Statistic: stats.StatisticProportion, Multiplier: 100},
		Numerator:   "label",
		Denominator: "den",
	}
	_, err := FunnelLimits(data, opts)
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))

	opts.Numerator = "num"
	opts.Denominator = "population"
	_, err = FunnelLimits(data, opts)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	_, err = FunnelLimits(data, FunnelOptions{})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
