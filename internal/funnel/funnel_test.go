package funnel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phstats/domain/stats"
	"phstats/internal/distributions"
	"phstats/internal/errors"
)

func TestPoissonFunnel_Fixtures(t *testing.T) {
	tests := []struct {
		name string
		obs  float64
		p    float64
		side stats.Side
		want float64
	}{
		{"200 events 2 sigma low", 200, TwoSigmaTail, stats.SideLow, 173.24086241121654},
		{"500 events 3 sigma high", 500, ThreeSigmaTail, stats.SideHigh, 573.0274767209943},
		{"no events 2 sigma high", 0, TwoSigmaTail, stats.SideHigh, 3.6888787220657298},
		{"one event 2 sigma low", 1, TwoSigmaTail, stats.SideLow, 0.025317898204127373},
		{"10 events 3 sigma low", 10, ThreeSigmaTail, stats.SideLow, 2.9605199246530303},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PoissonFunnel(tt.obs, tt.p, tt.side)
			require.NoError(t, err)
			assert.InEpsilon(t, tt.want, got, 1e-9)
		})
	}
}

func TestPoissonFunnel_FindsTailRoot(t *testing.T) {
	for _, obs := range []float64{3, 25, 140} {
		low, err := PoissonFunnel(obs, TwoSigmaTail, stats.SideLow)
		require.NoError(t, err)
		tail, err := distributions.PoissonInterval(low, obs, distributions.Unbounded)
		require.NoError(t, err)
		assert.InDelta(t, TwoSigmaTail, tail, 1e-6, "obs=%v", obs)

		high, err := PoissonFunnel(obs, TwoSigmaTail, stats.SideHigh)
		require.NoError(t, err)
		tail, err = distributions.PoissonInterval(high, 0, obs)
		require.NoError(t, err)
		assert.InDelta(t, TwoSigmaTail, tail, 1e-6, "obs=%v", obs)

		assert.Less(t, low, obs)
		assert.Greater(t, high, obs)
	}
}

func TestPoissonFunnel_InvalidInput(t *testing.T) {
	_, err := PoissonFunnel(10, TwoSigmaTail, stats.Side("middle"))
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = PoissonFunnel(-1, TwoSigmaTail, stats.SideLow)
	assert.Equal(t, errors.CodeDomainError, errors.GetCode(err))

	_, err = PoissonFunnel(10, 1.5, stats.SideLow)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestSigmaAdjustment(t *testing.T) {
	got, err := SigmaAdjustment(TwoSigmaProbability, 100000, 0.9, stats.SideLow, 100)
	require.NoError(t, err)
	// gonum's normal quantile differs from scipy's in the last few digits; the result lands within 5e-12
	assert.InDelta(t, 89.81406149030842, got, 1e-9)

	got, err = SigmaAdjustment(ThreeSigmaProbability, 300000, 0.85, stats.SideHigh, 1000)
	require.NoError(t, err)
	assert.InDelta(t, 852.0145849882799, got, 1e-9)

	t.Run("limits straddle the average", func(t *testing.T) {
		low, err := SigmaAdjustment(TwoSigmaProbability, 500, 0.3, stats.SideLow, 1)
		require.NoError(t, err)
		high, err := SigmaAdjustment(TwoSigmaProbability, 500, 0.3, stats.SideHigh, 1)
		require.NoError(t, err)
		assert.Less(t, low, 0.3)
		assert.Greater(t, high, 0.3)
	})

	t.Run("median quantile collapses to zero", func(t *testing.T) {
		got, err := SigmaAdjustment(0.5, 500, 0.3, stats.SideHigh, 1)
		require.NoError(t, err)
		assert.Equal(t, 0.0, got)
	})

	t.Run("population must be positive", func(t *testing.T) {
		_, err := SigmaAdjustment(TwoSigmaProbability, 0, 0.3, stats.SideLow, 1)
		assert.Equal(t, errors.CodeDomainError, errors.GetCode(err))
	})
}

func TestRatioSignificance(t *testing.T) {
	tests := []struct {
		name     string
		obs      float64
		expected float64
		p        float64
		side     stats.Side
		want     float64
	}{
		{"small count low", 5, 10, 0.05, stats.SideLow, 0.45},
		{"small count high", 5, 10, 0.95, stats.SideHigh, 1.17},
		{"large count low", 20, 15, 0.05, stats.SideLow, 1.29},
		{"large count high", 25, 20, 0.95, stats.SideHigh, 1.85},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RatioSignificance(tt.obs, tt.expected, tt.p, tt.side)
			require.NoError(t, err)
			assert.Equal(t, tt.want, math.Round(got*100)/100)
		})
	}

	t.Run("no events on the low side", func(t *testing.T) {
		got, err := RatioSignificance(0, 10, 0.05, stats.SideLow)
		require.NoError(t, err)
		assert.Equal(t, 0.0, got)
	})

	t.Run("no events on the high side", func(t *testing.T) {
		got, err := RatioSignificance(0, 10, 0.95, stats.SideHigh)
		require.NoError(t, err)
		assert.Greater(t, got, 0.0)
	})

	t.Run("rejects bad side", func(t *testing.T) {
		_, err := RatioSignificance(5, 10, 0.95, stats.Side(""))
		assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	})
}

func TestSignifRounding(t *testing.T) {
	assert.Equal(t, 0.0, SignifFloor(0))
	assert.Equal(t, 0.0, SignifCeiling(0))

	assert.Equal(t, 1000.0, SignifFloor(1234))
	assert.Equal(t, 20000.0, SignifFloor(25000))
	assert.Equal(t, 6.0, SignifFloor(7))
	assert.Equal(t, 0.0, SignifFloor(0.5))

	assert.Equal(t, 1300.0, SignifCeiling(1234))
	assert.Equal(t, 170.0, SignifCeiling(160.3))
	assert.Equal(t, 100.0, SignifCeiling(95))
	assert.InDelta(t, 7.4, SignifCeiling(7), 1e-12)

	assert.Equal(t, 1000.0, SignifFloorWithMargin(1999, 1))
	assert.Equal(t, 1300.0, SignifCeilingWithMargin(1234, 1))
}

func TestLogAxis(t *testing.T) {
	t.Run("ratio axis", func(t *testing.T) {
		axis := logAxis(0, 170, true)
		require.Len(t, axis, 100)
		assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, axis[:6])
		assert.Equal(t, []float64{159, 163, 166}, axis[97:])
	})

	t.Run("proportion axis", func(t *testing.T) {
		axis := logAxis(1000, 2800, false)
		require.Len(t, axis, 100)
		assert.Equal(t, []float64{1000, 1010, 1021, 1032, 1043}, axis[:5])
		assert.Equal(t, 2800.0, axis[99])
	})

	t.Run("strictly increasing", func(t *testing.T) {
		axis := logAxis(0, 30, false)
		for i := 1; i < len(axis); i++ {
			assert.Greater(t, axis[i], axis[i-1])
		}
	})
}
