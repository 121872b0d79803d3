package stats

import (
	"fmt"
	"math"
)

// ============================================================================
// OBSERVATIONS AND INTERVALS
// ============================================================================

// Observation is a count with an optional denominator.
// INVARIANTS:
// - Count >= 0 (fractional when summed over groups)
// - Denominator > 0 when present; NaN marks "absent"
type Observation struct {
	Count       float64 `json:"count"`
	Denominator float64 `json:"denominator"`
}

// HasDenominator reports whether the observation carries a denominator
func (o Observation) HasDenominator() bool {
	return !math.IsNaN(o.Denominator)
}

// ConfidenceInterval is a (lower, upper) pair at one confidence level.
// Both bounds are NaN when the method is undefined for the input.
type ConfidenceInterval struct {
	Level float64 `json:"level"` // e.g. 0.95 for a 95% interval
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Undefined reports whether neither bound could be computed
func (ci ConfidenceInterval) Undefined() bool {
	return math.IsNaN(ci.Lower) && math.IsNaN(ci.Upper)
}

// Scale multiplies both bounds, e.g. to express a count interval as a rate
func (ci ConfidenceInterval) Scale(factor float64) ConfidenceInterval {
	return ConfidenceInterval{Level: ci.Level, Lower: ci.Lower * factor, Upper: ci.Upper * factor}
}

// NaNInterval returns the undefined interval at a level
func NaNInterval(level float64) ConfidenceInterval {
	return ConfidenceInterval{Level: level, Lower: math.NaN(), Upper: math.NaN()}
}

// ============================================================================
// FUNNEL PLOTS
// ============================================================================

// Side selects the lower or upper control limit
type Side string

const (
	SideLow  Side = "low"
	SideHigh Side = "high"
)

// Validate rejects anything other than low/high
func (s Side) Validate() error {
	if s != SideLow && s != SideHigh {
		return fmt.Errorf("side must be %q or %q, got %q", SideLow, SideHigh, string(s))
	}
	return nil
}

// StatisticType selects how funnel limits are computed
type StatisticType string

const (
	StatisticProportion StatisticType = "proportion"
	StatisticRatio      StatisticType = "ratio"
	StatisticRate       StatisticType = "rate"
)

// RateType distinguishes directly standardised from crude rates
type RateType string

const (
	RateDSR   RateType = "dsr"
	RateCrude RateType = "crude"
)

// RatioType distinguishes observed/expected counts from indirectly standardised ratios
type RatioType string

const (
	RatioCount RatioType = "count"
	RatioISR   RatioType = "isr"
)

// FunnelLimitRow is one point on the reference curve of a funnel plot.
// Expected* fields are only populated for ratio statistics and Population*
// fields only for rate statistics; they are NaN otherwise.
type FunnelLimitRow struct {
	Axis float64 `json:"axis"` // denominator (proportion), observed events (ratio) or events (rate)

	Lower2Sigma float64 `json:"lower_2s_limit"`
	Upper2Sigma float64 `json:"upper_2s_limit"`
	Lower3Sigma float64 `json:"lower_3s_limit"`
	Upper3Sigma float64 `json:"upper_3s_limit"`
	Baseline    float64 `json:"baseline"` // NaN for ratio statistics

	Lower2SigmaExpected float64 `json:"lower_2s_exp_events,omitempty"`
	Upper2SigmaExpected float64 `json:"upper_2s_exp_events,omitempty"`
	Lower3SigmaExpected float64 `json:"lower_3s_exp_events,omitempty"`
	Upper3SigmaExpected float64 `json:"upper_3s_exp_events,omitempty"`

	Lower2SigmaPopulation float64 `json:"lower_2s_population_1_year,omitempty"`
	Upper2SigmaPopulation float64 `json:"upper_2s_population_1_year,omitempty"`
	Lower3SigmaPopulation float64 `json:"lower_3s_population_1_year,omitempty"`
	Upper3SigmaPopulation float64 `json:"upper_3s_population_1_year,omitempty"`
}

// Significance is the funnel classification of a single record
type Significance string

const (
	SignificanceLow001        Significance = "Low (0.001)"
	SignificanceLow025        Significance = "Low (0.025)"
	SignificanceHigh001       Significance = "High (0.001)"
	SignificanceHigh025       Significance = "High (0.025)"
	SignificanceNone          Significance = "Not significant"
	SignificanceNotApplicable Significance = "Not applicable for events less than 10 for DSRs"
)

// ============================================================================
// METHOD NAMES (metadata columns)
// ============================================================================

const (
	MethodWilson   = "Wilson"
	MethodExact    = "Exact"
	MethodByars    = "Byars"
	MethodDobson   = "Dobson"
	MethodStudentT = "Student's t-distribution"
	MethodPoisson  = "Poisson"
)
