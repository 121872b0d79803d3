package funnel

import (
	"math"
	"strconv"
)

// Default margins applied before rounding axis endpoints
const (
	FloorMargin   = 0.95
	CeilingMargin = 1.05
)

// SignifFloor rounds x·0.95 down to one significant figure, giving a clean
// lower axis endpoint. Zero stays zero.
func SignifFloor(x float64) float64 {
	return SignifFloorWithMargin(x, FloorMargin)
}

// SignifCeiling rounds x·1.05 up to two significant figures, giving a clean
// upper axis endpoint. Zero stays zero.
func SignifCeiling(x float64) float64 {
	return SignifCeilingWithMargin(x, CeilingMargin)
}

// SignifFloorWithMargin is SignifFloor with an explicit margin
func SignifFloorWithMargin(x, margin float64) float64 {
	if x == 0 {
		return 0
	}
	scaled := x * margin
	n := digitCount(math.Floor(scaled)) - 1
	unit := math.Pow(10, float64(n))
	return math.Floor(scaled/unit) * unit
}

// SignifCeilingWithMargin is SignifCeiling with an explicit margin
func SignifCeilingWithMargin(x, margin float64) float64 {
	if x == 0 {
		return 0
	}
	scaled := x * margin
	n := digitCount(math.Ceil(scaled)) - 2
	unit := math.Pow(10, float64(n))
	return math.Ceil(scaled/unit) * unit
}

// digitCount is the length of the decimal rendering of an integral value,
// including the sign.
func digitCount(v float64) int {
	return len(strconv.FormatFloat(v, 'f', 0, 64))
}

// logAxis builds the 100 point x-axis of a funnel plot, spaced geometrically
// from max(1, axisMin) to axisMax. Each point is at least one above the
// previous. Ratio axes use one step fewer in the exponent, which lands the
// last point past axisMax.
func logAxis(axisMin, axisMax float64, ratio bool) []float64 {
	points := make([]float64, 0, axisPoints)
	points = append(points, math.Max(1, axisMin))

	for j := 2; j <= axisPoints; j++ {
		offset := j
		if ratio {
			offset = j - 1
		}
		prev := points[len(points)-1]
		next := math.RoundToEven(math.Pow(axisMax/prev, 1/float64(101-offset)) * prev)
		points = append(points, math.Max(next, prev+1))
	}
	return points
}

const axisPoints = 100
