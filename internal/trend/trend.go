// Package trend derives a best-fit line over a window of readings.
//
// The fit is an ordinary least-squares regression of value over sequence
// index (0..n-1), matching how the window is displayed: readings are evenly
// spaced along the x axis regardless of their wall-clock spacing.
package trend

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Line is the result of a least-squares fit over a reading window. Predicted
// holds one fitted value per input, aligned by index.
type Line struct {
	Slope     float64
	Intercept float64
	Predicted []float64
}

// Compute fits a line over the given values. The second return value is
// false when no trend can be produced: an empty input, or a degenerate fit
// producing non-finite coefficients. Computation failures never surface as
// errors; the caller simply renders no trend line.
//
// A single value yields a flat line (slope 0, intercept equal to the value)
// rather than no trend, so a window that has seen only one tick still
// renders a fit.
func Compute(values []float64) (Line, bool) {
	n := len(values)
	if n == 0 {
		return Line{}, false
	}

	for _, v := range values {
		if !isFinite(v) {
			return Line{}, false
		}
	}

	if n == 1 {
		return Line{
			Slope:     0,
			Intercept: values[0],
			Predicted: []float64{values[0]},
		}, true
	}

	indexes := make([]float64, n)
	for i := range indexes {
		indexes[i] = float64(i)
	}

	intercept, slope := stat.LinearRegression(indexes, values, nil, false)
	if !isFinite(slope) || !isFinite(intercept) {
		return Line{}, false
	}

	predicted := make([]float64, n)
	for i := range predicted {
		predicted[i] = slope*float64(i) + intercept
	}

	return Line{
		Slope:     slope,
		Intercept: intercept,
		Predicted: predicted,
	}, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
