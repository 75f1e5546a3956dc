package calculator

import (
	"fmt"
	"sort"

	"StockWindow/internal/model"
)

// PredictionWindow is the number of values Predict produces.
const PredictionWindow = 3

// Predict estimates the next PredictionWindow values of series.
//
// With n the last value and n1 the second largest value of the window:
//
//	n2 = n + (n - n1) / 2
//	n3 = n1 + (n1 - n2) / 4
//
// and the prediction is [n1, n2, n3]. series is not modified.
func Predict(series []float64, count int) ([]float64, error) {
	if count != PredictionWindow {
		return nil, fmt.Errorf("%w: prediction count must be %d, got %d", model.ErrInvalidWindow, PredictionWindow, count)
	}
	if len(series) < 2 {
		return nil, fmt.Errorf("%w: got %d", model.ErrEmptySeries, len(series))
	}

	n := series[len(series)-1]

	sorted := make([]float64, len(series))
	copy(sorted, series)
	sort.Float64s(sorted)
	n1 := sorted[len(sorted)-2]

	n2 := n + (n-n1)/2
	n3 := n1 + (n1-n2)/4

	return []float64{n1, n2, n3}, nil
}
