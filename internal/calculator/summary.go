package calculator

import (
	"errors"

	"gonum.org/v1/gonum/stat"

	"StockWindow/internal/model"
)

// trailingPeriod is the number of most recent values averaged into TrailingMean.
const trailingPeriod = 5

// Summarize computes descriptive statistics of an extracted window.
func Summarize(values []float64) (model.WindowSummary, error) {
	if len(values) == 0 {
		return model.WindowSummary{}, errors.New("no values to summarize")
	}

	var s model.WindowSummary
	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	if len(values) == 1 {
		s.StdDev = 0
	}

	high, low, err := WindowRange(values)
	if err != nil {
		return model.WindowSummary{}, err
	}
	s.High, s.Low = high, low

	if s.Position, err = RangePosition(values[len(values)-1], high, low); err != nil {
		return model.WindowSummary{}, err
	}

	if s.TrailingMean, err = TrailingMean(values, trailingPeriod); err != nil {
		return model.WindowSummary{}, err
	}
	return s, nil
}
