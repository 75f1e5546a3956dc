package calculator

import (
	"errors"
)

// CalculateSMA computes the simple moving average of the last period values.
func CalculateSMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(values) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period), nil
}

// TrailingMean is CalculateSMA with the period clamped to the series length.
func TrailingMean(values []float64, period int) (float64, error) {
	if period > len(values) {
		period = len(values)
	}
	return CalculateSMA(values, period)
}
