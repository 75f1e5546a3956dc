package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateSMA(t *testing.T) {
	v, err := CalculateSMA([]float64{1, 2, 3, 4, 5, 6}, 3)
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)

	_, err = CalculateSMA([]float64{1, 2}, 3)
	assert.Error(t, err)

	_, err = CalculateSMA([]float64{1, 2}, 0)
	assert.Error(t, err)
}

func TestTrailingMean_ClampsPeriod(t *testing.T) {
	v, err := TrailingMean([]float64{2, 4}, 5)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
}

func TestWindowRange(t *testing.T) {
	high, low, err := WindowRange([]float64{10, 12, 9, 15, 11})
	require.NoError(t, err)
	assert.Equal(t, 15.0, high)
	assert.Equal(t, 9.0, low)

	_, _, err = WindowRange(nil)
	assert.Error(t, err)
}

func TestRangePosition(t *testing.T) {
	tests := []struct {
		current, high, low float64
		want               float64
	}{
		{11, 15, 9, 1.0 / 3},
		{9, 15, 9, 0},
		{20, 15, 9, 1},
		{5, 5, 5, 0.5},
	}
	for _, tt := range tests {
		got, err := RangePosition(tt.current, tt.high, tt.low)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-12)
	}

	_, err := RangePosition(1, 1, 2)
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	s, err := Summarize([]float64{10, 12, 9, 15, 11})
	require.NoError(t, err)
	assert.InDelta(t, 11.4, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(5.3), s.StdDev, 1e-12)
	assert.Equal(t, 15.0, s.High)
	assert.Equal(t, 9.0, s.Low)
	assert.InDelta(t, 11.4, s.TrailingMean, 1e-12)
	assert.InDelta(t, 1.0/3, s.Position, 1e-12)
}

func TestSummarize_SingleValue(t *testing.T) {
	s, err := Summarize([]float64{7})
	require.NoError(t, err)
	assert.Equal(t, 7.0, s.Mean)
	assert.Equal(t, 0.0, s.StdDev)
	assert.Equal(t, 0.5, s.Position)

	_, err = Summarize(nil)
	assert.Error(t, err)
}
