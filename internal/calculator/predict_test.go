package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockWindow/internal/model"
)

func TestPredict(t *testing.T) {
	tests := []struct {
		name   string
		series []float64
		want   []float64
	}{
		{"mixed window", []float64{10, 12, 9, 15, 11}, []float64{12, 10.5, 12.375}},
		{"two values", []float64{1, 2}, []float64{1, 2.5, 0.625}},
		{"duplicate maximum", []float64{3, 7, 7, 5}, []float64{7, 4, 7.75}},
		{"flat", []float64{4, 4, 4}, []float64{4, 4, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Predict(tt.series, 3)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.want, got, 1e-12)
		})
	}
}

func TestPredict_Pure(t *testing.T) {
	series := []float64{10, 12, 9, 15, 11}
	orig := append([]float64(nil), series...)

	a, err := Predict(series, 3)
	require.NoError(t, err)
	b, err := Predict(series, 3)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, orig, series)
}

func TestPredict_EmptySeries(t *testing.T) {
	for _, s := range [][]float64{nil, {}, {42}} {
		_, err := Predict(s, 3)
		assert.ErrorIs(t, err, model.ErrEmptySeries)
	}
}

func TestPredict_InvalidCount(t *testing.T) {
	for _, c := range []int{0, 1, 4, -3} {
		_, err := Predict([]float64{1, 2, 3}, c)
		assert.ErrorIs(t, err, model.ErrInvalidWindow)
	}
}
