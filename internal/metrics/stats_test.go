package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceValue(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  float64
		ok    bool
	}{
		{"float64", 42.5, 42.5, true},
		{"int", 7, 7, true},
		{"int64", int64(-3), -3, true},
		{"numeric string", "12", 12, true},
		{"numeric string with whitespace", " 15.25 ", 15.25, true},
		{"scientific notation string", "1e3", 1000, true},
		{"garbage string", "abc", 0, false},
		{"empty string", "", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
		{"map", map[string]any{}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := coerceValue(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestColumnValues(t *testing.T) {
	rows := []Row{
		{"revenue": "12"},
		{"revenue": "abc"},
		{"revenue": nil},
		{"other": 99.0},
		{"revenue": "15"},
	}

	// Non-numeric noise is dropped, not zero-filled, and row order is
	// preserved among survivors.
	assert.Equal(t, []float64{12, 15}, columnValues(rows, "revenue"))
}

func TestComputeStats(t *testing.T) {
	t.Run("single value", func(t *testing.T) {
		stats := computeStats([]float64{42})

		assert.Equal(t, 42.0, stats.Mean)
		assert.Equal(t, 42.0, stats.Latest)
		assert.Equal(t, 42.0, stats.Min)
		assert.Equal(t, 42.0, stats.Max)
		assert.Equal(t, 42.0, stats.Total)
		assert.Nil(t, stats.GrowthRates)
		assert.Nil(t, stats.AvgGrowthRate)
		assert.False(t, stats.HasGrowth())
	})

	t.Run("two values", func(t *testing.T) {
		stats := computeStats([]float64{100, 150})

		assert.Equal(t, 125.0, stats.Mean)
		assert.Equal(t, 150.0, stats.Latest)
		assert.Equal(t, 100.0, stats.Min)
		assert.Equal(t, 150.0, stats.Max)
		assert.Equal(t, 250.0, stats.Total)
		require.NotNil(t, stats.GrowthRates)
		assert.Equal(t, []float64{50}, *stats.GrowthRates)
		require.NotNil(t, stats.AvgGrowthRate)
		assert.Equal(t, 50.0, *stats.AvgGrowthRate)
	})

	t.Run("zero previous value is skipped", func(t *testing.T) {
		stats := computeStats([]float64{0, 10})

		require.NotNil(t, stats.GrowthRates)
		assert.Empty(t, *stats.GrowthRates)
		require.NotNil(t, stats.AvgGrowthRate)
		assert.Equal(t, 0.0, *stats.AvgGrowthRate)
	})

	t.Run("negative previous uses absolute base", func(t *testing.T) {
		stats := computeStats([]float64{-100, -50})

		require.NotNil(t, stats.GrowthRates)
		assert.Equal(t, []float64{50}, *stats.GrowthRates)
	})

	t.Run("rounding to two decimals", func(t *testing.T) {
		stats := computeStats([]float64{1, 2, 4})

		// (2-1)/1*100 = 100, (4-2)/2*100 = 100
		require.NotNil(t, stats.GrowthRates)
		assert.Equal(t, []float64{100, 100}, *stats.GrowthRates)
		assert.Equal(t, 2.33, stats.Mean)
	})
}

func TestGrowthRates(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   []float64
	}{
		{"steady growth", []float64{100, 110, 121}, []float64{10, 10}},
		{"decline", []float64{100, 50}, []float64{-50}},
		{"zero previous skipped mid-series", []float64{10, 0, 20}, []float64{-100}},
		{"all zero previous", []float64{0, 0, 5}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := growthRates(tt.values)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-9)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	// 0.125 is exactly representable, so the half-away tie is exercised
	// without floating point noise.
	assert.Equal(t, 0.13, round2(0.125))
	assert.Equal(t, -0.13, round2(-0.125))
	assert.Equal(t, 0.33, round2(1.0/3))
	assert.Equal(t, 1.0, round2(0.999))
	assert.Equal(t, 0.0, round2(0))
}

func TestSampleStdDev(t *testing.T) {
	// Sample estimator: for {10, 20} the deviation is sqrt(50).
	assert.InDelta(t, 7.0710678, sampleStdDev([]float64{10, 20}), 1e-6)
	assert.Equal(t, 0.0, sampleStdDev([]float64{5, 5, 5}))
}
