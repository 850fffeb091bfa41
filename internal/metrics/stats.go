package metrics

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// coerceValue attempts to interpret one cell as a number. Missing cells,
// empty strings and garbage all fail coercion and are dropped by the
// caller; they are never treated as zero.
func coerceValue(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0, false
		}
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// columnValues extracts the coercible values of one column across all rows,
// preserving row order among the survivors.
func columnValues(rows []Row, column string) []float64 {
	var values []float64
	for _, row := range rows {
		cell, ok := row[column]
		if !ok {
			continue
		}
		if f, ok := coerceValue(cell); ok {
			values = append(values, f)
		}
	}
	return values
}

// computeStats derives the statistics record for one column from its valid
// values. The caller guarantees len(values) >= 1; growth statistics are
// only attached when at least two values survive.
func computeStats(values []float64) ColumnStats {
	minVal, maxVal, total := values[0], values[0], 0.0
	for _, v := range values {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
		total += v
	}

	stats := ColumnStats{
		Mean:   round2(total / float64(len(values))),
		Latest: round2(values[len(values)-1]),
		Min:    round2(minVal),
		Max:    round2(maxVal),
		Total:  round2(total),
	}

	if len(values) > 1 {
		raw := growthRates(values)
		avg := 0.0
		if len(raw) > 0 {
			avg = mean(raw)
		}
		rounded := make([]float64, len(raw))
		for i, g := range raw {
			rounded[i] = round2(g)
		}
		stats.GrowthRates = &rounded
		avgRounded := round2(avg)
		stats.AvgGrowthRate = &avgRounded
	}

	return stats
}

// growthRates computes the period-over-period percent changes between
// consecutive values. Pairs with a zero prior value are skipped rather
// than treated as infinite growth, so the series may be shorter than
// len(values)-1 (or empty).
func growthRates(values []float64) []float64 {
	rates := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev == 0 {
			continue
		}
		rates = append(rates, (values[i]-prev)/math.Abs(prev)*100)
	}
	return rates
}

// trendSeries returns the rounded raw value sequence for charting.
func trendSeries(values []float64) []float64 {
	series := make([]float64, len(values))
	for i, v := range values {
		series[i] = round2(v)
	}
	return series
}

// round2 rounds to two decimals, half away from zero.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev returns the sample standard deviation (n-1 denominator).
// Callers must pass at least two values.
func sampleStdDev(values []float64) float64 {
	m := mean(values)
	sumSquared := 0.0
	for _, v := range values {
		sumSquared += (v - m) * (v - m)
	}
	return math.Sqrt(sumSquared / float64(len(values)-1))
}
