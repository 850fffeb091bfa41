package metrics

import "strings"

// The five composite scores are independent heuristics over the classified
// buckets and per-column statistics. Each has its own fallback chain; there
// is no shared normalization pass.

// clamp bounds a score to [0, 100].
func clamp(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 100 {
		return 100
	}
	return x
}

// growthScore computes the growth score and returns the growth rates it
// collected, which the PMF signal reuses for its consistency fallback.
//
// Growth columns are the revenue bucket when non-empty, else the user
// bucket, else the first two declared numeric columns. The last resort is
// an arbitrary declaration-order tie-break carried over for behavioral
// parity with the original heuristic.
func growthScore(detail map[string]ColumnStats, buckets Buckets, numericColumns []string) (float64, []float64) {
	growthColumns := buckets.Revenue
	if len(growthColumns) == 0 {
		growthColumns = buckets.User
	}
	if len(growthColumns) == 0 {
		if len(numericColumns) > 2 {
			growthColumns = numericColumns[:2]
		} else {
			growthColumns = numericColumns
		}
	}

	var rates []float64
	for _, col := range growthColumns {
		if stats, ok := detail[col]; ok && stats.HasGrowth() {
			rates = append(rates, *stats.AvgGrowthRate)
		}
	}

	avgGrowth := 0.0
	if len(rates) > 0 {
		avgGrowth = mean(rates)
	}
	return clamp(50 + avgGrowth*2), rates
}

// efficiencyScore compares total revenue to total cost. Without both
// buckets, or with a non-positive cost total, the default stands.
func efficiencyScore(detail map[string]ColumnStats, buckets Buckets) float64 {
	if len(buckets.Revenue) == 0 || len(buckets.Cost) == 0 {
		return defaultEfficiencyScore
	}

	revenueTotal := sumField(detail, buckets.Revenue, func(cs ColumnStats) float64 { return cs.Total })
	costTotal := sumField(detail, buckets.Cost, func(cs ColumnStats) float64 { return cs.Total })
	if costTotal <= 0 {
		return defaultEfficiencyScore
	}
	return clamp(revenueTotal / costTotal * 25)
}

// pmfSignal estimates product-market fit. Pure retention levels take
// precedence over churn, which takes precedence over growth consistency.
// Each branch consumes the decision even when its columns carry no
// statistics, in which case the default stands.
func pmfSignal(detail map[string]ColumnStats, buckets Buckets, numericColumns []string, growthRatesCollected []float64, growth float64) float64 {
	var churnColumns []string
	for _, col := range numericColumns {
		if strings.Contains(col, "churn") {
			churnColumns = append(churnColumns, col)
		}
	}
	var pureRetention []string
	for _, col := range buckets.Retention {
		if !strings.Contains(col, "churn") {
			pureRetention = append(pureRetention, col)
		}
	}

	switch {
	case len(pureRetention) > 0:
		latest := collectLatest(detail, pureRetention)
		if len(latest) == 0 {
			return defaultPMFSignal
		}
		return clamp(mean(latest))

	case len(churnColumns) > 0:
		latest := collectLatest(detail, churnColumns)
		if len(latest) == 0 {
			return defaultPMFSignal
		}
		return clamp(100 - mean(latest)*10)

	case len(growthRatesCollected) > 0:
		consistency := singleRateConsistency
		if len(growthRatesCollected) > 1 {
			spread := sampleStdDev(growthRatesCollected) * 2
			if spread > 100 {
				spread = 100
			}
			consistency = 100 - spread
		}
		return clamp((consistency + growth) / 2)

	default:
		return defaultPMFSignal
	}
}

// scalabilityIndex compares the best revenue growth rate against the best
// cost growth rate. Columns without growth statistics contribute 0.
func scalabilityIndex(detail map[string]ColumnStats, buckets Buckets) float64 {
	if len(buckets.Revenue) == 0 || len(buckets.Cost) == 0 {
		return defaultScalabilityIndex
	}

	revenueGrowth := maxGrowthRate(detail, buckets.Revenue)
	costGrowth := maxGrowthRate(detail, buckets.Cost)

	switch {
	case costGrowth != 0:
		return clamp(50 + (revenueGrowth - costGrowth))
	case revenueGrowth > 0:
		return clamp(50 + revenueGrowth)
	default:
		return defaultScalabilityIndex
	}
}

// capitalEfficiency compares the latest revenue level against the latest
// cost level.
func capitalEfficiency(detail map[string]ColumnStats, buckets Buckets) float64 {
	if len(buckets.Revenue) == 0 || len(buckets.Cost) == 0 {
		return defaultCapitalEfficiency
	}

	revenueLatest := sumField(detail, buckets.Revenue, func(cs ColumnStats) float64 { return cs.Latest })
	costLatest := sumField(detail, buckets.Cost, func(cs ColumnStats) float64 { return cs.Latest })
	if costLatest <= 0 {
		return defaultCapitalEfficiency
	}
	return clamp(revenueLatest / costLatest * 30)
}

func sumField(detail map[string]ColumnStats, columns []string, field func(ColumnStats) float64) float64 {
	sum := 0.0
	for _, col := range columns {
		if stats, ok := detail[col]; ok {
			sum += field(stats)
		}
	}
	return sum
}

func collectLatest(detail map[string]ColumnStats, columns []string) []float64 {
	var latest []float64
	for _, col := range columns {
		if stats, ok := detail[col]; ok {
			latest = append(latest, stats.Latest)
		}
	}
	return latest
}

// maxGrowthRate returns the maximum avg growth rate across the columns,
// counting columns without growth statistics as 0.
func maxGrowthRate(detail map[string]ColumnStats, columns []string) float64 {
	maxRate := 0.0
	first := true
	for _, col := range columns {
		rate := 0.0
		if stats, ok := detail[col]; ok && stats.HasGrowth() {
			rate = *stats.AvgGrowthRate
		}
		if first || rate > maxRate {
			maxRate = rate
			first = false
		}
	}
	return maxRate
}
