package metrics

import (
	"context"
	"log/slog"
)

// Engine derives strategic metrics from an already-parsed tabular dataset.
// It is stateless and safe for concurrent use; Compute is a pure function
// of its inputs.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a new metrics engine.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger.With(slog.String("component", "metrics_engine"))}
}

// Compute runs the full derivation: classify columns, extract per-column
// statistics and trends, then combine them into the five composite scores.
//
// Degenerate input (no rows or no declared numeric columns) returns the
// defined zero result with empty maps; it is not an error.
func (e *Engine) Compute(ctx context.Context, rows []Row, numericColumns []string) Result {
	if len(rows) == 0 || len(numericColumns) == 0 {
		e.logger.InfoContext(ctx, "degenerate dataset, returning zero result",
			"rows", len(rows),
			"numeric_columns", len(numericColumns),
		)
		return Result{
			Detail: map[string]ColumnStats{},
			Trends: map[string][]float64{},
		}
	}

	detail := make(map[string]ColumnStats)
	trends := make(map[string][]float64)

	for _, col := range numericColumns {
		values := columnValues(rows, col)
		if len(values) == 0 {
			// Columns with no coercible values are omitted entirely.
			continue
		}
		detail[col] = computeStats(values)
		if len(values) > 1 {
			trends[col] = trendSeries(values)
		}
	}

	buckets := ClassifyColumns(numericColumns)

	growth, collectedRates := growthScore(detail, buckets, numericColumns)
	result := Result{
		GrowthScore:       round2(growth),
		EfficiencyScore:   round2(efficiencyScore(detail, buckets)),
		PMFSignal:         round2(pmfSignal(detail, buckets, numericColumns, collectedRates, growth)),
		ScalabilityIndex:  round2(scalabilityIndex(detail, buckets)),
		CapitalEfficiency: round2(capitalEfficiency(detail, buckets)),
		Detail:            detail,
		Trends:            trends,
	}

	e.logger.InfoContext(ctx, "metrics derivation completed",
		"rows", len(rows),
		"numeric_columns", len(numericColumns),
		"columns_with_stats", len(detail),
		"growth_score", result.GrowthScore,
		"efficiency_score", result.EfficiencyScore,
	)

	return result
}
