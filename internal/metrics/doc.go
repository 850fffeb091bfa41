// Package metrics implements the strategic metrics derivation engine.
//
// The engine turns an uploaded tabular dataset (ordered rows of column ->
// scalar, plus the list of columns the parser declared numeric) into five
// bounded composite scores and per-column statistics and trend series:
//
//  1. Growth Score: revenue/user growth rates, centered at 50
//  2. Efficiency Score: revenue vs cost totals
//  3. PMF Signal: retention/churn levels, else growth consistency
//  4. Scalability Index: revenue growth relative to cost growth
//  5. Capital Efficiency: latest revenue vs latest cost
//
// # Architecture
//
//   - types.go: result records, role buckets and keyword tables
//   - classifier.go: column name -> semantic role classification
//   - stats.go: value coercion and per-column statistics extraction
//   - scores.go: the five composite score heuristics
//   - engine.go: orchestrator tying the steps together
//
// # Usage Example
//
//	engine := metrics.NewEngine(slog.Default())
//	result := engine.Compute(ctx, dataset.Rows, dataset.NumericColumns)
//
// The engine is a pure function of its inputs: no I/O, no shared state, no
// randomness. Degenerate input (no rows or no declared numeric columns)
// yields an all-zero result with empty maps rather than an error. Values
// that cannot be coerced to a number are dropped at the cell level, and a
// column with no valid values at all is omitted from the output entirely.
//
// All returned numbers are rounded to two decimals and every composite
// score is clamped to [0, 100].
package metrics
