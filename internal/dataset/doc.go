// Package dataset parses uploaded CSV and XLSX files into the row/column
// form the metrics engine consumes.
//
// Header names are normalized (trimmed, lowercased, spaces to underscores),
// numeric columns are detected by a strict per-cell heuristic (every
// non-empty cell must parse as a number), and the first column whose name
// suggests a time axis is flagged as the period column. Row order is
// preserved as the period axis; the engine relies on it for growth and
// trend computation.
package dataset
