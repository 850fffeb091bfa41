package dataset

import (
	"strconv"
	"strings"
)

// NormalizeColumn canonicalizes a header name: trim, lowercase, spaces to
// underscores. The metrics engine's keyword classifier assumes names in
// this form.
func NormalizeColumn(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// normalizeHeader normalizes all header cells, dropping fully empty ones at
// the tail (a common spreadsheet export artifact).
func normalizeHeader(header []string) []string {
	end := len(header)
	for end > 0 && strings.TrimSpace(header[end-1]) == "" {
		end--
	}
	columns := make([]string, 0, end)
	for _, h := range header[:end] {
		columns = append(columns, NormalizeColumn(h))
	}
	return columns
}

// DetectPeriodColumn returns the first column whose name contains a period
// keyword, or empty when none matches.
func DetectPeriodColumn(columns []string) string {
	for _, col := range columns {
		for _, kw := range periodKeywords {
			if strings.Contains(col, kw) {
				return col
			}
		}
	}
	return ""
}

// DetectNumericColumns returns the columns in which every non-empty cell
// parses as a number, and at least one cell is non-empty. The engine still
// coerces per cell; this heuristic only decides which columns are declared
// numeric at all.
func DetectNumericColumns(columns []string, rows []map[string]any) []string {
	var numeric []string
	for _, col := range columns {
		if isNumericColumn(col, rows) {
			numeric = append(numeric, col)
		}
	}
	return numeric
}

func isNumericColumn(column string, rows []map[string]any) bool {
	nonEmpty := 0
	for _, row := range rows {
		cell, ok := row[column]
		if !ok || cell == nil {
			continue
		}
		s, ok := cell.(string)
		if !ok {
			// Already a number (e.g. re-parsed from stored JSON).
			if _, isFloat := cell.(float64); isFloat {
				nonEmpty++
				continue
			}
			return false
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return false
		}
		nonEmpty++
	}
	return nonEmpty > 0
}
