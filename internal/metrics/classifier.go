package metrics

import "strings"

// ClassifyColumns partitions the declared numeric column names into role
// buckets by keyword match. The filter preserves input order and has no
// error conditions: unmatched columns simply end up in no bucket, and
// downstream scoring falls back to defaults for empty buckets.
func ClassifyColumns(columns []string) Buckets {
	return Buckets{
		Revenue:   filterByKeywords(columns, revenueKeywords),
		Cost:      filterByKeywords(columns, costKeywords),
		User:      filterByKeywords(columns, userKeywords),
		Retention: filterByKeywords(columns, retentionKeywords),
	}
}

// filterByKeywords returns the columns whose name contains any keyword.
func filterByKeywords(columns, keywords []string) []string {
	var matched []string
	for _, col := range columns {
		if matchesAny(col, keywords) {
			matched = append(matched, col)
		}
	}
	return matched
}

func matchesAny(name string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}
