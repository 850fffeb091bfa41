package dataset

// Parsed is the outcome of parsing one uploaded file.
type Parsed struct {
	// Columns in original file order, normalized.
	Columns []string `json:"columns"`
	// NumericColumns is the subset of Columns that passed the numeric
	// heuristic, in declaration order.
	NumericColumns []string `json:"numeric_columns"`
	// PeriodColumn is the first column whose name suggests a time axis,
	// or empty when none was found.
	PeriodColumn string `json:"period_column"`
	// Rows maps normalized column name to the raw cell value; empty cells
	// are nil. Row order follows the file.
	Rows []map[string]any `json:"rows"`
}

// RowCount returns the number of parsed data rows.
func (p *Parsed) RowCount() int {
	return len(p.Rows)
}

// periodKeywords flag a column as the dataset's time axis.
var periodKeywords = []string{"date", "month", "period", "time", "year", "quarter"}
