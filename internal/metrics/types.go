package metrics

// Row is a single dataset row as produced by the upload parser: normalized
// column name -> scalar cell. Cell values may be float64, numeric strings,
// nil, or garbage; coercion happens per cell inside the engine.
type Row map[string]any

// ColumnStats contains the derived statistics for one numeric column.
// GrowthRates and AvgGrowthRate are only present for columns with at least
// two valid values. Both use pointers so that a computed-but-empty series
// (every adjacent pair had a zero prior value) still serializes as
// "growth_rates": [] with an avg_growth_rate of 0, distinct from the keys
// being absent entirely.
type ColumnStats struct {
	Mean   float64 `json:"mean"`
	Latest float64 `json:"latest"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Total  float64 `json:"total"`

	GrowthRates   *[]float64 `json:"growth_rates,omitempty"`
	AvgGrowthRate *float64   `json:"avg_growth_rate,omitempty"`
}

// HasGrowth reports whether growth statistics were computed for the column.
func (cs ColumnStats) HasGrowth() bool {
	return cs.AvgGrowthRate != nil
}

// Result is the complete output of one engine run. Scores are clamped to
// [0, 100] and rounded to two decimals. Trends holds the rounded raw value
// series (not growth rates) for every column with at least two valid values.
type Result struct {
	GrowthScore       float64 `json:"growth_score"`
	EfficiencyScore   float64 `json:"efficiency_score"`
	PMFSignal         float64 `json:"pmf_signal"`
	ScalabilityIndex  float64 `json:"scalability_index"`
	CapitalEfficiency float64 `json:"capital_efficiency"`

	Detail map[string]ColumnStats `json:"metrics_detail"`
	Trends map[string][]float64   `json:"trends"`
}

// Buckets partitions numeric columns into semantic roles. Membership is
// non-exclusive: a column may land in several buckets or in none. Order
// within each bucket follows the declaration order of the input columns.
type Buckets struct {
	Revenue   []string
	Cost      []string
	User      []string
	Retention []string
}

// Keyword tables for role classification. Matching is by substring against
// names already normalized by the parser (lowercase, underscores).
var (
	revenueKeywords   = []string{"revenue", "mrr", "arr", "income", "sales", "gmv"}
	costKeywords      = []string{"cost", "expense", "spend", "burn", "cac"}
	userKeywords      = []string{"user", "customer", "subscriber", "client", "account"}
	retentionKeywords = []string{"retention", "churn", "nrr", "ndr"}
)

// Score defaults used when the corresponding bucket evidence is absent.
const (
	defaultEfficiencyScore   = 65.0
	defaultPMFSignal         = 55.0
	defaultScalabilityIndex  = 60.0
	defaultCapitalEfficiency = 55.0

	// Flat consistency term when only a single growth rate is available.
	singleRateConsistency = 60.0
)
