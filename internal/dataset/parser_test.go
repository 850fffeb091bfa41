package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Month,Revenue,Monthly Burn,Active Users,Notes
2025-01,12000,8500,450,good
2025-02,15500,9200,520,
2025-03,18200,9800,610,launch
`

func TestParseCSV(t *testing.T) {
	parsed, err := Parse("metrics.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"month", "revenue", "monthly_burn", "active_users", "notes"}, parsed.Columns)
	assert.Equal(t, []string{"revenue", "monthly_burn", "active_users"}, parsed.NumericColumns)
	assert.Equal(t, "month", parsed.PeriodColumn)
	require.Equal(t, 3, parsed.RowCount())

	assert.Equal(t, "12000", parsed.Rows[0]["revenue"])
	assert.Nil(t, parsed.Rows[1]["notes"])
}

func TestParseCSVRaggedRows(t *testing.T) {
	csv := "a,b,c\n1,2\n4,5,6\n"
	parsed, err := Parse("data.csv", strings.NewReader(csv))
	require.NoError(t, err)

	require.Equal(t, 2, parsed.RowCount())
	assert.Nil(t, parsed.Rows[0]["c"])
	assert.Equal(t, "6", parsed.Rows[1]["c"])
}

func TestParseCSVMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty file", ""},
		{"unterminated quote", "a,b\n\"oops,1\n2,3\n\"x\"y,z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.csv", strings.NewReader(tt.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedFile)
		})
	}
}

func TestNormalizeColumn(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Monthly Revenue  ", "monthly_revenue"},
		{"CAC", "cac"},
		{"churn_rate", "churn_rate"},
		{"Net Revenue Retention", "net_revenue_retention"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeColumn(tt.in))
	}
}

func TestDetectPeriodColumn(t *testing.T) {
	assert.Equal(t, "month", DetectPeriodColumn([]string{"mrr", "month", "report_date"}))
	assert.Equal(t, "fiscal_quarter", DetectPeriodColumn([]string{"revenue", "fiscal_quarter"}))
	assert.Equal(t, "", DetectPeriodColumn([]string{"revenue", "cost"}))
}

func TestDetectNumericColumns(t *testing.T) {
	rows := []map[string]any{
		{"revenue": "100", "label": "alpha", "mixed": "1", "empty": nil},
		{"revenue": "200.5", "label": "beta", "mixed": "two", "empty": nil},
		{"revenue": nil, "label": "gamma", "mixed": "3", "empty": nil},
	}
	columns := []string{"revenue", "label", "mixed", "empty"}

	// A single non-numeric cell disqualifies the column; a fully empty
	// column is not numeric either.
	assert.Equal(t, []string{"revenue"}, DetectNumericColumns(columns, rows))
}
