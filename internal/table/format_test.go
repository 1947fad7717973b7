package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnForConventions(t *testing.T) {
	cases := []struct {
		key    string
		format Format
		unit   string
	}{
		{"monthly_cost", FormatCurrency, ""},
		{"estimated_monthly_savings", FormatCurrency, ""},
		{"percent_of_total", FormatPercentage, ""},
		{"size_gb", FormatSize, " GB"},
		{"memory_gb", FormatSize, " GB"},
		{"vcpus", FormatCount, " vCPUs"},
		{"name", FormatText, ""},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			col := ColumnFor(tc.key)
			assert.Equal(t, tc.format, col.Format)
			assert.Equal(t, tc.unit, col.Unit)
		})
	}
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Monthly Cost", Title("monthly_cost"))
	assert.Equal(t, "Name", Title("name"))
	assert.Equal(t, "Percent Of Total", Title("percent_of_total"))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "$1234.50", ColumnFor("monthly_cost").FormatValue(1234.5))
	assert.Equal(t, "$0.00", ColumnFor("total_cost").FormatValue(0.0))
	assert.Equal(t, "42.3%", ColumnFor("percent_of_total").FormatValue(42.34))
	assert.Equal(t, "100 GB", ColumnFor("size_gb").FormatValue(100))
	assert.Equal(t, "4 vCPUs", ColumnFor("vcpus").FormatValue(4))
	assert.Equal(t, "web-server", ColumnFor("name").FormatValue("web-server"))
	assert.Equal(t, "N/A", ColumnFor("name").FormatValue(nil))
}

func TestRawValue(t *testing.T) {
	assert.Equal(t, "12.5", RawValue(12.5))
	assert.Equal(t, "12", RawValue(12.0))
	assert.Equal(t, "hello", RawValue("hello"))
	assert.Equal(t, "", RawValue(nil))
	assert.Equal(t, "7", RawValue(7))
}
