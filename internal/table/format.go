package table

import (
	"fmt"
	"strconv"
	"strings"
)

// Format classifies a column's display rendering.
type Format int

const (
	FormatText Format = iota
	FormatCurrency
	FormatPercentage
	FormatCount
	FormatSize
)

// Column describes one table column. Hidden columns are omitted from screen
// output but retained in CSV exports.
type Column struct {
	Key    string
	Title  string
	Format Format
	Unit   string
	Hidden bool
}

// ColumnFor derives a column descriptor from a raw field key, applying the
// backend's naming conventions: cost and savings fields are currency,
// percent fields are percentages, gigabyte sizes and vCPU counts carry a
// unit suffix, everything else is plain text.
func ColumnFor(key string) Column {
	col := Column{Key: key, Title: Title(key), Format: FormatText}
	lower := strings.ToLower(key)
	switch {
	case strings.Contains(lower, "cost") || strings.Contains(lower, "savings"):
		col.Format = FormatCurrency
	case strings.Contains(lower, "percent"):
		col.Format = FormatPercentage
	case strings.Contains(lower, "size_gb") || strings.Contains(lower, "memory_gb"):
		col.Format = FormatSize
		col.Unit = " GB"
	case strings.Contains(lower, "vcpus"):
		col.Format = FormatCount
		col.Unit = " vCPUs"
	}
	return col
}

// Title converts a snake_case field key into a column heading,
// "monthly_cost" becoming "Monthly Cost".
func Title(key string) string {
	parts := strings.Split(key, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// FormatValue renders a cell for screen display according to the column's
// format. Nil cells render as "N/A".
func (c Column) FormatValue(v interface{}) string {
	if v == nil {
		return "N/A"
	}
	switch c.Format {
	case FormatCurrency:
		if f, ok := toFloat(v); ok {
			return fmt.Sprintf("$%.2f", f)
		}
	case FormatPercentage:
		if f, ok := toFloat(v); ok {
			return fmt.Sprintf("%.1f%%", f)
		}
	case FormatSize, FormatCount:
		return RawValue(v) + c.Unit
	}
	return RawValue(v)
}

// RawValue renders a cell without any formatting, as used in CSV exports.
// Floats drop insignificant trailing zeros.
func RawValue(v interface{}) string {
	switch n := v.(type) {
	case nil:
		return ""
	case string:
		return n
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", v)
	}
}
