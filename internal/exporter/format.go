package exporter

import (
	"strconv"
)

// formatFloat formats a float64 for text output without trailing zeros, so
// whole quantities print as integers
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatCell renders a table cell as CSV text. Nulls are empty.
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return formatFloat(x)
	case int64:
		return formatInt(x)
	default:
		return ""
	}
}
