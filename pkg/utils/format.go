// Package utils provides common utility functions for finchart.
package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatCompact formats a number with a K/M/B suffix and one decimal place.
// Values under a thousand are rounded to an integer.
// e.g., 1_500_000 → "1.5M", -2_340_000_000 → "-2.3B", 742.6 → "743"
func FormatCompact(num float64) string {
	abs := math.Abs(num)
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("%.1fB", num/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.1fM", num/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.1fK", num/1e3)
	default:
		return fmt.Sprintf("%.0f", num)
	}
}

// FormatPct formats a percentage value with sign and suffix.
// e.g., 2.45 → "+2.45%", -1.23 → "-1.23%"
func FormatPct(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// FormatRatio formats a plain ratio with up to 2 decimals, trailing zeros removed.
func FormatRatio(v float64) string {
	return formatWithDecimals(v)
}

// formatWithDecimals formats a number with up to 2 decimal places,
// removing trailing zeros.
func formatWithDecimals(n float64) string {
	s := fmt.Sprintf("%.2f", n)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	if s == "-0" {
		return "0"
	}
	return s
}
