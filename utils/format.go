// Package utils provides utility functions for the application.
package utils

import (
	"fmt"
	"strings"
)

// FormatNumber renders a value with two decimals and thousands separators,
// e.g. 1234.5 -> "1,234.50".
func FormatNumber(v float64) string {
	s := fmt.Sprintf("%.2f", v)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}

	out := b.String() + "." + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

// FormatCurrency renders a dollar amount, e.g. 120 -> "$120.00".
func FormatCurrency(v float64) string {
	return "$" + FormatNumber(v)
}
