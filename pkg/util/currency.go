package util

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatVND rounds to whole dong and groups thousands with dots, the way
// vi-VN locale formatting does: 1250000 -> "1.250.000 VND".
func FormatVND(amount decimal.Decimal) string {
	return FormatNumber(amount.Round(0)) + " VND"
}

// FormatNumber renders a decimal with "." as the thousands separator and
// "," as the decimal separator.
func FormatNumber(d decimal.Decimal) string {
	s := d.String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(intPart) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(intPart[:lead])
	for i := lead; i < len(intPart); i += 3 {
		b.WriteByte('.')
		b.WriteString(intPart[i : i+3])
	}
	if hasFrac {
		b.WriteByte(',')
		b.WriteString(fracPart)
	}
	return b.String()
}
