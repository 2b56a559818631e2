package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMonetary renders an amount with fixed 2 fractional digits and no
// thousands separator, as mandated for export files. Rounding is half-up and
// happens here, at the output boundary only.
func FormatMonetary(amount decimal.Decimal, decimalComma bool) string {
	s := amount.Round(2).StringFixed(2)
	if decimalComma {
		s = strings.Replace(s, ".", ",", 1)
	}
	return s
}

// FormatWithPrecision formats an amount with the given precision.
func FormatWithPrecision(amount decimal.Decimal, precision int) string {
	return amount.Round(int32(precision)).String()
}
