package utils

import (
	"github.com/shopspring/decimal"
)

// LocalPrecision is the number of decimal places shown for local currency amounts.
const LocalPrecision = 2

// FormatWithPrecision formats an amount rounded to the given precision, keeping trailing zeros.
// Example: amount 578.795 with precision 2 returns "578.80"
// Example: amount 12 with precision 2 returns "12.00"
func FormatWithPrecision(amount decimal.Decimal, precision int) string {
	return amount.StringFixed(int32(precision))
}

// FormatLocal formats an amount of local currency followed by its code.
func FormatLocal(amount decimal.Decimal, localCurrency string) string {
	return FormatWithPrecision(amount, LocalPrecision) + " " + localCurrency
}
