package money

import "github.com/shopspring/decimal"

// Round normalizes a money amount to 2 decimal places using round-half-up.
// Every price the engine produces passes through here; amounts are never
// truncated.
func Round(amount decimal.Decimal) decimal.Decimal {
	// decimal.Round rounds half away from zero, which is half-up for the
	// non-negative amounts money math produces.
	return amount.Round(2)
}

// FromPercent converts a percentage (e.g. 10 for 10%) into its fraction.
func FromPercent(percent decimal.Decimal) decimal.Decimal {
	return percent.Div(decimal.NewFromInt(100))
}

// Zero is the canonical zero amount.
func Zero() decimal.Decimal {
	return decimal.Zero
}

// Max returns the larger of a and b.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}
