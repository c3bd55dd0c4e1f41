package series

import "github.com/shopspring/decimal"

// Round2 rounds half away from zero to two decimals. Percentages are never
// negative, so this is round-half-up for every value the dashboard sees.
func Round2(v float64) float64 {
	return roundDecimal(decimal.NewFromFloat(v))
}

func roundDecimal(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
