package model

import "github.com/shopspring/decimal"

// RoundCents rounds a dollar amount to cents. Internal arithmetic keeps full
// float precision; callers round only when presenting a price.
func RoundCents(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// FormatUSD renders a dollar amount as "$123.45".
func FormatUSD(v float64) string {
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}
