package analytics

import "github.com/shopspring/decimal"

// Round2 rounds a currency amount to cents, half away from zero.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// sumExact adds amounts in decimal so totals do not drift with order.
func sumExact(values []float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.InexactFloat64()
}
