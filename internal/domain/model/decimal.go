package model

import "github.com/shopspring/decimal"

// FormatDecimal renders d with the scale it was parsed with, so "1.150000"
// stays "1.150000" where String would print "1.15".
func FormatDecimal(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}
