package model

import "strings"

// Currency is an opaque currency code such as "EUR" or "USD".
type Currency string

// EUR is the provider's fixed reporting currency.
const EUR Currency = "EUR"

func (c Currency) String() string {
	return string(c)
}

// ParseSymbols splits a comma-separated symbol list, keeping order and
// dropping blanks. An empty input yields nil.
func ParseSymbols(s string) []Currency {
	var symbols []Currency
	for _, part := range strings.Split(s, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		symbols = append(symbols, Currency(part))
	}
	return symbols
}

// JoinSymbols is the inverse of ParseSymbols.
func JoinSymbols(symbols []Currency) string {
	parts := make([]string, len(symbols))
	for i, s := range symbols {
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}
