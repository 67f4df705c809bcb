package model

import "github.com/shopspring/decimal"

// ProviderPayload is the decoded body of a provider response.
// Numbers are decoded straight into decimals so no precision is lost.
type ProviderPayload struct {
	Success bool                         `json:"success"`
	Date    string                       `json:"date,omitempty"`
	Rates   map[Currency]decimal.Decimal `json:"rates,omitempty"`
	Result  decimal.NullDecimal          `json:"result"`
	Error   *ProviderError               `json:"error,omitempty"`
}

type ProviderError struct {
	Code int    `json:"code"`
	Type string `json:"type,omitempty"`
	Info string `json:"info,omitempty"`
}

// Rate returns the rate for the quote currency, if the payload has one.
func (p *ProviderPayload) Rate(quote Currency) (decimal.Decimal, bool) {
	rate, ok := p.Rates[quote]
	return rate, ok
}
