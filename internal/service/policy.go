package service

import "fixer-service/internal/domain/model"

// CanAttempt reports whether a request may be sent at all with the given
// access tier. Conversions need a subscription; free keys only get rates
// quoted against EUR.
func CanAttempt(tier model.AccessTier, request model.Request) bool {
	switch r := model.Normalize(request).(type) {
	case model.CurrentConversionRequest, model.HistoricalConversionRequest:
		return tier == model.Subscription
	case model.CurrentRateRequest:
		return rateAllowed(tier, r.BaseCurrency)
	case model.HistoricalRateRequest:
		return rateAllowed(tier, r.BaseCurrency)
	default:
		return false
	}
}

func rateAllowed(tier model.AccessTier, base model.Currency) bool {
	return tier == model.Subscription || base == model.EUR
}
