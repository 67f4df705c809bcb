package model

import (
	"time"

	"github.com/shopspring/decimal"

	"fixer-service/pkg/utils"
)

// Request is one of CurrentRateRequest, HistoricalRateRequest,
// CurrentConversionRequest or HistoricalConversionRequest. Pointers to these
// are accepted too; see Normalize.
type Request interface {
	isRequest()
}

type CurrentRateRequest struct {
	BaseCurrency  Currency
	QuoteCurrency Currency
}

type HistoricalRateRequest struct {
	BaseCurrency  Currency
	QuoteCurrency Currency
	Date          time.Time
}

type CurrentConversionRequest struct {
	BaseAmount    decimal.Decimal
	BaseCurrency  Currency
	QuoteCurrency Currency
}

type HistoricalConversionRequest struct {
	BaseAmount    decimal.Decimal
	BaseCurrency  Currency
	QuoteCurrency Currency
	Date          time.Time
}

func (CurrentRateRequest) isRequest()          {}
func (HistoricalRateRequest) isRequest()       {}
func (CurrentConversionRequest) isRequest()    {}
func (HistoricalConversionRequest) isRequest() {}

// Normalize returns the value form of a request. Pointer variants are
// dereferenced (a nil pointer becomes nil) and historical dates are reduced
// to a UTC calendar date.
func Normalize(request Request) Request {
	switch r := request.(type) {
	case *CurrentRateRequest:
		if r == nil {
			return nil
		}
		return *r
	case *HistoricalRateRequest:
		if r == nil {
			return nil
		}
		return Normalize(*r)
	case *CurrentConversionRequest:
		if r == nil {
			return nil
		}
		return *r
	case *HistoricalConversionRequest:
		if r == nil {
			return nil
		}
		return Normalize(*r)
	case HistoricalRateRequest:
		r.Date = utils.Date(r.Date)
		return r
	case HistoricalConversionRequest:
		r.Date = utils.Date(r.Date)
		return r
	}
	return request
}
