package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrRequestNotSupported    = errors.New("request not supported")
	ErrAccessTierRejected     = errors.New("request not allowed for access tier")
	ErrRateNotFound           = errors.New("exchange rate not found")
	ErrConversionNotPerformed = errors.New("conversion not performed")
)

// Outcome is one of RateResult, ConversionResult or *Failure.
type Outcome interface {
	isOutcome()
}

type RateResult struct {
	Rate decimal.Decimal
	Date time.Time
}

type ConversionResult struct {
	Amount decimal.Decimal
	Date   time.Time
}

type FailureKind int

const (
	RequestNotSupported FailureKind = iota + 1
	RateNotFound
	ConversionNotPerformed
)

func (k FailureKind) String() string {
	switch k {
	case RequestNotSupported:
		return "request_not_supported"
	case RateNotFound:
		return "rate_not_found"
	case ConversionNotPerformed:
		return "conversion_not_performed"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(k))
	}
}

// Failure is a business outcome, not an operational error. It still
// implements error so callers can use errors.Is against the sentinels.
type Failure struct {
	Kind   FailureKind
	Detail string
	err    error
}

func NewFailure(kind FailureKind, detail string, causes ...error) *Failure {
	return &Failure{Kind: kind, Detail: detail, err: errors.Join(append([]error{kind.sentinel()}, causes...)...)}
}

func (f *Failure) Error() string {
	return f.Detail
}

func (f *Failure) Unwrap() error {
	return f.err
}

func (k FailureKind) sentinel() error {
	switch k {
	case RateNotFound:
		return ErrRateNotFound
	case ConversionNotPerformed:
		return ErrConversionNotPerformed
	default:
		return ErrRequestNotSupported
	}
}

func (RateResult) isOutcome()       {}
func (ConversionResult) isOutcome() {}
func (*Failure) isOutcome()         {}
