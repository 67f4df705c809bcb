package service

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

type Classification int

const (
	// HardFailure means the provider call failed and must surface as an error.
	HardFailure Classification = iota
	// EmptyResult means a valid request for which the provider has no data.
	EmptyResult
)

func (c Classification) String() string {
	if c == EmptyResult {
		return "empty_result"
	}
	return "hard_failure"
}

// Provider error codes that mean "no data" rather than a fault.
const (
	CodeConversionNoRates     = 106
	CodeInvalidBaseCurrency   = 201
	CodeNoRatesForDate        = 302
	CodeInvalidConversionCode = 402
)

var DefaultSoftErrorCodes = []int{
	CodeConversionNoRates,
	CodeInvalidBaseCurrency,
	CodeNoRatesForDate,
	CodeInvalidConversionCode,
}

// ErrorClassifier maps provider error codes onto a Classification using a
// fixed allow-list of benign codes. The zero value treats every code as a
// hard failure.
type ErrorClassifier struct {
	soft map[int]struct{}
}

func NewErrorClassifier(softCodes ...int) *ErrorClassifier {
	soft := make(map[int]struct{}, len(softCodes))
	for _, code := range softCodes {
		soft[code] = struct{}{}
	}
	return &ErrorClassifier{soft: soft}
}

func DefaultErrorClassifier() *ErrorClassifier {
	return NewErrorClassifier(DefaultSoftErrorCodes...)
}

func (c *ErrorClassifier) Classify(code int) Classification {
	if c == nil {
		return HardFailure
	}
	if _, ok := c.soft[code]; ok {
		return EmptyResult
	}
	return HardFailure
}

// SoftCodes returns the allow-list in ascending order.
func (c *ErrorClassifier) SoftCodes() []int {
	if c == nil {
		return nil
	}
	codes := make([]int, 0, len(c.soft))
	for code := range c.soft {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// ParseErrorCodes parses a comma-separated list such as "106,201,302".
func ParseErrorCodes(s string) ([]int, error) {
	var codes []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		code, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid provider error code %q: %w", part, err)
		}
		codes = append(codes, code)
	}
	return codes, nil
}
