package service

import (
	"errors"
	"fmt"
)

// ErrHardFailure is wrapped by every operational error returned from Dispatch.
var ErrHardFailure = errors.New("provider request failed")

// HardFailureError is a provider response that must not be treated as a
// business outcome: a non-2xx status, or success=false with an error code
// outside the benign allow-list.
type HardFailureError struct {
	StatusCode int
	Body       []byte
	ErrorCode  int
	ErrorType  string
}

func (e *HardFailureError) Error() string {
	return fmt.Sprintf("HTTP error %d. Response is %q", e.StatusCode, string(e.Body))
}

func (e *HardFailureError) Unwrap() error {
	return ErrHardFailure
}

func wrapHardFailure(msg string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrHardFailure, msg, err)
}
