package tb

import (
	"errors"
	"fmt"
)

// CheckError represents a correctness failure detected by the harness.
//
// Failures fall into three categories:
//   - Protocol violation: the device completed a read the reference model
//     had no pending write for. Fatal.
//   - Data mismatch: observed read data differs from the expected head of
//     the reference queue. Reported with context, accumulated.
//   - Wait timeout: a bounded readiness poll (full/empty) exceeded its
//     edge budget. Fatal; the harness cannot tell a stuck device from an
//     infinitely slow one.
type CheckError struct {
	// Code identifies the failure category.
	Code CheckErrorCode

	// Message is a human-readable description.
	Message string

	// Index is the 0-based transfer index, where meaningful.
	Index int

	// Expected and Observed carry the data bytes for mismatches.
	Expected byte
	Observed byte

	// Domain names the clock domain for timeouts ("clk_wr"/"clk_rd").
	Domain string
}

// CheckErrorCode categorizes check failures.
type CheckErrorCode string

const (
	// ErrCodeProtocolViolation indicates a read completion with no pending write.
	ErrCodeProtocolViolation CheckErrorCode = "PROTOCOL_VIOLATION"

	// ErrCodeDataMismatch indicates observed read data != expected data.
	ErrCodeDataMismatch CheckErrorCode = "DATA_MISMATCH"

	// ErrCodeWaitTimeout indicates a readiness poll exceeded its edge bound.
	ErrCodeWaitTimeout CheckErrorCode = "WAIT_TIMEOUT"
)

// Error implements the error interface.
func (e *CheckError) Error() string {
	switch e.Code {
	case ErrCodeDataMismatch:
		return fmt.Sprintf("%s: transfer %d: expected 0x%02x, observed 0x%02x",
			e.Code, e.Index, e.Expected, e.Observed)
	case ErrCodeWaitTimeout:
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Domain)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsProtocolViolation reports whether err is a protocol violation.
// Uses errors.As to handle wrapped errors.
func IsProtocolViolation(err error) bool {
	var ce *CheckError
	return errors.As(err, &ce) && ce.Code == ErrCodeProtocolViolation
}

// IsWaitTimeout reports whether err is a bounded-poll timeout.
func IsWaitTimeout(err error) bool {
	var ce *CheckError
	return errors.As(err, &ce) && ce.Code == ErrCodeWaitTimeout
}

// NewProtocolViolation creates the fatal "read with no pending write" error.
func NewProtocolViolation(index int) *CheckError {
	return &CheckError{
		Code:    ErrCodeProtocolViolation,
		Message: "read event observed with no pending write in reference queue",
		Index:   index,
	}
}

// NewDataMismatch creates a data-integrity mismatch for transfer index.
func NewDataMismatch(index int, expected, observed byte) *CheckError {
	return &CheckError{
		Code:     ErrCodeDataMismatch,
		Message:  "observed read data does not match reference queue head",
		Index:    index,
		Expected: expected,
		Observed: observed,
	}
}

// NewWaitTimeout creates the fatal bounded-poll timeout for a domain.
func NewWaitTimeout(domain string, edges int) *CheckError {
	return &CheckError{
		Code:    ErrCodeWaitTimeout,
		Message: fmt.Sprintf("readiness poll exceeded %d edges", edges),
		Domain:  domain,
	}
}
