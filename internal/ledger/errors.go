package ledger

import (
	"errors"
	"fmt"
)

// StoreError is the single error type surfaced by every backend.
//
// The taxonomy is closed:
//   - Validation: caller-supplied data violates a documented invariant.
//     Always caught before any write; never leaves partial state.
//   - Anonymous payment mismatch: an anonymous transaction whose
//     payment does not equal its price. A validation failure with its
//     own code so callers can distinguish it.
//   - Not found: an operation referenced an id that does not exist.
//     The explicitly idempotent removals never raise it.
//   - Backend: the underlying storage engine rejected or failed to
//     execute an operation. Always surfaced, never retried by the
//     store itself; retry policy belongs to the caller.
type StoreError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Entity names the record kind involved ("client", "alias",
	// "transaction"), when known.
	Entity string

	// ID is the record id involved, when known.
	ID int64

	// Err is the wrapped backend cause, set only for ErrCodeBackend.
	Err error
}

// ErrorCode categorizes storage failures.
type ErrorCode string

const (
	// ErrCodeValidation indicates caller data violated an invariant.
	ErrCodeValidation ErrorCode = "VALIDATION"

	// ErrCodeAnonPaymentMismatch indicates an anonymous transaction
	// whose payment differs from its price.
	ErrCodeAnonPaymentMismatch ErrorCode = "ANON_PAYMENT_MISMATCH"

	// ErrCodeNotFound indicates a referenced id does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeBackend indicates the storage engine failed.
	ErrCodeBackend ErrorCode = "BACKEND"
)

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Entity != "" && e.ID != 0 {
		return fmt.Sprintf("%s: %s (%s=%d)", e.Code, e.Message, e.Entity, e.ID)
	}
	if e.Entity != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Entity)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the backend cause for errors.Is/As chains.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a StoreError for invariant violations.
func NewValidationError(entity, message string) *StoreError {
	return &StoreError{
		Code:    ErrCodeValidation,
		Message: message,
		Entity:  entity,
	}
}

// NewAnonPaymentError creates a StoreError for the anonymous-payment
// invariant: an anonymous transaction cannot carry an outstanding
// balance.
func NewAnonPaymentError(price, payment int64) *StoreError {
	return &StoreError{
		Code:    ErrCodeAnonPaymentMismatch,
		Message: fmt.Sprintf("anonymous transaction must be fully paid (price=%d, payment=%d)", price, payment),
		Entity:  "transaction",
	}
}

// NewNotFoundError creates a StoreError for a missing record.
func NewNotFoundError(entity string, id int64) *StoreError {
	return &StoreError{
		Code:    ErrCodeNotFound,
		Message: "no such " + entity,
		Entity:  entity,
		ID:      id,
	}
}

// NewBackendError wraps a storage-engine failure.
func NewBackendError(op string, err error) *StoreError {
	return &StoreError{
		Code:    ErrCodeBackend,
		Message: op,
		Err:     err,
	}
}

// IsValidation returns true for validation failures, including the
// anonymous-payment mismatch. Uses errors.As to handle wrapped errors.
func IsValidation(err error) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code == ErrCodeValidation || se.Code == ErrCodeAnonPaymentMismatch
	}
	return false
}

// IsAnonPaymentMismatch returns true if the error is specifically the
// anonymous-payment invariant violation.
func IsAnonPaymentMismatch(err error) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code == ErrCodeAnonPaymentMismatch
	}
	return false
}

// IsNotFound returns true if the error reports a missing record.
func IsNotFound(err error) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code == ErrCodeNotFound
	}
	return false
}

// IsBackend returns true if the error wraps a storage-engine failure.
func IsBackend(err error) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code == ErrCodeBackend
	}
	return false
}
