package domain

import (
	"errors"
	"fmt"
)

// ErrVersionConflict is returned by repositories when an optimistic
// concurrency check fails: the record changed since it was read.
var ErrVersionConflict = errors.New("version conflict")

// ValidationError reports a payment method payload rejected locally, before
// any network call. Code is machine-readable for the UI collaborators.
type ValidationError struct {
	Field string
	Code  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Code)
}

// ProviderError reports a failure from a payment provider. Retryable errors
// (timeouts, 5xx) may be retried with backoff; fatal errors (4xx, rejected
// business rules, unmapped status values) are surfaced immediately.
type ProviderError struct {
	Provider  string
	Code      string
	Message   string
	Retryable bool
}

func (e *ProviderError) Error() string {
	kind := "fatal"
	if e.Retryable {
		kind = "retryable"
	}
	return fmt.Sprintf("provider %s error (%s, code=%s): %s", e.Provider, kind, e.Code, e.Message)
}

// ErrProviderUnavailable is surfaced after retryable provider errors exhaust
// the bounded retry budget.
var ErrProviderUnavailable = errors.New("provider unavailable")

// StateConflictError reports an invalid lifecycle transition or a monetary
// mutation that would violate a ledger invariant. Never retried automatically.
type StateConflictError struct {
	Reason string
}

func (e *StateConflictError) Error() string {
	return "state conflict: " + e.Reason
}

// NotFoundError reports an unknown entity id.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsStateConflict(err error) bool {
	var sc *StateConflictError
	return errors.As(err, &sc)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsRetryable reports whether err is a provider error worth retrying.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}
