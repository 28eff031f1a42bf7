package domain

import "errors"

// Sentinel errors for the domain failure taxonomy. Callers inspect
// them with errors.Is; services wrap them with context via fmt.Errorf
// and %w so the kind survives the wrapping.
var (
	// ErrResourceNotFound is returned when a referenced customer or
	// order does not exist, or an order is not owned by the given customer.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrInsufficientBalance is returned when a reservation check fails.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidOrderStatus is returned when a cancel or match targets
	// an order that is no longer PENDING.
	ErrInvalidOrderStatus = errors.New("invalid order status")

	// ErrValidation is returned for malformed input: non-positive size
	// or price, missing required fields, unknown enum values.
	ErrValidation = errors.New("validation failed")

	// ErrConcurrencyConflict is returned when an optimistic-lock check
	// fails because another writer committed first. The operation may
	// be retried as a whole.
	ErrConcurrencyConflict = errors.New("concurrency conflict")

	// ErrBalanceInvariant signals corrupted state: a delta would leave
	// an asset outside 0 <= usableSize <= size. Callers must validate
	// sufficiency before applying debits, so this is never expected in
	// normal operation.
	ErrBalanceInvariant = errors.New("balance invariant violated")

	// ErrInvalidCredentials is returned on login failure. It
	// deliberately does not distinguish unknown user from wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// IsRetriable reports whether the failed operation may be retried as a
// whole. Only optimistic-lock conflicts qualify; every other domain
// error is deterministic.
func IsRetriable(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}
