package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsRetriable(t *testing.T) {
	t.Run("concurrency conflict is retriable", func(t *testing.T) {
		if !IsRetriable(ErrConcurrencyConflict) {
			t.Error("ErrConcurrencyConflict should be retriable")
		}
	})

	t.Run("wrapped conflict is retriable", func(t *testing.T) {
		wrapped := fmt.Errorf("%w: asset TRY of customer 1", ErrConcurrencyConflict)
		if !IsRetriable(wrapped) {
			t.Error("wrapped ErrConcurrencyConflict should be retriable")
		}
	})

	t.Run("other domain errors are not", func(t *testing.T) {
		for _, err := range []error{
			ErrResourceNotFound,
			ErrInsufficientBalance,
			ErrInvalidOrderStatus,
			ErrValidation,
			ErrBalanceInvariant,
			errors.New("plain error"),
		} {
			if IsRetriable(err) {
				t.Errorf("%v should not be retriable", err)
			}
		}
	})
}

func TestErrorWrappingKeepsKind(t *testing.T) {
	err := fmt.Errorf("%w: need 1500 TRY, usable 1000", ErrInsufficientBalance)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Error("wrapped error must still match its sentinel")
	}
	if errors.Is(err, ErrResourceNotFound) {
		t.Error("wrapped error must not match other sentinels")
	}
}
