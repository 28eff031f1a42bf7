package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAssetApply(t *testing.T) {
	asset := &Asset{
		Symbol:     "TRY",
		Size:       dec("10000"),
		UsableSize: dec("10000"),
	}

	t.Run("reservation reduces only usable size", func(t *testing.T) {
		size, usable, err := asset.Apply(decimal.Zero, dec("-1500"))
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if !size.Equal(dec("10000")) {
			t.Errorf("size = %s, want 10000", size)
		}
		if !usable.Equal(dec("8500")) {
			t.Errorf("usable = %s, want 8500", usable)
		}
	})

	t.Run("settlement credits both fields", func(t *testing.T) {
		size, usable, err := asset.Apply(dec("1500"), dec("1500"))
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if !size.Equal(dec("11500")) || !usable.Equal(dec("11500")) {
			t.Errorf("got size=%s usable=%s, want both 11500", size, usable)
		}
	})

	t.Run("negative usable rejected", func(t *testing.T) {
		_, _, err := asset.Apply(decimal.Zero, dec("-10001"))
		if !errors.Is(err, ErrBalanceInvariant) {
			t.Errorf("err = %v, want ErrBalanceInvariant", err)
		}
	})

	t.Run("usable exceeding size rejected", func(t *testing.T) {
		_, _, err := asset.Apply(decimal.Zero, dec("1"))
		if !errors.Is(err, ErrBalanceInvariant) {
			t.Errorf("err = %v, want ErrBalanceInvariant", err)
		}
	})

	t.Run("negative size rejected", func(t *testing.T) {
		locked := &Asset{Symbol: "AAPL", Size: dec("10"), UsableSize: dec("0")}
		_, _, err := locked.Apply(dec("-11"), decimal.Zero)
		if !errors.Is(err, ErrBalanceInvariant) {
			t.Errorf("err = %v, want ErrBalanceInvariant", err)
		}
	})

	t.Run("apply does not mutate the record", func(t *testing.T) {
		if !asset.Size.Equal(dec("10000")) || !asset.UsableSize.Equal(dec("10000")) {
			t.Errorf("asset mutated: size=%s usable=%s", asset.Size, asset.UsableSize)
		}
	})
}
