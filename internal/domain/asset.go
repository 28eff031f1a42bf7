package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Asset is the per-(customer, symbol) balance record.
//
// Size is the total quantity ever credited to the customer for the
// symbol; UsableSize is the portion currently free to reserve against
// new orders. A reservation only lowers UsableSize, settlement credits
// both fields. The invariant 0 <= UsableSize <= Size must hold at
// every observable point.
//
// Version is an optimistic-lock counter bumped by the store on every
// delta; a writer holding a stale copy loses the compare-and-set.
type Asset struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	CustomerID uint            `gorm:"uniqueIndex:idx_assets_customer_symbol;not null" json:"customer_id"`
	Symbol     string          `gorm:"uniqueIndex:idx_assets_customer_symbol;not null" json:"symbol"`
	Size       decimal.Decimal `gorm:"type:decimal(19,2);not null" json:"size"`
	UsableSize decimal.Decimal `gorm:"type:decimal(19,2);not null" json:"usable_size"`
	Version    int64           `gorm:"not null;default:0" json:"-"`
}

// Apply computes the balances after adding the deltas. It returns
// ErrBalanceInvariant when the result would leave the record outside
// 0 <= usableSize <= size; sufficiency checks belong to the caller,
// this is the last-resort corruption guard.
func (a *Asset) Apply(sizeDelta, usableDelta decimal.Decimal) (size, usable decimal.Decimal, err error) {
	size = a.Size.Add(sizeDelta)
	usable = a.UsableSize.Add(usableDelta)
	if size.IsNegative() || usable.IsNegative() || usable.GreaterThan(size) {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf(
			"%w: %s would become size=%s usable=%s", ErrBalanceInvariant, a.Symbol, size, usable)
	}
	return size, usable, nil
}
