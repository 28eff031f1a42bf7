package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Valid reports whether s is a known side.
func (s Side) Valid() bool {
	switch s {
	case SideBuy, SideSell:
		return true
	}
	return false
}

// OrderStatus is the lifecycle state of an order. PENDING is the only
// non-terminal state; MATCHED and CANCELED are never left again.
type OrderStatus string

const (
	StatusPending  OrderStatus = "PENDING"
	StatusMatched  OrderStatus = "MATCHED"
	StatusCanceled OrderStatus = "CANCELED"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusMatched, StatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether no further transition may leave s.
func (s OrderStatus) Terminal() bool {
	return s == StatusMatched || s == StatusCanceled
}

// Order is a customer's BUY or SELL instruction for one symbol.
// Size and Price are strictly positive; CreateDate is assigned by the
// server at creation and never changes. Only Status is ever mutated,
// and only PENDING -> MATCHED or PENDING -> CANCELED.
type Order struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	CustomerID uint            `gorm:"index:idx_orders_customer_created;not null" json:"customer_id"`
	Symbol     string          `gorm:"not null" json:"symbol"`
	Side       Side            `gorm:"not null" json:"side"`
	Size       decimal.Decimal `gorm:"type:decimal(19,2);not null" json:"size"`
	Price      decimal.Decimal `gorm:"type:decimal(19,2);not null" json:"price"`
	Status     OrderStatus     `gorm:"index;not null" json:"status"`
	CreateDate time.Time       `gorm:"index:idx_orders_customer_created;not null" json:"create_date"`
}

// Cost returns size x price: the currency amount a BUY reserves at
// creation and a SELL earns at settlement.
func (o *Order) Cost() decimal.Decimal {
	return o.Size.Mul(o.Price)
}
