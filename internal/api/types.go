package api

import (
	"time"

	"github.com/fundadaburda/BrokerageApi/internal/domain"

	"github.com/shopspring/decimal"
)

// Request and response bodies for the REST endpoints.

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token      string `json:"token"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	CustomerID uint   `json:"customerId"`
}

type CreateOrderRequest struct {
	CustomerID uint            `json:"customerId"`
	AssetName  string          `json:"assetName"`
	Side       string          `json:"side"`
	Size       decimal.Decimal `json:"size"`
	Price      decimal.Decimal `json:"price"`
}

type MatchOrderRequest struct {
	OrderIDs []uint `json:"orderIds"`
}

type OrderResponse struct {
	ID         uint            `json:"id"`
	CustomerID uint            `json:"customerId"`
	AssetName  string          `json:"assetName"`
	Side       string          `json:"side"`
	Size       decimal.Decimal `json:"size"`
	Price      decimal.Decimal `json:"price"`
	Status     string          `json:"status"`
	CreateDate time.Time       `json:"createDate"`
}

type AssetResponse struct {
	ID         uint            `json:"id"`
	CustomerID uint            `json:"customerId"`
	AssetName  string          `json:"assetName"`
	Size       decimal.Decimal `json:"size"`
	UsableSize decimal.Decimal `json:"usableSize"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toOrderResponse(o domain.Order) OrderResponse {
	return OrderResponse{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		AssetName:  o.Symbol,
		Side:       string(o.Side),
		Size:       o.Size,
		Price:      o.Price,
		Status:     string(o.Status),
		CreateDate: o.CreateDate,
	}
}

func toAssetResponse(a domain.Asset) AssetResponse {
	return AssetResponse{
		ID:         a.ID,
		CustomerID: a.CustomerID,
		AssetName:  a.Symbol,
		Size:       a.Size,
		UsableSize: a.UsableSize,
	}
}
