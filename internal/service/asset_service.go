package service

import (
	"log/slog"

	"github.com/fundadaburda/BrokerageApi/internal/domain"
	"github.com/fundadaburda/BrokerageApi/internal/infra/storage"
)

// AssetService exposes read access to the per-customer asset ledger.
// All mutations go through OrderService, which owns the reservation
// and settlement rules.
type AssetService struct {
	store *storage.Storage
	log   *slog.Logger
}

// NewAssetService creates an AssetService.
func NewAssetService(store *storage.Storage, log *slog.Logger) *AssetService {
	return &AssetService{store: store, log: log}
}

// ListAssets returns the customer's balance records, optionally
// filtered by a case-insensitive partial symbol match.
func (s *AssetService) ListAssets(customerID uint, symbolFilter string) ([]domain.Asset, error) {
	if _, err := s.store.GetCustomer(customerID); err != nil {
		return nil, err
	}
	return s.store.ListAssets(customerID, symbolFilter)
}
