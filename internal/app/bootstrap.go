package app

import (
	"log/slog"
	"os"
	"time"

	"github.com/fundadaburda/BrokerageApi/internal/domain"
	"github.com/fundadaburda/BrokerageApi/internal/infra"
	"github.com/fundadaburda/BrokerageApi/internal/infra/storage"
	"github.com/fundadaburda/BrokerageApi/internal/service"

	"github.com/shopspring/decimal"
)

// Bootstrap orchestrates the application startup sequence.
type Bootstrap struct {
	Config  *infra.Config
	Storage *storage.Storage
	Orders  *service.OrderService
	Assets  *service.AssetService
	Auth    *service.AuthService
}

// NewBootstrap creates a new Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads config, sets up logging and storage, builds the
// services, and seeds demo accounts when enabled and the database is
// empty.
func (b *Bootstrap) Initialize() error {
	configPath := os.Getenv("BROKERAGE_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err
	}
	b.Config = cfg

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	store, err := storage.NewStorage(cfg.Database.Path)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("database initialized", slog.String("path", cfg.Database.Path))

	b.Auth = service.NewAuthService(store, cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMin)*time.Minute)
	b.Orders = service.NewOrderService(store, cfg.Settlement.Currency, logger)
	b.Assets = service.NewAssetService(store, logger)

	if cfg.Seed.Enabled {
		if err := b.seedData(); err != nil {
			return err
		}
	}

	return nil
}

// seedData creates the demo accounts on first boot: an admin plus two
// customers with starting balances. A non-empty customers table means
// the database was already seeded.
func (b *Bootstrap) seedData() error {
	count, err := b.Storage.CountCustomers()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if _, err := b.Auth.Register("admin", "admin123", domain.RoleAdmin); err != nil {
		return err
	}

	customer1, err := b.Auth.Register("customer1", "password123", domain.RoleCustomer)
	if err != nil {
		return err
	}
	if err := b.credit(customer1.ID, b.Config.Settlement.Currency, decimal.NewFromInt(100000)); err != nil {
		return err
	}

	customer2, err := b.Auth.Register("customer2", "password123", domain.RoleCustomer)
	if err != nil {
		return err
	}
	if err := b.credit(customer2.ID, b.Config.Settlement.Currency, decimal.NewFromInt(50000)); err != nil {
		return err
	}
	if err := b.credit(customer2.ID, "AAPL", decimal.NewFromInt(100)); err != nil {
		return err
	}

	slog.Info("seed data created", slog.String("accounts", "admin, customer1, customer2"))
	return nil
}

// credit grants a starting balance: owned and usable in equal measure.
func (b *Bootstrap) credit(customerID uint, symbol string, amount decimal.Decimal) error {
	asset, err := b.Storage.GetOrCreateAsset(customerID, symbol)
	if err != nil {
		return err
	}
	return b.Storage.ApplyAssetDelta(asset, amount, amount)
}
