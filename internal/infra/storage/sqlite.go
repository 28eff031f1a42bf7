package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fundadaburda/BrokerageApi/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage wraps the gorm handle for data persistence. A Storage bound
// to a transaction (see Transaction) exposes the same API, so services
// run read-check-write sequences against one consistent snapshot.
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the SQLite database at path and runs
// migrations.
func NewStorage(path string) (*Storage, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create DB directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Customer{}, &domain.Asset{}, &domain.Order{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// Transaction runs fn against a Storage bound to a single database
// transaction: committed when fn returns nil, rolled back on any error
// or panic. This is the atomicity boundary for the four core
// operations; nothing inside a failed fn survives.
func (s *Storage) Transaction(fn func(tx *Storage) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Storage{db: tx})
	})
}

// ======================================================================================
// Customer Operations
// ======================================================================================

// CreateCustomer inserts a new customer.
func (s *Storage) CreateCustomer(c *domain.Customer) error {
	return s.db.Create(c).Error
}

// GetCustomer retrieves a customer by id.
func (s *Storage) GetCustomer(id uint) (*domain.Customer, error) {
	var c domain.Customer
	err := s.db.First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: customer %d", domain.ErrResourceNotFound, id)
	}
	return &c, err
}

// GetCustomerByUsername retrieves a customer by unique username.
func (s *Storage) GetCustomerByUsername(username string) (*domain.Customer, error) {
	var c domain.Customer
	err := s.db.First(&c, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: customer %q", domain.ErrResourceNotFound, username)
	}
	return &c, err
}

// CountCustomers returns the number of customer records.
func (s *Storage) CountCustomers() (int64, error) {
	var count int64
	err := s.db.Model(&domain.Customer{}).Count(&count).Error
	return count, err
}

// ======================================================================================
// Asset Operations
// ======================================================================================

// GetOrCreateAsset returns the (customer, symbol) balance record,
// inserting a zero record on first reference. Asset records are never
// deleted.
func (s *Storage) GetOrCreateAsset(customerID uint, symbol string) (*domain.Asset, error) {
	var a domain.Asset
	err := s.db.First(&a, "customer_id = ? AND symbol = ?", customerID, symbol).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		a = domain.Asset{
			CustomerID: customerID,
			Symbol:     symbol,
			Size:       decimal.Zero,
			UsableSize: decimal.Zero,
		}
		if err := s.db.Create(&a).Error; err != nil {
			return nil, err
		}
		return &a, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ApplyAssetDelta adds the deltas to both balance fields and persists
// them with a version compare-and-set. A stale in-memory copy loses
// the race and gets ErrConcurrencyConflict; the caller retries the
// whole operation. On success the in-memory record is advanced to the
// committed state.
func (s *Storage) ApplyAssetDelta(a *domain.Asset, sizeDelta, usableDelta decimal.Decimal) error {
	size, usable, err := a.Apply(sizeDelta, usableDelta)
	if err != nil {
		return err
	}

	res := s.db.Model(&domain.Asset{}).
		Where("id = ? AND version = ?", a.ID, a.Version).
		Updates(map[string]interface{}{
			"size":        size,
			"usable_size": usable,
			"version":     a.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: asset %s of customer %d changed underneath",
			domain.ErrConcurrencyConflict, a.Symbol, a.CustomerID)
	}

	a.Size = size
	a.UsableSize = usable
	a.Version++
	return nil
}

// ListAssets returns a customer's assets ordered by symbol. A non-empty
// filter selects symbols by case-insensitive partial match.
func (s *Storage) ListAssets(customerID uint, symbolFilter string) ([]domain.Asset, error) {
	q := s.db.Where("customer_id = ?", customerID)
	if symbolFilter != "" {
		// SQLite LIKE is case-insensitive for ASCII.
		q = q.Where("symbol LIKE ?", "%"+symbolFilter+"%")
	}

	var assets []domain.Asset
	err := q.Order("symbol").Find(&assets).Error
	return assets, err
}

// ======================================================================================
// Order Operations
// ======================================================================================

// CreateOrder inserts a new order.
func (s *Storage) CreateOrder(o *domain.Order) error {
	return s.db.Create(o).Error
}

// GetOrder retrieves an order by id regardless of owner.
func (s *Storage) GetOrder(id uint) (*domain.Order, error) {
	var o domain.Order
	err := s.db.First(&o, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %d", domain.ErrResourceNotFound, id)
	}
	return &o, err
}

// GetCustomerOrder retrieves an order scoped to its owning customer.
// An order owned by someone else is indistinguishable from a missing one.
func (s *Storage) GetCustomerOrder(id, customerID uint) (*domain.Order, error) {
	var o domain.Order
	err := s.db.First(&o, "id = ? AND customer_id = ?", id, customerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %d", domain.ErrResourceNotFound, id)
	}
	return &o, err
}

// ListOrders returns a customer's orders inside [start, end], oldest
// first, optionally filtered by status.
func (s *Storage) ListOrders(customerID uint, start, end time.Time, status domain.OrderStatus) ([]domain.Order, error) {
	q := s.db.Where("customer_id = ? AND create_date BETWEEN ? AND ?", customerID, start, end)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var orders []domain.Order
	err := q.Order("create_date").Find(&orders).Error
	return orders, err
}

// TransitionOrderStatus moves an order from one status to another with
// a compare-and-set on the current status. When two transitions race
// out of PENDING, exactly one wins; the loser observes
// ErrInvalidOrderStatus.
func (s *Storage) TransitionOrderStatus(o *domain.Order, from, to domain.OrderStatus) error {
	res := s.db.Model(&domain.Order{}).
		Where("id = ? AND status = ?", o.ID, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: order %d is not %s", domain.ErrInvalidOrderStatus, o.ID, from)
	}

	o.Status = to
	return nil
}
