package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/fundadaburda/BrokerageApi/internal/domain"
	"github.com/fundadaburda/BrokerageApi/internal/infra/storage"

	"github.com/shopspring/decimal"
)

// OrderEventPublisher receives order lifecycle events after the
// owning transaction has committed.
type OrderEventPublisher interface {
	PublishOrderEvent(ev domain.OrderEvent)
}

// maxConflictRetries bounds how often an operation is re-run after
// losing an optimistic-lock race.
const maxConflictRetries = 3

// OrderService owns the order lifecycle: reservation at creation,
// release at cancellation, and final settlement at match time.
//
// Reservation rules. A BUY locks size x price on the settlement
// currency; a SELL locks size on the traded symbol. Both only reduce
// usable size, total size stays put, so cancellation restores exactly
// what was reserved by reversing the same delta. Settlement is the
// step that credits both fields.
type OrderService struct {
	store    *storage.Storage
	currency string // settlement currency symbol, e.g. "TRY"
	events   OrderEventPublisher
	log      *slog.Logger
}

// NewOrderService creates an OrderService reserving against the given
// settlement currency symbol.
func NewOrderService(store *storage.Storage, currency string, log *slog.Logger) *OrderService {
	return &OrderService{store: store, currency: currency, log: log}
}

// SetEventPublisher attaches a publisher for lifecycle events. Without
// one, events are dropped.
func (s *OrderService) SetEventPublisher(p OrderEventPublisher) {
	s.events = p
}

// CreateOrder validates the request, reserves the required balance and
// persists a PENDING order, all in one transaction.
func (s *OrderService) CreateOrder(customerID uint, symbol string, side domain.Side, size, price decimal.Decimal) (*domain.Order, error) {
	if err := validateOrderInput(symbol, side, size, price); err != nil {
		return nil, err
	}

	var order *domain.Order
	err := s.withConflictRetry(func() error {
		return s.store.Transaction(func(tx *storage.Storage) error {
			customer, err := tx.GetCustomer(customerID)
			if err != nil {
				return err
			}

			if err := s.reserve(tx, customer.ID, symbol, side, size, price); err != nil {
				return err
			}

			order = &domain.Order{
				CustomerID: customer.ID,
				Symbol:     symbol,
				Side:       side,
				Size:       size,
				Price:      price,
				Status:     domain.StatusPending,
				CreateDate: time.Now().UTC(),
			}
			return tx.CreateOrder(order)
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order created",
		slog.Uint64("order_id", uint64(order.ID)),
		slog.Uint64("customer_id", uint64(customerID)),
		slog.String("symbol", symbol),
		slog.String("side", string(side)),
		slog.String("size", size.String()),
		slog.String("price", price.String()))
	s.publish(domain.EventOrderCreated, *order)
	return order, nil
}

// reserve locks the balance an order needs. Only usable size drops
// here; total size is untouched until settlement.
func (s *OrderService) reserve(tx *storage.Storage, customerID uint, symbol string, side domain.Side, size, price decimal.Decimal) error {
	switch side {
	case domain.SideBuy:
		currency, err := tx.GetOrCreateAsset(customerID, s.currency)
		if err != nil {
			return err
		}
		required := size.Mul(price)
		if currency.UsableSize.LessThan(required) {
			return fmt.Errorf("%w: need %s %s, usable %s",
				domain.ErrInsufficientBalance, required, s.currency, currency.UsableSize)
		}
		return tx.ApplyAssetDelta(currency, decimal.Zero, required.Neg())

	case domain.SideSell:
		asset, err := tx.GetOrCreateAsset(customerID, symbol)
		if err != nil {
			return err
		}
		if asset.UsableSize.LessThan(size) {
			return fmt.Errorf("%w: need %s %s, usable %s",
				domain.ErrInsufficientBalance, size, symbol, asset.UsableSize)
		}
		return tx.ApplyAssetDelta(asset, decimal.Zero, size.Neg())
	}
	return fmt.Errorf("%w: unknown side %q", domain.ErrValidation, side)
}

// CancelOrder releases the exact reservation made at creation and
// moves the order PENDING -> CANCELED. Only the owning customer's
// PENDING orders qualify.
func (s *OrderService) CancelOrder(orderID, customerID uint) error {
	var canceled domain.Order
	err := s.withConflictRetry(func() error {
		return s.store.Transaction(func(tx *storage.Storage) error {
			if _, err := tx.GetCustomer(customerID); err != nil {
				return err
			}

			order, err := tx.GetCustomerOrder(orderID, customerID)
			if err != nil {
				return err
			}
			if order.Status != domain.StatusPending {
				return fmt.Errorf("%w: order %d is %s, only PENDING orders can be canceled",
					domain.ErrInvalidOrderStatus, order.ID, order.Status)
			}

			switch order.Side {
			case domain.SideBuy:
				currency, err := tx.GetOrCreateAsset(customerID, s.currency)
				if err != nil {
					return err
				}
				if err := tx.ApplyAssetDelta(currency, decimal.Zero, order.Cost()); err != nil {
					return err
				}
			case domain.SideSell:
				asset, err := tx.GetOrCreateAsset(customerID, order.Symbol)
				if err != nil {
					return err
				}
				if err := tx.ApplyAssetDelta(asset, decimal.Zero, order.Size); err != nil {
					return err
				}
			default:
				return fmt.Errorf("%w: unknown side %q", domain.ErrValidation, order.Side)
			}

			if err := tx.TransitionOrderStatus(order, domain.StatusPending, domain.StatusCanceled); err != nil {
				return err
			}
			canceled = *order
			return nil
		})
	})
	if err != nil {
		return err
	}

	s.log.Info("order canceled",
		slog.Uint64("order_id", uint64(orderID)),
		slog.Uint64("customer_id", uint64(customerID)))
	s.publish(domain.EventOrderCanceled, canceled)
	return nil
}

// MatchOrders settles a batch of PENDING orders, in the given id
// order, as one atomic unit: any unknown id or non-PENDING order
// aborts the whole batch and no delta or status change survives.
//
// Settlement credits both balance fields. A BUY hands the customer the
// traded quantity as owned and usable (the currency was permanently
// debited at reservation). A SELL hands the customer the proceeds in
// currency; the traded asset's total size is deliberately left alone,
// matching the reference behavior.
func (s *OrderService) MatchOrders(orderIDs []uint) error {
	if len(orderIDs) == 0 {
		return fmt.Errorf("%w: at least one order id is required", domain.ErrValidation)
	}

	var matched []domain.Order
	err := s.withConflictRetry(func() error {
		matched = matched[:0]
		return s.store.Transaction(func(tx *storage.Storage) error {
			for _, id := range orderIDs {
				order, err := tx.GetOrder(id)
				if err != nil {
					return err
				}
				if order.Status != domain.StatusPending {
					return fmt.Errorf("%w: order %d is %s, only PENDING orders can be matched",
						domain.ErrInvalidOrderStatus, order.ID, order.Status)
				}

				switch order.Side {
				case domain.SideBuy:
					asset, err := tx.GetOrCreateAsset(order.CustomerID, order.Symbol)
					if err != nil {
						return err
					}
					if err := tx.ApplyAssetDelta(asset, order.Size, order.Size); err != nil {
						return err
					}
				case domain.SideSell:
					currency, err := tx.GetOrCreateAsset(order.CustomerID, s.currency)
					if err != nil {
						return err
					}
					proceeds := order.Cost()
					if err := tx.ApplyAssetDelta(currency, proceeds, proceeds); err != nil {
						return err
					}
				default:
					return fmt.Errorf("%w: unknown side %q", domain.ErrValidation, order.Side)
				}

				if err := tx.TransitionOrderStatus(order, domain.StatusPending, domain.StatusMatched); err != nil {
					return err
				}
				matched = append(matched, *order)
			}
			return nil
		})
	})
	if err != nil {
		return err
	}

	s.log.Info("orders matched", slog.Int("count", len(matched)))
	for _, o := range matched {
		s.publish(domain.EventOrderMatched, o)
	}
	return nil
}

// ListOrders returns the customer's orders in [start, end], optionally
// filtered by status. Pure read, no ledger interaction.
func (s *OrderService) ListOrders(customerID uint, start, end time.Time, status domain.OrderStatus) ([]domain.Order, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	if _, err := s.store.GetCustomer(customerID); err != nil {
		return nil, err
	}
	return s.store.ListOrders(customerID, start, end, status)
}

// withConflictRetry re-runs fn when it lost an optimistic-lock race.
// Every other error surfaces on the first attempt.
func (s *OrderService) withConflictRetry(fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxConflictRetries; attempt++ {
		err = fn()
		if err == nil || !domain.IsRetriable(err) {
			return err
		}
		s.log.Warn("retrying after concurrency conflict",
			slog.Int("attempt", attempt), slog.Any("error", err))
	}
	return err
}

func (s *OrderService) publish(eventType string, order domain.Order) {
	if s.events == nil {
		return
	}
	s.events.PublishOrderEvent(domain.OrderEvent{Type: eventType, Order: order})
}

func validateOrderInput(symbol string, side domain.Side, size, price decimal.Decimal) error {
	if symbol == "" {
		return fmt.Errorf("%w: asset symbol is required", domain.ErrValidation)
	}
	if !side.Valid() {
		return fmt.Errorf("%w: unknown side %q", domain.ErrValidation, side)
	}
	if !size.IsPositive() {
		return fmt.Errorf("%w: size must be positive, got %s", domain.ErrValidation, size)
	}
	if !price.IsPositive() {
		return fmt.Errorf("%w: price must be positive, got %s", domain.ErrValidation, price)
	}
	return nil
}
