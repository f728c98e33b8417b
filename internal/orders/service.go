package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KretovDmitry/storefront/internal/models/errs"
	"github.com/KretovDmitry/storefront/internal/models/order"
	"github.com/KretovDmitry/storefront/pkg/logger"
	"github.com/KretovDmitry/storefront/pkg/metrics"
	"github.com/google/uuid"
)

// Transactor runs fn inside a single transaction.
// *manager.Manager from go-transaction-manager satisfies it.
type Transactor interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	repo   Repository
	trm    Transactor
	logger logger.Logger
	now    func() time.Time
}

func NewService(repo Repository, trm Transactor, logger logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, errors.New("nil dependency: repository")
	}
	if trm == nil {
		return nil, errors.New("nil dependency: transaction manager")
	}
	return &Service{repo: repo, trm: trm, logger: logger, now: time.Now}, nil
}

// UpdateStatus moves the order to the requested status and brings its
// payment along. Any status may follow any other.
func (s *Service) UpdateStatus(ctx context.Context, orderID, requested string) (*order.StatusUpdate, error) {
	status, err := order.ParseStatus(requested)
	if err != nil {
		return nil, err
	}

	id, err := parseOrderID(orderID)
	if err != nil {
		return nil, err
	}

	var (
		previous order.Status
		result   = &order.StatusUpdate{Status: status, Label: status.Label()}
	)

	err = s.trm.Do(ctx, func(ctx context.Context) error {
		o, err := s.repo.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		previous = o.Status

		if err = s.repo.SetStatus(ctx, o.ID, status); err != nil {
			return err
		}

		p, err := s.repo.GetPayment(ctx, o.ID)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				return nil
			}
			return fmt.Errorf("get payment: %w", err)
		}

		if cascadePayment(status, p, s.now()) {
			if err = s.repo.UpdatePayment(ctx, p); err != nil {
				return err
			}
		}

		ps := p.Status
		result.PaymentStatus = &ps

		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.OrderStatusUpdates.WithLabelValues(string(status)).Inc()
	s.logger.With(ctx, "order_id", orderID).Infof("order status %s -> %s", previous, status)

	return result, nil
}

// ConfirmDelivery lets the owner of a shipped order mark it delivered.
func (s *Service) ConfirmDelivery(ctx context.Context, userID int64, orderID string) (*order.Order, error) {
	id, err := parseOrderID(orderID)
	if err != nil {
		return nil, err
	}

	var o *order.Order

	err = s.trm.Do(ctx, func(ctx context.Context) error {
		found, err := s.userOrder(ctx, userID, id)
		if err != nil {
			return err
		}

		if !canConfirmDelivery(found.Status) {
			return fmt.Errorf("%w: order is %s", errs.ErrIllegalTransition, found.Status)
		}

		if err = s.repo.SetStatus(ctx, found.ID, order.Delivered); err != nil {
			return err
		}
		found.Status = order.Delivered
		o = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.OrderStatusUpdates.WithLabelValues(string(order.Delivered)).Inc()
	s.logger.With(ctx, "order_id", orderID).Infof("order delivered, confirmed by user %d", userID)

	return o, nil
}

// GetOrder returns the user's order with its items and payment.
func (s *Service) GetOrder(ctx context.Context, userID int64, orderID string) (*order.Order, error) {
	id, err := parseOrderID(orderID)
	if err != nil {
		return nil, err
	}

	o, err := s.userOrder(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	return s.withDetails(ctx, o)
}

func (s *Service) withDetails(ctx context.Context, o *order.Order) (*order.Order, error) {
	var err error

	if o.Items, err = s.repo.GetItems(ctx, o.ID); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}

	p, err := s.repo.GetPayment(ctx, o.ID)
	switch {
	case err == nil:
		o.Payment = p
	case !errors.Is(err, errs.ErrNotFound):
		return nil, fmt.Errorf("get payment: %w", err)
	}

	return o, nil
}

// AdminGetOrder returns any order with its items and payment.
func (s *Service) AdminGetOrder(ctx context.Context, orderID string) (*order.Order, error) {
	id, err := parseOrderID(orderID)
	if err != nil {
		return nil, err
	}

	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.withDetails(ctx, o)
}

// ListUserOrders returns the user's orders, newest first, with counts per status.
func (s *Service) ListUserOrders(ctx context.Context, userID int64) ([]*order.Order, order.StatusCounts, error) {
	orders, err := s.repo.ListUserOrders(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	counts := make(order.StatusCounts, len(order.Statuses))
	for _, o := range orders {
		counts[o.Status]++
	}

	return orders, counts, nil
}

// ListOrders returns orders matching the filter together with the
// per-status counts over the whole store.
func (s *Service) ListOrders(ctx context.Context, filter order.Filter) ([]*order.Order, order.StatusCounts, error) {
	if filter.Status != "" {
		if _, err := order.ParseStatus(string(filter.Status)); err != nil {
			return nil, nil, err
		}
	}

	orders, err := s.repo.ListOrders(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, nil, err
	}

	return orders, counts, nil
}

// PendingCount is the number of orders waiting for staff attention.
func (s *Service) PendingCount(ctx context.Context) (int, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return 0, err
	}
	return counts[order.Pending], nil
}

func (s *Service) userOrder(ctx context.Context, userID int64, id uuid.UUID) (*order.Order, error) {
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	// Someone else's order is reported the same way as a missing one.
	if o.UserID != userID {
		return nil, fmt.Errorf("order %s: %w", id, errs.ErrNotFound)
	}
	return o, nil
}

// Malformed identifiers can never resolve to an order.
func parseOrderID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("order %q: %w", s, errs.ErrNotFound)
	}
	return id, nil
}
