package orders

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/KretovDmitry/storefront/internal/models/errs"
	"github.com/KretovDmitry/storefront/internal/models/order"
	"github.com/KretovDmitry/storefront/internal/models/payment"
	"github.com/google/uuid"
)

// Orders owned by user 666 make every write fail.
const brokenUserID = 666

// Lock in case of t.Parallel call.
type mockRepository struct {
	orders   []*order.Order
	items    map[int64][]*order.Item
	payments map[int64]*payment.Payment
	writes   int
	mu       sync.RWMutex
}

var _ Repository = (*mockRepository)(nil)

func (m *mockRepository) GetOrder(_ context.Context, orderID uuid.UUID) (*order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.OrderID == orderID {
			o := *o
			return &o, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (m *mockRepository) GetItems(_ context.Context, id int64) ([]*order.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items[id], nil
}

func (m *mockRepository) SetStatus(_ context.Context, id int64, status order.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID != id {
			continue
		}
		if o.UserID == brokenUserID {
			return errors.New("don't panic!")
		}
		o.Status = status
		m.writes++
		return nil
	}
	return errs.ErrNotFound
}

func (m *mockRepository) GetPayment(_ context.Context, id int64) (*payment.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepository) UpdatePayment(_ context.Context, p *payment.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.payments[p.OrderID] = &cp
	m.writes++
	return nil
}

func (m *mockRepository) ListUserOrders(_ context.Context, userID int64) ([]*order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]*order.Order, 0)
	for _, o := range m.orders {
		if o.UserID == userID {
			o := *o
			res = append(res, &o)
		}
	}
	return res, nil
}

func (m *mockRepository) ListOrders(_ context.Context, filter order.Filter) ([]*order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]*order.Order, 0)
	for _, o := range m.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.Search != "" &&
			!strings.Contains(o.OrderID.String(), filter.Search) &&
			!strings.Contains(o.Username, filter.Search) &&
			!strings.Contains(o.Email, filter.Search) {
			continue
		}
		o := *o
		res = append(res, &o)
	}
	return res, nil
}

func (m *mockRepository) CountByStatus(_ context.Context) (order.StatusCounts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(order.StatusCounts)
	for _, o := range m.orders {
		counts[o.Status]++
	}
	return counts, nil
}

func (m *mockRepository) status(id int64) order.Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.ID == id {
			return o.Status
		}
	}
	return ""
}

// Rolls back nothing: the mock repository has no transactions.
type passthroughTransactor struct{}

func (passthroughTransactor) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
