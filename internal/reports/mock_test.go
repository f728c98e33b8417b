package reports

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/KretovDmitry/storefront/internal/models/report"
	"github.com/shopspring/decimal"
)

type mockOrder struct {
	createdAt time.Time
	orderID   string
	username  string
	status    string
	total     decimal.Decimal
	userID    int64
	// product name -> quantity, priced at total / quantity sum.
	items map[string]int64
}

type mockProduct struct {
	name     string
	quantity int
}

// mockRepository answers every Repository query in memory with the same rules
// as the SQL in repository.go: KPIs, items sold and daily revenue count
// delivered orders only, and the status breakdown is sorted by status name.
// repository_test.go pins the SQL itself.
//
// Lock in case of t.Parallel call.
// Queries over a range starting at doomsday fail.
type mockRepository struct {
	orders   []mockOrder
	products []mockProduct
	mu       sync.RWMutex
}

var doomsday = time.Date(2012, 12, 21, 0, 0, 0, 0, time.UTC)

var _ Repository = (*mockRepository)(nil)

func inRange(t, start, end time.Time) bool {
	d := truncateDay(t)
	return !d.Before(start) && !d.After(end)
}

func (m *mockRepository) DeliveredSummary(_ context.Context, start, end time.Time) (report.Summary, error) {
	if start.Equal(doomsday) {
		return report.Summary{}, errors.New("don't panic!")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var s report.Summary
	for _, o := range m.orders {
		if o.status == "delivered" && inRange(o.createdAt, start, end) {
			s.Count++
			s.Revenue = s.Revenue.Add(o.total)
		}
	}
	if s.Count > 0 {
		s.Average = s.Revenue.Div(decimal.NewFromInt(s.Count))
	}
	return s, nil
}

func (m *mockRepository) DeliveredItemsSold(_ context.Context, start, end time.Time) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, o := range m.orders {
		if o.status == "delivered" && inRange(o.createdAt, start, end) {
			for _, q := range o.items {
				n += q
			}
		}
	}
	return n, nil
}

func (m *mockRepository) StatusBreakdown(_ context.Context, start, end time.Time) ([]report.StatusRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := make(map[string]*report.StatusRow)
	for _, o := range m.orders {
		if !inRange(o.createdAt, start, end) {
			continue
		}
		row, ok := rows[o.status]
		if !ok {
			row = &report.StatusRow{Status: o.status}
			rows[o.status] = row
		}
		row.Count++
		row.Revenue = row.Revenue.Add(o.total)
	}

	res := make([]report.StatusRow, 0, len(rows))
	for _, row := range rows {
		res = append(res, *row)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Status < res[j].Status })
	return res, nil
}

func (m *mockRepository) DailySeries(_ context.Context, start, end time.Time) ([]report.DailyRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := make(map[time.Time]*report.DailyRow)
	for _, o := range m.orders {
		if !inRange(o.createdAt, start, end) {
			continue
		}
		day := truncateDay(o.createdAt)
		row, ok := rows[day]
		if !ok {
			row = &report.DailyRow{Day: day}
			rows[day] = row
		}
		row.OrdersCount++
		if o.status == "delivered" {
			row.Revenue = row.Revenue.Add(o.total)
		}
	}

	res := make([]report.DailyRow, 0, len(rows))
	for _, row := range rows {
		res = append(res, *row)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Day.Before(res[j].Day) })
	return res, nil
}

func (m *mockRepository) OrderDateBounds(_ context.Context) (time.Time, time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.orders) == 0 {
		return time.Time{}, time.Time{}, false, nil
	}
	first, last := m.orders[0].createdAt, m.orders[0].createdAt
	for _, o := range m.orders[1:] {
		if o.createdAt.Before(first) {
			first = o.createdAt
		}
		if o.createdAt.After(last) {
			last = o.createdAt
		}
	}
	return truncateDay(first), truncateDay(last), true, nil
}

func (m *mockRepository) WindowStats(ctx context.Context, since time.Time) (WindowStats, error) {
	far := since.AddDate(100, 0, 0)

	delivered, err := m.DeliveredSummary(ctx, since, far)
	if err != nil {
		return WindowStats{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	s := WindowStats{Delivered: delivered}
	customers := make(map[int64]struct{})
	for _, o := range m.orders {
		if inRange(o.createdAt, since, far) {
			s.Orders++
			customers[o.userID] = struct{}{}
		}
	}
	s.Customers = int64(len(customers))
	return s, nil
}

func (m *mockRepository) RecentOrders(_ context.Context, limit int) ([]report.RecentOrder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res := make([]report.RecentOrder, 0, len(m.orders))
	for _, o := range m.orders {
		res = append(res, report.RecentOrder{
			CreatedAt:   o.createdAt,
			OrderID:     o.orderID,
			Username:    o.username,
			Status:      o.status,
			TotalAmount: o.total,
		})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (m *mockRepository) TopProducts(_ context.Context, since time.Time, limit int) ([]report.TopProduct, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	products := make(map[string]*report.TopProduct)
	for _, o := range m.orders {
		if o.status != "delivered" || truncateDay(o.createdAt).Before(since) {
			continue
		}
		var qty int64
		for _, q := range o.items {
			qty += q
		}
		for name, q := range o.items {
			p, ok := products[name]
			if !ok {
				p = &report.TopProduct{Name: name}
				products[name] = p
			}
			p.TotalSold += q
			p.TotalRevenue = p.TotalRevenue.Add(o.total.Mul(decimal.NewFromInt(q)).Div(decimal.NewFromInt(qty)))
		}
	}

	res := make([]report.TopProduct, 0, len(products))
	for _, p := range products {
		res = append(res, *p)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].TotalSold != res[j].TotalSold {
			return res[i].TotalSold > res[j].TotalSold
		}
		return res[i].Name < res[j].Name
	})
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (m *mockRepository) StatusCounts(_ context.Context) (map[string]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res := make(map[string]int64)
	for _, o := range m.orders {
		res[o.status]++
	}
	return res, nil
}

func (m *mockRepository) ProductStock(_ context.Context, lowStockThreshold int) (ProductStock, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var s ProductStock
	for _, p := range m.products {
		s.Total++
		switch {
		case p.quantity == 0:
			s.OutOfStock++
		case p.quantity < lowStockThreshold:
			s.InStock++
			s.LowStock++
		default:
			s.InStock++
		}
	}
	return s, nil
}

// Renders whatever it is given or fails with err.
type mockRenderer struct {
	err error
}

func (m mockRenderer) Render(_ context.Context, html []byte) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append([]byte("%PDF-1.4\n"), html...), nil
}
