package reports

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/KretovDmitry/storefront/internal/models/report"
	"github.com/KretovDmitry/storefront/pkg/logger"
	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
)

// Repository holds the read-only aggregate queries behind reports.
// Every method is a single independent statement.
type Repository interface {
	// Sales report.
	DeliveredSummary(ctx context.Context, start, end time.Time) (report.Summary, error)
	DeliveredItemsSold(ctx context.Context, start, end time.Time) (int64, error)
	StatusBreakdown(ctx context.Context, start, end time.Time) ([]report.StatusRow, error)
	DailySeries(ctx context.Context, start, end time.Time) ([]report.DailyRow, error)
	OrderDateBounds(ctx context.Context) (first, last time.Time, found bool, err error)
	// Dashboards.
	WindowStats(ctx context.Context, since time.Time) (WindowStats, error)
	RecentOrders(ctx context.Context, limit int) ([]report.RecentOrder, error)
	TopProducts(ctx context.Context, since time.Time, limit int) ([]report.TopProduct, error)
	StatusCounts(ctx context.Context) (map[string]int64, error)
	ProductStock(ctx context.Context, lowStockThreshold int) (ProductStock, error)
}

// WindowStats summarizes orders created since a given day.
type WindowStats struct {
	Delivered report.Summary
	Orders    int64
	Customers int64
}

type ProductStock struct {
	Total      int64
	InStock    int64
	LowStock   int64
	OutOfStock int64
}

type Repo struct {
	db     *sql.DB
	getter *trmsql.CtxGetter
	logger logger.Logger
}

func NewRepository(db *sql.DB, getter *trmsql.CtxGetter, logger logger.Logger) (*Repo, error) {
	if db == nil {
		return nil, errors.New("nil dependency: database")
	}
	if getter == nil {
		return nil, errors.New("nil dependency: transaction getter")
	}

	return &Repo{db: db, getter: getter, logger: logger}, nil
}

var _ Repository = (*Repo)(nil)

func (r *Repo) DeliveredSummary(ctx context.Context, start, end time.Time) (report.Summary, error) {
	const query = `
		SELECT COUNT(*), COALESCE(SUM(total_amount), 0), COALESCE(AVG(total_amount), 0)
		FROM orders
		WHERE status = 'delivered' AND created_at::date BETWEEN $1 AND $2
	`

	var s report.Summary

	err := r.getter.DefaultTrOrDB(ctx, r.db).
		QueryRowContext(ctx, query, start, end).
		Scan(&s.Count, &s.Revenue, &s.Average)
	if err != nil {
		return report.Summary{}, err
	}

	return s, nil
}

func (r *Repo) DeliveredItemsSold(ctx context.Context, start, end time.Time) (int64, error) {
	const query = `
		SELECT COALESCE(SUM(oi.quantity), 0)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.status = 'delivered' AND o.created_at::date BETWEEN $1 AND $2
	`

	var n int64

	err := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query, start, end).Scan(&n)
	if err != nil {
		return 0, err
	}

	return n, nil
}

// StatusBreakdown sums orders of every status, ordered by status name.
func (r *Repo) StatusBreakdown(ctx context.Context, start, end time.Time) ([]report.StatusRow, error) {
	const query = `
		SELECT status::text, COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE created_at::date BETWEEN $1 AND $2
		GROUP BY status
		ORDER BY status::text
	`

	rows, err := r.getter.DefaultTrOrDB(ctx, r.db).QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err = rows.Close(); err != nil {
			r.logger.Errorf("close rows: %s", err)
		}
	}()

	res := make([]report.StatusRow, 0)

	for rows.Next() {
		var row report.StatusRow
		if err = rows.Scan(&row.Status, &row.Count, &row.Revenue); err != nil {
			return nil, err
		}
		res = append(res, row)
	}

	// Rows.Err will report the last error encountered by Rows.Scan.
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return res, nil
}

// DailySeries counts orders of every status per day while revenue
// covers delivered orders only.
func (r *Repo) DailySeries(ctx context.Context, start, end time.Time) ([]report.DailyRow, error) {
	const query = `
		SELECT created_at::date AS day, COUNT(*),
			COALESCE(SUM(total_amount) FILTER (WHERE status = 'delivered'), 0)
		FROM orders
		WHERE created_at::date BETWEEN $1 AND $2
		GROUP BY day
		ORDER BY day
	`

	rows, err := r.getter.DefaultTrOrDB(ctx, r.db).QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err = rows.Close(); err != nil {
			r.logger.Errorf("close rows: %s", err)
		}
	}()

	res := make([]report.DailyRow, 0)

	for rows.Next() {
		var row report.DailyRow
		if err = rows.Scan(&row.Day, &row.OrdersCount, &row.Revenue); err != nil {
			return nil, err
		}
		res = append(res, row)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return res, nil
}

func (r *Repo) OrderDateBounds(ctx context.Context) (time.Time, time.Time, bool, error) {
	const query = "SELECT MIN(created_at)::date, MAX(created_at)::date FROM orders"

	var first, last sql.NullTime

	err := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query).Scan(&first, &last)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	if !first.Valid || !last.Valid {
		return time.Time{}, time.Time{}, false, nil
	}

	return first.Time, last.Time, true, nil
}

func (r *Repo) WindowStats(ctx context.Context, since time.Time) (WindowStats, error) {
	const query = `
		SELECT COUNT(*), COUNT(DISTINCT user_id),
			COUNT(*) FILTER (WHERE status = 'delivered'),
			COALESCE(SUM(total_amount) FILTER (WHERE status = 'delivered'), 0),
			COALESCE(AVG(total_amount) FILTER (WHERE status = 'delivered'), 0)
		FROM orders
		WHERE created_at::date >= $1
	`

	var s WindowStats

	err := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query, since).Scan(
		&s.Orders,
		&s.Customers,
		&s.Delivered.Count,
		&s.Delivered.Revenue,
		&s.Delivered.Average,
	)
	if err != nil {
		return WindowStats{}, err
	}

	return s, nil
}

func (r *Repo) RecentOrders(ctx context.Context, limit int) ([]report.RecentOrder, error) {
	const query = `
		SELECT o.order_id::text, u.username, o.status::text, o.total_amount, o.created_at
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC
		LIMIT $1
	`

	rows, err := r.getter.DefaultTrOrDB(ctx, r.db).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err = rows.Close(); err != nil {
			r.logger.Errorf("close rows: %s", err)
		}
	}()

	res := make([]report.RecentOrder, 0, limit)

	for rows.Next() {
		var o report.RecentOrder
		if err = rows.Scan(&o.OrderID, &o.Username, &o.Status, &o.TotalAmount, &o.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, o)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return res, nil
}

// TopProducts ranks products of delivered orders by quantity sold.
func (r *Repo) TopProducts(ctx context.Context, since time.Time, limit int) ([]report.TopProduct, error) {
	const query = `
		SELECT p.name, SUM(oi.quantity) AS total_sold, SUM(oi.price * oi.quantity)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.status = 'delivered' AND o.created_at::date >= $1
		GROUP BY p.name
		ORDER BY total_sold DESC, p.name
		LIMIT $2
	`

	rows, err := r.getter.DefaultTrOrDB(ctx, r.db).QueryContext(ctx, query, since, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err = rows.Close(); err != nil {
			r.logger.Errorf("close rows: %s", err)
		}
	}()

	res := make([]report.TopProduct, 0, limit)

	for rows.Next() {
		var p report.TopProduct
		if err = rows.Scan(&p.Name, &p.TotalSold, &p.TotalRevenue); err != nil {
			return nil, err
		}
		res = append(res, p)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return res, nil
}

func (r *Repo) StatusCounts(ctx context.Context) (map[string]int64, error) {
	const query = "SELECT status::text, COUNT(*) FROM orders GROUP BY status"

	rows, err := r.getter.DefaultTrOrDB(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err = rows.Close(); err != nil {
			r.logger.Errorf("close rows: %s", err)
		}
	}()

	res := make(map[string]int64)

	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err = rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		res[status] = n
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return res, nil
}

func (r *Repo) ProductStock(ctx context.Context, lowStockThreshold int) (ProductStock, error) {
	const query = `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE quantity > 0),
			COUNT(*) FILTER (WHERE quantity > 0 AND quantity < $1),
			COUNT(*) FILTER (WHERE quantity = 0)
		FROM products
	`

	var s ProductStock

	err := r.getter.DefaultTrOrDB(ctx, r.db).
		QueryRowContext(ctx, query, lowStockThreshold).
		Scan(&s.Total, &s.InStock, &s.LowStock, &s.OutOfStock)
	if err != nil {
		return ProductStock{}, err
	}

	return s, nil
}
