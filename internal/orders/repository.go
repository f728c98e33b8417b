package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/KretovDmitry/storefront/internal/models/errs"
	"github.com/KretovDmitry/storefront/internal/models/order"
	"github.com/KretovDmitry/storefront/internal/models/payment"
	"github.com/KretovDmitry/storefront/pkg/logger"
	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type Repository interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (*order.Order, error)
	GetItems(ctx context.Context, id int64) ([]*order.Item, error)
	SetStatus(ctx context.Context, id int64, status order.Status) error
	GetPayment(ctx context.Context, id int64) (*payment.Payment, error)
	UpdatePayment(ctx context.Context, p *payment.Payment) error
	ListUserOrders(ctx context.Context, userID int64) ([]*order.Order, error)
	ListOrders(ctx context.Context, filter order.Filter) ([]*order.Order, error)
	CountByStatus(ctx context.Context) (order.StatusCounts, error)
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

const selectOrders = `
	SELECT o.id, o.order_id, o.user_id, u.username, u.email, o.status,
		o.total_amount, o.shipping_method_id, o.created_at, o.updated_at
	FROM orders o
	JOIN users u ON u.id = o.user_id
`

func (r *Repo) GetOrder(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	const query = selectOrders + "WHERE o.order_id = $1"

	o, err := scanOrder(r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", orderID, errs.ErrNotFound)
		}
		return nil, err
	}

	return o, nil
}

func (r *Repo) GetItems(ctx context.Context, id int64) ([]*order.Item, error) {
	const query = `
		SELECT oi.id, oi.product_id, p.name, oi.quantity, oi.price
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id
	`

	rows, err := r.getter.DefaultTrOrDB(ctx, r.db).QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err = rows.Close(); err != nil {
			r.logger.Errorf("close rows: %s", err)
		}
	}()

	items := make([]*order.Item, 0)

	for rows.Next() {
		item := new(order.Item)
		err = rows.Scan(
			&item.ID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.Price,
		)
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	// Rows.Err will report the last error encountered by Rows.Scan.
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *Repo) SetStatus(ctx context.Context, id int64, status order.Status) error {
	const query = "UPDATE orders SET status = $1, updated_at = now() WHERE id = $2"

	res, err := r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, query, status, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InvalidTextRepresentation {
			return fmt.Errorf("%w: %q", errs.ErrInvalidStatus, status)
		}
		return fmt.Errorf("set order status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("order #%d: %w", id, errs.ErrNotFound)
	}

	return nil
}

func (r *Repo) GetPayment(ctx context.Context, id int64) (*payment.Payment, error) {
	const query = `
		SELECT id, order_id, status, amount, completed_at
		FROM payments WHERE order_id = $1
	`

	p := new(payment.Payment)
	var completedAt sql.NullTime

	err := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.OrderID,
		&p.Status,
		&p.Amount,
		&completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	if completedAt.Valid {
		p.CompletedAt = &completedAt.Time
	}

	return p, nil
}

func (r *Repo) UpdatePayment(ctx context.Context, p *payment.Payment) error {
	const query = "UPDATE payments SET status = $1, completed_at = $2 WHERE id = $3"

	_, err := r.getter.DefaultTrOrDB(ctx, r.db).
		ExecContext(ctx, query, p.Status, p.CompletedAt, p.ID)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}

	return nil
}

func (r *Repo) ListUserOrders(ctx context.Context, userID int64) ([]*order.Order, error) {
	const query = selectOrders + "WHERE o.user_id = $1 ORDER BY o.created_at DESC"

	return r.queryOrders(ctx, query, userID)
}

func (r *Repo) ListOrders(ctx context.Context, filter order.Filter) ([]*order.Order, error) {
	const query = selectOrders + `
		WHERE ($1 = '' OR o.status::text = $1)
		AND ($2 = '' OR o.order_id::text ILIKE '%' || $2 || '%'
			OR u.username ILIKE '%' || $2 || '%'
			OR u.email ILIKE '%' || $2 || '%')
		ORDER BY o.created_at DESC
	`

	return r.queryOrders(ctx, query, string(filter.Status), filter.Search)
}

func (r *Repo) CountByStatus(ctx context.Context) (order.StatusCounts, error) {
	const query = "SELECT status, COUNT(*) FROM orders GROUP BY status"

	rows, err := r.getter.DefaultTrOrDB(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err = rows.Close(); err != nil {
			r.logger.Errorf("close rows: %s", err)
		}
	}()

	counts := make(order.StatusCounts, len(order.Statuses))

	for rows.Next() {
		var status order.Status
		var n int
		if err = rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

func (r *Repo) queryOrders(ctx context.Context, query string, args ...any) ([]*order.Order, error) {
	rows, err := r.getter.DefaultTrOrDB(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err = rows.Close(); err != nil {
			r.logger.Errorf("close rows: %s", err)
		}
	}()

	orders := make([]*order.Order, 0)

	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	// Rows.Err will report the last error encountered by Rows.Scan.
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (*order.Order, error) {
	o := new(order.Order)
	err := row.Scan(
		&o.ID,
		&o.OrderID,
		&o.UserID,
		&o.Username,
		&o.Email,
		&o.Status,
		&o.TotalAmount,
		&o.ShippingMethodID,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}
