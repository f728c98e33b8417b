// Package postgres opens the storefront database and keeps its schema in place.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/KretovDmitry/storefront/internal/config"
	"github.com/KretovDmitry/storefront/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	sqldblogger "github.com/simukti/sqldb-logger"
)

// Connect opens a pgx backed database whose every query is logged,
// and checks that it is reachable.
func Connect(ctx context.Context, cfg *config.Config, logger logger.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open the database: %w", err)
	}

	// Log every query to the database.
	db = sqldblogger.OpenDriver(cfg.DSN, db.Driver(), logger)

	// Check connectivity and DSN correctness.
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	return db, nil
}

// InitSchema creates missing types, tables and indexes. Safe to run on every start.
func InitSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`DO $$ BEGIN
		CREATE TYPE order_status AS ENUM (
			'pending', 'confirmed', 'processing', 'shipped', 'delivered', 'cancelled', 'refunded'
		);
	EXCEPTION WHEN duplicate_object THEN NULL;
	END $$`,
	`DO $$ BEGIN
		CREATE TYPE payment_status AS ENUM ('pending', 'processing', 'completed', 'cancelled');
	EXCEPTION WHEN duplicate_object THEN NULL;
	END $$`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		is_staff BOOLEAN NOT NULL DEFAULT FALSE,
		is_owner BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		price NUMERIC(10, 2) NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		category_id BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS shipping_methods (
		id BIGSERIAL PRIMARY KEY,
		name TEXT UNIQUE NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		cost NUMERIC(10, 2) NOT NULL,
		estimated_days INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGSERIAL PRIMARY KEY,
		order_id UUID UNIQUE NOT NULL DEFAULT gen_random_uuid(),
		user_id BIGINT NOT NULL REFERENCES users(id),
		status order_status NOT NULL DEFAULT 'pending',
		total_amount NUMERIC(10, 2) NOT NULL,
		shipping_method_id BIGINT REFERENCES shipping_methods(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id BIGSERIAL PRIMARY KEY,
		order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id BIGINT NOT NULL REFERENCES products(id),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		price NUMERIC(10, 2) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id BIGSERIAL PRIMARY KEY,
		order_id BIGINT UNIQUE NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		status payment_status NOT NULL DEFAULT 'pending',
		amount NUMERIC(10, 2) NOT NULL,
		completed_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)`,
	`INSERT INTO shipping_methods (name, description, cost, estimated_days) VALUES
		('Standard Shipping', 'Standard delivery (5-7 business days)', 5.99, 6),
		('Express Shipping', 'Express delivery (2-3 business days)', 12.99, 3),
		('Next Day Delivery', 'Next business day delivery', 19.99, 1),
		('Free Standard Shipping', 'Free standard delivery (7-10 business days)', 0.00, 8)
	ON CONFLICT (name) DO NOTHING`,
}
