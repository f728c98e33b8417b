package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/KretovDmitry/storefront/internal/models/errs"
	"github.com/KretovDmitry/storefront/internal/models/user"
	"github.com/KretovDmitry/storefront/pkg/logger"
)

type Repository interface {
	GetUserByID(ctx context.Context, userID int64) (*user.User, error)
}

type Repo struct {
	db     *sql.DB
	logger logger.Logger
}

func NewRepository(db *sql.DB, logger logger.Logger) (*Repo, error) {
	if db == nil {
		return nil, errors.New("nil dependency: database")
	}

	return &Repo{db: db, logger: logger}, nil
}

var _ Repository = (*Repo)(nil)

func (r *Repo) GetUserByID(ctx context.Context, userID int64) (*user.User, error) {
	const query = `
		SELECT id, username, email, is_staff, is_owner, created_at
		FROM users WHERE id = $1
	`

	u := new(user.User)

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.IsStaff,
		&u.IsOwner,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	return u, nil
}
