package user

import (
	"context"
	"time"
)

// User description. Fields aligned for the GC optimal scanning.
type User struct {
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Username  string    `db:"username" json:"username"`
	Email     string    `db:"email" json:"email"`
	ID        int64     `db:"id" json:"id"`
	IsStaff   bool      `db:"is_staff" json:"is_staff"`
	IsOwner   bool      `db:"is_owner" json:"is_owner"`
}

// key is an unexported type for keys defined in this package.
// This prevents collisions with keys defined in other packages.
type key int

// userKey is the key for user.User values in Contexts. It is
// unexported; clients use user.NewContext and user.FromContext
// instead of using this key directly.
var userKey key

// NewContext returns a new Context that carries value u.
func NewContext(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// FromContext returns the User value stored in ctx, if any.
func FromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userKey).(*User)
	return u, ok
}
