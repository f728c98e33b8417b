package order

import (
	"fmt"
	"time"

	"github.com/KretovDmitry/storefront/internal/models/errs"
	"github.com/KretovDmitry/storefront/internal/models/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order.
// The set is closed: values outside of it never pass ParseStatus.
type Status string

const (
	Pending    Status = "pending"
	Confirmed  Status = "confirmed"
	Processing Status = "processing"
	Shipped    Status = "shipped"
	Delivered  Status = "delivered"
	Cancelled  Status = "cancelled"
	Refunded   Status = "refunded"
)

// Statuses lists every status in display order.
var Statuses = []Status{Pending, Confirmed, Processing, Shipped, Delivered, Cancelled, Refunded}

// ParseStatus converts raw input into a Status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case Pending, Confirmed, Processing, Shipped, Delivered, Cancelled, Refunded:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", errs.ErrInvalidStatus, s)
}

// Label is the human readable name of the status.
func (s Status) Label() string {
	switch s {
	case Pending:
		return "Pending"
	case Confirmed:
		return "Confirmed"
	case Processing:
		return "Processing"
	case Shipped:
		return "Shipped"
	case Delivered:
		return "Delivered"
	case Cancelled:
		return "Cancelled"
	case Refunded:
		return "Refunded"
	}
	return string(s)
}

// Order is a customer purchase.
type Order struct {
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Payment          *payment.Payment
	Username         string
	Email            string
	Status           Status
	Items            []*Item
	TotalAmount      decimal.Decimal
	ID               int64
	UserID           int64
	ShippingMethodID int64
	OrderID          uuid.UUID
}

// Item is a single order line. Price is captured at purchase time.
type Item struct {
	ProductName string
	Price       decimal.Decimal
	ID          int64
	ProductID   int64
	Quantity    int
}

// Subtotal is price times quantity.
func (i *Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// StatusUpdate is the outcome of a staff status change.
type StatusUpdate struct {
	PaymentStatus *payment.Status
	Status        Status
	Label         string
}

// StatusCounts holds the number of orders per status.
type StatusCounts map[Status]int

// Total sums all counts.
func (c StatusCounts) Total() int {
	var n int
	for _, v := range c {
		n += v
	}
	return n
}

// Filter narrows staff order listings.
type Filter struct {
	Status Status
	Search string
}
