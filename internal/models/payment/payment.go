package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	Pending    Status = "pending"
	Processing Status = "processing"
	Completed  Status = "completed"
	Cancelled  Status = "cancelled"
)

// Payment settles exactly one order.
type Payment struct {
	CompletedAt *time.Time
	Status      Status
	Amount      decimal.Decimal
	ID          int64
	OrderID     int64
}

// Complete marks the payment completed at the given moment.
func (p *Payment) Complete(at time.Time) {
	p.Status = Completed
	p.CompletedAt = &at
}

// Cancel marks the payment cancelled. CompletedAt is left as is.
func (p *Payment) Cancel() {
	p.Status = Cancelled
}
