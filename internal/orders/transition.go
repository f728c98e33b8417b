package orders

import (
	"time"

	"github.com/KretovDmitry/storefront/internal/models/order"
	"github.com/KretovDmitry/storefront/internal/models/payment"
)

// cascadePayment brings the payment in line with a new order status.
// It reports whether the payment changed and has to be persisted.
//
//	confirmed            pending             -> completed (completed_at = now)
//	cancelled            pending, processing -> cancelled
//	processing, shipped  pending             -> completed (completed_at = now)
//	delivered            anything but completed -> completed (completed_at = now)
//
// Every other combination leaves the payment untouched.
func cascadePayment(to order.Status, p *payment.Payment, now time.Time) bool {
	if p == nil {
		return false
	}

	switch to {
	case order.Confirmed, order.Processing, order.Shipped:
		if p.Status == payment.Pending {
			p.Complete(now)
			return true
		}
	case order.Cancelled:
		if p.Status == payment.Pending || p.Status == payment.Processing {
			p.Cancel()
			return true
		}
	case order.Delivered:
		if p.Status != payment.Completed {
			p.Complete(now)
			return true
		}
	case order.Pending, order.Refunded:
	}

	return false
}

// canConfirmDelivery guards the customer initiated shipped -> delivered step.
func canConfirmDelivery(from order.Status) bool {
	return from == order.Shipped
}
