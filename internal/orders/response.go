package orders

import (
	"time"

	"github.com/KretovDmitry/storefront/internal/models/order"
	"github.com/KretovDmitry/storefront/pkg/flash"
)

// Types just for marshalling purpose.
// Money leaves the service as float64.
type (
	statusUpdateResponse struct {
		PaymentStatus    *string `json:"payment_status"`
		NewStatus        string  `json:"new_status"`
		NewStatusDisplay string  `json:"new_status_display"`
		Success          bool    `json:"success"`
	}

	statusErrorResponse struct {
		Error   string `json:"error"`
		Success bool   `json:"success"`
	}

	orderResponse struct {
		CreatedAt     time.Time        `json:"created_at"`
		UpdatedAt     time.Time        `json:"updated_at"`
		Payment       *paymentResponse `json:"payment,omitempty"`
		OrderID       string           `json:"order_id"`
		Username      string           `json:"username"`
		Email         string           `json:"email"`
		Status        string           `json:"status"`
		StatusDisplay string           `json:"status_display"`
		Items         []itemResponse   `json:"items,omitempty"`
		TotalAmount   float64          `json:"total_amount"`
	}

	itemResponse struct {
		ProductName string  `json:"product_name"`
		Price       float64 `json:"price"`
		Subtotal    float64 `json:"subtotal"`
		ProductID   int64   `json:"product_id"`
		Quantity    int     `json:"quantity"`
	}

	paymentResponse struct {
		CompletedAt *time.Time `json:"completed_at"`
		Status      string     `json:"status"`
		Amount      float64    `json:"amount"`
	}

	orderListResponse struct {
		StatusCounts map[string]int  `json:"status_counts"`
		Message      *flash.Message  `json:"message,omitempty"`
		Orders       []orderResponse `json:"orders"`
		Total        int             `json:"total"`
	}

	orderDetailResponse struct {
		Order    orderResponse   `json:"order"`
		Messages []flash.Message `json:"messages,omitempty"`
	}

	pendingCountResponse struct {
		Count int `json:"count"`
	}
)

func newOrderResponse(o *order.Order) orderResponse {
	res := orderResponse{
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		OrderID:       o.OrderID.String(),
		Username:      o.Username,
		Email:         o.Email,
		Status:        string(o.Status),
		StatusDisplay: o.Status.Label(),
		TotalAmount:   o.TotalAmount.InexactFloat64(),
	}

	for _, item := range o.Items {
		res.Items = append(res.Items, itemResponse{
			ProductName: item.ProductName,
			Price:       item.Price.InexactFloat64(),
			Subtotal:    item.Subtotal().InexactFloat64(),
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
		})
	}

	if o.Payment != nil {
		res.Payment = &paymentResponse{
			CompletedAt: o.Payment.CompletedAt,
			Status:      string(o.Payment.Status),
			Amount:      o.Payment.Amount.InexactFloat64(),
		}
	}

	return res
}

func newOrderListResponse(orders []*order.Order, counts order.StatusCounts) orderListResponse {
	res := orderListResponse{
		StatusCounts: make(map[string]int, len(order.Statuses)),
		Orders:       make([]orderResponse, 0, len(orders)),
		Total:        counts.Total(),
	}

	for _, s := range order.Statuses {
		res.StatusCounts[string(s)] = counts[s]
	}

	for _, o := range orders {
		res.Orders = append(res.Orders, newOrderResponse(o))
	}

	return res
}
