package orders

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/KretovDmitry/storefront/internal/models/errs"
	"github.com/KretovDmitry/storefront/internal/models/user"
	"github.com/KretovDmitry/storefront/pkg/flash"
	"github.com/KretovDmitry/storefront/pkg/header"
	"github.com/KretovDmitry/storefront/pkg/logger"
)

const (
	msgDelivered       = "Order marked as delivered successfully!"
	msgMustBeShipped   = "Order must be shipped before marking as delivered."
	msgNoOrdersMatched = "No orders found matching your criteria."
)

// API serves the order endpoints on top of Service.
type API struct {
	service *Service
	logger  logger.Logger
}

func NewAPI(service *Service, logger logger.Logger) (*API, error) {
	if service == nil {
		return nil, errors.New("nil dependency: service")
	}
	return &API{service: service, logger: logger}, nil
}

var _ ServerInterface = (*API)(nil)

// Customer order list (GET /orders).
func (a *API) GetOrders(w http.ResponseWriter, r *http.Request) {
	u, found := user.FromContext(r.Context())
	if !found {
		ErrorHandlerFunc(w, r, errs.ErrInvalidCredentials)
		return
	}

	orders, counts, err := a.service.ListUserOrders(r.Context(), u.ID)
	if err != nil {
		a.logger.With(r.Context()).Errorf("list user orders: %s", err)
		ErrorHandlerFunc(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, newOrderListResponse(orders, counts))
}

// Customer order detail (GET /orders/{order_id}).
func (a *API) GetOrder(w http.ResponseWriter, r *http.Request, orderID string) {
	u, found := user.FromContext(r.Context())
	if !found {
		ErrorHandlerFunc(w, r, errs.ErrInvalidCredentials)
		return
	}

	o, err := a.service.GetOrder(r.Context(), u.ID, orderID)
	if err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, orderDetailResponse{
		Order:    newOrderResponse(o),
		Messages: flash.Pop(w, r),
	})
}

// Customer delivery confirmation (POST /orders/{order_id}/deliver).
// The browser is sent back to the order page with a notice either way.
func (a *API) ConfirmDelivery(w http.ResponseWriter, r *http.Request, orderID string) {
	u, found := user.FromContext(r.Context())
	if !found {
		ErrorHandlerFunc(w, r, errs.ErrInvalidCredentials)
		return
	}

	_, err := a.service.ConfirmDelivery(r.Context(), u.ID, orderID)
	switch {
	case err == nil:
		err = flash.Add(w, r, flash.Success, msgDelivered)
	case errors.Is(err, errs.ErrIllegalTransition):
		err = flash.Add(w, r, flash.Error, msgMustBeShipped)
	default:
		ErrorHandlerFunc(w, r, err)
		return
	}
	if err != nil {
		a.logger.With(r.Context(), "order_id", orderID).Errorf("set flash: %s", err)
	}

	http.Redirect(w, r, "/orders/"+orderID, http.StatusSeeOther)
}

// Staff order list (GET /admin/orders).
func (a *API) ListOrders(w http.ResponseWriter, r *http.Request, params ListOrdersParams) {
	orders, counts, err := a.service.ListOrders(r.Context(), params.Filter)
	if err != nil {
		if !errors.Is(err, errs.ErrInvalidStatus) {
			a.logger.With(r.Context()).Errorf("list orders: %s", err)
		}
		ErrorHandlerFunc(w, r, err)
		return
	}

	res := newOrderListResponse(orders, counts)

	// Scripted refreshes of the list get no notice.
	if len(orders) == 0 && !header.IsAJAX(r) && (params.Filter.Status != "" || params.Filter.Search != "") {
		res.Message = &flash.Message{Level: flash.Info, Text: msgNoOrdersMatched}
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Staff order detail (GET /admin/orders/{order_id}).
func (a *API) AdminGetOrder(w http.ResponseWriter, r *http.Request, orderID string) {
	o, err := a.service.AdminGetOrder(r.Context(), orderID)
	if err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, orderDetailResponse{Order: newOrderResponse(o)})
}

// Staff status update (POST /admin/orders/{order_id}/status).
func (a *API) UpdateStatus(w http.ResponseWriter, r *http.Request, params UpdateStatusParams) {
	update, err := a.service.UpdateStatus(r.Context(), params.OrderID, params.Status)
	if err != nil {
		if !errors.Is(err, errs.ErrInvalidStatus) && !errors.Is(err, errs.ErrNotFound) {
			a.logger.With(r.Context(), "order_id", params.OrderID).Errorf("update status: %s", err)
		}
		StatusErrorHandlerFunc(w, r, err)
		return
	}

	res := statusUpdateResponse{
		NewStatus:        string(update.Status),
		NewStatusDisplay: update.Label,
		Success:          true,
	}
	if update.PaymentStatus != nil {
		ps := string(*update.PaymentStatus)
		res.PaymentStatus = &ps
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Pending orders badge (GET /admin/orders/pending-count).
func (a *API) PendingCount(w http.ResponseWriter, r *http.Request) {
	n, err := a.service.PendingCount(r.Context())
	if err != nil {
		a.logger.With(r.Context()).Errorf("pending count: %s", err)
		ErrorHandlerFunc(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, pendingCountResponse{Count: n})
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		ErrorHandlerFunc(w, r, err)
	}
}

// ErrorHandlerFunc handles sending of an error in the JSON format,
// writing appropriate status code and handling the failure to marshal that.
func ErrorHandlerFunc(w http.ResponseWriter, _ *http.Request, err error) {
	errJSON := errs.JSON{Error: err.Error()}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode(err))

	if err = json.NewEncoder(w).Encode(errJSON); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// StatusErrorHandlerFunc answers the AJAX status update in the shape
// its caller expects: {"success": false, "error": "..."}.
func StatusErrorHandlerFunc(w http.ResponseWriter, _ *http.Request, err error) {
	errJSON := statusErrorResponse{Error: err.Error()}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode(err))

	if err = json.NewEncoder(w).Encode(errJSON); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func statusCode(err error) int {
	switch {
	// Status Bad Request (400).
	case errors.Is(err, errs.ErrInvalidStatus),
		errors.Is(err, errs.ErrInvalidRequest):
		return http.StatusBadRequest

	// Status Unauthorized (401).
	case errors.Is(err, errs.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Status Not Found (404).
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound

	// Status Conflict (409).
	case errors.Is(err, errs.ErrIllegalTransition):
		return http.StatusConflict
	}

	return http.StatusInternalServerError
}
