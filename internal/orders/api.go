package orders

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/KretovDmitry/storefront/internal/models/errs"
	"github.com/KretovDmitry/storefront/internal/models/order"
	"github.com/KretovDmitry/storefront/pkg/header"
	"github.com/go-chi/chi/v5"
)

type UpdateStatusParams struct {
	OrderID string
	Status  string
}

type ListOrdersParams struct {
	Filter order.Filter
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Customer order list (GET /orders).
	GetOrders(w http.ResponseWriter, r *http.Request)
	// Customer order detail (GET /orders/{order_id}).
	GetOrder(w http.ResponseWriter, r *http.Request, orderID string)
	// Customer delivery confirmation (POST /orders/{order_id}/deliver).
	ConfirmDelivery(w http.ResponseWriter, r *http.Request, orderID string)
	// Staff order list (GET /admin/orders).
	ListOrders(w http.ResponseWriter, r *http.Request, params ListOrdersParams)
	// Staff order detail (GET /admin/orders/{order_id}).
	AdminGetOrder(w http.ResponseWriter, r *http.Request, orderID string)
	// Staff status update (POST /admin/orders/{order_id}/status).
	UpdateStatus(w http.ResponseWriter, r *http.Request, params UpdateStatusParams)
	// Pending orders badge (GET /admin/orders/pending-count).
	PendingCount(w http.ResponseWriter, r *http.Request)
}

// ServerInterfaceWrapper converts payloads to parameters.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

type MiddlewareFunc func(http.Handler) http.Handler

func (siw *ServerInterfaceWrapper) GetOrder(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetOrder(w, r, chi.URLParam(r, "order_id"))
}

func (siw *ServerInterfaceWrapper) ConfirmDelivery(w http.ResponseWriter, r *http.Request) {
	siw.Handler.ConfirmDelivery(w, r, chi.URLParam(r, "order_id"))
}

func (siw *ServerInterfaceWrapper) AdminGetOrder(w http.ResponseWriter, r *http.Request) {
	siw.Handler.AdminGetOrder(w, r, chi.URLParam(r, "order_id"))
}

func (siw *ServerInterfaceWrapper) ListOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	params := ListOrdersParams{
		Filter: order.Filter{
			Status: order.Status(query.Get("status")),
			Search: query.Get("search"),
		},
	}

	siw.Handler.ListOrders(w, r, params)
}

// Status update operation middleware. The status comes either from a
// form field or from a JSON body.
func (siw *ServerInterfaceWrapper) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	params := UpdateStatusParams{OrderID: chi.URLParam(r, "order_id")}

	if header.IsApplicationJSONContentType(r) {
		var body struct {
			Status string `json:"status"`
		}

		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			StatusErrorHandlerFunc(w, r, fmt.Errorf("%w: %s", errs.ErrInvalidRequest, err))
			return
		}

		params.Status = body.Status
	} else {
		if err := r.ParseForm(); err != nil {
			StatusErrorHandlerFunc(w, r, fmt.Errorf("%w: %s", errs.ErrInvalidRequest, err))
			return
		}

		params.Status = r.PostFormValue("status")
	}

	siw.Handler.UpdateStatus(w, r, params)
}

// Handler creates http.Handler with all order routes mounted.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

type ChiServerOptions struct {
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
	BaseRouter       chi.Router
	BaseURL          string
	// Applied to every route.
	Middlewares []MiddlewareFunc
	// Applied to /admin routes on top of Middlewares.
	StaffMiddlewares []MiddlewareFunc
}

// HandlerWithOptions creates http.Handler with additional options.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = ErrorHandlerFunc
	}
	wrapper := ServerInterfaceWrapper{
		Handler:          si,
		ErrorHandlerFunc: options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		for _, middleware := range options.Middlewares {
			r.Use(middleware)
		}

		r.Get(options.BaseURL+"/orders", si.GetOrders)
		r.Get(options.BaseURL+"/orders/{order_id}", wrapper.GetOrder)
		r.Post(options.BaseURL+"/orders/{order_id}/deliver", wrapper.ConfirmDelivery)

		r.Group(func(r chi.Router) {
			for _, middleware := range options.StaffMiddlewares {
				r.Use(middleware)
			}

			r.Get(options.BaseURL+"/admin/orders", wrapper.ListOrders)
			r.Get(options.BaseURL+"/admin/orders/pending-count", si.PendingCount)
			r.Get(options.BaseURL+"/admin/orders/{order_id}", wrapper.AdminGetOrder)
			r.Post(options.BaseURL+"/admin/orders/{order_id}/status", wrapper.UpdateStatus)
		})
	})

	return r
}
