package reports

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/KretovDmitry/storefront/internal/models/errs"
	"github.com/KretovDmitry/storefront/internal/models/report"
	"github.com/KretovDmitry/storefront/pkg/logger"
)

const msgPDFUnavailable = "wkhtmltopdf is not installed. PDF export is unavailable."

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

// Owner dashboard (GET /reports).
func (a *API) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := a.service.Dashboard(r.Context())
	if err != nil {
		a.logger.With(r.Context()).Errorf("dashboard: %s", err)
		ErrorHandlerFunc(w, r, err)
		return
	}

	writeJSON(w, r, newDashboardJSON(d))
}

// Sales report (GET /reports/sales).
func (a *API) SalesReport(w http.ResponseWriter, r *http.Request, params SalesReportParams) {
	data, err := a.service.Generate(r.Context(), params.ReportType, params.StartDate, params.EndDate)
	if err != nil {
		a.logger.With(r.Context()).Errorf("generate report: %s", err)
		ErrorHandlerFunc(w, r, err)
		return
	}

	writeJSON(w, r, newDataJSON(data))
}

// Report download (GET /reports/export).
func (a *API) ExportReport(w http.ResponseWriter, r *http.Request, params ExportParams) {
	ctx := r.Context()

	start, end, err := a.service.ResolveRange(ctx, params.StartDate, params.EndDate)
	if err != nil {
		a.logger.With(ctx).Errorf("resolve range: %s", err)
		ErrorHandlerFunc(w, r, err)
		return
	}

	data, err := a.service.Generate(ctx, params.ReportType, start, end)
	if err != nil {
		a.logger.With(ctx).Errorf("generate report: %s", err)
		ErrorHandlerFunc(w, r, err)
		return
	}

	export, err := a.service.Export(ctx, data, params.Format)
	switch {
	case err == nil:
	case errors.Is(err, errs.ErrRenderingUnavailable):
		http.Error(w, msgPDFUnavailable, http.StatusNotImplemented)
		return
	case errors.Is(err, errs.ErrRenderingFailed):
		a.logger.With(ctx).Errorf("export pdf: %s", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	default:
		a.logger.With(ctx).Errorf("export %s: %s", params.Format, err)
		ErrorHandlerFunc(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Body)))
	w.WriteHeader(http.StatusOK)

	if _, err = w.Write(export.Body); err != nil {
		a.logger.With(ctx).Errorf("write export: %s", err)
	}
}

// Staff dashboard (GET /admin/dashboard).
func (a *API) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := a.service.AdminDashboard(r.Context())
	if err != nil {
		a.logger.With(r.Context()).Errorf("admin dashboard: %s", err)
		ErrorHandlerFunc(w, r, err)
		return
	}

	writeJSON(w, r, newAdminDashboardJSON(d))
}

// Types just for marshalling purpose.
type (
	dashboardJSON struct {
		Since             string            `json:"since"`
		RecentOrders      []recentOrderJSON `json:"recent_orders"`
		TopProducts       []topProductJSON  `json:"top_products"`
		TotalOrders       int64             `json:"total_orders"`
		TotalRevenue      float64           `json:"total_revenue"`
		AverageOrderValue float64           `json:"average_order_value"`
		TotalCustomers    int64             `json:"total_customers"`
	}

	recentOrderJSON struct {
		CreatedAt   time.Time `json:"created_at"`
		OrderID     string    `json:"order_id"`
		Username    string    `json:"username"`
		Status      string    `json:"status"`
		TotalAmount float64   `json:"total_amount"`
	}

	topProductJSON struct {
		Name         string  `json:"name"`
		TotalSold    int64   `json:"total_sold"`
		TotalRevenue float64 `json:"total_revenue"`
	}

	adminDashboardJSON struct {
		StatusCounts  map[string]int64  `json:"status_counts"`
		RecentOrders  []recentOrderJSON `json:"recent_orders"`
		TotalOrders   int64             `json:"total_orders"`
		TotalProducts int64             `json:"total_products"`
		InStock       int64             `json:"in_stock"`
		LowStock      int64             `json:"low_stock"`
		OutOfStock    int64             `json:"out_of_stock"`
	}
)

func newRecentOrdersJSON(orders []report.RecentOrder) []recentOrderJSON {
	res := make([]recentOrderJSON, 0, len(orders))
	for _, o := range orders {
		res = append(res, recentOrderJSON{
			CreatedAt:   o.CreatedAt,
			OrderID:     o.OrderID,
			Username:    o.Username,
			Status:      o.Status,
			TotalAmount: o.TotalAmount.InexactFloat64(),
		})
	}
	return res
}

func newDashboardJSON(d *report.Dashboard) dashboardJSON {
	res := dashboardJSON{
		Since:             d.Since.Format(report.DateLayout),
		RecentOrders:      newRecentOrdersJSON(d.RecentOrders),
		TopProducts:       make([]topProductJSON, 0, len(d.TopProducts)),
		TotalOrders:       d.TotalOrders,
		TotalRevenue:      d.TotalRevenue.InexactFloat64(),
		AverageOrderValue: d.AverageOrderValue.InexactFloat64(),
		TotalCustomers:    d.TotalCustomers,
	}

	for _, p := range d.TopProducts {
		res.TopProducts = append(res.TopProducts, topProductJSON{
			Name:         p.Name,
			TotalSold:    p.TotalSold,
			TotalRevenue: p.TotalRevenue.InexactFloat64(),
		})
	}

	return res
}

func newAdminDashboardJSON(d *report.AdminDashboard) adminDashboardJSON {
	return adminDashboardJSON{
		StatusCounts:  d.StatusCounts,
		RecentOrders:  newRecentOrdersJSON(d.RecentOrders),
		TotalOrders:   d.TotalOrders,
		TotalProducts: d.TotalProducts,
		InStock:       d.InStock,
		LowStock:      d.LowStock,
		OutOfStock:    d.OutOfStock,
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		ErrorHandlerFunc(w, r, err)
	}
}

// ErrorHandlerFunc handles sending of an error in the JSON format,
// writing appropriate status code and handling the failure to marshal that.
func ErrorHandlerFunc(w http.ResponseWriter, _ *http.Request, err error) {
	errJSON := errs.JSON{Error: err.Error()}
	code := http.StatusInternalServerError

	switch {
	// Status Bad Request (400).
	case errors.Is(err, errs.ErrInvalidRequest),
		errors.Is(err, errs.ErrUnsupportedFormat):
		code = http.StatusBadRequest

	// Status Not Implemented (501).
	case errors.Is(err, errs.ErrRenderingUnavailable):
		code = http.StatusNotImplemented
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err = json.NewEncoder(w).Encode(errJSON); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
