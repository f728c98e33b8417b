package reports

import (
	"fmt"
	"net/http"
	"time"

	"github.com/KretovDmitry/storefront/internal/models/errs"
	"github.com/KretovDmitry/storefront/internal/models/report"
	"github.com/go-chi/chi/v5"
)

type SalesReportParams struct {
	ReportType string
	StartDate  time.Time
	EndDate    time.Time
}

type ExportParams struct {
	StartDate  *time.Time
	EndDate    *time.Time
	ReportType string
	Format     Format
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Owner dashboard (GET /reports).
	Dashboard(w http.ResponseWriter, r *http.Request)
	// Sales report (GET /reports/sales).
	SalesReport(w http.ResponseWriter, r *http.Request, params SalesReportParams)
	// Report download (GET /reports/export).
	ExportReport(w http.ResponseWriter, r *http.Request, params ExportParams)
	// Staff dashboard (GET /admin/dashboard).
	AdminDashboard(w http.ResponseWriter, r *http.Request)
}

// ServerInterfaceWrapper converts payloads to parameters.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

type MiddlewareFunc func(http.Handler) http.Handler

// Sales report operation middleware. Both dates are required.
func (siw *ServerInterfaceWrapper) SalesReport(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	params := SalesReportParams{ReportType: query.Get("report_type")}

	start, err := parseDate(query.Get("start_date"), "start_date")
	if err != nil {
		siw.ErrorHandlerFunc(w, r, err)
		return
	}
	end, err := parseDate(query.Get("end_date"), "end_date")
	if err != nil {
		siw.ErrorHandlerFunc(w, r, err)
		return
	}
	if start == nil || end == nil {
		siw.ErrorHandlerFunc(w, r, fmt.Errorf("%w: start_date and end_date are required", errs.ErrInvalidRequest))
		return
	}
	if start.After(*end) {
		siw.ErrorHandlerFunc(w, r, fmt.Errorf("%w: start_date is after end_date", errs.ErrInvalidRequest))
		return
	}

	params.StartDate, params.EndDate = *start, *end

	siw.Handler.SalesReport(w, r, params)
}

// Export operation middleware. Dates are optional, the format defaults to csv.
func (siw *ServerInterfaceWrapper) ExportReport(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var (
		params = ExportParams{ReportType: query.Get("report_type")}
		err    error
	)

	if params.Format, err = ParseFormat(query.Get("format")); err != nil {
		siw.ErrorHandlerFunc(w, r, err)
		return
	}
	if params.StartDate, err = parseDate(query.Get("start_date"), "start_date"); err != nil {
		siw.ErrorHandlerFunc(w, r, err)
		return
	}
	if params.EndDate, err = parseDate(query.Get("end_date"), "end_date"); err != nil {
		siw.ErrorHandlerFunc(w, r, err)
		return
	}

	siw.Handler.ExportReport(w, r, params)
}

func parseDate(value, name string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(report.DateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", errs.ErrInvalidRequest, name)
	}
	return &t, nil
}

// Handler creates http.Handler with all report routes mounted.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

type ChiServerOptions struct {
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
	BaseRouter       chi.Router
	BaseURL          string
	// Applied to every route.
	Middlewares []MiddlewareFunc
	// Applied to /reports routes.
	OwnerMiddlewares []MiddlewareFunc
	// Applied to the export route on top of OwnerMiddlewares.
	ExportMiddlewares []MiddlewareFunc
	// Applied to /admin routes.
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

		r.Group(func(r chi.Router) {
			for _, middleware := range options.OwnerMiddlewares {
				r.Use(middleware)
			}

			r.Get(options.BaseURL+"/reports", si.Dashboard)
			r.Get(options.BaseURL+"/reports/sales", wrapper.SalesReport)

			r.Group(func(r chi.Router) {
				for _, middleware := range options.ExportMiddlewares {
					r.Use(middleware)
				}
				r.Get(options.BaseURL+"/reports/export", wrapper.ExportReport)
			})
		})

		r.Group(func(r chi.Router) {
			for _, middleware := range options.StaffMiddlewares {
				r.Use(middleware)
			}
			r.Get(options.BaseURL+"/admin/dashboard", si.AdminDashboard)
		})
	})

	return r
}
