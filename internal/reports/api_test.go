package reports

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KretovDmitry/storefront/pkg/limiter"
	"github.com/KretovDmitry/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, renderer Renderer, exportMiddlewares ...MiddlewareFunc) http.Handler {
	t.Helper()

	api, err := NewAPI(newTestService(t, newTestRepository(), renderer), logger.NewWithZap(zap.NewNop()))
	require.NoError(t, err)

	return HandlerWithOptions(api, ChiServerOptions{
		BaseRouter:        chi.NewRouter(),
		ExportMiddlewares: exportMiddlewares,
	})
}

func TestSalesReportHandler(t *testing.T) {
	type want struct {
		statusCode  int
		totalOrders float64
		errContains string
	}

	tests := []struct {
		name  string
		query string
		want  want
	}{
		{
			name:  "january",
			query: "?report_type=monthly&start_date=2024-01-01&end_date=2024-01-31",
			want:  want{statusCode: http.StatusOK, totalOrders: 2},
		},
		{
			name:  "dates are required",
			query: "?start_date=2024-01-01",
			want:  want{statusCode: http.StatusBadRequest, errContains: "required"},
		},
		{
			name:  "malformed date",
			query: "?start_date=01/01/2024&end_date=2024-01-31",
			want:  want{statusCode: http.StatusBadRequest, errContains: "start_date must be YYYY-MM-DD"},
		},
		{
			name:  "start after end",
			query: "?start_date=2024-02-01&end_date=2024-01-31",
			want:  want{statusCode: http.StatusBadRequest, errContains: "after"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := newTestRouter(t, nil)

			req := httptest.NewRequest(http.MethodGet, "/reports/sales"+tt.query, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			require.Equal(t, tt.want.statusCode, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))

			if tt.want.errContains != "" {
				assert.Contains(t, body["error"], tt.want.errContains)
				return
			}
			assert.Equal(t, tt.want.totalOrders, body["total_orders"])
			assert.Equal(t, "monthly", body["report_type"])
		})
	}
}

func TestExportReportHandler(t *testing.T) {
	type want struct {
		statusCode  int
		contentType string
		disposition string
		body        string
	}

	tests := []struct {
		name     string
		query    string
		renderer Renderer
		want     want
	}{
		{
			name:  "csv by default over all orders",
			query: "",
			want: want{
				statusCode:  http.StatusOK,
				contentType: "text/csv",
				disposition: `attachment; filename="sales_report_2023-12-31_2024-01-20.csv"`,
			},
		},
		{
			name:  "json",
			query: "?format=json&start_date=2024-01-01&end_date=2024-01-31",
			want: want{
				statusCode:  http.StatusOK,
				contentType: "application/json",
				disposition: `attachment; filename="sales_report_2024-01-01_2024-01-31.json"`,
			},
		},
		{
			name:     "pdf",
			query:    "?format=pdf&start_date=2024-01-01&end_date=2024-01-31",
			renderer: mockRenderer{},
			want: want{
				statusCode:  http.StatusOK,
				contentType: "application/pdf",
				disposition: `attachment; filename="sales_report_2024-01-01_2024-01-31.pdf"`,
			},
		},
		{
			name:  "pdf without renderer",
			query: "?format=pdf",
			want: want{
				statusCode:  http.StatusNotImplemented,
				contentType: "text/plain; charset=utf-8",
				body:        "wkhtmltopdf is not installed. PDF export is unavailable.\n",
			},
		},
		{
			name:     "pdf rendering fails",
			query:    "?format=pdf",
			renderer: mockRenderer{err: errors.New("boom")},
			want: want{
				statusCode:  http.StatusInternalServerError,
				contentType: "text/plain; charset=utf-8",
				body:        "PDF generation failed: boom\n",
			},
		},
		{
			name:  "unsupported format",
			query: "?format=xml",
			want: want{
				statusCode:  http.StatusBadRequest,
				contentType: "application/json",
				body:        "{\"error\":\"unsupported format: \\\"xml\\\"\"}\n",
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := newTestRouter(t, tt.renderer)

			req := httptest.NewRequest(http.MethodGet, "/reports/export"+tt.query, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			res := w.Result()
			defer res.Body.Close()

			assert.Equal(t, tt.want.statusCode, res.StatusCode)
			assert.Equal(t, tt.want.contentType, res.Header.Get("Content-Type"))
			assert.Equal(t, tt.want.disposition, res.Header.Get("Content-Disposition"))

			if tt.want.body != "" {
				body, err := io.ReadAll(res.Body)
				require.NoError(t, err)
				assert.Equal(t, tt.want.body, string(body))
			}
		})
	}
}

func TestExportReportRateLimit(t *testing.T) {
	l := limiter.New(time.Hour, 1)
	router := newTestRouter(t, nil, l.Middleware)

	for i, code := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodGet, "/reports/export", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, code, w.Code, "request #%d", i)
	}

	// Other report routes are not limited.
	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDashboardHandlers(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var d dashboardJSON
	require.NoError(t, json.NewDecoder(w.Body).Decode(&d))
	assert.Equal(t, "2024-01-02", d.Since)
	assert.Equal(t, int64(4), d.TotalOrders)
	assert.Equal(t, 60.0, d.TotalRevenue)
	assert.Len(t, d.TopProducts, 3)

	req = httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var a adminDashboardJSON
	require.NoError(t, json.NewDecoder(w.Body).Decode(&a))
	assert.Equal(t, int64(5), a.TotalOrders)
	assert.Equal(t, int64(1), a.OutOfStock)
	assert.Len(t, a.RecentOrders, 5)
}
