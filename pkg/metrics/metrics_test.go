package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	router := chi.NewRouter()
	router.Use(Middleware)
	router.Get("/orders/{order_id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	before := testutil.ToFloat64(RequestsTotal.WithLabelValues(http.MethodGet, "/orders/{order_id}", "204"))

	r := httptest.NewRequest(http.MethodGet, "/orders/123", http.NoBody)
	router.ServeHTTP(httptest.NewRecorder(), r)

	after := testutil.ToFloat64(RequestsTotal.WithLabelValues(http.MethodGet, "/orders/{order_id}", "204"))
	assert.Equal(t, before+1, after)
}
