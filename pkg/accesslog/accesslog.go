package accesslog

import (
	"net/http"
	"time"

	"github.com/KretovDmitry/storefront/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler returns a middleware that records an access log message for every HTTP request being processed.
func Handler(logger logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		f := func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.With(r.Context(),
				"duration", time.Since(start).Milliseconds(),
				"status", ww.Status(),
			).Infof("%s %s %s %d %d",
				r.Method, r.URL.Path, r.Proto, ww.Status(), ww.BytesWritten())
		}
		return http.HandlerFunc(f)
	}
}
