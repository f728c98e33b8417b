package limiter

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket shared by all requests passing through it.
type Limiter struct {
	limiter *rate.Limiter
}

// New returns a limiter allowing one event per interval with the given burst.
// Non-positive interval disables limiting.
func New(interval time.Duration, burst int) *Limiter {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(limit, burst)}
}

// Allow reports whether an event may happen now.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Middleware rejects requests with 429 Too Many Requests once the bucket is empty.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	f := func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow() {
			w.Header().Set("Retry-After", "1")
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(f)
}
