package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// NewRateLimiter limits each client IP to requests per window. Rejected
// requests are logged and answered with 429. A non-positive requests count
// disables limiting.
func NewRateLimiter(requests int, window time.Duration, log *slog.Logger) func(http.Handler) http.Handler {
	if requests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			log.WarnContext(r.Context(), "rate limit exceeded",
				"ip", r.RemoteAddr,
				"host", r.Host,
				"path", r.URL.Path,
			)
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)
}
