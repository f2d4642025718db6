package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixge/httpsnoop"
)

// HTTPObserver receives the metrics of every served request.
type HTTPObserver func(method string, code int, elapsed time.Duration)

// Logger logs request details and response metrics. If observe is not nil,
// it's called with the metrics of every request.
func Logger(logger *slog.Logger, observe HTTPObserver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)
			logger.Info(
				fmt.Sprintf("%s %s", r.Method, r.URL),
				"response_code", m.Code,
				"duration", m.Duration,
				"bytes_sent", m.Written,
				"remote_addr", r.RemoteAddr,
				"request_id", RequestIDFrom(r.Context()),
			)
			if observe != nil {
				observe(r.Method, m.Code, m.Duration)
			}
		})
	}
}
