package telemetry

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go.hackfix.me/todo/mediator"
)

// Metrics holds the Prometheus metrics of the service.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	slowRequests    *prometheus.CounterVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers all metrics in a new registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todo_requests_total",
				Help: "Total number of mediator requests by name and outcome",
			},
			[]string{"name", "outcome"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "todo_request_duration_seconds",
				Help:    "Mediator request handling duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"name"},
		),
		slowRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todo_long_running_requests_total",
				Help: "Total number of mediator requests that exceeded the long running threshold",
			},
			[]string{"name"},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todo_http_requests_total",
				Help: "Total number of HTTP requests by method and status code",
			},
			[]string{"method", "code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "todo_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.slowRequests,
		m.httpRequestsTotal,
		m.httpRequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Observe records the outcome and duration of a mediator request. It can be
// used as a mediator.DurationObserver.
func (m *Metrics) Observe(name string, elapsed time.Duration, err error) {
	m.requestsTotal.WithLabelValues(name, Outcome(err)).Inc()
	m.requestDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	if elapsed > mediator.LongRunningThreshold {
		m.slowRequests.WithLabelValues(name).Inc()
	}
}

// ObserveHTTP records a served HTTP request.
func (m *Metrics) ObserveHTTP(method string, code int, elapsed time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	m.httpRequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Handler returns the HTTP handler that exposes the metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Outcome classifies a request error for metric labels.
func Outcome(err error) string {
	var (
		verr   *mediator.ValidationError
		nfErr  mediator.NotFoundError
		argErr mediator.ArgumentError
		fbErr  mediator.ForbiddenError
	)
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &verr), errors.As(err, &argErr):
		return "invalid"
	case errors.Is(err, mediator.UnauthorizedError{}):
		return "unauthorized"
	case errors.As(err, &fbErr):
		return "forbidden"
	case errors.As(err, &nfErr):
		return "not_found"
	default:
		return "error"
	}
}
