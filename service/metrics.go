package service

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/presbrey/b64/base64"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of one Server. Each Server owns
// its registry so several can coexist in a process.
type Metrics struct {
	Registry *prometheus.Registry

	// RequestDuration measures request latency
	RequestDuration *prometheus.HistogramVec

	// Operations counts codec calls by operation, alphabet and result
	Operations *prometheus.CounterVec

	// Bytes counts codec input and output volume
	Bytes *prometheus.CounterVec
}

// NewMetrics creates the collectors on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	return &Metrics{
		Registry: reg,
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "b64_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "code"},
		),
		Operations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "b64_operations_total",
				Help: "Total number of encode and decode operations by result",
			},
			[]string{"op", "alphabet", "result"},
		),
		Bytes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "b64_bytes_total",
				Help: "Bytes consumed (in) and produced (out) by the codec",
			},
			[]string{"op", "direction"},
		),
	}
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Middleware returns Echo middleware which records request latency
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			m.RequestDuration.
				WithLabelValues(c.Request().Method, strconv.Itoa(statusOf(c, err))).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// observe records one codec call
func (m *Metrics) observe(op string, alphabet base64.Alphabet, in, out int, err error) {
	m.Operations.WithLabelValues(op, alphabet.String(), resultOf(err)).Inc()
	m.Bytes.WithLabelValues(op, "in").Add(float64(in))
	if err == nil {
		m.Bytes.WithLabelValues(op, "out").Add(float64(out))
	}
}

// statusOf returns the status the response will carry once Echo's error
// handler has run
func statusOf(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, base64.ErrInvalidCharacter):
		return "invalid_character"
	case errors.Is(err, base64.ErrTruncatedInput):
		return "truncated_input"
	case errors.Is(err, base64.ErrInvalidPadding):
		return "invalid_padding"
	case errors.Is(err, base64.ErrAllocation):
		return "allocation"
	default:
		return "error"
	}
}
