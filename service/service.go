// Package service exposes the base64 codec over HTTP.
//
// Routes:
//
//	POST /v1/encode       JSON {"data", "alphabet", "padding"} -> {"encoded", ...}
//	POST /v1/decode       JSON {"encoded", "alphabet"} -> {"decoded", ...}
//	POST /v1/encode/raw   raw bytes -> text/plain
//	POST /v1/decode/raw   text -> application/octet-stream
//	GET  /healthz
//	GET  /metrics         Prometheus exposition (path configurable)
//
// Decode responses honour the Accept header: application/msgpack and
// application/cbor deliver the decoded bytes natively, anything else gets
// JSON.
package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/presbrey/b64/base64"
	"github.com/presbrey/b64/logging"
)

// ShutdownTimeout bounds graceful shutdown in Start
const ShutdownTimeout = 10 * time.Second

// Options configures a Server
type Options struct {
	// Addr is the listen address used by Start
	Addr string

	// Codec supplies the default alphabet and options. Requests may
	// override the alphabet and, for encoding, the padding.
	Codec base64.Codec

	// MaxBodyBytes limits request bodies (default: 8 MiB)
	MaxBodyBytes int64

	// MetricsPath is where Prometheus metrics are served (default: /metrics)
	MetricsPath string
}

// Server is the HTTP front end of the codec
type Server struct {
	opts    Options
	echo    *echo.Echo
	log     logging.Logger
	metrics *Metrics
}

// New creates a Server. A nil logger disables logging.
func New(opts Options, log logging.Logger) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 8 << 20
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}

	s := &Server{
		opts:    opts,
		echo:    echo.New(),
		log:     logging.OrNop(log),
		metrics: NewMetrics(),
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newValidator()

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.Recover())
	e.Use(s.metrics.Middleware())
	e.Use(s.requestLogger())

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET(opts.MetricsPath, echo.WrapHandler(s.metrics.Handler()))

	v1 := e.Group("/v1", s.limitBody())
	v1.POST("/encode", s.handleEncode)
	v1.POST("/decode", s.handleDecode)
	v1.POST("/encode/raw", s.handleEncodeRaw)
	v1.POST("/decode/raw", s.handleDecodeRaw)

	return s
}

// Handler returns the HTTP handler serving all routes
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Metrics returns the server's collectors
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Start listens on Options.Addr and serves until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", logging.Fields{"addr": s.opts.Addr})
		errCh <- s.echo.Start(s.opts.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}

// limitBody caps the request body at MaxBodyBytes
func (s *Server) limitBody() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			req.Body = http.MaxBytesReader(c.Response(), req.Body, s.opts.MaxBodyBytes)
			return next(c)
		}
	}
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			fields := logging.Fields{
				"method":     c.Request().Method,
				"path":       c.Path(),
				"status":     statusOf(c, err),
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
				"latency":    time.Since(start).String(),
			}
			if err != nil {
				fields["error"] = err.Error()
				s.log.Warn("request failed", fields)
			} else {
				s.log.Debug("request", fields)
			}
			return err
		}
	}
}
