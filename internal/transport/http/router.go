package httptransport

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authmw "aprovame/pkg/platform/middleware/auth"
	"aprovame/pkg/platform/middleware/metadata"
	request "aprovame/pkg/platform/middleware/request"
	"aprovame/pkg/platform/validation"
)

// Registrar mounts a handler's routes.
type Registrar interface {
	Register(r chi.Router)
}

// Config carries router-level settings.
type Config struct {
	RequestTimeout time.Duration
	TrustedProxies []netip.Prefix
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Metrics  *request.Metrics
}

// Routes groups the handlers by who may reach them.
type Routes struct {
	Health Registrar
	Auth   Registrar
	// Integrations are mounted behind the bearer guard.
	Integrations []Registrar
	// Batch registers its own per-route body limits.
	Batch Registrar
}

// NewRouter wires all endpoints with middleware.
// Body limits are applied per group because nested MaxBytesReaders can only shrink a limit.
func NewRouter(cfg Config, routes Routes, tokens authmw.TokenValidator, logger *slog.Logger) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(request.RequestTime)
	r.Use(metadata.NewMiddleware(metadata.Config{TrustedProxies: cfg.TrustedProxies}).Handler)
	r.Use(request.Logger(logger))
	r.Use(request.Timeout(cfg.RequestTimeout))
	r.Use(request.LatencyMiddleware(cfg.Metrics))
	r.Use(request.ContentTypeJSON)

	if routes.Health != nil {
		routes.Health.Register(r)
	}
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	if routes.Auth != nil {
		r.Group(func(r chi.Router) {
			r.Use(request.BodyLimit(validation.MaxBodySize))
			routes.Auth.Register(r)
		})
	}

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(tokens, logger))

		if routes.Batch != nil {
			routes.Batch.Register(r)
		}

		r.Group(func(r chi.Router) {
			r.Use(request.BodyLimit(validation.MaxBodySize))
			for _, reg := range routes.Integrations {
				reg.Register(r)
			}
		})
	})

	return r
}
