// Package httptransport exposes the submission endpoints over HTTP.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tallybridge/internal/platform/errreport"
	"tallybridge/internal/platform/metrics"
	"tallybridge/internal/platform/middleware"
	"tallybridge/internal/ratelimit"
	"tallybridge/pkg/platform/middleware/metadata"
	"tallybridge/pkg/platform/middleware/requesttime"
)

// RouterDeps holds what the router needs besides the handler.
type RouterDeps struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Reporter *errreport.Reporter
	Gatherer prometheus.Gatherer

	// RateLimiter throttles the submission routes; nil disables it.
	RateLimiter *ratelimit.Limiter
}

// NewRouter wires middleware, the submission routes, health and metrics.
func NewRouter(h *Handler, deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.Logger(deps.Logger, deps.Metrics))
	r.Use(middleware.Recover(deps.Logger, deps.Reporter))

	r.Get("/health", HandleHealth)
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.Middleware)
		r.Use(middleware.RequireJSON)
		h.Register(r)
	})
	return r
}
