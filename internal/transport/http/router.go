// Package http composes the service's HTTP surface: health and metrics
// endpoints, the authenticated API, and the admin subtree.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cradle/internal/child/handler"
	"cradle/internal/platform/metrics"
	"cradle/internal/platform/middleware"
	"cradle/pkg/requestcontext"
)

const requestTimeout = 30 * time.Second

// NewRouter wires middleware and routes. All /api routes require a bearer
// token; /api/admin additionally requires the admin role.
func NewRouter(children *handler.Handler, validator middleware.TokenValidator, logger *slog.Logger, m *metrics.Metrics) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Metadata)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Latency(m))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(requestTimeout))
		api.Use(middleware.ContentTypeJSON)
		api.Use(middleware.RequireAuth(validator, logger))

		children.Register(api)

		api.Route("/admin", func(adm chi.Router) {
			adm.Use(middleware.RequireRole(requestcontext.RoleAdmin, logger))
			children.RegisterAdmin(adm)
		})
	})

	return r
}
