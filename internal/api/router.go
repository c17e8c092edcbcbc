// Package api assembles the consult API HTTP surface.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/dorost/consult-engine/internal/api/handlers"
	"github.com/dorost/consult-engine/internal/api/middleware"
)

// ServiceName is reported by /health and used as the tracer name.
const ServiceName = "consult-api"

// Handlers are the mounted endpoint groups.
type Handlers struct {
	Engine       *handlers.EngineHandler
	Consultation *handlers.ConsultationHandler
	Health       *handlers.HealthHandler
	// Metrics serves /metrics. Nil leaves the route unmounted.
	Metrics http.Handler
}

// NewRouter wires middleware and routes. An empty keys map disables API key
// authentication.
func NewRouter(h Handlers, keys map[string]string, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS)
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Tracing(ServiceName))

	// Health check (no auth)
	r.Get("/health", h.Health.Health)
	r.Get("/ready", h.Health.Ready)
	if h.Metrics != nil {
		r.Handle("/metrics", h.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if len(keys) > 0 {
			r.Use(middleware.APIKeyAuth(keys))
		}
		r.Use(middleware.LimitBody)
		h.Engine.Register(r)
		r.Mount("/consultations", h.Consultation.Routes())
	})
	return r
}
