package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/dorost/consult-engine/pkg/circuitbreaker"
)

// Check is a named readiness probe, such as a database ping.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

// HealthHandler serves liveness and readiness.
type HealthHandler struct {
	service  string
	version  string
	breakers *circuitbreaker.Manager
	checks   []Check
}

// NewHealthHandler creates a new handler. breakers may be nil.
func NewHealthHandler(service, version string, breakers *circuitbreaker.Manager, checks ...Check) *HealthHandler {
	return &HealthHandler{service: service, version: version, breakers: breakers, checks: checks}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": h.service,
		"version": h.version,
	})
}

type readiness struct {
	Status   string                        `json:"status"`
	Checks   map[string]string             `json:"checks,omitempty"`
	Breakers []circuitbreaker.HealthStatus `json:"breakers,omitempty"`
}

// Ready handles GET /ready. A failing check makes the service not ready. An
// open breaker only degrades it: guarded stages still answer with their
// deterministic fallback.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := readiness{Status: "ready", Checks: map[string]string{}}
	code := http.StatusOK
	for _, c := range h.checks {
		if err := c.Fn(ctx); err != nil {
			resp.Checks[c.Name] = err.Error()
			resp.Status = "not_ready"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[c.Name] = "ok"
	}
	if h.breakers != nil {
		resp.Breakers = h.breakers.GetHealthStatus()
		for _, b := range resp.Breakers {
			if !b.Healthy && code == http.StatusOK {
				resp.Status = "degraded"
			}
		}
	}
	jsonResponse(w, code, resp)
}
