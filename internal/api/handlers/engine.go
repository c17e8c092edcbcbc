// Package handlers provides HTTP handlers for the consult API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/dorost/consult-engine/internal/api/middleware"
	"github.com/dorost/consult-engine/internal/confidence"
	"github.com/dorost/consult-engine/internal/knowledge"
	"github.com/dorost/consult-engine/internal/observability/metrics"
	"github.com/dorost/consult-engine/internal/patterns"
	"github.com/dorost/consult-engine/internal/routing"
	"github.com/dorost/consult-engine/internal/triage"
)

// EngineHandler exposes the deterministic engines one by one: red-flag
// screening, specialist routing, pattern matching and confidence scoring.
type EngineHandler struct {
	kb       *knowledge.Base
	detector *triage.Detector
	router   *routing.Router
	matcher  *patterns.Matcher
	policy   confidence.Policy
	metrics  *metrics.Metrics
	logger   *zap.Logger
	tracer   trace.Tracer
}

// NewEngineHandler creates a new handler
func NewEngineHandler(kb *knowledge.Base, router *routing.Router, matcher *patterns.Matcher, policy confidence.Policy, m *metrics.Metrics, logger *zap.Logger) *EngineHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EngineHandler{
		kb:       kb,
		detector: triage.NewDetector(kb),
		router:   router,
		matcher:  matcher,
		policy:   policy,
		metrics:  m,
		logger:   logger,
		tracer:   otel.Tracer("engine-handler"),
	}
}

// Register adds the engine routes to r.
func (h *EngineHandler) Register(r chi.Router) {
	r.Post("/triage", h.Triage)
	r.Post("/route", h.Route)
	r.Post("/patterns", h.MatchPatterns)
	r.Get("/patterns", h.ListPatterns)
	r.Post("/confidence", h.Confidence)
	r.Get("/specialties", h.ListSpecialties)
}

// TriageRequest is the request body for red-flag screening
type TriageRequest struct {
	Symptoms []string `json:"symptoms"`
}

// Triage handles POST /triage
func (h *EngineHandler) Triage(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "triage")
	defer span.End()

	var req TriageRequest
	if err := decode(r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Symptoms) == 0 {
		jsonError(w, "symptoms are required", http.StatusBadRequest)
		return
	}

	res := h.detector.Detect(req.Symptoms)
	for _, m := range res.Flags {
		h.metrics.ObserveRedFlag(m.Flag.Urgency.String())
		h.logger.Warn("red flag detected",
			zap.String("flag", m.Flag.ID),
			zap.String("urgency", m.Flag.Urgency.String()),
			zap.String("request_id", middleware.GetRequestID(ctx)))
	}
	span.SetAttributes(
		attribute.Int("red_flags", len(res.Flags)),
		attribute.String("urgency", res.MaxUrgency.String()),
		attribute.Bool("terminal", res.Terminal))

	jsonResponse(w, http.StatusOK, res)
}

// Route handles POST /route
func (h *EngineHandler) Route(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "route")
	defer span.End()

	var req routing.Request
	if err := decode(r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	res := h.router.Route(req)
	span.SetAttributes(attribute.Bool("emergency", res.Emergency))
	if res.Emergency {
		h.logger.Warn("routing short-circuited by red flags",
			zap.String("urgency", res.Urgency.String()),
			zap.Strings("flags", res.RedFlags.FlagIDs()),
			zap.String("request_id", middleware.GetRequestID(ctx)))
	} else if primary, ok := res.Primary(); ok {
		h.logger.Info("specialist routed",
			zap.String("body_system", res.BodySystem),
			zap.String("primary", string(primary.Specialty)),
			zap.Float64("match_score", primary.MatchScore),
			zap.String("request_id", middleware.GetRequestID(ctx)))
	}

	jsonResponse(w, http.StatusOK, res)
}

// PatternRequest is the request body for pattern matching
type PatternRequest struct {
	Profile *patterns.Profile `json:"profile"`
}

// PatternResponse carries the ranked matches plus the profile-level analysis.
type PatternResponse struct {
	Matches      []patterns.MatchResult `json:"matches"`
	Strength     float64                `json:"pattern_match_strength"`
	Correlations []patterns.Correlation `json:"correlations"`
	Severity     patterns.Severity      `json:"severity"`
}

// MatchPatterns handles POST /patterns
func (h *EngineHandler) MatchPatterns(w http.ResponseWriter, r *http.Request) {
	_, span := h.tracer.Start(r.Context(), "match_patterns")
	defer span.End()

	var req PatternRequest
	if err := decode(r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Profile == nil {
		jsonError(w, "profile is required", http.StatusBadRequest)
		return
	}

	matches := h.matcher.Match(req.Profile)
	h.metrics.ObservePatternMatches(len(matches))
	span.SetAttributes(attribute.Int("matches", len(matches)))

	jsonResponse(w, http.StatusOK, PatternResponse{
		Matches:      matches,
		Strength:     patterns.Strength(matches),
		Correlations: patterns.Correlations(req.Profile),
		Severity:     patterns.Score(req.Profile),
	})
}

// ListPatterns handles GET /patterns
func (h *EngineHandler) ListPatterns(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, h.kb.Patterns())
}

// ListSpecialties handles GET /specialties
func (h *EngineHandler) ListSpecialties(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]any{
		"specialties":  h.kb.Specialties(),
		"body_systems": h.kb.BodySystems(),
	})
}

// ConfidenceRequest scores a case. Recommendation, when present, is also
// scored with the symptom-count variant.
type ConfidenceRequest struct {
	confidence.Input
	Recommendation *confidence.RecommendationInput `json:"recommendation,omitempty"`
}

// ConfidenceResponse is the response for confidence scoring
type ConfidenceResponse struct {
	Assessment     confidence.Assessment                `json:"assessment"`
	Guidance       string                               `json:"guidance"`
	Recommendation *confidence.RecommendationAssessment `json:"recommendation,omitempty"`
}

// Confidence handles POST /confidence
func (h *EngineHandler) Confidence(w http.ResponseWriter, r *http.Request) {
	_, span := h.tracer.Start(r.Context(), "confidence")
	defer span.End()

	var req ConfidenceRequest
	if err := decode(r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	a := h.policy.Assess(req.Input)
	resp := ConfidenceResponse{Assessment: a, Guidance: confidence.Guidance(a.Score)}
	if req.Recommendation != nil {
		ra := h.policy.AssessRecommendation(*req.Recommendation)
		resp.Recommendation = &ra
	}
	span.SetAttributes(
		attribute.Float64("score", a.Score),
		attribute.Bool("escalate", a.ShouldEscalate))

	jsonResponse(w, http.StatusOK, resp)
}

var errBody = errors.New("invalid request body")

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errors.New("request body too large")
		}
		return errBody
	}
	return nil
}

func jsonResponse(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, message string, code int) {
	jsonResponse(w, code, map[string]string{"error": message})
}
