package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dorost/consult-engine/internal/api/middleware"
	"github.com/dorost/consult-engine/internal/consultation"
)

// ConsultationHandler handles full consultations
type ConsultationHandler struct {
	service *consultation.Service
	logger  *zap.Logger
}

// NewConsultationHandler creates a new handler
func NewConsultationHandler(service *consultation.Service, logger *zap.Logger) *ConsultationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsultationHandler{service: service, logger: logger}
}

// Routes returns the handler routes
func (h *ConsultationHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)
	return r
}

// Create handles POST /consultations. Emergencies are a normal outcome and
// return 200 with status EMERGENCY.
func (h *ConsultationHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req consultation.Request
	if err := decode(r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.service.Consult(ctx, req)
	switch {
	case errors.Is(err, consultation.ErrEmptyRequest), errors.Is(err, consultation.ErrInvalidRequest):
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.logger.Error("consultation failed",
			zap.String("request_id", middleware.GetRequestID(ctx)),
			zap.Error(err))
		jsonError(w, "consultation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Location", "/api/v1/consultations/"+res.ID)
	jsonResponse(w, http.StatusOK, res)
}

// Get handles GET /consultations/{id}
func (h *ConsultationHandler) Get(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Get(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, consultation.ErrSessionNotFound) {
			jsonError(w, "consultation not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to load consultation", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, http.StatusOK, res)
}

// Delete handles DELETE /consultations/{id}
func (h *ConsultationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.End(chi.URLParam(r, "id")); err != nil {
		jsonError(w, "consultation not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
