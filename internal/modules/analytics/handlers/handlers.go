// Package handlers provides HTTP handlers for the performance-analytics
// engine.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/alphatrack/internal/domain"
	"github.com/aristath/alphatrack/internal/modules/analytics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Handler handles analytics HTTP requests
type Handler struct {
	service *analytics.Service
	log     zerolog.Logger
}

// NewHandler creates a new analytics handler
func NewHandler(service *analytics.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "analytics").Logger(),
	}
}

type dailyRequest struct {
	Holdings []domain.Holding `json:"holdings"`
}

type backtestRequest struct {
	Holdings []domain.Holding `json:"holdings"`
	Years    int              `json:"years"`
}

// HandleComputeDaily handles POST /api/analytics/daily
func (h *Handler) HandleComputeDaily(w http.ResponseWriter, r *http.Request) {
	var req dailyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Holdings) == 0 {
		h.writeError(w, http.StatusBadRequest, "at least one holding is required")
		return
	}

	portfolio := domain.Portfolio{Holdings: req.Holdings}
	result := h.service.ComputeDaily(r.Context(), portfolio)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"report_id": uuid.New().String(),
			"result":    result,
			"as_of":     h.service.LastUpdatedLabel(r.Context(), ""),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleComputeBacktest handles POST /api/analytics/backtest
func (h *Handler) HandleComputeBacktest(w http.ResponseWriter, r *http.Request) {
	var req backtestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Holdings) == 0 {
		h.writeError(w, http.StatusBadRequest, "at least one holding is required")
		return
	}
	if req.Years <= 0 {
		h.writeError(w, http.StatusBadRequest, "years must be a positive integer")
		return
	}

	portfolio := domain.Portfolio{Holdings: req.Holdings}
	result, err := h.service.ComputeBacktest(r.Context(), portfolio, req.Years)
	if err != nil {
		h.log.Warn().Err(err).Int("years", req.Years).Msg("Backtest failed")
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"report_id": uuid.New().String(),
			"result":    result,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleLastUpdated handles GET /api/analytics/last-updated
func (h *Handler) HandleLastUpdated(w http.ResponseWriter, r *http.Request) {
	ticker := r.URL.Query().Get("ticker")
	label := h.service.LastUpdatedLabel(r.Context(), ticker)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"label": label,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]interface{}{
		"error": message,
	})
}
