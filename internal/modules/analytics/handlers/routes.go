package handlers

import "github.com/go-chi/chi/v5"

// Routes mounts the analytics endpoints on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/daily", h.HandleComputeDaily)
	r.Post("/backtest", h.HandleComputeBacktest)
	r.Get("/last-updated", h.HandleLastUpdated)
}
