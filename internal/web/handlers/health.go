package handlers

import (
	"net/http"

	"github.com/mkovarik/faceattend/internal/registry"
)

// HealthHandler reports liveness plus the registered-identity count, so an
// empty registry is visible without a separate call.
type HealthHandler struct {
	registry *registry.Registry
}

func NewHealthHandler(reg *registry.Registry) *HealthHandler {
	return &HealthHandler{registry: reg}
}

// Status handles the health check endpoint.
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	registered, _ := h.registry.Count()
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"registered": registered,
	})
}
