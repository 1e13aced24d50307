package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mkovarik/faceattend/internal/pipeline"
	"github.com/mkovarik/faceattend/internal/registry"
)

type RegistryHandler struct {
	registry *registry.Registry
	engine   any // checked for pipeline.Rebuilder after mutations
}

func NewRegistryHandler(reg *registry.Registry, engine any) *RegistryHandler {
	return &RegistryHandler{registry: reg, engine: engine}
}

// List handles GET /api/v1/registry and returns the enrolled names.
func (h *RegistryHandler) List(w http.ResponseWriter, r *http.Request) {
	names, err := h.registry.Names()
	if err != nil {
		log.Printf("listing registry: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to read registry")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"names": names,
		"count": len(names),
	})
}

// Delete handles DELETE /api/v1/registry/{name} and removes one enrollment.
func (h *RegistryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	removed, err := h.registry.Remove(name)
	if err != nil {
		log.Printf("removing %s from registry: %v", sanitizeForLog(name), err)
		respondError(w, http.StatusInternalServerError, "failed to update registry")
		return
	}
	if !removed {
		respondError(w, http.StatusNotFound, "name not enrolled")
		return
	}

	h.rebuildIndex(r.Context())
	respondJSON(w, http.StatusOK, map[string]string{"removed": name})
}

func (h *RegistryHandler) rebuildIndex(ctx context.Context) {
	if rb, ok := h.engine.(pipeline.Rebuilder); ok {
		if err := rb.Rebuild(ctx); err != nil {
			log.Printf("rebuilding match index: %v", err)
		}
	}
}
