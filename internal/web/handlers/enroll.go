package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/mkovarik/faceattend/internal/detect"
	"github.com/mkovarik/faceattend/internal/pipeline"
	"github.com/mkovarik/faceattend/internal/registry"
)

type EnrollHandler struct {
	pipeline Recognizer
}

func NewEnrollHandler(p Recognizer) *EnrollHandler {
	return &EnrollHandler{pipeline: p}
}

// Enroll handles POST /api/v1/enroll. Expects a multipart form with a "name"
// value and a "frame" image file. Re-enrolling a known name replaces the
// stored embedding.
func (h *EnrollHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFrameBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	file, _, err := r.FormFile("frame")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing frame image")
		return
	}
	defer file.Close()

	frame, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "reading frame image failed")
		return
	}

	if err := h.pipeline.Enroll(r.Context(), name, frame); err != nil {
		switch {
		case pipeline.IsNoFace(err):
			respondError(w, http.StatusUnprocessableEntity, "no face detected in frame")
		case errors.Is(err, detect.ErrInvalidFrame):
			respondError(w, http.StatusBadRequest, "frame is not a decodable image")
		case errors.Is(err, registry.ErrInvalidName):
			respondError(w, http.StatusBadRequest, "invalid name")
		default:
			log.Printf("enrollment of %s failed: %v", sanitizeForLog(name), err)
			respondError(w, http.StatusInternalServerError, "enrollment failed")
		}
		return
	}

	log.Printf("enrolled %s", sanitizeForLog(name))
	respondJSON(w, http.StatusCreated, map[string]string{"name": name})
}
