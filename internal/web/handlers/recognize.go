package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/mkovarik/faceattend/internal/detect"
	"github.com/mkovarik/faceattend/internal/pipeline"
)

// Recognizer is the slice of the pipeline the HTTP layer needs.
type Recognizer interface {
	Recognize(ctx context.Context, frame []byte, mark bool) (*pipeline.Recognition, error)
	Enroll(ctx context.Context, name string, frame []byte) error
}

type RecognizeHandler struct {
	pipeline Recognizer
}

func NewRecognizeHandler(p Recognizer) *RecognizeHandler {
	return &RecognizeHandler{pipeline: p}
}

// recognizeResponse extends the pipeline result with the no-face case, which
// is a normal kiosk outcome rather than an error.
type recognizeResponse struct {
	NoFace bool `json:"no_face"`
	*pipeline.Recognition
}

// Recognize handles POST /api/v1/recognize. The frame arrives as a multipart
// "frame" field or a raw image body. The "mark" query parameter defaults to
// true; mark=false gives a preview that never touches the ledger.
func (h *RecognizeHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	frame, err := readFrame(r)
	if err != nil || len(frame) == 0 {
		respondError(w, http.StatusBadRequest, "missing frame image")
		return
	}

	mark := r.URL.Query().Get("mark") != "false"

	rec, err := h.pipeline.Recognize(r.Context(), frame, mark)
	if err != nil {
		if pipeline.IsNoFace(err) {
			respondJSON(w, http.StatusOK, recognizeResponse{NoFace: true})
			return
		}
		if errors.Is(err, detect.ErrInvalidFrame) {
			respondError(w, http.StatusBadRequest, "frame is not a decodable image")
			return
		}
		log.Printf("recognition failed: %v", err)
		respondError(w, http.StatusInternalServerError, "recognition failed")
		return
	}

	respondJSON(w, http.StatusOK, recognizeResponse{Recognition: rec})
}
