package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mkovarik/faceattend/internal/ledger"
)

// SessionHandler tracks the current scanning session. Starting a session
// clears the ledger's in-memory suppression set; the per-day CSV invariant is
// unaffected.
type SessionHandler struct {
	ledger *ledger.Ledger

	mu        sync.Mutex
	sessionID string
	startedAt time.Time
}

func NewSessionHandler(led *ledger.Ledger) *SessionHandler {
	return &SessionHandler{ledger: led}
}

type sessionInfo struct {
	SessionID string    `json:"session_id"`
	StartedAt time.Time `json:"started_at"`
}

// Start handles POST /api/v1/sessions. Any previous session is replaced.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.sessionID = uuid.NewString()
	h.startedAt = time.Now()
	info := sessionInfo{SessionID: h.sessionID, StartedAt: h.startedAt}
	h.mu.Unlock()

	h.ledger.ResetSession()
	respondJSON(w, http.StatusCreated, info)
}

// Current handles GET /api/v1/sessions/current.
func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessionID == "" {
		respondError(w, http.StatusNotFound, "no active session")
		return
	}
	respondJSON(w, http.StatusOK, sessionInfo{SessionID: h.sessionID, StartedAt: h.startedAt})
}
