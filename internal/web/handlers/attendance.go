package handlers

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/mkovarik/faceattend/internal/ledger"
)

type AttendanceHandler struct {
	ledger *ledger.Ledger
}

func NewAttendanceHandler(led *ledger.Ledger) *AttendanceHandler {
	return &AttendanceHandler{ledger: led}
}

// List handles GET /api/v1/attendance. Optional query parameters: "date"
// (exact YYYY-MM-DD match) and "name" (case- and accent-insensitive
// substring). Records come back newest first.
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	name := r.URL.Query().Get("name")

	records, err := h.ledger.Log(date, name)
	if err != nil {
		log.Printf("reading attendance log: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to read attendance log")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"count":   len(records),
	})
}

// Export handles GET /api/v1/attendance/export and streams the raw CSV file
// as a download.
func (h *AttendanceHandler) Export(w http.ResponseWriter, r *http.Request) {
	f, err := os.Open(h.ledger.Path())
	if err != nil {
		respondError(w, http.StatusNotFound, "attendance file not found")
		return
	}
	defer f.Close()

	modTime := time.Time{}
	if info, err := f.Stat(); err == nil {
		modTime = info.ModTime()
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="attendance.csv"`)
	http.ServeContent(w, r, "attendance.csv", modTime, f)
}
