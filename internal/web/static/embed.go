// Package static carries the embedded kiosk frontend.
package static

import (
	_ "embed"
	"net/http"
)

//go:embed kiosk.html
var kioskHTML []byte

// Kiosk serves the embedded single-page kiosk UI.
func Kiosk(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(kioskHTML)
}
