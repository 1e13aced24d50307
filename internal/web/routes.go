package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/mkovarik/faceattend/internal/ledger"
	"github.com/mkovarik/faceattend/internal/match"
	"github.com/mkovarik/faceattend/internal/pipeline"
	"github.com/mkovarik/faceattend/internal/registry"
	"github.com/mkovarik/faceattend/internal/web/handlers"
	"github.com/mkovarik/faceattend/internal/web/static"
)

func (s *Server) setupRoutes(pl *pipeline.Pipeline, reg *registry.Registry, eng match.Engine, led *ledger.Ledger) {
	recognizeHandler := handlers.NewRecognizeHandler(pl)
	enrollHandler := handlers.NewEnrollHandler(pl)
	attendanceHandler := handlers.NewAttendanceHandler(led)
	registryHandler := handlers.NewRegistryHandler(reg, eng)
	sessionHandler := handlers.NewSessionHandler(led)
	healthHandler := handlers.NewHealthHandler(reg)

	// Health check
	s.router.Get("/api/v1/health", healthHandler.Status)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Recognition
		r.Post("/recognize", recognizeHandler.Recognize)

		// Enrollment
		r.Post("/enroll", enrollHandler.Enroll)

		// Attendance log
		r.Get("/attendance", attendanceHandler.List)
		r.Get("/attendance/export", attendanceHandler.Export)

		// Scanning sessions
		r.Post("/sessions", sessionHandler.Start)
		r.Get("/sessions/current", sessionHandler.Current)

		// Embedding registry
		r.Get("/registry", registryHandler.List)
		r.Delete("/registry/{name}", registryHandler.Delete)
	})

	// Kiosk frontend
	s.router.Get("/", static.Kiosk)
}
