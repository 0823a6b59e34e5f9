package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/fiscal-api/internal/config"
)

// SetupRoutes configures all HTTP routes and returns the router.
//
// Route structure:
//
//	GET    /health
//	GET    /api/v1/fiscal-year?date=YYYY-MM-DD
//	GET    /api/v1/periods?granularity=quarter|year&future=N&past=N&date=YYYY-MM-DD
//	GET    /api/v1/settings
//	PUT    /api/v1/settings
//	GET    /api/v1/selections
//	GET    /api/v1/selections/{scope}
//	PUT    /api/v1/selections/{scope}
//	DELETE /api/v1/selections/{scope}
func SetupRoutes(handlers *Handlers, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		RecoveryMiddleware(logger),
		RequestIDMiddleware(),
		LoggingMiddleware(logger),
		CORSMiddleware(),
	)

	r.Get("/health", handlers.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(AuthMiddleware(cfg, logger))

		r.Get("/fiscal-year", handlers.GetFiscalYear)
		r.Get("/periods", handlers.GetPeriods)

		r.Get("/settings", handlers.GetSettings)
		r.Put("/settings", handlers.PutSettings)

		r.Get("/selections", handlers.ListSelections)
		r.Get("/selections/{scope}", handlers.GetSelection)
		r.Put("/selections/{scope}", handlers.PutSelection)
		r.Delete("/selections/{scope}", handlers.DeleteSelection)
	})

	return r
}
