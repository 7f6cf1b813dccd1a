/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:     Unique ID per request for tracing
  2. RealIP:        Client address from X-Forwarded-For
  3. RequestLogger: One zap line per request
  4. Recoverer:     Panic recovery (500 instead of crash)
  5. CORS:          Cross-origin requests, origins from config
  6. Heartbeat:     GET /health

ROUTE GROUPS:
  /api/employees/*      Employees and their plans, events, requests, results
  /api/requests/*       Approval outcomes
  /api/reports          Totals for every employee
  /api/daily-status     Stateless computation
  /api/scenarios/*      Demo scenarios
  /api/admin/*          Snapshot runs

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/warp/attendance-engine/config"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, cfg config.ServerConfig, log *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
	}))
	r.Use(middleware.Heartbeat("/health"))

	r.Route("/api", func(r chi.Router) {
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetEmployee)
				r.Get("/plans", h.ListPlans)
				r.Post("/plans", h.CreatePlan)
				r.Get("/events", h.ListEvents)
				r.Post("/events", h.CreateEvent)
				r.Get("/requests", h.ListRequests)
				r.Post("/requests", h.SubmitRequest)
				r.Get("/timeline", h.GetTimeline)
				r.Get("/report", h.GetReport)
				r.Get("/daily-statuses", h.ListDailyStatuses)
			})
		})

		r.Put("/requests/{id}/status", h.UpdateRequestStatus)
		r.Get("/reports", h.ListReports)
		r.Post("/daily-status", h.ComputeDailyStatus)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/snapshots", h.ListSnapshotRuns)
			r.Post("/snapshots", h.RunSnapshots)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found", nil)
	})

	return r
}
