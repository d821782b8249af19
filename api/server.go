/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for a local frontend

ROUTE GROUPS:
  /api/projects/*    Project management
  /api/entries/*     Timesheet entries
  /api/meetings/*    Meeting cache and calendar sync
  /api/reconcile     Meetings -> draft entries
  /api/days/*        Session quota summaries
  /api/calendar/*    Month workday layout
  /api/holidays/*    Holiday table
  /api/settings/*    Operator settings and schedule
  /api/export        Monthly spreadsheet

SECURITY NOTE:
  Single-operator tool bound to localhost; no authentication middleware.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.ListProjects)
			r.Post("/", h.CreateProject)
			r.Get("/recent", h.ListRecentProjects)
			r.Get("/{id}", h.GetProject)
			r.Put("/{id}", h.UpdateProject)
			r.Delete("/{id}", h.DeleteProject)
		})

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", h.ListEntries)
			r.Post("/", h.CreateEntry)
			r.Post("/aggregate", h.AggregateEntries)
			r.Get("/{id}", h.GetEntry)
			r.Put("/{id}/status", h.UpdateEntryStatus)
			r.Delete("/{id}", h.DeleteEntry)
		})

		r.Route("/meetings", func(r chi.Router) {
			r.Get("/", h.ListMeetings)
			r.Post("/sync", h.SyncMeetings)
		})

		r.Post("/reconcile", h.Reconcile)

		r.Get("/days/{date}", h.GetDaySummary)
		r.Get("/calendar/{year}/{month}", h.GetMonth)

		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Post("/", h.SaveHolidays)
			r.Post("/defaults", h.LoadDefaultHolidays)
			r.Delete("/", h.ClearHolidays)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.GetSettings)
			r.Put("/", h.UpdateSettings)
			r.Get("/schedule", h.GetSchedule)
			r.Put("/schedule", h.UpdateSchedule)
		})

		r.Post("/export", h.ExportMonth)
	})

	return r
}
