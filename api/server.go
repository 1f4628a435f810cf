/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the HR frontend

SECURITY NOTE:
  No authentication middleware currently. Authentication and session
  handling belong to the surrounding HR application, not this engine.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
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
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Batch routes
		r.Route("/batches", func(r chi.Router) {
			r.Get("/", h.ListBatches)
			r.Post("/", h.CreateBatch)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetBatch)
				r.Get("/preview", h.Preview)
				r.Post("/actions/{name}", h.DispatchAction)
				r.Post("/lock", h.LockBatch)
				r.Post("/unlock", h.UnlockBatch)

				// Configuration commands
				r.Put("/criteria/{category}", h.SetCriteria)
				r.Put("/rounding", h.SetRounding)
				r.Post("/pools", h.AddPool)
				r.Delete("/pools/{index}", h.RemovePool)
				r.Patch("/pools/{index}", h.UpdatePool)
				r.Put("/pools/{index}/structures", h.SetPoolStructures)
			})
		})

		// Directory routes (read-only master data)
		r.Get("/employees", h.ListEmployees)
		r.Get("/positions", h.ListPositions)
		r.Get("/org-nodes", h.ListOrgNodes)
		r.Get("/salary-structures", h.ListSalaryStructures)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}
