package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Kamran-007-lab/task-management-api/internal/api"
	apimiddleware "github.com/Kamran-007-lab/task-management-api/internal/api/middleware"
	"github.com/Kamran-007-lab/task-management-api/internal/api/shared"
)

// routes assembles the HTTP routing tree.
func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(apimiddleware.RequestLogger(app.logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", app.authHandler.Register)
			r.Post("/login", app.authHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(app.authMW)
				r.Get("/profile", app.authHandler.Profile)
			})
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Use(app.authMW)

			r.Post("/", app.taskHandler.Create)
			r.Get("/", app.taskHandler.List)
			r.Get("/{id}", app.taskHandler.Get)
			r.Put("/{id}", app.taskHandler.Update)
			r.Delete("/{id}", app.taskHandler.Delete)
			r.Post("/{id}/complete", app.taskHandler.Complete)
		})
	})

	return r
}

// handleHealth reports liveness.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, api.HealthResponse{
		Status:    "OK",
		Timestamp: time.Now().UTC(),
	})
}
