package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchbar/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchbar/internal/httpserver/handlers"
)

func init() { Register(registerEdit, guarded...) }

func registerEdit(r chi.Router, d deps.Deps) {
	r.Route("/api/edit", func(r chi.Router) {
		r.Get("/", handlers.EditState(d))
		r.Post("/select", handlers.EditSelect(d))
		r.Post("/create", handlers.EditCreate(d))
		r.Post("/amend", handlers.EditAmend(d))
		r.Post("/commit", handlers.EditCommit(d))
		r.Post("/cancel", handlers.EditCancel(d))
		r.Patch("/draft", handlers.EditDraft(d))
	})
}
