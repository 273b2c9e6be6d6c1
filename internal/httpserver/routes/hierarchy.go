package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchbar/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchbar/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/launchbar/internal/httpserver/mw"
)

func init() { Register(registerHierarchy, guarded...) }

func registerHierarchy(r chi.Router, d deps.Deps) {
	r.Get("/api/sections", handlers.Sections(d))
	r.Get("/api/sections/{id}/shortcuts", handlers.SectionShortcuts(d))
	r.Post("/api/sections/{id}/shared", handlers.SetSectionShared(d))
	r.Get("/api/replacements", handlers.Replacements(d))
	r.Post("/api/replacements/{token}", handlers.AssignReplacement(d))
	r.Get("/api/find", handlers.Find(d))
	r.Post("/api/resolve", handlers.Resolve(d))
	r.Post("/api/reload", handlers.Reload(d))
	r.With(mw.RateLimit(d.PlanLimit)).Post("/api/shortcuts/{id}/plan", handlers.Plan(d))
}
