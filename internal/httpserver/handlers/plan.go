package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchbar/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchbar/internal/logger"
)

// Plan reports what launching a shortcut does, without doing it.
func Plan(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		plan, err := d.Core.Plan(r.Context(), id)
		if err != nil {
			writeError(d, w, r, err)
			return
		}

		d.Logger.Debug("launch planned",
			logger.String("shortcut", id),
			logger.String("kind", string(plan.Kind)))
		writeJSON(d, w, http.StatusOK, plan)
	}
}
