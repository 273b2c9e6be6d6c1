package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/launchbar/internal/domain"
	"github.com/MrSnakeDoc/launchbar/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchbar/internal/logger"
)

const defaultFindLimit = 10

type findResponse struct {
	Query   string         `json:"query"`
	Matches []domain.Match `json:"matches"`
}

// Find ranks shortcuts by name for a quick-open box.
// GET /api/find?q=<query>&limit=<n>
func Find(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			badRequest(d, w, errors.New("missing query parameter q"))
			return
		}

		limit := defaultFindLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				badRequest(d, w, errors.New("limit must be a non-negative integer"))
				return
			}
			limit = n
		}

		matches, err := d.Core.Find(r.Context(), query, limit)
		if err != nil {
			writeError(d, w, r, err)
			return
		}

		d.Logger.Debug("find request",
			logger.String("query", query),
			logger.Int("matches", len(matches)))
		writeJSON(d, w, http.StatusOK, findResponse{Query: query, Matches: matches})
	}
}
