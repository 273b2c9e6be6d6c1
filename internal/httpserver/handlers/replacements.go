package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchbar/internal/domain"
	"github.com/MrSnakeDoc/launchbar/internal/hierarchy"
	"github.com/MrSnakeDoc/launchbar/internal/httpserver/deps"
)

type replacementView struct {
	*domain.Replacement
	Choices []string `json:"choices,omitempty"`
	Expired bool     `json:"expired"`
}

// Replacements lists every replacement with its expiry state.
func Replacements(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var out []replacementView
		err := d.Core.Do(r.Context(), func(m *hierarchy.Manager) error {
			now := d.Now()
			list := m.Replacements()
			out = make([]replacementView, 0, len(list))
			for _, rep := range list {
				out = append(out, replacementView{
					Replacement: rep.Clone(),
					Choices:     rep.Choices(),
					Expired:     rep.Expired(now),
				})
			}
			return nil
		})
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(d, w, http.StatusOK, out)
	}
}

type assignRequest struct {
	Value string `json:"value"`
}

// AssignReplacement sets the value of one token, as a setReplacement
// shortcut does once the user has chosen.
func AssignReplacement(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok := chi.URLParam(r, "token")

		var req assignRequest
		if err := decode(w, r, &req); err != nil {
			badRequest(d, w, err)
			return
		}

		var out replacementView
		err := d.Core.Do(r.Context(), func(m *hierarchy.Manager) error {
			if err := m.AssignReplacement(r.Context(), tok, req.Value); err != nil {
				return err
			}
			rep, _ := m.Replacement(tok)
			out = replacementView{Replacement: rep.Clone(), Choices: rep.Choices(), Expired: rep.Expired(d.Now())}
			return nil
		})
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(d, w, http.StatusOK, out)
	}
}
